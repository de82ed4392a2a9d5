// Package render implements the drawing side of program execution: a
// turtle that Move and Pen instructions drive, and renderers that record,
// log or draw its trail.
package render

import (
	"context"
	"fmt"
	"math"

	"github.com/chironlang/chiron/vm"
)

// Segment is one stretch of trail drawn with the pen down.
type Segment struct {
	X1, Y1, X2, Y2 float64
	Color          string
	Width          float64
}

// Turtle is a cursor on the plane. Heading is in degrees, 0 points east
// and left turns are counter-clockwise. It starts at the origin with the
// pen down.
type Turtle struct {
	X, Y    float64
	Heading float64
	Pen     vm.PenState
}

func NewTurtle() *Turtle {
	return &Turtle{
		Pen: vm.PenState{Mode: vm.PenDown, Color: "black", Width: 1, HasWidth: true},
	}
}

// Move applies a Move instruction. It returns the drawn segment, if any.
func (t *Turtle) Move(dir vm.Direction, amount float64) (Segment, bool, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Segment{}, false, fmt.Errorf("bad %s amount %v", dir, amount)
	}
	switch dir {
	case vm.Left:
		t.Heading = normalize(t.Heading + amount)
		return Segment{}, false, nil
	case vm.Right:
		t.Heading = normalize(t.Heading - amount)
		return Segment{}, false, nil
	case vm.Backward:
		amount = -amount
	case vm.Forward:
	default:
		return Segment{}, false, fmt.Errorf("unknown direction %s", dir)
	}
	rad := t.Heading * math.Pi / 180
	seg := Segment{
		X1:    t.X,
		Y1:    t.Y,
		X2:    snap(t.X + amount*math.Cos(rad)),
		Y2:    snap(t.Y + amount*math.Sin(rad)),
		Color: t.Pen.Color,
		Width: t.Pen.Width,
	}
	t.X, t.Y = seg.X2, seg.Y2
	return seg, t.Pen.Mode == vm.PenDown && amount != 0, nil
}

// SetPen applies a Pen instruction. An empty color or a state without a
// width keeps the current value.
func (t *Turtle) SetPen(p vm.PenState) {
	t.Pen.Mode = p.Mode
	if p.Color != "" {
		t.Pen.Color = p.Color
	}
	if p.HasWidth {
		t.Pen.Width = p.Width
	}
}

// snap drops the rounding noise that trigonometry leaves on axis-aligned
// moves.
func snap(v float64) float64 {
	return math.Round(v*1e9) / 1e9
}

func normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Dismisser waits for the user to dismiss the finished drawing. A nil
// Dismisser returns at once.
type Dismisser func(ctx context.Context) error

func (d Dismisser) await(ctx context.Context) error {
	if d == nil {
		return nil
	}
	return d(ctx)
}
