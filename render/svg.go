package render

import (
	"context"
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/chironlang/chiron/vm"
)

const (
	svgMargin     = 20
	svgTextHeight = 30
)

// SVG collects the turtle's trail and writes it as an SVG document when
// the program finishes.
type SVG struct {
	Turtle   *Turtle
	Segments []Segment
	Dismiss  Dismisser

	w       io.Writer
	written bool
}

func NewSVG(w io.Writer) *SVG {
	return &SVG{Turtle: NewTurtle(), w: w}
}

func (s *SVG) Move(dir vm.Direction, amount float64) error {
	seg, drawn, err := s.Turtle.Move(dir, amount)
	if err != nil {
		return err
	}
	if drawn {
		s.Segments = append(s.Segments, seg)
	}
	return nil
}

func (s *SVG) Pen(state vm.PenState) error {
	s.Turtle.SetPen(state)
	return nil
}

// Finish writes the document, sized to fit the trail, with msg as a
// caption. Later calls do nothing.
func (s *SVG) Finish(msg string) error {
	if s.written {
		return nil
	}
	s.written = true

	minX, minY, maxX, maxY := s.bounds()
	width := int(math.Ceil(maxX-minX)) + 2*svgMargin
	height := int(math.Ceil(maxY-minY)) + 2*svgMargin + svgTextHeight
	px := func(x float64) int { return int(math.Round(x-minX)) + svgMargin }
	py := func(y float64) int { return int(math.Round(maxY-y)) + svgMargin }

	canvas := svg.New(s.w)
	canvas.Start(width, height)
	canvas.Title("chiron")
	canvas.Rect(0, 0, width, height, "fill:white")
	for _, seg := range s.Segments {
		canvas.Line(px(seg.X1), py(seg.Y1), px(seg.X2), py(seg.Y2),
			fmt.Sprintf("stroke:%s;stroke-width:%g;stroke-linecap:round", seg.Color, seg.Width))
	}
	if msg != "" {
		canvas.Text(svgMargin, height-svgMargin/2, msg, "font-family:Arial;font-size:15px;font-weight:bold")
	}
	canvas.End()
	return nil
}

func (s *SVG) AwaitDismiss(ctx context.Context) error {
	return s.Dismiss.await(ctx)
}

// bounds covers the trail, the origin and the turtle's final position.
func (s *SVG) bounds() (minX, minY, maxX, maxY float64) {
	minX, maxX = math.Min(0, s.Turtle.X), math.Max(0, s.Turtle.X)
	minY, maxY = math.Min(0, s.Turtle.Y), math.Max(0, s.Turtle.Y)
	for _, seg := range s.Segments {
		minX = math.Min(minX, math.Min(seg.X1, seg.X2))
		maxX = math.Max(maxX, math.Max(seg.X1, seg.X2))
		minY = math.Min(minY, math.Min(seg.Y1, seg.Y2))
		maxY = math.Max(maxY, math.Max(seg.Y1, seg.Y2))
	}
	return minX, minY, maxX, maxY
}
