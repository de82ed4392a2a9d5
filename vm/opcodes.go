package vm

import "fmt"

// Kind names an instruction kind. The set is closed; KindMax bounds it.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindAssign       // var := expr | +1
	KindCondition    // if expr | Target when true, +1 otherwise
	KindMove         // dir amount | +1
	KindPen          // mode [color] [width] | +1
	KindGoto         // | Target
	KindNoOp         // | +1
	KindMax
)

func (k Kind) String() string {
	switch k {
	case KindAssign:
		return "Assignment"
	case KindCondition:
		return "Condition"
	case KindMove:
		return "Move"
	case KindPen:
		return "Pen"
	case KindGoto:
		return "Goto"
	case KindNoOp:
		return "NoOp"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind accepts the op names used by the textual IR.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "assign", "assignment":
		return KindAssign, nil
	case "cond", "condition", "if":
		return KindCondition, nil
	case "move":
		return KindMove, nil
	case "pen":
		return KindPen, nil
	case "goto", "jump":
		return KindGoto, nil
	case "noop", "nop":
		return KindNoOp, nil
	}
	return KindInvalid, fmt.Errorf("unknown op %q", s)
}

// Direction is the movement a Move instruction applies to the cursor.
// Left and Right turn in place by the amount in degrees.
type Direction uint8

const (
	Forward Direction = iota
	Backward
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

func (d Direction) valid() bool {
	return d <= Right
}

func ParseDirection(s string) (Direction, error) {
	switch s {
	case "forward", "fd":
		return Forward, nil
	case "backward", "back", "bk":
		return Backward, nil
	case "left", "lt":
		return Left, nil
	case "right", "rt":
		return Right, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

type PenMode uint8

const (
	PenUp PenMode = iota
	PenDown
)

func (m PenMode) String() string {
	switch m {
	case PenUp:
		return "penup"
	case PenDown:
		return "pendown"
	}
	return fmt.Sprintf("PenMode(%d)", uint8(m))
}

func (m PenMode) valid() bool {
	return m <= PenDown
}

func ParsePenMode(s string) (PenMode, error) {
	switch s {
	case "up", "penup":
		return PenUp, nil
	case "down", "pendown":
		return PenDown, nil
	}
	return 0, fmt.Errorf("unknown pen mode %q", s)
}

// PenState is what a Pen instruction hands to the renderer once its width
// expression has been evaluated. An empty Color leaves the renderer's
// current color unchanged; Width applies only when HasWidth is set, so an
// explicit zero width is honoured.
type PenState struct {
	Mode     PenMode
	Color    string
	Width    float64
	HasWidth bool
}
