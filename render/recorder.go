package render

import (
	"context"

	"github.com/chironlang/chiron/vm"
)

// Call is one renderer invocation seen by a Recorder.
type Call struct {
	Op     string
	Dir    vm.Direction
	Amount float64
	Pen    vm.PenState
	Msg    string
}

// Recorder keeps every call and the trail it produced.
type Recorder struct {
	Turtle   *Turtle
	Calls    []Call
	Segments []Segment
	Message  string
	Dismiss  Dismisser
}

func NewRecorder() *Recorder {
	return &Recorder{Turtle: NewTurtle()}
}

func (r *Recorder) Move(dir vm.Direction, amount float64) error {
	r.Calls = append(r.Calls, Call{Op: "move", Dir: dir, Amount: amount})
	seg, drawn, err := r.Turtle.Move(dir, amount)
	if err != nil {
		return err
	}
	if drawn {
		r.Segments = append(r.Segments, seg)
	}
	return nil
}

func (r *Recorder) Pen(state vm.PenState) error {
	r.Calls = append(r.Calls, Call{Op: "pen", Pen: state})
	r.Turtle.SetPen(state)
	return nil
}

func (r *Recorder) Finish(msg string) error {
	r.Calls = append(r.Calls, Call{Op: "finish", Msg: msg})
	r.Message = msg
	return nil
}

func (r *Recorder) AwaitDismiss(ctx context.Context) error {
	r.Calls = append(r.Calls, Call{Op: "dismiss"})
	return r.Dismiss.await(ctx)
}
