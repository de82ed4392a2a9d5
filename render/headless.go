package render

import (
	"context"

	"github.com/chironlang/chiron/vm"
	"github.com/rs/zerolog/log"
)

// Headless drives a turtle without drawing anything and logs its moves.
type Headless struct {
	Turtle  *Turtle
	Dismiss Dismisser
}

func NewHeadless() *Headless {
	return &Headless{Turtle: NewTurtle()}
}

func (h *Headless) Move(dir vm.Direction, amount float64) error {
	_, drawn, err := h.Turtle.Move(dir, amount)
	if err != nil {
		return err
	}
	log.Trace().
		Str("dir", dir.String()).
		Float64("amount", amount).
		Float64("x", h.Turtle.X).
		Float64("y", h.Turtle.Y).
		Float64("heading", h.Turtle.Heading).
		Bool("drawn", drawn).
		Msg("Headless: move")
	return nil
}

func (h *Headless) Pen(state vm.PenState) error {
	h.Turtle.SetPen(state)
	log.Trace().Str("mode", state.Mode.String()).Str("color", state.Color).Float64("width", state.Width).Msg("Headless: pen")
	return nil
}

func (h *Headless) Finish(msg string) error {
	log.Info().Float64("x", h.Turtle.X).Float64("y", h.Turtle.Y).Msg(msg)
	return nil
}

func (h *Headless) AwaitDismiss(ctx context.Context) error {
	return h.Dismiss.await(ctx)
}
