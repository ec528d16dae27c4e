// Package confirm guards destructive deletes behind an explicit
// confirmation step. The flow is a small state machine: Idle →
// Confirming → Deleting → back to Idle on success or to Confirming on
// failure, so the user can retry or cancel without re-selecting the
// target. While a delete is in flight, further confirm calls are
// ignored, which keeps repeated clicks from issuing duplicate DELETEs.
package confirm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// State is the flow's current phase.
type State int

const (
	// Idle means no target is selected.
	Idle State = iota
	// Confirming means a target is selected and awaiting confirmation.
	Confirming
	// Deleting means the DELETE call is in flight.
	Deleting
)

func (s State) String() string {
	switch s {
	case Confirming:
		return "confirming"
	case Deleting:
		return "deleting"
	default:
		return "idle"
	}
}

// ErrNoTarget is returned by Confirm when nothing was requested first.
var ErrNoTarget = errors.New("confirm: no delete requested")

// DeleteFunc issues the actual DELETE for a target id.
type DeleteFunc func(ctx context.Context, id int) error

// Options wires the flow to its surroundings, mirroring the mutation
// form: Revalidate refreshes the owning list after a successful delete,
// OnError drives the failure notification, Close dismisses the
// confirmation surface.
type Options struct {
	Delete     DeleteFunc
	Revalidate func(ctx context.Context)
	OnError    func(message string)
	Close      func()
	Logger     zerolog.Logger
}

// Flow is one delete-confirmation lifecycle. Safe for concurrent use.
type Flow struct {
	mu     sync.Mutex
	state  State
	target int
	err    error

	opts Options
}

// New creates a flow. Delete is required.
func New(opts Options) (*Flow, error) {
	if opts.Delete == nil {
		return nil, fmt.Errorf("confirm: Delete is required")
	}
	opts.Logger = opts.Logger.With().Str("component", "confirm").Logger()
	return &Flow{opts: opts}, nil
}

// State returns the current phase.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Target returns the currently selected target id.
func (f *Flow) Target() (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.target, f.state != Idle
}

// Err returns the failure of the last confirm attempt, if any.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Request selects a target and enters Confirming. It is the explicit
// user action that opens the confirmation surface; a flow never enters
// Confirming on its own.
func (f *Flow) Request(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Deleting {
		return
	}
	f.state = Confirming
	f.target = id
	f.err = nil
}

// Cancel abandons the selection and returns to Idle.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Deleting {
		return
	}
	f.state = Idle
	f.target = 0
	f.err = nil
}

// Confirm issues the DELETE for the selected target. Exactly one call
// goes out per confirmation: calls made while a delete is in flight
// return immediately without a second request. On success the flow
// revalidates the owning list, closes the surface and returns to Idle;
// on failure it surfaces the error and stays in Confirming so the user
// can retry.
func (f *Flow) Confirm(ctx context.Context) error {
	f.mu.Lock()
	switch f.state {
	case Idle:
		f.mu.Unlock()
		return ErrNoTarget
	case Deleting:
		f.mu.Unlock()
		return nil
	}
	id := f.target
	f.state = Deleting
	f.err = nil
	f.mu.Unlock()

	err := f.opts.Delete(ctx, id)

	f.mu.Lock()
	if err != nil {
		f.state = Confirming
		f.err = err
		f.mu.Unlock()

		f.opts.Logger.Warn().Int("target", id).Err(err).Msg("delete failed")
		if f.opts.OnError != nil {
			f.opts.OnError(err.Error())
		}
		return err
	}

	f.state = Idle
	f.target = 0
	f.mu.Unlock()

	f.opts.Logger.Info().Int("target", id).Msg("delete confirmed")
	if f.opts.Revalidate != nil {
		f.opts.Revalidate(ctx)
	}
	if f.opts.Close != nil {
		f.opts.Close()
	}
	return nil
}
