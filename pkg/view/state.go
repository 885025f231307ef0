package view

import (
	"errors"

	"github.com/matzehuels/depview/pkg/render"
)

// State is the pane state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateRendered
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRendered:
		return "rendered"
	default:
		return "unknown"
	}
}

// ErrStale is returned by Wait when a newer request superseded seq.
var ErrStale = errors.New("request superseded")

// ErrClosed is returned by Wait after Close.
var ErrClosed = errors.New("pane closed")

// Frame is published after every state change or force batch.
type Frame struct {
	Seq   uint64
	Label string
	State State

	// Warning carries the degraded rooted-layout message.
	Warning string
	// NotFound is set when the focus component is unknown.
	NotFound bool
	// Err is the fetch or layout failure that returned the pane to Idle.
	Err error

	Diff render.Diff
	// Steps is the number of force steps run so far.
	Steps int
	// Terminal marks the last frame of a request.
	Terminal bool
}

// Status is a snapshot of the pane for other goroutines.
type Status struct {
	State State
	Label string
	Seq   uint64
	// Stale counts completions discarded since the pane was created.
	Stale uint64
}
