// Package screen implements the state machine every terminal screen runs.
//
// A screen moves input -> confirm -> processing -> success|error, or from a
// lookup straight to already-done or error. Reduce is the pure transition
// function; Controller drives it with gateway calls.
package screen

import (
	"errors"
	"maps"
)

// Step is the state of a screen.
type Step string

const (
	StepInput       Step = "input"
	StepConfirm     Step = "confirm"
	StepProcessing  Step = "processing"
	StepSuccess     Step = "success"
	StepAlreadyDone Step = "already-done"
	StepError       Step = "error"
)

// Terminal reports whether the step only changes on explicit user action.
func (s Step) Terminal() bool {
	return s == StepSuccess || s == StepAlreadyDone || s == StepError
}

var (
	ErrInvalidTransition = errors.New("screen: event not allowed in current step")
	ErrBusy              = errors.New("screen: request already in flight")
	ErrStale             = errors.New("screen: response for a reset context dropped")
	ErrInvalidFields     = errors.New("screen: field validation failed")
)

// Context is the screen-local state. Generation changes on every reset so a
// response issued before the reset can be recognised and dropped.
type Context struct {
	Step        Step              `json:"step"`
	Fields      map[string]string `json:"fields"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	Data        any               `json:"data,omitempty"`
	Result      any               `json:"result,omitempty"`
	Loading     bool              `json:"loading"`
	Error       string            `json:"error,omitempty"`
	Generation  uint64            `json:"-"`
}

// NewContext returns the initial input context.
func NewContext() Context {
	return Context{Step: StepInput, Fields: map[string]string{}}
}

func (c Context) clone() Context {
	c.Fields = maps.Clone(c.Fields)
	if c.Fields == nil {
		c.Fields = map[string]string{}
	}
	c.FieldErrors = maps.Clone(c.FieldErrors)
	return c
}

// EventKind names what happened to a screen.
type EventKind string

const (
	EventSubmit      EventKind = "submit"
	EventInvalid     EventKind = "invalid"
	EventFound       EventKind = "found"
	EventNothingToDo EventKind = "nothing-to-do"
	EventConfirm     EventKind = "confirm"
	EventCommitted   EventKind = "committed"
	EventFailed      EventKind = "failed"
	EventClear       EventKind = "clear"
	EventReset       EventKind = "reset"
)

// Event is the input of Reduce. Only the fields relevant to Kind are read.
type Event struct {
	Kind        EventKind
	Data        any
	Fields      map[string]string
	FieldErrors map[string]string
	Message     string
}

// Reduce applies e to c. When e is not allowed in c's step it returns c
// unchanged together with ErrInvalidTransition, or ErrBusy while a request
// is in flight.
func Reduce(c Context, e Event) (Context, error) {
	next := c.clone()

	switch e.Kind {
	case EventReset:
		fresh := NewContext()
		fresh.Generation = c.Generation + 1
		return fresh, nil

	case EventSubmit:
		if c.Loading {
			return c, ErrBusy
		}
		if c.Step != StepInput && c.Step != StepConfirm {
			return c, ErrInvalidTransition
		}
		next.Step = StepInput
		next.Loading = true
		next.Data = nil
		next.Result = nil
		next.Error = ""
		next.FieldErrors = nil

	case EventInvalid:
		if c.Loading {
			return c, ErrBusy
		}
		if c.Step != StepInput && c.Step != StepConfirm {
			return c, ErrInvalidTransition
		}
		next.FieldErrors = maps.Clone(e.FieldErrors)
		next.Error = ""

	case EventFound, EventNothingToDo:
		if c.Step != StepInput || !c.Loading {
			return c, ErrInvalidTransition
		}
		next.Step = StepConfirm
		if e.Kind == EventNothingToDo {
			next.Step = StepAlreadyDone
		}
		next.Loading = false
		next.Data = e.Data
		for k, v := range e.Fields {
			next.Fields[k] = v
		}

	case EventConfirm:
		if c.Loading {
			return c, ErrBusy
		}
		if c.Step != StepConfirm {
			return c, ErrInvalidTransition
		}
		next.Step = StepProcessing
		next.Loading = true
		next.FieldErrors = nil

	case EventCommitted:
		if c.Step != StepProcessing {
			return c, ErrInvalidTransition
		}
		next.Step = StepSuccess
		next.Loading = false
		next.Result = e.Data
		next.Fields = map[string]string{}

	case EventFailed:
		if !c.Loading {
			return c, ErrInvalidTransition
		}
		next.Step = StepError
		next.Loading = false
		next.Error = e.Message

	case EventClear:
		if c.Loading {
			return c, ErrBusy
		}
		next.Fields = map[string]string{}
		next.FieldErrors = nil

	default:
		return c, ErrInvalidTransition
	}

	return next, nil
}
