// Package command maps terminal function keys to screen actions.
//
// The key table is the same on every screen. A screen only chooses which
// actions it binds; a key whose action is unbound does nothing.
package command

import (
	"context"
	"errors"
	"strings"
)

// Key is a virtual terminal key.
type Key string

const (
	KeyEnter Key = "ENTER"
	KeyF3    Key = "F3"
	KeyF4    Key = "F4"
	KeyF5    Key = "F5"
	KeyF12   Key = "F12"
	KeyEsc   Key = "ESC"
)

// Action is the semantic class a key belongs to.
type Action string

const (
	ActionSubmit    Action = "submit"
	ActionBack      Action = "back"
	ActionClear     Action = "clear"
	ActionSecondary Action = "secondary"
	ActionExit      Action = "exit"
)

var keyTable = map[Key]Action{
	KeyEnter: ActionSubmit,
	KeyF3:    ActionBack,
	KeyEsc:   ActionBack,
	KeyF4:    ActionClear,
	KeyF5:    ActionSecondary,
	KeyF12:   ActionExit,
}

var (
	ErrUnbound  = errors.New("command: key not bound on this screen")
	ErrDisabled = errors.New("command: action currently disabled")
)

// ParseKey normalises a key name as sent by the browser.
func ParseKey(s string) Key {
	k := Key(strings.ToUpper(strings.TrimSpace(s)))
	if k == "ESCAPE" {
		return KeyEsc
	}
	return k
}

// ActionFor looks a key up in the table.
func ActionFor(k Key) (Action, bool) {
	a, ok := keyTable[k]
	return a, ok
}

// Binding attaches a handler to an action. A nil Enabled means always on.
type Binding struct {
	Handler func(ctx context.Context) error
	Enabled func() bool
}

// Bindings is the set of actions a screen supports.
type Bindings map[Action]Binding

// Result tells the caller what a key press did. PreventDefault is set for
// every bound key, whether or not the binding was enabled.
type Result struct {
	Key            Key    `json:"key"`
	Action         Action `json:"action,omitempty"`
	PreventDefault bool   `json:"preventDefault"`
}

// Dispatch runs the binding for k. Unbound keys return ErrUnbound and
// disabled bindings ErrDisabled; neither runs any handler.
func Dispatch(ctx context.Context, b Bindings, k Key) (Result, error) {
	res := Result{Key: k}
	action, ok := ActionFor(k)
	if !ok {
		return res, ErrUnbound
	}
	binding, ok := b[action]
	if !ok || binding.Handler == nil {
		return res, ErrUnbound
	}

	res.Action = action
	res.PreventDefault = true
	if binding.Enabled != nil && !binding.Enabled() {
		return res, ErrDisabled
	}
	return res, binding.Handler(ctx)
}
