package screen

import (
	"context"
	"errors"
	"sync"

	"github.com/carddemo/terminal/internal/core/ports"
)

// Request is what a Flow receives for a lookup or a commit.
type Request struct {
	Token  string
	Fields map[string]string
	Data   any
}

// Lookup is the outcome of a successful lookup. NothingToDo sends the screen
// to already-done instead of confirm. Fields are merged into the form, which
// is how update screens pre-fill their editable fields.
type Lookup struct {
	Data        any
	Fields      map[string]string
	NothingToDo bool
}

// Flow configures a screen: its fields, the lookup that moves input to
// confirm and the commit that turns a confirmation into a result. A nil
// Commit makes the screen read-only.
type Flow struct {
	Fields []Field
	Lookup func(ctx context.Context, req Request) (Lookup, error)
	Commit func(ctx context.Context, req Request) (any, error)
}

// Field returns the field called name.
func (f *Flow) Field(name string) (Field, bool) {
	for _, fd := range f.Fields {
		if fd.Name == name {
			return fd, true
		}
	}
	return Field{}, false
}

// Controller owns the Context of one screen instance. All methods are safe
// for concurrent use; gateway calls are made without holding the lock.
type Controller struct {
	flow *Flow

	mu  sync.Mutex
	ctx Context
}

func NewController(flow *Flow) *Controller {
	return &Controller{flow: flow, ctx: NewContext()}
}

// Flow returns the flow the controller runs.
func (c *Controller) Flow() *Flow {
	return c.flow
}

// Snapshot returns a copy of the current context.
func (c *Controller) Snapshot() Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx.clone()
}

// SetField stores value when the field exists, accepts it, and the screen is
// editable. On a screen that commits, the confirm step only takes edit
// fields: the record being confirmed is the one that was looked up. It
// reports whether the value was taken.
func (c *Controller) SetField(name, value string) bool {
	fd, ok := c.flow.Field(name)
	if !ok || !fd.Accepts(value) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx.Loading || (c.ctx.Step != StepInput && c.ctx.Step != StepConfirm) {
		return false
	}
	if fd.Edit && c.ctx.Step != StepConfirm {
		return false
	}
	if !fd.Edit && c.ctx.Step == StepConfirm && c.flow.Commit != nil {
		return false
	}
	c.ctx.Fields[name] = value
	delete(c.ctx.FieldErrors, name)
	return true
}

// Seed pre-fills fields from route or query parameters. Values rejected by
// the input filter are ignored.
func (c *Controller) Seed(values map[string]string) {
	for name, v := range values {
		c.SetField(name, v)
	}
}

// Submit validates the key fields and runs the lookup.
func (c *Controller) Submit(ctx context.Context, token string) error {
	c.mu.Lock()
	if c.ctx.Loading {
		c.mu.Unlock()
		return ErrBusy
	}
	if errs := c.check(false); len(errs) > 0 {
		next, err := Reduce(c.ctx, Event{Kind: EventInvalid, FieldErrors: errs})
		if err == nil {
			c.ctx = next
		}
		c.mu.Unlock()
		if err != nil {
			return err
		}
		return ErrInvalidFields
	}
	next, err := Reduce(c.ctx, Event{Kind: EventSubmit})
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.ctx = next
	gen := next.Generation
	req := Request{Token: token, Fields: next.clone().Fields}
	c.mu.Unlock()

	res, callErr := c.flow.Lookup(ctx, req)

	ev := Event{Kind: EventFound, Data: res.Data, Fields: res.Fields}
	if callErr != nil {
		ev = Event{Kind: EventFailed, Message: Message(callErr)}
	} else if res.NothingToDo {
		ev.Kind = EventNothingToDo
	}
	return c.apply(gen, ev, callErr)
}

// Confirm validates the edit fields and runs the commit. It is only allowed
// in the confirm step of a screen that has a commit.
func (c *Controller) Confirm(ctx context.Context, token string) error {
	if c.flow.Commit == nil {
		return ErrInvalidTransition
	}

	c.mu.Lock()
	if c.ctx.Loading {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.ctx.Step == StepConfirm {
		if errs := c.check(true); len(errs) > 0 {
			c.ctx, _ = Reduce(c.ctx, Event{Kind: EventInvalid, FieldErrors: errs})
			c.mu.Unlock()
			return ErrInvalidFields
		}
	}
	next, err := Reduce(c.ctx, Event{Kind: EventConfirm})
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.ctx = next
	gen := next.Generation
	req := Request{Token: token, Fields: next.clone().Fields, Data: next.Data}
	c.mu.Unlock()

	result, callErr := c.flow.Commit(ctx, req)

	ev := Event{Kind: EventCommitted, Data: result}
	if callErr != nil {
		ev = Event{Kind: EventFailed, Message: Message(callErr)}
	}
	return c.apply(gen, ev, callErr)
}

// Clear empties the form without changing the step.
func (c *Controller) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := Reduce(c.ctx, Event{Kind: EventClear})
	if err != nil {
		return err
	}
	c.ctx = next
	return nil
}

// Reset abandons everything, including a request in flight, and returns to
// a fresh input step.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx, _ = Reduce(c.ctx, Event{Kind: EventReset})
}

// apply records a response unless the context was reset since the request
// was issued. callErr is handed back so callers can react to it, e.g. to an
// expired session.
func (c *Controller) apply(gen uint64, ev Event, callErr error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx.Generation != gen {
		return ErrStale
	}
	next, err := Reduce(c.ctx, ev)
	if err != nil {
		return err
	}
	c.ctx = next
	return callErr
}

func (c *Controller) check(edit bool) map[string]string {
	errs := map[string]string{}
	for _, fd := range c.flow.Fields {
		if fd.Edit != edit {
			continue
		}
		if msg := fd.Check(c.ctx.Fields[fd.Name]); msg != "" {
			errs[fd.Name] = msg
		}
	}
	return errs
}

// Message is the text a failed request shows on screen: the server message
// verbatim when there is one, the generic fallback otherwise.
func Message(err error) string {
	var remote *ports.RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	var local *LocalError
	if errors.As(err, &local) {
		return local.Message
	}
	return ports.ErrUnexpected.Error()
}

// LocalError is a failure detected by a flow without a network call, such as
// a review step rejecting a value.
type LocalError struct {
	Message string
}

func (e *LocalError) Error() string {
	return e.Message
}
