package screen

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce_HappyPath(t *testing.T) {
	c := NewContext()
	c.Fields["accountId"] = "00000000001"

	c, err := Reduce(c, Event{Kind: EventSubmit})
	require.NoError(t, err)
	assert.Equal(t, StepInput, c.Step)
	assert.True(t, c.Loading)

	c, err = Reduce(c, Event{Kind: EventFound, Data: "account"})
	require.NoError(t, err)
	assert.Equal(t, StepConfirm, c.Step)
	assert.False(t, c.Loading)
	assert.Equal(t, "account", c.Data)

	c, err = Reduce(c, Event{Kind: EventConfirm})
	require.NoError(t, err)
	assert.Equal(t, StepProcessing, c.Step)
	assert.True(t, c.Loading)

	c, err = Reduce(c, Event{Kind: EventCommitted, Data: "payment"})
	require.NoError(t, err)
	assert.Equal(t, StepSuccess, c.Step)
	assert.Equal(t, "payment", c.Result)
	assert.Empty(t, c.Fields, "form data is cleared after a successful commit")
	assert.True(t, c.Step.Terminal())
}

func TestReduce_LookupOutcomes(t *testing.T) {
	loading, err := Reduce(NewContext(), Event{Kind: EventSubmit})
	require.NoError(t, err)

	done, err := Reduce(loading, Event{Kind: EventNothingToDo, Data: "paid"})
	require.NoError(t, err)
	assert.Equal(t, StepAlreadyDone, done.Step)

	failed, err := Reduce(loading, Event{Kind: EventFailed, Message: "Account not found"})
	require.NoError(t, err)
	assert.Equal(t, StepError, failed.Step)
	assert.Equal(t, "Account not found", failed.Error)
	assert.False(t, failed.Loading)
}

func TestReduce_RejectsDisallowedEdges(t *testing.T) {
	input := NewContext()

	tests := []struct {
		name  string
		from  Context
		event Event
		want  error
	}{
		{"confirm from input", input, Event{Kind: EventConfirm}, ErrInvalidTransition},
		{"found without request", input, Event{Kind: EventFound}, ErrInvalidTransition},
		{"committed from input", input, Event{Kind: EventCommitted}, ErrInvalidTransition},
		{"failed without request", input, Event{Kind: EventFailed}, ErrInvalidTransition},
		{"submit while loading", Context{Step: StepInput, Loading: true}, Event{Kind: EventSubmit}, ErrBusy},
		{"clear while processing", Context{Step: StepProcessing, Loading: true}, Event{Kind: EventClear}, ErrBusy},
		{"submit from success", Context{Step: StepSuccess}, Event{Kind: EventSubmit}, ErrInvalidTransition},
		{"unknown event", input, Event{Kind: "bogus"}, ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reduce(tt.from, tt.event)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.from.Step, got.Step)
			assert.Equal(t, tt.from.Loading, got.Loading)
		})
	}
}

func TestReduce_ClearKeepsStep(t *testing.T) {
	c := Context{Step: StepConfirm, Fields: map[string]string{"creditLimit": "100"}, Data: "acct"}
	got, err := Reduce(c, Event{Kind: EventClear})
	require.NoError(t, err)
	assert.Equal(t, StepConfirm, got.Step)
	assert.Empty(t, got.Fields)
	assert.Equal(t, "acct", got.Data)
	assert.Equal(t, "100", c.Fields["creditLimit"], "input context is not mutated")
}

var eventKinds = []EventKind{
	EventSubmit, EventInvalid, EventFound, EventNothingToDo, EventConfirm,
	EventCommitted, EventFailed, EventClear, EventReset,
}

func TestReduce_ResetProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("reset from any reachable context yields an empty input step", prop.ForAll(
		func(seq []int, field string) bool {
			c := NewContext()
			c.Fields["key"] = field
			for _, i := range seq {
				next, err := Reduce(c, Event{
					Kind:        eventKinds[i],
					Data:        i,
					Message:     "boom",
					Fields:      map[string]string{"key": field},
					FieldErrors: map[string]string{"key": "bad"},
				})
				if err == nil {
					c = next
				}
			}
			before := c.Generation
			r, err := Reduce(c, Event{Kind: EventReset})
			if err != nil {
				return false
			}
			again, _ := Reduce(r, Event{Kind: EventReset})
			return r.Step == StepInput &&
				len(r.Fields) == 0 &&
				len(r.FieldErrors) == 0 &&
				r.Data == nil && r.Result == nil &&
				!r.Loading && r.Error == "" &&
				r.Generation == before+1 &&
				again.Step == StepInput && len(again.Fields) == 0
		},
		gen.SliceOf(gen.IntRange(0, len(eventKinds)-1)),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
