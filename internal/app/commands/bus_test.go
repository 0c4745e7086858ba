package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingCommand struct{ Value int }

func (pingCommand) Key() string { return "test.ping" }

type otherCommand struct{}

func (otherCommand) Key() string { return "test.other" }

func TestDispatchRoutesToTypedHandler(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[pingCommand, int](bus, pingCommand{}.Key(), HandlerFunc[pingCommand, int](func(ctx context.Context, cmd pingCommand) (int, error) {
		return cmd.Value * 2, nil
	}))

	got, err := Dispatch[pingCommand, int](context.Background(), bus, pingCommand{Value: 21})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, []string{"test.ping"}, bus.Keys())
}

func TestDispatchUnknownCommand(t *testing.T) {
	_, err := Dispatch[otherCommand, int](context.Background(), NewInMemoryBus(), otherCommand{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)
}

func TestDispatchResultTypeMismatch(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[pingCommand, int](bus, pingCommand{}.Key(), HandlerFunc[pingCommand, int](func(context.Context, pingCommand) (int, error) {
		return 1, nil
	}))

	_, err := Dispatch[pingCommand, string](context.Background(), bus, pingCommand{})
	assert.ErrorIs(t, err, ErrResultType)
}

func TestRegisterTwicePanics(t *testing.T) {
	bus := NewInMemoryBus()
	h := HandlerFunc[pingCommand, int](func(context.Context, pingCommand) (int, error) { return 0, nil })
	RegisterHandler[pingCommand, int](bus, "k", h)
	assert.Panics(t, func() { RegisterHandler[pingCommand, int](bus, "k", h) })
}
