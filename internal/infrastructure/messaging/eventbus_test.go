package messaging

import (
	"testing"

	"github.com/naluwan/wsa/internal/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish_DispatchesToSubscribers(t *testing.T) {
	bus := NewEventBus(nil)

	var received []shared.Event
	bus.Subscribe(shared.EventUnitCompleted, func(e shared.Event) {
		received = append(received, e)
	})

	event := shared.NewUnitCompletedEvent("user-1", "unit-1", 100)
	require.NoError(t, bus.Publish(event))

	require.Len(t, received, 1)
	assert.Equal(t, shared.EventUnitCompleted, received[0].EventType())
	assert.Equal(t, "user-1", received[0].AggregateID())
}

func TestPublish_OnlyMatchingTypeReceives(t *testing.T) {
	bus := NewEventBus(nil)

	completed := 0
	credited := 0
	bus.Subscribe(shared.EventUnitCompleted, func(shared.Event) { completed++ })
	bus.Subscribe(shared.EventXPCredited, func(shared.Event) { credited++ })

	require.NoError(t, bus.Publish(shared.NewXPCreditedEvent("user-1", 100, 100, 100)))

	assert.Equal(t, 0, completed)
	assert.Equal(t, 1, credited)
}

func TestPublish_NoSubscribersIsFine(t *testing.T) {
	bus := NewEventBus(nil)
	assert.NoError(t, bus.Publish(shared.NewLevelUpEvent("user-1", 1, 2)))
}

func TestPublish_NilEventIsRejected(t *testing.T) {
	bus := NewEventBus(nil)
	assert.Error(t, bus.Publish(nil))
}

func TestPublish_PanickingHandlerDoesNotStopDelivery(t *testing.T) {
	bus := NewEventBus(nil)

	delivered := false
	bus.Subscribe(shared.EventUnitCompleted, func(shared.Event) { panic("boom") })
	bus.Subscribe(shared.EventUnitCompleted, func(shared.Event) { delivered = true })

	require.NoError(t, bus.Publish(shared.NewUnitCompletedEvent("user-1", "unit-1", 100)))
	assert.True(t, delivered)
}

func TestSubscribe_NilHandlerIsIgnored(t *testing.T) {
	bus := NewEventBus(nil)
	bus.Subscribe(shared.EventUnitCompleted, nil)
	assert.NoError(t, bus.Publish(shared.NewUnitCompletedEvent("user-1", "unit-1", 100)))
}
