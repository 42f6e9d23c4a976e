package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that
// happened in the learning core.
const (
	// Progress events
	EventUnitCompleted EventType = "progress.unit_completed"

	// XP events
	EventXPCredited EventType = "xp.credited"
	EventLevelUp    EventType = "xp.level_up"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
	}
}

// UnitCompletedEvent is emitted when a user completes a unit for the first time.
type UnitCompletedEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	UnitID   string `json:"unit_id"`
	XPEarned int    `json:"xp_earned"`
}

// NewUnitCompletedEvent creates a UnitCompletedEvent.
func NewUnitCompletedEvent(userID, unitID string, xpEarned int) UnitCompletedEvent {
	return UnitCompletedEvent{
		BaseEvent: NewBaseEvent(EventUnitCompleted, userID),
		UserID:    userID,
		UnitID:    unitID,
		XPEarned:  xpEarned,
	}
}

// XPCreditedEvent is emitted when an XP account is credited.
type XPCreditedEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	Amount   int    `json:"amount"`
	TotalXP  int    `json:"total_xp"`
	WeeklyXP int    `json:"weekly_xp"`
}

// NewXPCreditedEvent creates an XPCreditedEvent.
func NewXPCreditedEvent(userID string, amount, totalXP, weeklyXP int) XPCreditedEvent {
	return XPCreditedEvent{
		BaseEvent: NewBaseEvent(EventXPCredited, userID),
		UserID:    userID,
		Amount:    amount,
		TotalXP:   totalXP,
		WeeklyXP:  weeklyXP,
	}
}

// LevelUpEvent is emitted when a credit pushes the user into a higher level.
type LevelUpEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	OldLevel int    `json:"old_level"`
	NewLevel int    `json:"new_level"`
}

// NewLevelUpEvent creates a LevelUpEvent.
func NewLevelUpEvent(userID string, oldLevel, newLevel int) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent: NewBaseEvent(EventLevelUp, userID),
		UserID:    userID,
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
	}
}

// EventPublisher publishes domain events to interested subscribers.
type EventPublisher interface {
	Publish(event Event) error
}

// EventHandler processes a published event.
type EventHandler func(event Event)
