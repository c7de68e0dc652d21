// Package shared contains common domain types, errors, and events that are
// used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that
// happened while tracking a session's learning progress.
const (
	// Progress events
	EventContentLearned EventType = "progress.content_learned"
	EventTermLearned    EventType = "progress.term_learned"
	EventQuizSubmitted  EventType = "progress.quiz_submitted"

	// Stats events
	EventStatsRecomputed EventType = "stats.recomputed"
	EventStatsImported   EventType = "stats.imported"

	// Achievement events
	EventAchievementUnlocked EventType = "achievement.unlocked"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	// For this service the aggregate is always the learning session.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
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
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Events
// ═══════════════════════════════════════════════════════════════════════════

// ContentLearnedEvent is emitted when a session learns a content item.
type ContentLearnedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	Date      string `json:"date"`
	ItemIndex int    `json:"item_index"`
	// FirstTime is false when the item was already in the day's learned set.
	FirstTime bool `json:"first_time"`
}

// Payload implements Event interface.
func (e ContentLearnedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id": e.SessionID,
		"date":       e.Date,
		"item_index": e.ItemIndex,
		"first_time": e.FirstTime,
	}
}

// NewContentLearnedEvent creates a new ContentLearnedEvent.
func NewContentLearnedEvent(sessionID, date string, itemIndex int, firstTime bool) ContentLearnedEvent {
	return ContentLearnedEvent{
		BaseEvent: NewBaseEvent(EventContentLearned, sessionID),
		SessionID: sessionID,
		Date:      date,
		ItemIndex: itemIndex,
		FirstTime: firstTime,
	}
}

// TermLearnedEvent is emitted when a session learns a vocabulary term.
type TermLearnedEvent struct {
	BaseEvent
	SessionID    string `json:"session_id"`
	Date         string `json:"date"`
	ContentIndex int    `json:"content_index"`
	Term         string `json:"term"`
	FirstTime    bool   `json:"first_time"`
}

// Payload implements Event interface.
func (e TermLearnedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id":    e.SessionID,
		"date":          e.Date,
		"content_index": e.ContentIndex,
		"term":          e.Term,
		"first_time":    e.FirstTime,
	}
}

// NewTermLearnedEvent creates a new TermLearnedEvent.
func NewTermLearnedEvent(sessionID, date string, contentIndex int, term string, firstTime bool) TermLearnedEvent {
	return TermLearnedEvent{
		BaseEvent:    NewBaseEvent(EventTermLearned, sessionID),
		SessionID:    sessionID,
		Date:         date,
		ContentIndex: contentIndex,
		Term:         term,
		FirstTime:    firstTime,
	}
}

// QuizSubmittedEvent is emitted when a quiz attempt is recorded.
type QuizSubmittedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	Date      string `json:"date"`
	Sequence  int    `json:"sequence"`
	Correct   int    `json:"correct"`
	Total     int    `json:"total"`
	Score     int    `json:"score"`
}

// Payload implements Event interface.
func (e QuizSubmittedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id": e.SessionID,
		"date":       e.Date,
		"sequence":   e.Sequence,
		"correct":    e.Correct,
		"total":      e.Total,
		"score":      e.Score,
	}
}

// NewQuizSubmittedEvent creates a new QuizSubmittedEvent.
func NewQuizSubmittedEvent(sessionID, date string, sequence, correct, total, score int) QuizSubmittedEvent {
	return QuizSubmittedEvent{
		BaseEvent: NewBaseEvent(EventQuizSubmitted, sessionID),
		SessionID: sessionID,
		Date:      date,
		Sequence:  sequence,
		Correct:   correct,
		Total:     total,
		Score:     score,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Stats & Achievement Events
// ═══════════════════════════════════════════════════════════════════════════

// StatsRecomputedEvent is emitted after a full stats recomputation.
type StatsRecomputedEvent struct {
	BaseEvent
	SessionID     string `json:"session_id"`
	TotalLearned  int    `json:"total_learned"`
	TotalTermSets int    `json:"total_term_sets"`
	Streak        int    `json:"streak"`
	MaxStreak     int    `json:"max_streak"`
}

// Payload implements Event interface.
func (e StatsRecomputedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id":      e.SessionID,
		"total_learned":   e.TotalLearned,
		"total_term_sets": e.TotalTermSets,
		"streak":          e.Streak,
		"max_streak":      e.MaxStreak,
	}
}

// NewStatsRecomputedEvent creates a new StatsRecomputedEvent.
func NewStatsRecomputedEvent(sessionID string, totalLearned, totalTermSets, streak, maxStreak int) StatsRecomputedEvent {
	return StatsRecomputedEvent{
		BaseEvent:     NewBaseEvent(EventStatsRecomputed, sessionID),
		SessionID:     sessionID,
		TotalLearned:  totalLearned,
		TotalTermSets: totalTermSets,
		Streak:        streak,
		MaxStreak:     maxStreak,
	}
}

// StatsImportedEvent is emitted when a raw snapshot overwrite is accepted.
type StatsImportedEvent struct {
	BaseEvent
	SessionID     string `json:"session_id"`
	TotalLearned  int    `json:"total_learned"`
	TotalTermSets int    `json:"total_term_sets"`
}

// Payload implements Event interface.
func (e StatsImportedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id":      e.SessionID,
		"total_learned":   e.TotalLearned,
		"total_term_sets": e.TotalTermSets,
	}
}

// NewStatsImportedEvent creates a new StatsImportedEvent.
func NewStatsImportedEvent(sessionID string, totalLearned, totalTermSets int) StatsImportedEvent {
	return StatsImportedEvent{
		BaseEvent:     NewBaseEvent(EventStatsImported, sessionID),
		SessionID:     sessionID,
		TotalLearned:  totalLearned,
		TotalTermSets: totalTermSets,
	}
}

// AchievementUnlockedEvent is emitted once per newly unlocked achievement.
type AchievementUnlockedEvent struct {
	BaseEvent
	SessionID     string `json:"session_id"`
	AchievementID string `json:"achievement_id"`
}

// Payload implements Event interface.
func (e AchievementUnlockedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id":     e.SessionID,
		"achievement_id": e.AchievementID,
	}
}

// NewAchievementUnlockedEvent creates a new AchievementUnlockedEvent.
func NewAchievementUnlockedEvent(sessionID, achievementID string) AchievementUnlockedEvent {
	return AchievementUnlockedEvent{
		BaseEvent:     NewBaseEvent(EventAchievementUnlocked, sessionID),
		SessionID:     sessionID,
		AchievementID: achievementID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
