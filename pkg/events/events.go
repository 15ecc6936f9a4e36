package events

import "time"

type EventType string

const (
	EventTypeTurnCompleted      EventType = "turn-completed"
	EventTypeGoalMet            EventType = "goal-met"
	EventTypeConversationShared EventType = "conversation-shared"
	EventTypeExpressionSaved    EventType = "expression-saved"
	EventTypeExpressionRemoved  EventType = "expression-removed"
)

// Event is the envelope published on the dialogue topic. Payload fields are
// flat so downstream consumers can filter without decoding nested structures.
type Event struct {
	Type       EventType `json:"type"`
	UserID     string    `json:"userId,omitempty"`
	ScenarioID string    `json:"scenarioId,omitempty"`
	// Content carries the reply text, saved expression, or snapshot ID
	// depending on the event type.
	Content string    `json:"content,omitempty"`
	GoalMet bool      `json:"goalMet,omitempty"`
	Time    time.Time `json:"time"`
}

func NewEvent(t EventType) Event {
	return Event{Type: t, Time: time.Now()}
}
