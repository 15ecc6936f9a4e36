package store

import (
	"context"
	"time"

	"github.com/go-go-golems/parley/pkg/conversation"
	"github.com/go-go-golems/parley/pkg/scenario"
	"github.com/pkg/errors"
)

// ErrNotFound marks a lookup miss in any of the record stores.
var ErrNotFound = errors.New("record not found")

// SavedExpression is a durable, independently addressable copy of one
// assistant entry's content. Its existence is kept in lock-step with the
// corresponding entry's saved flag.
type SavedExpression struct {
	ID          string            `json:"id" db:"id"`
	UserID      string            `json:"userId" db:"user_id"`
	ScenarioID  string            `json:"scenarioId" db:"scenario_id"`
	Role        conversation.Role `json:"role" db:"role"`
	Content     string            `json:"content" db:"content"`
	Translation string            `json:"translation,omitempty" db:"translation"`
	CreatedAt   time.Time         `json:"createdAt" db:"created_at"`
}

// VocabEntry is a saved vocabulary recommendation.
type VocabEntry struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"userId" db:"user_id"`
	ScenarioID  string    `json:"scenarioId" db:"scenario_id"`
	Content     string    `json:"content" db:"content"`
	Translation string    `json:"translation,omitempty" db:"translation"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// SharedConversation is an immutable snapshot of a transcript's entries,
// shareable under its own ID. Never mutated after creation.
type SharedConversation struct {
	ID         string               `json:"id" db:"id"`
	ScenarioID string               `json:"scenarioId" db:"scenario_id"`
	UserID     string               `json:"userId" db:"user_id"`
	Title      string               `json:"title" db:"title"`
	Nickname   string               `json:"nickname" db:"nickname"`
	Entries    []conversation.Entry `json:"entries" db:"-"`
	CreatedAt  time.Time            `json:"createdAt" db:"created_at"`
}

// TranscriptStore persists transcripts keyed by (user, scenario). Find
// returns ErrNotFound on a miss. Save is a whole-record overwrite; there is
// no optimistic-concurrency check, so concurrent turns on the same key are
// last-writer-wins (accepted limitation, see the service docs).
type TranscriptStore interface {
	Find(ctx context.Context, userID, scenarioID string) (*conversation.Transcript, error)
	Create(ctx context.Context, t *conversation.Transcript) error
	Save(ctx context.Context, t *conversation.Transcript) error
	Delete(ctx context.Context, userID, scenarioID string) error
}

// ScenarioStore is read-mostly from this service's perspective; Put exists
// for the seed command.
type ScenarioStore interface {
	Get(ctx context.Context, id string) (*scenario.Scenario, error)
	List(ctx context.Context) ([]*scenario.Scenario, error)
	Put(ctx context.Context, sc *scenario.Scenario) error
}

// ExpressionStore persists saved expressions. DeleteByUserAndContent mirrors
// the toggle's correlation key: user plus exact content.
type ExpressionStore interface {
	Create(ctx context.Context, e *SavedExpression) error
	DeleteByUserAndContent(ctx context.Context, userID, content string) error
	DeleteByID(ctx context.Context, userID, id string) error
	ListByUser(ctx context.Context, userID string) ([]*SavedExpression, error)
}

// VocabStore persists saved vocabulary items.
type VocabStore interface {
	Create(ctx context.Context, v *VocabEntry) error
	ListByUser(ctx context.Context, userID string) ([]*VocabEntry, error)
}

// SharedStore persists conversation snapshots.
type SharedStore interface {
	Create(ctx context.Context, sc *SharedConversation) error
	Get(ctx context.Context, id string) (*SharedConversation, error)
	ListByScenario(ctx context.Context, scenarioID string) ([]*SharedConversation, error)
	Delete(ctx context.Context, id string) error
}
