package expressions

// Package expressions keeps the saved flag on transcript entries in
// lock-step with the durable saved-expression records: toggling an entry on
// creates a record, toggling it off deletes it again.

import (
	"context"

	"github.com/go-go-golems/parley/pkg/conversation"
	"github.com/go-go-golems/parley/pkg/events"
	"github.com/go-go-golems/parley/pkg/store"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrInvalidInput marks a request with missing required fields.
var ErrInvalidInput = errors.New("invalid input")

// ToggleRequest identifies the entry to toggle. EntryID wins when set;
// otherwise the most recent assistant entry with exactly matching content is
// used, which is the legacy correlation key (identical replies collide, so
// clients that know the ID should send it).
type ToggleRequest struct {
	EntryID     string `json:"entryId,omitempty"`
	Role        string `json:"role"`
	Content     string `json:"content"`
	Translation string `json:"translation,omitempty"`
}

type Service struct {
	transcripts store.TranscriptStore
	expressions store.ExpressionStore
	publisher   events.Publisher
}

type ServiceOption func(*Service)

func WithPublisher(p events.Publisher) ServiceOption {
	return func(s *Service) {
		s.publisher = p
	}
}

func NewService(transcripts store.TranscriptStore, expressions store.ExpressionStore, options ...ServiceOption) *Service {
	ret := &Service{
		transcripts: transcripts,
		expressions: expressions,
		publisher:   events.NullPublisher{},
	}
	for _, o := range options {
		o(ret)
	}
	return ret
}

// Toggle flips the saved flag on an assistant entry and mirrors the flip
// into the expression store. It is a strict toggle: applying it twice
// restores the original state with zero net records.
func (s *Service) Toggle(ctx context.Context, userID, scenarioID string, req ToggleRequest) (*conversation.Entry, error) {
	if userID == "" || scenarioID == "" || req.Content == "" {
		return nil, errors.Wrap(ErrInvalidInput, "userId, scenarioId and content are required")
	}

	t, err := s.transcripts.Find(ctx, userID, scenarioID)
	if err != nil {
		return nil, err
	}

	entry, ok := s.locate(t, req)
	if !ok {
		return nil, errors.Wrap(store.ErrNotFound, "no matching assistant entry")
	}

	if entry.Saved {
		if err := s.expressions.DeleteByUserAndContent(ctx, userID, entry.Content); err != nil {
			return nil, errors.Wrap(err, "could not delete saved expression")
		}
		entry.Saved = false
	} else {
		err := s.expressions.Create(ctx, &store.SavedExpression{
			UserID:      userID,
			ScenarioID:  scenarioID,
			Role:        entry.Role,
			Content:     entry.Content,
			Translation: req.Translation,
		})
		if err != nil {
			return nil, errors.Wrap(err, "could not create saved expression")
		}
		entry.Saved = true
	}

	if err := s.transcripts.Save(ctx, t); err != nil {
		return nil, errors.Wrap(err, "could not persist transcript")
	}

	evType := events.EventTypeExpressionSaved
	if !entry.Saved {
		evType = events.EventTypeExpressionRemoved
	}
	ev := events.NewEvent(evType)
	ev.UserID = userID
	ev.ScenarioID = scenarioID
	ev.Content = entry.Content
	s.publisher.PublishBlind(ev)

	log.Debug().
		Str("user_id", userID).
		Str("scenario_id", scenarioID).
		Bool("saved", entry.Saved).
		Msg("toggled saved expression")

	cp := *entry
	return &cp, nil
}

func (s *Service) locate(t *conversation.Transcript, req ToggleRequest) (*conversation.Entry, bool) {
	if req.EntryID != "" {
		e, ok := t.FindEntry(req.EntryID)
		if ok && e.Role == conversation.RoleAssistant {
			return e, true
		}
		return nil, false
	}
	return t.FindAssistantByContent(req.Content)
}

// List returns the user's saved expressions, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]*store.SavedExpression, error) {
	if userID == "" {
		return nil, errors.Wrap(ErrInvalidInput, "userId is required")
	}
	return s.expressions.ListByUser(ctx, userID)
}

// Delete removes a saved expression by ID. The transcript flag is not
// touched here; the record may belong to a conversation that no longer
// exists.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if userID == "" || id == "" {
		return errors.Wrap(ErrInvalidInput, "userId and id are required")
	}
	return s.expressions.DeleteByID(ctx, userID, id)
}
