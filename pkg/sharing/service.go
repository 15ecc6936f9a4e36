package sharing

// Package sharing freezes live transcripts into immutable, independently
// keyed snapshots for read-only distribution.

import (
	"context"
	"time"

	"github.com/go-go-golems/parley/pkg/conversation"
	"github.com/go-go-golems/parley/pkg/events"
	"github.com/go-go-golems/parley/pkg/store"
	"github.com/huandu/go-clone"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var (
	// ErrForbidden marks an ownership check failure on a mutating snapshot
	// operation.
	ErrForbidden = errors.New("not the owner of this shared conversation")
	// ErrInvalidInput marks a request with missing required fields.
	ErrInvalidInput = errors.New("invalid input")
)

// Summary is the listing shape for shared conversations. Mine tells the
// requester whether they own the snapshot.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"createdAt"`
	Mine      bool      `json:"mine"`
}

type Service struct {
	transcripts store.TranscriptStore
	shared      store.SharedStore
	publisher   events.Publisher
}

type ServiceOption func(*Service)

func WithPublisher(p events.Publisher) ServiceOption {
	return func(s *Service) {
		s.publisher = p
	}
}

func NewService(transcripts store.TranscriptStore, shared store.SharedStore, options ...ServiceOption) *Service {
	ret := &Service{
		transcripts: transcripts,
		shared:      shared,
		publisher:   events.NullPublisher{},
	}
	for _, o := range options {
		o(ret)
	}
	return ret
}

// Share copies the live transcript's entry sequence by value into a new
// snapshot. Later turns on the live transcript never reach the snapshot.
func (s *Service) Share(ctx context.Context, userID, scenarioID, title, nickname string) (string, error) {
	if userID == "" || scenarioID == "" || title == "" || nickname == "" {
		return "", errors.Wrap(ErrInvalidInput, "userId, scenarioId, title and nickname are required")
	}

	t, err := s.transcripts.Find(ctx, userID, scenarioID)
	if err != nil {
		return "", err
	}

	snapshot := &store.SharedConversation{
		ScenarioID: scenarioID,
		UserID:     userID,
		Title:      title,
		Nickname:   nickname,
		Entries:    clone.Clone(t.Entries).([]conversation.Entry),
	}
	if err := s.shared.Create(ctx, snapshot); err != nil {
		return "", errors.Wrap(err, "could not persist shared conversation")
	}

	ev := events.NewEvent(events.EventTypeConversationShared)
	ev.UserID = userID
	ev.ScenarioID = scenarioID
	ev.Content = snapshot.ID
	s.publisher.PublishBlind(ev)

	log.Debug().
		Str("user_id", userID).
		Str("scenario_id", scenarioID).
		Str("shared_id", snapshot.ID).
		Msg("shared conversation created")
	return snapshot.ID, nil
}

// List returns the snapshots for a scenario, newest first, annotated with
// whether each belongs to the requester.
func (s *Service) List(ctx context.Context, scenarioID, requesterID string) ([]Summary, error) {
	if scenarioID == "" {
		return nil, errors.Wrap(ErrInvalidInput, "scenarioId is required")
	}
	records, err := s.shared.ListByScenario(ctx, scenarioID)
	if err != nil {
		return nil, err
	}
	ret := make([]Summary, 0, len(records))
	for _, r := range records {
		ret = append(ret, Summary{
			ID:        r.ID,
			Title:     r.Title,
			Nickname:  r.Nickname,
			CreatedAt: r.CreatedAt,
			Mine:      r.UserID == requesterID,
		})
	}
	return ret, nil
}

// View returns the frozen entry sequence of a snapshot.
func (s *Service) View(ctx context.Context, id string) ([]conversation.Entry, error) {
	if id == "" {
		return nil, errors.Wrap(ErrInvalidInput, "id is required")
	}
	record, err := s.shared.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return record.Entries, nil
}

// Delete removes a snapshot; only its owner may do so.
func (s *Service) Delete(ctx context.Context, id, requesterID string) error {
	if id == "" || requesterID == "" {
		return errors.Wrap(ErrInvalidInput, "id and requester are required")
	}
	record, err := s.shared.Get(ctx, id)
	if err != nil {
		return err
	}
	if record.UserID != requesterID {
		return errors.Wrapf(ErrForbidden, "shared conversation %s", id)
	}
	return s.shared.Delete(ctx, id)
}
