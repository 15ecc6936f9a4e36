package dialogue

// Package dialogue implements the per-turn orchestration for scenario
// conversations: fan out the feedback and reply completions, translate the
// reply, merge everything into the transcript in one persisted write, then
// run the best-effort goal evaluation.

import (
	"context"
	"strings"

	"github.com/go-go-golems/parley/pkg/chat"
	"github.com/go-go-golems/parley/pkg/conversation"
	"github.com/go-go-golems/parley/pkg/events"
	"github.com/go-go-golems/parley/pkg/scenario"
	"github.com/go-go-golems/parley/pkg/store"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidInput marks a request with missing or empty required fields.
var ErrInvalidInput = errors.New("invalid input")

// TurnResult is the aggregate outcome of one user turn.
type TurnResult struct {
	Reply       string `json:"reply"`
	Translation string `json:"translation"`
	Feedback    string `json:"feedback"`
	GoalMet     bool   `json:"goalMet"`
}

type Service struct {
	transcripts store.TranscriptStore
	scenarios   store.ScenarioStore
	engine      chat.Engine
	translator  chat.Translator
	publisher   events.Publisher
	sourceLang  string
	targetLang  string
}

type ServiceOption func(*Service)

func WithPublisher(p events.Publisher) ServiceOption {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithLanguages(source, target string) ServiceOption {
	return func(s *Service) {
		s.sourceLang = source
		s.targetLang = target
	}
}

func NewService(
	transcripts store.TranscriptStore,
	scenarios store.ScenarioStore,
	engine chat.Engine,
	translator chat.Translator,
	options ...ServiceOption,
) *Service {
	ret := &Service{
		transcripts: transcripts,
		scenarios:   scenarios,
		engine:      engine,
		translator:  translator,
		publisher:   events.NullPublisher{},
		sourceLang:  "en",
		targetLang:  "zh",
	}
	for _, o := range options {
		o(ret)
	}
	return ret
}

// SubmitTurn runs one full user turn. The new user entry and the merged
// assistant entry are staged on a clone of the loaded transcript and
// persisted in a single Save once the feedback+reply join and the
// translation have all succeeded, so a failed turn leaves the stored
// transcript untouched.
func (s *Service) SubmitTurn(ctx context.Context, userID, scenarioID, utterance string) (*TurnResult, error) {
	utterance = strings.TrimSpace(utterance)
	if userID == "" || scenarioID == "" || utterance == "" {
		return nil, errors.Wrap(ErrInvalidInput, "userId, scenarioId and message are required")
	}

	sc, err := s.scenarios.Get(ctx, scenarioID)
	if err != nil {
		return nil, err
	}

	t, err := s.loadOrCreate(ctx, userID, scenarioID, sc)
	if err != nil {
		return nil, err
	}

	working := t.Clone()
	working.Append(conversation.RoleUser, utterance)

	log.Debug().
		Str("user_id", userID).
		Str("scenario_id", scenarioID).
		Int("num_entries", len(working.Entries)).
		Msg("turn started")

	var reply, feedback string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reply, err = s.engine.Complete(gctx, working.Projection())
		return errors.Wrap(err, "reply completion failed")
	})
	g.Go(func() error {
		prompt, err := renderFeedbackPrompt(sc, utterance)
		if err != nil {
			return err
		}
		raw, err := s.engine.Complete(gctx, []conversation.Message{
			{Role: conversation.RoleSystem, Content: prompt},
		})
		if err != nil {
			return errors.Wrap(err, "feedback completion failed")
		}
		feedback = normalizeFeedback(raw)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	translation, err := s.translator.Translate(ctx, reply, s.sourceLang, s.targetLang)
	if err != nil {
		return nil, errors.Wrap(err, "reply translation failed")
	}

	assistant := working.Append(conversation.RoleAssistant, reply)
	assistant.Translation = translation
	if err := working.AttachFeedback(feedback); err != nil {
		return nil, err
	}

	if err := s.transcripts.Save(ctx, working); err != nil {
		return nil, errors.Wrap(err, "could not persist transcript")
	}

	goalMet := s.checkGoal(ctx, working, sc)

	ev := events.NewEvent(events.EventTypeTurnCompleted)
	ev.UserID = userID
	ev.ScenarioID = scenarioID
	ev.Content = reply
	ev.GoalMet = goalMet
	s.publisher.PublishBlind(ev)

	return &TurnResult{
		Reply:       reply,
		Translation: translation,
		Feedback:    feedback,
		GoalMet:     goalMet,
	}, nil
}

// checkGoal runs the goal evaluation after a successful turn. It is best
// effort: neither an upstream failure nor a flag-persist failure rolls back
// the turn, the flag simply stays unchanged for this turn.
func (s *Service) checkGoal(ctx context.Context, t *conversation.Transcript, sc *scenario.Scenario) bool {
	if t.GoalMet {
		return true
	}
	met, err := s.EvaluateGoal(ctx, t, sc.Mission)
	if err != nil {
		log.Warn().Err(err).
			Str("user_id", t.UserID).
			Str("scenario_id", t.ScenarioID).
			Msg("goal evaluation failed, leaving goalMet unchanged")
		return false
	}
	if !met {
		return false
	}
	t.GoalMet = true
	if err := s.transcripts.Save(ctx, t); err != nil {
		log.Warn().Err(err).
			Str("user_id", t.UserID).
			Str("scenario_id", t.ScenarioID).
			Msg("could not persist goal flag, leaving goalMet unchanged")
		t.GoalMet = false
		return false
	}

	ev := events.NewEvent(events.EventTypeGoalMet)
	ev.UserID = t.UserID
	ev.ScenarioID = t.ScenarioID
	s.publisher.PublishBlind(ev)
	return true
}

// GetTranscript returns the transcript for (user, scenario), lazily creating
// and persisting the seeded transcript when the scenario exists but no
// conversation has started yet.
func (s *Service) GetTranscript(ctx context.Context, userID, scenarioID string) (*conversation.Transcript, error) {
	if userID == "" || scenarioID == "" {
		return nil, errors.Wrap(ErrInvalidInput, "userId and scenarioId are required")
	}
	t, err := s.transcripts.Find(ctx, userID, scenarioID)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	sc, err := s.scenarios.Get(ctx, scenarioID)
	if err != nil {
		return nil, err
	}
	return s.createTranscript(ctx, userID, scenarioID, sc)
}

// DeleteTranscript removes the conversation so the scenario can be restarted.
func (s *Service) DeleteTranscript(ctx context.Context, userID, scenarioID string) error {
	return s.transcripts.Delete(ctx, userID, scenarioID)
}

func (s *Service) loadOrCreate(ctx context.Context, userID, scenarioID string, sc *scenario.Scenario) (*conversation.Transcript, error) {
	t, err := s.transcripts.Find(ctx, userID, scenarioID)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return s.createTranscript(ctx, userID, scenarioID, sc)
}

func (s *Service) createTranscript(ctx context.Context, userID, scenarioID string, sc *scenario.Scenario) (*conversation.Transcript, error) {
	systemPrompt, err := RenderSystemPrompt(sc)
	if err != nil {
		return nil, err
	}
	t := conversation.NewTranscript(userID, scenarioID, systemPrompt, sc.StartingMessage)
	if err := s.transcripts.Create(ctx, t); err != nil {
		return nil, errors.Wrap(err, "could not create transcript")
	}
	log.Debug().
		Str("user_id", userID).
		Str("scenario_id", scenarioID).
		Msg("seeded new transcript")
	return t, nil
}
