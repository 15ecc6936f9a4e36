package recommend

// Package recommend produces practice material for a scenario: one common
// expression that helps achieve the mission, and a short list of useful
// vocabulary words, each translated for the learner.

import (
	"context"
	"regexp"
	"strings"

	"github.com/go-go-golems/parley/pkg/chat"
	"github.com/go-go-golems/parley/pkg/conversation"
	"github.com/go-go-golems/parley/pkg/scenario"
	"github.com/go-go-golems/parley/pkg/store"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidInput marks a request with missing required fields.
var ErrInvalidInput = errors.New("invalid input")

const maxVocabWords = 3

// Expression is one recommended expression with its translation.
type Expression struct {
	Expression  string `json:"expression"`
	Translation string `json:"translation"`
}

// VocabItem is one recommended vocabulary word with its translation.
type VocabItem struct {
	Vocabulary  string `json:"vocabulary"`
	Translation string `json:"translation"`
}

type Service struct {
	scenarios   store.ScenarioStore
	expressions store.ExpressionStore
	vocab       store.VocabStore
	engine      chat.Engine
	translator  chat.Translator
	sourceLang  string
	targetLang  string
}

type ServiceOption func(*Service)

func WithLanguages(source, target string) ServiceOption {
	return func(s *Service) {
		s.sourceLang = source
		s.targetLang = target
	}
}

func NewService(
	scenarios store.ScenarioStore,
	expressions store.ExpressionStore,
	vocab store.VocabStore,
	engine chat.Engine,
	translator chat.Translator,
	options ...ServiceOption,
) *Service {
	ret := &Service{
		scenarios:   scenarios,
		expressions: expressions,
		vocab:       vocab,
		engine:      engine,
		translator:  translator,
		sourceLang:  "en",
		targetLang:  "zh",
	}
	for _, o := range options {
		o(ret)
	}
	return ret
}

func (s *Service) expressionPrompt(sc *scenario.Scenario) string {
	var b strings.Builder
	b.WriteString("Recommend a common English expression in sentence form that can be used in the following scenario to achieve the goal. ")
	b.WriteString("Title: " + sc.Title + ". Settings: " + sc.Settings + ". Goal: " + sc.Mission + ". ")
	b.WriteString("Return just the expression as the answer.")
	return b.String()
}

func (s *Service) vocabPrompt(sc *scenario.Scenario) string {
	var b strings.Builder
	b.WriteString("Recommend three important English vocabulary words that would be useful in the following scenario to achieve the goal. ")
	b.WriteString("Title: " + sc.Title + ". Settings: " + sc.Settings + ". Goal: " + sc.Mission + ". ")
	b.WriteString("List each vocabulary word separated by a comma. Example response: word1, word2, word3")
	return b.String()
}

// Expression recommends one expression for the scenario and translates it.
func (s *Service) Expression(ctx context.Context, scenarioID string) (*Expression, error) {
	if scenarioID == "" {
		return nil, errors.Wrap(ErrInvalidInput, "scenarioId is required")
	}
	sc, err := s.scenarios.Get(ctx, scenarioID)
	if err != nil {
		return nil, err
	}

	expr, err := s.engine.Complete(ctx, []conversation.Message{
		{Role: conversation.RoleSystem, Content: s.expressionPrompt(sc)},
	})
	if err != nil {
		return nil, errors.Wrap(err, "expression recommendation failed")
	}
	expr = strings.TrimSpace(expr)

	translation, err := s.translator.Translate(ctx, expr, s.sourceLang, s.targetLang)
	if err != nil {
		return nil, errors.Wrap(err, "expression translation failed")
	}

	return &Expression{Expression: expr, Translation: translation}, nil
}

var vocabListCleaner = regexp.MustCompile(`[\d.]`)

// parseVocabList turns a free-form model answer into at most three clean
// words: numbering and periods are stripped, then the text is split on
// commas and newlines.
func parseVocabList(raw string) []string {
	cleaned := vocabListCleaner.ReplaceAllString(raw, "")
	parts := regexp.MustCompile(`,|\n`).Split(cleaned, -1)
	words := make([]string, 0, maxVocabWords)
	for _, p := range parts {
		w := strings.TrimSpace(p)
		if w == "" {
			continue
		}
		words = append(words, w)
		if len(words) == maxVocabWords {
			break
		}
	}
	return words
}

// Vocab recommends up to three vocabulary words for the scenario, each
// translated concurrently.
func (s *Service) Vocab(ctx context.Context, scenarioID string) ([]VocabItem, error) {
	if scenarioID == "" {
		return nil, errors.Wrap(ErrInvalidInput, "scenarioId is required")
	}
	sc, err := s.scenarios.Get(ctx, scenarioID)
	if err != nil {
		return nil, err
	}

	raw, err := s.engine.Complete(ctx, []conversation.Message{
		{Role: conversation.RoleSystem, Content: s.vocabPrompt(sc)},
	})
	if err != nil {
		return nil, errors.Wrap(err, "vocab recommendation failed")
	}

	words := parseVocabList(raw)
	log.Debug().Strs("words", words).Str("scenario_id", scenarioID).Msg("recommended vocabulary")

	items := make([]VocabItem, len(words))
	g, gctx := errgroup.WithContext(ctx)
	for i, w := range words {
		i, w := i, w
		g.Go(func() error {
			translation, err := s.translator.Translate(gctx, w, s.sourceLang, s.targetLang)
			if err != nil {
				return errors.Wrapf(err, "could not translate %q", w)
			}
			items[i] = VocabItem{Vocabulary: w, Translation: translation}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return items, nil
}

// SaveExpression persists a recommended expression for the user.
func (s *Service) SaveExpression(ctx context.Context, userID, scenarioID, content, translation string) (*store.SavedExpression, error) {
	if userID == "" || scenarioID == "" || content == "" {
		return nil, errors.Wrap(ErrInvalidInput, "userId, scenarioId and content are required")
	}
	e := &store.SavedExpression{
		UserID:      userID,
		ScenarioID:  scenarioID,
		Role:        conversation.RoleAssistant,
		Content:     content,
		Translation: translation,
	}
	if err := s.expressions.Create(ctx, e); err != nil {
		return nil, errors.Wrap(err, "could not save expression")
	}
	return e, nil
}

// SaveVocab persists a recommended vocabulary word for the user.
func (s *Service) SaveVocab(ctx context.Context, userID, scenarioID, content, translation string) (*store.VocabEntry, error) {
	if userID == "" || scenarioID == "" || content == "" {
		return nil, errors.Wrap(ErrInvalidInput, "userId, scenarioId and content are required")
	}
	v := &store.VocabEntry{
		UserID:      userID,
		ScenarioID:  scenarioID,
		Content:     content,
		Translation: translation,
	}
	if err := s.vocab.Create(ctx, v); err != nil {
		return nil, errors.Wrap(err, "could not save vocab entry")
	}
	return v, nil
}
