package testutil

// Fake language-service collaborators for tests. The fake engine classifies
// incoming prompts by the marker phrases of the real prompt templates, so
// service tests can script reply, feedback, goal and recommendation
// responses independently.

import (
	"context"
	"strings"
	"sync"

	"github.com/go-go-golems/parley/pkg/chat"
	"github.com/go-go-golems/parley/pkg/conversation"
)

type CallKind string

const (
	CallReply      CallKind = "reply"
	CallFeedback   CallKind = "feedback"
	CallGoal       CallKind = "goal"
	CallExpression CallKind = "expression"
	CallVocab      CallKind = "vocab"
)

type Call struct {
	Kind     CallKind
	Messages []conversation.Message
}

type FakeEngine struct {
	mu sync.Mutex

	ReplyResponse string
	ReplyFunc     func(messages []conversation.Message) (string, error)
	ReplyErr      error

	FeedbackResponse string
	FeedbackErr      error

	// GoalResponses are consumed in order; the last one repeats.
	GoalResponses []string
	GoalErr       error
	goalIdx       int

	ExpressionResponse string
	VocabResponse      string

	Calls []Call
}

var _ chat.Engine = (*FakeEngine)(nil)

func (f *FakeEngine) Complete(_ context.Context, messages []conversation.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	kind := f.classify(messages)
	f.Calls = append(f.Calls, Call{Kind: kind, Messages: messages})

	switch kind {
	case CallFeedback:
		if f.FeedbackErr != nil {
			return "", f.FeedbackErr
		}
		if f.FeedbackResponse != "" {
			return f.FeedbackResponse, nil
		}
		return "Watch your article usage.", nil
	case CallGoal:
		if f.GoalErr != nil {
			return "", f.GoalErr
		}
		if len(f.GoalResponses) == 0 {
			return "false", nil
		}
		resp := f.GoalResponses[f.goalIdx]
		if f.goalIdx < len(f.GoalResponses)-1 {
			f.goalIdx++
		}
		return resp, nil
	case CallExpression:
		if f.ExpressionResponse != "" {
			return f.ExpressionResponse, nil
		}
		return "Could I get that to go, please?", nil
	case CallVocab:
		if f.VocabResponse != "" {
			return f.VocabResponse, nil
		}
		return "order, receipt, refund", nil
	default:
		if f.ReplyErr != nil {
			return "", f.ReplyErr
		}
		if f.ReplyFunc != nil {
			return f.ReplyFunc(messages)
		}
		if f.ReplyResponse != "" {
			return f.ReplyResponse, nil
		}
		return "Sure, coming right up!", nil
	}
}

func (f *FakeEngine) classify(messages []conversation.Message) CallKind {
	if len(messages) != 1 || messages[0].Role != conversation.RoleSystem {
		return CallReply
	}
	c := messages[0].Content
	switch {
	case strings.Contains(c, "judging whether"):
		return CallGoal
	case strings.Contains(c, "English tutor"):
		return CallFeedback
	case strings.Contains(c, "common English expression"):
		return CallExpression
	case strings.Contains(c, "vocabulary words"):
		return CallVocab
	default:
		return CallReply
	}
}

// CallsOf returns all recorded calls of the given kind.
func (f *FakeEngine) CallsOf(kind CallKind) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	ret := []Call{}
	for _, c := range f.Calls {
		if c.Kind == kind {
			ret = append(ret, c)
		}
	}
	return ret
}

// FakeTranslator prefixes the text with the target language, so tests can
// assert that the right text went through translation.
type FakeTranslator struct {
	Err error
}

var _ chat.Translator = (*FakeTranslator)(nil)

func (f *FakeTranslator) Translate(_ context.Context, text, _, targetLang string) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	return targetLang + ":" + text, nil
}
