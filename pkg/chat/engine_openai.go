package chat

import (
	"context"
	"fmt"

	"github.com/go-go-golems/parley/pkg/conversation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	go_openai "github.com/sashabaranov/go-openai"
)

// OpenAIEngine implements Engine over the OpenAI chat completion API.
type OpenAIEngine struct {
	client *go_openai.Client
	model  string
}

type OpenAIOption func(*OpenAIEngine)

func WithModel(model string) OpenAIOption {
	return func(e *OpenAIEngine) {
		e.model = model
	}
}

func NewOpenAIEngine(apiKey string, baseURL string, options ...OpenAIOption) *OpenAIEngine {
	cfg := go_openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	ret := &OpenAIEngine{
		client: go_openai.NewClientWithConfig(cfg),
		model:  go_openai.GPT3Dot5Turbo,
	}
	for _, o := range options {
		o(ret)
	}
	return ret
}

var _ Engine = (*OpenAIEngine)(nil)

func (e *OpenAIEngine) Complete(ctx context.Context, messages []conversation.Message) (string, error) {
	log.Debug().Int("num_messages", len(messages)).Str("model", e.model).Msg("openai completion started")

	msgs := make([]go_openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, go_openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	resp, err := e.client.CreateChatCompletion(ctx, go_openai.ChatCompletionRequest{
		Model:    e.model,
		Messages: msgs,
	})
	if err != nil {
		return "", errors.Wrap(ErrUpstream, err.Error())
	}
	if len(resp.Choices) == 0 {
		return "", errors.Wrap(ErrUpstream, "completion returned no choices")
	}

	content := resp.Choices[0].Message.Content
	log.Debug().Int("reply_len", len(content)).Msg("openai completion finished")
	return content, nil
}

// OpenAITranslator implements Translator by prompting the completion API.
// The original deployment used a dedicated translation backend; routing
// through the same provider keeps the port identical while avoiding a second
// credential.
type OpenAITranslator struct {
	engine Engine
}

func NewOpenAITranslator(engine Engine) *OpenAITranslator {
	return &OpenAITranslator{engine: engine}
}

var _ Translator = (*OpenAITranslator)(nil)

func (t *OpenAITranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	prompt := fmt.Sprintf(
		"Translate the following text from %s to %s. Return only the translation, nothing else.\n\n%s",
		sourceLang, targetLang, text)
	out, err := t.engine.Complete(ctx, []conversation.Message{
		{Role: conversation.RoleSystem, Content: prompt},
	})
	if err != nil {
		return "", err
	}
	return out, nil
}
