package chat

import (
	"context"

	"github.com/go-go-golems/parley/pkg/conversation"
	"github.com/pkg/errors"
)

// ErrUpstream marks a failure of the external language or translation
// service. Callers check for it with errors.Is; the concrete provider error
// is wrapped underneath.
var ErrUpstream = errors.New("upstream language service failure")

// Engine is the completion port of the external language model. At most one
// logical reply per call, synchronous from the caller's perspective.
type Engine interface {
	Complete(ctx context.Context, messages []conversation.Message) (string, error)
}

// Translator is the translation port.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}
