package conversation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Entry is one role-tagged contribution to a Transcript. Translation is only
// ever set on assistant entries, Feedback only on user entries, Saved only on
// assistant entries.
type Entry struct {
	ID          string `json:"id"`
	Role        Role   `json:"role"`
	Content     string `json:"content"`
	Translation string `json:"translation,omitempty"`
	Feedback    string `json:"feedback,omitempty"`
	Saved       bool   `json:"saved,omitempty"`
}

func NewEntry(role Role, content string) Entry {
	return Entry{
		ID:      uuid.New().String(),
		Role:    role,
		Content: content,
	}
}

func (e Entry) View() string {
	return fmt.Sprintf("[%s]: %s", e.Role, strings.TrimRight(e.Content, "\n"))
}

// Message is the role+content projection of an Entry, the only shape the
// language service ever sees. Feedback, translation and saved state are
// local bookkeeping and must be stripped before a completion request.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
