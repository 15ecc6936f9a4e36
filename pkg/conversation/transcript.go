package conversation

// Package conversation holds the transcript model for scenario dialogues.
//
// A Transcript is the full ordered history for one (user, scenario) pair.
// It is append-only during normal turns, with exactly two permitted in-place
// mutations: attaching grammar feedback to the most recent user entry once a
// turn resolves, and toggling the saved flag on an assistant entry. The
// first entry is always the synthesized system instruction, the second (when
// the scenario scripts one) the assistant's opening line.

import (
	"time"

	"github.com/huandu/go-clone"
	"github.com/pkg/errors"
)

type Transcript struct {
	UserID     string    `json:"userId"`
	ScenarioID string    `json:"scenarioId"`
	Entries    []Entry   `json:"entries"`
	GoalMet    bool      `json:"goalMet"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewTranscript seeds a fresh transcript with the synthesized system
// instruction and, when non-empty, the scenario's scripted opening line.
func NewTranscript(userID, scenarioID, systemPrompt, openingLine string) *Transcript {
	now := time.Now()
	t := &Transcript{
		UserID:     userID,
		ScenarioID: scenarioID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	t.Entries = append(t.Entries, NewEntry(RoleSystem, systemPrompt))
	if openingLine != "" {
		t.Entries = append(t.Entries, NewEntry(RoleAssistant, openingLine))
	}
	return t
}

// Clone returns a deep copy suitable for mutation without affecting the
// original. Turn merges are staged on a clone and persisted in one write, so
// a failed turn never leaves a half-applied transcript behind.
func (t *Transcript) Clone() *Transcript {
	if t == nil {
		return nil
	}
	return clone.Clone(t).(*Transcript)
}

// Append adds a new entry for the given role and returns a pointer into the
// entries slice. The pointer is only valid until the next append.
func (t *Transcript) Append(role Role, content string) *Entry {
	t.Entries = append(t.Entries, NewEntry(role, content))
	return &t.Entries[len(t.Entries)-1]
}

// AttachFeedback sets feedback on the entry at position length-2, which
// after a merge append is the user entry the feedback was computed for.
// Positional attachment avoids mis-attaching to a stale entry when the user
// repeats themselves.
func (t *Transcript) AttachFeedback(feedback string) error {
	if len(t.Entries) < 2 {
		return errors.New("transcript too short to attach feedback")
	}
	e := &t.Entries[len(t.Entries)-2]
	if e.Role != RoleUser {
		return errors.Errorf("entry before last is %s, expected user", e.Role)
	}
	e.Feedback = feedback
	return nil
}

// Projection strips entries down to the role+content shape sent to the
// language service.
func (t *Transcript) Projection() []Message {
	msgs := make([]Message, 0, len(t.Entries))
	for _, e := range t.Entries {
		msgs = append(msgs, Message{Role: e.Role, Content: e.Content})
	}
	return msgs
}

// FindEntry locates an entry by ID.
func (t *Transcript) FindEntry(id string) (*Entry, bool) {
	for i := range t.Entries {
		if t.Entries[i].ID == id {
			return &t.Entries[i], true
		}
	}
	return nil, false
}

// FindAssistantByContent returns the most recent assistant entry whose
// content exactly equals the given text. Content equality is a fragile
// correlation key (identical replies collide), which is why toggle requests
// carry an entry ID when the client has one.
func (t *Transcript) FindAssistantByContent(content string) (*Entry, bool) {
	for i := len(t.Entries) - 1; i >= 0; i-- {
		if t.Entries[i].Role == RoleAssistant && t.Entries[i].Content == content {
			return &t.Entries[i], true
		}
	}
	return nil, false
}

// LastAssistant returns the most recent assistant entry.
func (t *Transcript) LastAssistant() (*Entry, bool) {
	for i := len(t.Entries) - 1; i >= 0; i-- {
		if t.Entries[i].Role == RoleAssistant {
			return &t.Entries[i], true
		}
	}
	return nil, false
}
