package expressions

import (
	"context"
	"testing"

	"github.com/go-go-golems/parley/pkg/conversation"
	"github.com/go-go-golems/parley/pkg/store"
	"github.com/stretchr/testify/require"
)

func seedTranscript(t *testing.T, transcripts *store.MemoryTranscripts) *conversation.Transcript {
	t.Helper()
	tr := conversation.NewTranscript("u1", "s1", "sys", "Good morning!")
	tr.Append(conversation.RoleUser, "good morning to you")
	a := tr.Append(conversation.RoleAssistant, "What a lovely day, isn't it?")
	a.Translation = "translated"
	require.NoError(t, transcripts.Create(context.Background(), tr))
	return tr
}

func newService(t *testing.T) (*Service, *store.MemoryTranscripts, *store.MemoryExpressions) {
	t.Helper()
	transcripts := store.NewMemoryTranscripts()
	exprs := store.NewMemoryExpressions()
	return NewService(transcripts, exprs), transcripts, exprs
}

func TestToggleRoundTrip(t *testing.T) {
	svc, transcripts, exprs := newService(t)
	seedTranscript(t, transcripts)
	ctx := context.Background()

	req := ToggleRequest{
		Role:        "assistant",
		Content:     "Good morning!",
		Translation: "translated greeting",
	}

	entry, err := svc.Toggle(ctx, "u1", "s1", req)
	require.NoError(t, err)
	require.True(t, entry.Saved)

	saved, err := exprs.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	require.Equal(t, "Good morning!", saved[0].Content)
	require.Equal(t, "translated greeting", saved[0].Translation)
	require.Equal(t, "s1", saved[0].ScenarioID)

	tr, err := transcripts.Find(ctx, "u1", "s1")
	require.NoError(t, err)
	e, ok := tr.FindAssistantByContent("Good morning!")
	require.True(t, ok)
	require.True(t, e.Saved)

	// Second toggle reverses the first: flag cleared, record gone.
	entry, err = svc.Toggle(ctx, "u1", "s1", req)
	require.NoError(t, err)
	require.False(t, entry.Saved)

	saved, err = exprs.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, saved)

	tr, err = transcripts.Find(ctx, "u1", "s1")
	require.NoError(t, err)
	e, ok = tr.FindAssistantByContent("Good morning!")
	require.True(t, ok)
	require.False(t, e.Saved)
}

func TestToggleTranscriptNotFound(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Toggle(context.Background(), "u1", "missing", ToggleRequest{Content: "Good morning!"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestToggleNoMatchingEntry(t *testing.T) {
	svc, transcripts, _ := newService(t)
	seedTranscript(t, transcripts)
	_, err := svc.Toggle(context.Background(), "u1", "s1", ToggleRequest{Content: "never said this"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestToggleIgnoresUserEntriesWithSameContent(t *testing.T) {
	svc, transcripts, _ := newService(t)
	seedTranscript(t, transcripts)

	// "good morning to you" only exists as a user entry.
	_, err := svc.Toggle(context.Background(), "u1", "s1", ToggleRequest{Content: "good morning to you"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestToggleMatchesMostRecentDuplicate(t *testing.T) {
	svc, transcripts, _ := newService(t)
	tr := conversation.NewTranscript("u1", "s1", "sys", "")
	tr.Append(conversation.RoleAssistant, "Anything else?")
	tr.Append(conversation.RoleUser, "no")
	tr.Append(conversation.RoleAssistant, "Anything else?")
	require.NoError(t, transcripts.Create(context.Background(), tr))

	entry, err := svc.Toggle(context.Background(), "u1", "s1", ToggleRequest{Content: "Anything else?"})
	require.NoError(t, err)

	stored, err := transcripts.Find(context.Background(), "u1", "s1")
	require.NoError(t, err)
	require.Equal(t, entry.ID, stored.Entries[3].ID)
	require.True(t, stored.Entries[3].Saved)
	require.False(t, stored.Entries[1].Saved)
}

func TestToggleByEntryID(t *testing.T) {
	svc, transcripts, _ := newService(t)
	tr := seedTranscript(t, transcripts)
	target := tr.Entries[1]

	entry, err := svc.Toggle(context.Background(), "u1", "s1", ToggleRequest{
		EntryID: target.ID,
		Content: target.Content,
	})
	require.NoError(t, err)
	require.Equal(t, target.ID, entry.ID)
	require.True(t, entry.Saved)
}

func TestToggleByEntryIDRejectsUserEntry(t *testing.T) {
	svc, transcripts, _ := newService(t)
	tr := seedTranscript(t, transcripts)
	userEntry := tr.Entries[2]

	_, err := svc.Toggle(context.Background(), "u1", "s1", ToggleRequest{
		EntryID: userEntry.ID,
		Content: userEntry.Content,
	})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestToggleValidation(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Toggle(context.Background(), "", "s1", ToggleRequest{Content: "x"})
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Toggle(context.Background(), "u1", "s1", ToggleRequest{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestListAndDelete(t *testing.T) {
	svc, transcripts, exprs := newService(t)
	seedTranscript(t, transcripts)
	ctx := context.Background()

	_, err := svc.Toggle(ctx, "u1", "s1", ToggleRequest{Content: "Good morning!"})
	require.NoError(t, err)

	saved, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, saved, 1)

	require.NoError(t, svc.Delete(ctx, "u1", saved[0].ID))
	saved, err = svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, saved)

	require.ErrorIs(t, svc.Delete(ctx, "u1", "missing"), store.ErrNotFound)

	// A user cannot delete someone else's record.
	_, err = svc.Toggle(ctx, "u1", "s1", ToggleRequest{Content: "Good morning!"})
	require.NoError(t, err)
	again, err := exprs.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.ErrorIs(t, svc.Delete(ctx, "other", again[0].ID), store.ErrNotFound)
}
