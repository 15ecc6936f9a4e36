package sharing

import (
	"context"
	"testing"
	"time"

	"github.com/go-go-golems/parley/pkg/conversation"
	"github.com/go-go-golems/parley/pkg/store"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *store.MemoryTranscripts, *store.MemoryShared) {
	t.Helper()
	transcripts := store.NewMemoryTranscripts()
	shared := store.NewMemoryShared()
	return NewService(transcripts, shared), transcripts, shared
}

func seedTranscript(t *testing.T, transcripts *store.MemoryTranscripts, userID string) *conversation.Transcript {
	t.Helper()
	tr := conversation.NewTranscript(userID, "s1", "sys", "Hello!")
	tr.Append(conversation.RoleUser, "hi")
	tr.Append(conversation.RoleAssistant, "How can I help?")
	require.NoError(t, transcripts.Create(context.Background(), tr))
	return tr
}

func TestShareRequiresLiveTranscript(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Share(context.Background(), "u1", "s1", "my chat", "nick")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestShareValidation(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Share(context.Background(), "u1", "s1", "", "nick")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSnapshotIsolation(t *testing.T) {
	svc, transcripts, _ := newService(t)
	seedTranscript(t, transcripts, "u1")
	ctx := context.Background()

	id, err := svc.Share(ctx, "u1", "s1", "my chat", "nick")
	require.NoError(t, err)

	frozen, err := svc.View(ctx, id)
	require.NoError(t, err)
	require.Len(t, frozen, 4)

	// Mutate the live transcript afterwards.
	tr, err := transcripts.Find(ctx, "u1", "s1")
	require.NoError(t, err)
	tr.Append(conversation.RoleUser, "one more thing")
	tr.Entries[0].Content = "rewritten"
	require.NoError(t, transcripts.Save(ctx, tr))

	after, err := svc.View(ctx, id)
	require.NoError(t, err)
	require.Len(t, after, 4)
	require.Equal(t, "sys", after[0].Content)
}

func TestListNewestFirstWithMineFlag(t *testing.T) {
	svc, transcripts, shared := newService(t)
	seedTranscript(t, transcripts, "u1")
	seedTranscript(t, transcripts, "u2")
	ctx := context.Background()

	// Fixed timestamps so ordering does not depend on clock resolution.
	base := time.Now()
	require.NoError(t, shared.Create(ctx, &store.SharedConversation{
		ScenarioID: "s1", UserID: "u1", Title: "older", Nickname: "a",
		CreatedAt: base.Add(-time.Hour),
	}))
	require.NoError(t, shared.Create(ctx, &store.SharedConversation{
		ScenarioID: "s1", UserID: "u2", Title: "newer", Nickname: "b",
		CreatedAt: base,
	}))

	summaries, err := svc.List(ctx, "s1", "u1")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	require.Equal(t, "newer", summaries[0].Title)
	require.False(t, summaries[0].Mine)
	require.Equal(t, "older", summaries[1].Title)
	require.True(t, summaries[1].Mine)
}

func TestDeleteRequiresOwnership(t *testing.T) {
	svc, transcripts, _ := newService(t)
	seedTranscript(t, transcripts, "u1")
	ctx := context.Background()

	id, err := svc.Share(ctx, "u1", "s1", "my chat", "nick")
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, id, "intruder"), ErrForbidden)

	require.NoError(t, svc.Delete(ctx, id, "u1"))
	_, err = svc.View(ctx, id)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestViewUnknownSnapshot(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.View(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}
