package store

import (
	"context"
	"testing"
	"time"

	"github.com/go-go-golems/parley/pkg/conversation"
	"github.com/go-go-golems/parley/pkg/scenario"
	"github.com/stretchr/testify/require"
)

func TestMemoryTranscriptsRoundTrip(t *testing.T) {
	m := NewMemoryTranscripts()
	ctx := context.Background()

	_, err := m.Find(ctx, "u1", "s1")
	require.ErrorIs(t, err, ErrNotFound)

	tr := conversation.NewTranscript("u1", "s1", "sys", "hi")
	require.NoError(t, m.Create(ctx, tr))

	got, err := m.Find(ctx, "u1", "s1")
	require.NoError(t, err)
	require.Len(t, got.Entries, 2)

	got.Append(conversation.RoleUser, "hello")
	require.NoError(t, m.Save(ctx, got))

	again, err := m.Find(ctx, "u1", "s1")
	require.NoError(t, err)
	require.Len(t, again.Entries, 3)

	require.NoError(t, m.Delete(ctx, "u1", "s1"))
	require.ErrorIs(t, m.Delete(ctx, "u1", "s1"), ErrNotFound)
}

func TestMemoryTranscriptsCopyIsolation(t *testing.T) {
	m := NewMemoryTranscripts()
	ctx := context.Background()

	tr := conversation.NewTranscript("u1", "s1", "sys", "hi")
	require.NoError(t, m.Create(ctx, tr))

	// Mutating what we handed in or got back must not reach the store.
	tr.Entries[0].Content = "mutated input"
	got, err := m.Find(ctx, "u1", "s1")
	require.NoError(t, err)
	require.Equal(t, "sys", got.Entries[0].Content)

	got.Entries[0].Content = "mutated output"
	again, err := m.Find(ctx, "u1", "s1")
	require.NoError(t, err)
	require.Equal(t, "sys", again.Entries[0].Content)
}

func TestMemoryScenarios(t *testing.T) {
	m := NewMemoryScenarios()
	ctx := context.Background()

	_, err := m.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	older := &scenario.Scenario{Title: "older", CreatedAt: time.Now().Add(-time.Hour)}
	newer := &scenario.Scenario{Title: "newer", CreatedAt: time.Now()}
	require.NoError(t, m.Put(ctx, older))
	require.NoError(t, m.Put(ctx, newer))
	require.NotEmpty(t, older.ID)

	got, err := m.Get(ctx, older.ID)
	require.NoError(t, err)
	require.Equal(t, "older", got.Title)

	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "newer", list[0].Title)
}

func TestMemoryExpressionsDeleteByUserAndContent(t *testing.T) {
	m := NewMemoryExpressions()
	ctx := context.Background()

	for _, user := range []string{"u1", "u1", "u2"} {
		require.NoError(t, m.Create(ctx, &SavedExpression{
			UserID:  user,
			Content: "Good morning!",
		}))
	}
	require.NoError(t, m.Create(ctx, &SavedExpression{UserID: "u1", Content: "other"}))

	require.NoError(t, m.DeleteByUserAndContent(ctx, "u1", "Good morning!"))

	u1, err := m.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, u1, 1)
	require.Equal(t, "other", u1[0].Content)

	u2, err := m.ListByUser(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, u2, 1)
}

func TestMemorySharedIsolationAndOrdering(t *testing.T) {
	m := NewMemoryShared()
	ctx := context.Background()

	entries := []conversation.Entry{conversation.NewEntry(conversation.RoleSystem, "sys")}
	sc := &SharedConversation{ScenarioID: "s1", UserID: "u1", Title: "t", Nickname: "n", Entries: entries}
	require.NoError(t, m.Create(ctx, sc))
	require.NotEmpty(t, sc.ID)

	// Mutating the caller's slice must not reach the stored snapshot.
	entries[0].Content = "mutated"
	got, err := m.Get(ctx, sc.ID)
	require.NoError(t, err)
	require.Equal(t, "sys", got.Entries[0].Content)

	require.NoError(t, m.Create(ctx, &SharedConversation{
		ScenarioID: "s1", UserID: "u2", Title: "newer", Nickname: "n",
		CreatedAt: time.Now().Add(time.Hour),
	}))

	list, err := m.ListByScenario(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "newer", list[0].Title)

	require.NoError(t, m.Delete(ctx, sc.ID))
	require.ErrorIs(t, m.Delete(ctx, sc.ID), ErrNotFound)
}
