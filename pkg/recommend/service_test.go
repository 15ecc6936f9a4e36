package recommend

import (
	"context"
	"testing"

	"github.com/go-go-golems/parley/pkg/scenario"
	"github.com/go-go-golems/parley/pkg/store"
	"github.com/go-go-golems/parley/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newFixture(t *testing.T) (*Service, *testutil.FakeEngine, *store.MemoryExpressions, *store.MemoryVocab) {
	t.Helper()
	scenarios := store.NewMemoryScenarios()
	exprs := store.NewMemoryExpressions()
	vocab := store.NewMemoryVocab()
	engine := &testutil.FakeEngine{}
	svc := NewService(scenarios, exprs, vocab, engine, &testutil.FakeTranslator{})

	err := scenarios.Put(context.Background(), &scenario.Scenario{
		ID:       "coffee",
		Title:    "Morning coffee",
		Settings: "order a coffee",
		Mission:  "successfully place an order",
	})
	require.NoError(t, err)
	return svc, engine, exprs, vocab
}

func TestRecommendExpression(t *testing.T) {
	svc, engine, _, _ := newFixture(t)
	engine.ExpressionResponse = "  Could I get a flat white, please?  "

	expr, err := svc.Expression(context.Background(), "coffee")
	require.NoError(t, err)
	require.Equal(t, "Could I get a flat white, please?", expr.Expression)
	require.Equal(t, "zh:Could I get a flat white, please?", expr.Translation)
}

func TestRecommendExpressionUnknownScenario(t *testing.T) {
	svc, _, _, _ := newFixture(t)
	_, err := svc.Expression(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecommendVocabParsesAndTranslates(t *testing.T) {
	svc, engine, _, _ := newFixture(t)
	engine.VocabResponse = "1. order, 2. barista\n3. espresso, extra word"

	items, err := svc.Vocab(context.Background(), "coffee")
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "order", items[0].Vocabulary)
	require.Equal(t, "zh:order", items[0].Translation)
	require.Equal(t, "barista", items[1].Vocabulary)
	require.Equal(t, "espresso", items[2].Vocabulary)
}

func TestParseVocabList(t *testing.T) {
	words := parseVocabList("1. alpha, 2. beta\ngamma")
	require.Equal(t, []string{"alpha", "beta", "gamma"}, words)

	words = parseVocabList("only-one")
	require.Equal(t, []string{"only-one"}, words)

	words = parseVocabList(" , ,\n")
	require.Empty(t, words)
}

func TestSaveExpressionAndVocab(t *testing.T) {
	svc, _, exprs, vocab := newFixture(t)
	ctx := context.Background()

	e, err := svc.SaveExpression(ctx, "u1", "coffee", "Could I get a refill?", "zh:refill")
	require.NoError(t, err)
	require.NotEmpty(t, e.ID)

	listed, err := exprs.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "Could I get a refill?", listed[0].Content)

	v, err := svc.SaveVocab(ctx, "u1", "coffee", "receipt", "zh:receipt")
	require.NoError(t, err)
	require.NotEmpty(t, v.ID)

	vlisted, err := vocab.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, vlisted, 1)

	_, err = svc.SaveExpression(ctx, "", "coffee", "x", "")
	require.ErrorIs(t, err, ErrInvalidInput)
}
