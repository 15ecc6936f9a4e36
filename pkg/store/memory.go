package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-go-golems/parley/pkg/conversation"
	"github.com/go-go-golems/parley/pkg/scenario"
	"github.com/google/uuid"
)

// In-process implementations of the store ports, used by tests and by the
// serve command when no database is configured. Records are copied on the
// way in and out so callers cannot mutate store state through retained
// pointers.

type transcriptKey struct {
	userID     string
	scenarioID string
}

type MemoryTranscripts struct {
	mu      sync.RWMutex
	records map[transcriptKey]*conversation.Transcript
}

func NewMemoryTranscripts() *MemoryTranscripts {
	return &MemoryTranscripts{records: map[transcriptKey]*conversation.Transcript{}}
}

var _ TranscriptStore = (*MemoryTranscripts)(nil)

func (m *MemoryTranscripts) Find(_ context.Context, userID, scenarioID string) (*conversation.Transcript, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.records[transcriptKey{userID, scenarioID}]
	if !ok {
		return nil, ErrNotFound
	}
	return t.Clone(), nil
}

func (m *MemoryTranscripts) Create(_ context.Context, t *conversation.Transcript) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[transcriptKey{t.UserID, t.ScenarioID}] = t.Clone()
	return nil
}

func (m *MemoryTranscripts) Save(_ context.Context, t *conversation.Transcript) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := t.Clone()
	cp.UpdatedAt = time.Now()
	m.records[transcriptKey{t.UserID, t.ScenarioID}] = cp
	return nil
}

func (m *MemoryTranscripts) Delete(_ context.Context, userID, scenarioID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := transcriptKey{userID, scenarioID}
	if _, ok := m.records[k]; !ok {
		return ErrNotFound
	}
	delete(m.records, k)
	return nil
}

type MemoryScenarios struct {
	mu      sync.RWMutex
	records map[string]*scenario.Scenario
}

func NewMemoryScenarios() *MemoryScenarios {
	return &MemoryScenarios{records: map[string]*scenario.Scenario{}}
}

var _ ScenarioStore = (*MemoryScenarios)(nil)

func (m *MemoryScenarios) Get(_ context.Context, id string) (*scenario.Scenario, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sc, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sc
	return &cp, nil
}

func (m *MemoryScenarios) List(_ context.Context) ([]*scenario.Scenario, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ret := make([]*scenario.Scenario, 0, len(m.records))
	for _, sc := range m.records {
		cp := *sc
		ret = append(ret, &cp)
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].CreatedAt.After(ret[j].CreatedAt)
	})
	return ret, nil
}

func (m *MemoryScenarios) Put(_ context.Context, sc *scenario.Scenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sc
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	m.records[cp.ID] = &cp
	sc.ID = cp.ID
	return nil
}

type MemoryExpressions struct {
	mu      sync.RWMutex
	records map[string]*SavedExpression
}

func NewMemoryExpressions() *MemoryExpressions {
	return &MemoryExpressions{records: map[string]*SavedExpression{}}
}

var _ ExpressionStore = (*MemoryExpressions)(nil)

func (m *MemoryExpressions) Create(_ context.Context, e *SavedExpression) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	m.records[cp.ID] = &cp
	e.ID = cp.ID
	return nil
}

func (m *MemoryExpressions) DeleteByUserAndContent(_ context.Context, userID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.records {
		if e.UserID == userID && e.Content == content {
			delete(m.records, id)
		}
	}
	return nil
}

func (m *MemoryExpressions) DeleteByID(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.records[id]
	if !ok || e.UserID != userID {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *MemoryExpressions) ListByUser(_ context.Context, userID string) ([]*SavedExpression, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ret := []*SavedExpression{}
	for _, e := range m.records {
		if e.UserID == userID {
			cp := *e
			ret = append(ret, &cp)
		}
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].CreatedAt.After(ret[j].CreatedAt)
	})
	return ret, nil
}

type MemoryVocab struct {
	mu      sync.RWMutex
	records map[string]*VocabEntry
}

func NewMemoryVocab() *MemoryVocab {
	return &MemoryVocab{records: map[string]*VocabEntry{}}
}

var _ VocabStore = (*MemoryVocab)(nil)

func (m *MemoryVocab) Create(_ context.Context, v *VocabEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *v
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	m.records[cp.ID] = &cp
	v.ID = cp.ID
	return nil
}

func (m *MemoryVocab) ListByUser(_ context.Context, userID string) ([]*VocabEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ret := []*VocabEntry{}
	for _, v := range m.records {
		if v.UserID == userID {
			cp := *v
			ret = append(ret, &cp)
		}
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].CreatedAt.After(ret[j].CreatedAt)
	})
	return ret, nil
}

type MemoryShared struct {
	mu      sync.RWMutex
	records map[string]*SharedConversation
}

func NewMemoryShared() *MemoryShared {
	return &MemoryShared{records: map[string]*SharedConversation{}}
}

var _ SharedStore = (*MemoryShared)(nil)

func (m *MemoryShared) Create(_ context.Context, sc *SharedConversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sc
	cp.Entries = append([]conversation.Entry(nil), sc.Entries...)
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	m.records[cp.ID] = &cp
	sc.ID = cp.ID
	return nil
}

func (m *MemoryShared) Get(_ context.Context, id string) (*SharedConversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sc, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sc
	cp.Entries = append([]conversation.Entry(nil), sc.Entries...)
	return &cp, nil
}

func (m *MemoryShared) ListByScenario(_ context.Context, scenarioID string) ([]*SharedConversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ret := []*SharedConversation{}
	for _, sc := range m.records {
		if sc.ScenarioID == scenarioID {
			cp := *sc
			cp.Entries = append([]conversation.Entry(nil), sc.Entries...)
			ret = append(ret, &cp)
		}
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].CreatedAt.After(ret[j].CreatedAt)
	})
	return ret, nil
}

func (m *MemoryShared) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}
