package retentionkeeper

import (
	"context"
	"sort"
	"sync"
)

// Persistence is the storage contract. Concrete implementations live in
// sqlitestore; InMemoryPersistence below backs tests and the mock pipeline.
type Persistence interface {
	LoadUserWeights(ctx context.Context, userID string) ([]UserWeight, error)
	SaveUserWeight(ctx context.Context, w UserWeight) error
	AppendMemoryItems(ctx context.Context, items []MemoryItem) error
	UpsertEntities(ctx context.Context, entities []Entity) error
	AppendFeedback(ctx context.Context, fb FeedbackRecord) error
	EnforceMemoryLimit(ctx context.Context, userID string, maxItems int) (evicted int, err error)
}

// InMemoryPersistence is a process-local Persistence used by tests and by
// callers that don't need durability across restarts.
type InMemoryPersistence struct {
	mu       sync.Mutex
	weights  map[string]map[string]UserWeight
	items    []MemoryItem
	entities map[string]Entity
	feedback []FeedbackRecord
}

func NewInMemoryPersistence() *InMemoryPersistence {
	return &InMemoryPersistence{
		weights:  map[string]map[string]UserWeight{},
		entities: map[string]Entity{},
	}
}

func (p *InMemoryPersistence) LoadUserWeights(_ context.Context, userID string) ([]UserWeight, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []UserWeight
	for _, w := range p.weights[userID] {
		out = append(out, w)
	}
	return out, nil
}

func (p *InMemoryPersistence) SaveUserWeight(_ context.Context, w UserWeight) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	byPattern, ok := p.weights[w.UserID]
	if !ok {
		byPattern = map[string]UserWeight{}
		p.weights[w.UserID] = byPattern
	}
	byPattern[w.PatternName] = w
	return nil
}

func (p *InMemoryPersistence) AppendMemoryItems(_ context.Context, items []MemoryItem) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.items = append(p.items, items...)
	return nil
}

func (p *InMemoryPersistence) UpsertEntities(_ context.Context, entities []Entity) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, e := range entities {
		p.entities[e.EntityID] = e
	}
	return nil
}

func (p *InMemoryPersistence) AppendFeedback(_ context.Context, fb FeedbackRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.feedback = append(p.feedback, fb)
	return nil
}

// EnforceMemoryLimit deletes the oldest, lowest-scoring non-LONG_TERM items
// for a user once their item count exceeds maxItems. LONG_TERM items are
// never evicted, regardless of how far over the cap a user is.
func (p *InMemoryPersistence) EnforceMemoryLimit(_ context.Context, userID string, maxItems int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var userIdx []int
	for i, it := range p.items {
		if it.UserID == userID {
			userIdx = append(userIdx, i)
		}
	}
	if len(userIdx) <= maxItems {
		return 0, nil
	}

	evictable := make([]int, 0, len(userIdx))
	for _, i := range userIdx {
		if p.items[i].Retention != LongTerm {
			evictable = append(evictable, i)
		}
	}
	excess := len(userIdx) - maxItems
	if excess > len(evictable) {
		excess = len(evictable)
	}
	sort.Slice(evictable, func(a, b int) bool {
		ia, ib := p.items[evictable[a]], p.items[evictable[b]]
		if ia.AdjustedScore != ib.AdjustedScore {
			return ia.AdjustedScore < ib.AdjustedScore
		}
		return ia.CreatedAt.Before(ib.CreatedAt)
	})

	toDrop := map[int]bool{}
	for _, i := range evictable[:excess] {
		toDrop[i] = true
	}
	kept := p.items[:0:0]
	for i, it := range p.items {
		if !toDrop[i] {
			kept = append(kept, it)
		}
	}
	p.items = kept
	return excess, nil
}

// Items returns a snapshot of everything appended so far, for test assertions.
func (p *InMemoryPersistence) Items() []MemoryItem {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]MemoryItem, len(p.items))
	copy(out, p.items)
	return out
}

// Entities returns a snapshot of the upserted entity table, for test assertions.
func (p *InMemoryPersistence) Entities() map[string]Entity {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]Entity, len(p.entities))
	for k, v := range p.entities {
		out[k] = v
	}
	return out
}
