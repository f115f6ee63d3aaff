package retentionkeeper

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PipelineOrchestrator composes pattern scoring, oracle classification,
// entity linking, contradiction detection, and decay into one
// per-conversation pass: score each utterance, consult the oracle on the
// borderline band, link entities, detect contradictions against everything
// retained so far, decay stale SHORT_TERM items, then persist.
type PipelineOrchestrator struct {
	registry    *PatternRegistry
	scorer      *PatternScorer
	oracle      *SemanticOracle
	linker      *EntityLinker
	contradict  *ContradictionDetector
	decay       *DecayEngine
	userWeights *UserWeightStore
	store       Persistence
	config      Config
}

// NewPipelineOrchestrator wires the default set of components over cfg. The
// registry, oracle and the other components are always built from cfg; only
// the store is supplied by the caller, and a nil store is replaced by an
// InMemoryPersistence.
func NewPipelineOrchestrator(cfg Config, store Persistence) (*PipelineOrchestrator, error) {
	cfg.ApplyDefaults()

	registry, err := NewDefaultPatternRegistry()
	if err != nil {
		return nil, err
	}
	if cfg.PatternCatalogPath != "" {
		loaded, err := LoadPatternCatalog(cfg.PatternCatalogPath)
		if err != nil {
			return nil, err
		}
		registry, err = NewPatternRegistry(loaded)
		if err != nil {
			return nil, err
		}
	}

	if store == nil {
		store = NewInMemoryPersistence()
	}

	return &PipelineOrchestrator{
		registry:    registry,
		scorer:      NewPatternScorer(registry, cfg),
		oracle:      NewConfiguredSemanticOracle(cfg),
		linker:      NewEntityLinker(registry),
		contradict:  NewContradictionDetector(),
		decay:       NewDecayEngine(),
		userWeights: NewUserWeightStore(),
		store:       store,
		config:      cfg,
	}, nil
}

// ProcessConversation runs the full retention pipeline over a turn sequence
// for one user. Conversation id is minted once per call.
func (p *PipelineOrchestrator) ProcessConversation(ctx context.Context, userID string, utterances []Utterance) ([]MemoryItem, error) {
	conversationID := uuid.NewString()
	state := NewConversationState(userID)

	userWeights := p.userWeights.Snapshot(userID)
	if p.config.EnableLearning {
		if loaded, err := p.store.LoadUserWeights(ctx, userID); err == nil {
			for _, w := range loaded {
				userWeights[w.PatternName] = w.WeightAdjustment
			}
		}
	}

	items := make([]*MemoryItem, 0, len(utterances))
	textByRef := map[UtteranceRef]string{}

	for _, u := range utterances {
		ref := UtteranceRef{TurnIndex: u.TurnIndex, Speaker: u.Speaker}
		textByRef[ref] = u.Text

		l1 := p.scorer.Score(u, userWeights)

		item := &MemoryItem{
			UtteranceRef:    ref,
			RawScore:        l1.RawScore,
			AdjustedScore:   l1.AdjustedScore,
			Retention:       l1.Retention,
			MatchedPatterns: l1.MatchedPatterns,
			Categories:      l1.Categories,
			EntityRefs:      map[string]bool{},
			Trace:           l1.Trace,
			Reasoning:       "L1 pattern score",
			UserID:          userID,
			ConversationID:  conversationID,
			CreatedAt:       time.Now(),
		}

		verdict, err := p.oracle.Classify(ctx, u, l1)
		if err == nil && verdict == nil && p.config.EnableAsyncReclassify && item.Retention == ShortTerm {
			// The gate skipped this one (not borderline, no emotive token),
			// but the caller wants every SHORT_TERM item double-checked
			// against the oracle whenever there's still budget for it.
			verdict, err = p.oracle.ClassifyForced(ctx, u)
		}
		if err == nil && verdict != nil {
			retention, reasoning, trace := MergeVerdict(l1, verdict)
			item.Retention = retention
			item.Reasoning = reasoning
			item.Trace = append(item.Trace, trace...)
		}

		if p.config.EnableEntities && item.Retention != ImmediateDiscard {
			linked := p.linker.Link(u, state)
			for _, id := range linked.EntitiesTouched {
				item.EntityRefs[id] = true
				for _, related := range state.RelatedEntities(id) {
					item.EntityRefs[related] = true
				}
			}
		}

		p.contradict.Check(item, u.Text, items, textByRef, p.config)

		items = append(items, item)

		for _, prior := range items[:len(items)-1] {
			p.decay.Apply(prior, u.TurnIndex, p.config)
		}
	}

	out := make([]MemoryItem, len(items))
	for i, it := range items {
		out[i] = *it
	}

	if err := p.store.AppendMemoryItems(ctx, out); err != nil {
		return nil, &PersistenceErr{Op: "append_memory_items", Err: err}
	}
	if p.config.MaxItemsPerUser > 0 {
		if _, err := p.store.EnforceMemoryLimit(ctx, userID, p.config.MaxItemsPerUser); err != nil {
			return nil, &PersistenceErr{Op: "enforce_memory_limit", Err: err}
		}
	}
	if p.config.EnableEntities {
		entities := make([]Entity, 0, len(state.Entities))
		for _, e := range state.Entities {
			entities = append(entities, *e)
		}
		if err := p.store.UpsertEntities(ctx, entities); err != nil {
			return nil, &PersistenceErr{Op: "upsert_entities", Err: err}
		}
	}

	return out, nil
}

// ApplyFeedback implements the feedback path: look up which patterns
// matched the statement, then adjust per-(user,pattern) weights and persist.
func (p *PipelineOrchestrator) ApplyFeedback(ctx context.Context, userID, statement string, actual, expected RetentionLevel, feedbackType FeedbackType) error {
	var names []string
	for _, pm := range p.registry.MatchAll(statement) {
		names = append(names, pm.Pattern.Name)
	}

	p.userWeights.ApplyFeedback(userID, statement, names, actual, expected, feedbackType)

	if err := p.store.AppendFeedback(ctx, FeedbackRecord{
		UserID: userID, Statement: statement, ActualRetention: actual,
		ExpectedRetention: expected, FeedbackType: feedbackType, Timestamp: time.Now(),
	}); err != nil {
		return &PersistenceErr{Op: "append_feedback", Err: err}
	}

	if p.config.EnableLearning {
		snap := p.userWeights.Snapshot(userID)
		for _, name := range names {
			adj, ok := snap[name]
			if !ok {
				continue
			}
			if err := p.store.SaveUserWeight(ctx, UserWeight{UserID: userID, PatternName: name, WeightAdjustment: adj}); err != nil {
				return &PersistenceErr{Op: "save_user_weight", Err: err}
			}
		}
	}

	return nil
}
