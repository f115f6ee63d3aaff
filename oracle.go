package retentionkeeper

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// OracleVerdict is the structured response a remote classifier returns.
type OracleVerdict struct {
	Retention  RetentionLevel
	Importance int // 0-30
	Categories map[string]bool
	Reasoning  string
}

// oracleBackend is the low-level contract a concrete remote classifier
// implements. SemanticOracle wraps a backend with gating, caching, a
// singleflight collapse, and budget enforcement.
type oracleBackend interface {
	classify(ctx context.Context, normalizedText string) (OracleVerdict, error)
}

// SemanticOracle is the L2 contract: classify(utterance, l1_result) -> Option<OracleVerdict>.
type SemanticOracle struct {
	backend oracleBackend
	config  Config

	cacheMu sync.Mutex
	cache   map[string]*list.Element // key -> node in lru
	lru     *list.List               // front = most recent

	group singleflight.Group

	callsMade int64 // atomic: total remote calls made this process
	disabled  int32 // atomic bool: set once the budget is exhausted
}

type cacheEntry struct {
	key    string
	verdict OracleVerdict
}

// NewSemanticOracle wires a backend (mock, Gemini, OpenAI, Anthropic) into
// the gating/cache/budget envelope.
func NewSemanticOracle(backend oracleBackend, cfg Config) *SemanticOracle {
	return &SemanticOracle{
		backend: backend,
		config:  cfg,
		cache:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// NewConfiguredSemanticOracle builds the backend named by cfg.L2Provider.
func NewConfiguredSemanticOracle(cfg Config) *SemanticOracle {
	if cfg.L2MockMode || cfg.L2Provider == L2ProviderMock || cfg.L2Provider == "" {
		return NewSemanticOracle(newMockOracleBackend(cfg.EmotiveLexicon), cfg)
	}
	switch cfg.L2Provider {
	case L2ProviderGemini:
		return NewSemanticOracle(newGeminiOracleBackend(cfg.L2APIKey), cfg)
	case L2ProviderOpenAI:
		return NewSemanticOracle(newOpenAIOracleBackend(cfg.L2APIKey), cfg)
	case L2ProviderAnthropic:
		return NewSemanticOracle(newAnthropicOracleBackend(cfg.L2APIKey), cfg)
	default:
		return NewSemanticOracle(newMockOracleBackend(cfg.EmotiveLexicon), cfg)
	}
}

// Gate reports whether the oracle should be consulted for this utterance and
// L1 result: borderline range, or an emotive token present without a
// strong medical pattern match.
func (o *SemanticOracle) Gate(utterance Utterance, l1 ScoreResult) bool {
	if !o.config.EnableL2Oracle {
		return false
	}
	if IsBorderline(l1.AdjustedScore, o.config) {
		return true
	}
	if hasStrongMedicalMatch(l1) {
		return false
	}
	return containsAny(utterance.Text, o.config.EmotiveLexicon)
}

func hasStrongMedicalMatch(l1 ScoreResult) bool {
	if !l1.Categories["medical"] && !l1.Categories["safety"] {
		return false
	}
	for _, mp := range l1.MatchedPatterns {
		if mp.WeightContribution >= 10 {
			return true
		}
	}
	return false
}

func containsAny(text string, tokens []string) bool {
	lower := strings.ToLower(text)
	for _, tok := range tokens {
		if strings.Contains(lower, strings.ToLower(tok)) {
			return true
		}
	}
	return false
}

// Classify runs the gate, then a cached/deduplicated/budgeted remote call.
// Returns (nil, nil) when the gate does not fire. Returns (nil, err) only for
// telemetry purposes — callers must still fall back to the L1 verdict.
func (o *SemanticOracle) Classify(ctx context.Context, utterance Utterance, l1 ScoreResult) (*OracleVerdict, error) {
	if !o.Gate(utterance, l1) {
		return nil, nil
	}
	return o.classifyUngated(ctx, utterance)
}

// ClassifyForced bypasses Gate and always attempts a remote call, subject to
// the same cache/singleflight/budget envelope as Classify. The pipeline calls
// it inline, when Config.EnableAsyncReclassify is set, for SHORT_TERM items
// the gate skipped.
func (o *SemanticOracle) ClassifyForced(ctx context.Context, utterance Utterance) (*OracleVerdict, error) {
	return o.classifyUngated(ctx, utterance)
}

func (o *SemanticOracle) classifyUngated(ctx context.Context, utterance Utterance) (*OracleVerdict, error) {
	if atomic.LoadInt32(&o.disabled) == 1 {
		return nil, &OracleBudgetExceededErr{Budget: o.config.L2MonthlyBudget}
	}

	normalizedText := normalizeUtteranceText(utterance.Text)
	key := normalizedCacheKey(normalizedText)

	if v, ok := o.cacheGet(key); ok {
		return &v, nil
	}

	// singleflight collapses concurrent identical-key calls into one remote
	// call.
	res, err, _ := o.group.Do(key, func() (any, error) {
		if double, ok := o.cacheGet(key); ok {
			return double, nil
		}
		calls := atomic.AddInt64(&o.callsMade, 1)
		if o.config.L2MonthlyBudget > 0 && calls > int64(o.config.L2MonthlyBudget) {
			atomic.StoreInt32(&o.disabled, 1)
			return OracleVerdict{}, &OracleBudgetExceededErr{Budget: o.config.L2MonthlyBudget}
		}

		callCtx := ctx
		var cancel context.CancelFunc
		if o.config.L2Timeout() > 0 {
			callCtx, cancel = context.WithTimeout(ctx, o.config.L2Timeout())
			defer cancel()
		}

		verdict, err := o.backend.classify(callCtx, normalizedText)
		if err != nil {
			if callCtx.Err() != nil {
				return OracleVerdict{}, &OracleTimeoutErr{Err: err}
			}
			return OracleVerdict{}, &OracleTransportErr{Err: err}
		}
		o.cachePut(key, verdict)
		return verdict, nil
	})

	if err != nil {
		log.Printf("[retentionkeeper] oracle call failed: %v", err)
		return nil, err
	}
	verdict := res.(OracleVerdict)
	return &verdict, nil
}

func (o *SemanticOracle) cacheGet(key string) (OracleVerdict, bool) {
	o.cacheMu.Lock()
	defer o.cacheMu.Unlock()
	el, ok := o.cache[key]
	if !ok {
		return OracleVerdict{}, false
	}
	o.lru.MoveToFront(el)
	return el.Value.(*cacheEntry).verdict, true
}

func (o *SemanticOracle) cachePut(key string, verdict OracleVerdict) {
	o.cacheMu.Lock()
	defer o.cacheMu.Unlock()

	if el, ok := o.cache[key]; ok {
		el.Value.(*cacheEntry).verdict = verdict
		o.lru.MoveToFront(el)
		return
	}

	maxEntries := o.config.L2CacheMaxEntries
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	el := o.lru.PushFront(&cacheEntry{key: key, verdict: verdict})
	o.cache[key] = el

	for o.lru.Len() > maxEntries {
		oldest := o.lru.Back()
		if oldest == nil {
			break
		}
		o.lru.Remove(oldest)
		delete(o.cache, oldest.Value.(*cacheEntry).key)
	}
}

// CacheSize reports the current LRU occupancy, mainly for tests/telemetry.
func (o *SemanticOracle) CacheSize() int {
	o.cacheMu.Lock()
	defer o.cacheMu.Unlock()
	return o.lru.Len()
}

// CallsMade reports the number of remote calls issued this process, for budget telemetry.
func (o *SemanticOracle) CallsMade() int64 {
	return atomic.LoadInt64(&o.callsMade)
}

// normalizeUtteranceText lowercases and collapses whitespace, producing the
// string handed to the backend and hashed for cache/singleflight keys.
func normalizeUtteranceText(text string) string {
	fields := strings.Fields(strings.ToLower(text))
	return strings.Join(fields, " ")
}

// normalizedCacheKey hashes an already-normalized utterance string.
func normalizedCacheKey(normalizedText string) string {
	sum := sha256.Sum256([]byte(normalizedText))
	return hex.EncodeToString(sum[:])
}

// MergeVerdict applies the merge policy. Returns the final retention and
// a reasoning fragment describing what happened.
func MergeVerdict(l1 ScoreResult, verdict *OracleVerdict) (RetentionLevel, string, []TraceEntry) {
	if verdict == nil {
		return l1.Retention, "", nil
	}

	retention := l1.Retention
	var reasoning string
	var trace []TraceEntry

	switch {
	case verdict.Importance > 15:
		retention = LongTerm
		trace = append(trace, TraceEntry{Tag: TagOracleAdjust, Name: "upgrade_long_term", Delta: 0})
		reasoning = "oracle upgraded to LONG_TERM on importance " + strconv.Itoa(verdict.Importance)
	case verdict.Retention == ImmediateDiscard && l1.RawScore < 8:
		retention = ImmediateDiscard
		trace = append(trace, TraceEntry{Tag: TagOracleAdjust, Name: "downgrade_discard", Delta: 0})
		reasoning = "oracle downgraded to IMMEDIATE_DISCARD (raw score below 8)"
	default:
		reasoning = "oracle verdict did not override L1: " + string(verdict.Retention)
	}

	if verdict.Reasoning != "" {
		reasoning += ": " + verdict.Reasoning
	}

	return retention, reasoning, trace
}
