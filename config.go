package retentionkeeper

import "time"

// L2Provider selects which SemanticOracle backend Config wires up by default.
type L2Provider string

const (
	L2ProviderMock      L2Provider = "mock"
	L2ProviderGemini     L2Provider = "gemini"
	L2ProviderOpenAI     L2Provider = "openai"
	L2ProviderAnthropic L2Provider = "anthropic"
)

// Config holds PipelineOrchestrator initialization parameters.
type Config struct {
	// L1 / catalog
	PatternCatalogPath string // YAML catalog path; empty = built-in default catalog

	// L2 oracle
	EnableL2Oracle     bool
	L2MockMode         bool
	L2Provider         L2Provider
	L2APIKey           string
	L2TimeoutMS        int
	L2CacheMaxEntries  int
	L2MonthlyBudget    int // max remote calls per process lifetime; 0 = unbounded
	EmotiveLexicon     []string

	// L3 entity linking
	EnableEntities bool

	// L4 learning
	EnableLearning bool

	// Decay 
	DecayWindowTurns int
	DecayRate        float64

	// Scoring thresholds 
	LongTermThreshold float64
	BorderlineLow     float64
	BorderlineHigh    float64
	ShortTermThreshold float64

	// Persistence cap: once a user has more items than this, non-LONG_TERM
	// items are evicted, lowest adjusted score first, then oldest.
	MaxItemsPerUser int

	// EnableAsyncReclassify makes the pipeline force an oracle call, inline,
	// for every SHORT_TERM item the gate skipped.
	EnableAsyncReclassify bool

	// resolved holds defaults merged in by ApplyDefaults.
	resolved bool
}

// ApplyDefaults fills zero-valued fields with production-tuned defaults.
func (c *Config) ApplyDefaults() {
	if c.resolved {
		return
	}
	if c.L2TimeoutMS == 0 {
		c.L2TimeoutMS = 2000
	}
	if c.L2CacheMaxEntries == 0 {
		c.L2CacheMaxEntries = 10000
	}
	if c.DecayWindowTurns == 0 {
		c.DecayWindowTurns = 5
	}
	if c.DecayRate == 0 {
		c.DecayRate = 0.5
	}
	if c.LongTermThreshold == 0 {
		c.LongTermThreshold = 15
	}
	if c.BorderlineLow == 0 {
		c.BorderlineLow = 10
	}
	if c.BorderlineHigh == 0 {
		c.BorderlineHigh = 14
	}
	if c.ShortTermThreshold == 0 {
		c.ShortTermThreshold = 3
	}
	if c.MaxItemsPerUser == 0 {
		c.MaxItemsPerUser = 5000
	}
	if len(c.EmotiveLexicon) == 0 {
		c.EmotiveLexicon = DefaultEmotiveLexicon()
	}
	if c.L2Provider == "" {
		c.L2Provider = L2ProviderMock
	}
	c.resolved = true
}

// L2Timeout returns the configured per-call timeout as a time.Duration.
func (c *Config) L2Timeout() time.Duration {
	return time.Duration(c.L2TimeoutMS) * time.Millisecond
}

// DefaultEmotiveLexicon returns the built-in emotive token list consulted by
// the L2 gate. Partially enumerated in the source material; this is
// the documented default set.
func DefaultEmotiveLexicon() []string {
	return []string{
		"terrifies", "terrified", "devastated", "devastating", "thrilled",
		"scared", "panic", "panicking", "heartbroken", "furious", "ecstatic",
		"overwhelmed", "dread", "horrified", "anguish", "despair",
	}
}
