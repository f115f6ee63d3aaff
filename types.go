package retentionkeeper

import "time"

// RetentionLevel is the tier assigned to a memory item, controlling how
// long it is kept.
type RetentionLevel string

const (
	LongTerm        RetentionLevel = "LONG_TERM"
	ShortTerm       RetentionLevel = "SHORT_TERM"
	ImmediateDiscard RetentionLevel = "IMMEDIATE_DISCARD"
)

// EntityType is the closed set of entity kinds the linker recognizes.
type EntityType string

const (
	EntityPerson       EntityType = "PERSON"
	EntityLocation     EntityType = "LOCATION"
	EntityMedical      EntityType = "MEDICAL_CONDITION"
	EntityOrganization EntityType = "ORGANIZATION"
	EntityEvent        EntityType = "EVENT"
	EntityOther        EntityType = "OTHER"
)

// FeedbackType is the closed set of feedback kinds UserWeightStore accepts.
type FeedbackType string

const (
	FeedbackForgotImportant  FeedbackType = "forgot_important"
	FeedbackRememberedTrivial FeedbackType = "remembered_trivial"
	FeedbackWrongCategory    FeedbackType = "wrong_category"
	FeedbackCorrect          FeedbackType = "correct"
)

// TraceTag enumerates the source of a scoring contribution, so a trace
// entry can be reconstructed bit-exactly.
type TraceTag string

const (
	TagPattern       TraceTag = "Pattern"
	TagSeverityMod   TraceTag = "SeverityMod"
	TagPermanenceMod TraceTag = "PermanenceMod"
	TagUrgencyMod    TraceTag = "UrgencyMod"
	TagLengthBonus   TraceTag = "LengthBonus"
	TagFirstPerson   TraceTag = "FirstPersonBonus"
	TagNumericBonus  TraceTag = "NumericBonus"
	TagUserWeight    TraceTag = "UserWeight"
	TagContradiction TraceTag = "ContradictionBonus"
	TagOracleAdjust  TraceTag = "OracleAdjust"
	TagDecay         TraceTag = "Decay"
)

// TraceEntry is one ordered scoring contribution, (source_tag, delta).
// Name holds the pattern/user-weight name when Tag references one.
type TraceEntry struct {
	Tag   TraceTag
	Name  string
	Delta float64
}

// Pattern is an immutable catalog entry: a named regex + weight + category.
type Pattern struct {
	Name         string
	Regex        string // case-insensitive match expression, compiled once by the registry
	Weight       int    // signed; negative weights indicate noise
	Category     string
	ModifierTags map[string]bool
}

// Utterance is one turn of dialogue.
type Utterance struct {
	TurnIndex int
	Speaker   string
	Text      string
	Timestamp time.Time
}

// UtteranceRef identifies a turn for cross-referencing (supersedes, provenance).
type UtteranceRef struct {
	TurnIndex int
	Speaker   string
}

// MatchedPattern records one pattern's contribution to a scored utterance.
type MatchedPattern struct {
	PatternName       string
	WeightContribution int
}

// MemoryItem is the output record produced for each retained-or-discarded utterance.
type MemoryItem struct {
	UtteranceRef    UtteranceRef
	RawScore        int
	AdjustedScore   float64
	Retention       RetentionLevel
	MatchedPatterns []MatchedPattern
	Categories      map[string]bool
	EntityRefs      map[string]bool
	SupersededBy    *UtteranceRef
	Reasoning       string
	Trace           []TraceEntry

	// userID, conversationID, and createdAt are stamped by the orchestrator
	// for persistence and are not exposed in the scoring trace.
	UserID         string
	ConversationID string
	CreatedAt      time.Time

	// decayBase and decayAppliedThroughTurn let DecayEngine.Apply be
	// idempotent: the base score is frozen on first decay and re-used so
	// repeated calls for the same turn never compound.
	decayBase               float64
	decayAppliedThroughTurn int
}

// Entity is a cross-turn identity accumulator.
type Entity struct {
	EntityID        string
	EntityType      EntityType
	CanonicalName   string
	Aliases         map[string]bool
	Attributes      map[string]AttributeValue
	FirstTurn       int
	LastTurn        int
	MentionCount    int
	ImportanceScore float64
}

// AttributeValue carries an attribute with the turn it was observed on, so
// contradicting values can be preserved with provenance.
type AttributeValue struct {
	Value     string
	TurnIndex int
}

// UserWeight is a per-user, per-pattern learned adjustment.
type UserWeight struct {
	UserID         string
	PatternName    string
	WeightAdjustment float64
	FeedbackCount  int
}

// FeedbackRecord is one call to the feedback path.
type FeedbackRecord struct {
	UserID           string
	Statement        string
	ActualRetention  RetentionLevel
	ExpectedRetention RetentionLevel
	FeedbackType     FeedbackType
	Timestamp        time.Time
}
