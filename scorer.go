package retentionkeeper

import (
	"math"
	"regexp"
	"strings"
)

var (
	wordTokenRe      = regexp.MustCompile(`[A-Za-z0-9']+`)
	digitSequenceRe  = regexp.MustCompile(`\d+`)
	severityTokenRe  = regexp.MustCompile(`(?i)\b(severe|severely|life-threatening|critical|emergency)\b`)
	permanenceTokenRe = regexp.MustCompile(`(?i)\b(always|never|every|forever)\b`)
	urgencyTokenRe   = regexp.MustCompile(`(?i)\b(now|today|immediately|right now)\b`)
	firstPersonRe    = regexp.MustCompile(`(?i)\b(i|i'm|i've|i'll|my|mine|myself|me)\b`)
)

// PatternScorer is the additive scoring engine . It holds no mutable
// state and is safe for concurrent use; all inputs (registry, user weights)
// are passed in per call.
type PatternScorer struct {
	registry *PatternRegistry
	config   Config
}

// NewPatternScorer builds a scorer over the given registry and thresholds.
func NewPatternScorer(registry *PatternRegistry, cfg Config) *PatternScorer {
	return &PatternScorer{registry: registry, config: cfg}
}

// ScoreResult is the  contract's return value.
type ScoreResult struct {
	RawScore        int
	AdjustedScore   float64
	Retention       RetentionLevel
	Trace           []TraceEntry
	Categories      map[string]bool
	MatchedPatterns []MatchedPattern
}

// Score runs the additive scoring engine over an utterance.
func (s *PatternScorer) Score(utterance Utterance, userWeights map[string]float64) ScoreResult {
	text := utterance.Text
	matches := s.registry.MatchAll(text)

	var trace []TraceEntry
	var matchedPatterns []MatchedPattern
	categories := map[string]bool{}

	raw := 0
	hasPositiveMatch := false
	hasSeverityAmplifiable := false

	for _, m := range matches {
		raw += m.Pattern.Weight
		matchedPatterns = append(matchedPatterns, MatchedPattern{
			PatternName:        m.Pattern.Name,
			WeightContribution: m.Pattern.Weight,
		})
		trace = append(trace, TraceEntry{Tag: TagPattern, Name: m.Pattern.Name, Delta: float64(m.Pattern.Weight)})
		if m.Pattern.Category != "" {
			categories[m.Pattern.Category] = true
		}
		if m.Pattern.Weight > 0 {
			hasPositiveMatch = true
		}
		if m.Pattern.ModifierTags["severity_amplifiable"] {
			hasSeverityAmplifiable = true
		}
	}

	adjusted := float64(raw)

	// 1. Severity modifiers: +5 per distinct trigger token, cumulative.
	if hasSeverityAmplifiable {
		seenSeverity := map[string]bool{}
		for _, tok := range severityTokenRe.FindAllString(text, -1) {
			tok = strings.ToLower(tok)
			if seenSeverity[tok] {
				continue
			}
			seenSeverity[tok] = true
			adjusted += 5
			trace = append(trace, TraceEntry{Tag: TagSeverityMod, Name: tok, Delta: 5})
		}
	}

	// 2. Permanence modifiers: +3, presence only (not per-token), needs a positive match.
	if hasPositiveMatch && permanenceTokenRe.MatchString(text) {
		adjusted += 3
		trace = append(trace, TraceEntry{Tag: TagPermanenceMod, Delta: 3})
	}

	// 3. Urgency modifiers: +4, presence only, needs a positive match.
	if hasPositiveMatch && urgencyTokenRe.MatchString(text) {
		adjusted += 4
		trace = append(trace, TraceEntry{Tag: TagUrgencyMod, Delta: 4})
	}

	// 4. Length/complexity bonus: independent of matches.
	tokenCount := len(wordTokenRe.FindAllString(text, -1))
	switch {
	case tokenCount >= 24:
		adjusted += 2
		trace = append(trace, TraceEntry{Tag: TagLengthBonus, Delta: 2})
	case tokenCount >= 12:
		adjusted += 1
		trace = append(trace, TraceEntry{Tag: TagLengthBonus, Delta: 1})
	}

	// 5. First-person bonus: needs a positive match.
	if hasPositiveMatch && firstPersonRe.MatchString(text) {
		adjusted += 1
		trace = append(trace, TraceEntry{Tag: TagFirstPerson, Delta: 1})
	}

	// 6. Numeric/date content: needs a positive match.
	if hasPositiveMatch && digitSequenceRe.MatchString(text) {
		adjusted += 1
		trace = append(trace, TraceEntry{Tag: TagNumericBonus, Delta: 1})
	}

	// 7. User weight adjustment: sum per matched pattern, rounded to nearest 0.1.
	if len(userWeights) > 0 && len(matchedPatterns) > 0 {
		var sum float64
		for _, mp := range matchedPatterns {
			if w, ok := userWeights[mp.PatternName]; ok && w != 0 {
				sum += w
				trace = append(trace, TraceEntry{Tag: TagUserWeight, Name: mp.PatternName, Delta: w})
			}
		}
		adjusted += roundToTenth(sum)
	}

	retention := retentionForScore(adjusted, s.config)

	return ScoreResult{
		RawScore:        raw,
		AdjustedScore:   adjusted,
		Retention:       retention,
		Trace:           trace,
		Categories:      categories,
		MatchedPatterns: matchedPatterns,
	}
}

// retentionForScore applies the threshold table. Ties resolve toward
// higher retention (all lower bounds are inclusive).
func retentionForScore(score float64, cfg Config) RetentionLevel {
	switch {
	case score >= cfg.LongTermThreshold:
		return LongTerm
	case score >= cfg.BorderlineLow:
		// borderline band [BorderlineLow, BorderlineHigh]; anything in here
		// that isn't routed to L2 resolves to SHORT_TERM.
		return ShortTerm
	case score >= cfg.ShortTermThreshold:
		return ShortTerm
	default:
		return ImmediateDiscard
	}
}

// IsBorderline reports whether a score falls in the configured borderline
// band, the trigger for consulting the SemanticOracle.
func IsBorderline(score float64, cfg Config) bool {
	return score >= cfg.BorderlineLow && score <= cfg.BorderlineHigh
}

func roundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
