package retentionkeeper

import (
	"fmt"
	"regexp"
)

// compiledPattern pairs a Pattern with its compiled, case-insensitive matcher.
type compiledPattern struct {
	Pattern
	re *regexp.Regexp
}

// PatternRegistry loads and compiles the pattern catalog once, then serves
// read-only matching over text. Safe for concurrent use across conversations.
type PatternRegistry struct {
	patterns []compiledPattern
	byName   map[string]int
}

// NewPatternRegistry compiles the given catalog entries. Duplicate names and
// regex compile failures are rejected immediately.
func NewPatternRegistry(catalog []Pattern) (*PatternRegistry, error) {
	reg := &PatternRegistry{
		byName: make(map[string]int, len(catalog)),
	}

	for _, p := range catalog {
		if _, exists := reg.byName[p.Name]; exists {
			return nil, &PatternCompileErr{PatternName: p.Name, Err: fmt.Errorf("duplicate pattern name")}
		}
		re, err := regexp.Compile("(?i)" + p.Regex)
		if err != nil {
			return nil, &PatternCompileErr{PatternName: p.Name, Err: err}
		}
		if p.ModifierTags == nil {
			p.ModifierTags = map[string]bool{}
		}
		reg.byName[p.Name] = len(reg.patterns)
		reg.patterns = append(reg.patterns, compiledPattern{Pattern: p, re: re})
	}

	return reg, nil
}

// NewDefaultPatternRegistry compiles the built-in ~45-entry catalog.
func NewDefaultPatternRegistry() (*PatternRegistry, error) {
	return NewPatternRegistry(DefaultPatternCatalog())
}

// MatchSpan is one match location within the scored text.
type MatchSpan struct {
	Start, End int
}

// PatternMatch pairs a pattern with every span it matched in the text.
type PatternMatch struct {
	Pattern Pattern
	Spans   []MatchSpan
}

// MatchAll returns every pattern that matches text, each with its spans.
// No ordering guarantee beyond registry insertion order.
func (r *PatternRegistry) MatchAll(text string) []PatternMatch {
	var out []PatternMatch
	for _, cp := range r.patterns {
		locs := cp.re.FindAllStringIndex(text, -1)
		if len(locs) == 0 {
			continue
		}
		spans := make([]MatchSpan, len(locs))
		for i, loc := range locs {
			spans[i] = MatchSpan{Start: loc[0], End: loc[1]}
		}
		out = append(out, PatternMatch{Pattern: cp.Pattern, Spans: spans})
	}
	return out
}

// Lookup returns a pattern by name, for components (e.g. UserWeightStore)
// that need to resolve a matched pattern's metadata without rescanning.
func (r *PatternRegistry) Lookup(name string) (Pattern, bool) {
	idx, ok := r.byName[name]
	if !ok {
		return Pattern{}, false
	}
	return r.patterns[idx].Pattern, true
}

// Size returns the number of loaded patterns.
func (r *PatternRegistry) Size() int {
	return len(r.patterns)
}
