package retentionkeeper

import (
	"context"
	"strings"
)

// mockOracleBackend returns deterministic verdicts derived from emotive
// lexicon presence, for tests and offline use.
type mockOracleBackend struct {
	lexicon []string
}

func newMockOracleBackend(lexicon []string) *mockOracleBackend {
	return &mockOracleBackend{lexicon: lexicon}
}

func (m *mockOracleBackend) classify(_ context.Context, normalizedText string) (OracleVerdict, error) {
	hit := false
	for _, tok := range m.lexicon {
		if strings.Contains(normalizedText, strings.ToLower(tok)) {
			hit = true
			break
		}
	}

	if hit {
		return OracleVerdict{
			Retention:  LongTerm,
			Importance: 20,
			Categories: map[string]bool{"emotional": true},
			Reasoning:  "mock oracle: emotive lexicon match",
		}, nil
	}

	return OracleVerdict{
		Retention:  ImmediateDiscard,
		Importance: 2,
		Categories: map[string]bool{},
		Reasoning:  "mock oracle: no emotive signal",
	}, nil
}
