package retentionkeeper

import "testing"

func TestSushiContradictionSupersedes(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	cd := NewContradictionDetector()

	older := &MemoryItem{
		UtteranceRef:  UtteranceRef{TurnIndex: 1, Speaker: "User"},
		AdjustedScore: 6,
		Retention:     ShortTerm,
		Categories:    map[string]bool{"preference": true},
	}
	textByRef := map[UtteranceRef]string{older.UtteranceRef: "I love sushi."}

	newer := &MemoryItem{
		UtteranceRef:  UtteranceRef{TurnIndex: 5, Speaker: "User"},
		AdjustedScore: 11,
		Retention:     ShortTerm,
		Categories:    map[string]bool{"preference": true},
	}

	cd.Check(newer, "I can't eat sushi anymore — shellfish allergy.", []*MemoryItem{older}, textByRef, cfg)

	if older.SupersededBy == nil || *older.SupersededBy != newer.UtteranceRef {
		t.Fatalf("expected the older item to be marked superseded by the newer one")
	}
	if newer.AdjustedScore != 16 {
		t.Errorf("expected a +5 contradiction bonus, got %.1f", newer.AdjustedScore)
	}
	if newer.Retention != LongTerm {
		t.Errorf("expected the +5 bonus to push the item to LONG_TERM, got %s", newer.Retention)
	}
}

func TestNoContradictionWhenBothAffirm(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	cd := NewContradictionDetector()

	older := &MemoryItem{UtteranceRef: UtteranceRef{TurnIndex: 1}, Categories: map[string]bool{"preference": true}}
	textByRef := map[UtteranceRef]string{older.UtteranceRef: "I love sushi"}
	newer := &MemoryItem{UtteranceRef: UtteranceRef{TurnIndex: 2}, AdjustedScore: 6, Categories: map[string]bool{"preference": true}}

	cd.Check(newer, "I also love ramen", []*MemoryItem{older}, textByRef, cfg)

	if older.SupersededBy != nil {
		t.Error("expected no supersession when both statements affirm")
	}
	if newer.AdjustedScore != 6 {
		t.Errorf("expected no bonus applied, got %.1f", newer.AdjustedScore)
	}
}

func TestNoContradictionAcrossDifferentCategories(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	cd := NewContradictionDetector()

	older := &MemoryItem{UtteranceRef: UtteranceRef{TurnIndex: 1}, Categories: map[string]bool{"medical": true}}
	textByRef := map[UtteranceRef]string{older.UtteranceRef: "I have a peanut allergy"}
	newer := &MemoryItem{UtteranceRef: UtteranceRef{TurnIndex: 2}, AdjustedScore: 6, Categories: map[string]bool{"preference": true}}

	cd.Check(newer, "I don't like sushi", []*MemoryItem{older}, textByRef, cfg)

	if older.SupersededBy != nil {
		t.Error("expected no cross-category supersession")
	}
}

func TestAlreadySupersededItemIsSkipped(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	cd := NewContradictionDetector()

	ref := UtteranceRef{TurnIndex: 3}
	older := &MemoryItem{
		UtteranceRef:  UtteranceRef{TurnIndex: 1},
		Categories:    map[string]bool{"preference": true},
		SupersededBy:  &ref,
	}
	textByRef := map[UtteranceRef]string{older.UtteranceRef: "I love sushi"}
	newer := &MemoryItem{UtteranceRef: UtteranceRef{TurnIndex: 5}, AdjustedScore: 6, Categories: map[string]bool{"preference": true}}

	cd.Check(newer, "I don't like sushi anymore", []*MemoryItem{older}, textByRef, cfg)

	if newer.AdjustedScore != 6 {
		t.Errorf("expected an already-superseded item to be skipped, got bonus applied: %.1f", newer.AdjustedScore)
	}
}
