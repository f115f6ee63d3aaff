package retentionkeeper

import "testing"

func TestDecayArithmeticMatchesWorkedExample(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	d := NewDecayEngine()

	item := &MemoryItem{
		UtteranceRef:  UtteranceRef{TurnIndex: 3},
		AdjustedScore: 4,
		Retention:     ShortTerm,
	}

	d.Apply(item, 12, cfg)

	if item.AdjustedScore != 2.0 {
		t.Errorf("expected decayed score 2.0, got %.2f", item.AdjustedScore)
	}
}

func TestDecayDropsBelowThreeToDiscard(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	d := NewDecayEngine()

	item := &MemoryItem{UtteranceRef: UtteranceRef{TurnIndex: 0}, AdjustedScore: 4, Retention: ShortTerm}
	d.Apply(item, 12, cfg)

	if item.Retention != ImmediateDiscard {
		t.Errorf("expected IMMEDIATE_DISCARD once decayed below 3, got %s (%.2f)", item.Retention, item.AdjustedScore)
	}
}

func TestDecayIsIdempotentForSameTurn(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	d := NewDecayEngine()

	item := &MemoryItem{UtteranceRef: UtteranceRef{TurnIndex: 3}, AdjustedScore: 4, Retention: ShortTerm}
	d.Apply(item, 12, cfg)
	first := item.AdjustedScore
	d.Apply(item, 12, cfg)

	if item.AdjustedScore != first {
		t.Errorf("expected decay to be idempotent for the same current_turn: first=%.2f second=%.2f", first, item.AdjustedScore)
	}
}

func TestDecayNoopWithinWindow(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	d := NewDecayEngine()

	item := &MemoryItem{UtteranceRef: UtteranceRef{TurnIndex: 10}, AdjustedScore: 8, Retention: ShortTerm}
	d.Apply(item, 12, cfg) // 2 turns elapsed, window is 5

	if item.AdjustedScore != 8 {
		t.Errorf("expected no decay within the grace window, got %.2f", item.AdjustedScore)
	}
}

func TestDecaySkipsLongTerm(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	d := NewDecayEngine()

	item := &MemoryItem{UtteranceRef: UtteranceRef{TurnIndex: 0}, AdjustedScore: 20, Retention: LongTerm}
	d.Apply(item, 100, cfg)

	if item.AdjustedScore != 20 || item.Retention != LongTerm {
		t.Error("expected LONG_TERM items to never decay")
	}
}

func TestDecaySkipsSuperseded(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	d := NewDecayEngine()

	ref := UtteranceRef{TurnIndex: 99}
	item := &MemoryItem{UtteranceRef: UtteranceRef{TurnIndex: 0}, AdjustedScore: 8, Retention: ShortTerm, SupersededBy: &ref}
	d.Apply(item, 20, cfg)

	if item.AdjustedScore != 8 {
		t.Error("expected superseded items to never decay")
	}
}
