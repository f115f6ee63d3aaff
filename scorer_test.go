package retentionkeeper

import "testing"

func newTestScorer(t *testing.T, cfg Config) *PatternScorer {
	t.Helper()
	cfg.ApplyDefaults()
	reg, err := NewDefaultPatternRegistry()
	if err != nil {
		t.Fatalf("NewDefaultPatternRegistry: %v", err)
	}
	return NewPatternScorer(reg, cfg)
}

func TestScorePeanutAllergyIsLongTerm(t *testing.T) {
	s := newTestScorer(t, Config{})
	u := Utterance{TurnIndex: 1, Speaker: "User", Text: "I have a severe peanut allergy and I always carry my epi-pen"}
	res := s.Score(u, nil)
	if res.AdjustedScore < 25 {
		t.Errorf("expected adjusted score >= 25, got %.1f", res.AdjustedScore)
	}
	if res.Retention != LongTerm {
		t.Errorf("expected LONG_TERM, got %s", res.Retention)
	}
}

func TestScoreGreetingIsDiscarded(t *testing.T) {
	s := newTestScorer(t, Config{})
	u := Utterance{TurnIndex: 1, Speaker: "User", Text: "Hi there, how are you today?"}
	res := s.Score(u, nil)
	if res.AdjustedScore > 2 {
		t.Errorf("expected adjusted score <= 2, got %.1f", res.AdjustedScore)
	}
	if res.Retention != ImmediateDiscard {
		t.Errorf("expected IMMEDIATE_DISCARD, got %s", res.Retention)
	}
}

func TestScoreFlyingTerrifiesMeIsBorderline(t *testing.T) {
	s := newTestScorer(t, Config{})
	u := Utterance{TurnIndex: 1, Speaker: "User", Text: "Flying terrifies me"}
	res := s.Score(u, nil)
	if !IsBorderline(res.AdjustedScore, s.config) {
		t.Errorf("expected a borderline score, got %.1f", res.AdjustedScore)
	}
}

func TestScoreSeverityModifierIsCumulative(t *testing.T) {
	s := newTestScorer(t, Config{})
	plain := s.Score(Utterance{Text: "I have a peanut allergy"}, nil)
	severe := s.Score(Utterance{Text: "I have a severe, critical peanut allergy"}, nil)
	if severe.AdjustedScore <= plain.AdjustedScore {
		t.Errorf("expected severity tokens to raise the score: plain=%.1f severe=%.1f", plain.AdjustedScore, severe.AdjustedScore)
	}
}

func TestScoreLengthBonusThresholds(t *testing.T) {
	s := newTestScorer(t, Config{})
	short := s.Score(Utterance{Text: "I like jazz"}, nil)
	long := s.Score(Utterance{Text: "I really really like jazz music a whole lot and it is something I think about constantly these days"}, nil)
	if long.AdjustedScore <= short.AdjustedScore {
		t.Errorf("expected the longer utterance to score higher due to the length bonus")
	}
}

func TestScoreUserWeightRoundingAppliesToSum(t *testing.T) {
	s := newTestScorer(t, Config{})
	u := Utterance{Text: "I love jazz and I also enjoy painting"}
	weights := map[string]float64{"likes_statement": 0.33}
	res := s.Score(u, weights)
	base := s.Score(u, nil)
	delta := res.AdjustedScore - base.AdjustedScore
	if res.AdjustedScore != base.AdjustedScore+roundToTenth(0.33) {
		t.Errorf("expected rounded user-weight delta %.1f, got %.1f", roundToTenth(0.33), delta)
	}
}

func TestIsBorderlineBounds(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if !IsBorderline(cfg.BorderlineLow, cfg) {
		t.Error("expected the low bound to be inclusive")
	}
	if !IsBorderline(cfg.BorderlineHigh, cfg) {
		t.Error("expected the high bound to be inclusive")
	}
	if IsBorderline(cfg.BorderlineHigh+1, cfg) {
		t.Error("expected scores above the high bound to not be borderline")
	}
}
