package retentionkeeper

import "testing"

func TestDefaultRegistryLoads(t *testing.T) {
	reg, err := NewDefaultPatternRegistry()
	if err != nil {
		t.Fatalf("NewDefaultPatternRegistry: %v", err)
	}
	if reg.Size() == 0 {
		t.Fatal("expected a non-empty built-in catalog")
	}
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	catalog := []Pattern{
		{Name: "dup", Regex: `foo`, Weight: 1},
		{Name: "dup", Regex: `bar`, Weight: 2},
	}
	if _, err := NewPatternRegistry(catalog); err == nil {
		t.Fatal("expected duplicate pattern name to be rejected")
	}
}

func TestRegistryRejectsBadRegex(t *testing.T) {
	catalog := []Pattern{{Name: "broken", Regex: `(unterminated`, Weight: 1}}
	if _, err := NewPatternRegistry(catalog); err == nil {
		t.Fatal("expected invalid regex to be rejected")
	}
}

func TestMatchAllCaseInsensitive(t *testing.T) {
	reg, err := NewPatternRegistry([]Pattern{{Name: "greeting", Regex: `\bhello\b`, Weight: -3, Category: "filler"}})
	if err != nil {
		t.Fatalf("NewPatternRegistry: %v", err)
	}
	matches := reg.MatchAll("HELLO there")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Pattern.Name != "greeting" {
		t.Errorf("expected greeting pattern, got %s", matches[0].Pattern.Name)
	}
}

func TestMatchAllMultipleSpans(t *testing.T) {
	reg, err := NewPatternRegistry([]Pattern{{Name: "word", Regex: `\bfoo\b`, Weight: 1}})
	if err != nil {
		t.Fatalf("NewPatternRegistry: %v", err)
	}
	matches := reg.MatchAll("foo bar foo baz foo")
	if len(matches) != 1 || len(matches[0].Spans) != 3 {
		t.Fatalf("expected 1 pattern with 3 spans, got %+v", matches)
	}
}

func TestLookup(t *testing.T) {
	reg, err := NewDefaultPatternRegistry()
	if err != nil {
		t.Fatalf("NewDefaultPatternRegistry: %v", err)
	}
	if _, ok := reg.Lookup("allergy_mention"); !ok {
		t.Error("expected allergy_mention pattern to exist in the default catalog")
	}
	if _, ok := reg.Lookup("does_not_exist"); ok {
		t.Error("expected missing pattern to be reported absent")
	}
}
