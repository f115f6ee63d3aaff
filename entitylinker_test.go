package retentionkeeper

import "testing"

func TestLinkEmilyDaughterPronoun(t *testing.T) {
	reg, err := NewDefaultPatternRegistry()
	if err != nil {
		t.Fatalf("NewDefaultPatternRegistry: %v", err)
	}
	linker := NewEntityLinker(reg)
	state := NewConversationState("user-1")

	linker.Link(Utterance{TurnIndex: 13, Speaker: "User", Text: "My daughter Emily just started kindergarten."}, state)
	linker.Link(Utterance{TurnIndex: 18, Speaker: "User", Text: "She had a nightmare last night."}, state)

	persons := state.entitiesOfType(EntityPerson)
	if len(persons) != 1 {
		t.Fatalf("expected exactly 1 PERSON entity, got %d", len(persons))
	}

	e := persons[0]
	if e.CanonicalName != "Emily" {
		t.Errorf("expected canonical name Emily, got %q", e.CanonicalName)
	}
	if !e.Aliases["my daughter"] {
		t.Error("expected 'my daughter' to be recorded as an alias")
	}
	if !e.Aliases["she"] {
		t.Error("expected 'she' to be recorded as an alias")
	}
	if e.MentionCount != 2 {
		t.Errorf("expected mention_count 2, got %d", e.MentionCount)
	}
	if attr, ok := e.Attributes["relationship"]; !ok || attr.Value != "daughter" {
		t.Errorf("expected relationship=daughter, got %+v", e.Attributes["relationship"])
	}
}

func TestPronounOutsideWindowIsDropped(t *testing.T) {
	linker := NewEntityLinker(nil)
	state := NewConversationState("user-1")

	linker.Link(Utterance{TurnIndex: 1, Speaker: "User", Text: "My daughter Emily just started kindergarten."}, state)
	for i := 2; i <= 5; i++ {
		linker.Link(Utterance{TurnIndex: i, Speaker: "User", Text: "That sounds nice, how's work going?"}, state)
	}
	result := linker.Link(Utterance{TurnIndex: 6, Speaker: "User", Text: "She is doing well."}, state)

	if result.MentionsAdded != 0 {
		t.Errorf("expected the pronoun outside the 3-turn window to be dropped, got %d mentions", result.MentionsAdded)
	}
}

func TestLocationExtraction(t *testing.T) {
	linker := NewEntityLinker(nil)
	state := NewConversationState("user-1")

	linker.Link(Utterance{TurnIndex: 1, Speaker: "User", Text: "I'm traveling to Lisbon next month."}, state)

	locations := state.entitiesOfType(EntityLocation)
	if len(locations) != 1 {
		t.Fatalf("expected exactly 1 LOCATION entity, got %d", len(locations))
	}
	if locations[0].CanonicalName != "Lisbon" {
		t.Errorf("expected Lisbon, got %q", locations[0].CanonicalName)
	}
}

func TestSameUserSameNameYieldsStableEntityID(t *testing.T) {
	linker := NewEntityLinker(nil)
	stateA := NewConversationState("user-1")
	stateB := NewConversationState("user-1")

	linker.Link(Utterance{TurnIndex: 1, Speaker: "User", Text: "My daughter Emily just started kindergarten."}, stateA)
	linker.Link(Utterance{TurnIndex: 1, Speaker: "User", Text: "My daughter Emily just started kindergarten."}, stateB)

	a := state_onlyEntity(t, stateA)
	b := state_onlyEntity(t, stateB)
	if a.EntityID != b.EntityID {
		t.Errorf("expected the same user+name pair to produce a stable entity id across conversations: %s vs %s", a.EntityID, b.EntityID)
	}
}

func TestRelatedEntitiesOneHopViaCoMention(t *testing.T) {
	linker := NewEntityLinker(nil)
	state := NewConversationState("user-1")

	linker.Link(Utterance{TurnIndex: 1, Speaker: "User", Text: "My daughter Emily and I are traveling to Lisbon next month."}, state)

	var emilyID, lisbonID string
	for _, e := range state.Entities {
		switch e.EntityType {
		case EntityPerson:
			emilyID = e.EntityID
		case EntityLocation:
			lisbonID = e.EntityID
		}
	}
	if emilyID == "" || lisbonID == "" {
		t.Fatalf("expected both a PERSON and a LOCATION entity, got %+v", state.Entities)
	}

	related := state.RelatedEntities(emilyID)
	found := false
	for _, id := range related {
		if id == lisbonID {
			found = true
		}
	}
	if !found {
		t.Error("expected Lisbon to show up as a one-hop related entity of Emily")
	}
}

func state_onlyEntity(t *testing.T, state *ConversationState) *Entity {
	t.Helper()
	for _, e := range state.Entities {
		return e
	}
	t.Fatal("expected at least one entity")
	return nil
}
