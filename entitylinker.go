package retentionkeeper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// candidateMention is an extraction-stage hit before resolution.
type candidateMention struct {
	text       string
	entityType EntityType
	isPronoun  bool
	extraAlias string // e.g. "my daughter" when a proper name was also found in the same clause
	attribute  *attributeClue
}

type attributeClue struct {
	name  string
	value string
}

var (
	// kinshipNamedRe matches "my daughter Emily" style mentions where a proper
	// name follows the kinship term; the name becomes the canonical mention
	// and the kinship phrase is folded in as an alias.
	kinshipNamedRe = regexp.MustCompile(`\b(?i:my (daughter|son|wife|husband|mother|father|mom|dad|sister|brother|grandmother|grandfather|partner|friend))\s+([A-Z][a-z]+)\b`)
	kinshipRe      = regexp.MustCompile(`(?i)\bmy (daughter|son|wife|husband|mother|father|mom|dad|sister|brother|grandmother|grandfather|partner|friend)\b`)
	locationRe     = regexp.MustCompile(`\b(?i:in|at|to|from)\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*)`)
	orgRe          = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3})\b`)
	pronounRe      = regexp.MustCompile(`(?i)\b(he|she|they|it|him|her|them)\b`)
	ageAttrRe      = regexp.MustCompile(`(?i)(is|i'm|am)\s+(\d{1,3})\s*(years? old)?`)
	conditionAttrRe = regexp.MustCompile(`(?i)\bhas\s+([a-z]+)\b`)
)

// EntityLinker extracts mentions and resolves coreferences into a stable
// entity graph . Pronouns never create entities; they bind to the most
// recent type-compatible entity within a 3-turn window.
type EntityLinker struct {
	registry *PatternRegistry
}

// NewEntityLinker builds a linker; the registry is consulted to recognize
// MEDICAL_CONDITION mentions via the "medical" category patterns.
func NewEntityLinker(registry *PatternRegistry) *EntityLinker {
	return &EntityLinker{registry: registry}
}

// ConversationState is the accumulated entity graph a conversation builds up.
// It is owned by the caller (PipelineOrchestrator) and mutated in place.
type ConversationState struct {
	UserID   string
	Entities map[string]*Entity // entity_id -> Entity
	order    []string           // insertion order, for deterministic iteration

	// seq counts Link() calls (linker-observed turns), and mentionSeq records
	// the seq at which each entity was last touched. Pronoun windowing is
	// measured in linker-observed turns rather than raw Utterance.TurnIndex,
	// since a transcript's turn numbering can have gaps (other speakers,
	// turns with no entity-bearing content) that don't narrow the window a
	// listener actually experiences.
	seq        int
	mentionSeq map[string]int

	// coMentions[seq] lists the entity ids touched by that Link() call, the
	// waypoint a one-hop RelatedEntities traversal walks.
	coMentions map[int][]string
}

// NewConversationState creates an empty entity graph, optionally namespaced
// to a user for cross-conversation entity id stability.
func NewConversationState(userID string) *ConversationState {
	return &ConversationState{
		UserID:     userID,
		Entities:   map[string]*Entity{},
		mentionSeq: map[string]int{},
		coMentions: map[int][]string{},
	}
}

// RelatedEntities returns entities that share a Link() call (turn) with the
// given entity, one hop out, excluding the entity itself. Useful for
// attaching secondary entity_refs to a memory item beyond what was directly
// mentioned in its own turn.
func (cs *ConversationState) RelatedEntities(entityID string) []string {
	seen := map[string]bool{entityID: true}
	var out []string
	for _, ids := range cs.coMentions {
		touched := false
		for _, id := range ids {
			if id == entityID {
				touched = true
				break
			}
		}
		if !touched {
			continue
		}
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

func (cs *ConversationState) add(e *Entity) {
	cs.Entities[e.EntityID] = e
	cs.order = append(cs.order, e.EntityID)
}

// entitiesOfType returns entities of a type, most-recently-mentioned first.
func (cs *ConversationState) entitiesOfType(t EntityType) []*Entity {
	var out []*Entity
	for _, id := range cs.order {
		if e := cs.Entities[id]; e.EntityType == t {
			out = append(out, e)
		}
	}
	// sort by LastTurn descending, longer canonical name breaks ties
	for i := 1; i < len(out); i++ {
		j := i
		for j > 0 && less(out[j-1], out[j]) {
			out[j-1], out[j] = out[j], out[j-1]
			j--
		}
	}
	return out
}

func less(a, b *Entity) bool {
	if a.LastTurn != b.LastTurn {
		return a.LastTurn < b.LastTurn
	}
	return len(a.CanonicalName) < len(b.CanonicalName)
}

// LinkResult reports what the linker did for one utterance.
type LinkResult struct {
	EntitiesTouched []string // entity ids
	MentionsAdded   int
}

// Link extracts mentions from the utterance and resolves them against the
// conversation's entity graph, creating or updating entities in place.
func (el *EntityLinker) Link(utterance Utterance, state *ConversationState) LinkResult {
	candidates := el.extract(utterance.Text)
	state.seq++

	result := LinkResult{}
	for _, cand := range candidates {
		var entity *Entity
		if cand.isPronoun {
			entity = el.resolvePronoun(cand, state)
			if entity == nil {
				continue // no referent in window: discard
			}
		} else {
			entity = el.resolveOrCreate(cand, utterance, state)
		}

		entity.LastTurn = utterance.TurnIndex
		state.mentionSeq[entity.EntityID] = state.seq
		entity.MentionCount++
		entity.Aliases[strings.ToLower(cand.text)] = true
		if cand.extraAlias != "" {
			entity.Aliases[cand.extraAlias] = true
		}
		if len(cand.text) > len(entity.CanonicalName) {
			entity.CanonicalName = cand.text
		}

		if cand.attribute != nil {
			if existing, ok := entity.Attributes[cand.attribute.name]; ok && existing.Value != cand.attribute.value {
				// Conflicting attribute: preserve both with turn provenance.
				entity.Attributes[cand.attribute.name+"@turn"+strconv.Itoa(utterance.TurnIndex)] = AttributeValue{
					Value: cand.attribute.value, TurnIndex: utterance.TurnIndex,
				}
			} else {
				entity.Attributes[cand.attribute.name] = AttributeValue{Value: cand.attribute.value, TurnIndex: utterance.TurnIndex}
			}
		}

		result.EntitiesTouched = append(result.EntitiesTouched, entity.EntityID)
		result.MentionsAdded++
	}

	if len(result.EntitiesTouched) > 1 {
		state.coMentions[state.seq] = append([]string(nil), result.EntitiesTouched...)
	}

	return result
}

// resolveOrCreate implements step 1: match by canonical name, substring,
// or alias against same-type entities (most recent wins), else create.
func (el *EntityLinker) resolveOrCreate(cand candidateMention, utterance Utterance, state *ConversationState) *Entity {
	lower := strings.ToLower(cand.text)
	for _, e := range state.entitiesOfType(cand.entityType) {
		if strings.ToLower(e.CanonicalName) == lower {
			return e
		}
		if e.Aliases[lower] {
			return e
		}
		if strings.Contains(strings.ToLower(e.CanonicalName), lower) || strings.Contains(lower, strings.ToLower(e.CanonicalName)) {
			return e
		}
	}

	entity := &Entity{
		EntityID:      el.newEntityID(state.UserID, cand.text),
		EntityType:    cand.entityType,
		CanonicalName: cand.text,
		Aliases:       map[string]bool{},
		Attributes:    map[string]AttributeValue{},
		FirstTurn:     utterance.TurnIndex,
		LastTurn:      utterance.TurnIndex,
	}
	state.add(entity)
	return entity
}

// resolvePronoun implements step 2: most recent type-compatible entity
// within a 3-turn window, measured in linker-observed turns (state.seq).
func (el *EntityLinker) resolvePronoun(cand candidateMention, state *ConversationState) *Entity {
	var candidateTypes []EntityType
	switch strings.ToLower(cand.text) {
	case "he", "him":
		candidateTypes = []EntityType{EntityPerson}
	case "she", "her":
		candidateTypes = []EntityType{EntityPerson}
	case "they", "them":
		candidateTypes = []EntityType{EntityPerson, EntityOther}
	case "it":
		candidateTypes = []EntityType{EntityLocation, EntityOrganization, EntityEvent, EntityOther, EntityMedical}
	}

	const window = 3
	var best *Entity
	for _, t := range candidateTypes {
		for _, e := range state.entitiesOfType(t) {
			if state.seq-state.mentionSeq[e.EntityID] > window {
				continue
			}
			if best == nil || e.LastTurn > best.LastTurn {
				best = e
			}
		}
	}
	return best
}

// extract produces candidate mentions from text using pattern-based
// recognizers for each entity type.
func (el *EntityLinker) extract(text string) []candidateMention {
	var out []candidateMention
	seen := map[string]bool{}

	addOnce := func(c candidateMention) {
		key := strings.ToLower(c.text) + "|" + string(c.entityType)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, c)
	}

	// Pronouns first: never create entities.
	for _, m := range pronounRe.FindAllString(text, -1) {
		addOnce(candidateMention{text: m, isPronoun: true})
	}

	// Kinship terms with a following proper name ("my daughter Emily") => the
	// name is canonical, the kinship phrase becomes an alias.
	namedRelations := map[string]bool{}
	for _, m := range kinshipNamedRe.FindAllStringSubmatch(text, -1) {
		relation := strings.ToLower(m[1])
		namedRelations[relation] = true
		addOnce(candidateMention{
			text:       m[2],
			entityType: EntityPerson,
			extraAlias: "my " + relation,
			attribute:  &attributeClue{name: "relationship", value: relation},
		})
	}

	// Bare kinship terms ("my daughter") with no following name => PERSON,
	// plus a relationship attribute. Skipped when already folded into a
	// named mention above.
	for _, m := range kinshipRe.FindAllStringSubmatch(text, -1) {
		relation := strings.ToLower(m[1])
		if namedRelations[relation] {
			continue
		}
		addOnce(candidateMention{
			text:       m[0],
			entityType: EntityPerson,
			attribute:  &attributeClue{name: "relationship", value: relation},
		})
	}

	// MEDICAL_CONDITION: reuse the L1 "medical" category patterns.
	if el.registry != nil {
		for _, pm := range el.registry.MatchAll(text) {
			if pm.Pattern.Category != "medical" {
				continue
			}
			for _, span := range pm.Spans {
				addOnce(candidateMention{text: text[span.Start:span.End], entityType: EntityMedical})
			}
		}
	}

	// LOCATION: proper nouns following prepositions.
	for _, m := range locationRe.FindAllStringSubmatch(text, -1) {
		addOnce(candidateMention{text: m[1], entityType: EntityLocation})
	}

	// ORGANIZATION: capitalized multiword phrases not already claimed as location.
	for _, m := range orgRe.FindAllStringSubmatch(text, 5) {
		phrase := strings.TrimSpace(m[1])
		if isCommonLeadWord(phrase) || seen[strings.ToLower(phrase)+"|"+string(EntityLocation)] {
			continue
		}
		addOnce(candidateMention{text: phrase, entityType: EntityOrganization})
	}

	// Age and condition clues ("is 5", "has asthma") are attached only to
	// PERSON candidates that carry no attribute yet. Every PERSON candidate
	// above is a kinship mention that already carries a relationship
	// attribute, and a bare proper name is not extracted as a PERSON, so
	// these clues are not recorded for "my daughter is 5" or "Emily has asthma".
	if m := ageAttrRe.FindStringSubmatch(text); m != nil {
		for i := range out {
			if out[i].entityType == EntityPerson && out[i].attribute == nil {
				out[i].attribute = &attributeClue{name: "age", value: m[2]}
			}
		}
	}
	if m := conditionAttrRe.FindStringSubmatch(text); m != nil {
		for i := range out {
			if out[i].entityType == EntityPerson && out[i].attribute == nil {
				out[i].attribute = &attributeClue{name: "condition", value: strings.ToLower(m[1])}
			}
		}
	}

	return out
}

func isCommonLeadWord(s string) bool {
	common := map[string]bool{"The": true, "This": true, "That": true, "What": true, "When": true, "Where": true, "How": true, "Why": true, "I": true}
	first := strings.Fields(s)
	if len(first) == 0 {
		return true
	}
	return common[first[0]]
}

// newEntityID generates a stable id when userID is set (deterministic over
// the user + canonical name), otherwise a random v4 UUID scoped to this
// conversation.
func (el *EntityLinker) newEntityID(userID, canonicalName string) string {
	if userID == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(userID+"|"+strings.ToLower(canonicalName))).String()
}

