package retentionkeeper

import (
	"regexp"
	"strings"
)

var negationRe = regexp.MustCompile(`(?i)\b(not|no longer|can't|cannot|won't)\b`)

// salientNounRe pulls the object a statement is about, so two statements can
// be compared for shared topic ("sushi", "flying", ...). The verb list covers
// both preference verbs ("love", "hate") and the plain action verbs a
// negated statement tends to use instead ("eat", "have").
var salientNounRe = regexp.MustCompile(`(?i)\b(?:love|like|enjoy|hate|dislike|can't stand|eat|eats|eating|ate|drink|drinks|drinking|have|has|having|want|wants|owns?|visit|visits)\s+([a-z]+)`)

// ContradictionDetector finds pairs of memory items whose statements
// conflict and resolves them via the newer-wins + supersession rule .
type ContradictionDetector struct{}

func NewContradictionDetector() *ContradictionDetector { return &ContradictionDetector{} }

// Check compares a newly-scored item against prior items in the same
// category and, on a contradiction, bumps the new item's score by 5 and
// marks the older item as superseded.
func (cd *ContradictionDetector) Check(newItem *MemoryItem, newText string, prior []*MemoryItem, priorText map[UtteranceRef]string, cfg Config) {
	for _, old := range prior {
		if old.SupersededBy != nil || old.Retention == ImmediateDiscard {
			continue // already resolved, or not retained
		}
		if !sharesCategory(newItem.Categories, old.Categories) {
			continue
		}
		oldText := priorText[old.UtteranceRef]
		if !contradicts(newText, oldText) {
			continue
		}

		newItem.AdjustedScore += 5
		newItem.Trace = append(newItem.Trace, TraceEntry{Tag: TagContradiction, Name: "contradiction_supersede", Delta: 5})
		newItem.Retention = retentionForScore(newItem.AdjustedScore, cfg)

		ref := newItem.UtteranceRef
		old.SupersededBy = &ref
	}
}

func sharesCategory(a, b map[string]bool) bool {
	for k := range a {
		if k == "preference" || k == "fact" {
			if b[k] {
				return true
			}
		}
	}
	return false
}

// contradicts applies the negation-token + shared-salient-noun heuristic:
// one statement must carry a negation token the other lacks, and
// both must be about the same topic noun.
func contradicts(newText, oldText string) bool {
	if oldText == "" {
		return false
	}
	newNeg := negationRe.MatchString(newText)
	oldNeg := negationRe.MatchString(oldText)
	if newNeg == oldNeg {
		return false // both affirm or both negate: not a contradiction
	}

	newNoun := salientNoun(newText)
	oldNoun := salientNoun(oldText)
	if newNoun == "" || oldNoun == "" {
		return false
	}
	return strings.Contains(newNoun, oldNoun) || strings.Contains(oldNoun, newNoun)
}

func salientNoun(text string) string {
	m := salientNounRe.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
