package retentionkeeper

import (
	"strings"
	"testing"
)

func TestParseConversationBasic(t *testing.T) {
	input := "User: Hi there\nAssistant: Hello! How can I help?\n\nUser: I have a peanut allergy\n"
	utterances, errs := ParseConversation(strings.NewReader(input))

	if len(errs) != 0 {
		t.Fatalf("expected no parse errors, got %v", errs)
	}
	if len(utterances) != 3 {
		t.Fatalf("expected 3 utterances, got %d", len(utterances))
	}
	if utterances[2].Speaker != "User" || utterances[2].Text != "I have a peanut allergy" {
		t.Errorf("unexpected third utterance: %+v", utterances[2])
	}
	if utterances[0].TurnIndex != 0 || utterances[2].TurnIndex != 2 {
		t.Error("expected zero-based, blank-line-skipping turn indices")
	}
}

func TestParseConversationMalformedLineIsNonFatal(t *testing.T) {
	input := "User: Hi\nthis line has no speaker prefix\nAssistant: Hello\n"
	utterances, errs := ParseConversation(strings.NewReader(input))

	if len(utterances) != 2 {
		t.Fatalf("expected the malformed line to be skipped, not abort parsing: got %d utterances", len(utterances))
	}
	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 malformed-line error, got %d", len(errs))
	}
	if _, ok := errs[0].(*InputMalformedErr); !ok {
		t.Errorf("expected an *InputMalformedErr, got %T", errs[0])
	}
}

func TestParseConversationBlankLinesSkipped(t *testing.T) {
	input := "\n\nUser: Hi\n\n\nAssistant: Hello\n\n"
	utterances, _ := ParseConversation(strings.NewReader(input))
	if len(utterances) != 2 {
		t.Fatalf("expected blank lines to be skipped, got %d utterances", len(utterances))
	}
}
