package retentionkeeper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessConversationBasicRetention(t *testing.T) {
	store := NewInMemoryPersistence()
	cfg := Config{EnableEntities: true}
	p, err := NewPipelineOrchestrator(cfg, store)
	require.NoError(t, err)

	utterances := []Utterance{
		{TurnIndex: 0, Speaker: "User", Text: "Hi there, how are you?"},
		{TurnIndex: 1, Speaker: "User", Text: "I have a severe peanut allergy and always carry my epi-pen"},
	}

	items, err := p.ProcessConversation(context.Background(), "user-1", utterances)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, ImmediateDiscard, items[0].Retention)
	assert.Equal(t, LongTerm, items[1].Retention)
	assert.Len(t, store.Items(), 2)
}

func TestProcessConversationLinksEntities(t *testing.T) {
	store := NewInMemoryPersistence()
	cfg := Config{EnableEntities: true}
	p, err := NewPipelineOrchestrator(cfg, store)
	require.NoError(t, err)

	utterances := []Utterance{
		{TurnIndex: 0, Speaker: "User", Text: "My daughter Emily just started kindergarten."},
		{TurnIndex: 1, Speaker: "User", Text: "She had a nightmare last night."},
	}

	_, err = p.ProcessConversation(context.Background(), "user-1", utterances)
	require.NoError(t, err)

	var found *Entity
	for _, e := range store.Entities() {
		e := e
		if e.CanonicalName == "Emily" {
			found = &e
		}
	}
	require.NotNil(t, found, "expected a linked Emily entity")
	assert.Equal(t, 2, found.MentionCount)
}

func TestProcessConversationSkipsEntityLinkingOnDiscard(t *testing.T) {
	store := NewInMemoryPersistence()
	cfg := Config{EnableEntities: true}
	p, err := NewPipelineOrchestrator(cfg, store)
	require.NoError(t, err)

	utterances := []Utterance{
		{TurnIndex: 0, Speaker: "User", Text: "bye from London"},
	}

	items, err := p.ProcessConversation(context.Background(), "user-1", utterances)
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, ImmediateDiscard, items[0].Retention)
	assert.Empty(t, items[0].EntityRefs, "an IMMEDIATE_DISCARD item must not carry entity refs")
	assert.Empty(t, store.Entities(), "an IMMEDIATE_DISCARD utterance must not create or update entities")
}

func TestProcessConversationDetectsContradiction(t *testing.T) {
	store := NewInMemoryPersistence()
	p, err := NewPipelineOrchestrator(Config{}, store)
	require.NoError(t, err)

	utterances := []Utterance{
		{TurnIndex: 0, Speaker: "User", Text: "I love sushi"},
		{TurnIndex: 1, Speaker: "User", Text: "I can't eat sushi anymore"},
	}

	items, err := p.ProcessConversation(context.Background(), "user-1", utterances)
	require.NoError(t, err)
	assert.NotNil(t, items[0].SupersededBy)
}

func TestApplyFeedbackPersistsAndAdjustsWeights(t *testing.T) {
	store := NewInMemoryPersistence()
	p, err := NewPipelineOrchestrator(Config{EnableLearning: true}, store)
	require.NoError(t, err)

	err = p.ApplyFeedback(context.Background(), "user-1", "I love sushi", ShortTerm, LongTerm, FeedbackForgotImportant)
	require.NoError(t, err)

	loaded, err := store.LoadUserWeights(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, loaded)
}
