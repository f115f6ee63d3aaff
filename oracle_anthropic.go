package retentionkeeper

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicOracleBackend calls a Claude model as the remote semantic
// classifier.
type anthropicOracleBackend struct {
	sdk   anthropic.Client
	model anthropic.Model
}

func newAnthropicOracleBackend(apiKey string) *anthropicOracleBackend {
	return &anthropicOracleBackend{
		sdk:   anthropic.NewClient(option.WithAPIKey(apiKey)),
		model: anthropic.ModelClaude3_7SonnetLatest,
	}
}

func (b *anthropicOracleBackend) classify(ctx context.Context, normalizedText string) (OracleVerdict, error) {
	prompt := fmt.Sprintf(oracleClassifyPrompt, normalizedText)

	resp, err := b.sdk.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     b.model,
		MaxTokens: 200,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return OracleVerdict{}, fmt.Errorf("anthropic messages.new: %w", err)
	}
	if len(resp.Content) == 0 {
		return OracleVerdict{}, fmt.Errorf("anthropic: empty response")
	}

	return parseOracleJSON(resp.Content[0].Text)
}
