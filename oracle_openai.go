package retentionkeeper

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openAIOracleBackend calls an OpenAI chat-completion model as the remote
// semantic classifier.
type openAIOracleBackend struct {
	client openai.Client
	model  string
}

func newOpenAIOracleBackend(apiKey string) *openAIOracleBackend {
	return &openAIOracleBackend{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  openai.ChatModelGPT4oMini,
	}
}

func (b *openAIOracleBackend) classify(ctx context.Context, normalizedText string) (OracleVerdict, error) {
	prompt := fmt.Sprintf(oracleClassifyPrompt, normalizedText)

	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: b.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.0),
	})
	if err != nil {
		return OracleVerdict{}, fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return OracleVerdict{}, fmt.Errorf("openai chat: empty response")
	}

	return parseOracleJSON(resp.Choices[0].Message.Content)
}
