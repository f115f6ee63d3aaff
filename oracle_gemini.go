package retentionkeeper

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// geminiOracleBackend calls Gemini as the remote semantic classifier using
// the google.golang.org/genai client.
type geminiOracleBackend struct {
	apiKey string
	model  string
}

func newGeminiOracleBackend(apiKey string) *geminiOracleBackend {
	return &geminiOracleBackend{apiKey: apiKey, model: "gemini-2.5-flash-lite"}
}

const oracleClassifyPrompt = `You are a memory-retention classifier. Given a single utterance from a conversation, decide how long it should be remembered.

Reply with ONLY a JSON object of this exact shape, nothing else:
{"retention": "LONG_TERM"|"SHORT_TERM"|"IMMEDIATE_DISCARD", "importance_0_to_30": <integer>, "categories": ["..."], "reasoning": "<one sentence>"}

Utterance: %q`

func (b *geminiOracleBackend) classify(ctx context.Context, normalizedText string) (OracleVerdict, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: b.apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return OracleVerdict{}, fmt.Errorf("genai client: %w", err)
	}

	prompt := fmt.Sprintf(oracleClassifyPrompt, normalizedText)
	resp, err := client.Models.GenerateContent(ctx, b.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(0.0)),
		MaxOutputTokens: 200,
	})
	if err != nil {
		return OracleVerdict{}, fmt.Errorf("genai generate: %w", err)
	}

	return parseOracleJSON(resp.Text())
}

type oracleJSONResponse struct {
	Retention  string   `json:"retention"`
	Importance int      `json:"importance_0_to_30"`
	Categories []string `json:"categories"`
	Reasoning  string   `json:"reasoning"`
}

// parseOracleJSON decodes the structured verdict shared by all three real
// oracle backends — each prompts for the same JSON shape.
func parseOracleJSON(text string) (OracleVerdict, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var parsed oracleJSONResponse
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return OracleVerdict{}, fmt.Errorf("parse oracle response: %w", err)
	}

	categories := make(map[string]bool, len(parsed.Categories))
	for _, c := range parsed.Categories {
		categories[c] = true
	}

	retention := RetentionLevel(parsed.Retention)
	switch retention {
	case LongTerm, ShortTerm, ImmediateDiscard:
	default:
		retention = ShortTerm
	}

	return OracleVerdict{
		Retention:  retention,
		Importance: parsed.Importance,
		Categories: categories,
		Reasoning:  parsed.Reasoning,
	}, nil
}
