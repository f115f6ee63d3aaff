// retentionkeeper-mcp exposes the retention pipeline as an MCP stdio server.
//
// Environment variables:
//
//	RETENTIONKEEPER_DB_PATH  — SQLite database path (default: ./data/retentionkeeper.db)
//	RETENTIONKEEPER_L2       — oracle provider: mock, gemini, openai, anthropic (default: mock)
//	RETENTIONKEEPER_API_KEY  — API key for the selected L2 provider
//
// Usage:
//
//	go install github.com/goblincore/retentionkeeper/cmd/retentionkeeper-mcp
//	retentionkeeper-mcp
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	retentionkeeper "github.com/goblincore/retentionkeeper"
	"github.com/goblincore/retentionkeeper/sqlitestore"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	dbPath := os.Getenv("RETENTIONKEEPER_DB_PATH")
	if dbPath == "" {
		dbPath = "./data/retentionkeeper.db"
	}

	provider := os.Getenv("RETENTIONKEEPER_L2")
	if provider == "" {
		provider = "mock"
	}

	cfg := retentionkeeper.Config{
		EnableL2Oracle:        provider != "mock",
		L2MockMode:            provider == "mock",
		L2Provider:            retentionkeeper.L2Provider(provider),
		L2APIKey:              os.Getenv("RETENTIONKEEPER_API_KEY"),
		EnableEntities:        true,
		EnableLearning:        true,
		EnableAsyncReclassify: provider != "mock",
	}

	store, err := sqlitestore.Open(dbPath)
	if err != nil {
		log.Fatalf("retentionkeeper: open store: %v", err)
	}
	defer store.Close()

	orchestrator, err := retentionkeeper.NewPipelineOrchestrator(cfg, store)
	if err != nil {
		log.Fatalf("retentionkeeper: init pipeline: %v", err)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "retentionkeeper-mcp",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "process_conversation",
		Description: "Score and classify a full conversation transcript into LONG_TERM / SHORT_TERM / IMMEDIATE_DISCARD memory items, linking entities and resolving contradictions as it goes.",
	}, processConversationHandler(orchestrator))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "submit_feedback",
		Description: "Correct a prior retention decision for a user, adjusting that user's learned pattern weights.",
	}, submitFeedbackHandler(orchestrator))

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("retentionkeeper-mcp: %v", err)
	}
}

type processConversationInput struct {
	UserID      string `json:"user_id"      jsonschema:"User identifier the weights and entities are scoped to"`
	Transcript  string `json:"transcript"   jsonschema:"Conversation transcript in \"Speaker: text\" lines, one turn per line"`
}

type submitFeedbackInput struct {
	UserID           string `json:"user_id"           jsonschema:"User identifier"`
	Statement        string `json:"statement"         jsonschema:"The original statement being corrected"`
	ActualRetention  string `json:"actual_retention"  jsonschema:"What retention tier was actually assigned: LONG_TERM, SHORT_TERM, IMMEDIATE_DISCARD"`
	ExpectedRetention string `json:"expected_retention" jsonschema:"What retention tier should have been assigned"`
	FeedbackType     string `json:"feedback_type"     jsonschema:"forgot_important, remembered_trivial, wrong_category, or correct"`
}

func processConversationHandler(p *retentionkeeper.PipelineOrchestrator) func(context.Context, *mcp.CallToolRequest, processConversationInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input processConversationInput) (*mcp.CallToolResult, any, error) {
		utterances, parseErrs := retentionkeeper.ParseConversation(strings.NewReader(input.Transcript))
		for _, e := range parseErrs {
			log.Printf("retentionkeeper-mcp: %v", e)
		}

		items, err := p.ProcessConversation(ctx, input.UserID, utterances)
		if err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}

		out := make([]map[string]any, len(items))
		for i, it := range items {
			out[i] = itemToMap(it)
		}
		return textResult(jsonString(out)), nil, nil
	}
}

func submitFeedbackHandler(p *retentionkeeper.PipelineOrchestrator) func(context.Context, *mcp.CallToolRequest, submitFeedbackInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input submitFeedbackInput) (*mcp.CallToolResult, any, error) {
		err := p.ApplyFeedback(ctx, input.UserID, input.Statement,
			retentionkeeper.RetentionLevel(input.ActualRetention),
			retentionkeeper.RetentionLevel(input.ExpectedRetention),
			retentionkeeper.FeedbackType(input.FeedbackType))
		if err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}
		return textResult(`{"status": "applied"}`), nil, nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func itemToMap(m retentionkeeper.MemoryItem) map[string]any {
	return map[string]any{
		"turn_index":     m.UtteranceRef.TurnIndex,
		"speaker":        m.UtteranceRef.Speaker,
		"raw_score":      m.RawScore,
		"adjusted_score": m.AdjustedScore,
		"retention":      m.Retention,
		"categories":     m.Categories,
		"reasoning":      m.Reasoning,
	}
}

func jsonString(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal: %v"}`, err)
	}
	return string(data)
}
