package nl2sql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const systemPrompt = "You convert natural language questions into a single SQL query " +
	"for the dialect named in the request. " +
	"Use only the listed tables. Return ONLY SQL. No markdown, no explanation."

// Gemini generates SQL using Google's Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed generator.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required: set GOOGLE_API_KEY or store one with -save-key")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// Generate produces SQL for a fresh question.
func (g *Gemini) Generate(ctx context.Context, req Request) (Result, error) {
	prompt, err := buildGeneratePrompt(req)
	if err != nil {
		return Result{}, err
	}
	return g.complete(ctx, prompt)
}

// Refine regenerates SQL after a failed execution.
func (g *Gemini) Refine(ctx context.Context, req Request) (Result, error) {
	prompt, err := buildRefinePrompt(req)
	if err != nil {
		return Result{}, err
	}
	return g.complete(ctx, prompt)
}

func (g *Gemini) complete(ctx context.Context, prompt string) (Result, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0),
		},
	)
	if err != nil {
		return Result{}, fmt.Errorf("generate content: %w", err)
	}

	sql := StripMarkdownSQL(resp.Text())
	if strings.TrimSpace(sql) == "" {
		return Result{}, fmt.Errorf("model returned empty SQL")
	}
	return Result{SQL: sql, Model: g.model}, nil
}

func buildGeneratePrompt(req Request) (string, error) {
	tablesJSON, err := json.Marshal(req.Tables)
	if err != nil {
		return "", fmt.Errorf("marshal table context: %w", err)
	}
	return fmt.Sprintf(
		"Dialect: %s\nTable context (JSON):\n%s\n\nQuestion:\n%s\n\nRules:\n"+
			"- Use only listed tables and columns.\n"+
			"- Prefer explicit column lists over SELECT *.\n"+
			"- Output a single SQL query only.",
		req.Dialect,
		string(tablesJSON),
		strings.TrimSpace(req.Question),
	), nil
}

func buildRefinePrompt(req Request) (string, error) {
	base, err := buildGeneratePrompt(req)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"%s\n\nThe previous attempt failed.\nFailed SQL:\n%s\n\nDatabase error:\n%s\n\n"+
			"Fix the query so it executes successfully.",
		base, req.FailedSQL, req.DBError,
	), nil
}

// StripMarkdownSQL removes a surrounding ```sql fence when the model ignores
// the plain-SQL instruction.
func StripMarkdownSQL(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```sql")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(trimmed, "```")
		return strings.TrimSpace(trimmed)
	}
	return trimmed
}
