package nl2sql

import (
	"strings"
	"testing"
)

func TestStripMarkdownSQL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "SELECT 1", "SELECT 1"},
		{"sql fence", "```sql\nSELECT 1\n```", "SELECT 1"},
		{"bare fence", "```\nSELECT 1\n```", "SELECT 1"},
		{"whitespace", "  SELECT 1  \n", "SELECT 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkdownSQL(tt.input); got != tt.want {
				t.Fatalf("StripMarkdownSQL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuildGeneratePromptIncludesContext(t *testing.T) {
	req := Request{
		Question: "total revenue per region last year?",
		Dialect:  "postgresql",
		Tables: []TableContext{
			{Schema: "public", Name: "revenue", Columns: []string{"region", "total", "year"}},
		},
	}

	prompt, err := buildGeneratePrompt(req)
	if err != nil {
		t.Fatalf("buildGeneratePrompt() error = %v", err)
	}
	for _, want := range []string{"postgresql", `"revenue"`, `"region"`, "total revenue per region"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildRefinePromptIncludesFailure(t *testing.T) {
	req := Request{
		Question:  "how many users?",
		Dialect:   "mysql",
		FailedSQL: "SELECT COUNT(*) FROM usrs",
		DBError:   "Table 'app.usrs' doesn't exist",
	}

	prompt, err := buildRefinePrompt(req)
	if err != nil {
		t.Fatalf("buildRefinePrompt() error = %v", err)
	}
	if !strings.Contains(prompt, "SELECT COUNT(*) FROM usrs") {
		t.Fatalf("prompt missing failed SQL:\n%s", prompt)
	}
	if !strings.Contains(prompt, "doesn't exist") {
		t.Fatalf("prompt missing database error:\n%s", prompt)
	}
}
