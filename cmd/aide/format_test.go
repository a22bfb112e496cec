package main

import (
	"encoding/json"
	"strings"
	"testing"

	"aide/internal/ranking"
	"aide/internal/selector"
)

func TestFormatSearchJSON(t *testing.T) {
	resp := &SearchResponseCLI{
		Query: "retry",
		Mode:  "hybrid",
		Alpha: 0.5,
		Results: []ranking.Result{
			{Path: "a.go", Score: 0.9, Lexical: 1, Semantic: 0.8},
		},
	}

	out, err := FormatResponse(resp, FormatJSON)
	if err != nil {
		t.Fatalf("FormatResponse: %v", err)
	}

	var decoded SearchResponseCLI
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Query != "retry" || len(decoded.Results) != 1 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestFormatSearchHuman(t *testing.T) {
	resp := &SearchResponseCLI{
		Query: "retry",
		Mode:  "lexical",
		Results: []ranking.Result{
			{Path: "pkg/retry.go", Score: 1.0, Lexical: 1.0},
		},
	}

	out, err := FormatResponse(resp, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse: %v", err)
	}
	if !strings.Contains(out, "retry") || !strings.Contains(out, "pkg/retry.go") {
		t.Errorf("human output missing fields:\n%s", out)
	}
}

func TestFormatContextHuman(t *testing.T) {
	resp := &ContextResponseCLI{
		Query:       "pool",
		Budget:      1000,
		TotalTokens: 400,
		Files: []selector.ContextFile{
			{Path: "pool.go", RelevanceScore: 0.7, Tokens: 400},
		},
	}

	out, err := FormatResponse(resp, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse: %v", err)
	}
	for _, want := range []string{"pool.go", "1000", "400"} {
		if !strings.Contains(out, want) {
			t.Errorf("human output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatRenameHumanSortsPaths(t *testing.T) {
	resp := &RenameResponseCLI{
		OldName:      "foo",
		NewName:      "bar",
		FilesChanged: 2,
		Replacements: map[string]int{"z.go": 1, "a.go": 2},
		SafetyScore:  0.9,
	}

	out, err := FormatResponse(resp, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse: %v", err)
	}
	if strings.Index(out, "a.go") > strings.Index(out, "z.go") {
		t.Errorf("paths should be sorted:\n%s", out)
	}
}

func TestFormatUnsupported(t *testing.T) {
	if _, err := FormatResponse(&SearchResponseCLI{}, OutputFormat("xml")); err == nil {
		t.Error("unsupported format should fail")
	}
}
