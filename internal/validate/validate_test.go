package validate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFile_ValidDataset(t *testing.T) {
	path := writeDataset(t, []string{
		`{"conversations":[{"from":"system","value":"[GAS TOWN ROLE: mayor]"},{"from":"human","value":"Check hook"},{"from":"gpt","value":"Checking now."}],"metadata":{"role":"mayor","session_id":"s1","window_index":0,"quality_score":0.7,"source":"claude-session"}}`,
		`{"conversations":[{"from":"system","value":"[GAS TOWN ROLE: crew]"},{"from":"human","value":"Fix the bug"},{"from":"gpt","value":"<tool_call name=\"Edit\">\n{}\n</tool_call>"}],"metadata":{"role":"crew","session_id":"s2","window_index":0,"quality_score":0.6,"source":"claude-session"}}`,
	})

	report, err := File(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Valid() {
		t.Fatalf("expected valid, errors: %v", report.Errors)
	}
	if report.TotalSamples != 2 {
		t.Errorf("total = %d", report.TotalSamples)
	}
	if report.RoleCounts["mayor"] != 1 || report.RoleCounts["crew"] != 1 {
		t.Errorf("role counts = %v", report.RoleCounts)
	}
	if report.ToolCallSamples != 1 {
		t.Errorf("tool call samples = %d", report.ToolCallSamples)
	}
}

func TestFile_CatchesStructuralErrors(t *testing.T) {
	path := writeDataset(t, []string{
		// missing system message
		`{"conversations":[{"from":"human","value":"hi"},{"from":"gpt","value":"hello"}],"metadata":{}}`,
		// broken alternation
		`{"conversations":[{"from":"system","value":"p"},{"from":"human","value":"a"},{"from":"human","value":"b"},{"from":"gpt","value":"c"}],"metadata":{}}`,
		// ends on human
		`{"conversations":[{"from":"system","value":"p"},{"from":"human","value":"a"},{"from":"gpt","value":"b"},{"from":"human","value":"c"}],"metadata":{}}`,
		// empty value
		`{"conversations":[{"from":"system","value":"p"},{"from":"human","value":"  "},{"from":"gpt","value":"b"}],"metadata":{}}`,
		// invalid role tag
		`{"conversations":[{"from":"system","value":"p"},{"from":"user","value":"a"},{"from":"gpt","value":"b"}],"metadata":{}}`,
	})

	report, err := File(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Valid() {
		t.Fatal("expected validation errors")
	}

	joined := strings.Join(report.Errors, "\n")
	for _, want := range []string{
		"first message must be 'system'",
		"expected 'gpt' after 'human'",
		"must end with 'gpt'",
		"empty value",
		`invalid role "user"`,
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing error %q in:\n%s", want, joined)
		}
	}
}

func TestFile_InvalidJSONLine(t *testing.T) {
	path := writeDataset(t, []string{
		`{"conversations":[{"from":"system","value":"p"},{"from":"human","value":"a"},{"from":"gpt","value":"b"}],"metadata":{}}`,
		`{broken`,
	})

	report, err := File(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TotalSamples != 1 {
		t.Errorf("total = %d, want 1", report.TotalSamples)
	}
	if report.Valid() {
		t.Error("expected an error for the broken line")
	}
}

func TestRenderTable(t *testing.T) {
	path := writeDataset(t, []string{
		`{"conversations":[{"from":"system","value":"p"},{"from":"human","value":"a"},{"from":"gpt","value":"b"}],"metadata":{"role":"mayor","quality_score":0.5,"source":"claude-session"}}`,
	})
	report, err := File(path)
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	report.RenderTable(&sb)
	out := sb.String()
	if !strings.Contains(out, "samples") || !strings.Contains(out, "role: mayor") {
		t.Errorf("table output missing fields:\n%s", out)
	}
}

func writeDataset(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "train.jsonl")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	for _, line := range lines {
		f.WriteString(line + "\n")
	}
	return path
}
