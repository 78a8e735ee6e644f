package format

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/distill/internal/session"
)

func TestSharegpt_Basic(t *testing.T) {
	turns := []session.Turn{
		{Role: "user", Content: "Check your hook."},
		{Role: "assistant", Content: "Mayor, checking in."},
	}
	s := Sharegpt(turns, "mayor", "sess-1", 0, 0.85, nil)

	if len(s.Conversations) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(s.Conversations))
	}
	if s.Conversations[0].From != "system" || !strings.Contains(s.Conversations[0].Value, "mayor") {
		t.Errorf("system message = %+v", s.Conversations[0])
	}
	if s.Conversations[1].From != "human" || s.Conversations[2].From != "gpt" {
		t.Errorf("roles = %s, %s", s.Conversations[1].From, s.Conversations[2].From)
	}
	if s.Metadata.Role != "mayor" || s.Metadata.SessionID != "sess-1" || s.Metadata.QualityScore != 0.85 {
		t.Errorf("metadata = %+v", s.Metadata)
	}
	if !s.Trainable() {
		t.Error("expected trainable sample")
	}
}

func TestSharegpt_MergesConsecutiveSameRole(t *testing.T) {
	turns := []session.Turn{
		{Role: "user", Content: "First."},
		{Role: "user", Content: "Second."},
		{Role: "assistant", Content: "Reply."},
	}
	s := Sharegpt(turns, "crew", "sess-1", 0, 0.5, nil)

	if len(s.Conversations) != 3 {
		t.Fatalf("expected merged human turn, got %d messages", len(s.Conversations))
	}
	if s.Conversations[1].Value != "First.\nSecond." {
		t.Errorf("merged value = %q", s.Conversations[1].Value)
	}
}

func TestSharegpt_DropsLeadingAssistant(t *testing.T) {
	turns := []session.Turn{
		{Role: "assistant", Content: "Unprompted."},
		{Role: "user", Content: "Question."},
		{Role: "assistant", Content: "Answer."},
	}
	s := Sharegpt(turns, "deacon", "sess-1", 0, 0.5, nil)

	if s.Conversations[1].From != "human" {
		t.Errorf("first non-system message = %s, want human", s.Conversations[1].From)
	}
	if s.Conversations[1].Value != "Question." {
		t.Errorf("value = %q", s.Conversations[1].Value)
	}
}

func TestSharegpt_EndsOnGpt(t *testing.T) {
	turns := []session.Turn{
		{Role: "user", Content: "Question."},
		{Role: "assistant", Content: "Answer."},
		{Role: "user", Content: "Trailing prompt with no reply."},
	}
	s := Sharegpt(turns, "crew", "sess-1", 0, 0.5, nil)

	last := s.Conversations[len(s.Conversations)-1]
	if last.From != "gpt" {
		t.Errorf("last message from %s, want gpt", last.From)
	}
}

func TestSharegpt_NoUsableExchange(t *testing.T) {
	turns := []session.Turn{
		{Role: "assistant", Content: "Only assistant text."},
	}
	s := Sharegpt(turns, "crew", "sess-1", 0, 0.5, nil)
	if s.Trainable() {
		t.Error("sample with no human message must not be trainable")
	}
}

func TestWriteJSONL_RoundTrip(t *testing.T) {
	outcome := 0.9
	samples := []Sample{
		Sharegpt([]session.Turn{
			{Role: "user", Content: "Q1"},
			{Role: "assistant", Content: "A1"},
		}, "mayor", "sess-1", 0, 0.7, &outcome),
		Sharegpt([]session.Turn{
			{Role: "user", Content: "Q2"},
			{Role: "assistant", Content: "A2"},
		}, "witness", "sess-2", 1, 0.6, nil),
	}

	path := filepath.Join(t.TempDir(), "out", "train.jsonl")
	n, err := WriteJSONL(samples, path)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if n != 2 {
		t.Fatalf("wrote %d, want 2", n)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var read []Sample
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var s Sample
		if err := json.Unmarshal(scanner.Bytes(), &s); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		read = append(read, s)
	}
	if len(read) != 2 {
		t.Fatalf("read %d samples", len(read))
	}
	if read[0].Metadata.OutcomeScore == nil || *read[0].Metadata.OutcomeScore != 0.9 {
		t.Errorf("outcome_score = %v", read[0].Metadata.OutcomeScore)
	}
	if read[1].Metadata.OutcomeScore != nil {
		t.Error("absent outcome_score must stay absent")
	}
	if read[1].Metadata.WindowIndex != 1 {
		t.Errorf("window_index = %d", read[1].Metadata.WindowIndex)
	}
}
