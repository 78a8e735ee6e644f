package dedup

import (
	"testing"

	"github.com/MikeSquared-Agency/distill/internal/format"
)

func TestFilter_IdenticalAssistantCollapses(t *testing.T) {
	// Same gpt text, different human text: must collapse to one sample.
	a := sampleWith("Check hook now", "Mayor, checking in.")
	b := sampleWith("Different templated prompt", "Mayor, checking in.")

	unique := NewSet().Filter([]format.Sample{a, b})
	if len(unique) != 1 {
		t.Fatalf("expected 1 unique sample, got %d", len(unique))
	}
	if unique[0].Conversations[1].Value != "Check hook now" {
		t.Error("first occurrence must win")
	}
}

func TestFilter_DistinctAssistantKept(t *testing.T) {
	a := sampleWith("Prompt", "First response.")
	b := sampleWith("Prompt", "Second response.")

	unique := NewSet().Filter([]format.Sample{a, b})
	if len(unique) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(unique))
	}
}

func TestFilter_Idempotent(t *testing.T) {
	samples := []format.Sample{
		sampleWith("a", "x"),
		sampleWith("b", "x"),
		sampleWith("c", "y"),
	}

	first := NewSet().Filter(samples)
	second := NewSet().Filter(first)
	if len(second) != len(first) {
		t.Errorf("second pass removed %d more samples", len(first)-len(second))
	}
}

func TestFilter_OrderPreserved(t *testing.T) {
	samples := []format.Sample{
		sampleWith("1", "r1"),
		sampleWith("2", "r2"),
		sampleWith("3", "r1"),
		sampleWith("4", "r3"),
	}

	unique := NewSet().Filter(samples)
	if len(unique) != 3 {
		t.Fatalf("expected 3, got %d", len(unique))
	}
	want := []string{"1", "2", "4"}
	for i, w := range want {
		if unique[i].Conversations[1].Value != w {
			t.Errorf("position %d: got %q, want %q", i, unique[i].Conversations[1].Value, w)
		}
	}
}

func TestFilter_SetSpansCalls(t *testing.T) {
	s := NewSet()
	s.Filter([]format.Sample{sampleWith("a", "resp")})
	out := s.Filter([]format.Sample{sampleWith("b", "resp")})
	if len(out) != 0 {
		t.Errorf("expected cross-call dedup, got %d samples", len(out))
	}
	if s.Len() != 1 {
		t.Errorf("seen keys = %d, want 1", s.Len())
	}
}

func TestContentHash_IgnoresHumanAndSystem(t *testing.T) {
	a := sampleWith("human one", "same reply")
	b := sampleWith("human two", "same reply")
	if ContentHash(a.Conversations) != ContentHash(b.Conversations) {
		t.Error("hash must depend only on gpt messages")
	}
	if got := len(ContentHash(a.Conversations)); got != 16 {
		t.Errorf("key length = %d, want 16", got)
	}
}

func sampleWith(human, gpt string) format.Sample {
	return format.Sample{
		Conversations: []format.Message{
			{From: "system", Value: "[GAS TOWN ROLE: agent]"},
			{From: "human", Value: human},
			{From: "gpt", Value: gpt},
		},
	}
}
