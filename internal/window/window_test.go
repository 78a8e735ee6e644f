package window

import (
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/distill/internal/session"
)

func TestSplit_UnderWindowSize(t *testing.T) {
	turns := makeTurns(5, 10)
	windows := Split(turns, Params{Size: 16, Stride: 8, MaxChars: 16384})

	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	if len(windows[0].Turns) != 5 {
		t.Errorf("expected all 5 turns, got %d", len(windows[0].Turns))
	}
	if windows[0].Index != 0 || windows[0].TotalWindows != 1 {
		t.Errorf("index/total = %d/%d", windows[0].Index, windows[0].TotalWindows)
	}
}

func TestSplit_OverlappingWindows(t *testing.T) {
	turns := makeTurns(40, 10)
	windows := Split(turns, Params{Size: 16, Stride: 8, MaxChars: 16384})

	if len(windows) < 3 {
		t.Fatalf("expected at least 3 windows for 40 turns, got %d", len(windows))
	}
	if len(windows[0].Turns) != 16 {
		t.Errorf("window 0: %d turns, want 16", len(windows[0].Turns))
	}
	// Stride 8 with size 16 means window 1 starts at turn 8: its first turn
	// is window 0's ninth.
	if windows[1].Turns[0].UUID != turns[8].UUID {
		t.Errorf("window 1 starts at %s, want %s", windows[1].Turns[0].UUID, turns[8].UUID)
	}
	for _, w := range windows {
		if w.TotalWindows != len(windows) {
			t.Errorf("window %d: total_windows = %d, want %d", w.Index, w.TotalWindows, len(windows))
		}
	}
}

func TestSplit_ToolPairNeverSplit(t *testing.T) {
	// assistant tool call at the window boundary, its result immediately after
	turns := []session.Turn{
		{Role: "assistant", Content: "calling", ToolCalls: []session.ToolCall{{ID: "toolu_1", Name: "Bash", Input: `{"command":"ls"}`}}},
		{Role: "user", Content: "result", ToolResults: []session.ToolResult{{ToolUseID: "toolu_1", Content: "file1"}}},
	}
	windows := Split(turns, Params{Size: 1, Stride: 1, MaxChars: 16384})

	if len(windows) != 1 {
		t.Fatalf("expected 1 extended window, got %d", len(windows))
	}
	if len(windows[0].Turns) != 2 {
		t.Fatalf("expected call and result kept together, got %d turns", len(windows[0].Turns))
	}
	if windows[0].Turns[1].ToolResults[0].ToolUseID != "toolu_1" {
		t.Error("result turn missing from extended window")
	}
}

func TestSplit_ToolPairNotStartOfNextWindow(t *testing.T) {
	turns := makeTurns(20, 10)
	// Put a tool call at position 15 (the last turn of the first 16-turn
	// window) and its result at 16.
	turns[15].Role = "assistant"
	turns[15].ToolCalls = []session.ToolCall{{ID: "toolu_9", Name: "Bash", Input: "{}"}}
	turns[16].Role = "user"
	turns[16].ToolResults = []session.ToolResult{{ToolUseID: "toolu_9", Content: "done"}}

	windows := Split(turns, Params{Size: 16, Stride: 8, MaxChars: 16384})

	first := windows[0]
	lastTurn := first.Turns[len(first.Turns)-1]
	if lastTurn.Role == "assistant" && len(lastTurn.ToolCalls) > 0 {
		t.Error("window ends on an unpaired tool call")
	}
	if len(first.Turns) != 17 {
		t.Errorf("expected boundary extension to 17 turns, got %d", len(first.Turns))
	}
}

func TestSplit_TrimsToBudget(t *testing.T) {
	turns := makeTurns(40, 300) // 16-turn window is 4800 chars
	windows := Split(turns, Params{Size: 16, Stride: 8, MaxChars: 1000})

	for _, w := range windows {
		total := 0
		for _, turn := range w.Turns {
			total += len(turn.Content)
		}
		if len(w.Turns) > 2 && total > 1000 {
			t.Errorf("window %d: %d chars across %d turns exceeds budget", w.Index, total, len(w.Turns))
		}
	}
}

func TestSplit_OversizedPairKept(t *testing.T) {
	// Trimming stops at 2 turns; an over-budget 2-turn window is still
	// emitted rather than dropped.
	turns := makeTurns(40, 5000)
	windows := Split(turns, Params{Size: 16, Stride: 8, MaxChars: 1000})

	if len(windows) == 0 {
		t.Fatal("expected windows despite oversized turns")
	}
	for _, w := range windows {
		if len(w.Turns) != 2 {
			t.Errorf("window %d: expected trim floor of 2 turns, got %d", w.Index, len(w.Turns))
		}
	}
}

func TestSplit_NoDegenerateTail(t *testing.T) {
	turns := makeTurns(17, 10)
	windows := Split(turns, Params{Size: 16, Stride: 8, MaxChars: 16384})

	// Starts at 0 and 8; a third window starting at 16 would hold a single
	// turn and must not be emitted.
	for _, w := range windows {
		if len(w.Turns) < 2 {
			t.Errorf("window %d has %d turns", w.Index, len(w.Turns))
		}
	}
}

func TestSplit_Empty(t *testing.T) {
	windows := Split(nil, DefaultParams())
	if len(windows) != 0 {
		t.Errorf("expected no windows for empty input, got %d", len(windows))
	}
}

func TestSplit_DoesNotAliasSource(t *testing.T) {
	turns := makeTurns(5, 10)
	windows := Split(turns, DefaultParams())

	windows[0].Turns[0].Content = "mutated"
	if turns[0].Content == "mutated" {
		t.Error("window shares backing array with source turns")
	}
}

func makeTurns(n, contentLen int) []session.Turn {
	turns := make([]session.Turn, n)
	for i := 0; i < n; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		turns[i] = session.Turn{
			Role:    role,
			Content: strings.Repeat("x", contentLen),
			UUID:    string(rune('a' + i%26)) + string(rune('0'+i/26)),
		}
	}
	return turns
}
