// Package window splits an ordered turn sequence into overlapping,
// bounded training windows.
package window

import (
	"github.com/MikeSquared-Agency/distill/internal/session"
)

// Default parameters: 8 user-assistant pairs per window with 50% overlap,
// capped at roughly 4096 tokens of content at ~4 chars/token.
const (
	DefaultWindowTurns = 16
	DefaultStride      = 8
	DefaultMaxChars    = 16384
)

// minWindowTurns is the floor below which a window is not emitted and
// below which budget trimming stops.
const minWindowTurns = 2

// Params configures the windower.
type Params struct {
	Size     int // window size in turns
	Stride   int // turns between window starts
	MaxChars int // character budget per window
}

// DefaultParams returns the standard windowing parameters.
func DefaultParams() Params {
	return Params{Size: DefaultWindowTurns, Stride: DefaultStride, MaxChars: DefaultMaxChars}
}

// Window is a contiguous bounded sub-sequence of a session's turns.
type Window struct {
	Turns        []session.Turn
	Index        int
	TotalWindows int
}

// Split slides a window of p.Size turns over the sequence, advancing by
// p.Stride each step. Window ends are extended so a tool call and its
// result are never split apart, then trimmed from the end to the character
// budget. TotalWindows is back-filled once the full list is known.
func Split(turns []session.Turn, p Params) []Window {
	if len(turns) == 0 {
		return nil
	}

	if len(turns) <= p.Size {
		w := Window{Turns: copyTurns(turns), Index: 0, TotalWindows: 1}
		return []Window{w}
	}

	var windows []Window
	start := 0

	for start < len(turns) {
		end := start + p.Size
		if end > len(turns) {
			end = len(turns)
		}
		end = adjustForToolBoundary(turns, end)

		wt := trimToBudget(copyTurns(turns[start:end]), p.MaxChars)
		if len(wt) >= minWindowTurns {
			windows = append(windows, Window{Turns: wt, Index: len(windows)})
		}

		start += p.Stride
		if start >= len(turns) {
			break
		}
		// A trailing remainder of fewer than 2 turns would only produce a
		// degenerate window.
		if len(turns)-start < minWindowTurns {
			break
		}
	}

	for i := range windows {
		windows[i].TotalWindows = len(windows)
	}

	return windows
}

// adjustForToolBoundary extends the end index by one when the window would
// otherwise close on an assistant tool call whose result is the very next
// turn.
func adjustForToolBoundary(turns []session.Turn, end int) int {
	if end >= len(turns) {
		return end
	}

	last := turns[end-1]
	if last.Role == "assistant" && len(last.ToolCalls) > 0 {
		next := turns[end]
		if next.Role == "user" && len(next.ToolResults) > 0 {
			return end + 1
		}
	}

	return end
}

// trimToBudget drops turns from the end, one at a time, while total content
// length exceeds the budget, but never below the 2-turn floor. A 2-turn
// window that still exceeds the budget is kept as-is rather than dropped;
// downstream stages tolerate the occasional oversized window.
func trimToBudget(turns []session.Turn, maxChars int) []session.Turn {
	total := 0
	for _, t := range turns {
		total += len(t.Content)
	}

	for total > maxChars && len(turns) > minWindowTurns {
		total -= len(turns[len(turns)-1].Content)
		turns = turns[:len(turns)-1]
	}

	return turns
}

func copyTurns(turns []session.Turn) []session.Turn {
	out := make([]session.Turn, len(turns))
	copy(out, turns)
	return out
}
