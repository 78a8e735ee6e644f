// Package quality scores training windows and decides keep/discard.
//
// Scoring is heuristic: substantive-turn density, tool usage, content
// density and conversation depth. An externally supplied outcome signal
// (telemetry-derived, in [0,1]) can sharpen the score when present;
// absence is the normal state, not an error.
package quality

import (
	"math"
	"regexp"
	"strings"

	"github.com/MikeSquared-Agency/distill/internal/session"
)

// Boilerplate first-line patterns: routine startup-check phrasings that
// carry no training signal.
var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^Mayor,?\s+checking in\.?$`),
	regexp.MustCompile(`(?i)^Let me check.*(hook|mail)`),
	regexp.MustCompile(`(?i)^Nothing on hook`),
	regexp.MustCompile(`(?i)^No .* messages`),
}

const (
	// minSubstantiveTurns is the minimum non-boilerplate turn count.
	minSubstantiveTurns = 2
	// minContentLength is the minimum total character count.
	minContentLength = 200
)

// Result is the outcome of quality assessment for one window.
type Result struct {
	Keep   bool
	Score  float64
	Reason string
}

// Assess scores a window's turns. outcome, when non-nil, is an opaque
// session-level quality signal in [0,1] blended into the final score.
func Assess(turns []session.Turn, outcome *float64) Result {
	if len(turns) < 2 {
		return Result{Keep: false, Score: 0.1, Reason: "too few turns"}
	}

	substantive := 0
	totalContentLen := 0
	toolCallCount := 0

	for _, turn := range turns {
		content := strings.TrimSpace(turn.Content)
		totalContentLen += len(content)

		switch turn.Role {
		case "assistant":
			toolCallCount += len(turn.ToolCalls)
			if !isBoilerplate(content) {
				substantive++
			}
		case "user":
			// Rendered tool results are machine output, not a substantive
			// user contribution.
			if !isBoilerplate(content) && !strings.HasPrefix(content, "<tool_result") {
				substantive++
			}
		}
	}

	if substantive < minSubstantiveTurns {
		return Result{Keep: false, Score: 0.1, Reason: "too few substantive turns"}
	}
	if totalContentLen < minContentLength {
		return Result{Keep: false, Score: 0.1, Reason: "content too short"}
	}

	totalTurns := len(turns)
	score := 0.0
	score += 0.3 * clamp01(float64(substantive)/float64(totalTurns))
	score += 0.3 * clamp01(float64(toolCallCount)/10)
	avgContent := float64(totalContentLen) / float64(totalTurns)
	score += 0.2 * clamp01(avgContent/500)
	score += 0.2 * clamp01(float64(totalTurns)/20)

	if outcome != nil {
		score = 0.8*score + 0.2*clamp01(*outcome)
	}

	return Result{Keep: true, Score: round3(score)}
}

// isBoilerplate checks the first line only; multi-line responses are
// usually substantive even when they open with a stock phrase.
func isBoilerplate(content string) bool {
	firstLine, _, _ := strings.Cut(content, "\n")
	firstLine = strings.TrimSpace(firstLine)
	for _, p := range boilerplatePatterns {
		if p.MatchString(firstLine) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
