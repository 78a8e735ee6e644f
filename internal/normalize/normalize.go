// Package normalize cleans rendered tool-result blocks inside turn content:
// noisy lines are stripped and very long results are truncated so a single
// verbose command cannot dominate a training window.
package normalize

import (
	"regexp"
	"strings"
)

// DefaultMaxResultChars caps a single tool result's length.
const DefaultMaxResultChars = 2000

// Tool-result lines that are pure noise.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^Shell cwd was reset to`),
	regexp.MustCompile(`^WARNING: This binary was built with`),
}

var resultBlockPattern = regexp.MustCompile(`(?s)(<tool_result[^>]*>)\n(.*?)\n</tool_result>`)

// TruncateResult truncates a tool result to maxChars, preserving the
// beginning and the end. The head gets 60% of the budget; a marker sits
// between head and tail.
func TruncateResult(content string, maxChars int) string {
	if len(content) <= maxChars {
		return content
	}

	headBudget := maxChars * 60 / 100
	tailBudget := maxChars - headBudget - 20 // 20 chars for the marker

	head := content[:headBudget]
	tail := ""
	if tailBudget > 0 {
		tail = content[len(content)-tailBudget:]
	}
	return head + "\n... [truncated] ...\n" + tail
}

// CleanResult removes noise lines from tool result content.
func CleanResult(content string) string {
	lines := strings.Split(content, "\n")
	cleaned := lines[:0]
	for _, line := range lines {
		if isNoise(line) {
			continue
		}
		cleaned = append(cleaned, line)
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

func isNoise(line string) bool {
	for _, p := range noisePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// TurnContent normalizes every tool_result block within a turn's content.
func TurnContent(content string) string {
	return TurnContentMax(content, DefaultMaxResultChars)
}

// TurnContentMax is TurnContent with an explicit per-result budget.
func TurnContentMax(content string, maxResultChars int) string {
	return resultBlockPattern.ReplaceAllStringFunc(content, func(block string) string {
		m := resultBlockPattern.FindStringSubmatch(block)
		if m == nil {
			return block
		}
		body := CleanResult(m[2])
		body = TruncateResult(body, maxResultChars)
		return m[1] + "\n" + body + "\n</tool_result>"
	})
}
