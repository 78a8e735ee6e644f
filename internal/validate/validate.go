// Package validate checks produced training JSONL against the trainer's
// structural expectations and computes dataset statistics.
package validate

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/distill/internal/format"
)

var validRoles = map[string]bool{"system": true, "human": true, "gpt": true}

// Report holds validation errors and dataset statistics for one file.
type Report struct {
	Path            string
	TotalSamples    int
	Errors          []string
	RoleCounts      map[string]int
	SourceCounts    map[string]int
	TurnCounts      []int
	CharCounts      []int
	QualityScores   []float64
	ToolCallSamples int
}

// Valid reports whether every sample passed structural validation.
func (r *Report) Valid() bool {
	return len(r.Errors) == 0
}

// File validates and profiles a training JSONL file.
func File(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	report := &Report{
		Path:         path,
		RoleCounts:   make(map[string]int),
		SourceCounts: make(map[string]int),
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var sample format.Sample
		if err := json.Unmarshal(line, &sample); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("line %d: invalid JSON: %v", lineNum, err))
			continue
		}

		report.TotalSamples++
		report.Errors = append(report.Errors, checkSample(sample, lineNum)...)
		profileSample(report, sample)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	return report, nil
}

// checkSample verifies one sample's structure: a system message first,
// strict human/gpt alternation, non-empty values, and a gpt message last.
func checkSample(sample format.Sample, lineNum int) []string {
	var errs []string

	conversations := sample.Conversations
	if len(conversations) < 2 {
		return append(errs, fmt.Sprintf("line %d: need at least 2 conversation messages", lineNum))
	}

	if conversations[0].From != "system" {
		errs = append(errs, fmt.Sprintf("line %d: first message must be 'system'", lineNum))
	}

	prev := ""
	for i, msg := range conversations {
		if !validRoles[msg.From] {
			errs = append(errs, fmt.Sprintf("line %d, msg %d: invalid role %q", lineNum, i, msg.From))
		}
		if strings.TrimSpace(msg.Value) == "" {
			errs = append(errs, fmt.Sprintf("line %d, msg %d: empty value", lineNum, i))
		}

		if i > 0 {
			switch {
			case prev == "system" && msg.From != "human":
				errs = append(errs, fmt.Sprintf("line %d, msg %d: expected 'human' after 'system', got %q", lineNum, i, msg.From))
			case prev == "human" && msg.From != "gpt":
				errs = append(errs, fmt.Sprintf("line %d, msg %d: expected 'gpt' after 'human', got %q", lineNum, i, msg.From))
			case prev == "gpt" && msg.From != "human":
				errs = append(errs, fmt.Sprintf("line %d, msg %d: expected 'human' after 'gpt', got %q", lineNum, i, msg.From))
			}
		}
		prev = msg.From
	}

	if conversations[len(conversations)-1].From != "gpt" {
		errs = append(errs, fmt.Sprintf("line %d: conversation must end with 'gpt'", lineNum))
	}

	return errs
}

func profileSample(report *Report, sample format.Sample) {
	role := sample.Metadata.Role
	if role == "" {
		role = "unknown"
	}
	report.RoleCounts[role]++

	source := sample.Metadata.Source
	if source == "" {
		source = "unknown"
	}
	report.SourceCounts[source]++

	if sample.Metadata.QualityScore > 0 {
		report.QualityScores = append(report.QualityScores, sample.Metadata.QualityScore)
	}

	turns := 0
	chars := 0
	hasToolCall := false
	for _, msg := range sample.Conversations {
		chars += len(msg.Value)
		if msg.From != "system" {
			turns++
		}
		if msg.From == "gpt" && strings.Contains(msg.Value, "<tool_call") {
			hasToolCall = true
		}
	}
	report.TurnCounts = append(report.TurnCounts, turns)
	report.CharCounts = append(report.CharCounts, chars)
	if hasToolCall {
		report.ToolCallSamples++
	}
}

func meanInt(vals []int) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return float64(sum) / float64(len(vals))
}

func medianInt(vals []int) int {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]int, len(vals))
	copy(sorted, vals)
	sort.Ints(sorted)
	return sorted[len(sorted)/2]
}

func meanFloat(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
