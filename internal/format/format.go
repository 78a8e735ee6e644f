// Package format renders windowed turns into the sharegpt-style JSONL
// records the trainer consumes.
//
// Output shape (one JSON object per line):
//
//	{
//	  "conversations": [
//	    {"from": "system", "value": "[GAS TOWN ROLE: mayor] You are..."},
//	    {"from": "human", "value": "Check your hook..."},
//	    {"from": "gpt", "value": "Mayor, checking in.\n<tool_call>..."}
//	  ],
//	  "metadata": {"role": "mayor", "session_id": "abc", "window_index": 0, ...}
//	}
package format

import (
	"github.com/MikeSquared-Agency/distill/internal/roles"
	"github.com/MikeSquared-Agency/distill/internal/session"
)

// Message is one entry in a sample's conversation list.
type Message struct {
	From  string `json:"from"`
	Value string `json:"value"`
}

// Metadata identifies a sample's provenance and quality.
type Metadata struct {
	Role         string   `json:"role"`
	SessionID    string   `json:"session_id"`
	WindowIndex  int      `json:"window_index"`
	QualityScore float64  `json:"quality_score"`
	OutcomeScore *float64 `json:"outcome_score,omitempty"`
	Source       string   `json:"source"`
}

// Sample is the terminal training artifact: a system message followed by
// strictly alternating human/gpt messages, ending on gpt.
type Sample struct {
	Conversations []Message `json:"conversations"`
	Metadata      Metadata  `json:"metadata"`
}

// DefaultSource labels samples produced from agent-session transcripts.
const DefaultSource = "claude-session"

// Sharegpt formats a window of turns into a training sample. Consecutive
// same-role messages are merged, then alternation is enforced by dropping
// pattern-breakers, and trailing human messages are removed so the sample
// ends on an assistant response.
func Sharegpt(turns []session.Turn, role, sessionID string, windowIndex int, qualityScore float64, outcome *float64) Sample {
	conversations := []Message{{From: "system", Value: roles.SystemPrompt(role)}}

	for _, turn := range turns {
		switch turn.Role {
		case "user":
			conversations = append(conversations, Message{From: "human", Value: turn.Content})
		case "assistant":
			conversations = append(conversations, Message{From: "gpt", Value: turn.Content})
		}
	}

	conversations = mergeConsecutive(conversations)
	conversations = ensureAlternating(conversations)

	return Sample{
		Conversations: conversations,
		Metadata: Metadata{
			Role:         role,
			SessionID:    sessionID,
			WindowIndex:  windowIndex,
			QualityScore: qualityScore,
			OutcomeScore: outcome,
			Source:       DefaultSource,
		},
	}
}

// Trainable reports whether a sample carries at least one human and one
// gpt message; anything less is not a usable example.
func (s Sample) Trainable() bool {
	var human, gpt bool
	for _, m := range s.Conversations {
		switch m.From {
		case "human":
			human = true
		case "gpt":
			gpt = true
		}
	}
	return human && gpt
}

// mergeConsecutive joins adjacent messages from the same role; filtering
// upstream can leave same-role runs.
func mergeConsecutive(conversations []Message) []Message {
	if len(conversations) == 0 {
		return nil
	}

	merged := []Message{conversations[0]}
	for _, msg := range conversations[1:] {
		last := &merged[len(merged)-1]
		if msg.From == last.From {
			last.Value += "\n" + msg.Value
		} else {
			merged = append(merged, msg)
		}
	}
	return merged
}

// ensureAlternating enforces strict system → human → gpt → human → ...
// ordering, dropping messages that break the pattern, and trims trailing
// messages so the conversation ends with gpt.
func ensureAlternating(conversations []Message) []Message {
	if len(conversations) == 0 {
		return nil
	}

	var result []Message
	start := 0
	if conversations[0].From == "system" {
		result = append(result, conversations[0])
		start = 1
	}

	expected := "human"
	for _, msg := range conversations[start:] {
		if msg.From != expected {
			continue
		}
		result = append(result, msg)
		if expected == "human" {
			expected = "gpt"
		} else {
			expected = "human"
		}
	}

	for len(result) > 0 && result[len(result)-1].From != "gpt" {
		result = result[:len(result)-1]
	}

	return result
}
