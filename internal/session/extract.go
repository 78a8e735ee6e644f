// Package session reconstructs ordered conversations from agent-session
// JSONL transcripts.
//
// Each transcript line is a record of one of several types; only user and
// assistant records carry conversation data. A single logical assistant
// response may be physically split across multiple records sharing the same
// requestId, each carrying a different subset of content blocks, and those
// parts may interleave with records of later turns. Reconstruction groups
// records by key and orders turns by the first sighting of each distinct
// key in the stream.
package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Extract reconstructs a session from a JSONL transcript file.
// Returns (nil, nil) when the file contains no usable conversation data.
func Extract(path string, logger *slog.Logger) (*ExtractedSession, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	return extract(f, path, logger)
}

func extract(r io.Reader, source string, logger *slog.Logger) (*ExtractedSession, error) {
	records := loadRecords(r, source, logger)
	if len(records) == 0 {
		return nil, nil
	}

	var sessionID, cwd string

	// Pass one: group records by key, remembering the order in which each
	// distinct key first appears. Later records with a known key accumulate
	// content but do not move the turn.
	var keyOrder []string
	userByKey := make(map[string]rawRecord)
	assistantGroups := make(map[string][]rawRecord)
	conversationRecords := 0

	for _, rec := range records {
		if rec.Type != "user" && rec.Type != "assistant" {
			continue
		}
		conversationRecords++

		if sessionID == "" {
			sessionID = rec.SessionID
		}
		if cwd == "" {
			cwd = rec.CWD
		}

		switch rec.Type {
		case "user":
			key := "user-" + rec.UUID
			if _, seen := userByKey[key]; !seen {
				userByKey[key] = rec
				keyOrder = append(keyOrder, key)
			}
		case "assistant":
			requestID := rec.RequestID
			if requestID == "" {
				requestID = rec.Message.ID
			}
			if requestID == "" {
				requestID = rec.UUID
			}
			key := "assistant-" + requestID
			assistantGroups[key] = append(assistantGroups[key], rec)
			if len(assistantGroups[key]) == 1 {
				keyOrder = append(keyOrder, key)
			}
		}
	}

	if len(keyOrder) == 0 {
		return nil, nil
	}

	// Pass two: render each key's accumulated records into a final turn.
	var turns []Turn
	for _, key := range keyOrder {
		if strings.HasPrefix(key, "user-") {
			if turn, ok := extractUserTurn(userByKey[key]); ok {
				turns = append(turns, turn)
			}
			continue
		}
		if turn, ok := extractAssistantTurn(assistantGroups[key]); ok {
			turns = append(turns, turn)
		}
	}

	if len(turns) == 0 {
		return nil, nil
	}

	return &ExtractedSession{
		SessionID:  sessionID,
		SourcePath: source,
		CWD:        cwd,
		Turns:      turns,
		Metadata: Metadata{
			TotalRecords:        len(records),
			ConversationRecords: conversationRecords,
		},
	}, nil
}

// extractUserTurn builds a user turn from a single user record.
// User content is either a plain string (human-typed) or a block list
// carrying tool results and optional text.
func extractUserTurn(rec rawRecord) (Turn, bool) {
	content := rec.Message.Content
	if content == nil {
		return Turn{}, false
	}

	var plain string
	if err := json.Unmarshal(content, &plain); err == nil {
		if strings.TrimSpace(plain) == "" {
			return Turn{}, false
		}
		return Turn{
			Role:      "user",
			Content:   plain,
			Timestamp: rec.Timestamp,
			UUID:      rec.UUID,
		}, true
	}

	var blocks []contentBlock
	if err := json.Unmarshal(content, &blocks); err != nil {
		return Turn{}, false
	}

	var textParts []string
	var toolResults []ToolResult
	for _, b := range blocks {
		switch b.Type {
		case "tool_result":
			toolResults = append(toolResults, ToolResult{
				ToolUseID: b.ToolUseID,
				Content:   blockContentText(b.Content),
				IsError:   b.IsError,
			})
		case "text":
			textParts = append(textParts, b.Text)
		}
	}

	if len(toolResults) == 0 && len(textParts) == 0 {
		return Turn{}, false
	}

	parts := textParts
	for _, tr := range toolResults {
		parts = append(parts, formatToolResult(tr))
	}

	return Turn{
		Role:        "user",
		Content:     strings.Join(parts, "\n"),
		ToolResults: toolResults,
		Timestamp:   rec.Timestamp,
		UUID:        rec.UUID,
	}, true
}

// extractAssistantTurn builds an assistant turn from all records sharing a
// grouping key. Text and tool_use blocks accumulate in block order within
// each record and record arrival order across the group. Thinking blocks
// are dropped entirely; internal reasoning must not be reproduced verbatim
// in training output.
func extractAssistantTurn(group []rawRecord) (Turn, bool) {
	var textParts []string
	var toolCalls []ToolCall
	var ts, uuid string

	for _, rec := range group {
		if ts == "" {
			ts = rec.Timestamp
		}
		if uuid == "" {
			uuid = rec.UUID
		}

		var blocks []contentBlock
		if rec.Message.Content == nil {
			continue
		}
		if err := json.Unmarshal(rec.Message.Content, &blocks); err != nil {
			continue
		}

		for _, b := range blocks {
			switch b.Type {
			case "text":
				if text := strings.TrimSpace(b.Text); text != "" {
					textParts = append(textParts, text)
				}
			case "tool_use":
				tc := ToolCall{
					ID:    b.ID,
					Name:  b.Name,
					Input: compactJSON(b.Input),
				}
				toolCalls = append(toolCalls, tc)
				textParts = append(textParts, formatToolCall(tc))
			case "thinking":
				// dropped: never rendered, never stored
			}
		}
	}

	if len(textParts) == 0 {
		return Turn{}, false
	}

	return Turn{
		Role:      "assistant",
		Content:   strings.Join(textParts, "\n"),
		ToolCalls: toolCalls,
		Timestamp: ts,
		UUID:      uuid,
	}, true
}

// formatToolCall renders a tool call as an XML-tagged string so the
// flattened text form remains trainable.
func formatToolCall(tc ToolCall) string {
	name := tc.Name
	if name == "" {
		name = "unknown"
	}
	return fmt.Sprintf("<tool_call name=%q>\n%s\n</tool_call>", name, tc.Input)
}

// formatToolResult renders a tool result as an XML-tagged string; the tag
// carries the originating tool_use id so call/result pairs stay linked in
// the flattened form.
func formatToolResult(tr ToolResult) string {
	return fmt.Sprintf("<tool_result tool_use_id=%q>\n%s\n</tool_result>", tr.ToolUseID, tr.Content)
}

// blockContentText coerces a tool_result content payload to text. The
// payload is usually a string but can be a nested block array.
func blockContentText(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	// Nested content (e.g. a list of text blocks): keep any text parts,
	// fall back to the compact JSON form.
	var blocks []contentBlock
	if err := json.Unmarshal(raw, &blocks); err == nil {
		var parts []string
		for _, b := range blocks {
			if b.Type == "text" && b.Text != "" {
				parts = append(parts, b.Text)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "\n")
		}
	}
	return compactJSON(raw)
}

// compactJSON renders raw JSON in compact form, defaulting to "{}".
func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "{}"
	}
	return buf.String()
}
