package session

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
)

// rawRecord is a single line from a session JSONL transcript.
type rawRecord struct {
	Type      string     `json:"type"`
	UUID      string     `json:"uuid"`
	SessionID string     `json:"sessionId"`
	RequestID string     `json:"requestId"`
	Timestamp string     `json:"timestamp"`
	CWD       string     `json:"cwd"`
	Message   rawMessage `json:"message"`
}

type rawMessage struct {
	ID      string          `json:"id"`
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// contentBlock is one typed block inside a message content array.
type contentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	Thinking  string          `json:"thinking,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

// loadRecords reads all parseable JSON records from a line-delimited stream,
// preserving line order. Malformed lines are skipped, never fatal.
func loadRecords(r io.Reader, source string, logger *slog.Logger) []rawRecord {
	var records []rawRecord

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024) // 10MB line buffer
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec rawRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			logger.Debug("skipping malformed line", "source", source, "line", lineNum)
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		// An oversized or truncated tail loses the remainder of the stream;
		// everything scanned so far is still usable.
		logger.Warn("scan stopped early", "source", source, "line", lineNum, "error", err)
	}

	return records
}
