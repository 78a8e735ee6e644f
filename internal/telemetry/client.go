// Package telemetry queries VictoriaMetrics and VictoriaLogs for
// session-outcome signals.
//
// The signal is strictly optional: the pipeline treats an absent value as a
// normal state, so every failure path here degrades to "no signal" with a
// warning rather than an error.
package telemetry

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Default endpoints for a local Victoria stack.
const (
	DefaultMetricsURL = "http://localhost:8428"
	DefaultLogsURL    = "http://localhost:9428"
)

// Outcome values per session exit type, matching the agent runtime's
// session_exit event vocabulary.
var exitTypeScores = map[string]float64{
	"COMPLETED": 1.0,
	"ESCALATED": 0.6,
	"DEFERRED":  0.4,
}

const unknownExitScore = 0.5

type Client struct {
	metricsURL string
	logsURL    string
	client     *http.Client
	logger     *slog.Logger
}

func NewClient(metricsURL, logsURL string, logger *slog.Logger) *Client {
	if metricsURL == "" {
		metricsURL = DefaultMetricsURL
	}
	if logsURL == "" {
		logsURL = DefaultLogsURL
	}
	return &Client{
		metricsURL: metricsURL,
		logsURL:    logsURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// QueryMetrics runs a PromQL instant query against VictoriaMetrics.
func (c *Client) QueryMetrics(ctx context.Context, query string) (map[string]any, error) {
	endpoint := c.metricsURL + "/api/v1/query"
	params := url.Values{"query": {query}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query metrics: status %d", resp.StatusCode)
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode metrics response: %w", err)
	}
	return result, nil
}

// QueryLogs runs a LogsQL query against VictoriaLogs and returns the
// matched log entries. The endpoint streams one JSON object per line.
func (c *Client) QueryLogs(ctx context.Context, query string) ([]map[string]any, error) {
	endpoint := c.logsURL + "/select/logsql/query"
	params := url.Values{"query": {query}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query logs: status %d", resp.StatusCode)
	}

	var entries []map[string]any
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// OutcomeForSession looks up the session's exit event and maps its exit
// type to a score in [0,1]. Returns nil when no signal is available.
func (c *Client) OutcomeForSession(ctx context.Context, sessionID string) *float64 {
	if sessionID == "" {
		return nil
	}

	query := fmt.Sprintf(`gt.session:%q AND event:session_exit`, sessionID)
	entries, err := c.QueryLogs(ctx, query)
	if err != nil {
		c.logger.Warn("telemetry lookup failed", "session_id", sessionID, "error", err)
		return nil
	}

	for _, entry := range entries {
		exitType, ok := entry["exit_type"].(string)
		if !ok {
			continue
		}
		score, ok := exitTypeScores[strings.ToUpper(exitType)]
		if !ok {
			score = unknownExitScore
		}
		return &score
	}

	return nil
}
