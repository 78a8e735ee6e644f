// Package events announces pipeline results over NATS so downstream
// consumers (trainer schedulers, dashboards) can react to fresh datasets.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// SubjectRunCompleted carries a RunCompleted payload after each pipeline run.
const SubjectRunCompleted = "swarm.distill.run.completed"

// RunCompleted is published when a pipeline run finishes.
type RunCompleted struct {
	RunID             string         `json:"run_id"`
	FinishedAt        string         `json:"finished_at"`
	SessionsExtracted int            `json:"sessions_extracted"`
	TrainSamples      int            `json:"train_samples"`
	ValSamples        int            `json:"val_samples"`
	DuplicatesRemoved int            `json:"duplicates_removed"`
	RoleDistribution  map[string]int `json:"role_distribution,omitempty"`
	TrainPath         string         `json:"train_path"`
	ValPath           string         `json:"val_path"`
}

type Publisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewPublisher(url, token string, logger *slog.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Publisher{conn: nc, logger: logger}, nil
}

func (p *Publisher) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return p.conn.Publish(subject, payload)
}

func (p *Publisher) Close() {
	p.conn.Close()
}
