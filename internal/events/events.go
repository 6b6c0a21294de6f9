// Package events publishes pipeline lifecycle events to NATS. Publishing
// is best-effort: a dead broker costs an event, never a request.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	// SubjectDocumentGenerated is emitted after every completed pipeline run.
	SubjectDocumentGenerated = "clipdocs.document.generated"
	// SubjectRegistered announces the service at startup.
	SubjectRegistered = "clipdocs.service.registered"
)

// DocumentGenerated describes one completed run for downstream consumers.
type DocumentGenerated struct {
	DocumentID string    `json:"document_id,omitempty"`
	VideoID    string    `json:"video_id,omitempty"`
	SourceURL  string    `json:"source_url,omitempty"`
	Segments   int       `json:"segments"`
	Sections   int       `json:"sections"`
	FAQs       int       `json:"faqs"`
	Timestamp  time.Time `json:"timestamp"`
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
