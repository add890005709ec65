package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// CompletionEvent is emitted after every publish run, regardless of outcome.
// Downstream consumers (cache warmers, chat notifiers) key off Outcome.
type CompletionEvent struct {
	RunID    string    `json:"run_id"`
	Outcome  string    `json:"outcome"`
	Bucket   string    `json:"bucket,omitempty"`
	Created  int       `json:"created"`
	Updated  int       `json:"updated"`
	Deleted  int       `json:"deleted"`
	Finished time.Time `json:"finished"`
}

// Notifier publishes completion events. Failures are logged by the pipeline
// and never affect the publish outcome.
type Notifier interface {
	PublishCompleted(ctx context.Context, event CompletionEvent) error
	Close() error
}

// NATSNotifier publishes completion events to a NATS subject.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
}

// NewNATSNotifier connects to the given NATS server.
func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	conn, err := nats.Connect(url, nats.Name("sitepub"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", url, err)
	}
	return &NATSNotifier{conn: conn, subject: subject}, nil
}

func (n *NATSNotifier) PublishCompleted(_ context.Context, event CompletionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal completion event: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", n.subject, err)
	}
	return n.conn.Flush()
}

func (n *NATSNotifier) Close() error {
	n.conn.Close()
	return nil
}
