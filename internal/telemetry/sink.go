// Package telemetry provides a reference OnReseed consumer that
// forwards reseed events to an external HTTP collector.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const postTimeout = 2 * time.Second

// ReseedEvent is the JSON payload posted to the collector endpoint.
type ReseedEvent struct {
	GeneratorID    string `json:"generator_id"`
	ReseedCount    uint64 `json:"reseed_count"`
	Priority       string `json:"priority"`
	BytesRequested int64  `json:"bytes_requested"`
	ObservedAt     int64  `json:"observed_at_unix"`
}

// Sink posts reseed events to a configured HTTP endpoint on a
// background goroutine. A Sink with no endpoint configured is a
// no-op. Never blocks or panics the caller.
type Sink struct {
	endpoint string
	client   *http.Client
	log      *logrus.Entry
}

// NewSink constructs a Sink. An empty endpoint makes every Report a
// no-op, which lets callers wire the listener unconditionally.
func NewSink(endpoint string, log *logrus.Entry) *Sink {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Sink{
		endpoint: endpoint,
		client:   &http.Client{Timeout: postTimeout},
		log:      log,
	}
}

// Report fires a background POST of evt to the configured endpoint.
// Errors are logged and dropped; Report itself never blocks.
func (s *Sink) Report(evt ReseedEvent) {
	if s.endpoint == "" {
		return
	}
	go s.post(evt)
}

func (s *Sink) post(evt ReseedEvent) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("panic", r).Warn("telemetry post panicked")
		}
	}()

	body, err := json.Marshal(evt)
	if err != nil {
		s.log.WithError(err).Warn("telemetry event marshal failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), postTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		s.log.WithError(err).Warn("telemetry request construction failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.WithError(err).Warn("telemetry post failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		s.log.WithField("status", resp.StatusCode).Warn("telemetry collector rejected event")
	}
}
