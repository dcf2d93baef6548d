package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// publisher is the subset of mqtt.Publisher used by MQTTSink.
type publisher interface {
	Publish(ctx context.Context, payload []byte) error
	Close() error
}

// Report is the JSON document published for every report.
type Report struct {
	ID       string    `json:"id"`
	RunID    string    `json:"run_id,omitempty"`
	Lines    []string  `json:"lines"`
	Artifact string    `json:"artifact,omitempty"`
	Size     int64     `json:"artifact_size,omitempty"`
	Time     time.Time `json:"time"`
}

// MQTTSink publishes reports as JSON messages.
type MQTTSink struct {
	pub   publisher
	runID string
	now   func() time.Time
}

// NewMQTTSink wraps pub. runID is attached to every message when set.
func NewMQTTSink(pub publisher, runID string) *MQTTSink {
	return &MQTTSink{pub: pub, runID: runID, now: time.Now}
}

// Report encodes the lines and artifact reference and publishes them.
// Artifacts are referenced by base name; the file itself stays local.
func (s *MQTTSink) Report(ctx context.Context, lines []string, artifact string) error {
	r := Report{
		ID:    uuid.NewString(),
		RunID: s.runID,
		Lines: lines,
		Time:  s.now().UTC(),
	}
	if artifact != "" {
		r.Artifact = filepath.Base(artifact)
		if fi, err := os.Stat(artifact); err == nil {
			r.Size = fi.Size()
		}
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return s.pub.Publish(ctx, payload)
}

// Close disconnects the underlying publisher.
func (s *MQTTSink) Close() error {
	return s.pub.Close()
}
