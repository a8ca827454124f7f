// Package events emits call-flow transition records.
//
// Every state transition in the call flow produces one JSON object per line:
// {"event": ..., "sid": ..., "from": ..., "to": ..., <step-specific fields>}.
// Records go to a writer (stdout in production) and, when a journal is
// configured, are also appended there best-effort.
package events

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/CallForge/DrillLine/internal/models"
)

// Journal is an optional durable sink for transition records. Append failures
// never propagate into the call flow.
type Journal interface {
	Append(t models.Transition) error
}

// Opts holds configuration options for the transition logger.
type Opts struct {
	Writer  io.Writer
	Journal Journal
}

// Option defines a configuration option for the transition logger.
type Option func(*Opts)

// WithWriter directs records to w instead of stdout.
func WithWriter(w io.Writer) Option {
	return func(o *Opts) { o.Writer = w }
}

// WithJournal tees every record into j.
func WithJournal(j Journal) Option {
	return func(o *Opts) { o.Journal = j }
}

// Logger serializes transition records. Safe for concurrent use.
type Logger struct {
	mu      sync.Mutex
	enc     *json.Encoder
	journal Journal
	now     func() time.Time
}

// NewLogger creates a transition logger writing to stdout unless overridden.
func NewLogger(opts ...Option) *Logger {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	return &Logger{
		enc:     json.NewEncoder(cfg.Writer),
		journal: cfg.Journal,
		now:     time.Now,
	}
}

// Log emits one transition record. Fields may be nil.
func (l *Logger) Log(event string, call models.CallInfo, fields map[string]any) {
	record := make(map[string]any, len(fields)+4)
	record["event"] = event
	record["sid"] = call.SID
	record["from"] = call.From
	record["to"] = call.To
	for k, v := range fields {
		record[k] = v
	}

	l.mu.Lock()
	err := l.enc.Encode(record)
	l.mu.Unlock()
	if err != nil {
		slog.Error("Logger.Log: failed to encode transition record", "error", err, "event", event, "sid", call.SID)
	}

	if l.journal == nil {
		return
	}
	t := models.Transition{
		Event:  event,
		Call:   call,
		Fields: fields,
		Time:   l.now().Unix(),
	}
	if err := l.journal.Append(t); err != nil {
		slog.Error("Logger.Log: failed to journal transition record", "error", err, "event", event, "sid", call.SID)
	}
}
