// Package otel provides structured observability for LiveInsight.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain
// goroutine. An optional RingBuffer keeps recent events in memory for the
// dashboard's activity panel.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an observability event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Pipeline events
	KindCommentAnalyzed EventKind = "comment.analyzed"
	KindCommentSkipped  EventKind = "comment.skipped"
	KindGiftReceived    EventKind = "gift.received"
	KindMetricSample    EventKind = "metric.sample"
	KindAnomalyAlert    EventKind = "anomaly.alert"

	// Responder events
	KindBotPost     EventKind = "bot.post"
	KindBotCooldown EventKind = "bot.cooldown"
	KindBotFallback EventKind = "bot.fallback"
	KindAIGenerate  EventKind = "ai.generate"
	KindAIError     EventKind = "ai.error"
	KindAISummary   EventKind = "ai.summary"

	// Store events
	KindStoreFlush EventKind = "store.flush"
	KindStoreError EventKind = "store.error"

	// Source events
	KindSourceEvent EventKind = "source.event"
	KindSourceError EventKind = "source.error"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"
)

// Event is the universal observability record. Every field except Kind
// and Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // component: "pipeline", "bot", "store", "main"
	SessionID string         `json:"session_id,omitempty"` // random hex, same for entire run
	Dur       time.Duration  `json:"-"`                    // not serialized directly
	DurMs     float64        `json:"dur_ms,omitempty"`     // computed from Dur at marshal time
	Count     int            `json:"count,omitempty"`
	Intent    string         `json:"intent,omitempty"`
	Severity  string         `json:"severity,omitempty"`
	Source    string         `json:"source,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`   // free text
	Extra     map[string]any `json:"extra,omitempty"` // escape hatch for unusual fields
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
