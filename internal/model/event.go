// Package model defines the event and metric types that flow through the
// LiveInsight pipeline. These are plain data: extraction produces them,
// the pipeline annotates and aggregates them, sinks render or persist them.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of a raw stream event.
type EventType string

const (
	EventComment      EventType = "comment"
	EventViewerUpdate EventType = "viewer_update"
	EventGift         EventType = "gift"
	EventProductPin   EventType = "product_pin"
)

// Event is the envelope pushed by extraction sources into the pipeline.
// Exactly one of Comment/Gift is set depending on Type.
type Event struct {
	Type    EventType
	Time    time.Time
	Comment *ChatEvent
	Gift    *GiftEvent
}

// ChatEvent is a single chat comment as extracted from the stream.
// Immutable once created.
type ChatEvent struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Text     string    `json:"text"`
	Time     time.Time `json:"time"`
	RawLabel string    `json:"raw_label,omitempty"` // timestamp text as shown on the page, if any
}

// NewChatEvent builds a ChatEvent with a fresh ID and the current time.
func NewChatEvent(username, text string) ChatEvent {
	return ChatEvent{
		ID:       "c_" + uuid.NewString(),
		Username: username,
		Text:     text,
		Time:     time.Now(),
	}
}

// Priority is the urgency level attached to a classified comment.
// Exactly three ordered levels; High dominates.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// AnnotatedComment is a ChatEvent augmented with classification results.
type AnnotatedComment struct {
	ChatEvent
	Intent    string   `json:"intent"`
	Priority  Priority `json:"priority"`
	Sentiment float64  `json:"sentiment"` // always in [-1, 1]
	Matches   []string `json:"matches,omitempty"`
}

// Line renders the comment as a single chat-history line for AI prompts.
func (a AnnotatedComment) Line() string {
	return fmt.Sprintf("%s: %s", a.Username, a.Text)
}

// GiftEvent is a virtual gift sent by a viewer.
type GiftEvent struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	GiftName string    `json:"gift_name"`
	Count    int       `json:"count"`
	Diamonds int       `json:"diamonds"` // estimated value, derived at extraction or aggregation time
	Time     time.Time `json:"time"`
}

// NewGiftEvent builds a GiftEvent with a fresh ID and the current time.
// Count is clamped to at least 1.
func NewGiftEvent(username, giftName string, count int) GiftEvent {
	if count < 1 {
		count = 1
	}
	return GiftEvent{
		ID:       "g_" + uuid.NewString(),
		Username: username,
		GiftName: giftName,
		Count:    count,
		Time:     time.Now(),
	}
}

// MetricSample is one point of the per-second metric poll.
type MetricSample struct {
	Time         time.Time `json:"time"`
	Viewers      int       `json:"viewers"`
	Likes        int       `json:"likes"`
	Shares       int       `json:"shares"`
	CommentCount int       `json:"comment_count"`
}

// AlertType indicates what an alert is about.
type AlertType string

const (
	AlertViewerDrop   AlertType = "viewer_drop"
	AlertCommentSpike AlertType = "comment_spike"
)

// Severity indicates alert urgency.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is a derived anomaly notification. Not stored long-term; sinks
// keep at most a capped display list.
type Alert struct {
	Type       AlertType `json:"type"`
	Severity   Severity  `json:"severity"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion"`
	Time       time.Time `json:"time"`
}

// Product is the metadata of a product card as extracted from the stream.
type Product struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Price  string `json:"price"`
	Image  string `json:"image,omitempty"`
	Pinned bool   `json:"pinned"`
}

// ProductStat is a product merged with its session mention count,
// ready for demand-sorted display.
type ProductStat struct {
	Product
	Mentions int `json:"mentions"`
}
