// Package source provides stream event sources for the pipeline: a live
// Twitch chat connection, a JSONL replay of a recorded session, and a
// synthetic demo generator.
//
// A Source pushes chat and gift events on a channel; the pipeline polls
// Metrics and Products on its own cadence. Sources that can speak back
// into chat also implement Poster.
package source

import (
	"context"

	"github.com/danvo/liveinsight/internal/model"
)

// Source is a live stream being watched.
type Source interface {
	// Name identifies the source kind ("twitch", "replay", "demo").
	Name() string

	// Run connects and pushes events until ctx is cancelled. It closes
	// the Events channel on return.
	Run(ctx context.Context) error

	// Events is the stream of chat and gift events.
	Events() <-chan model.Event

	// Metrics returns the current engagement counters. Called on the
	// pipeline's polling tick.
	Metrics(ctx context.Context) (model.MetricSample, error)

	// Products returns the currently listed products, pinned first.
	Products(ctx context.Context) ([]model.Product, error)
}

// Poster can publish a message into the stream's chat. The responder
// uses this for automated replies.
type Poster interface {
	Post(ctx context.Context, text string) error
}
