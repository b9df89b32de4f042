// Package anomaly detects viewer drops and comment spikes over a rolling
// window of per-second metric samples.
package anomaly

import (
	"fmt"
	"sync"
	"time"

	"github.com/danvo/liveinsight/internal/model"
)

// DefaultWindowSize is the sample capacity of the rolling window,
// roughly one minute at the 1s poll cadence.
const DefaultWindowSize = 60

// minSamples is the least history required before any check runs.
const minSamples = 10

// Threshold percentages for the two checks.
const (
	dropWarnPct     = 20
	dropCriticalPct = 40
	spikePct        = 50
)

// Fixed suggestion strings attached to alerts.
const (
	dropSuggestion  = "Audience retention is dropping. Try a new topic or interaction."
	spikeSuggestion = "High engagement! A great time to highlight products or answer questions."
)

// Detector holds the rolling window and evaluates both checks on every
// new sample. Safe for concurrent use, though the pipeline is the only
// expected caller.
type Detector struct {
	mu  sync.Mutex
	win *window
}

// NewDetector creates a Detector with the given window capacity;
// non-positive sizes fall back to DefaultWindowSize.
func NewDetector(windowSize int) *Detector {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &Detector{win: newWindow(windowSize)}
}

// Add appends a sample, evicting the oldest when the window is full, and
// returns zero, one, or two alerts. Total over all input: negative counts
// are treated as zero and an underfilled window yields no alerts.
func (d *Detector) Add(sample model.MetricSample) []model.Alert {
	if sample.Viewers < 0 {
		sample.Viewers = 0
	}
	if sample.CommentCount < 0 {
		sample.CommentCount = 0
	}
	if sample.Time.IsZero() {
		sample.Time = time.Now()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.win.push(sample)
	return d.detect()
}

// Len returns the number of samples currently held.
func (d *Detector) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.win.len()
}

// Samples returns a chronological copy of the window for display.
func (d *Detector) Samples() []model.MetricSample {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.win.snapshot()
}

// detect runs both checks against the newest sample. The baseline for
// each check is the mean over every sample except the newest. Caller
// holds d.mu.
func (d *Detector) detect() []model.Alert {
	n := d.win.len()
	if n < minSamples {
		return nil
	}

	current := d.win.newest()
	var sumViewers, sumComments float64
	for i := 0; i < n-1; i++ {
		s := d.win.at(i)
		sumViewers += float64(s.Viewers)
		sumComments += float64(s.CommentCount)
	}
	avgViewers := sumViewers / float64(n-1)
	avgComments := sumComments / float64(n-1)

	var alerts []model.Alert

	if avgViewers > 0 {
		dropPct := (avgViewers - float64(current.Viewers)) / avgViewers * 100
		if dropPct > dropWarnPct {
			severity := model.SeverityWarning
			if dropPct > dropCriticalPct {
				severity = model.SeverityCritical
			}
			alerts = append(alerts, model.Alert{
				Type:       model.AlertViewerDrop,
				Severity:   severity,
				Message:    fmt.Sprintf("Viewer drop: %.1f%%", dropPct),
				Suggestion: dropSuggestion,
				Time:       current.Time,
			})
		}
	}

	if avgComments > 0 {
		spike := (float64(current.CommentCount) - avgComments) / avgComments * 100
		if spike > spikePct {
			alerts = append(alerts, model.Alert{
				Type:       model.AlertCommentSpike,
				Severity:   model.SeverityInfo,
				Message:    fmt.Sprintf("Comment activity +%.1f%%", spike),
				Suggestion: spikeSuggestion,
				Time:       current.Time,
			})
		}
	}

	return alerts
}
