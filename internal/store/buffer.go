package store

import (
	"context"
	"sync"
	"time"

	"github.com/danvo/liveinsight/internal/otel"
)

const (
	// DefaultBatchSize flushes the buffer once this many events accumulate.
	DefaultBatchSize = 50
	// DefaultFlushInterval flushes whatever is pending on this cadence.
	DefaultFlushInterval = 5 * time.Second
)

// Buffer batches event records in memory and flushes them to the Store
// either when the batch fills or on a timer, whichever comes first.
// Add never blocks on the database; persistence is best-effort and a
// failed flush drops the batch after logging.
type Buffer struct {
	store     *Store
	log       *otel.Logger
	batchSize int
	interval  time.Duration

	mu      sync.Mutex
	pending []EventRecord

	wg sync.WaitGroup
}

// NewBuffer creates a buffer flushing to store. Zero batchSize or
// interval select the defaults.
func NewBuffer(store *Store, log *otel.Logger, batchSize int, interval time.Duration) *Buffer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	return &Buffer{
		store:     store,
		log:       log,
		batchSize: batchSize,
		interval:  interval,
	}
}

// Start launches the periodic flush loop. It returns immediately; the
// loop stops when ctx is cancelled, flushing whatever remains.
func (b *Buffer) Start(ctx context.Context) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				b.Flush()
				return
			case <-ticker.C:
				b.Flush()
			}
		}
	}()
}

// Wait blocks until the flush loop has exited.
func (b *Buffer) Wait() {
	b.wg.Wait()
}

// Add queues a record. A full batch triggers an immediate flush.
func (b *Buffer) Add(r EventRecord) {
	b.mu.Lock()
	b.pending = append(b.pending, r)
	full := len(b.pending) >= b.batchSize
	b.mu.Unlock()

	if full {
		b.Flush()
	}
}

// Flush writes all pending records to the store.
func (b *Buffer) Flush() {
	b.mu.Lock()
	batch := b.pending
	b.pending = nil
	b.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	start := time.Now()
	if err := b.store.AppendEvents(batch); err != nil {
		if b.log != nil {
			b.log.Emit(otel.Event{
				Level: otel.LevelError, Kind: otel.KindStoreError, Comp: "store",
				Count: len(batch), Err: err.Error(),
			})
		}
		return
	}
	if b.log != nil {
		b.log.Emit(otel.Event{
			Level: otel.LevelDebug, Kind: otel.KindStoreFlush, Comp: "store",
			Count: len(batch), Dur: time.Since(start),
		})
	}
}

// Pending returns the number of queued records, for tests and stats.
func (b *Buffer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
