package store

import (
	"context"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionLifecycle(t *testing.T) {
	s := openTestStore(t)

	sess := Session{ID: "s1", Source: "demo", Channel: "shop", StartedAt: time.Now()}
	if err := s.CreateSession(sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := s.EndSession("s1", time.Now()); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
}

func TestAppendAndRecentEvents(t *testing.T) {
	s := openTestStore(t)

	var records []EventRecord
	for i := 0; i < 5; i++ {
		records = append(records, EventRecord{
			SessionID: "s1",
			Kind:      "comment",
			Time:      time.Now().Add(time.Duration(i) * time.Second),
			Payload:   []byte(`{"n":` + string(rune('0'+i)) + `}`),
		})
	}
	if err := s.AppendEvents(records); err != nil {
		t.Fatalf("AppendEvents: %v", err)
	}

	n, err := s.EventCount("s1")
	if err != nil {
		t.Fatalf("EventCount: %v", err)
	}
	if n != 5 {
		t.Errorf("EventCount = %d, want 5", n)
	}

	got, err := s.RecentEvents("s1", 3)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	// Newest 3, oldest first.
	if string(got[0].Payload) != `{"n":2}` || string(got[2].Payload) != `{"n":4}` {
		t.Errorf("unexpected window: %s .. %s", got[0].Payload, got[2].Payload)
	}
}

func TestAppendEventsEmptyBatch(t *testing.T) {
	s := openTestStore(t)
	if err := s.AppendEvents(nil); err != nil {
		t.Errorf("empty batch should be a no-op, got %v", err)
	}
}

func TestRecentEventsOtherSession(t *testing.T) {
	s := openTestStore(t)
	s.AppendEvents([]EventRecord{{SessionID: "a", Kind: "gift", Time: time.Now()}})

	got, err := s.RecentEvents("b", 10)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0 for unknown session", len(got))
	}
}

func TestKVRoundTrip(t *testing.T) {
	s := openTestStore(t)

	type botState struct {
		Enabled bool   `json:"enabled"`
		Persona string `json:"persona"`
	}

	if err := s.SetKV("bot", botState{Enabled: true, Persona: "Minh"}); err != nil {
		t.Fatalf("SetKV: %v", err)
	}

	var got botState
	ok, err := s.GetKV("bot", &got)
	if err != nil {
		t.Fatalf("GetKV: %v", err)
	}
	if !ok {
		t.Fatal("GetKV returned ok=false for existing key")
	}
	if !got.Enabled || got.Persona != "Minh" {
		t.Errorf("got %+v", got)
	}

	// Overwrite.
	if err := s.SetKV("bot", botState{Enabled: false}); err != nil {
		t.Fatalf("SetKV overwrite: %v", err)
	}
	ok, _ = s.GetKV("bot", &got)
	if !ok || got.Enabled {
		t.Errorf("overwrite not applied: %+v", got)
	}

	if err := s.RemoveKV("bot"); err != nil {
		t.Fatalf("RemoveKV: %v", err)
	}
	ok, err = s.GetKV("bot", &got)
	if err != nil {
		t.Fatalf("GetKV after remove: %v", err)
	}
	if ok {
		t.Error("key should be gone after RemoveKV")
	}

	// Removing a missing key is fine.
	if err := s.RemoveKV("nope"); err != nil {
		t.Errorf("RemoveKV missing key: %v", err)
	}
}

func TestBufferFlushesOnBatchSize(t *testing.T) {
	s := openTestStore(t)
	b := NewBuffer(s, nil, 3, time.Hour)

	for i := 0; i < 3; i++ {
		b.Add(EventRecord{SessionID: "s1", Kind: "comment", Time: time.Now()})
	}

	if b.Pending() != 0 {
		t.Errorf("Pending = %d, want 0 after batch-size flush", b.Pending())
	}
	n, _ := s.EventCount("s1")
	if n != 3 {
		t.Errorf("stored = %d, want 3", n)
	}
}

func TestBufferFlushesOnShutdown(t *testing.T) {
	s := openTestStore(t)
	b := NewBuffer(s, nil, 100, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	b.Start(ctx)

	b.Add(EventRecord{SessionID: "s1", Kind: "gift", Time: time.Now()})
	b.Add(EventRecord{SessionID: "s1", Kind: "metric", Time: time.Now()})

	cancel()
	b.Wait()

	n, _ := s.EventCount("s1")
	if n != 2 {
		t.Errorf("stored = %d, want 2 flushed on shutdown", n)
	}
}

func TestBufferPeriodicFlush(t *testing.T) {
	s := openTestStore(t)
	b := NewBuffer(s, nil, 100, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b.Start(ctx)

	b.Add(EventRecord{SessionID: "s1", Kind: "alert", Time: time.Now()})

	deadline := time.After(2 * time.Second)
	for {
		n, _ := s.EventCount("s1")
		if n == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for periodic flush")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
