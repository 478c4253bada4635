package hub

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"factstream/internal/model"
)

func newTestHub() *Hub {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func result(id string) *model.VerificationResult {
	return &model.VerificationResult{ID: id, Verdict: model.VerdictTrue}
}

func TestHub_PublishDelivers(t *testing.T) {
	h := newTestHub()
	ch := h.Subscribe("sess-1")

	h.Publish("sess-1", result("r1"))

	select {
	case got := <-ch:
		if got.ID != "r1" {
			t.Errorf("expected r1, got %s", got.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestHub_PublishNoSubscribers(t *testing.T) {
	h := newTestHub()

	done := make(chan struct{})
	go func() {
		h.Publish("nobody", result("r1"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish with zero subscribers blocked")
	}
}

func TestHub_OrderingPreserved(t *testing.T) {
	h := newTestHub()
	ch := h.Subscribe("sess-1")

	for i := 0; i < 5; i++ {
		h.Publish("sess-1", result(fmt.Sprintf("r%d", i)))
	}

	for i := 0; i < 5; i++ {
		got := <-ch
		want := fmt.Sprintf("r%d", i)
		if got.ID != want {
			t.Fatalf("out of order: got %s at position %d", got.ID, i)
		}
	}
}

func TestHub_SlowObserverPruned(t *testing.T) {
	h := newTestHub()
	h.buffer = 1
	ch := h.Subscribe("slow")

	// Nobody drains: second publish overflows the buffer and prunes
	h.Publish("slow", result("r1"))
	h.Publish("slow", result("r2"))

	if h.Subscribers() != 0 {
		t.Errorf("expected slow observer pruned, have %d subscribers", h.Subscribers())
	}

	// Channel is closed after pruning; the buffered result drains first
	if got := <-ch; got == nil || got.ID != "r1" {
		t.Fatalf("expected buffered r1, got %v", got)
	}
	if _, open := <-ch; open {
		t.Error("expected channel closed after pruning")
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	h := newTestHub()
	ch := h.Subscribe("sess-1")
	h.Unsubscribe("sess-1")

	if _, open := <-ch; open {
		t.Error("expected channel closed after unsubscribe")
	}
	if h.Subscribers() != 0 {
		t.Errorf("expected no subscribers, got %d", h.Subscribers())
	}

	// Idempotent
	h.Unsubscribe("sess-1")
}

func TestHub_ResubscribeReplacesHandle(t *testing.T) {
	h := newTestHub()
	old := h.Subscribe("sess-1")
	fresh := h.Subscribe("sess-1")

	if _, open := <-old; open {
		t.Error("expected old handle closed on resubscribe")
	}

	h.Publish("sess-1", result("r1"))
	select {
	case got := <-fresh:
		if got.ID != "r1" {
			t.Errorf("expected r1 on fresh handle, got %s", got.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("fresh handle received nothing")
	}
}
