package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"factstream/internal/model"
	"factstream/internal/store"
)

func newTestRegistry() (*Registry, *store.MemoryStore) {
	st := store.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRegistry(st, logger), st
}

func TestRegistry_Create_SupersedesActive(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry()

	a, err := reg.Create(ctx, "https://youtu.be/videoA", Metadata{Title: "A"})
	if err != nil {
		t.Fatalf("create A: %v", err)
	}

	b, err := reg.Create(ctx, "https://youtu.be/videoB", Metadata{Title: "B"})
	if err != nil {
		t.Fatalf("create B: %v", err)
	}

	active, err := reg.Active(ctx)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active == nil || active.ID != b.ID {
		t.Fatalf("expected session B active, got %+v", active)
	}

	demoted, err := reg.ByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if demoted.Status != model.SessionInactive {
		t.Errorf("expected A demoted to inactive, got %s", demoted.Status)
	}
}

func TestRegistry_Create_InvalidSource_NoStateChange(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry()

	if _, err := reg.Create(ctx, "", Metadata{}); !errors.Is(err, ErrInvalidSource) {
		t.Fatalf("expected ErrInvalidSource, got %v", err)
	}

	active, err := reg.Active(ctx)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active != nil {
		t.Errorf("expected no active session, got %+v", active)
	}
}

func TestRegistry_Create_TitleDefaultsToRef(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry()

	s, err := reg.Create(ctx, "town-hall", Metadata{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if s.Title != "town-hall" {
		t.Errorf("expected title to default to ref, got %q", s.Title)
	}
}
