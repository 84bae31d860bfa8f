package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"scholarship-test-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewSessionStoreWithClock(func() time.Time { return now })

	if err := store.Create(ctx, "tok", 3, time.Hour); err != nil {
		t.Fatalf("create: %v", err)
	}
	id, err := store.Lookup(ctx, "tok")
	if err != nil || id != 3 {
		t.Fatalf("expected user 3, got %d %v", id, err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := store.Lookup(ctx, "tok"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}

	_ = store.Create(ctx, "tok2", 4, time.Hour)
	_ = store.Delete(ctx, "tok2")
	if _, err := store.Lookup(ctx, "tok2"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected deleted session, got %v", err)
	}
}
