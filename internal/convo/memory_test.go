package convo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dennisdiepolder/eduvoice/internal/types"
)

func newTestContext(callID string) *types.ConversationContext {
	return types.NewConversationContext(callID, "lead_abc123def456", types.LangHinglish, types.StateGreeting)
}

func TestMemoryStoreSaveAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	c := newTestContext("call_abc123def456")
	c.SetField(types.FieldCountry, "US")

	if err := store.Save(ctx, c); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(ctx, "call_abc123def456")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Collected[types.FieldCountry] != "US" {
		t.Errorf("expected collected country, got %v", got.Collected)
	}
	if store.Count() != 1 {
		t.Errorf("expected 1 context, got %d", store.Count())
	}
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.Get(context.Background(), "call_missing000000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	c := newTestContext("call_abc123def456")
	if err := store.Save(ctx, c); err != nil {
		t.Fatalf("save: %v", err)
	}

	// idle one second past the retention window
	c.LastActivity = time.Now().Add(-types.ContextRetention - time.Second)

	if _, err := store.Get(ctx, c.CallID); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	// expiry evicts: a second read reports not found
	if _, err := store.Get(ctx, c.CallID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after eviction, got %v", err)
	}
}

func TestMemoryStoreJustInsideRetention(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	c := newTestContext("call_abc123def456")
	if err := store.Save(ctx, c); err != nil {
		t.Fatalf("save: %v", err)
	}
	c.LastActivity = time.Now().Add(-types.ContextRetention + time.Second)

	if _, err := store.Get(ctx, c.CallID); err != nil {
		t.Fatalf("context inside retention should resolve, got %v", err)
	}
}

func TestMemoryStoreTouch(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	c := newTestContext("call_abc123def456")
	if err := store.Save(ctx, c); err != nil {
		t.Fatalf("save: %v", err)
	}
	c.LastActivity = time.Now().Add(-2 * time.Minute)

	if err := store.Touch(ctx, c.CallID); err != nil {
		t.Fatalf("touch: %v", err)
	}
	if time.Since(c.LastActivity) > time.Second {
		t.Error("touch did not refresh last activity")
	}

	if err := store.Touch(ctx, "call_missing000000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreTouchExpired(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	c := newTestContext("call_abc123def456")
	if err := store.Save(ctx, c); err != nil {
		t.Fatalf("save: %v", err)
	}
	c.LastActivity = time.Now().Add(-types.ContextRetention - time.Second)

	if err := store.Touch(ctx, c.CallID); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	c := newTestContext("call_abc123def456")
	if err := store.Save(ctx, c); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, c.CallID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, c.CallID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	fresh := newTestContext("call_fresh123456a")
	stale := newTestContext("call_stale123456b")
	if err := store.Save(ctx, fresh); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, stale); err != nil {
		t.Fatalf("save: %v", err)
	}
	stale.LastActivity = time.Now().Add(-10 * time.Minute)

	if removed := store.Sweep(time.Now()); removed != 1 {
		t.Errorf("expected 1 swept context, got %d", removed)
	}
	if store.Count() != 1 {
		t.Errorf("expected 1 remaining context, got %d", store.Count())
	}
	if _, err := store.Get(ctx, fresh.CallID); err != nil {
		t.Errorf("fresh context should survive sweep: %v", err)
	}
}
