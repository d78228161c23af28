package resetcode

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryManagerLifecycle(t *testing.T) {
	m := NewMemoryManager(Policy{TTL: time.Hour, ResendWindow: 15 * time.Minute})
	ctx := context.Background()

	code, err := m.Generate(ctx, "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if ok, _ := m.Verify(ctx, "alice", code); !ok {
		t.Fatalf("generated code does not verify")
	}
	if ok, _ := m.Verify(ctx, "alice", "nope"); ok {
		t.Fatalf("wrong code verified")
	}

	if _, err := m.Generate(ctx, "alice"); !errors.Is(err, ErrAlreadyIssued) {
		t.Fatalf("expected ErrAlreadyIssued, got %v", err)
	}

	if err := m.Clear(ctx, "alice"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if ok, _ := m.Verify(ctx, "alice", code); ok {
		t.Fatalf("cleared code still verifies")
	}
	if err := m.Clear(ctx, "alice"); err != nil {
		t.Fatalf("clear with nothing pending: %v", err)
	}
}

func TestMemoryManagerExpiry(t *testing.T) {
	mgr := NewMemoryManager(Policy{TTL: time.Hour, ResendWindow: 15 * time.Minute}).(*memoryManager)
	ctx := context.Background()

	now := time.Now()
	mgr.now = func() time.Time { return now }

	code, err := mgr.Generate(ctx, "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	mgr.now = func() time.Time { return now.Add(30 * time.Minute) }
	if ok, _ := mgr.Verify(ctx, "alice", code); !ok {
		t.Fatalf("unexpired code does not verify")
	}

	// outside the resend window a new code replaces the pending one
	replacement, err := mgr.Generate(ctx, "alice")
	if err != nil {
		t.Fatalf("generate replacement: %v", err)
	}
	if ok, _ := mgr.Verify(ctx, "alice", code); ok {
		t.Fatalf("replaced code still verifies")
	}

	mgr.now = func() time.Time { return now.Add(2 * time.Hour) }
	if ok, _ := mgr.Verify(ctx, "alice", replacement); ok {
		t.Fatalf("expired code still verifies")
	}
}
