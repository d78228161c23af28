package node

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryLocatorAssigns(t *testing.T) {
	l := NewMemoryLocator("https://node1.example.com/", "https://node2.example.com/")
	ctx := context.Background()

	first, err := l.GetBestNode(ctx, ServiceSync, "alice")
	if err != nil {
		t.Fatalf("assign alice: %v", err)
	}
	second, err := l.GetBestNode(ctx, ServiceSync, "bob")
	if err != nil {
		t.Fatalf("assign bob: %v", err)
	}
	if first == second {
		t.Fatalf("expected round-robin to spread users, both got %q", first)
	}

	again, err := l.GetBestNode(ctx, ServiceSync, "alice")
	if err != nil {
		t.Fatalf("lookup alice: %v", err)
	}
	if again != first {
		t.Fatalf("assignment not stable: %q then %q", first, again)
	}
}

func TestMemoryLocatorEmpty(t *testing.T) {
	l := NewMemoryLocator()
	if _, err := l.GetBestNode(context.Background(), ServiceSync, "alice"); !errors.Is(err, ErrNoNodeAvailable) {
		t.Fatalf("expected ErrNoNodeAvailable, got %v", err)
	}
}
