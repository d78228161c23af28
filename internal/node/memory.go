package node

import (
	"context"
	"sync"
)

type memoryLocator struct {
	mu          sync.Mutex
	nodes       []string
	assignments map[string]string // service + "/" + username -> node
	next        int
}

// NewMemoryLocator builds an in-memory round-robin locator used in
// development mode and in tests. With no nodes configured it always reports
// ErrNoNodeAvailable.
func NewMemoryLocator(nodes ...string) Locator {
	return &memoryLocator{nodes: nodes, assignments: make(map[string]string)}
}

func (l *memoryLocator) GetBestNode(_ context.Context, service, username string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := service + "/" + username
	if assigned, ok := l.assignments[key]; ok {
		return assigned, nil
	}
	if len(l.nodes) == 0 {
		return "", ErrNoNodeAvailable
	}
	nodeURL := l.nodes[l.next%len(l.nodes)]
	l.next++
	l.assignments[key] = nodeURL
	return nodeURL, nil
}
