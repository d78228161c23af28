// Package node resolves users to storage-node URLs.
package node

import (
	"context"
	"errors"
)

// ServiceSync is the service class for the main storage API.
const ServiceSync = "sync"

// ErrNoNodeAvailable means the locator has no node with spare capacity for
// the requested service class. The account service treats this as a signal
// to fall back to the statically configured node.
var ErrNoNodeAvailable = errors.New("no node available")

// Locator assigns users to storage nodes.
type Locator interface {
	// GetBestNode returns the node URL for the user, assigning one if the
	// user has none yet.
	GetBestNode(ctx context.Context, service, username string) (string, error)
}
