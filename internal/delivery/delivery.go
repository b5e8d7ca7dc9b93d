// Package delivery defines the contract every transport entrypoint satisfies.
package delivery

import "context"

// Delivery is a long-running transport (HTTP server, background worker) whose
// Serve blocks until the transport stops or fails.
type Delivery interface {
	Serve(ctx context.Context) error
}
