// Package lifecycle holds shared constants for fx lifecycle hooks.
package lifecycle

import "time"

// DefaultTimeout bounds startup and shutdown hook work (DB pings, server
// drain) so a wedged dependency cannot stall the whole application.
const DefaultTimeout = 10 * time.Second
