// Package lifecycle holds shared constants for component start/stop handling.
package lifecycle

import "time"

// DefaultTimeout bounds startup and shutdown work of managed components.
const DefaultTimeout = 10 * time.Second
