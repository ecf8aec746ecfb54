// Package delivery defines the inbound transport abstraction. Each transport
// (HTTP today) implements Delivery and is driven by the application runner.
package delivery

import "context"

// Delivery is a long-running inbound server. Serve blocks until the server
// stops or fails; shutdown is wired through the application lifecycle.
type Delivery interface {
	Serve(ctx context.Context) error
}
