package interfaces

import "context"

// Relay hands one item value to the monitoring server.
type Relay interface {
	Send(ctx context.Context, host string, key string, value string) error
}
