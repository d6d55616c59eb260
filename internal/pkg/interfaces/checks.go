package interfaces

import "context"

// Answers when the remote end is up.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Reports the version of the remote API, without authentication.
type Versioner interface {
	Version(ctx context.Context) (string, error)
}
