package interfaces

import "context"

// A mongod connection as used by the probes and the preflight check.
type MongoSource interface {
	StatusReader
	Pinger

	// Close every client opened so far.
	Disconnect(ctx context.Context) error
}
