package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// Defines the interface to read the status of a mongod instance.
type StatusReader interface {

	// Run isMaster, proving the instance is reachable.
	IsMaster(ctx context.Context) error

	// Run serverStatus and return the raw document.
	ServerStatus(ctx context.Context) (bson.M, error)
}
