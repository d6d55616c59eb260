package mocks

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// MockMongoSource is a MockStatusReader that can also be pinged and closed.
type MockMongoSource struct {
	*MockStatusReader
	Address      string
	PingErr      error
	PingDelay    time.Duration
	PingCalls    int
	Disconnected int
}

func NewMockMongoSource(address string, status bson.M) *MockMongoSource {
	return &MockMongoSource{
		MockStatusReader: NewMockStatusReader(status),
		Address:          address,
	}
}

func (m *MockMongoSource) Ping(ctx context.Context) error {
	m.PingCalls++
	time.Sleep(m.PingDelay)
	return m.PingErr
}

func (m *MockMongoSource) Disconnect(ctx context.Context) error {
	m.Disconnected++
	return nil
}
