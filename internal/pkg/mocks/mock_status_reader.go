package mocks

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// MockStatusReader returns canned answers and counts the commands it receives.
type MockStatusReader struct {
	IsMasterErr       error
	Status            bson.M
	StatusErr         error
	IsMasterCalls     int
	ServerStatusCalls int
}

func NewMockStatusReader(status bson.M) *MockStatusReader {
	return &MockStatusReader{
		Status: status,
	}
}

func (r *MockStatusReader) IsMaster(ctx context.Context) error {
	r.IsMasterCalls++
	return r.IsMasterErr
}

func (r *MockStatusReader) ServerStatus(ctx context.Context) (bson.M, error) {
	r.ServerStatusCalls++
	if r.StatusErr != nil {
		return nil, r.StatusErr
	}
	return r.Status, nil
}

// ServerStatusFixture is a trimmed serverStatus answer of a 6.0 mongod.
func ServerStatusFixture() bson.M {
	return bson.M{
		"host":    "mongo-1",
		"version": "6.0.5",
		"uptime":  float64(86400),
		"connections": bson.M{
			"current":      int32(12),
			"available":    int32(838848),
			"totalCreated": int32(130),
		},
		"mem": bson.M{
			"bits":     int32(64),
			"resident": int32(187),
			"virtual":  int32(1541),
		},
		"network": bson.M{
			"bytesIn":     int64(1262880),
			"bytesOut":    int64(29408755),
			"numRequests": int64(9164),
		},
		"opcounters": bson.M{
			"insert":  int64(40),
			"query":   int64(352),
			"update":  int64(17),
			"delete":  int64(3),
			"getmore": int64(0),
			"command": int64(8924),
		},
		"extra_info": bson.M{
			"note":        "fields vary by platform",
			"page_faults": int64(7),
		},
	}
}
