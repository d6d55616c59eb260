package mocks

import (
	"context"
	"errors"
)

var ErrRelayFailed = errors.New("relay failed")

type SentValue struct {
	Host  string
	Key   string
	Value string
}

// MockRelay records every value and fails the keys listed in FailKeys.
type MockRelay struct {
	Sent     []SentValue
	FailKeys map[string]bool
}

func NewMockRelay() *MockRelay {
	return &MockRelay{
		FailKeys: make(map[string]bool),
	}
}

func (r *MockRelay) Send(ctx context.Context, host string, key string, value string) error {
	r.Sent = append(r.Sent, SentValue{Host: host, Key: key, Value: value})
	if r.FailKeys[key] {
		return ErrRelayFailed
	}
	return nil
}

// Keys lists the keys sent for host, in order.
func (r *MockRelay) Keys(host string) []string {
	var keys []string
	for _, s := range r.Sent {
		if s.Host == host {
			keys = append(keys, s.Key)
		}
	}
	return keys
}

// Values maps key to value for host.
func (r *MockRelay) Values(host string) map[string]string {
	values := make(map[string]string)
	for _, s := range r.Sent {
		if s.Host == host {
			values[s.Key] = s.Value
		}
	}
	return values
}
