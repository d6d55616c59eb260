package probe

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sebastienferry/mongo-zbx/internal/pkg/mdb"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

const host = "mongo_server"

func expectedValues() map[string]string {
	return map[string]string{
		"mongo.alive":          "1",
		"mongo.conn.current":   "12",
		"mongo.conn.available": "838848",
		"mongo.mem.resident":   "187",
		"mongo.network.in":     "1262880",
		"mongo.network.out":    "29408755",
		"mongo.op.delete":      "3",
		"mongo.op.getmore":     "0",
		"mongo.op.insert":      "40",
		"mongo.op.query":       "352",
		"mongo.op.update":      "17",
		"mongo.page_faults":    "7",
		"mongo.uptime":         "86400.0",
		"mongo.version":        "6.0.5",
	}
}

func TestProcessMongod_Alive(t *testing.T) {
	reader := mocks.NewMockStatusReader(mocks.ServerStatusFixture())
	relay := mocks.NewMockRelay()

	outcome, err := NewProbe(relay).ProcessMongod(context.Background(), reader, host)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlive, outcome)

	// alive first, then the 13 status items in table order
	keys := relay.Keys(host)
	require.Len(t, keys, 1+len(ServerStatusItems))
	assert.Equal(t, KeyAlive, keys[0])
	for i, item := range ServerStatusItems {
		assert.Equal(t, item.Key, keys[i+1])
	}
	assert.Equal(t, expectedValues(), relay.Values(host))
	assert.Equal(t, 1, reader.IsMasterCalls)
	assert.Equal(t, 1, reader.ServerStatusCalls)
}

func TestProcessMongod_Unreachable(t *testing.T) {
	reader := mocks.NewMockStatusReader(mocks.ServerStatusFixture())
	reader.IsMasterErr = fmt.Errorf("%w 10.0.0.1:27017: connection refused", mdb.ErrUnreachable)
	relay := mocks.NewMockRelay()

	outcome, err := NewProbe(relay).ProcessMongod(context.Background(), reader, host)
	assert.Equal(t, OutcomeUnreachable, outcome)
	assert.ErrorIs(t, err, mdb.ErrUnreachable)

	assert.Equal(t, []mocks.SentValue{{Host: host, Key: KeyAlive, Value: "0"}}, relay.Sent)
	assert.Equal(t, 0, reader.ServerStatusCalls)
}

func TestProcessMongod_UnreachableDuringStatus(t *testing.T) {
	reader := mocks.NewMockStatusReader(nil)
	reader.StatusErr = fmt.Errorf("%w 10.0.0.1:27017: connection reset", mdb.ErrUnreachable)
	relay := mocks.NewMockRelay()

	outcome, _ := NewProbe(relay).ProcessMongod(context.Background(), reader, host)
	assert.Equal(t, OutcomeUnreachable, outcome)
	assert.Equal(t, []mocks.SentValue{{Host: host, Key: KeyAlive, Value: "0"}}, relay.Sent)
}

func TestProcessMongod_StatusUnavailable(t *testing.T) {
	reader := mocks.NewMockStatusReader(nil)
	reader.StatusErr = fmt.Errorf("%w 10.0.0.1:27017: Authentication failed", mdb.ErrCommandFailed)
	relay := mocks.NewMockRelay()

	outcome, err := NewProbe(relay).ProcessMongod(context.Background(), reader, host)
	assert.Equal(t, OutcomeStatusUnavailable, outcome)
	assert.ErrorIs(t, err, mdb.ErrCommandFailed)
	assert.Empty(t, relay.Sent)
}

func TestProcessMongod_RelayFailureDoesNotStopOthers(t *testing.T) {
	reader := mocks.NewMockStatusReader(mocks.ServerStatusFixture())
	relay := mocks.NewMockRelay()
	relay.FailKeys["mongo.conn.current"] = true
	relay.FailKeys["mongo.op.query"] = true

	outcome, err := NewProbe(relay).ProcessMongod(context.Background(), reader, host)
	assert.Equal(t, OutcomeAlive, outcome)
	require.Error(t, err)
	assert.True(t, errors.Is(err, mocks.ErrRelayFailed))
	assert.Len(t, relay.Sent, 1+len(ServerStatusItems))
}

func TestProcessMongod_MissingField(t *testing.T) {
	status := mocks.ServerStatusFixture()
	delete(status, "extra_info")
	reader := mocks.NewMockStatusReader(status)
	relay := mocks.NewMockRelay()

	outcome, err := NewProbe(relay).ProcessMongod(context.Background(), reader, host)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlive, outcome)
	assert.Len(t, relay.Sent, len(ServerStatusItems))
	assert.NotContains(t, relay.Keys(host), "mongo.page_faults")
}

func TestProcessArbiter(t *testing.T) {
	reader := mocks.NewMockStatusReader(bson.M{})
	relay := mocks.NewMockRelay()

	outcome, err := NewProbe(relay).ProcessArbiter(context.Background(), reader, "repl_10.0.0.3")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlive, outcome)
	assert.Equal(t, []mocks.SentValue{{Host: "repl_10.0.0.3", Key: KeyAlive, Value: "1"}}, relay.Sent)
	assert.Equal(t, 0, reader.ServerStatusCalls)
}

func TestProcessArbiter_Unreachable(t *testing.T) {
	reader := mocks.NewMockStatusReader(nil)
	reader.IsMasterErr = fmt.Errorf("%w 10.0.0.3:27017: i/o timeout", mdb.ErrUnreachable)
	relay := mocks.NewMockRelay()

	outcome, err := NewProbe(relay).ProcessArbiter(context.Background(), reader, "repl_10.0.0.3")
	assert.Equal(t, OutcomeUnreachable, outcome)
	assert.Error(t, err)
	assert.Equal(t, []mocks.SentValue{{Host: "repl_10.0.0.3", Key: KeyAlive, Value: "0"}}, relay.Sent)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "alive", OutcomeAlive.String())
	assert.Equal(t, "unreachable", OutcomeUnreachable.String())
	assert.Equal(t, "status_unavailable", OutcomeStatusUnavailable.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
