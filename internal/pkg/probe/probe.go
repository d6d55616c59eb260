package probe

import (
	"context"
	"errors"

	"github.com/sebastienferry/mongo-zbx/internal/pkg/interfaces"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/log"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/mdb"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/metrics"
	"go.uber.org/multierr"
)

type Outcome int

const (
	// serverStatus was read and relayed
	OutcomeAlive Outcome = iota
	// the instance could not be reached, alive=0 was relayed
	OutcomeUnreachable
	// the instance answered but serverStatus failed, nothing was relayed
	OutcomeStatusUnavailable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAlive:
		return "alive"
	case OutcomeUnreachable:
		return "unreachable"
	case OutcomeStatusUnavailable:
		return "status_unavailable"
	default:
		return "unknown"
	}
}

const (
	RoleMongod  = "mongod"
	RoleArbiter = "arbiter"
)

type Probe struct {
	relay interfaces.Relay
	items []Item
}

func NewProbe(relay interfaces.Relay) *Probe {
	return &Probe{
		relay: relay,
		items: ServerStatusItems,
	}
}

// ProcessMongod reads the status of a data bearing member (or a standalone
// instance) and relays alive=1 followed by every status item.
func (p *Probe) ProcessMongod(ctx context.Context, reader interfaces.StatusReader, host string) (Outcome, error) {
	if err := reader.IsMaster(ctx); err != nil {
		return p.unreachable(ctx, RoleMongod, host, err)
	}

	status, err := reader.ServerStatus(ctx)
	if err != nil {
		if errors.Is(err, mdb.ErrUnreachable) {
			return p.unreachable(ctx, RoleMongod, host, err)
		}
		log.ErrorWithFields("could not get the server status, please check the authentication", log.Fields{"host": host, "error": err})
		metrics.ProbeOutcomeTotal.WithLabelValues(RoleMongod, OutcomeStatusUnavailable.String()).Inc()
		return OutcomeStatusUnavailable, err
	}

	metrics.ProbeOutcomeTotal.WithLabelValues(RoleMongod, OutcomeAlive.String()).Inc()

	values, extractErr := Extract(status, p.items)
	if extractErr != nil {
		log.WarnWithFields("some status fields are missing", log.Fields{"host": host, "error": extractErr})
	}

	all := append([]Metric{{Key: KeyAlive, Value: "1"}}, values...)
	return OutcomeAlive, p.Publish(ctx, host, all)
}

// ProcessArbiter only checks that the arbiter answers; arbiters hold no
// data so no other item is relayed.
func (p *Probe) ProcessArbiter(ctx context.Context, reader interfaces.StatusReader, host string) (Outcome, error) {
	if err := reader.IsMaster(ctx); err != nil {
		return p.unreachable(ctx, RoleArbiter, host, err)
	}
	metrics.ProbeOutcomeTotal.WithLabelValues(RoleArbiter, OutcomeAlive.String()).Inc()
	return OutcomeAlive, p.Publish(ctx, host, []Metric{{Key: KeyAlive, Value: "1"}})
}

// Publish relays every value on its own; a failed value does not stop the next.
func (p *Probe) Publish(ctx context.Context, host string, values []Metric) error {
	var errs error
	for _, m := range values {
		errs = multierr.Append(errs, p.relay.Send(ctx, host, m.Key, m.Value))
	}
	return errs
}

func (p *Probe) unreachable(ctx context.Context, role string, host string, cause error) (Outcome, error) {
	log.ErrorWithFields("could not connect to the server", log.Fields{"host": host, "error": cause})
	metrics.ProbeOutcomeTotal.WithLabelValues(role, OutcomeUnreachable.String()).Inc()
	sendErr := p.relay.Send(ctx, host, KeyAlive, "0")
	return OutcomeUnreachable, multierr.Append(cause, sendErr)
}
