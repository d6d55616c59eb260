package replset

import (
	"context"
	"fmt"

	"github.com/sebastienferry/mongo-zbx/internal/pkg/interfaces"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/log"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/probe"
	"go.uber.org/multierr"
)

// Opener returns the status reader of the instance at address.
type Opener func(address string) interfaces.StatusReader

type disconnecter interface {
	Disconnect(ctx context.Context) error
}

// Result is the outcome of one member.
type Result struct {
	Member  Member
	Host    string
	Outcome probe.Outcome
	Skipped bool
	Err     error
}

// Run probes every member, one at a time and in the given order. A failing
// member never stops the next one; the errors are aggregated.
func Run(ctx context.Context, members []Member, open Opener, p *probe.Probe, prefix string) ([]Result, error) {
	var errs error
	results := make([]Result, 0, len(members))

	for _, m := range members {
		if err := ctx.Err(); err != nil {
			return results, multierr.Append(errs, err)
		}

		r := Result{Member: m, Host: m.HostName(prefix)}
		fields := log.Fields{"host": r.Host, "address": m.Address(), "role": m.Role}

		switch m.Role {
		case RoleArbiter, RoleNotArbiter:
		default:
			log.WarnWithFields("unknown member role, skipping", fields)
			r.Skipped = true
			r.Err = fmt.Errorf("member %s: unknown role %q", m.Address(), m.Role)
			errs = multierr.Append(errs, r.Err)
			results = append(results, r)
			continue
		}

		log.DebugWithFields("processing member", fields)
		reader := open(m.Address())
		if m.IsArbiter() {
			r.Outcome, r.Err = p.ProcessArbiter(ctx, reader, r.Host)
		} else {
			r.Outcome, r.Err = p.ProcessMongod(ctx, reader, r.Host)
		}
		if d, ok := reader.(disconnecter); ok {
			_ = d.Disconnect(ctx)
		}

		if r.Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("member %s: %w", m.Address(), r.Err))
		}
		results = append(results, r)
	}
	return results, errs
}
