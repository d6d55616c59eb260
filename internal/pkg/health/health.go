package health

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/olekukonko/tablewriter"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/interfaces"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/log"
)

const (
	ComponentName = "mongo-zbx"

	CheckZabbix = "zabbix-api"
	CheckMongo  = "mongodb"
	CheckSender = "zabbix-sender"

	DefaultTimeout = 5 * time.Second
	// Added to the driver server selection timeout so the driver error
	// is reported before the check gives up
	SelectionMargin = 2 * time.Second
)

// CheckResult is the outcome of one named check.
type CheckResult struct {
	Name   string
	Passed bool
	Error  string
}

type Result struct {
	// Aggregated status as reported by health-go
	Status string
	Checks []CheckResult
}

// OK is true when every check passed.
func (r Result) OK() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Render writes the result as a table.
func (r Result) Render(out io.Writer) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Check", "Status", "Error"})
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetAutoWrapText(false)
	for _, c := range r.Checks {
		status := "ok"
		if !c.Passed {
			status = "failed"
		}
		table.Append([]string{c.Name, status, c.Error})
	}
	table.SetFooter([]string{"", r.Status, ""})
	table.Render()
}

type Checker struct {
	health *healthgo.Health
	names  []string
}

// NewChecker registers the checks; they run on Run.
func NewChecker(version string, checks ...healthgo.Config) (*Checker, error) {
	names := make([]string, 0, len(checks))
	for _, c := range checks {
		names = append(names, c.Name)
	}

	h, err := healthgo.New(healthgo.WithComponent(healthgo.Component{
		Name:    ComponentName,
		Version: version,
	}), healthgo.WithChecks(checks...))
	if err != nil {
		return nil, fmt.Errorf("error creating the health checks: %w", err)
	}
	return &Checker{health: h, names: names}, nil
}

// Run measures every check once.
func (c *Checker) Run(ctx context.Context) Result {
	measured := c.health.Measure(ctx)

	result := Result{Status: string(measured.Status)}
	for _, name := range c.names {
		failure, failed := measured.Failures[name]
		result.Checks = append(result.Checks, CheckResult{
			Name:   name,
			Passed: !failed,
			Error:  failure,
		})
		if failed {
			log.WarnWithFields("check failed", log.Fields{"check": name, "error": failure})
		} else {
			log.DebugWithFields("check passed", log.Fields{"check": name})
		}
	}
	return result
}

// ZabbixCheck calls apiinfo.version, which needs no session.
func ZabbixCheck(api interfaces.Versioner) healthgo.Config {
	return healthgo.Config{
		Name:      CheckZabbix,
		Timeout:   DefaultTimeout,
		SkipOnErr: true,
		Check: func(ctx context.Context) error {
			version, err := api.Version(ctx)
			if err != nil {
				return err
			}
			log.InfoWithFields("zabbix api reachable", log.Fields{"version": version})
			return nil
		},
	}
}

// MongoTimeout is the check timeout matching a driver server selection timeout.
func MongoTimeout(selection time.Duration) time.Duration {
	if selection <= 0 {
		return DefaultTimeout
	}
	return selection + SelectionMargin
}

// MongoCheck pings the mongod without credentials, giving up after timeout.
func MongoCheck(mongo interfaces.Pinger, timeout time.Duration) healthgo.Config {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return healthgo.Config{
		Name:      CheckMongo,
		Timeout:   timeout,
		SkipOnErr: true,
		Check: func(ctx context.Context) error {
			return mongo.Ping(ctx)
		},
	}
}

// SenderCheck makes sure the zabbix_sender binary can be found.
func SenderCheck(path string) healthgo.Config {
	return healthgo.Config{
		Name:      CheckSender,
		SkipOnErr: true,
		Check: func(ctx context.Context) error {
			_, err := exec.LookPath(path)
			return err
		},
	}
}
