package provision

import (
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/zabbix"
)

const (
	StepAuthenticate    = "authenticate"
	StepImportTemplate  = "import_template"
	StepResolveTemplate = "resolve_template"
	StepResolveGroup    = "resolve_group"
	StepCreateHost      = "create_host"
)

const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Step is the outcome of one provisioning step. Target names what the step
// worked on (template name, group name, host name).
type Step struct {
	Name   string
	Target string
	ID     zabbix.ID
	Status string
	Err    error
}

type Report struct {
	Steps []Step
}

func (r *Report) add(step Step) {
	r.Steps = append(r.Steps, step)
}

// Passed is true when at least one host was created and no host creation
// failed or was skipped.
func (r *Report) Passed() bool {
	created := 0
	for _, s := range r.Steps {
		if s.Name != StepCreateHost {
			continue
		}
		if s.Status != StatusOK {
			return false
		}
		created++
	}
	return created > 0
}

// Step returns the first step named name.
func (r *Report) Step(name string) (Step, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return Step{}, false
}

// HostIDs lists the ids of the hosts created, in order.
func (r *Report) HostIDs() []zabbix.ID {
	var ids []zabbix.ID
	for _, s := range r.Steps {
		if s.Name == StepCreateHost && s.Status == StatusOK {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// Render writes the report as a table.
func (r *Report) Render(out io.Writer) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Step", "Target", "Status", "Id", "Error"})
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetAutoWrapText(false)

	for _, s := range r.Steps {
		errMsg := ""
		if s.Err != nil {
			errMsg = s.Err.Error()
		}
		table.Append([]string{s.Name, s.Target, s.Status, s.ID.String(), errMsg})
	}
	table.Render()
}

func (r *Report) String() string {
	var sb strings.Builder
	r.Render(&sb)
	return sb.String()
}
