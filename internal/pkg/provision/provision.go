package provision

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sebastienferry/mongo-zbx/internal/pkg/interfaces"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/log"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/metrics"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/zabbix"
)

var (
	ErrAuthentication = errors.New("authentication failed")
	ErrNoHost         = errors.New("no host to provision")
	ErrMissingIDs     = errors.New("template or group id missing")
)

// HostTarget is one host to register.
type HostTarget struct {
	Name string
	IP   string
}

type Options struct {
	User     string
	Password string

	// Template definition uploaded before the lookup
	TemplateFile string
	// Technical name of the template, as found in the definition
	TemplateName string
	Group        string

	Hosts []HostTarget
}

// Run provisions the hosts: Authenticate, ImportTemplate, ResolveTemplate,
// ResolveGroup, then CreateHost for every host. Only an authentication
// failure is returned as an error; every other failure is recorded in the
// report and stops nothing but the host creations that depend on it.
func Run(ctx context.Context, api interfaces.ZabbixAPI, opts Options) (*Report, error) {
	if len(opts.Hosts) == 0 {
		return nil, ErrNoHost
	}
	report := &Report{}

	// Authenticate
	token, err := api.Login(ctx, opts.User, opts.Password)
	record(report, Step{Name: StepAuthenticate, Target: opts.User}, err)
	if err != nil {
		log.ErrorWithFields("authentication failed", log.Fields{"user": opts.User, "error": err})
		return report, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	log.InfoWithFields("authenticated", log.Fields{"user": opts.User})

	// ImportTemplate, a failure shows up at the lookup
	err = importTemplate(ctx, api, token, opts.TemplateFile)
	record(report, Step{Name: StepImportTemplate, Target: opts.TemplateFile}, err)
	if err != nil {
		log.ErrorWithFields("failed to import the template", log.Fields{"file": opts.TemplateFile, "error": err})
	} else {
		log.InfoWithFields("template imported", log.Fields{"file": opts.TemplateFile})
	}

	// ResolveTemplate
	templateId, templateErr := api.GetTemplateID(ctx, token, opts.TemplateName)
	record(report, Step{Name: StepResolveTemplate, Target: opts.TemplateName, ID: templateId}, templateErr)
	if templateErr != nil {
		log.ErrorWithFields("could not find the template", log.Fields{"template": opts.TemplateName, "error": templateErr})
	}

	// ResolveGroup
	groupId, groupErr := api.EnsureHostGroup(ctx, token, opts.Group)
	record(report, Step{Name: StepResolveGroup, Target: opts.Group, ID: groupId}, groupErr)
	if groupErr != nil {
		log.ErrorWithFields("could not get the host group", log.Fields{"group": opts.Group, "error": groupErr})
	}

	// CreateHost
	for _, h := range opts.Hosts {
		step := Step{Name: StepCreateHost, Target: h.Name}
		if templateErr != nil || groupErr != nil {
			step.Status = StatusSkipped
			step.Err = ErrMissingIDs
			report.add(step)
			metrics.ProvisionStepTotal.WithLabelValues(StepCreateHost, metrics.ResultSkipped).Inc()
			log.WarnWithFields("host not created", log.Fields{"host": h.Name, "error": ErrMissingIDs})
			continue
		}

		step.ID, err = api.CreateHost(ctx, token, zabbix.HostSpec{
			Name:       h.Name,
			IP:         h.IP,
			GroupId:    groupId,
			TemplateId: templateId,
		})
		record(report, step, err)
		if err != nil {
			log.ErrorWithFields("failed to create the host", log.Fields{"host": h.Name, "ip": h.IP, "error": err})
			continue
		}
		log.InfoWithFields("host created", log.Fields{"host": h.Name, "ip": h.IP, "hostid": step.ID})
	}

	return report, nil
}

func importTemplate(ctx context.Context, api interfaces.ZabbixAPI, token string, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading template file: %w", err)
	}
	return api.ImportConfiguration(ctx, token, zabbix.FormatFromPath(path), string(content))
}

func record(report *Report, step Step, err error) {
	step.Status = StatusOK
	if err != nil {
		step.Status = StatusFailed
		step.Err = err
	}
	report.add(step)
	metrics.ProvisionStepTotal.WithLabelValues(step.Name, metrics.Result(err)).Inc()
}
