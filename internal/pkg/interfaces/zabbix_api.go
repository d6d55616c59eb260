package interfaces

import (
	"context"

	"github.com/sebastienferry/mongo-zbx/internal/pkg/zabbix"
)

// Defines the Zabbix API calls used to provision a monitored host.
type ZabbixAPI interface {

	// Exchange credentials for a session token.
	Login(ctx context.Context, user string, password string) (string, error)

	// Upload a configuration document (templates, items, triggers...).
	ImportConfiguration(ctx context.Context, token string, format string, source string) error

	// Resolve a template id by its technical name.
	GetTemplateID(ctx context.Context, token string, name string) (zabbix.ID, error)

	// Return the id of a host group, creating the group when missing.
	EnsureHostGroup(ctx context.Context, token string, name string) (zabbix.ID, error)

	// Register a host attached to one group and one template.
	CreateHost(ctx context.Context, token string, spec zabbix.HostSpec) (zabbix.ID, error)
}
