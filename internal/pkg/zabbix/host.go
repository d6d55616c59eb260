package zabbix

import (
	"context"
	"fmt"
)

const (
	MethodHostCreate = "host.create"

	// Zabbix agent interface
	InterfaceTypeAgent = 1
	DefaultAgentPort   = "10050"
)

// HostSpec describes a host to register.
type HostSpec struct {
	Name       string
	IP         string
	GroupId    ID
	TemplateId ID
}

type HostInterface struct {
	Type  int    `json:"type"`
	Main  int    `json:"main"`
	UseIP int    `json:"useip"`
	IP    string `json:"ip"`
	DNS   string `json:"dns"`
	Port  string `json:"port"`
}

type groupRef struct {
	GroupId ID `json:"groupid"`
}

type templateRef struct {
	TemplateId ID `json:"templateid"`
}

type hostCreateParams struct {
	Host       string          `json:"host"`
	Interfaces []HostInterface `json:"interfaces"`
	Groups     []groupRef      `json:"groups"`
	Templates  []templateRef   `json:"templates"`
}

// CreateHost registers a host with a single agent interface, one group
// and one linked template.
func (c *Client) CreateHost(ctx context.Context, token string, spec HostSpec) (ID, error) {
	params := hostCreateParams{
		Host: spec.Name,
		Interfaces: []HostInterface{{
			Type:  InterfaceTypeAgent,
			Main:  1,
			UseIP: 1,
			IP:    spec.IP,
			DNS:   "",
			Port:  DefaultAgentPort,
		}},
		Groups:    []groupRef{{GroupId: spec.GroupId}},
		Templates: []templateRef{{TemplateId: spec.TemplateId}},
	}

	var created struct {
		HostIds []ID `json:"hostids"`
	}
	if err := c.Call(ctx, MethodHostCreate, params, token, &created); err != nil {
		return "", err
	}
	if len(created.HostIds) == 0 {
		return "", fmt.Errorf("%s returned no host id for %q", MethodHostCreate, spec.Name)
	}
	return created.HostIds[0], nil
}
