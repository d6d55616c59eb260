package zabbix

import (
	"context"
	"fmt"

	"github.com/sebastienferry/mongo-zbx/internal/pkg/log"
)

const (
	MethodHostGroupGet    = "hostgroup.get"
	MethodHostGroupCreate = "hostgroup.create"
)

type HostGroup struct {
	GroupId ID     `json:"groupid"`
	Name    string `json:"name"`
}

type nameFilter struct {
	Name []string `json:"name"`
}

type getParams struct {
	Output string      `json:"output"`
	Filter interface{} `json:"filter"`
}

// GetHostGroups lists the groups named exactly name.
func (c *Client) GetHostGroups(ctx context.Context, token string, name string) ([]HostGroup, error) {
	var groups []HostGroup
	params := getParams{
		Output: "extend",
		Filter: nameFilter{Name: []string{name}},
	}
	if err := c.Call(ctx, MethodHostGroupGet, params, token, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// CreateHostGroup creates a group and returns its id.
func (c *Client) CreateHostGroup(ctx context.Context, token string, name string) (ID, error) {
	var created struct {
		GroupIds []ID `json:"groupids"`
	}
	if err := c.Call(ctx, MethodHostGroupCreate, map[string]string{"name": name}, token, &created); err != nil {
		return "", err
	}
	if len(created.GroupIds) == 0 {
		return "", fmt.Errorf("%s returned no group id for %q", MethodHostGroupCreate, name)
	}
	return created.GroupIds[0], nil
}

// EnsureHostGroup returns the id of the group named name, creating the
// group only when no group carries that name yet.
func (c *Client) EnsureHostGroup(ctx context.Context, token string, name string) (ID, error) {
	groups, err := c.GetHostGroups(ctx, token, name)
	if err != nil {
		return "", fmt.Errorf("error looking up host group %q: %w", name, err)
	}
	if len(groups) > 0 {
		log.InfoWithFields("host group already exists", log.Fields{"group": name, "groupid": groups[0].GroupId})
		return groups[0].GroupId, nil
	}

	id, err := c.CreateHostGroup(ctx, token, name)
	if err != nil {
		return "", fmt.Errorf("error creating host group %q: %w", name, err)
	}
	log.InfoWithFields("host group created", log.Fields{"group": name, "groupid": id})
	return id, nil
}
