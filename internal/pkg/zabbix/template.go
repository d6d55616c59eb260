package zabbix

import (
	"context"
	"errors"
)

const MethodTemplateGet = "template.get"

var ErrNotFound = errors.New("not found")

type Template struct {
	TemplateId ID     `json:"templateid"`
	Host       string `json:"host"`
	Name       string `json:"name"`
}

type hostFilter struct {
	Host []string `json:"host"`
}

// GetTemplateID resolves a template by its technical name.
func (c *Client) GetTemplateID(ctx context.Context, token string, name string) (ID, error) {
	var templates []Template
	params := getParams{
		Output: "extend",
		Filter: hostFilter{Host: []string{name}},
	}
	if err := c.Call(ctx, MethodTemplateGet, params, token, &templates); err != nil {
		return "", err
	}
	if len(templates) == 0 {
		return "", ErrNotFound
	}
	return templates[0].TemplateId, nil
}
