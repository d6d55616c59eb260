package zabbix

import (
	"context"
	"errors"
)

const (
	MethodUserLogin      = "user.login"
	MethodApiInfoVersion = "apiinfo.version"
)

var ErrEmptyToken = errors.New("zabbix returned an empty session token")

type loginParams struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, user string, password string) (string, error) {
	var token string
	err := c.Call(ctx, MethodUserLogin, loginParams{User: user, Password: password}, "", &token)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}

// Version returns the API version. It needs no session.
func (c *Client) Version(ctx context.Context) (string, error) {
	var version string
	if err := c.callAnonymous(ctx, MethodApiInfoVersion, []string{}, &version); err != nil {
		return "", err
	}
	return version, nil
}
