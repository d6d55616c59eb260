package zabbix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sebastienferry/mongo-zbx/internal/pkg/config"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/log"
	"github.com/sebastienferry/mongo-zbx/internal/pkg/metrics"
)

const (
	JsonRpcVersion = "2.0"
	ApiPath        = "/zabbix/api_jsonrpc.php"
	requestId      = 1
)

var ErrNoResult = errors.New("zabbix response carries neither result nor error")

// An ID identifies a Zabbix object (group, template, host).
type ID string

func (id ID) String() string {
	return string(id)
}

type Request struct {
	JsonRpc string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	// null until the session is authenticated
	Auth *string `json:"auth"`
	Id   int     `json:"id"`
}

// Some methods (apiinfo.version) reject the auth member even when null.
type anonymousRequest struct {
	JsonRpc string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	Id      int         `json:"id"`
}

type Response struct {
	JsonRpc string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *APIError       `json:"error"`
	Id      int             `json:"id"`
}

// APIError is the error member of a JSON-RPC response.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

func (e *APIError) Error() string {
	if e.Data == "" {
		return fmt.Sprintf("zabbix api error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("zabbix api error %d: %s %s", e.Code, e.Message, e.Data)
}

type Client struct {
	url  string
	http *http.Client
}

// NewClient returns a client posting to endpoint. A nil httpClient uses
// http.DefaultClient, which has no timeout.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		url:  endpoint,
		http: httpClient,
	}
}

// Endpoint derives the API url from the server address unless url is set.
func Endpoint(server string, url string) string {
	if url != "" {
		return url
	}
	if strings.HasPrefix(server, "http://") || strings.HasPrefix(server, "https://") {
		return strings.TrimRight(server, "/") + ApiPath
	}
	return "http://" + server + ApiPath
}

// Call issues one JSON-RPC request and decodes its result into out.
// An empty token is sent as a null auth member.
func (c *Client) Call(ctx context.Context, method string, params interface{}, token string, out interface{}) error {
	req := Request{
		JsonRpc: JsonRpcVersion,
		Method:  method,
		Params:  params,
		Id:      requestId,
	}
	if token != "" {
		req.Auth = &token
	}
	err := c.do(ctx, method, req, out)
	metrics.RpcCallsTotal.WithLabelValues(method, metrics.Result(err)).Inc()
	return err
}

func (c *Client) callAnonymous(ctx context.Context, method string, params interface{}, out interface{}) error {
	req := anonymousRequest{
		JsonRpc: JsonRpcVersion,
		Method:  method,
		Params:  params,
		Id:      requestId,
	}
	err := c.do(ctx, method, req, out)
	metrics.RpcCallsTotal.WithLabelValues(method, metrics.Result(err)).Inc()
	return err
}

func (c *Client) do(ctx context.Context, method string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error encoding %s request: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error preparing %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	log.DebugWithFields("zabbix api call", log.Fields{
		"method": method,
		"url":    config.ObfuscateCredentials(c.url),
	})

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("error calling %s: %w", method, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("error reading %s response: %w", method, err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return fmt.Errorf("error calling %s: unexpected http status %s", method, httpResp.Status)
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("error decoding %s response: %w", method, err)
	}

	// Anything but a result is an application failure
	if len(resp.Result) == 0 {
		if resp.Error != nil {
			return resp.Error
		}
		return ErrNoResult
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("error decoding %s result: %w", method, err)
	}
	return nil
}
