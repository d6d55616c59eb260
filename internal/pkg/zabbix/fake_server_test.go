package zabbix

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type recordedCall struct {
	Method      string
	ContentType string
	Path        string
	Envelope    map[string]json.RawMessage
	Params      json.RawMessage
}

func (c recordedCall) HasAuth() bool {
	_, ok := c.Envelope["auth"]
	return ok
}

// fakeServer answers JSON-RPC calls with canned bodies keyed by method
// and records every request it receives.
type fakeServer struct {
	mu      sync.Mutex
	srv     *httptest.Server
	replies map[string]string
	calls   []recordedCall
}

func newFakeServer(t *testing.T, replies map[string]string) *fakeServer {
	f := &fakeServer{replies: replies}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(body, &envelope); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		var method string
		_ = json.Unmarshal(envelope["method"], &method)

		f.mu.Lock()
		f.calls = append(f.calls, recordedCall{
			Method:      method,
			ContentType: r.Header.Get("Content-Type"),
			Path:        r.URL.Path,
			Envelope:    envelope,
			Params:      envelope["params"],
		})
		reply, ok := f.replies[method]
		f.mu.Unlock()

		if !ok {
			reply = `{"jsonrpc":"2.0","error":{"code":-32601,"message":"Method not found.","data":"Incorrect method."},"id":1}`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeServer) client() *Client {
	return NewClient(f.srv.URL+ApiPath, f.srv.Client())
}

func (f *fakeServer) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	methods := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		methods = append(methods, c.Method)
	}
	return methods
}

func (f *fakeServer) call(i int) recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

func okReply(raw string) string {
	return `{"jsonrpc":"2.0","result":` + raw + `,"id":1}`
}

func errReply(code int, message string, data string) string {
	b, _ := json.Marshal(APIError{Code: code, Message: message, Data: data})
	return `{"jsonrpc":"2.0","error":` + string(b) + `,"id":1}`
}
