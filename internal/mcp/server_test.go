package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"mcp-mistral-ocr/internal/files"
	"mcp-mistral-ocr/internal/ocr"
	"mcp-mistral-ocr/internal/store"
)

const fakeRaw = `{"pages":[{"index":0,"markdown":"# Title\n\nBody text"}],"model":"fake-model"}`

type fakeEngine struct {
	calls int
	last  ocr.Source
	raw   json.RawMessage
	err   error
}

func (f *fakeEngine) Name() string     { return "fake" }
func (f *fakeEngine) GetModel() string { return "fake-model" }

func (f *fakeEngine) Process(_ context.Context, src ocr.Source) (ocr.Result, error) {
	f.calls++
	f.last = src
	if f.err != nil {
		return ocr.Result{}, f.err
	}
	return ocr.Result{Raw: f.raw}, nil
}

// newTestServer wires a server against a temp base directory, a fixed clock
// and a fake engine.
func newTestServer(t *testing.T) (*Server, *fakeEngine, string) {
	t.Helper()
	base := t.TempDir()
	out := filepath.Join(base, "output")
	if err := os.MkdirAll(out, 0o755); err != nil {
		t.Fatal(err)
	}

	eng := &fakeEngine{raw: json.RawMessage(fakeRaw)}
	w := store.NewWriter(out)
	w.Now = func() time.Time {
		return time.Date(2024, 3, 1, 10, 15, 30, 0, time.UTC)
	}
	return New(eng, files.NewResolver(base), w, zerolog.Nop()), eng, base
}

func call(t *testing.T, s *Server, method string, params interface{}) map[string]interface{} {
	t.Helper()
	req := map[string]interface{}{"jsonrpc": "2.0", "id": 1, "method": method}
	if params != nil {
		req["params"] = params
	}
	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}

	respBytes := s.Handle(context.Background(), raw)
	if respBytes == nil {
		t.Fatalf("no response for %s", method)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, respBytes)
	}
	return resp
}

func resultOf(t *testing.T, resp map[string]interface{}) map[string]interface{} {
	t.Helper()
	if e, ok := resp["error"]; ok {
		t.Fatalf("unexpected error response: %v", e)
	}
	result, ok := resp["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("no result object in %v", resp)
	}
	return result
}

func errorOf(t *testing.T, resp map[string]interface{}) map[string]interface{} {
	t.Helper()
	e, ok := resp["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected an error response, got %v", resp)
	}
	return e
}

func TestInitialize(t *testing.T) {
	s, _, _ := newTestServer(t)

	result := resultOf(t, call(t, s, "initialize", map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"clientInfo":      map[string]interface{}{"name": "test-client"},
	}))

	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion = %v", result["protocolVersion"])
	}
	info, _ := result["serverInfo"].(map[string]interface{})
	if info["name"] != "mcp-mistral-ocr" || info["version"] != "0.1.0" {
		t.Errorf("serverInfo = %v", info)
	}
	if _, ok := result["capabilities"].(map[string]interface{})["tools"]; !ok {
		t.Error("capabilities.tools missing")
	}
}

func TestPing(t *testing.T) {
	s, _, _ := newTestServer(t)

	result := resultOf(t, call(t, s, "ping", nil))
	if len(result) != 0 {
		t.Errorf("ping result = %v, want empty object", result)
	}
}

func TestInitializedNotificationGetsNoResponse(t *testing.T) {
	s, _, _ := newTestServer(t)

	resp := s.Handle(context.Background(), []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	if resp != nil {
		t.Fatalf("notification got a response: %s", resp)
	}
}

func TestUnknownMethod(t *testing.T) {
	s, _, _ := newTestServer(t)

	e := errorOf(t, call(t, s, "resources/list", nil))
	if e["code"] != float64(codeMethodNotFound) {
		t.Errorf("code = %v, want %d", e["code"], codeMethodNotFound)
	}
}

func TestParseError(t *testing.T) {
	s, _, _ := newTestServer(t)

	respBytes := s.Handle(context.Background(), []byte(`{this is not json`))
	var resp map[string]interface{}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	e := errorOf(t, resp)
	if e["code"] != float64(codeParseError) {
		t.Errorf("code = %v, want %d", e["code"], codeParseError)
	}
	if id, ok := resp["id"]; !ok || id != nil {
		t.Errorf("id = %v, want null", id)
	}
}

func TestMissingMethod(t *testing.T) {
	s, _, _ := newTestServer(t)

	respBytes := s.Handle(context.Background(), []byte(`{"jsonrpc":"2.0","id":5}`))
	var resp map[string]interface{}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatal(err)
	}
	e := errorOf(t, resp)
	if e["code"] != float64(codeInvalidRequest) {
		t.Errorf("code = %v, want %d", e["code"], codeInvalidRequest)
	}
}

func TestIDEchoedVerbatim(t *testing.T) {
	s, _, _ := newTestServer(t)

	respBytes := s.Handle(context.Background(), []byte(`{"jsonrpc":"2.0","id":"req-abc","method":"ping"}`))
	var resp map[string]interface{}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatal(err)
	}
	if resp["id"] != "req-abc" {
		t.Errorf("id = %v, want req-abc", resp["id"])
	}
}

func TestToolsCallRequiresParams(t *testing.T) {
	s, _, _ := newTestServer(t)

	e := errorOf(t, call(t, s, "tools/call", nil))
	if e["code"] != float64(codeInvalidParams) {
		t.Errorf("code = %v, want %d", e["code"], codeInvalidParams)
	}
}
