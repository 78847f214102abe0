package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/parse-server-go/parse-server-go/internal/config"
	"github.com/parse-server-go/parse-server-go/internal/logging"
	"github.com/parse-server-go/parse-server-go/internal/parse"
)

// fakeUpstream 模拟 Parse Server 的 /health、/serverInfo、/hooks 与 /users/me。
type fakeUpstream struct {
	*httptest.Server

	mu      sync.Mutex
	health  string
	created map[string]int
	deleted map[string]int
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{
		health:  "ok",
		created: make(map[string]int),
		deleted: make(map[string]int),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeUpstream) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/parse/")
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case path == "health":
		_ = json.NewEncoder(w).Encode(map[string]string{"status": f.health})
	case path == "serverInfo":
		_ = json.NewEncoder(w).Encode(map[string]string{"parseServerVersion": "7.0.0"})
	case path == "users/me":
		if r.Header.Get(parse.HeaderSessionToken) != "r:token" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":209,"error":"Invalid session token"}`))
			return
		}
		_, _ = w.Write([]byte(`{"objectId":"u1","username":"alice","email":"alice@example.com"}`))
	case strings.HasPrefix(path, "hooks/") && r.Method == http.MethodPost:
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		key := body["functionName"]
		if key == "" {
			key = body["className"] + "/" + body["triggerName"]
		}
		f.created[key]++
		_ = json.NewEncoder(w).Encode(body)
	case strings.HasPrefix(path, "hooks/") && r.Method == http.MethodPut:
		id := strings.TrimPrefix(strings.TrimPrefix(path, "hooks/functions/"), "hooks/triggers/")
		f.deleted[id]++
		_, _ = w.Write([]byte(`{}`))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeUpstream) serverURL() string { return f.URL + "/parse" }

func (f *fakeUpstream) setHealth(status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.health = status
}

func (f *fakeUpstream) createdCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created[id]
}

func (f *fakeUpstream) deletedCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleted[id]
}

func testConfig(t *testing.T, servers ...string) *config.Config {
	t.Helper()
	cfg := &config.Config{
		ApplicationID:   "app",
		PrimaryKey:      "primary",
		WebhookKey:      "secret",
		ServerURLs:      servers,
		HostName:        "localhost",
		Port:            8081,
		UpstreamTimeout: config.Duration(2 * time.Second),
		ShutdownGrace:   config.Duration(2 * time.Second),
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	srv, err := New(Options{Config: cfg, Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("server.New failed: %v", err)
	}
	return srv
}

func webhookRequest(path, key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "http://localhost:8081"+path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(HeaderWebhookKey, key)
	}
	return req
}

func decodeEnvelope(t *testing.T, resp *http.Response) map[string]json.RawMessage {
	t.Helper()
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("webhook responses must be 200, got %d", resp.StatusCode)
	}
	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return payload
}
