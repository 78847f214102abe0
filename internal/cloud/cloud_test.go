package cloud

import (
	"context"
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
	"github.com/parse-server-go/parse-server-go/internal/server"
)

// fakeParse 接受所有 hook 注册，并记录 GameScore 查询使用的 session token。
type fakeParse struct {
	*httptest.Server

	mu       sync.Mutex
	hooks    map[string]bool
	sessions []string
}

func newFakeParse(t *testing.T) *fakeParse {
	t.Helper()
	f := &fakeParse{hooks: make(map[string]bool)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeParse) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/parse/")
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case path == "health":
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	case path == "serverInfo":
		_, _ = w.Write([]byte(`{"parseServerVersion":"7.0.0"}`))
	case path == "users/me":
		_, _ = w.Write([]byte(`{"objectId":"u1","username":"alice"}`))
	case path == "classes/GameScore":
		f.sessions = append(f.sessions, r.Header.Get(parse.HeaderSessionToken))
		_, _ = w.Write([]byte(`{"results":[{"objectId":"s1","points":10}]}`))
	case strings.HasPrefix(path, "hooks/") && r.Method == http.MethodPost:
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		key := body["functionName"]
		if key == "" {
			key = body["className"] + "/" + body["triggerName"]
		}
		f.hooks[key] = true
		_ = json.NewEncoder(w).Encode(body)
	case strings.HasPrefix(path, "hooks/"):
		_, _ = w.Write([]byte(`{}`))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeParse) registered(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hooks[id]
}

func (f *fakeParse) lastSession() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sessions) == 0 {
		return ""
	}
	return f.sessions[len(f.sessions)-1]
}

func newCloudServer(t *testing.T) (*server.Server, *fakeParse) {
	t.Helper()
	upstream := newFakeParse(t)
	cfg := &config.Config{
		ApplicationID:   "app",
		PrimaryKey:      "primary",
		WebhookKey:      "secret",
		ServerURLs:      []string{upstream.URL + "/parse"},
		UpstreamTimeout: config.Duration(2 * time.Second),
		ShutdownGrace:   config.Duration(2 * time.Second),
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("invalid config: %v", err)
	}
	srv, err := server.New(server.Options{Config: cfg, Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("server.New failed: %v", err)
	}
	AttachAll(srv.Hooks())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Prepare(ctx); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if err := srv.Hooks().Wait(ctx); err != nil {
		t.Fatalf("registrations did not settle: %v", err)
	}
	t.Cleanup(func() { srv.Teardown() })
	return srv, upstream
}

func call(t *testing.T, srv *server.Server, path, body string) map[string]json.RawMessage {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "http://localhost:8081"+path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(server.HeaderWebhookKey, "secret")
	resp, err := srv.App().Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return payload
}

func TestAllRoutesRegistered(t *testing.T) {
	srv, upstream := newCloudServer(t)

	for _, id := range []string{
		"hello",
		"GameScore/beforeSave",
		"GameScore/afterSave",
		"GameScore/beforeFind",
		"GameScore/beforeSubscribe",
		"GameScore/afterEvent",
		"_User/afterLogin",
		"@File/beforeSave",
		"@File/beforeDelete",
		"@Connect/beforeConnect",
	} {
		if !upstream.registered(id) {
			t.Fatalf("hook %s was not registered upstream", id)
		}
	}
	if got := srv.Registry().Len(); got != 10 {
		t.Fatalf("expected 10 registry entries, got %d", got)
	}
}

func TestHelloQueriesAsCaller(t *testing.T) {
	srv, upstream := newCloudServer(t)

	payload := call(t, srv, "/hello", `{"functionName":"hello","params":{},"user":{"objectId":"u1","sessionToken":"r:abc"}}`)
	if string(payload["success"]) != `"Hello world!"` {
		t.Fatalf("unexpected response: %s", payload["success"])
	}
	if got := upstream.lastSession(); got != "r:abc" {
		t.Fatalf("query should carry caller session token, got %q", got)
	}

	payload = call(t, srv, "/hello", `{"params":{"name":"Parse"}}`)
	if string(payload["success"]) != `"Hello Parse!"` {
		t.Fatalf("unexpected response: %s", payload["success"])
	}
}

func TestScoreTriggers(t *testing.T) {
	srv, _ := newCloudServer(t)

	payload := call(t, srv, "/score/save/before", `{"triggerName":"beforeSave","object":{"points":-1}}`)
	var failure struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload["error"], &failure); err != nil {
		t.Fatalf("expected error envelope, got %v", payload)
	}
	if failure.Code != parse.ValidationError {
		t.Fatalf("expected validation error, got %d", failure.Code)
	}

	payload = call(t, srv, "/score/save/before", `{"triggerName":"beforeSave","object":{"points":21}}`)
	var saved GameScore
	if err := json.Unmarshal(payload["success"], &saved); err != nil || saved.Points != 21 {
		t.Fatalf("beforeSave should echo the object, got %s", payload["success"])
	}

	payload = call(t, srv, "/score/find/before", `{"triggerName":"beforeFind","query":{"where":{}}}`)
	var scores []GameScore
	if err := json.Unmarshal(payload["success"], &scores); err != nil {
		t.Fatalf("decode scores: %v", err)
	}
	if len(scores) != 2 || scores[0].ObjectID != "yolo" || scores[1].Points != 60 {
		t.Fatalf("unexpected custom scores: %+v", scores)
	}

	payload = call(t, srv, "/score/event/after", `{"triggerName":"afterEvent","event":"create"}`)
	if string(payload["success"]) != "true" {
		t.Fatalf("afterEvent should acknowledge, got %s", payload["success"])
	}
}

func TestFileSizeLimit(t *testing.T) {
	srv, _ := newCloudServer(t)

	payload := call(t, srv, "/file/save/before", `{"triggerName":"beforeSave","fileSize":1024}`)
	if string(payload["success"]) != "true" {
		t.Fatalf("small file should be accepted, got %s", payload["success"])
	}
	payload = call(t, srv, "/file/save/before", `{"triggerName":"beforeSave","fileSize":20971520}`)
	if string(payload["success"]) != "false" {
		t.Fatalf("large file should be refused, got %s", payload["success"])
	}
}
