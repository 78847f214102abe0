package hooks

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

// fakeParse 模拟 Parse Server 的 /hooks 接口，按 Parse 的规则在重复创建时返回 143。
type fakeParse struct {
	*httptest.Server

	mu        sync.Mutex
	functions map[string]map[string]string
	triggers  map[string]map[string]string
	creates   int
	deletes   int
	conflicts int
	// alwaysConflict 让每次创建都返回 143，用于验证只重试一次。
	alwaysConflict bool
}

func newFakeParse(t *testing.T) *fakeParse {
	t.Helper()
	f := &fakeParse{
		functions: make(map[string]map[string]string),
		triggers:  make(map[string]map[string]string),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeParse) serve(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(parse.HeaderPrimaryKey) != "primary" {
		writeParseError(w, http.StatusForbidden, 119, "unauthorized")
		return
	}
	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// 期望路径: /parse/hooks/{functions|triggers}/...
	if len(segments) < 3 || segments[1] != "hooks" {
		http.NotFound(w, r)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	store := f.functions
	if segments[2] == "triggers" {
		store = f.triggers
	}
	id := strings.Join(segments[3:], "/")

	var body map[string]string
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	switch {
	case r.Method == http.MethodGet && id == "":
		items := make([]map[string]string, 0, len(store))
		for _, item := range store {
			items = append(items, item)
		}
		_ = json.NewEncoder(w).Encode(items)
	case r.Method == http.MethodGet:
		item, ok := store[id]
		if !ok {
			writeParseError(w, http.StatusNotFound, parse.WebhookError, "no hook "+id)
			return
		}
		_ = json.NewEncoder(w).Encode(item)
	case r.Method == http.MethodPost:
		key := body["functionName"]
		if segments[2] == "triggers" {
			key = body["className"] + "/" + body["triggerName"]
		}
		if _, exists := store[key]; exists || f.alwaysConflict {
			f.conflicts++
			writeParseError(w, http.StatusBadRequest, parse.WebhookError, key+" already exists")
			return
		}
		f.creates++
		store[key] = body
		_ = json.NewEncoder(w).Encode(body)
	case r.Method == http.MethodPut && body["__op"] == "Delete":
		f.deletes++
		delete(store, id)
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPut:
		item, ok := store[id]
		if !ok {
			writeParseError(w, http.StatusNotFound, parse.WebhookError, "no hook "+id)
			return
		}
		item["url"] = body["url"]
		_ = json.NewEncoder(w).Encode(item)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeParse) serverURL() string { return f.URL + "/parse" }

// stats 返回 (creates, deletes, conflicts)。
func (f *fakeParse) stats() (int, int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates, f.deletes, f.conflicts
}

func (f *fakeParse) functionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.functions)
}

func writeParseError(w http.ResponseWriter, status, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": code, "error": message})
}

// unreachableServer 返回一个已关闭端口的地址。
func unreachableServer(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/parse"
	srv.Close()
	return url
}

func newResourceClient(t *testing.T, servers ...string) *ResourceClient {
	t.Helper()
	cfg := &config.Config{
		ApplicationID:   "app",
		PrimaryKey:      "primary",
		ServerURLs:      servers,
		UpstreamTimeout: config.Duration(2 * time.Second),
	}
	client, err := parse.NewClient(nil, cfg)
	if err != nil {
		t.Fatalf("parse.NewClient failed: %v", err)
	}
	rc, err := NewResourceClient(client, logging.Discard())
	if err != nil {
		t.Fatalf("NewResourceClient failed: %v", err)
	}
	return rc
}

func mustFunction(t *testing.T, name string) *FunctionHook {
	t.Helper()
	hook, err := NewFunctionHook(name, "http://cloud:8081/"+name)
	if err != nil {
		t.Fatalf("NewFunctionHook failed: %v", err)
	}
	return hook
}

func mustTrigger(t *testing.T, className string, trigger TriggerType) *TriggerHook {
	t.Helper()
	hook, err := NewTriggerHook(className, trigger, "http://cloud:8081/"+string(trigger))
	if err != nil {
		t.Fatalf("NewTriggerHook failed: %v", err)
	}
	return hook
}
