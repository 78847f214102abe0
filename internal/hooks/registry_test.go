package hooks

import (
	"fmt"
	"sync"
	"testing"
)

func TestRegistryUpsertRemoveClear(t *testing.T) {
	registry := NewRegistry()
	hello := mustFunction(t, "hello")

	registry.Upsert(map[string]Hook{"a": hello, "b": hello})
	registry.RemoveServers("a")

	entries := registry.Functions()
	if len(entries) != 1 || entries[0].Server != "b" {
		t.Fatalf("expected only b, got %+v", entries)
	}

	registry.RemoveServers("missing")
	registry.Remove(map[string]Hook{"missing": hello})
	if registry.Len() != 1 {
		t.Fatalf("removing absent keys must be a no-op")
	}

	registry.Clear()
	if registry.Len() != 0 || registry.Functions() != nil {
		t.Fatalf("clear should empty the registry")
	}
}

func TestRegistryKeepsHooksPerServerAndID(t *testing.T) {
	registry := NewRegistry()
	registry.Upsert(map[string]Hook{"a": mustFunction(t, "hello")})
	registry.Upsert(map[string]Hook{"a": mustFunction(t, "bye")})
	registry.Upsert(map[string]Hook{"a": mustTrigger(t, "GameScore", BeforeSave)})

	if got := len(registry.Functions()); got != 2 {
		t.Fatalf("同一服务器上的不同函数都应保留，得到 %d", got)
	}
	if got := len(registry.Triggers()); got != 1 {
		t.Fatalf("expected 1 trigger, got %d", got)
	}

	updated, _ := NewFunctionHook("hello", "http://cloud:9000/hello")
	registry.Upsert(map[string]Hook{"a": updated})
	for _, entry := range registry.Functions() {
		if entry.Hook.ID() == "hello" && entry.Hook.Endpoint() != "http://cloud:9000/hello" {
			t.Fatalf("last write should win, got %s", entry.Hook.Endpoint())
		}
	}

	registry.Remove(map[string]Hook{"a": mustFunction(t, "bye")})
	if got := len(registry.Functions()); got != 1 {
		t.Fatalf("expected 1 function after remove, got %d", got)
	}
}

func TestRegistryConcurrentUpserts(t *testing.T) {
	registry := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hook, _ := NewFunctionHook(fmt.Sprintf("fn%d", i), "http://cloud:8081/fn")
			registry.Upsert(map[string]Hook{"a": hook, "b": hook})
		}(i)
	}
	wg.Wait()
	if registry.Len() != 100 {
		t.Fatalf("并发写入不应丢失更新，得到 %d", registry.Len())
	}
}
