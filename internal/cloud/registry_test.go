package cloud

import (
	"testing"

	"github.com/parse-server-go/parse-server-go/internal/server"
)

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := newRegistry()
	mod := Module{Key: "Scores", Attach: func(*server.Hooks) []*server.Registration { return nil }}
	if err := reg.register(mod); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := reg.register(Module{Key: " scores ", Attach: mod.Attach}); err == nil {
		t.Fatalf("duplicate key should be rejected")
	}
	if err := reg.register(Module{Key: ""}); err == nil {
		t.Fatalf("empty key should be rejected")
	}
	if err := reg.register(Module{Key: "noop"}); err == nil {
		t.Fatalf("module without Attach should be rejected")
	}
}

func TestBuiltinModulesListedInOrder(t *testing.T) {
	mods := List()
	want := []string{"files", "functions", "gamescore", "user"}
	if len(mods) != len(want) {
		t.Fatalf("expected %d modules, got %d", len(want), len(mods))
	}
	for i, key := range want {
		if mods[i].Key != key {
			t.Fatalf("module %d: expected %s, got %s", i, key, mods[i].Key)
		}
	}
}
