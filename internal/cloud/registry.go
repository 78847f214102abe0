package cloud

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/parse-server-go/parse-server-go/internal/server"
)

// Module 是一组相关的 Cloud Code 路由。
type Module struct {
	Key         string
	Description string

	// Attach 在 Hooks 上挂载本模块的全部路由。
	Attach func(h *server.Hooks) []*server.Registration
}

var globalRegistry = newRegistry()

type registry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

func newRegistry() *registry {
	return &registry{modules: make(map[string]Module)}
}

// Register 将模块加入全局注册表，重复键会返回错误。
func Register(mod Module) error {
	return globalRegistry.register(mod)
}

// MustRegister 在注册失败时 panic，适合模块 init() 中调用。
func MustRegister(mod Module) {
	if err := Register(mod); err != nil {
		panic(err)
	}
}

// List 返回按键排序的模块列表。
func List() []Module {
	return globalRegistry.list()
}

// AttachAll 按键顺序挂载全部模块，返回所有注册句柄。
func AttachAll(h *server.Hooks) []*server.Registration {
	var regs []*server.Registration
	for _, mod := range List() {
		regs = append(regs, mod.Attach(h)...)
	}
	return regs
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func (r *registry) register(mod Module) error {
	key := normalizeKey(mod.Key)
	if key == "" {
		return fmt.Errorf("cloud module key is required")
	}
	if mod.Attach == nil {
		return fmt.Errorf("cloud module %s has no routes", key)
	}
	mod.Key = key

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[key]; exists {
		return fmt.Errorf("cloud module %s already registered", key)
	}
	r.modules[key] = mod
	return nil
}

func (r *registry) list() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.modules))
	for key := range r.modules {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]Module, 0, len(keys))
	for _, key := range keys {
		result = append(result, r.modules[key])
	}
	return result
}
