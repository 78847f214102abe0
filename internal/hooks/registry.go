package hooks

import (
	"sort"
	"sync"

	"github.com/parse-server-go/parse-server-go/internal/metrics"
)

// Entry 是一条登记记录：hook 在 Server 上注册成功。
type Entry struct {
	Server string `json:"server"`
	Hook   Hook   `json:"hook"`
}

type entryKey struct {
	server string
	id     string
}

type table struct {
	category Category
	mu       sync.RWMutex
	entries  map[entryKey]Hook
}

func newTable(category Category) *table {
	return &table{category: category, entries: make(map[entryKey]Hook)}
}

// Registry 记录本进程认为已经注册到各上游的 hook，仅驻留内存，用于关闭时清理。
// 函数与触发器分表存放，各自一把读写锁；同一 (server, hook) 后写覆盖先写。
type Registry struct {
	functions *table
	triggers  *table
}

// NewRegistry 创建空注册表。
func NewRegistry() *Registry {
	return &Registry{
		functions: newTable(CategoryFunction),
		triggers:  newTable(CategoryTrigger),
	}
}

func (r *Registry) tableFor(category Category) *table {
	if category == CategoryFunction {
		return r.functions
	}
	return r.triggers
}

// Functions 返回函数表快照，按 server、ID 排序。
func (r *Registry) Functions() []Entry {
	return r.functions.snapshot()
}

// Triggers 返回触发器表快照，按 server、ID 排序。
func (r *Registry) Triggers() []Entry {
	return r.triggers.snapshot()
}

// Upsert 合并一次操作的结果（server -> hook）。
func (r *Registry) Upsert(results map[string]Hook) {
	for server, hook := range results {
		if hook == nil {
			continue
		}
		r.tableFor(hook.Category()).put(server, hook)
	}
	r.report()
}

// Remove 删除与 pairs 完全对应的 (server, hook) 记录，不存在的记录忽略。
func (r *Registry) Remove(pairs map[string]Hook) {
	for server, hook := range pairs {
		if hook == nil {
			continue
		}
		r.tableFor(hook.Category()).delete(server, hook.ID())
	}
	r.report()
}

// RemoveServers 删除指定服务器上的全部记录，未知服务器忽略。
func (r *Registry) RemoveServers(servers ...string) {
	r.functions.deleteServers(servers)
	r.triggers.deleteServers(servers)
	r.report()
}

// Clear 清空两张表。
func (r *Registry) Clear() {
	r.functions.clear()
	r.triggers.clear()
	r.report()
}

// Len 返回两张表的记录总数。
func (r *Registry) Len() int {
	return r.functions.len() + r.triggers.len()
}

func (r *Registry) report() {
	metrics.SetRegistered(string(CategoryFunction), r.functions.len())
	metrics.SetRegistered(string(CategoryTrigger), r.triggers.len())
}

func (t *table) put(server string, hook Hook) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[entryKey{server: server, id: hook.ID()}] = hook
}

func (t *table) delete(server, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, entryKey{server: server, id: id})
}

func (t *table) deleteServers(servers []string) {
	if len(servers) == 0 {
		return
	}
	drop := make(map[string]struct{}, len(servers))
	for _, server := range servers {
		drop[server] = struct{}{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for key := range t.entries {
		if _, ok := drop[key.server]; ok {
			delete(t.entries, key)
		}
	}
}

func (t *table) clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[entryKey]Hook)
}

func (t *table) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

func (t *table) snapshot() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.entries) == 0 {
		return nil
	}
	keys := make([]entryKey, 0, len(t.entries))
	for key := range t.entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].server != keys[j].server {
			return keys[i].server < keys[j].server
		}
		return keys[i].id < keys[j].id
	})

	result := make([]Entry, 0, len(keys))
	for _, key := range keys {
		result = append(result, Entry{Server: key.server, Hook: t.entries[key]})
	}
	return result
}
