package config

import "sync"

// Slot 保存进程内唯一的一份配置：只能成功 Set 一次，之后只读。
// 组件仍通过构造函数显式接收 *Config，Slot 仅负责"只初始化一次"的约束。
type Slot struct {
	mu  sync.RWMutex
	cfg *Config
}

// Set 写入配置；重复调用返回 ErrAlreadyConfigured，且保留第一次写入的值。
func (s *Slot) Set(cfg *Config) error {
	if cfg == nil {
		return newFieldError("Config", "不能为空")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg != nil {
		return ErrAlreadyConfigured
	}
	s.cfg = cfg
	return nil
}

// Get 返回已写入的配置，未初始化时第二个返回值为 false。
func (s *Slot) Get() (*Config, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.cfg != nil
}

var process Slot

// Initialize 将配置写入进程级 Slot，第二次调用会失败。
func Initialize(cfg *Config) error {
	return process.Set(cfg)
}

// Current 返回进程级配置。
func Current() (*Config, bool) {
	return process.Get()
}
