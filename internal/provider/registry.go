package provider

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"broker-core/internal/config"
	"broker-core/internal/port"
)

var (
	// ErrDuplicateProvider 表示同名后端被重复注册，属于启动期编程错误。
	ErrDuplicateProvider = errors.New("provider 已注册")
	// ErrUnknownProvider 表示请求了未注册的后端名称。
	ErrUnknownProvider = errors.New("未知 provider")
)

// Builder 根据配置构造一对 (Broker, MarketData) 实现。
type Builder func(cfg config.ProviderConfig, logger *zap.Logger) (port.Broker, port.MarketData, error)

// Registry 是进程级的后端名录：每个名称只允许注册一次，注册应在进程
// 启动的单线程阶段完成，解析可以在之后并发进行。
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry 创建空的注册表。
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// Register 以 name 注册一个后端构造器，重名时返回 ErrDuplicateProvider。
func (r *Registry) Register(name string, builder Builder) error {
	if name == "" {
		return errors.New("provider 名称不能为空")
	}
	if builder == nil {
		return fmt.Errorf("provider %q 的构造器不能为 nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.builders[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateProvider, name)
	}
	r.builders[name] = builder
	return nil
}

// Resolve 按名称查找构造器，
// 未注册时返回 ErrUnknownProvider 并列出全部已知名称。
func (r *Registry) Resolve(name string) (Builder, error) {
	r.mu.RLock()
	builder, ok := r.builders[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q，已注册: %v", ErrUnknownProvider, name, r.Names())
	}
	return builder, nil
}

// Names 按字典序返回全部已注册的后端名称。
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default 是进程默认注册表，各后端在启动阶段向其注册，进程内不会重建。
var Default = NewRegistry()

// Register 向默认注册表注册后端。
func Register(name string, builder Builder) error {
	return Default.Register(name, builder)
}

// Resolve 从默认注册表解析后端。
func Resolve(name string) (Builder, error) {
	return Default.Resolve(name)
}
