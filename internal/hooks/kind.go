package hooks

import (
	"fmt"
	"strings"
)

// Kind says which hook a route backs: Function(name), ObjectTrigger(class,
// trigger) or UntypedTrigger(trigger). The zero Kind is invalid.
type Kind struct {
	category  Category
	name      string
	className string
	trigger   TriggerType
	// untyped 仅由 UntypedTrigger 设置，允许映射到 @File / @Connect。
	untyped   bool
}

// Function 声明一个云函数路由。
func Function(name string) Kind {
	return Kind{category: CategoryFunction, name: name}
}

// ObjectTrigger 声明一个绑定到 className 的触发器路由；className 为空时 Build 失败。
func ObjectTrigger(className string, trigger TriggerType) Kind {
	return Kind{category: CategoryTrigger, className: className, trigger: trigger}
}

// UntypedTrigger 声明文件或 LiveQuery 连接等无类名触发器路由。
func UntypedTrigger(trigger TriggerType) Kind {
	return Kind{category: CategoryTrigger, trigger: trigger, untyped: true}
}

// Category 返回 hook 类别。
func (k Kind) Category() Category { return k.category }

// Build 结合 webhook 地址生成 Hook；类名缺失等错误在此返回。
func (k Kind) Build(endpoint string) (Hook, error) {
	switch k.category {
	case CategoryFunction:
		return NewFunctionHook(k.name, endpoint)
	case CategoryTrigger:
		if !k.untyped && strings.TrimSpace(k.className) == "" {
			return nil, fmt.Errorf("%w: %s", ErrClassNameRequired, k.trigger)
		}
		return NewTriggerHook(k.className, k.trigger, endpoint)
	default:
		return nil, fmt.Errorf("hooks: empty kind")
	}
}

func (k Kind) String() string {
	switch k.category {
	case CategoryFunction:
		return "function:" + k.name
	case CategoryTrigger:
		if k.className == "" {
			return "trigger:" + string(k.trigger)
		}
		return "trigger:" + k.className + "/" + string(k.trigger)
	default:
		return "invalid"
	}
}
