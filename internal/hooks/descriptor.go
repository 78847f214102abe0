package hooks

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Category 区分函数与触发器两类 hook。
type Category string

const (
	CategoryFunction Category = "function"
	CategoryTrigger  Category = "trigger"
)

// TriggerType 对应 Parse Server 的 triggerName。
type TriggerType string

const (
	BeforeLogin                TriggerType = "beforeLogin"
	AfterLogin                 TriggerType = "afterLogin"
	AfterLogout                TriggerType = "afterLogout"
	BeforePasswordResetRequest TriggerType = "beforePasswordResetRequest"
	BeforeSave                 TriggerType = "beforeSave"
	AfterSave                  TriggerType = "afterSave"
	BeforeDelete               TriggerType = "beforeDelete"
	AfterDelete                TriggerType = "afterDelete"
	BeforeFind                 TriggerType = "beforeFind"
	AfterFind                  TriggerType = "afterFind"
	BeforeConnect              TriggerType = "beforeConnect"
	BeforeSubscribe            TriggerType = "beforeSubscribe"
	AfterEvent                 TriggerType = "afterEvent"
)

// 非对象触发器在 Parse Server 中使用的保留类名。
const (
	ClassFile    = "@File"
	ClassConnect = "@Connect"
)

var triggerTypes = map[TriggerType]struct{}{
	BeforeLogin: {}, AfterLogin: {}, AfterLogout: {}, BeforePasswordResetRequest: {},
	BeforeSave: {}, AfterSave: {}, BeforeDelete: {}, AfterDelete: {},
	BeforeFind: {}, AfterFind: {}, BeforeConnect: {}, BeforeSubscribe: {}, AfterEvent: {},
}

// Valid reports whether t is a trigger Parse Server understands.
func (t TriggerType) Valid() bool {
	_, ok := triggerTypes[t]
	return ok
}

// classless 返回无类名触发器应使用的保留类名；需要类名的触发器返回 false。
func (t TriggerType) classless() (string, bool) {
	switch t {
	case BeforeConnect:
		return ClassConnect, true
	case BeforeSave, AfterSave, BeforeDelete, AfterDelete, BeforeFind, AfterFind:
		return ClassFile, true
	default:
		return "", false
	}
}

var (
	// ErrClassNameRequired 表示对象触发器缺少类名。
	ErrClassNameRequired = errors.New("hooks: trigger requires a class name")
	// ErrInvalidTrigger 表示未知的 triggerName。
	ErrInvalidTrigger = errors.New("hooks: unknown trigger type")
	// ErrFunctionNameRequired 表示函数 hook 缺少名称。
	ErrFunctionNameRequired = errors.New("hooks: function name required")
	// ErrInvalidURL 表示 webhook 地址不是绝对 http(s) URL。
	ErrInvalidURL = errors.New("hooks: webhook url must be absolute http(s)")

	// errNoClient 表示 Drain 未拿到 ResourceClient。
	errNoClient = errors.New("hooks: resource client unavailable")
)

// Hook is one remote hook resource. The unexported methods carry the wire
// protocol so only FunctionHook and TriggerHook implement it.
type Hook interface {
	// ID 在同一 Category 内唯一标识 hook：函数名或 className/triggerName。
	ID() string
	Category() Category
	// Endpoint 返回 Parse Server 回调的 webhook 地址。
	Endpoint() string

	collectionPath() string
	resourcePath() string
	// decoded 返回用于解码上游响应的同类型空值。
	decoded() Hook
}

// FunctionHook 对应 /hooks/functions 资源。
type FunctionHook struct {
	FunctionName string `json:"functionName"`
	URL          string `json:"url,omitempty"`
}

// NewFunctionHook validates the name and the webhook URL.
func NewFunctionHook(name, endpoint string) (*FunctionHook, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrFunctionNameRequired
	}
	if err := validateEndpoint(endpoint); err != nil {
		return nil, err
	}
	return &FunctionHook{FunctionName: name, URL: endpoint}, nil
}

func (h *FunctionHook) ID() string         { return h.FunctionName }
func (h *FunctionHook) Category() Category { return CategoryFunction }
func (h *FunctionHook) Endpoint() string   { return h.URL }

func (h *FunctionHook) String() string {
	return fmt.Sprintf("function %q -> %s", h.FunctionName, h.URL)
}

func (h *FunctionHook) collectionPath() string { return "hooks/functions" }
func (h *FunctionHook) resourcePath() string {
	return "hooks/functions/" + url.PathEscape(h.FunctionName)
}
func (h *FunctionHook) decoded() Hook { return &FunctionHook{} }

// TriggerHook 对应 /hooks/triggers 资源。
type TriggerHook struct {
	ClassName   string      `json:"className"`
	TriggerName TriggerType `json:"triggerName"`
	URL         string      `json:"url,omitempty"`
}

// NewTriggerHook 构造触发器描述。className 为空时仅允许文件触发器（@File）与
// beforeConnect（@Connect），其余触发器返回 ErrClassNameRequired。
func NewTriggerHook(className string, trigger TriggerType, endpoint string) (*TriggerHook, error) {
	if !trigger.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTrigger, trigger)
	}
	className = strings.TrimSpace(className)
	if className == "" {
		reserved, ok := trigger.classless()
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrClassNameRequired, trigger)
		}
		className = reserved
	}
	if err := validateEndpoint(endpoint); err != nil {
		return nil, err
	}
	return &TriggerHook{ClassName: className, TriggerName: trigger, URL: endpoint}, nil
}

func (h *TriggerHook) ID() string         { return h.ClassName + "/" + string(h.TriggerName) }
func (h *TriggerHook) Category() Category { return CategoryTrigger }
func (h *TriggerHook) Endpoint() string   { return h.URL }

func (h *TriggerHook) String() string {
	return fmt.Sprintf("trigger %s on %q -> %s", h.TriggerName, h.ClassName, h.URL)
}

func (h *TriggerHook) collectionPath() string { return "hooks/triggers" }
func (h *TriggerHook) resourcePath() string {
	return "hooks/triggers/" + url.PathEscape(h.ClassName) + "/" + url.PathEscape(string(h.TriggerName))
}
func (h *TriggerHook) decoded() Hook { return &TriggerHook{} }

func validateEndpoint(endpoint string) error {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, endpoint)
	}
	return nil
}
