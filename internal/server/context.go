package server

import (
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/parse-server-go/parse-server-go/internal/parse"
)

// Context 是传给 webhook 处理函数的请求上下文：在 fiber.Ctx 之上附带
// 解析出的上游服务器、Parse 客户端与带请求字段的 logger。
type Context struct {
	fiber.Ctx

	server string
	client *parse.Client
	entry  *logrus.Entry
}

// ServerURL 返回发起本次调用的 Parse Server。
func (c *Context) ServerURL() string { return c.server }

// Parse 返回共享的 Parse 客户端。
func (c *Context) Parse() *parse.Client { return c.client }

// Log 返回附带 route/request_id/server 字段的 logger。
func (c *Context) Log() *logrus.Entry { return c.entry }

// PrimaryOptions 返回以主密钥访问发起调用的服务器的选项。
func (c *Context) PrimaryOptions() parse.Options {
	return parse.Primary(c.server)
}
