package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/parse-server-go/parse-server-go/internal/logging"
	"github.com/parse-server-go/parse-server-go/internal/metrics"
	"github.com/parse-server-go/parse-server-go/internal/parse"
)

// invokeFunc 执行解码后的业务逻辑，返回 success 值或错误。
type invokeFunc func(c *Context) (interface{}, error)

// webhook 包装业务逻辑：鉴权 → 构造 Context → 调用 → 写回信封。
// 所有结果（包括鉴权失败与 panic）都以 HTTP 200 返回。
func (h *Hooks) webhook(route string, invoke invokeFunc) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		requestID := RequestID(c)

		if denied := CheckWebhookKey(c, h.cfg); denied != nil {
			h.logger.WithFields(logging.RequestFields(route, requestID, "")).
				WithField("action", "webhook_auth_failed").
				Warn(MessageWebhookKeyMismatch)
			metrics.ObserveWebhook(route, metrics.OutcomeDenied, time.Since(start))
			return c.JSON(denied)
		}

		ctx := h.newContext(c, route, requestID)
		envelope, outcome := h.invoke(ctx, invoke)
		metrics.ObserveWebhook(route, outcome, time.Since(start))
		return c.JSON(envelope)
	}
}

func (h *Hooks) newContext(c fiber.Ctx, route, requestID string) *Context {
	server, err := h.upstreams.Resolve(c.BaseURL() + c.OriginalURL())
	entry := h.logger.WithFields(logging.RequestFields(route, requestID, server))
	if err != nil {
		entry.WithError(err).Error("resolve parse server failed")
	}
	return &Context{Ctx: c, server: server, client: h.parse, entry: entry}
}

// invoke 调用业务逻辑并将 panic 转换为错误信封。
func (h *Hooks) invoke(ctx *Context, invoke invokeFunc) (envelope *Envelope, outcome string) {
	defer func() {
		if r := recover(); r != nil {
			ctx.Log().WithFields(logrus.Fields{"action": "webhook_panic"}).
				Error(fmt.Sprintf("panic: %v", r))
			envelope = Failure(parse.NewError(parse.ScriptFailed, "handler panic"))
			outcome = metrics.OutcomePanic
		}
	}()

	result, err := invoke(ctx)
	if err != nil {
		ctx.Log().WithField("action", "webhook_error").WithError(err).Info("handler returned error")
		return Failure(err), metrics.OutcomeError
	}
	return Success(result), metrics.OutcomeOK
}

// decodeBody 解码请求体；空请求体保留零值。
func decodeBody(c fiber.Ctx, out interface{}) error {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return parse.NewError(parse.InvalidJSON, "invalid request body: "+err.Error())
	}
	return nil
}
