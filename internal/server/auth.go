package server

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v3"

	"github.com/parse-server-go/parse-server-go/internal/config"
	"github.com/parse-server-go/parse-server-go/internal/parse"
)

// HeaderWebhookKey 由 Parse Server 在每次 webhook 调用中携带。
const HeaderWebhookKey = "X-Parse-Webhook-Key"

// MessageWebhookKeyMismatch 是鉴权失败时返回给上游的信息。
const MessageWebhookKeyMismatch = "Webhook keys don't match"

// CheckWebhookKey 校验请求头中的 webhook 密钥，通过时返回 nil；
// 失败时返回错误信封，调用方以 HTTP 200 写回，不进入业务处理。
//
// 配置了 WebhookKey 时要求完全相等。未配置时：lenient 模式放行所有请求，
// strict 模式只放行未携带该头的请求。
func CheckWebhookKey(c fiber.Ctx, cfg *config.Config) *Envelope {
	got := c.Get(HeaderWebhookKey)
	if cfg != nil && cfg.HasWebhookKey() {
		if subtle.ConstantTimeCompare([]byte(got), []byte(cfg.WebhookKey)) == 1 {
			return nil
		}
		return webhookKeyMismatch()
	}
	if cfg != nil && cfg.AuthMode == config.AuthModeStrict && got != "" {
		return webhookKeyMismatch()
	}
	return nil
}

func webhookKeyMismatch() *Envelope {
	return Failure(parse.NewError(parse.OtherCause, MessageWebhookKeyMismatch))
}
