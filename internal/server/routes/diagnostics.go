package routes

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	"github.com/parse-server-go/parse-server-go/internal/hooks"
	"github.com/parse-server-go/parse-server-go/internal/metrics"
	"github.com/parse-server-go/parse-server-go/internal/server"
	"github.com/parse-server-go/parse-server-go/internal/version"
)

// RegisterDiagnostics 暴露 /-/ 下的诊断接口：hook 登记表、上游状态、存活探针与指标。
func RegisterDiagnostics(app *fiber.App, srv *server.Server) {
	if app == nil || srv == nil {
		return
	}

	app.Get("/-/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "version": version.Full()})
	})

	app.Get("/-/hooks", func(c fiber.Ctx) error {
		registry := srv.Registry()
		return c.JSON(fiber.Map{
			"functions":     encodeEntries(registry.Functions()),
			"triggers":      encodeEntries(registry.Triggers()),
			"registrations": encodeRegistrations(srv.Hooks().Registrations()),
		})
	})

	app.Get("/-/servers", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"servers": srv.Upstreams().List()})
	})

	app.Get("/-/metrics", adaptor.HTTPHandler(metrics.Handler()))
}

type entryPayload struct {
	Server   string `json:"server"`
	Category string `json:"category"`
	ID       string `json:"id"`
	URL      string `json:"url"`
}

type registrationPayload struct {
	Path    string   `json:"path"`
	Kind    string   `json:"kind"`
	State   string   `json:"state"`
	Servers []string `json:"servers,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func encodeEntries(entries []hooks.Entry) []entryPayload {
	result := make([]entryPayload, 0, len(entries))
	for _, entry := range entries {
		result = append(result, entryPayload{
			Server:   entry.Server,
			Category: string(entry.Hook.Category()),
			ID:       entry.Hook.ID(),
			URL:      entry.Hook.Endpoint(),
		})
	}
	return result
}

func encodeRegistrations(regs []*server.Registration) []registrationPayload {
	result := make([]registrationPayload, 0, len(regs))
	for _, reg := range regs {
		item := registrationPayload{Path: reg.Path, Kind: reg.Kind.String(), State: "pending"}
		select {
		case <-reg.Done():
			item.State = "registered"
			item.Servers = reg.Servers()
			if err := reg.Err(); err != nil {
				item.State = "failed"
				item.Error = err.Error()
			}
		default:
		}
		result = append(result, item)
	}
	return result
}
