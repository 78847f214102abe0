package cloud

import (
	"github.com/parse-server-go/parse-server-go/internal/hooks"
	"github.com/parse-server-go/parse-server-go/internal/server"
)

func init() {
	MustRegister(Module{
		Key:         "user",
		Description: "用户登录触发器",
		Attach: func(h *server.Hooks) []*server.Registration {
			return []*server.Registration{
				server.Trigger(h, "/user/login/after", hooks.ObjectTrigger(UserClass, hooks.AfterLogin), afterLogin),
			}
		},
	})
}

func afterLogin(c *server.Context, req *server.TriggerRequest[map[string]interface{}]) (bool, error) {
	userID := ""
	if req.Object != nil {
		if id, ok := (*req.Object)["objectId"].(string); ok {
			userID = id
		}
	}
	c.Log().WithField("user", userID).Info("user logged in")
	return true, nil
}
