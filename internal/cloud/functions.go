package cloud

import (
	"github.com/parse-server-go/parse-server-go/internal/parse"
	"github.com/parse-server-go/parse-server-go/internal/server"
)

func init() {
	MustRegister(Module{
		Key:         "functions",
		Description: "hello 云函数",
		Attach: func(h *server.Hooks) []*server.Registration {
			return []*server.Registration{
				server.Function(h, "/hello", "hello", hello),
			}
		},
	})
}

// hello 在有调用用户时补全用户信息，并以该用户身份查询可见的 GameScore。
func hello(c *server.Context, req *server.FunctionRequest[HelloParams]) (string, error) {
	if req.User != nil {
		if err := req.HydrateUser(c); err != nil {
			return "", err
		}
	}

	var scores []GameScore
	if err := c.Parse().Find(c.Context(), GameScoreClass, parse.Query{}, req.Options(c), &scores); err != nil {
		c.Log().WithError(err).Warn("query scores failed")
	} else {
		c.Log().WithField("scores", len(scores)).Info("scores this user can access")
	}

	if req.Params.Name != "" {
		return "Hello " + req.Params.Name + "!", nil
	}
	return "Hello world!", nil
}
