package cloud

import (
	"time"

	"github.com/parse-server-go/parse-server-go/internal/hooks"
	"github.com/parse-server-go/parse-server-go/internal/parse"
	"github.com/parse-server-go/parse-server-go/internal/server"
)

func init() {
	MustRegister(Module{
		Key:         "gamescore",
		Description: "GameScore 对象与 LiveQuery 触发器",
		Attach: func(h *server.Hooks) []*server.Registration {
			return []*server.Registration{
				server.Trigger(h, "/score/save/before", hooks.ObjectTrigger(GameScoreClass, hooks.BeforeSave), beforeSaveScore),
				server.Trigger(h, "/score/save/after", hooks.ObjectTrigger(GameScoreClass, hooks.AfterSave), acknowledge[GameScore]("score saved")),
				server.Trigger(h, "/score/find/before", hooks.ObjectTrigger(GameScoreClass, hooks.BeforeFind), beforeFindScore),
				server.Trigger(h, "/score/subscribe/before", hooks.ObjectTrigger(GameScoreClass, hooks.BeforeSubscribe), acknowledge[GameScore]("LiveQuery subscription")),
				server.Trigger(h, "/score/event/after", hooks.ObjectTrigger(GameScoreClass, hooks.AfterEvent), acknowledge[GameScore]("LiveQuery event")),
			}
		},
	})
}

// beforeSaveScore 拒绝负分，其余原样放行。
func beforeSaveScore(c *server.Context, req *server.TriggerRequest[GameScore]) (*GameScore, error) {
	if req.Object == nil {
		return nil, parse.NewError(parse.ObjectNotFound, "Object not sent in request.")
	}
	if req.Object.Points < 0 {
		return nil, parse.NewError(parse.ValidationError, "points must not be negative")
	}

	var scores []GameScore
	if err := c.Parse().Find(c.Context(), GameScoreClass, parse.Query{Limit: 100}, c.PrimaryOptions(), &scores); err != nil {
		c.Log().WithError(err).Warn("query scores failed")
	} else {
		c.Log().WithField("scores", len(scores)).Info("scores before save")
	}
	return req.Object, nil
}

// beforeFindScore 不查询数据库，直接返回两条自定义记录。
func beforeFindScore(c *server.Context, req *server.TriggerRequest[GameScore]) ([]GameScore, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	c.Log().WithField("query", string(req.Query)).Info("returning custom scores")
	return []GameScore{
		{ObjectID: "yolo", CreatedAt: now, Points: 50},
		{ObjectID: "nolo", CreatedAt: now, Points: 60},
	}, nil
}

// acknowledge 记录一条日志并返回 true，用于只需放行的触发器。
func acknowledge[O any](message string) func(c *server.Context, req *server.TriggerRequest[O]) (bool, error) {
	return func(c *server.Context, req *server.TriggerRequest[O]) (bool, error) {
		entry := c.Log().WithField("trigger", req.TriggerName)
		if req.Event != "" {
			entry = entry.WithField("event", req.Event)
		}
		entry.Info(message)
		return true, nil
	}
}
