package cloud

import (
	"github.com/parse-server-go/parse-server-go/internal/hooks"
	"github.com/parse-server-go/parse-server-go/internal/server"
)

func init() {
	MustRegister(Module{
		Key:         "files",
		Description: "文件与 LiveQuery 连接触发器",
		Attach: func(h *server.Hooks) []*server.Registration {
			return []*server.Registration{
				server.Trigger(h, "/file/save/before", hooks.UntypedTrigger(hooks.BeforeSave), beforeSaveFile),
				server.Trigger(h, "/file/delete/before", hooks.UntypedTrigger(hooks.BeforeDelete), acknowledge[map[string]interface{}]("file deleted")),
				server.Trigger(h, "/connect/before", hooks.UntypedTrigger(hooks.BeforeConnect), acknowledge[map[string]interface{}]("LiveQuery connection")),
			}
		},
	})
}

// maxFileSize 之外的文件会被拒绝。
const maxFileSize = 10 << 20

func beforeSaveFile(c *server.Context, req *server.TriggerRequest[map[string]interface{}]) (bool, error) {
	c.Log().WithField("size", req.FileSize).Info("file is being saved")
	return req.FileSize <= maxFileSize, nil
}
