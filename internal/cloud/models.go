package cloud

// GameScoreClass 是 GameScore 在 Parse Server 中的类名。
const GameScoreClass = "GameScore"

// UserClass 是内置用户类。
const UserClass = "_User"

// GameScore is the sample object used by the score triggers.
type GameScore struct {
	ObjectID  string                 `json:"objectId,omitempty"`
	CreatedAt string                 `json:"createdAt,omitempty"`
	UpdatedAt string                 `json:"updatedAt,omitempty"`
	ACL       map[string]interface{} `json:"ACL,omitempty"`
	Points    int                    `json:"points"`
}

// HelloParams 是 hello 函数的参数。
type HelloParams struct {
	Name string `json:"name,omitempty"`
}
