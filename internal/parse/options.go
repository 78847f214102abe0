package parse

// Options scope a single request: which upstream it goes to and whose
// credentials it carries.
type Options struct {
	// ServerURL 为空时使用主服务器。
	ServerURL      string
	SessionToken   string
	InstallationID string
	// UsePrimaryKey 附带 X-Parse-Master-Key，绕过 ACL/CLP。
	UsePrimaryKey bool
}

// Primary 返回只携带主密钥、指向 server 的选项，hook 管理接口均使用它。
func Primary(server string) Options {
	return Options{ServerURL: server, UsePrimaryKey: true}
}
