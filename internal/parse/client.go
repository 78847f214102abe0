package parse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/parse-server-go/parse-server-go/internal/config"
)

const (
	HeaderApplicationID  = "X-Parse-Application-Id"
	HeaderPrimaryKey     = "X-Parse-Master-Key"
	HeaderSessionToken   = "X-Parse-Session-Token"
	HeaderInstallationID = "X-Parse-Installation-Id"

	maxErrorBody = 64 << 10
)

// ErrNoServer 表示既未指定 ServerURL 也没有可用的主服务器。
var ErrNoServer = errors.New("parse: no server url")

// Client 负责与 Parse Server 通信，所有请求共享同一个 http.Client。
type Client struct {
	http          *http.Client
	applicationID string
	primaryKey    string
	servers       []string
	timeout       time.Duration
}

// NewClient 基于已 Finalize 的配置创建客户端；httpClient 为空时使用默认客户端。
func NewClient(httpClient *http.Client, cfg *config.Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("parse client requires config")
	}
	if cfg.ApplicationID == "" {
		return nil, errors.New("parse client requires application id")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		http:          httpClient,
		applicationID: cfg.ApplicationID,
		primaryKey:    cfg.PrimaryKey,
		servers:       append([]string(nil), cfg.ServerURLs...),
		timeout:       cfg.UpstreamTimeout.DurationValue(),
	}, nil
}

// Servers 返回配置的全部上游服务器，主服务器在首位。
func (c *Client) Servers() []string {
	return append([]string(nil), c.servers...)
}

// Primary 返回主服务器地址。
func (c *Client) Primary() string {
	if len(c.servers) == 0 {
		return ""
	}
	return c.servers[0]
}

// Do 发送一次 JSON 请求。body 为 nil 时不发送请求体；out 为 nil 时丢弃响应体。
// 上游返回 4xx/5xx 时错误为 *Error。
func (c *Client) Do(ctx context.Context, method, path string, opts Options, body, out interface{}) error {
	server := opts.ServerURL
	if server == "" {
		server = c.Primary()
	}
	if server == "" {
		return ErrNoServer
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	target := joinURL(server, path)
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, target, err)
	}
	c.applyHeaders(req, opts, body != nil)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, target, err)
	}
	return nil
}

func (c *Client) applyHeaders(req *http.Request, opts Options, hasBody bool) {
	req.Header.Set(HeaderApplicationID, c.applicationID)
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.UsePrimaryKey && c.primaryKey != "" {
		req.Header.Set(HeaderPrimaryKey, c.primaryKey)
	}
	if opts.SessionToken != "" {
		req.Header.Set(HeaderSessionToken, opts.SessionToken)
	}
	if opts.InstallationID != "" {
		req.Header.Set(HeaderInstallationID, opts.InstallationID)
	}
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	perr := &Error{Status: resp.StatusCode}
	if err := json.Unmarshal(raw, perr); err != nil || perr.Message == "" {
		perr.Code = OtherCause
		perr.Message = strings.TrimSpace(string(raw))
		if perr.Message == "" {
			perr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return perr
}

func joinURL(server, path string) string {
	return strings.TrimSuffix(server, "/") + "/" + strings.TrimPrefix(path, "/")
}
