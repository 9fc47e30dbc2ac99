package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wms-console/internal/model"
)

// ErrUnauthorized 后端返回 401，一般为 token 过期
var ErrUnauthorized = errors.New("backend: unauthorized")

// StatusError 后端返回的非 2xx 响应
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// IsStatus 判断错误是否为指定状态码的后端响应
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// QRImage 二维码图片
type QRImage struct {
	Data        []byte
	ContentType string
}

type Option func(*Client)

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout 设置请求超时，0 表示不限制
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// OnUnauthorized 收到 401 时回调，用于注销会话
func OnUnauthorized(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// Client 携带 bearer token 的后端客户端，每个会话一个实例
type Client struct {
	baseURL        string
	token          string
	http           *http.Client
	onUnauthorized func()
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token 当前使用的后端 token
func (c *Client) Token() string {
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(msg)),
		}
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return nil
}

func binPath(id string) string {
	return "/api/bins/" + url.PathEscape(id)
}

type rfidBody struct {
	RFIDAddress string `json:"rfidAddress"`
}

// ListBins GET /api/bins
func (c *Client) ListBins(ctx context.Context) ([]model.Bin, error) {
	var bins []model.Bin
	if err := c.getJSON(ctx, "/api/bins", &bins); err != nil {
		return nil, err
	}
	return bins, nil
}

// ListRacks GET /api/racks
func (c *Client) ListRacks(ctx context.Context) ([]model.Rack, error) {
	var racks []model.Rack
	if err := c.getJSON(ctx, "/api/racks", &racks); err != nil {
		return nil, err
	}
	return racks, nil
}

// CreateBin POST /api/bins/{rackId}，编码由后端生成
func (c *Client) CreateBin(ctx context.Context, rackID, rfidAddress string) error {
	return c.send(ctx, http.MethodPost, binPath(rackID), rfidBody{RFIDAddress: rfidAddress})
}

// UpdateBin PUT /api/bins/{id}
func (c *Client) UpdateBin(ctx context.Context, id, rfidAddress string) error {
	return c.send(ctx, http.MethodPut, binPath(id), rfidBody{RFIDAddress: rfidAddress})
}

// DeleteBin DELETE /api/bins/{id}
func (c *Client) DeleteBin(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, binPath(id), nil)
}

// BinQRCode GET /api/bins/{id}/qrcode，返回图片二进制
func (c *Client) BinQRCode(ctx context.Context, id string) (*QRImage, error) {
	resp, err := c.do(ctx, http.MethodGet, binPath(id)+"/qrcode", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read qrcode %s: %w", id, err)
	}
	return &QRImage{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login POST /api/auth/login，返回后端 token
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/auth/login", loginBody{Username: username, Password: password})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if result.Token == "" {
		return "", errors.New("backend: login response without token")
	}
	return result.Token, nil
}
