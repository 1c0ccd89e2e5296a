// Package image 提供图像生成服务客户端
// 直连 OpenAI 兼容的 /images/generations 接口，Eino 的适配器只覆盖对话模型
package image

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bookforge-api/internal/config"
)

const defaultTimeout = 120 * time.Second

// Client 图像生成客户端
type Client struct {
	cfg        config.ImageConfig
	httpClient *http.Client
}

// Option 自定义客户端
type Option func(*Client)

// WithHTTPClient 覆盖默认 HTTP 客户端（测试用）
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient 创建图像生成客户端
func NewClient(cfg config.ImageConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generateRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format,omitempty"`
}

type generateResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate 生成一张图片，返回 base64 编码的 PNG 数据
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	size := c.cfg.Size
	if size == "" {
		size = "1024x1024"
	}

	body, err := json.Marshal(generateRequest{
		Model:  c.cfg.Model,
		Prompt: prompt,
		N:      1,
		Size:   size,
	})
	if err != nil {
		return "", fmt.Errorf("marshal image request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/images/generations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build image request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return "", fmt.Errorf("read image response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image request: http %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var parsed generateResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("decode image response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("image request: %s", parsed.Error.Message)
	}
	if len(parsed.Data) == 0 || parsed.Data[0].B64JSON == "" {
		return "", fmt.Errorf("no image data returned")
	}

	return parsed.Data[0].B64JSON, nil
}
