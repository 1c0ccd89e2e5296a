// Package llm 提供 LLM Provider 客户端工厂
package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"bookforge-api/internal/config"
	"bookforge-api/pkg/metrics"
)

// Factory 管理多个 Eino ChatModel 客户端实例
// Provider 由配置表驱动，"openai"/"anthropic" 均走 OpenAI 兼容适配器
type Factory struct {
	config *config.LLMConfig
	models map[string]model.BaseChatModel
	mu     sync.RWMutex
}

// NewFactory 创建 LLM 工厂
func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		config: &cfg.LLM,
		models: make(map[string]model.BaseChatModel),
	}
}

// Get 获取指定名称的文本生成器，未指定时返回默认 Provider
func (f *Factory) Get(ctx context.Context, name string) (*Generator, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = f.config.DefaultProvider
	}

	providerCfg, ok := f.config.Providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %s not found in LLM config", name)
	}

	chatModel, err := f.chatModel(ctx, name, providerCfg)
	if err != nil {
		return nil, err
	}

	return &Generator{
		chatModel: chatModel,
		provider:  name,
		model:     providerCfg.Model,
	}, nil
}

// chatModel 惰性创建并缓存 ChatModel
func (f *Factory) chatModel(ctx context.Context, name string, providerCfg config.ProviderConfig) (model.BaseChatModel, error) {
	f.mu.RLock()
	m, ok := f.models[name]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// 再次检查防止竞态
	if m, ok = f.models[name]; ok {
		return m, nil
	}

	maxTokens := providerCfg.MaxTokens
	temperature := float32(providerCfg.Temperature)
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      providerCfg.APIKey,
		BaseURL:     providerCfg.BaseURL,
		Model:       providerCfg.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		Timeout:     providerCfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model for %s: %w", name, err)
	}

	f.models[name] = chatModel
	return chatModel, nil
}

// Generator 单个 Provider 的文本生成器
type Generator struct {
	chatModel model.BaseChatModel
	provider  string
	model     string
}

// Generate 执行一次无状态文本生成
func (g *Generator) Generate(ctx context.Context, msgs []*schema.Message) (string, error) {
	start := time.Now()

	out, err := g.chatModel.Generate(ctx, msgs)

	metrics.LLMCallDuration.WithLabelValues(g.provider, g.model).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		return "", fmt.Errorf("llm call failed: %w", err)
	}
	metrics.LLMCallTotal.WithLabelValues(g.provider, g.model, "ok").Inc()

	if out == nil {
		return "", fmt.Errorf("empty llm response")
	}
	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		usage := out.ResponseMeta.Usage
		metrics.LLMTokensUsed.WithLabelValues(g.provider, g.model, "prompt").Add(float64(usage.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues(g.provider, g.model, "completion").Add(float64(usage.CompletionTokens))
	}

	return out.Content, nil
}
