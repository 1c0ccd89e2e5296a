// Package generate 提供 AI 内容生成编排
package generate

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// TextGenerator 文本生成能力接口
type TextGenerator interface {
	Generate(ctx context.Context, msgs []*schema.Message) (string, error)
}

// TextGeneratorFactory 按 Provider 名称获取文本生成器
// 名称为空时返回默认 Provider
type TextGeneratorFactory func(ctx context.Context, provider string) (TextGenerator, error)

// ImageGenerator 图像生成能力接口，返回 base64 编码的 PNG 数据
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
