package dto

import (
	"bookforge-api/internal/application/generate"
)

// GenerateOutlineRequest 大纲生成请求
// model 指定 LLM Provider 名称，为空时使用默认 Provider
type GenerateOutlineRequest struct {
	BookID int    `json:"bookId" binding:"required"`
	Model  string `json:"model"`
}

// GenerateOutlineResponse 大纲生成响应
type GenerateOutlineResponse struct {
	Outline  string                    `json:"outline"`
	Chapters []generate.ChapterSummary `json:"chapters"`
}

// GenerateChapterRequest 章节生成请求
type GenerateChapterRequest struct {
	ChapterID int    `json:"chapterId" binding:"required"`
	Context   string `json:"context"`
	Model     string `json:"model"`
}

// GenerateChapterResponse 章节生成响应
type GenerateChapterResponse struct {
	Content    string              `json:"content"`
	Compliance generate.Compliance `json:"compliance"`
}

// GenerateChapterImageRequest 章节插图生成请求
type GenerateChapterImageRequest struct {
	ChapterID int `json:"chapterId" binding:"required"`
}

// GenerateCoverRequest 封面生成请求
type GenerateCoverRequest struct {
	BookID int `json:"bookId" binding:"required"`
}

// ImageResponse 图像生成响应
type ImageResponse struct {
	ImageURL string `json:"imageUrl"`
}

// GenerateKeywordsRequest 关键词生成请求
type GenerateKeywordsRequest struct {
	BookID int    `json:"bookId" binding:"required"`
	Model  string `json:"model"`
}

// GenerateKeywordsResponse 关键词生成响应
type GenerateKeywordsResponse struct {
	Keywords []string `json:"keywords"`
}

// RearchitectRequest 章节骨架重建请求
type RearchitectRequest struct {
	Model string `json:"model"`
}
