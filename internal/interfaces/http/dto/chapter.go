package dto

import (
	"bookforge-api/internal/domain/entity"
)

// CreateChapterRequest 创建章节请求
type CreateChapterRequest struct {
	BookID      int    `json:"bookId" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Summary     string `json:"summary"`
	BeatSheet   string `json:"beatSheet"`
	Content     string `json:"content"`
	Order       int    `json:"order"`
	IsCompleted bool   `json:"isCompleted"`
	ImageURL    string `json:"imageUrl"`
}

// ToEntity 转换为领域实体，字数由内容重算
func (r *CreateChapterRequest) ToEntity() *entity.Chapter {
	chapter := &entity.Chapter{
		BookID:      r.BookID,
		Title:       r.Title,
		Summary:     r.Summary,
		BeatSheet:   r.BeatSheet,
		Order:       r.Order,
		IsCompleted: r.IsCompleted,
		ImageURL:    r.ImageURL,
	}
	chapter.SetContent(r.Content)
	return chapter
}

// UpdateChapterRequest 更新章节请求，未出现的字段保持原值
type UpdateChapterRequest struct {
	Title       *string `json:"title"`
	Summary     *string `json:"summary"`
	BeatSheet   *string `json:"beatSheet"`
	Content     *string `json:"content"`
	Order       *int    `json:"order"`
	IsCompleted *bool   `json:"isCompleted"`
	ImageURL    *string `json:"imageUrl"`
}

// Apply 将非空字段套用到实体上，内容变更时重算字数
func (r *UpdateChapterRequest) Apply(chapter *entity.Chapter) {
	if r.Title != nil {
		chapter.Title = *r.Title
	}
	if r.Summary != nil {
		chapter.Summary = *r.Summary
	}
	if r.BeatSheet != nil {
		chapter.BeatSheet = *r.BeatSheet
	}
	if r.Content != nil {
		chapter.SetContent(*r.Content)
	}
	if r.Order != nil {
		chapter.Order = *r.Order
	}
	if r.IsCompleted != nil {
		chapter.IsCompleted = *r.IsCompleted
	}
	if r.ImageURL != nil {
		chapter.ImageURL = *r.ImageURL
	}
}
