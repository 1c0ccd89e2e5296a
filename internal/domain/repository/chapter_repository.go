// Package repository 定义领域仓储接口
package repository

import (
	"context"

	"bookforge-api/internal/domain/entity"
)

// ChapterRepository 章节仓储接口
// GetByID 在记录不存在时返回 (nil, nil)，不返回错误
// ListByBook 按 order 升序返回；order 允许重复或有空洞，读取方需容忍
type ChapterRepository interface {
	ListByBook(ctx context.Context, bookID int) ([]*entity.Chapter, error)
	GetByID(ctx context.Context, id int) (*entity.Chapter, error)
	Create(ctx context.Context, chapter *entity.Chapter) error
	Update(ctx context.Context, chapter *entity.Chapter) error
	Delete(ctx context.Context, id int) error
	DeleteByBook(ctx context.Context, bookID int) error
	CountByBook(ctx context.Context, bookID int) (int64, error)
}
