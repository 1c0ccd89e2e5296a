// Package repository 定义领域仓储接口
package repository

import (
	"context"

	"bookforge-api/internal/domain/entity"
)

// BookRepository 书籍仓储接口
// GetByID 在记录不存在时返回 (nil, nil)，不返回错误
type BookRepository interface {
	List(ctx context.Context) ([]*entity.Book, error)
	GetByID(ctx context.Context, id int) (*entity.Book, error)
	Create(ctx context.Context, book *entity.Book) error
	Update(ctx context.Context, book *entity.Book) error
	// Delete 级联删除：先删除所属章节，再删除书籍，两步在同一事务中
	Delete(ctx context.Context, id int) error
}
