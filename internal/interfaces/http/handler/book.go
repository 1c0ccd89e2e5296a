package handler

import (
	"github.com/gin-gonic/gin"

	"bookforge-api/internal/domain/repository"
	"bookforge-api/internal/interfaces/http/dto"
	"bookforge-api/pkg/logger"
)

// BookHandler 书籍处理器
type BookHandler struct {
	bookRepo repository.BookRepository
}

// NewBookHandler 创建书籍处理器
func NewBookHandler(bookRepo repository.BookRepository) *BookHandler {
	return &BookHandler{bookRepo: bookRepo}
}

// List 列出全部书籍
// @Summary 书籍列表
// @Tags Books
// @Produce json
// @Router /api/books [get]
func (h *BookHandler) List(c *gin.Context) {
	books, err := h.bookRepo.List(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "failed to list books", err)
		dto.InternalError(c, "Failed to fetch books")
		return
	}
	dto.OK(c, books)
}

// Get 获取单本书籍
// @Summary 书籍详情
// @Tags Books
// @Produce json
// @Router /api/books/{id} [get]
func (h *BookHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	book, err := h.bookRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to load book", err, "book_id", id)
		dto.InternalError(c, "Failed to fetch book")
		return
	}
	if book == nil {
		dto.NotFound(c, "Book not found")
		return
	}
	dto.OK(c, book)
}

// Create 创建书籍
// @Summary 创建书籍
// @Tags Books
// @Accept json
// @Produce json
// @Router /api/books [post]
func (h *BookHandler) Create(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "Invalid book data")
		return
	}

	book := req.ToEntity()
	if err := h.bookRepo.Create(c.Request.Context(), book); err != nil {
		logger.Error(c.Request.Context(), "failed to create book", err)
		dto.InternalError(c, "Failed to create book")
		return
	}
	dto.Created(c, book)
}

// Update 更新书籍，未出现的字段保持原值
// @Summary 更新书籍
// @Tags Books
// @Accept json
// @Produce json
// @Router /api/books/{id} [patch]
func (h *BookHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	book, err := h.bookRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to load book", err, "book_id", id)
		dto.InternalError(c, "Failed to update book")
		return
	}
	if book == nil {
		dto.NotFound(c, "Book not found")
		return
	}

	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "Invalid book data")
		return
	}

	req.Apply(book)
	if err := h.bookRepo.Update(c.Request.Context(), book); err != nil {
		logger.Error(c.Request.Context(), "failed to update book", err, "book_id", id)
		dto.InternalError(c, "Failed to update book")
		return
	}
	dto.OK(c, book)
}

// Delete 删除书籍及其全部章节
// @Summary 删除书籍
// @Tags Books
// @Router /api/books/{id} [delete]
func (h *BookHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	book, err := h.bookRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to load book", err, "book_id", id)
		dto.InternalError(c, "Failed to delete book")
		return
	}
	if book == nil {
		dto.NotFound(c, "Book not found")
		return
	}

	if err := h.bookRepo.Delete(c.Request.Context(), id); err != nil {
		logger.Error(c.Request.Context(), "failed to delete book", err, "book_id", id)
		dto.InternalError(c, "Failed to delete book")
		return
	}
	dto.NoContent(c)
}
