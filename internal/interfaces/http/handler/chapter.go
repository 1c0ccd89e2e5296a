package handler

import (
	"github.com/gin-gonic/gin"

	"bookforge-api/internal/application/generate"
	"bookforge-api/internal/domain/repository"
	"bookforge-api/internal/interfaces/http/dto"
	"bookforge-api/pkg/logger"
)

// ChapterHandler 章节处理器
type ChapterHandler struct {
	bookRepo     repository.BookRepository
	chapterRepo  repository.ChapterRepository
	orchestrator *generate.Orchestrator
}

// NewChapterHandler 创建章节处理器
func NewChapterHandler(bookRepo repository.BookRepository, chapterRepo repository.ChapterRepository, orchestrator *generate.Orchestrator) *ChapterHandler {
	return &ChapterHandler{
		bookRepo:     bookRepo,
		chapterRepo:  chapterRepo,
		orchestrator: orchestrator,
	}
}

// ListByBook 列出书籍的全部章节
// 配置指定的书籍在章节为空时会先触发一次大纲生成；
// 生成失败不阻塞读取，返回当前已有章节
// @Summary 章节列表
// @Tags Chapters
// @Produce json
// @Router /api/books/{id}/chapters [get]
func (h *ChapterHandler) ListByBook(c *gin.Context) {
	bookID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if h.orchestrator != nil {
		if err := h.orchestrator.EnsureBootstrapped(ctx, bookID); err != nil {
			logger.Warn(ctx, "chapter bootstrap failed", "book_id", bookID, "error", err)
		}
	}

	chapters, err := h.chapterRepo.ListByBook(ctx, bookID)
	if err != nil {
		logger.Error(ctx, "failed to list chapters", err, "book_id", bookID)
		dto.InternalError(c, "Failed to fetch chapters")
		return
	}
	dto.OK(c, chapters)
}

// Get 获取单个章节
// @Summary 章节详情
// @Tags Chapters
// @Produce json
// @Router /api/chapters/{id} [get]
func (h *ChapterHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	chapter, err := h.chapterRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to load chapter", err, "chapter_id", id)
		dto.InternalError(c, "Failed to fetch chapter")
		return
	}
	if chapter == nil {
		dto.NotFound(c, "Chapter not found")
		return
	}
	dto.OK(c, chapter)
}

// Create 创建章节
// @Summary 创建章节
// @Tags Chapters
// @Accept json
// @Produce json
// @Router /api/chapters [post]
func (h *ChapterHandler) Create(c *gin.Context) {
	var req dto.CreateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "Invalid chapter data")
		return
	}

	book, err := h.bookRepo.GetByID(c.Request.Context(), req.BookID)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to load book", err, "book_id", req.BookID)
		dto.InternalError(c, "Failed to create chapter")
		return
	}
	if book == nil {
		dto.NotFound(c, "Book not found")
		return
	}

	chapter := req.ToEntity()
	if err := h.chapterRepo.Create(c.Request.Context(), chapter); err != nil {
		logger.Error(c.Request.Context(), "failed to create chapter", err, "book_id", req.BookID)
		dto.InternalError(c, "Failed to create chapter")
		return
	}
	dto.Created(c, chapter)
}

// Update 更新章节，内容变更时字数自动重算
// @Summary 更新章节
// @Tags Chapters
// @Accept json
// @Produce json
// @Router /api/chapters/{id} [patch]
func (h *ChapterHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	chapter, err := h.chapterRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to load chapter", err, "chapter_id", id)
		dto.InternalError(c, "Failed to update chapter")
		return
	}
	if chapter == nil {
		dto.NotFound(c, "Chapter not found")
		return
	}

	var req dto.UpdateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "Invalid chapter data")
		return
	}

	req.Apply(chapter)
	if err := h.chapterRepo.Update(c.Request.Context(), chapter); err != nil {
		logger.Error(c.Request.Context(), "failed to update chapter", err, "chapter_id", id)
		dto.InternalError(c, "Failed to update chapter")
		return
	}
	dto.OK(c, chapter)
}

// Delete 删除章节
// @Summary 删除章节
// @Tags Chapters
// @Router /api/chapters/{id} [delete]
func (h *ChapterHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	chapter, err := h.chapterRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to load chapter", err, "chapter_id", id)
		dto.InternalError(c, "Failed to delete chapter")
		return
	}
	if chapter == nil {
		dto.NotFound(c, "Chapter not found")
		return
	}

	if err := h.chapterRepo.Delete(c.Request.Context(), id); err != nil {
		logger.Error(c.Request.Context(), "failed to delete chapter", err, "chapter_id", id)
		dto.InternalError(c, "Failed to delete chapter")
		return
	}
	dto.NoContent(c)
}
