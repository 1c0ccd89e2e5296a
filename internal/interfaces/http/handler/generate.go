package handler

import (
	"github.com/gin-gonic/gin"

	"bookforge-api/internal/application/generate"
	"bookforge-api/internal/interfaces/http/dto"
	"bookforge-api/pkg/logger"
)

// GenerateHandler AI 生成处理器
type GenerateHandler struct {
	orchestrator *generate.Orchestrator
}

// NewGenerateHandler 创建 AI 生成处理器
func NewGenerateHandler(orchestrator *generate.Orchestrator) *GenerateHandler {
	return &GenerateHandler{orchestrator: orchestrator}
}

// Outline 生成书籍大纲与章节骨架
// @Summary 生成大纲
// @Tags AI
// @Accept json
// @Produce json
// @Router /api/ai/generate-outline [post]
func (h *GenerateHandler) Outline(c *gin.Context) {
	var req dto.GenerateOutlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "Invalid request")
		return
	}

	result, err := h.orchestrator.GenerateOutline(c.Request.Context(), req.BookID, req.Model)
	if err != nil {
		logger.Error(c.Request.Context(), "outline generation failed", err, "book_id", req.BookID)
		dto.HandleError(c, err, "Failed to generate outline")
		return
	}
	dto.OK(c, dto.GenerateOutlineResponse{
		Outline:  result.Outline,
		Chapters: result.Chapters,
	})
}

// Chapter 生成章节正文
// @Summary 生成章节
// @Tags AI
// @Accept json
// @Produce json
// @Router /api/ai/generate-chapter [post]
func (h *GenerateHandler) Chapter(c *gin.Context) {
	var req dto.GenerateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "Invalid request")
		return
	}

	result, err := h.orchestrator.GenerateChapter(c.Request.Context(), req.ChapterID, req.Model, req.Context)
	if err != nil {
		logger.Error(c.Request.Context(), "chapter generation failed", err, "chapter_id", req.ChapterID)
		dto.HandleError(c, err, "Failed to generate chapter")
		return
	}
	dto.OK(c, dto.GenerateChapterResponse{
		Content:    result.Content,
		Compliance: result.Compliance,
	})
}

// ChapterImage 生成章节插图，确认后由章节更新接口写入
// @Summary 生成章节插图
// @Tags AI
// @Accept json
// @Produce json
// @Router /api/ai/generate-chapter-image [post]
func (h *GenerateHandler) ChapterImage(c *gin.Context) {
	var req dto.GenerateChapterImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "Invalid request")
		return
	}

	imageURL, err := h.orchestrator.GenerateChapterImage(c.Request.Context(), req.ChapterID)
	if err != nil {
		logger.Error(c.Request.Context(), "chapter image generation failed", err, "chapter_id", req.ChapterID)
		dto.HandleError(c, err, "Failed to generate chapter image")
		return
	}
	dto.OK(c, dto.ImageResponse{ImageURL: imageURL})
}

// Cover 生成书籍封面，确认后由书籍更新接口写入
// @Summary 生成封面
// @Tags AI
// @Accept json
// @Produce json
// @Router /api/ai/generate-cover [post]
func (h *GenerateHandler) Cover(c *gin.Context) {
	var req dto.GenerateCoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "Invalid request")
		return
	}

	imageURL, err := h.orchestrator.GenerateCover(c.Request.Context(), req.BookID)
	if err != nil {
		logger.Error(c.Request.Context(), "cover generation failed", err, "book_id", req.BookID)
		dto.HandleError(c, err, "Failed to generate cover")
		return
	}
	dto.OK(c, dto.ImageResponse{ImageURL: imageURL})
}

// Keywords 生成 Amazon SEO 关键词
// @Summary 生成关键词
// @Tags AI
// @Accept json
// @Produce json
// @Router /api/ai/generate-keywords [post]
func (h *GenerateHandler) Keywords(c *gin.Context) {
	var req dto.GenerateKeywordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "Invalid request")
		return
	}

	keywords, err := h.orchestrator.GenerateKeywords(c.Request.Context(), req.BookID, req.Model)
	if err != nil {
		logger.Error(c.Request.Context(), "keywords generation failed", err, "book_id", req.BookID)
		dto.HandleError(c, err, "Failed to generate keywords")
		return
	}
	dto.OK(c, dto.GenerateKeywordsResponse{Keywords: keywords})
}

// Rearchitect 重建书籍的章节骨架
// @Summary 重建章节骨架
// @Tags AI
// @Accept json
// @Produce json
// @Router /api/books/{id}/rearchitect [post]
func (h *GenerateHandler) Rearchitect(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	// 请求体可省略
	var req dto.RearchitectRequest
	_ = c.ShouldBindJSON(&req)

	chapters, err := h.orchestrator.Rearchitect(c.Request.Context(), id, req.Model)
	if err != nil {
		logger.Error(c.Request.Context(), "rearchitect failed", err, "book_id", id)
		dto.HandleError(c, err, "Architecting failed")
		return
	}
	dto.OK(c, chapters)
}
