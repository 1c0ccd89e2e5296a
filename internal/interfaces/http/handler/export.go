package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookforge-api/internal/application/export"
	"bookforge-api/internal/interfaces/http/dto"
	"bookforge-api/pkg/logger"
)

// ExportHandler 导出处理器
type ExportHandler struct {
	exporter *export.Service
}

// NewExportHandler 创建导出处理器
func NewExportHandler(exporter *export.Service) *ExportHandler {
	return &ExportHandler{exporter: exporter}
}

// PDF 导出 KDP 排版 PDF
// 文档先在内存中组装完成，保证失败时还能返回错误状态码
// @Summary 导出 KDP PDF
// @Tags Export
// @Produce application/pdf
// @Router /api/books/{id}/export-pdf [get]
func (h *ExportHandler) PDF(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var buf bytes.Buffer
	filename, err := h.exporter.ExportPDF(c.Request.Context(), id, &buf)
	if err != nil {
		logger.Error(c.Request.Context(), "pdf export failed", err, "book_id", id)
		dto.HandleError(c, err, "Failed to export KDP PDF")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// Project 导出项目 ZIP 包
// @Summary 导出项目包
// @Tags Export
// @Produce application/zip
// @Router /api/books/{id}/export-project [get]
func (h *ExportHandler) Project(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var buf bytes.Buffer
	filename, err := h.exporter.ExportProject(c.Request.Context(), id, &buf)
	if err != nil {
		logger.Error(c.Request.Context(), "project export failed", err, "book_id", id)
		dto.HandleError(c, err, "Failed to export KDP Package")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}
