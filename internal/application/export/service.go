// Package export 提供书稿导出（KDP PDF 与项目 ZIP 包）
package export

import (
	"context"
	"io"
	"regexp"
	"sort"
	"time"

	"bookforge-api/internal/domain/entity"
	"bookforge-api/internal/domain/repository"
	apperrors "bookforge-api/pkg/errors"
	"bookforge-api/pkg/logger"
	"bookforge-api/pkg/metrics"
	"bookforge-api/pkg/tracer"
)

var filenamePattern = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Service 导出服务
type Service struct {
	bookRepo    repository.BookRepository
	chapterRepo repository.ChapterRepository
}

// NewService 创建导出服务
func NewService(bookRepo repository.BookRepository, chapterRepo repository.ChapterRepository) *Service {
	return &Service{
		bookRepo:    bookRepo,
		chapterRepo: chapterRepo,
	}
}

// ExportPDF 导出 KDP 排版 PDF，写入 w 并返回附件文件名
func (s *Service) ExportPDF(ctx context.Context, bookID int, w io.Writer) (string, error) {
	ctx, span := tracer.Start(ctx, "export.ExportPDF")
	defer span.End()

	start := time.Now()
	book, chapters, err := s.load(ctx, bookID)
	if err != nil {
		observeExport("pdf", start, err)
		return "", err
	}

	err = writePDF(ctx, w, book, chapters)
	observeExport("pdf", start, err)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeExportFailed, "failed to export PDF")
	}

	logger.Info(ctx, "pdf exported", "book_id", book.ID, "chapters", len(chapters))
	return SanitizeFilename(book.Title) + "_KDP_6x9.pdf", nil
}

// ExportProject 导出项目 ZIP 包，写入 w 并返回附件文件名
func (s *Service) ExportProject(ctx context.Context, bookID int, w io.Writer) (string, error) {
	ctx, span := tracer.Start(ctx, "export.ExportProject")
	defer span.End()

	start := time.Now()
	book, chapters, err := s.load(ctx, bookID)
	if err != nil {
		observeExport("zip", start, err)
		return "", err
	}

	err = writeProjectZIP(ctx, w, book, chapters)
	observeExport("zip", start, err)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeExportFailed, "failed to export project package")
	}

	logger.Info(ctx, "project package exported", "book_id", book.ID, "chapters", len(chapters))
	return SanitizeFilename(book.Title) + "_KDP_Package.zip", nil
}

func (s *Service) load(ctx context.Context, bookID int) (*entity.Book, []*entity.Chapter, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load book")
	}
	if book == nil {
		return nil, nil, apperrors.ErrBookNotFound
	}

	chapters, err := s.chapterRepo.ListByBook(ctx, bookID)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load chapters")
	}

	// 仓储已按 order 返回，这里再稳定排序一次以容忍重复编号
	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].Order < chapters[j].Order
	})
	return book, chapters, nil
}

// SanitizeFilename 将非字母数字字符替换为下划线
func SanitizeFilename(s string) string {
	return filenamePattern.ReplaceAllString(s, "_")
}

func observeExport(format string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ExportTotal.WithLabelValues(format, status).Inc()
	metrics.ExportDuration.WithLabelValues(format).Observe(time.Since(start).Seconds())
}
