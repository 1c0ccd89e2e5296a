package export

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"bookforge-api/internal/domain/entity"
	"bookforge-api/pkg/logger"
)

// writeProjectZIP 生成项目 ZIP 包并流式写入 w
// manuscript.txt 始终存在，零章节时仅含书籍头部
func writeProjectZIP(ctx context.Context, w io.Writer, book *entity.Book, chapters []*entity.Chapter) error {
	zw := zip.NewWriter(w)

	if err := addZipFile(zw, "manuscript.txt", []byte(buildManuscript(book, chapters))); err != nil {
		return err
	}

	chapterData, err := json.MarshalIndent(chapters, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal chapter data: %w", err)
	}
	if err := addZipFile(zw, "chapter_data.json", chapterData); err != nil {
		return err
	}

	if err := addZipFile(zw, "metadata_pack.txt", []byte(buildMetadataPack(book))); err != nil {
		return err
	}

	bible, err := json.MarshalIndent(map[string]any{
		"title":              book.Title,
		"transparencyReport": book.TransparencyReport,
		"isKdpCompliant":     book.IsKdpCompliant,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal series bible: %w", err)
	}
	if err := addZipFile(zw, "series_bible.json", bible); err != nil {
		return err
	}

	// 封面为内联 base64 图片时附带 cover.png，解码失败不中断导出
	if book.CoverImageURL != "" {
		if _, data, err := decodeDataURL(book.CoverImageURL); err == nil {
			if err := addZipFile(zw, "cover.png", data); err != nil {
				return err
			}
		} else {
			logger.Warn(ctx, "skipping cover in project package", "book_id", book.ID, "error", err)
		}
	}

	return zw.Close()
}

func addZipFile(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write zip entry %s: %w", name, err)
	}
	return nil
}

func buildManuscript(book *entity.Book, chapters []*entity.Chapter) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n%s\nBy %s\n\n", book.Title, book.Subtitle, book.AuthorName)
	for _, chapter := range chapters {
		fmt.Fprintf(&sb, "CHAPTER %d: %s\n\n%s\n\n", chapter.Order, chapter.Title, chapter.Content)
	}
	return sb.String()
}

func buildMetadataPack(book *entity.Book) string {
	return fmt.Sprintf("Title: %s\nKeywords: %s\nBlurb: %s\n",
		book.Title,
		strings.Join(book.Keywords, ", "),
		book.Outline,
	)
}
