package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"bookforge-api/internal/domain/entity"
	"bookforge-api/pkg/logger"
)

// KDP 平装 6x9 英寸排版常量（磅）
const (
	pageWidth  = 432.0
	pageHeight = 648.0

	marginTop    = 54.0
	marginBottom = 54.0
	marginLeft   = 54.0
	marginRight  = 36.0

	bodyFontSize  = 12.0
	bodyLineGap   = 4.0
	paragraphGap  = 12.0
	imageFitWidth = pageWidth - marginLeft - marginRight
	imageFitH     = 250.0
)

// writePDF 生成 KDP 排版 PDF
// 零章节的书也会产出仅含标题页等前置页的有效文档
func writePDF(ctx context.Context, w io.Writer, book *entity.Book, chapters []*entity.Chapter) error {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageWidth, Ht: pageHeight},
	})
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)

	writeTitlePage(pdf, book)
	writeCopyrightPage(pdf, book)
	if book.Dedication != "" {
		writeTextPage(pdf, "", book.Dedication, "C")
	}
	writeTOCPage(pdf, chapters)

	for _, chapter := range chapters {
		writeChapterPage(ctx, pdf, chapter)
	}

	if book.Conclusion != "" {
		writeTextPage(pdf, "Conclusion", book.Conclusion, "J")
	}
	if book.AuthorBio != "" {
		writeTextPage(pdf, "About the Author", book.AuthorBio, "J")
	}
	if book.TransparencyReport != "" {
		writeTextPage(pdf, "AI Transparency Report", book.TransparencyReport, "J")
	}

	return pdf.Output(w)
}

func writeTitlePage(pdf *gofpdf.Fpdf, book *entity.Book) {
	pdf.AddPage()
	pdf.Ln(96)

	pdf.SetFont("Helvetica", "B", 24)
	pdf.MultiCell(0, 30, book.Title, "", "C", false)

	if book.Subtitle != "" {
		pdf.Ln(12)
		pdf.SetFont("Helvetica", "I", 14)
		pdf.MultiCell(0, 18, book.Subtitle, "", "C", false)
	}

	pdf.Ln(48)
	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(0, 16, "by", "", "C", false)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.MultiCell(0, 18, book.AuthorName, "", "C", false)
}

func writeCopyrightPage(pdf *gofpdf.Fpdf, book *entity.Book) {
	pdf.AddPage()

	notice := book.Copyright
	if notice == "" {
		notice = fmt.Sprintf("© %d %s. All rights reserved.", time.Now().Year(), book.AuthorName)
	}

	// 版权声明置于页面下部
	pdf.SetY(pageHeight - marginBottom - 120)
	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(0, 12, notice, "", "L", false)
}

func writeTOCPage(pdf *gofpdf.Fpdf, chapters []*entity.Chapter) {
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 24, "Contents", "", "C", false)
	pdf.Ln(16)

	pdf.SetFont("Helvetica", "", 10)
	for _, chapter := range chapters {
		pdf.SetX(marginLeft + 20)
		pdf.MultiCell(0, 14, fmt.Sprintf("Chapter %d: %s", chapter.Order, chapter.Title), "", "L", false)
	}
}

func writeChapterPage(ctx context.Context, pdf *gofpdf.Fpdf, chapter *entity.Chapter) {
	pdf.AddPage()

	if chapter.ImageURL != "" {
		// 插图解码失败时跳过，不中断导出
		if err := placeChapterImage(pdf, chapter); err != nil {
			logger.Warn(ctx, "skipping chapter image in PDF", "chapter_id", chapter.ID, "error", err)
		}
	}

	pdf.Ln(16)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.MultiCell(0, 28, fmt.Sprintf("Chapter %d", chapter.Order), "", "C", false)
	pdf.SetFont("Helvetica", "", 16)
	pdf.MultiCell(0, 20, chapter.Title, "", "C", false)
	pdf.Ln(24)

	if chapter.Content == "" {
		return
	}

	pdf.SetFont("Times", "", bodyFontSize)
	pdf.SetTextColor(0, 0, 0)
	for _, paragraph := range splitParagraphs(chapter.Content) {
		pdf.MultiCell(0, bodyFontSize+bodyLineGap, paragraph, "", "J", false)
		pdf.Ln(paragraphGap)
	}
}

func writeTextPage(pdf *gofpdf.Fpdf, heading, body, align string) {
	pdf.AddPage()

	if heading != "" {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.MultiCell(0, 18, heading, "", "C", false)
		pdf.Ln(16)
	}

	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 14, body, "", align, false)
}

// placeChapterImage 解码 data URL 插图并按边距与高度上限等比缩放后居中放置
func placeChapterImage(pdf *gofpdf.Fpdf, chapter *entity.Chapter) error {
	imageType, data, err := decodeDataURL(chapter.ImageURL)
	if err != nil {
		return err
	}

	// 先校验图片数据，损坏的图片一旦注册会使整个文档进入错误态
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("invalid image data: %w", err)
	}

	name := fmt.Sprintf("chapter-%d", chapter.ID)
	opts := gofpdf.ImageOptions{ImageType: imageType, ReadDpi: false}
	info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if pdf.Err() {
		return pdf.Error()
	}

	scale := imageFitWidth / info.Width()
	if h := imageFitH / info.Height(); h < scale {
		scale = h
	}
	if scale > 1 {
		scale = 1
	}
	imgW := info.Width() * scale
	imgH := info.Height() * scale

	x := marginLeft + (imageFitWidth-imgW)/2
	y := pdf.GetY()
	pdf.ImageOptions(name, x, y, imgW, imgH, false, opts, 0, "")
	pdf.SetY(y + imgH + paragraphGap)
	return nil
}

// decodeDataURL 解析 data:image/<type>;base64,<payload> 形式的内联图片
func decodeDataURL(s string) (imageType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(s, "data:image/")
	if !ok {
		return "", nil, fmt.Errorf("not an inline image data URL")
	}
	mediaType, payload, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return "", nil, fmt.Errorf("unsupported data URL encoding")
	}

	switch mediaType {
	case "png":
		imageType = "PNG"
	case "jpeg", "jpg":
		imageType = "JPG"
	default:
		return "", nil, fmt.Errorf("unsupported image type %q", mediaType)
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode image payload: %w", err)
	}
	return imageType, data, nil
}

// splitParagraphs 按空行拆分正文段落，丢弃空段
func splitParagraphs(content string) []string {
	blocks := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n")
	paragraphs := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if trimmed := strings.TrimSpace(block); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return paragraphs
}
