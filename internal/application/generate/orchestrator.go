package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bookforge-api/internal/config"
	"bookforge-api/internal/domain/entity"
	"bookforge-api/internal/domain/repository"
	"bookforge-api/internal/workflow/prompt"
	apperrors "bookforge-api/pkg/errors"
	"bookforge-api/pkg/logger"
	"bookforge-api/pkg/metrics"
	"bookforge-api/pkg/tracer"
)

const defaultTargetChapters = 10

// Orchestrator 生成编排器
// 负责大纲、章节、关键词与图像的生成流程及持久化
type Orchestrator struct {
	bookRepo    repository.BookRepository
	chapterRepo repository.ChapterRepository
	tx          repository.Transactor
	textFactory TextGeneratorFactory
	imageGen    ImageGenerator
	prompts     *prompt.Registry
	features    config.FeaturesConfig
}

// NewOrchestrator 创建生成编排器
func NewOrchestrator(
	bookRepo repository.BookRepository,
	chapterRepo repository.ChapterRepository,
	tx repository.Transactor,
	textFactory TextGeneratorFactory,
	imageGen ImageGenerator,
	prompts *prompt.Registry,
	features config.FeaturesConfig,
) *Orchestrator {
	return &Orchestrator{
		bookRepo:    bookRepo,
		chapterRepo: chapterRepo,
		tx:          tx,
		textFactory: textFactory,
		imageGen:    imageGen,
		prompts:     prompts,
		features:    features,
	}
}

// ChapterSummary 大纲生成返回的章节摘要
type ChapterSummary struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// OutlineResult 大纲生成结果
type OutlineResult struct {
	Outline  string           `json:"outline"`
	Chapters []ChapterSummary `json:"chapters"`
}

// Compliance KDP 合规检查结果
type Compliance struct {
	IsCompliant        bool     `json:"isCompliant"`
	Violations         []string `json:"violations"`
	TransparencyReport string   `json:"transparencyReport"`
}

// ChapterResult 章节生成结果
type ChapterResult struct {
	Content    string     `json:"content"`
	Compliance Compliance `json:"compliance"`
}

// outlinePayload Provider 返回的大纲 JSON 结构
// beatSheet 字段允许字符串或字符串数组两种形态
type outlinePayload struct {
	Outline    string `json:"outline"`
	AuthorBio  string `json:"authorBio"`
	Conclusion string `json:"conclusion"`
	Dedication string `json:"dedication"`
	Copyright  string `json:"copyright"`
	Chapters   []struct {
		Title     string `json:"title"`
		Summary   string `json:"summary"`
		BeatSheet any    `json:"beatSheet"`
	} `json:"chapters"`
}

// GenerateOutline 为书籍生成大纲与章节骨架
// 前置信息持久化到 Book，章节按返回顺序重编号为 1..N
func (o *Orchestrator) GenerateOutline(ctx context.Context, bookID int, provider string) (*OutlineResult, error) {
	ctx, span := tracer.Start(ctx, "orchestrator.GenerateOutline")
	defer span.End()

	start := time.Now()
	result, err := o.generateOutline(ctx, bookID, provider, false)
	observeGeneration("outline", start, err)
	if err == nil {
		metrics.GenerationWordCount.WithLabelValues("outline").Observe(float64(entity.CountWords(result.Outline)))
	}
	return result, err
}

// Rearchitect 重建书籍的章节骨架
// 删除现有章节后按新大纲重新创建，删除与创建在同一事务中
func (o *Orchestrator) Rearchitect(ctx context.Context, bookID int, provider string) ([]*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "orchestrator.Rearchitect")
	defer span.End()

	start := time.Now()
	_, err := o.generateOutline(ctx, bookID, provider, true)
	observeGeneration("outline", start, err)
	if err != nil {
		return nil, err
	}

	chapters, err := o.chapterRepo.ListByBook(ctx, bookID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list chapters")
	}
	return chapters, nil
}

// EnsureBootstrapped 对配置指定的书籍，在章节为空时触发一次大纲生成
// 判定与生成在同一事务中，避免并发请求重复建章
func (o *Orchestrator) EnsureBootstrapped(ctx context.Context, bookID int) error {
	if !o.features.Bootstrap.Enabled || bookID != o.features.Bootstrap.BookID {
		return nil
	}

	ctx, span := tracer.Start(ctx, "orchestrator.EnsureBootstrapped")
	defer span.End()

	return o.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		count, err := o.chapterRepo.CountByBook(txCtx, bookID)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to count chapters")
		}
		if count > 0 {
			return nil
		}

		logger.Info(txCtx, "bootstrapping chapters for configured book", "book_id", bookID)
		start := time.Now()
		_, err = o.generateOutline(txCtx, bookID, "", false)
		observeGeneration("outline", start, err)
		return err
	})
}

func (o *Orchestrator) generateOutline(ctx context.Context, bookID int, provider string, clearExisting bool) (*OutlineResult, error) {
	book, err := o.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load book")
	}
	if book == nil {
		return nil, apperrors.ErrBookNotFound
	}

	gen, err := o.textFactory(ctx, provider)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeLLMProviderError, "failed to resolve provider")
	}

	targetChapters := book.TargetChapters
	if targetChapters <= 0 {
		targetChapters = defaultTargetChapters
	}

	msgs, err := o.prompts.Render(ctx, prompt.PromptOutlineV1, map[string]any{
		"target_chapters": targetChapters,
		"title":           book.Title,
		"category":        book.Category,
		"tone_style":      book.ToneStyle,
		"target_audience": book.TargetAudience,
		"pov":             book.POV,
		"language":        book.Language,
		"author_name":     book.AuthorName,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "failed to render outline prompt")
	}

	raw, err := gen.Generate(ctx, msgs)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeLLMCallFailed, "outline generation call failed")
	}

	var payload outlinePayload
	if err := json.Unmarshal([]byte(ExtractJSONObject(raw)), &payload); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "outline response is not valid JSON")
	}
	if payload.Outline == "" && len(payload.Chapters) == 0 {
		return nil, apperrors.New(apperrors.CodeGenerationFailed, "outline response missing outline and chapters")
	}

	book.Outline = payload.Outline
	book.AuthorBio = payload.AuthorBio
	book.Conclusion = payload.Conclusion
	book.Dedication = payload.Dedication
	book.Copyright = payload.Copyright
	book.SplitTitle()

	result := &OutlineResult{Outline: payload.Outline}

	err = o.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if clearExisting {
			if err := o.chapterRepo.DeleteByBook(txCtx, book.ID); err != nil {
				return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to clear chapters")
			}
		}
		if err := o.bookRepo.Update(txCtx, book); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update book")
		}

		// Provider 返回的章节顺序即为权威顺序，重编号为 1..N
		for i, chap := range payload.Chapters {
			chapter := &entity.Chapter{
				BookID:    book.ID,
				Title:     chap.Title,
				Summary:   chap.Summary,
				BeatSheet: beatSheetText(chap.BeatSheet),
				Order:     i + 1,
			}
			if err := o.chapterRepo.Create(txCtx, chapter); err != nil {
				return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create chapter")
			}
			result.Chapters = append(result.Chapters, ChapterSummary{
				Title:   chapter.Title,
				Summary: chapter.Summary,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "outline generated",
		"book_id", book.ID,
		"chapters", len(result.Chapters),
	)
	return result, nil
}

// chapterDraftPayload 单次返回即包含内容与合规信息的 JSON 形态
type chapterDraftPayload struct {
	Content    string      `json:"content"`
	Compliance *Compliance `json:"compliance"`
}

// GenerateChapter 生成章节正文
// 三段链路：草稿、润色（可选）、合规检查（可选），最终内容与合规状态持久化
func (o *Orchestrator) GenerateChapter(ctx context.Context, chapterID int, provider, extraContext string) (*ChapterResult, error) {
	ctx, span := tracer.Start(ctx, "orchestrator.GenerateChapter")
	defer span.End()

	start := time.Now()
	result, err := o.generateChapter(ctx, chapterID, provider, extraContext)
	observeGeneration("chapter", start, err)
	if err == nil {
		metrics.GenerationWordCount.WithLabelValues("chapter").Observe(float64(entity.CountWords(result.Content)))
	}
	return result, err
}

func (o *Orchestrator) generateChapter(ctx context.Context, chapterID int, provider, extraContext string) (*ChapterResult, error) {
	chapter, err := o.chapterRepo.GetByID(ctx, chapterID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load chapter")
	}
	if chapter == nil {
		return nil, apperrors.ErrChapterNotFound
	}

	book, err := o.bookRepo.GetByID(ctx, chapter.BookID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load book")
	}
	if book == nil {
		return nil, apperrors.ErrBookNotFound
	}

	gen, err := o.textFactory(ctx, provider)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeLLMProviderError, "failed to resolve provider")
	}

	content, compliance, err := o.draftChapter(ctx, gen, book, chapter, extraContext)
	if err != nil {
		return nil, err
	}

	if o.features.Generation.Refine {
		content, err = o.refineChapter(ctx, gen, book, chapter, content)
		if err != nil {
			return nil, err
		}
	}

	if compliance == nil && o.features.Generation.ComplianceCheck {
		compliance, err = o.checkCompliance(ctx, gen, content)
		if err != nil {
			return nil, err
		}
	}
	if compliance == nil {
		compliance = permissiveCompliance("Self-validated.")
	}

	chapter.SetContent(content)
	book.IsKdpCompliant = compliance.IsCompliant
	book.TransparencyReport = compliance.TransparencyReport

	err = o.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := o.chapterRepo.Update(txCtx, chapter); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update chapter")
		}
		if err := o.bookRepo.Update(txCtx, book); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update book")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "chapter generated",
		"chapter_id", chapter.ID,
		"book_id", book.ID,
		"word_count", chapter.WordCount,
		"is_compliant", compliance.IsCompliant,
	)
	return &ChapterResult{Content: content, Compliance: *compliance}, nil
}

// draftChapter 草稿阶段
// Provider 偶尔会无视指令返回 {content, compliance} 形态的 JSON，
// 能解析出 content 时采纳，否则整段输出按纯文本正文处理
func (o *Orchestrator) draftChapter(ctx context.Context, gen TextGenerator, book *entity.Book, chapter *entity.Chapter, extraContext string) (string, *Compliance, error) {
	wordsPerChapter := book.WordsPerChapter
	if wordsPerChapter <= 0 {
		wordsPerChapter = 2500
	}

	extra := ""
	if extraContext != "" {
		extra = "- Extra Context: " + extraContext + "\n"
	}

	msgs, err := o.prompts.Render(ctx, prompt.PromptChapterDraftV1, map[string]any{
		"chapter_order":     chapter.Order,
		"chapter_title":     chapter.Title,
		"book_title":        book.Title,
		"category":          book.Category,
		"tone_style":        book.ToneStyle,
		"summary":           chapter.Summary,
		"beat_sheet":        chapter.BeatSheet,
		"extra_context":     extra,
		"words_per_chapter": wordsPerChapter,
	})
	if err != nil {
		return "", nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "failed to render draft prompt")
	}

	raw, err := gen.Generate(ctx, msgs)
	if err != nil {
		return "", nil, apperrors.Wrap(err, apperrors.CodeLLMCallFailed, "chapter draft call failed")
	}

	var payload chapterDraftPayload
	if err := json.Unmarshal([]byte(ExtractJSONObject(raw)), &payload); err == nil && payload.Content != "" {
		return payload.Content, payload.Compliance, nil
	}

	// 纯文本降级：整段输出即正文
	return strings.TrimSpace(raw), nil, nil
}

// refineChapter 润色阶段
func (o *Orchestrator) refineChapter(ctx context.Context, gen TextGenerator, book *entity.Book, chapter *entity.Chapter, draft string) (string, error) {
	msgs, err := o.prompts.Render(ctx, prompt.PromptChapterRefineV1, map[string]any{
		"chapter_order": chapter.Order,
		"chapter_title": chapter.Title,
		"book_title":    book.Title,
		"tone_style":    book.ToneStyle,
		"draft":         draft,
	})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeGenerationFailed, "failed to render refine prompt")
	}

	refined, err := gen.Generate(ctx, msgs)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeLLMCallFailed, "chapter refine call failed")
	}

	refined = strings.TrimSpace(refined)
	if refined == "" {
		return draft, nil
	}
	return refined, nil
}

// checkCompliance 合规检查阶段
// 检查结果解析失败时按合规放行，不阻塞已生成的正文
func (o *Orchestrator) checkCompliance(ctx context.Context, gen TextGenerator, content string) (*Compliance, error) {
	msgs, err := o.prompts.Render(ctx, prompt.PromptComplianceCheckV1, map[string]any{
		"content": content,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "failed to render compliance prompt")
	}

	raw, err := gen.Generate(ctx, msgs)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeLLMCallFailed, "compliance check call failed")
	}

	var compliance Compliance
	if err := json.Unmarshal([]byte(ExtractJSONObject(raw)), &compliance); err != nil {
		logger.Warn(ctx, "compliance response is not valid JSON, passing through", "error", err)
		return permissiveCompliance("Raw text generated."), nil
	}
	if compliance.Violations == nil {
		compliance.Violations = []string{}
	}
	return &compliance, nil
}

// GenerateKeywords 生成 Amazon SEO 关键词并持久化
func (o *Orchestrator) GenerateKeywords(ctx context.Context, bookID int, provider string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "orchestrator.GenerateKeywords")
	defer span.End()

	start := time.Now()
	keywords, err := o.generateKeywords(ctx, bookID, provider)
	observeGeneration("keywords", start, err)
	return keywords, err
}

func (o *Orchestrator) generateKeywords(ctx context.Context, bookID int, provider string) ([]string, error) {
	book, err := o.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load book")
	}
	if book == nil {
		return nil, apperrors.ErrBookNotFound
	}

	gen, err := o.textFactory(ctx, provider)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeLLMProviderError, "failed to resolve provider")
	}

	msgs, err := o.prompts.Render(ctx, prompt.PromptKeywordsV1, map[string]any{
		"title":           book.Title,
		"category":        book.Category,
		"target_audience": book.TargetAudience,
		"outline":         book.Outline,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "failed to render keywords prompt")
	}

	raw, err := gen.Generate(ctx, msgs)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeLLMCallFailed, "keywords generation call failed")
	}

	var payload struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(ExtractJSONObject(raw)), &payload); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "keywords response is not valid JSON")
	}
	if len(payload.Keywords) == 0 {
		return nil, apperrors.New(apperrors.CodeGenerationFailed, "keywords response is empty")
	}

	book.Keywords = payload.Keywords
	if err := o.bookRepo.Update(ctx, book); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update book")
	}

	logger.Info(ctx, "keywords generated", "book_id", book.ID, "count", len(payload.Keywords))
	return payload.Keywords, nil
}

// GenerateChapterImage 为章节生成插图，返回 data URL
// 不自动持久化，由调用方在确认后通过章节更新接口写入
func (o *Orchestrator) GenerateChapterImage(ctx context.Context, chapterID int) (string, error) {
	ctx, span := tracer.Start(ctx, "orchestrator.GenerateChapterImage")
	defer span.End()

	start := time.Now()
	url, err := o.generateChapterImage(ctx, chapterID)
	observeGeneration("chapter_image", start, err)
	return url, err
}

func (o *Orchestrator) generateChapterImage(ctx context.Context, chapterID int) (string, error) {
	chapter, err := o.chapterRepo.GetByID(ctx, chapterID)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load chapter")
	}
	if chapter == nil {
		return "", apperrors.ErrChapterNotFound
	}

	book, err := o.bookRepo.GetByID(ctx, chapter.BookID)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load book")
	}
	if book == nil {
		return "", apperrors.ErrBookNotFound
	}

	theme := chapter.Summary
	if theme == "" {
		theme = chapter.Title
	}

	imagePrompt, err := o.prompts.RenderText(ctx, prompt.PromptChapterImageV1, map[string]any{
		"chapter_title": chapter.Title,
		"category":      book.Category,
		"theme":         theme,
	})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeGenerationFailed, "failed to render image prompt")
	}

	b64, err := o.imageGen.Generate(ctx, imagePrompt)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeImageGenFailed, "chapter image generation failed")
	}

	return dataURL(b64), nil
}

// GenerateCover 生成书籍封面，返回 data URL
// 不自动持久化，由调用方在确认后通过书籍更新接口写入
func (o *Orchestrator) GenerateCover(ctx context.Context, bookID int) (string, error) {
	ctx, span := tracer.Start(ctx, "orchestrator.GenerateCover")
	defer span.End()

	start := time.Now()
	url, err := o.generateCover(ctx, bookID)
	observeGeneration("cover", start, err)
	return url, err
}

func (o *Orchestrator) generateCover(ctx context.Context, bookID int) (string, error) {
	book, err := o.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load book")
	}
	if book == nil {
		return "", apperrors.ErrBookNotFound
	}

	outline := book.Outline
	if outline == "" {
		outline = "A compelling story"
	}

	imagePrompt, err := o.prompts.RenderText(ctx, prompt.PromptCoverV1, map[string]any{
		"title":       book.Title,
		"author_name": book.AuthorName,
		"category":    book.Category,
		"tone_style":  book.ToneStyle,
		"outline":     outline,
	})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeGenerationFailed, "failed to render cover prompt")
	}

	b64, err := o.imageGen.Generate(ctx, imagePrompt)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeImageGenFailed, "cover generation failed")
	}

	return dataURL(b64), nil
}

func permissiveCompliance(report string) *Compliance {
	return &Compliance{
		IsCompliant:        true,
		Violations:         []string{},
		TransparencyReport: report,
	}
}

func dataURL(b64 string) string {
	return fmt.Sprintf("data:image/png;base64,%s", b64)
}

// beatSheetText 归一化 beatSheet 字段：字符串数组按行拼接
func beatSheetText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	default:
		return ""
	}
}

func observeGeneration(kind string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.GenerationTotal.WithLabelValues(kind, status).Inc()
	metrics.GenerationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
