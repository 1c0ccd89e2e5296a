package dto

import (
	"bookforge-api/internal/domain/entity"
)

// CreateBookRequest 创建书籍请求
type CreateBookRequest struct {
	Title           string   `json:"title" binding:"required"`
	Subtitle        string   `json:"subtitle"`
	AuthorName      string   `json:"authorName" binding:"required"`
	Language        string   `json:"language"`
	Category        string   `json:"category"`
	TargetAudience  string   `json:"targetAudience"`
	ToneStyle       string   `json:"toneStyle"`
	POV             string   `json:"pov"`
	MinWordCount    int      `json:"minWordCount"`
	TargetChapters  int      `json:"targetChapters"`
	WordsPerChapter int      `json:"wordsPerChapter"`
	TrimSize        string   `json:"trimSize"`
	PaperType       string   `json:"paperType"`
	HasBleed        bool     `json:"hasBleed"`
	CoverFinish     string   `json:"coverFinish"`
	Outline         string   `json:"outline"`
	Keywords        []string `json:"keywords"`
}

// ToEntity 转换为领域实体
func (r *CreateBookRequest) ToEntity() *entity.Book {
	book := &entity.Book{
		Title:           r.Title,
		Subtitle:        r.Subtitle,
		AuthorName:      r.AuthorName,
		Language:        r.Language,
		Category:        r.Category,
		TargetAudience:  r.TargetAudience,
		ToneStyle:       r.ToneStyle,
		POV:             r.POV,
		MinWordCount:    r.MinWordCount,
		TargetChapters:  r.TargetChapters,
		WordsPerChapter: r.WordsPerChapter,
		TrimSize:        r.TrimSize,
		PaperType:       r.PaperType,
		HasBleed:        r.HasBleed,
		CoverFinish:     r.CoverFinish,
		Outline:         r.Outline,
		Keywords:        r.Keywords,
		IsKdpCompliant:  true,
	}
	if book.Language == "" {
		book.Language = "English"
	}
	return book
}

// UpdateBookRequest 更新书籍请求，未出现的字段保持原值
type UpdateBookRequest struct {
	Title              *string   `json:"title"`
	Subtitle           *string   `json:"subtitle"`
	AuthorName         *string   `json:"authorName"`
	Language           *string   `json:"language"`
	Category           *string   `json:"category"`
	TargetAudience     *string   `json:"targetAudience"`
	ToneStyle          *string   `json:"toneStyle"`
	POV                *string   `json:"pov"`
	MinWordCount       *int      `json:"minWordCount"`
	TargetChapters     *int      `json:"targetChapters"`
	WordsPerChapter    *int      `json:"wordsPerChapter"`
	TrimSize           *string   `json:"trimSize"`
	PaperType          *string   `json:"paperType"`
	HasBleed           *bool     `json:"hasBleed"`
	CoverFinish        *string   `json:"coverFinish"`
	Outline            *string   `json:"outline"`
	AuthorBio          *string   `json:"authorBio"`
	Conclusion         *string   `json:"conclusion"`
	Dedication         *string   `json:"dedication"`
	Copyright          *string   `json:"copyright"`
	Keywords           *[]string `json:"keywords"`
	CoverImageURL      *string   `json:"coverImageUrl"`
	IsKdpCompliant     *bool     `json:"isKdpCompliant"`
	TransparencyReport *string   `json:"transparencyReport"`
}

// Apply 将非空字段套用到实体上
func (r *UpdateBookRequest) Apply(book *entity.Book) {
	if r.Title != nil {
		book.Title = *r.Title
	}
	if r.Subtitle != nil {
		book.Subtitle = *r.Subtitle
	}
	if r.AuthorName != nil {
		book.AuthorName = *r.AuthorName
	}
	if r.Language != nil {
		book.Language = *r.Language
	}
	if r.Category != nil {
		book.Category = *r.Category
	}
	if r.TargetAudience != nil {
		book.TargetAudience = *r.TargetAudience
	}
	if r.ToneStyle != nil {
		book.ToneStyle = *r.ToneStyle
	}
	if r.POV != nil {
		book.POV = *r.POV
	}
	if r.MinWordCount != nil {
		book.MinWordCount = *r.MinWordCount
	}
	if r.TargetChapters != nil {
		book.TargetChapters = *r.TargetChapters
	}
	if r.WordsPerChapter != nil {
		book.WordsPerChapter = *r.WordsPerChapter
	}
	if r.TrimSize != nil {
		book.TrimSize = *r.TrimSize
	}
	if r.PaperType != nil {
		book.PaperType = *r.PaperType
	}
	if r.HasBleed != nil {
		book.HasBleed = *r.HasBleed
	}
	if r.CoverFinish != nil {
		book.CoverFinish = *r.CoverFinish
	}
	if r.Outline != nil {
		book.Outline = *r.Outline
	}
	if r.AuthorBio != nil {
		book.AuthorBio = *r.AuthorBio
	}
	if r.Conclusion != nil {
		book.Conclusion = *r.Conclusion
	}
	if r.Dedication != nil {
		book.Dedication = *r.Dedication
	}
	if r.Copyright != nil {
		book.Copyright = *r.Copyright
	}
	if r.Keywords != nil {
		book.Keywords = *r.Keywords
	}
	if r.CoverImageURL != nil {
		book.CoverImageURL = *r.CoverImageURL
	}
	if r.IsKdpCompliant != nil {
		book.IsKdpCompliant = *r.IsKdpCompliant
	}
	if r.TransparencyReport != nil {
		book.TransparencyReport = *r.TransparencyReport
	}
}
