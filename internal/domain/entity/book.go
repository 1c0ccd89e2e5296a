// Package entity 定义领域实体
package entity

import (
	"strings"
	"time"
)

// Book 书籍项目实体
type Book struct {
	ID             int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Title          string `json:"title" gorm:"type:varchar(255);not null"`
	Subtitle       string `json:"subtitle,omitempty" gorm:"type:varchar(255)"`
	AuthorName     string `json:"authorName" gorm:"type:varchar(255);not null"`
	Language       string `json:"language" gorm:"type:varchar(50);default:'English'"`
	Category       string `json:"category" gorm:"type:varchar(100)"`
	TargetAudience string `json:"targetAudience" gorm:"type:varchar(100)"`
	ToneStyle      string `json:"toneStyle" gorm:"type:varchar(100)"`
	POV            string `json:"pov" gorm:"column:pov;type:varchar(100)"`

	// 写作目标（作者设定，不做强约束）
	MinWordCount    int `json:"minWordCount"`
	TargetChapters  int `json:"targetChapters" gorm:"default:10"`
	WordsPerChapter int `json:"wordsPerChapter" gorm:"default:2000"`

	// KDP 印刷属性
	TrimSize    string `json:"trimSize,omitempty" gorm:"type:varchar(20)"`
	PaperType   string `json:"paperType,omitempty" gorm:"type:varchar(50)"`
	HasBleed    bool   `json:"hasBleed" gorm:"default:false"`
	CoverFinish string `json:"coverFinish,omitempty" gorm:"type:varchar(50)"`

	// 生成内容字段
	Outline       string   `json:"outline,omitempty" gorm:"type:text"`
	AuthorBio     string   `json:"authorBio,omitempty" gorm:"type:text"`
	Conclusion    string   `json:"conclusion,omitempty" gorm:"type:text"`
	Dedication    string   `json:"dedication,omitempty" gorm:"type:text"`
	Copyright     string   `json:"copyright,omitempty" gorm:"type:text"`
	Keywords      []string `json:"keywords,omitempty" gorm:"type:jsonb;serializer:json"`
	CoverImageURL string   `json:"coverImageUrl,omitempty" gorm:"type:text"`

	// 合规状态
	IsKdpCompliant     bool   `json:"isKdpCompliant" gorm:"default:true"`
	TransparencyReport string `json:"transparencyReport,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Book) TableName() string {
	return "books"
}

// SplitTitle 将形如 "主标题: 副标题" 的标题拆分
// 仅在副标题为空时生效，返回是否发生了拆分
func (b *Book) SplitTitle() bool {
	if b.Subtitle != "" {
		return false
	}
	main, sub, found := strings.Cut(b.Title, ":")
	if !found {
		return false
	}
	main = strings.TrimSpace(main)
	sub = strings.TrimSpace(sub)
	if main == "" || sub == "" {
		return false
	}
	b.Title = main
	b.Subtitle = sub
	return true
}
