// Package entity 定义领域实体
package entity

import (
	"strings"
	"time"
)

// Chapter 章节实体
type Chapter struct {
	ID          int       `json:"id" gorm:"primaryKey;autoIncrement"`
	BookID      int       `json:"bookId" gorm:"index;not null"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null"`
	Summary     string    `json:"summary,omitempty" gorm:"type:text"`
	BeatSheet   string    `json:"beatSheet,omitempty" gorm:"type:text"`
	Content     string    `json:"content,omitempty" gorm:"type:text"`
	Order       int       `json:"order" gorm:"column:order;not null"`
	WordCount   int       `json:"wordCount" gorm:"default:0"`
	IsCompleted bool      `json:"isCompleted" gorm:"default:false"`
	ImageURL    string    `json:"imageUrl,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Chapter) TableName() string {
	return "chapters"
}

// SetContent 设置章节内容并重算字数
func (c *Chapter) SetContent(content string) {
	c.Content = content
	c.WordCount = CountWords(content)
}

// CountWords 按空白分词统计字数，空 token 不计入
func CountWords(s string) int {
	return len(strings.Fields(s))
}
