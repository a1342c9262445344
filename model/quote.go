package model

import "strings"

// Quote is a motivational quote shown on the public site
type Quote struct {
	Base
	Text       string `gorm:"type:text;not null" json:"text" validate:"required,max=1000"`
	Author     string `gorm:"type:varchar(200);not null" json:"author" validate:"required,max=200"`
	Category   string `gorm:"type:varchar(100);index" json:"category" validate:"max=100"`
	IsFeatured bool   `json:"is_featured"`
}

func (q *Quote) Normalize() {
	q.Text = strings.TrimSpace(q.Text)
	q.Author = strings.TrimSpace(q.Author)
	q.Category = strings.TrimSpace(q.Category)
}

func (q *Quote) SearchText() []string {
	return []string{q.Text, q.Author, q.Category}
}
