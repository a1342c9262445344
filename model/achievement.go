package model

import "strings"

// Achievement is a highlight metric on the landing page ("500+ students placed")
type Achievement struct {
	Base
	Title       string `gorm:"type:varchar(200);not null" json:"title" validate:"required,max=200"`
	Description string `gorm:"type:text" json:"description" validate:"max=2000"`
	Metric      string `gorm:"type:varchar(50)" json:"metric" validate:"max=50"`
	Icon        string `gorm:"type:varchar(100)" json:"icon" validate:"max=100"`
	Category    string `gorm:"type:varchar(100);index" json:"category" validate:"max=100"`
	SortOrder   int    `json:"sort_order"`
}

func (a *Achievement) Normalize() {
	a.Title = strings.TrimSpace(a.Title)
	a.Description = strings.TrimSpace(a.Description)
	a.Metric = strings.TrimSpace(a.Metric)
	a.Icon = strings.TrimSpace(a.Icon)
	a.Category = strings.TrimSpace(a.Category)
}

func (a *Achievement) SearchText() []string {
	return []string{a.Title, a.Description, a.Metric, a.Category}
}

func (a *Achievement) SortKey() int { return a.SortOrder }
