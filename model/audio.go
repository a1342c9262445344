package model

import "strings"

// Audio is a recorded talk or guidance clip
type Audio struct {
	Base
	Title           string `gorm:"type:varchar(200);not null" json:"title" validate:"required,max=200"`
	Speaker         string `gorm:"type:varchar(200)" json:"speaker" validate:"max=200"`
	Description     string `gorm:"type:text" json:"description" validate:"max=2000"`
	AudioURL        string `gorm:"type:varchar(1024);not null" json:"audio_url" validate:"required,url|uri,max=1024"`
	DurationSeconds int    `json:"duration_seconds" validate:"gte=0"`
	Category        string `gorm:"type:varchar(100);index" json:"category" validate:"max=100"`
}

func (a *Audio) Normalize() {
	a.Title = strings.TrimSpace(a.Title)
	a.Speaker = strings.TrimSpace(a.Speaker)
	a.Description = strings.TrimSpace(a.Description)
	a.AudioURL = strings.TrimSpace(a.AudioURL)
	a.Category = strings.TrimSpace(a.Category)
}

func (a *Audio) SearchText() []string {
	return []string{a.Title, a.Speaker, a.Description, a.Category}
}

// TableName keeps the table aligned with the flat-file collection name
func (Audio) TableName() string {
	return "audio"
}
