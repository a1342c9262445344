package model

import (
	"strings"

	"gorm.io/datatypes"
)

// NotificationChannel is how a template is delivered
type NotificationChannel string

const (
	NotificationChannelEmail NotificationChannel = "email"
	NotificationChannelSMS   NotificationChannel = "sms"
	NotificationChannelPush  NotificationChannel = "push"
)

// NotificationTemplate is a reusable message body with {{name}} / {{email}} placeholders
type NotificationTemplate struct {
	Base
	Name    string              `gorm:"type:varchar(200);not null" json:"name" validate:"required,max=200"`
	Channel NotificationChannel `gorm:"type:varchar(20);not null;index" json:"channel" validate:"oneof=email sms push"`
	Subject string              `gorm:"type:varchar(300)" json:"subject" validate:"max=300"`
	Body    string              `gorm:"type:text;not null" json:"body" validate:"required,max=10000"`
}

func (n *NotificationTemplate) ApplyDefaults() {
	n.Base.ApplyDefaults()
	n.Channel = NotificationChannelEmail
}

func (n *NotificationTemplate) Normalize() {
	n.Name = strings.TrimSpace(n.Name)
	n.Subject = strings.TrimSpace(n.Subject)
	n.Body = strings.TrimSpace(n.Body)
	if n.Channel == "" {
		n.Channel = NotificationChannelEmail
	}
}

func (n *NotificationTemplate) SearchText() []string {
	return []string{n.Name, string(n.Channel), n.Subject, n.Body}
}

// Render substitutes recipient placeholders into subject and body.
func (n *NotificationTemplate) Render(r Recipient) (subject, body string) {
	replacer := strings.NewReplacer("{{name}}", r.Name, "{{email}}", r.Email)
	return replacer.Replace(n.Subject), replacer.Replace(n.Body)
}

// Recipient is one addressee of a broadcast
type Recipient struct {
	Name   string `json:"name" validate:"max=200"`
	Email  string `json:"email" validate:"required,email"`
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NotificationLog records one broadcast of a template
type NotificationLog struct {
	Base
	TemplateID  string                         `gorm:"type:varchar(64);index" json:"template_id" validate:"required"`
	Channel     NotificationChannel            `gorm:"type:varchar(20)" json:"channel"`
	Subject     string                         `gorm:"type:varchar(300)" json:"subject"`
	Recipients  datatypes.JSONSlice[Recipient] `json:"recipients" validate:"min=1"`
	SentCount   int                            `json:"sent_count"`
	FailedCount int                            `json:"failed_count"`
}

func (l *NotificationLog) SearchText() []string {
	fields := []string{l.Subject, string(l.Channel)}
	for _, r := range l.Recipients {
		fields = append(fields, r.Name, r.Email)
	}
	return fields
}

func (l *NotificationLog) Normalize() {
	l.Subject = strings.TrimSpace(l.Subject)
	for i := range l.Recipients {
		l.Recipients[i].Name = strings.TrimSpace(l.Recipients[i].Name)
		l.Recipients[i].Email = strings.ToLower(strings.TrimSpace(l.Recipients[i].Email))
	}
}
