package model

import "strings"

// BookingStatus is the lifecycle state of a session booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// BookingStatuses lists every valid status in display order.
var BookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusCompleted,
	BookingStatusCancelled,
}

// Booking is a request for a mentorship session
type Booking struct {
	Base
	Name          string        `gorm:"type:varchar(200);not null" json:"name" validate:"required,max=200"`
	Email         string        `gorm:"type:varchar(254);not null;index" json:"email" validate:"required,email,max=254"`
	Phone         string        `gorm:"type:varchar(30)" json:"phone" validate:"max=30"`
	InternshipID  string        `gorm:"type:varchar(64);index" json:"internship_id" validate:"max=64"`
	MentorName    string        `gorm:"type:varchar(200)" json:"mentor_name" validate:"max=200"`
	ProgramTitle  string        `gorm:"type:varchar(200)" json:"program_title" validate:"max=200"`
	PreferredDate string        `gorm:"type:varchar(40)" json:"preferred_date" validate:"max=40"`
	Message       string        `gorm:"type:text" json:"message" validate:"max=5000"`
	Status        BookingStatus `gorm:"type:varchar(20);not null;index" json:"status" validate:"oneof=pending confirmed completed cancelled"`
}

func (b *Booking) ApplyDefaults() {
	b.Base.ApplyDefaults()
	b.Status = BookingStatusPending
}

func (b *Booking) Normalize() {
	b.Name = strings.TrimSpace(b.Name)
	b.Email = strings.ToLower(strings.TrimSpace(b.Email))
	b.Phone = strings.TrimSpace(b.Phone)
	b.MentorName = strings.TrimSpace(b.MentorName)
	b.ProgramTitle = strings.TrimSpace(b.ProgramTitle)
	b.PreferredDate = strings.TrimSpace(b.PreferredDate)
	b.Message = strings.TrimSpace(b.Message)
	if b.Status == "" {
		b.Status = BookingStatusPending
	}
}

func (b *Booking) SearchText() []string {
	return []string{b.Name, b.Email, b.Phone, b.MentorName, b.ProgramTitle, string(b.Status)}
}

// ValidBookingStatus reports whether s names a known status.
func ValidBookingStatus(s string) bool {
	for _, st := range BookingStatuses {
		if string(st) == s {
			return true
		}
	}
	return false
}
