package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProgramMode is the delivery mode of a program
type ProgramMode string

const (
	ProgramModeOnline  ProgramMode = "online"
	ProgramModeOffline ProgramMode = "offline"
	ProgramModeHybrid  ProgramMode = "hybrid"
)

// Default program injected when an internship would otherwise have none.
const (
	DefaultProgramTitle    = "Main Program"
	DefaultProgramDuration = "3 months"
	DefaultProgramFees     = 5000
)

// Program is embedded in an Internship and is not addressable on its own.
type Program struct {
	Title       string      `json:"title" validate:"required,max=200"`
	Duration    string      `json:"duration" validate:"required,max=100"`
	Fees        *float64    `json:"fees" validate:"omitnil,gte=0"`
	Mode        ProgramMode `json:"mode" validate:"oneof=online offline hybrid"`
	Description string      `json:"description,omitempty" validate:"max=2000"`

	// badFees holds fees input that was sent but is not a finite number.
	badFees string
}

// UnmarshalJSON accepts fees as a JSON number or a numeric string, the way form posts send it.
// A missing or blank fee leaves Fees nil; text that is not a finite number is kept aside for
// validation to report.
func (p *Program) UnmarshalJSON(data []byte) error {
	type alias Program
	aux := struct {
		*alias
		Fees any `json:"fees"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	p.Fees = nil
	p.badFees = ""
	switch v := aux.Fees.(type) {
	case nil:
	case float64:
		p.Fees = &v
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			break
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			p.badFees = v
			break
		}
		p.Fees = &f
	default:
		p.badFees = fmt.Sprint(v)
	}
	return nil
}

// FeesMalformed reports whether fees was sent as something other than a finite number.
func (p Program) FeesMalformed() bool { return p.badFees != "" }

// Fee returns a pointer for Program.Fees.
func Fee(f float64) *float64 { return &f }

// DefaultProgram returns the program used to keep the at-least-one-program invariant.
func DefaultProgram() Program {
	return Program{
		Title:    DefaultProgramTitle,
		Duration: DefaultProgramDuration,
		Fees:     Fee(DefaultProgramFees),
		Mode:     ProgramModeOnline,
	}
}

// GradientColors are display-only color tokens for the listing card.
type GradientColors struct {
	Primary   string `json:"primary" validate:"max=32"`
	Secondary string `json:"secondary" validate:"max=32"`
	Accent    string `json:"accent" validate:"max=32"`
}

// DefaultGradientColors returns the stock card palette.
func DefaultGradientColors() GradientColors {
	return GradientColors{Primary: "#4F46E5", Secondary: "#7C3AED", Accent: "#EC4899"}
}

// Internship is a mentor's listing with one or more programs.
type Internship struct {
	Base
	MentorName     string                       `gorm:"type:varchar(200);not null" json:"mentor_name" validate:"required,max=200"`
	Profession     string                       `gorm:"type:varchar(200);not null" json:"profession" validate:"required,max=200"`
	Specialization string                       `gorm:"type:varchar(200)" json:"specialization" validate:"max=200"`
	City           string                       `gorm:"type:varchar(200);not null" json:"city" validate:"required,max=200"`
	CityNote       string                       `gorm:"type:text" json:"city_note" validate:"max=500"`
	IsMultipleCity bool                         `json:"is_multiple_city"`
	Programs       datatypes.JSONSlice[Program] `json:"programs" validate:"min=1,dive"`
	Includes       datatypes.JSONSlice[string]  `json:"includes" validate:"dive,max=300"`
	AdditionalInfo string                       `gorm:"type:text" json:"additional_info" validate:"max=5000"`
	GradientColors GradientColors               `gorm:"embedded;embeddedPrefix:gradient_" json:"gradient_colors"`
	SortOrder      int                          `gorm:"index" json:"sort_order"`
}

// ApplyDefaults sets schema defaults ahead of decoding a create payload.
func (i *Internship) ApplyDefaults() {
	i.Base.ApplyDefaults()
	i.GradientColors = DefaultGradientColors()
	i.Programs = datatypes.JSONSlice[Program]{}
	i.Includes = datatypes.JSONSlice[string]{}
}

// Normalize trims text, fills per-program defaults and drops blank program/include rows.
func (i *Internship) Normalize() {
	i.MentorName = strings.TrimSpace(i.MentorName)
	i.Profession = strings.TrimSpace(i.Profession)
	i.Specialization = strings.TrimSpace(i.Specialization)
	i.City = strings.TrimSpace(i.City)
	i.CityNote = strings.TrimSpace(i.CityNote)
	i.AdditionalInfo = strings.TrimSpace(i.AdditionalInfo)

	programs := make(datatypes.JSONSlice[Program], 0, len(i.Programs))
	for _, p := range i.Programs {
		p.Title = strings.TrimSpace(p.Title)
		p.Duration = strings.TrimSpace(p.Duration)
		p.Description = strings.TrimSpace(p.Description)
		if p.Title == "" || p.Duration == "" {
			continue
		}
		if p.Mode == "" {
			p.Mode = ProgramModeOnline
		}
		programs = append(programs, p)
	}
	i.Programs = programs

	includes := make(datatypes.JSONSlice[string], 0, len(i.Includes))
	for _, item := range i.Includes {
		if item = strings.TrimSpace(item); item != "" {
			includes = append(includes, item)
		}
	}
	i.Includes = includes

	defaults := DefaultGradientColors()
	if i.GradientColors.Primary == "" {
		i.GradientColors.Primary = defaults.Primary
	}
	if i.GradientColors.Secondary == "" {
		i.GradientColors.Secondary = defaults.Secondary
	}
	if i.GradientColors.Accent == "" {
		i.GradientColors.Accent = defaults.Accent
	}

	i.PrePersist()
}

// PrePersist guarantees at least one program before any write.
func (i *Internship) PrePersist() {
	if len(i.Programs) == 0 {
		i.Programs = datatypes.JSONSlice[Program]{DefaultProgram()}
	}
	if i.Includes == nil {
		i.Includes = datatypes.JSONSlice[string]{}
	}
}

// BeforeSave runs the same fixup for writes that go straight through GORM.
func (i *Internship) BeforeSave(tx *gorm.DB) error {
	i.PrePersist()
	return nil
}

// SearchText returns the fields matched by free-text search.
func (i *Internship) SearchText() []string {
	fields := []string{i.MentorName, i.Profession, i.Specialization, i.City}
	for _, p := range i.Programs {
		fields = append(fields, p.Title, p.Duration)
	}
	return append(fields, i.Includes...)
}

// SortKey is the primary listing order; ties fall back to creation time.
func (i *Internship) SortKey() int { return i.SortOrder }
