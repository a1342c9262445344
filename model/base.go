package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base holds the fields every stored record carries. Column names match the JSON names so
// the flat-file and database representations stay identical.
type Base struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	IsActive  bool      `gorm:"index" json:"is_active"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Base) ApplyDefaults()         { b.IsActive = true }
func (b *Base) GetID() string          { return b.ID }
func (b *Base) SetID(id string)        { b.ID = id }
func (b *Base) Active() bool           { return b.IsActive }
func (b *Base) SetActive(active bool)  { b.IsActive = active }
func (b *Base) Created() time.Time     { return b.CreatedAt }
func (b *Base) SetCreated(t time.Time) { b.CreatedAt = t }
func (b *Base) SetUpdated(t time.Time) { b.UpdatedAt = t }

// BeforeCreate assigns a database id when the caller did not supply one.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Defaulter fills schema defaults before a payload is decoded over the record.
type Defaulter interface {
	ApplyDefaults()
}

// PrePersister is implemented by records that must fix up invariants before every write,
// regardless of the backend doing the write.
type PrePersister interface {
	PrePersist()
}

// Sortable records carry an explicit sort_order that leads listing order.
type Sortable interface {
	SortKey() int
}
