package model

import "time"

// RevokedToken stores the jti of a signed-out admin token until it would have expired anyway
type RevokedToken struct {
	Base
	TokenID   string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"token_id" validate:"required"`
	UserID    string    `gorm:"type:varchar(64);index" json:"user_id"`
	Reason    string    `gorm:"type:varchar(100)" json:"reason"` // logout, manual_revoke
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
}

// TableName specifies the table name for RevokedToken
func (RevokedToken) TableName() string {
	return "revoked_tokens"
}
