package model

import (
	"strings"
	"time"
)

// User roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// BootstrapAdminUsername is the account guaranteed to exist after initialization.
const BootstrapAdminUsername = "admin"

// User is an account that can sign in to the admin console
type User struct {
	Base
	Username     string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"username" validate:"required,min=3,max=50"`
	PasswordHash string     `gorm:"not null" json:"password_hash,omitempty" validate:"required"`
	Role         string     `gorm:"type:varchar(20);not null" json:"role" validate:"oneof=admin user"`
	Email        string     `gorm:"type:varchar(254);index" json:"email" validate:"omitempty,email,max=254"`
	LastLogin    *time.Time `json:"last_login"`
}

// ApplyDefaults sets schema defaults ahead of decoding a create payload.
func (u *User) ApplyDefaults() {
	u.Base.ApplyDefaults()
	u.Role = RoleUser
}

// Normalize trims the username and lowercases the email.
func (u *User) Normalize() {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = RoleUser
	}
}

func (u *User) SearchText() []string {
	return []string{u.Username, u.Email, u.Role}
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserResponse is the public shape of a user; the hash never leaves the service.
type UserResponse struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Role      string     `json:"role"`
	Email     string     `json:"email"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ToResponse converts a User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		Email:     u.Email,
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
