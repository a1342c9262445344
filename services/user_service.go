package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sahilchouksey/mentor-hub-api/database"
	"github.com/sahilchouksey/mentor-hub-api/model"
	"github.com/sahilchouksey/mentor-hub-api/utils/auth"
)

// UserService manages admin console accounts. Raw passwords arrive in a "password" field
// and only their bcrypt hash is stored.
type UserService struct {
	*CRUDService[model.User, *model.User]
}

// NewUserService creates a new user service
func NewUserService(repo database.Repository[model.User]) *UserService {
	s := &UserService{}
	s.CRUDService = NewCRUDService[model.User, *model.User](repo, Resource[model.User]{
		Name:      "User",
		Protected: []string{"password_hash", "last_login", "password"},
		Extras: func(records []model.User) Stats {
			admins := 0
			for _, u := range records {
				if u.IsAdmin() {
					admins++
				}
			}
			return Stats{"admins": admins, "users": len(records) - admins}
		},
		BeforeWrite: s.checkUsername,
	})
	return s
}

type passwordField struct {
	Password *string `json:"password"`
}

func readPassword(payload []byte) (*string, error) {
	var p passwordField
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, decodeError(err)
	}
	return p.Password, nil
}

func hashPassword(password string) (string, error) {
	if !auth.IsPasswordValid(password) {
		return "", NewValidationError("password", auth.ErrPasswordTooShort.Error())
	}
	return auth.HashPassword(password)
}

// Create adds an account; payload must carry a password of at least six characters.
func (s *UserService) Create(ctx context.Context, payload []byte) (*model.User, error) {
	password, err := readPassword(payload)
	if err != nil {
		return nil, err
	}
	user, err := s.Decode(payload)
	if err != nil {
		return nil, err
	}
	if password == nil || *password == "" {
		return nil, NewValidationError("password", "password is required")
	}
	hash, err := hashPassword(*password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	return s.Insert(ctx, user)
}

// Update patches an account; a non-empty password replaces the stored hash. Demoting or
// deactivating the last active admin is refused.
func (s *UserService) Update(ctx context.Context, id string, patch []byte) (*model.User, error) {
	password, err := readPassword(patch)
	if err != nil {
		return nil, err
	}
	return s.UpdateWith(ctx, id, patch, func(u *model.User) error {
		if !u.IsAdmin() || !u.IsActive {
			if err := s.guardLastAdmin(ctx, id); err != nil {
				return err
			}
		}
		if password == nil || *password == "" {
			return nil
		}
		hash, err := hashPassword(*password)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
		return nil
	})
}

// Delete removes an account, refusing to remove the last active admin.
func (s *UserService) Delete(ctx context.Context, id string) (*model.User, error) {
	if err := s.guardLastAdmin(ctx, id); err != nil {
		return nil, err
	}
	return s.CRUDService.Delete(ctx, id)
}

// ToggleActive flips is_active, refusing to deactivate the last active admin.
func (s *UserService) ToggleActive(ctx context.Context, id string) (*model.User, error) {
	if err := s.guardLastAdmin(ctx, id); err != nil {
		return nil, err
	}
	return s.CRUDService.ToggleActive(ctx, id)
}

// FindByUsername returns the account with username or a NotFoundError.
func (s *UserService) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	users, err := s.Find(ctx, map[string]any{"username": strings.TrimSpace(username)}, false)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, s.notFound(username)
	}
	return &users[0], nil
}

func (s *UserService) checkUsername(ctx context.Context, user *model.User, existing *model.User) error {
	if existing != nil && existing.Username == user.Username {
		return nil
	}
	taken, err := s.FindByUsername(ctx, user.Username)
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing == nil || taken.ID != existing.ID {
		return &ConflictError{Message: "Username already exists"}
	}
	return nil
}

func (s *UserService) guardLastAdmin(ctx context.Context, id string) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !user.IsAdmin() || !user.IsActive {
		return nil
	}
	admins, err := s.Find(ctx, map[string]any{"role": model.RoleAdmin}, true)
	if err != nil {
		return err
	}
	if len(admins) <= 1 {
		return &ConflictError{Message: "Cannot remove or deactivate the last active admin"}
	}
	return nil
}

// HasAdmin reports whether any admin account exists.
func (s *UserService) HasAdmin(ctx context.Context) (bool, error) {
	admins, err := s.Find(ctx, map[string]any{"role": model.RoleAdmin}, false)
	if err != nil {
		return false, err
	}
	return len(admins) > 0, nil
}
