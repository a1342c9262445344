package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/sahilchouksey/mentor-hub-api/model"
)

// SeedData is the layout of a seed file. Each table entry uses the JSON field names of the
// entity; users carry a plain "password".
type SeedData struct {
	Users                 []map[string]any `toml:"users"`
	Internships           []map[string]any `toml:"internships"`
	Quotes                []map[string]any `toml:"quotes"`
	Achievements          []map[string]any `toml:"achievements"`
	Audio                 []map[string]any `toml:"audio"`
	NotificationTemplates []map[string]any `toml:"notification_templates"`
}

// SeedReport counts inserted records per collection.
type SeedReport map[string]int

// Seeder handles database seeding operations
type Seeder struct {
	svc *Services
}

// NewSeeder creates a new seeder instance
func NewSeeder(svc *Services) *Seeder {
	return &Seeder{svc: svc}
}

// EnsureAdminUser creates the bootstrap admin unless an admin already exists. An empty
// password is replaced by a generated one, which is logged once.
func (s *Seeder) EnsureAdminUser(ctx context.Context, password, email string) (*model.User, error) {
	exists, err := s.svc.Users.HasAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		log.Debug("admin user already exists, skipping")
		return nil, nil
	}

	generated := false
	if password == "" {
		password = strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
		generated = true
	}

	payload, err := json.Marshal(map[string]any{
		"username": model.BootstrapAdminUsername,
		"password": password,
		"role":     model.RoleAdmin,
		"email":    email,
	})
	if err != nil {
		return nil, err
	}

	user, err := s.svc.Users.Create(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	if generated {
		log.Warn("ADMIN_PASSWORD not set, generated a password for the admin user",
			"username", user.Username, "password", password)
	} else {
		log.Info("admin user created", "username", user.Username)
	}
	return user, nil
}

// LoadSeedFile decodes a TOML seed file.
func LoadSeedFile(path string) (*SeedData, error) {
	var data SeedData
	if _, err := toml.DecodeFile(path, &data); err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	return &data, nil
}

// SeedAll inserts every collection of data that is still empty. Collections that already
// hold records are skipped so the seed can run on every deploy.
func (s *Seeder) SeedAll(ctx context.Context, data *SeedData) (SeedReport, error) {
	log.Info("starting seed")
	report := SeedReport{}

	steps := []struct {
		name    string
		rows    []map[string]any
		isEmpty func(context.Context) (bool, error)
		create  func(context.Context, []byte) error
	}{
		{"users", data.Users, s.onlyBootstrapUsers, func(ctx context.Context, p []byte) error {
			_, err := s.svc.Users.Create(ctx, p)
			return err
		}},
		{"internships", data.Internships, emptyCheck(s.svc.Internships.CRUDService), func(ctx context.Context, p []byte) error {
			_, err := s.svc.Internships.Create(ctx, p)
			return err
		}},
		{"quotes", data.Quotes, emptyCheck(s.svc.Quotes.CRUDService), func(ctx context.Context, p []byte) error {
			_, err := s.svc.Quotes.Create(ctx, p)
			return err
		}},
		{"achievements", data.Achievements, emptyCheck(s.svc.Achievements), func(ctx context.Context, p []byte) error {
			_, err := s.svc.Achievements.Create(ctx, p)
			return err
		}},
		{"audio", data.Audio, emptyCheck(s.svc.Audio), func(ctx context.Context, p []byte) error {
			_, err := s.svc.Audio.Create(ctx, p)
			return err
		}},
		{"notification_templates", data.NotificationTemplates, emptyCheck(s.svc.Notifications.CRUDService), func(ctx context.Context, p []byte) error {
			_, err := s.svc.Notifications.Create(ctx, p)
			return err
		}},
	}

	for _, step := range steps {
		if len(step.rows) == 0 {
			continue
		}
		empty, err := step.isEmpty(ctx)
		if err != nil {
			return report, err
		}
		if !empty {
			log.Info("collection already seeded, skipping", "collection", step.name)
			continue
		}

		for i, row := range step.rows {
			payload, err := json.Marshal(row)
			if err != nil {
				return report, fmt.Errorf("%s[%d]: %w", step.name, i, err)
			}
			if err := step.create(ctx, payload); err != nil {
				return report, fmt.Errorf("failed to seed %s[%d]: %w", step.name, i, err)
			}
			report[step.name]++
		}
		log.Info("seeded collection", "collection", step.name, "count", report[step.name])
	}

	log.Info("seed completed")
	return report, nil
}

// onlyBootstrapUsers treats a users collection holding nothing but the bootstrap admin as empty.
func (s *Seeder) onlyBootstrapUsers(ctx context.Context) (bool, error) {
	users, err := s.svc.Users.List(ctx, false)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.Username != model.BootstrapAdminUsername {
			return false, nil
		}
	}
	return true, nil
}

func emptyCheck[T any, PT RecordPtr[T]](svc *CRUDService[T, PT]) func(context.Context) (bool, error) {
	return func(ctx context.Context) (bool, error) {
		records, err := svc.List(ctx, false)
		if err != nil {
			return false, err
		}
		return len(records) == 0, nil
	}
}
