package services_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sahilchouksey/mentor-hub-api/database/dbtest"
	"github.com/sahilchouksey/mentor-hub-api/model"
	"github.com/sahilchouksey/mentor-hub-api/services"
	"github.com/sahilchouksey/mentor-hub-api/utils/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedTOML = `
[[users]]
username = "editor"
password = "editor-pass"
role = "user"

[[internships]]
mentor_name = "Asha Rao"
profession = "Architect"
city = "Pune"
includes = ["Certificate"]

  [[internships.programs]]
  title = "Studio"
  duration = "8 weeks"
  fees = 4000
  mode = "offline"

[[internships]]
mentor_name = "Kabir Shah"
profession = "Chef"
city = "Goa"

[[quotes]]
text = "Stay curious."
author = "Unknown"
is_featured = true

[[notification_templates]]
name = "Welcome"
subject = "Hi {{name}}"
body = "Welcome, {{name}}"
`

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.toml")
	require.NoError(t, os.WriteFile(path, []byte(seedTOML), 0o644))
	return path
}

func TestEnsureAdminUser(t *testing.T) {
	svc := newServices(t, dbtest.File(t))
	ctx := context.Background()
	seeder := services.NewSeeder(svc)

	admin, err := seeder.EnsureAdminUser(ctx, "bootstrap1", "Admin@Example.com")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, model.BootstrapAdminUsername, admin.Username)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.Equal(t, "admin@example.com", admin.Email)
	assert.NoError(t, auth.VerifyPassword(admin.PasswordHash, "bootstrap1"))

	again, err := seeder.EnsureAdminUser(ctx, "other-pass", "")
	require.NoError(t, err)
	assert.Nil(t, again, "an existing admin is left alone")
}

func TestEnsureAdminUserGeneratesPassword(t *testing.T) {
	svc := newServices(t, dbtest.File(t))
	ctx := context.Background()

	admin, err := services.NewSeeder(svc).EnsureAdminUser(ctx, "", "")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.NotEmpty(t, admin.PasswordHash)
}

func TestSeedAll(t *testing.T) {
	svc := newServices(t, dbtest.SQLite(t))
	ctx := context.Background()
	seeder := services.NewSeeder(svc)

	_, err := seeder.EnsureAdminUser(ctx, "bootstrap1", "")
	require.NoError(t, err)

	data, err := services.LoadSeedFile(writeSeed(t))
	require.NoError(t, err)

	report, err := seeder.SeedAll(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, 1, report["users"], "only the bootstrap admin counts as empty")
	assert.Equal(t, 2, report["internships"])
	assert.Equal(t, 1, report["quotes"])
	assert.Equal(t, 1, report["notification_templates"])
	assert.Zero(t, report["audio"])

	internships, err := svc.Internships.Search(ctx, "goa", services.ScopeAdmin)
	require.NoError(t, err)
	require.Len(t, internships, 1)
	assert.Equal(t, model.DefaultProgramTitle, internships[0].Programs[0].Title)

	_, err = svc.Auth.Login(ctx, "editor", "editor-pass")
	assert.NoError(t, err)

	again, err := seeder.SeedAll(ctx, data)
	require.NoError(t, err)
	assert.Empty(t, again, "seeded collections are skipped")

	all, err := svc.Internships.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSeedAllStopsOnInvalidRows(t *testing.T) {
	svc := newServices(t, dbtest.File(t))

	data := &services.SeedData{Quotes: []map[string]any{{"text": "no author"}}}
	_, err := services.NewSeeder(svc).SeedAll(context.Background(), data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quotes[0]")
}

func TestLoadSeedFileMissing(t *testing.T) {
	_, err := services.LoadSeedFile(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
