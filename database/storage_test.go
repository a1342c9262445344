package database_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sahilchouksey/mentor-hub-api/config"
	"github.com/sahilchouksey/mentor-hub-api/database"
	"github.com/sahilchouksey/mentor-hub-api/database/dbtest"
	"github.com/sahilchouksey/mentor-hub-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInternship(mentor string) *model.Internship {
	i := &model.Internship{MentorName: mentor, Profession: "Architect", City: "Pune"}
	i.ApplyDefaults()
	return i
}

func TestRepositoryCRUD(t *testing.T) {
	dbtest.Each(t, func(t *testing.T, store database.Storage) {
		ctx := context.Background()
		repo, err := database.NewRepository[model.Internship](store, database.Internships)
		require.NoError(t, err)

		record := newInternship("Asha Rao")
		require.NoError(t, repo.Create(ctx, record))
		assert.NotEmpty(t, record.ID)
		assert.False(t, record.CreatedAt.IsZero())
		assert.False(t, record.UpdatedAt.IsZero())
		require.Len(t, record.Programs, 1, "a record without programs gets the default one")
		assert.Equal(t, model.DefaultProgramTitle, record.Programs[0].Title)

		got, err := repo.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, "Asha Rao", got.MentorName)
		assert.Equal(t, record.Programs, got.Programs)
		assert.Equal(t, model.DefaultGradientColors(), got.GradientColors)

		got.IsActive = false
		got.City = ""
		require.NoError(t, repo.Update(ctx, got))

		reloaded, err := repo.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.False(t, reloaded.IsActive, "zero values are written on update")
		assert.Empty(t, reloaded.City)

		require.NoError(t, repo.Delete(ctx, record.ID))
		_, err = repo.FindByID(ctx, record.ID)
		assert.ErrorIs(t, err, database.ErrNotFound)
	})
}

func TestRepositoryMissingIDs(t *testing.T) {
	dbtest.Each(t, func(t *testing.T, store database.Storage) {
		ctx := context.Background()
		repo := database.MustRepository[model.Quote](store, database.Quotes)

		_, err := repo.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, database.ErrNotFound)

		ghost := &model.Quote{Text: "t", Author: "a"}
		ghost.ID = "missing"
		assert.ErrorIs(t, repo.Update(ctx, ghost), database.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, "missing"), database.ErrNotFound)
	})
}

func TestRepositoryFindFilters(t *testing.T) {
	dbtest.Each(t, func(t *testing.T, store database.Storage) {
		ctx := context.Background()
		repo := database.MustRepository[model.Quote](store, database.Quotes)

		quotes := []model.Quote{
			{Text: "one", Author: "A", IsFeatured: true},
			{Text: "two", Author: "B"},
			{Text: "three", Author: "C"},
		}
		for i := range quotes {
			quotes[i].IsActive = i != 2
			require.NoError(t, repo.Create(ctx, &quotes[i]))
		}

		all, err := repo.Find(ctx, database.Filter{})
		require.NoError(t, err)
		assert.Len(t, all, 3)

		active, err := repo.Find(ctx, database.Filter{ActiveOnly: true})
		require.NoError(t, err)
		assert.Len(t, active, 2)
		for _, q := range active {
			assert.True(t, q.IsActive)
		}

		featured, err := repo.Find(ctx, database.Filter{Where: map[string]any{"is_featured": true}})
		require.NoError(t, err)
		require.Len(t, featured, 1)
		assert.Equal(t, "one", featured[0].Text)

		byAuthor, err := repo.Find(ctx, database.Filter{Where: map[string]any{"author": "C"}})
		require.NoError(t, err)
		require.Len(t, byAuthor, 1)
		assert.Equal(t, "three", byAuthor[0].Text)
	})
}

func TestBackendsStoreTheSameShape(t *testing.T) {
	ctx := context.Background()
	var shapes []map[string]any

	dbtest.Each(t, func(t *testing.T, store database.Storage) {
		repo := database.MustRepository[model.Internship](store, database.Internships)
		record := newInternship("Ravi Kumar")
		record.Programs = append(record.Programs, model.Program{Title: "UX", Duration: "6 weeks", Fees: model.Fee(1200), Mode: model.ProgramModeHybrid})
		record.Includes = append(record.Includes, "Certificate")
		require.NoError(t, repo.Create(ctx, record))

		got, err := repo.FindByID(ctx, record.ID)
		require.NoError(t, err)

		data, err := json.Marshal(got)
		require.NoError(t, err)
		var shape map[string]any
		require.NoError(t, json.Unmarshal(data, &shape))
		for _, volatile := range []string{"id", "created_at", "updated_at"} {
			delete(shape, volatile)
		}
		shapes = append(shapes, shape)
	})

	require.Len(t, shapes, 2)
	assert.Equal(t, shapes[0], shapes[1])
}

func TestFileStoreWritesJSONArrays(t *testing.T) {
	store := dbtest.File(t)
	ctx := context.Background()
	repo := database.MustRepository[model.Achievement](store, database.Achievements)

	a := &model.Achievement{Title: "Top mentor"}
	a.ApplyDefaults()
	require.NoError(t, repo.Create(ctx, a))
	assert.Regexp(t, `^ach_\d+_[0-9a-z]+$`, a.ID)

	data, err := os.ReadFile(filepath.Join(store.Dir(), "achievements.json"))
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, a.ID, rows[0]["id"])

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotRegexp(t, `\.tmp$`, e.Name(), "temp files are renamed into place")
	}
}

func TestFileStoreRejectsDuplicateIDs(t *testing.T) {
	store := dbtest.File(t)
	ctx := context.Background()
	repo := database.MustRepository[model.Quote](store, database.Quotes)

	q := &model.Quote{Text: "x", Author: "y"}
	q.ID = "quote_fixed"
	require.NoError(t, repo.Create(ctx, q))

	dup := &model.Quote{Text: "x", Author: "y"}
	dup.ID = "quote_fixed"
	assert.Error(t, repo.Create(ctx, dup))
}

func TestFileStoreSerializesConcurrentWrites(t *testing.T) {
	store := dbtest.File(t)
	ctx := context.Background()
	writers := []database.Repository[model.Quote]{
		database.MustRepository[model.Quote](store, database.Quotes),
		database.MustRepository[model.Quote](store, database.Quotes),
	}

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q := &model.Quote{Text: fmt.Sprintf("quote %d", i), Author: "Anon"}
			q.ApplyDefaults()
			if err := writers[i%2].Create(ctx, q); err != nil {
				errs <- err
				return
			}
			_, err := writers[(i+1)%2].Find(ctx, database.Filter{})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	all, err := writers[0].Find(ctx, database.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, n)

	data, err := os.ReadFile(filepath.Join(store.Dir(), "quotes.json"))
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(data, &rows), "the file is valid JSON after concurrent writes")
	ids := make(map[any]struct{}, len(rows))
	for _, r := range rows {
		ids[r["id"]] = struct{}{}
	}
	assert.Len(t, ids, n, "every write landed with its own id")
}

func TestFileStoreCancelledContext(t *testing.T) {
	store := dbtest.File(t)
	repo := database.MustRepository[model.Quote](store, database.Quotes)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := repo.Find(ctx, database.Filter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFileIDIsOrdered(t *testing.T) {
	pattern := regexp.MustCompile(`^int_(\d+)_([0-9a-z]{16})$`)

	ids := make([]string, 50)
	for i := range ids {
		ids[i] = database.NewFileID("int")
		assert.Regexp(t, pattern, ids[i])
	}

	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}

	// ids are minted within a few milliseconds, so the suffix must keep them ordered
	assert.True(t, sort.StringsAreSorted(ids))
}

func TestExportCopiesEveryCollection(t *testing.T) {
	ctx := context.Background()
	src := dbtest.SQLite(t)

	internships := database.MustRepository[model.Internship](src, database.Internships)
	require.NoError(t, internships.Create(ctx, newInternship("Meera")))
	require.NoError(t, internships.Create(ctx, newInternship("Kabir")))

	users := database.MustRepository[model.User](src, database.Users)
	require.NoError(t, users.Create(ctx, &model.User{Username: "admin", PasswordHash: "x", Role: model.RoleAdmin}))

	dir := t.TempDir()
	counts, err := database.Export(ctx, src, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[database.Internships.Name])
	assert.Equal(t, 1, counts[database.Users.Name])
	assert.Equal(t, 0, counts[database.Bookings.Name])

	dst := database.NewFileStore(dir)
	exported, err := database.MustRepository[model.Internship](dst, database.Internships).Find(ctx, database.Filter{})
	require.NoError(t, err)
	assert.Len(t, exported, 2)

	_, err = os.Stat(filepath.Join(dir, database.Bookings.Name+".json"))
	assert.NoError(t, err, "empty collections are exported as empty files")
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("file mode", func(t *testing.T) {
		env := &config.EnviornmentVariable{STORAGE_MODE: "file", DATA_DIR: filepath.Join(t.TempDir(), "data")}
		store, err := database.Open(ctx, env)
		require.NoError(t, err)
		defer store.Close()
		assert.Equal(t, database.ModeFile, store.Mode())
		assert.NoError(t, store.HealthCheck(ctx))
	})

	t.Run("auto without credentials falls back to files", func(t *testing.T) {
		env := &config.EnviornmentVariable{STORAGE_MODE: "auto", DATA_DIR: t.TempDir()}
		store, err := database.Open(ctx, env)
		require.NoError(t, err)
		assert.Equal(t, database.ModeFile, store.Mode())
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := database.Open(ctx, &config.EnviornmentVariable{STORAGE_MODE: "mongo"})
		assert.Error(t, err)
	})
}

func TestDiagnoseClosedPort(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	d := database.Diagnose(ctx, "127.0.0.1", "1", assert.AnError, 200*time.Millisecond)
	assert.Equal(t, "127.0.0.1:1", d.Host)
	assert.True(t, d.DNSResolved)
	assert.False(t, d.AuthFailed)
	assert.False(t, d.PortOpen)
	assert.NotEmpty(t, d.Hint)
}
