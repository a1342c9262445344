package database

import (
	"context"
	"fmt"

	"github.com/sahilchouksey/mentor-hub-api/model"
)

// Export copies every collection of src into flat files under dir, replacing what is there.
// It returns the number of records written per collection.
func Export(ctx context.Context, src Storage, dir string) (map[string]int, error) {
	dst := NewFileStore(dir)
	if err := dst.Init(); err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	steps := []func() error{
		func() error { return exportCollection[model.User](ctx, src, dst, Users, counts) },
		func() error { return exportCollection[model.Internship](ctx, src, dst, Internships, counts) },
		func() error { return exportCollection[model.Quote](ctx, src, dst, Quotes, counts) },
		func() error { return exportCollection[model.Achievement](ctx, src, dst, Achievements, counts) },
		func() error { return exportCollection[model.Audio](ctx, src, dst, AudioTracks, counts) },
		func() error {
			return exportCollection[model.NotificationTemplate](ctx, src, dst, NotificationTemplates, counts)
		},
		func() error { return exportCollection[model.NotificationLog](ctx, src, dst, NotificationLogs, counts) },
		func() error { return exportCollection[model.Booking](ctx, src, dst, Bookings, counts) },
		func() error { return exportCollection[model.RevokedToken](ctx, src, dst, RevokedTokens, counts) },
		func() error { return exportCollection[model.AdminAuditLog](ctx, src, dst, AuditLogs, counts) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return counts, err
		}
	}
	return counts, nil
}

func exportCollection[T any, PT EntityPtr[T]](ctx context.Context, src Storage, dst *FileStore, c Collection, counts map[string]int) error {
	repo, err := NewRepository[T, PT](src, c)
	if err != nil {
		return err
	}
	records, err := repo.Find(ctx, Filter{})
	if err != nil {
		return fmt.Errorf("export %s: %w", c.Name, err)
	}
	if records == nil {
		records = []T{}
	}

	l := dst.lock(c.Name)
	l.Lock()
	defer l.Unlock()
	if err := writeFile(dst.path(c.Name), records); err != nil {
		return fmt.Errorf("export %s: %w", c.Name, err)
	}
	counts[c.Name] = len(records)
	return nil
}
