package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/sahilchouksey/mentor-hub-api/config"
)

// Open selects the storage backend from STORAGE_MODE and initializes it.
//
//	database  PostgreSQL only, failure is returned
//	file      flat JSON files in DATA_DIR
//	auto      PostgreSQL, falling back to flat files when it cannot be reached
func Open(ctx context.Context, env *config.EnviornmentVariable) (Storage, error) {
	switch env.STORAGE_MODE {
	case "file":
		return openFileStore(env)
	case "database":
		store, err := StartGORM(ctx, env)
		if err != nil {
			return nil, err
		}
		if err := store.Init(); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	case "", "auto":
	default:
		return nil, fmt.Errorf("unknown STORAGE_MODE %q", env.STORAGE_MODE)
	}

	if env.DB_USER_NAME == "" {
		log.Warn("DB_USER_NAME not set, using flat-file storage")
		return openFileStore(env)
	}

	store, err := StartGORM(ctx, env)
	if err == nil {
		if err = store.Init(); err == nil {
			return store, nil
		}
		store.Close()
		return nil, err
	}

	var unavailable *BackendUnavailableError
	if !errors.As(err, &unavailable) {
		return nil, err
	}

	d := Diagnose(ctx, env.DB_HOST, env.DB_PORT, unavailable.Err, env.DB_CONNECT_TIMEOUT)
	log.Warn("database unavailable, falling back to flat-file storage",
		"host", d.Host,
		"dns", d.DNSResolved,
		"auth_failed", d.AuthFailed,
		"port_open", d.PortOpen,
		"hint", d.Hint,
		"err", unavailable.Err,
	)
	return openFileStore(env)
}

func openFileStore(env *config.EnviornmentVariable) (Storage, error) {
	store := NewFileStore(env.DATA_DIR)
	if err := store.Init(); err != nil {
		return nil, err
	}
	return store, nil
}
