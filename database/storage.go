package database

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Mode names the backend currently holding the collections.
type Mode string

const (
	ModeDatabase Mode = "database"
	ModeFile     Mode = "file"
)

var (
	// ErrNotFound is returned when an id does not resolve in the active backend.
	ErrNotFound = errors.New("record not found")
	// ErrUnsupportedStore is returned by NewRepository for an unknown Storage implementation.
	ErrUnsupportedStore = errors.New("unsupported storage implementation")
)

// BackendUnavailableError reports that the document store could not be reached. Open consumes
// it to fall back to flat files; it never reaches HTTP handlers.
type BackendUnavailableError struct {
	Host string
	Err  error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("database at %s unavailable: %v", e.Host, e.Err)
}

func (e *BackendUnavailableError) Unwrap() error { return e.Err }

// Storage defines the interface that all database implementations must satisfy
type Storage interface {
	// Lifecycle methods
	Init() error
	Close() error
	HealthCheck(ctx context.Context) error

	Mode() Mode
}

// Entity is the contract every stored record satisfies (see model.Base).
type Entity interface {
	GetID() string
	SetID(id string)
	Active() bool
	SetActive(active bool)
	Created() time.Time
	SetCreated(t time.Time)
	SetUpdated(t time.Time)
}

// EntityPtr constrains *T to implement Entity so repositories can work on values of T.
type EntityPtr[T any] interface {
	*T
	Entity
}

// Filter narrows Find. Where keys are column/JSON names and match by equality.
type Filter struct {
	ActiveOnly bool
	Where      map[string]any
}

// Repository is the per-collection persistence contract shared by both backends.
type Repository[T any] interface {
	Create(ctx context.Context, record *T) error
	FindByID(ctx context.Context, id string) (*T, error)
	Update(ctx context.Context, record *T) error
	Delete(ctx context.Context, id string) error
	Find(ctx context.Context, filter Filter) ([]T, error)
}

// Collection names a stored entity type and the id prefix used by the flat-file backend.
type Collection struct {
	Name   string
	Prefix string
}

// Collections known to the application.
var (
	Internships           = Collection{Name: "internships", Prefix: "int"}
	Users                 = Collection{Name: "users", Prefix: "usr"}
	Quotes                = Collection{Name: "quotes", Prefix: "quote"}
	Achievements          = Collection{Name: "achievements", Prefix: "ach"}
	AudioTracks           = Collection{Name: "audio", Prefix: "audio"}
	NotificationTemplates = Collection{Name: "notification_templates", Prefix: "tmpl"}
	NotificationLogs      = Collection{Name: "notification_logs", Prefix: "notif"}
	Bookings              = Collection{Name: "bookings", Prefix: "book"}
	RevokedTokens         = Collection{Name: "revoked_tokens", Prefix: "rev"}
	AuditLogs             = Collection{Name: "admin_audit_logs", Prefix: "audit"}
)

// NewRepository returns the repository for collection c on whichever backend store is.
func NewRepository[T any, PT EntityPtr[T]](store Storage, c Collection) (Repository[T], error) {
	switch s := store.(type) {
	case *GORMStore:
		return &gormRepository[T, PT]{db: s.db, timeout: s.queryTimeout}, nil
	case *FileStore:
		return &fileRepository[T, PT]{store: s, collection: c}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedStore, store)
	}
}

// MustRepository is NewRepository for wiring code where a failure is a programming error.
func MustRepository[T any, PT EntityPtr[T]](store Storage, c Collection) Repository[T] {
	repo, err := NewRepository[T, PT](store, c)
	if err != nil {
		panic(err)
	}
	return repo
}
