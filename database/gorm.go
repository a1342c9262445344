package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sahilchouksey/mentor-hub-api/config"
	"github.com/sahilchouksey/mentor-hub-api/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GORMStore struct {
	db           *gorm.DB
	host         string
	queryTimeout time.Duration
}

// DSN builds the PostgreSQL connection string, including the server-selection timeout.
func DSN(env *config.EnviornmentVariable) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s connect_timeout=%d TimeZone=UTC",
		env.DB_HOST,
		env.DB_USER_NAME,
		env.DB_PASSWORD,
		env.DB_NAME,
		env.DB_PORT,
		env.DB_SSL_MODE,
		int(env.DB_CONNECT_TIMEOUT.Seconds()),
	)
}

// StartGORM initializes a GORM connection to PostgreSQL. The connection is verified with a
// ping bounded by DB_CONNECT_TIMEOUT; any failure is a *BackendUnavailableError.
func StartGORM(ctx context.Context, env *config.EnviornmentVariable) (*GORMStore, error) {
	host := env.DB_HOST + ":" + env.DB_PORT

	// Configure GORM logger
	gormLogger := logger.Default.LogMode(logger.Warn)
	if env.IsProduction() {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	// Open GORM connection
	db, err := gorm.Open(postgres.Open(DSN(env)), &gorm.Config{
		Logger:      gormLogger,
		PrepareStmt: true,
	})
	if err != nil {
		return nil, &BackendUnavailableError{Host: host, Err: err}
	}

	// Get underlying *sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, &BackendUnavailableError{Host: host, Err: err}
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, env.DB_CONNECT_TIMEOUT)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, &BackendUnavailableError{Host: host, Err: err}
	}

	log.Info("connected to PostgreSQL", "host", host, "database", env.DB_NAME)

	return NewGORMStore(db, host, env.DB_QUERY_TIMEOUT), nil
}

// NewGORMStore wraps an already opened connection (used by tests with SQLite).
func NewGORMStore(db *gorm.DB, host string, queryTimeout time.Duration) *GORMStore {
	return &GORMStore{db: db, host: host, queryTimeout: queryTimeout}
}

// Models lists every persisted type, in migration order.
func Models() []any {
	return []any{
		&model.User{},
		&model.Internship{},
		&model.Quote{},
		&model.Achievement{},
		&model.Audio{},
		&model.NotificationTemplate{},
		&model.NotificationLog{},
		&model.Booking{},
		&model.RevokedToken{},
		&model.AdminAuditLog{},
	}
}

// Init runs the AutoMigrate to create/update tables
func (s *GORMStore) Init() error {
	log.Info("running GORM AutoMigrate")

	if err := s.db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	log.Info("GORM AutoMigrate completed")
	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	log.Info("closing database connection")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GORMStore) Mode() Mode { return ModeDatabase }

// DB exposes the GORM handle for migrations and tooling.
func (s *GORMStore) DB() *gorm.DB { return s.db }

type gormRepository[T any, PT EntityPtr[T]] struct {
	db      *gorm.DB
	timeout time.Duration
}

func (r *gormRepository[T, PT]) session(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if r.timeout <= 0 {
		return r.db.WithContext(ctx), func() {}
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	return r.db.WithContext(ctx), cancel
}

func (r *gormRepository[T, PT]) Create(ctx context.Context, record *T) error {
	db, cancel := r.session(ctx)
	defer cancel()

	stamp(PT(record))
	prePersist(PT(record))
	return db.Create(record).Error
}

func (r *gormRepository[T, PT]) FindByID(ctx context.Context, id string) (*T, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var record T
	if err := db.Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *gormRepository[T, PT]) Update(ctx context.Context, record *T) error {
	db, cancel := r.session(ctx)
	defer cancel()

	p := PT(record)
	p.SetUpdated(time.Now().UTC())
	prePersist(p)

	// Select("*") writes zero values too (inactive flags, empty optional strings).
	result := db.Model(record).Where("id = ?", p.GetID()).Select("*").Updates(record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository[T, PT]) Delete(ctx context.Context, id string) error {
	db, cancel := r.session(ctx)
	defer cancel()

	result := db.Where("id = ?", id).Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository[T, PT]) Find(ctx context.Context, filter Filter) ([]T, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	query := db.Model(new(T))
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	for column, value := range filter.Where {
		query = query.Where(fmt.Sprintf("%q = ?", column), value)
	}

	var records []T
	if err := query.Order("created_at ASC").Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// stamp sets creation and update times the same way for both backends.
func stamp(e Entity) {
	now := time.Now().UTC()
	if e.Created().IsZero() {
		e.SetCreated(now)
	}
	e.SetUpdated(now)
}

func prePersist(e Entity) {
	if p, ok := e.(model.PrePersister); ok {
		p.PrePersist()
	}
}
