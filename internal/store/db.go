package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rxtech-lab/deployment-portal/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
)

// DBService handles database connection and lifecycle management
type DBService interface {
	GetDB() *gorm.DB
	Close() error
}

type dbService struct {
	db *gorm.DB
}

// Option customises how the database connection is opened.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger routes GORM's error and slow query log through l.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// NewDBService opens the database selected by driver. For sqlite dsn is a file
// path, for postgres it is a connection URL.
func NewDBService(driver, dsn string, opts ...Option) (DBService, error) {
	switch driver {
	case DriverSqlite, "":
		return NewSqliteDBService(dsn, opts...)
	case DriverPostgres:
		return NewPostgresDBService(dsn, opts...)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// NewSqliteDBService creates a new DBService with SQLite connection
func NewSqliteDBService(dbPath string, opts ...Option) (DBService, error) {
	if dbPath != ":memory:" {
		// Create directory if it doesn't exist
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), newGormConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows a single writer, and every :memory: connection is its own database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return newDBService(db)
}

// NewPostgresDBService creates a new DBService with a PostgreSQL connection
func NewPostgresDBService(url string, opts ...Option) (DBService, error) {
	if url == "" {
		return nil, fmt.Errorf("postgres url is required")
	}

	db, err := gorm.Open(postgres.Open(url), newGormConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return newDBService(db)
}

func newGormConfig(opts []Option) *gorm.Config {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	// Configure GORM logger - only log errors and slow queries
	gormLogger := logger.New(
		zap.NewStdLog(o.logger.Named("gorm")),
		logger.Config{
			SlowThreshold:             time.Second,  // Slow SQL threshold
			LogLevel:                  logger.Error, // Only log errors and slow queries
			IgnoreRecordNotFoundError: true,         // Ignore ErrRecordNotFound error for logger
			ParameterizedQueries:      true,         // Keep credentials out of the SQL log
			Colorful:                  false,        // Disable color
		},
	)
	return &gorm.Config{Logger: gormLogger}
}

func newDBService(db *gorm.DB) (DBService, error) {
	service := &dbService{db: db}
	if err := service.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return service, nil
}

// GetDB returns the underlying GORM database instance
func (s *dbService) GetDB() *gorm.DB {
	return s.db
}

// migrate runs database migrations
func (s *dbService) migrate() error {
	return s.db.AutoMigrate(
		&models.User{},
		&models.Deployment{},
		&models.Release{},
		&models.Service{},
		&models.Session{},
	)
}

// Close closes the database connection
func (s *dbService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
