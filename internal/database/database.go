package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cropadvisor/config"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type DB struct {
	SQL   *gorm.DB
	Cache Cache
	log   logger.Logger
}

func New(config config.Config) (DB, error) {
	log := logger.New("database").Function("New")

	log.Info("Initializing database", "driver", config.DatabaseDriver)
	db := &DB{log: log}

	if err := db.initializeDB(config); err != nil {
		return DB{}, log.Err("failed to initialize database", err)
	}

	if err := db.initializeCacheDB(config); err != nil {
		return DB{}, log.Err("failed to initialize cache database", err)
	}

	return *db, nil
}

// NewWithGorm wraps an already opened connection without a cache.
func NewWithGorm(sql *gorm.DB) DB {
	return DB{SQL: sql, log: logger.New("database")}
}

// NewSQLite opens and migrates a SQLite database without a cache. Paths such
// as "file:name?mode=memory&cache=shared" give an isolated in-memory store.
func NewSQLite(path string) (DB, error) {
	db := &DB{log: logger.New("database").Function("NewSQLite")}
	if err := db.initializeSQLiteDB(config.Config{DatabasePath: path}); err != nil {
		return DB{}, err
	}
	return *db, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: gormLogger.New(
			slog.NewLogLogger(slog.Default().Handler(), slog.LevelError),
			gormLogger.Config{
				SlowThreshold:             2 * time.Second,
				LogLevel:                  gormLogger.Error,
				IgnoreRecordNotFoundError: true,
				ParameterizedQueries:      true,
			},
		),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}
}

func (s *DB) initializeDB(cfg config.Config) error {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		return s.initializeSQLiteDB(cfg)
	default:
		return s.initializePostgresDB(cfg)
	}
}

// PostgresDSN builds the connection string used by gorm and the migration tool.
func PostgresDSN(config config.Config) string {
	if config.DatabaseURL != "" {
		return config.DatabaseURL
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		config.DatabaseHost,
		config.DatabasePort,
		config.DatabaseUser,
		config.DatabasePassword,
		config.DatabaseName,
		config.DatabaseSSLMode,
	)
}

func (s *DB) initializePostgresDB(config config.Config) error {
	log := s.log.Function("initializePostgresDB")

	log.Info(
		"Connecting to PostgreSQL",
		"host", config.DatabaseHost,
		"port", config.DatabasePort,
		"database", config.DatabaseName,
	)
	db, err := gorm.Open(postgres.Open(PostgresDSN(config)), gormConfig())
	if err != nil {
		return log.Err("failed to open PostgreSQL database with GORM", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return log.Err("failed to get database from GORM", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return log.Err("failed to ping PostgreSQL database through GORM", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("Successfully connected to PostgreSQL with GORM")
	s.SQL = db

	return nil
}

func (s *DB) initializeSQLiteDB(config config.Config) error {
	log := s.log.Function("initializeSQLiteDB")

	log.Info("Opening SQLite database", "path", config.DatabasePath)
	db, err := gorm.Open(sqlite.Open(config.DatabasePath), gormConfig())
	if err != nil {
		return log.Err("failed to open SQLite database with GORM", err)
	}

	// SQLite has no server side migration tool here, so the schema is
	// created from the models.
	s.SQL = db
	if err := s.MigrateModels(); err != nil {
		return log.Err("failed to migrate SQLite database", err)
	}

	return nil
}

func (s *DB) Close() error {
	if s.SQL != nil {
		sqlDB, err := s.SQL.DB()
		if err != nil {
			return s.log.Err("failed to get database from GORM", err)
		}
		if err := sqlDB.Close(); err != nil {
			return s.log.Err("failed to close database", err)
		}
	}

	s.Cache.Close()
	return nil
}

// SQLWithContext returns a session bound to ctx, or nil when no database is open.
func (s *DB) SQLWithContext(ctx context.Context) *gorm.DB {
	if s.SQL == nil {
		return nil
	}
	return s.SQL.WithContext(ctx)
}

func (s *DB) Ping(ctx context.Context) error {
	if s.SQL == nil {
		return s.log.ErrMsg("database is not initialized")
	}

	sqlDB, err := s.SQL.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
