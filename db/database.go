package db

import (
	"fmt"
	"log"
	"net/url"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Options selects the database backend
type Options struct {
	Path        string // local SQLite file
	TursoURL    string // libsql://... (takes precedence over Path)
	TursoToken  string
	Environment string
}

// Initialize sets up the database connection. Local files use WAL mode;
// a Turso URL switches to the libSQL driver behind the same GORM dialect.
func Initialize(opts Options) error {
	logLevel := logger.Info
	if opts.Environment == "production" {
		logLevel = logger.Warn
	}

	var dialector gorm.Dialector
	if opts.TursoURL != "" {
		dsn := opts.TursoURL
		if opts.TursoToken != "" {
			dsn += "?authToken=" + url.QueryEscape(opts.TursoToken)
		}
		dialector = sqlite.New(sqlite.Config{DriverName: "libsql", DSN: dsn})
	} else {
		dialector = sqlite.Open(opts.Path + "?_journal_mode=WAL")
	}

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if opts.TursoURL != "" {
		log.Println("Database connection established (Turso/libSQL)")
	} else {
		log.Println("Database connection established (WAL mode enabled)")
	}
	return nil
}

// AutoMigrate runs database migrations for the provided models
func AutoMigrate(models ...interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed")
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
