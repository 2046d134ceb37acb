package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/gitgenie/gitgenie/internal/models"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Store defines the record store contract the ingestion pipeline and
// aggregation engine depend on. All repository arguments are
// normalized store keys (owner@name), never the owner/name form.
type Store interface {
	// Exists reports whether a record for (repoKey, sha) is already
	// persisted. Absence of the repository entirely is not an error.
	Exists(ctx context.Context, repoKey, sha string) (bool, error)

	// Insert persists a new record. Fails with a validation error on
	// malformed records and a conflict error if (repoKey, sha) already
	// exists.
	Insert(ctx context.Context, record *models.CommitRecord) error

	// GetRecord retrieves a single record, or a not-found error.
	GetRecord(ctx context.Context, repoKey, sha string) (*models.CommitRecord, error)

	// ScanAll returns an unordered snapshot of every record for a
	// repository; empty slice if none exist yet.
	ScanAll(ctx context.Context, repoKey string) ([]*models.CommitRecord, error)
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Migrate() error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
