package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	apperrors "github.com/gitgenie/gitgenie/internal/errors"
	"github.com/gitgenie/gitgenie/internal/models"
)

// pq error code for unique_violation
const uniqueViolation = "23505"

// Exists checks whether a record for (repoKey, sha) is already stored.
// Any database failure is surfaced as a transient error so callers can
// tell "not stored yet" apart from "could not check".
func (s *PostgresStore) Exists(ctx context.Context, repoKey, sha string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM commit_records WHERE repo_key = $1 AND sha = $2`,
		repoKey, sha).Scan(&one)

	if err == sql.ErrNoRows {
		return false, nil
	} else if err != nil {
		return false, apperrors.NewTransientError("failed to check record existence", err)
	}

	return true, nil
}

// Insert persists a new record. The pipeline is expected to have
// deduplicated already; the unique index keeps the invariant if it
// somehow has not.
func (s *PostgresStore) Insert(ctx context.Context, record *models.CommitRecord) error {
	if err := validateRecord(record); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO commit_records (repo_key, sha, username, avatar_url, commit_date, summary, body, impact)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		record.RepoKey,
		record.SHA,
		record.Username,
		record.AvatarURL,
		record.Date,
		record.Summary,
		record.Body,
		record.Impact)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return apperrors.NewConflictError(
				fmt.Sprintf("record already exists for commit %s in %s", record.SHA, record.RepoKey), err)
		}
		return apperrors.NewTransientError("failed to insert record", err)
	}

	return nil
}

// GetRecord retrieves a single record by (repoKey, sha)
func (s *PostgresStore) GetRecord(ctx context.Context, repoKey, sha string) (*models.CommitRecord, error) {
	var r models.CommitRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, repo_key, sha, username, avatar_url, commit_date, summary, body, impact
		FROM commit_records
		WHERE repo_key = $1 AND sha = $2`,
		repoKey, sha).Scan(
		&r.ID,
		&r.RepoKey,
		&r.SHA,
		&r.Username,
		&r.AvatarURL,
		&r.Date,
		&r.Summary,
		&r.Body,
		&r.Impact,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(
			fmt.Sprintf("no record for commit %s", sha), err)
	} else if err != nil {
		return nil, apperrors.NewTransientError("failed to get record", err)
	}

	return &r, nil
}

// ScanAll returns every record for a repository. Order is not
// guaranteed stable across calls; callers must not depend on it.
func (s *PostgresStore) ScanAll(ctx context.Context, repoKey string) ([]*models.CommitRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, repo_key, sha, username, avatar_url, commit_date, summary, body, impact
		FROM commit_records
		WHERE repo_key = $1`,
		repoKey)
	if err != nil {
		return nil, apperrors.NewTransientError("failed to scan records", err)
	}
	defer rows.Close()

	records := make([]*models.CommitRecord, 0)
	for rows.Next() {
		var r models.CommitRecord
		if err := rows.Scan(
			&r.ID,
			&r.RepoKey,
			&r.SHA,
			&r.Username,
			&r.AvatarURL,
			&r.Date,
			&r.Summary,
			&r.Body,
			&r.Impact,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewTransientError("error iterating record rows", err)
	}

	return records, nil
}

func validateRecord(record *models.CommitRecord) error {
	if record == nil {
		return apperrors.NewValidationError("record cannot be nil", nil)
	}
	if record.RepoKey == "" {
		return apperrors.NewValidationError("record repo key cannot be empty", nil)
	}
	if record.SHA == "" {
		return apperrors.NewValidationError("record sha cannot be empty", nil)
	}
	if record.Username == "" {
		return apperrors.NewValidationError("record username cannot be empty", nil)
	}
	if record.Impact < 1 || record.Impact > 10 {
		return apperrors.NewValidationError(
			fmt.Sprintf("record impact must be between 1 and 10, got %d", record.Impact), nil)
	}
	return nil
}
