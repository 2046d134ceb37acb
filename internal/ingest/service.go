package ingest

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gitgenie/gitgenie/internal/db"
	"github.com/gitgenie/gitgenie/internal/models"
	"github.com/gitgenie/gitgenie/internal/utils"
)

// CommitSource is the repository data source: ordered commit lists and
// per-commit diffs.
type CommitSource interface {
	ListCommits(ctx context.Context, owner, name string, limit int) ([]*models.RawCommit, error)
	GetCommitDiff(ctx context.Context, owner, name, sha string) ([]models.ChangedFile, error)
}

// Service fronts the ingestion pipeline and the stored records for the
// API layer.
type Service struct {
	source      CommitSource
	store       db.Store
	pipeline    *Pipeline
	logger      *logrus.Logger
	ingestLimit int
}

func NewService(source CommitSource, store db.Store, pipeline *Pipeline, ingestLimit int, logger *logrus.Logger) *Service {
	return &Service{
		source:      source,
		store:       store,
		pipeline:    pipeline,
		logger:      logger,
		ingestLimit: ingestLimit,
	}
}

// IngestRepository pulls the repository's commit list and runs the
// pipeline over it. limit <= 0 falls back to the configured default.
func (s *Service) IngestRepository(ctx context.Context, owner, name string, limit int) (*models.RunSummary, error) {
	if limit <= 0 {
		limit = s.ingestLimit
	}

	commits, err := s.source.ListCommits(ctx, owner, name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch commits for %s/%s: %w", owner, name, err)
	}

	return s.pipeline.Run(ctx, utils.RepoKey(owner, name), commits)
}

// GetRecord returns one stored record
func (s *Service) GetRecord(ctx context.Context, owner, name, sha string) (*models.CommitRecord, error) {
	return s.store.GetRecord(ctx, utils.RepoKey(owner, name), sha)
}

// ListRecords returns every stored record for a repository
func (s *Service) ListRecords(ctx context.Context, owner, name string) ([]*models.CommitRecord, error) {
	return s.store.ScanAll(ctx, utils.RepoKey(owner, name))
}
