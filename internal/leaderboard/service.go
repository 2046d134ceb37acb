package leaderboard

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gitgenie/gitgenie/internal/db"
	"github.com/gitgenie/gitgenie/internal/models"
	"github.com/gitgenie/gitgenie/internal/utils"
)

// Service produces leaderboards from the record store. Every call
// rescans and refolds; the store is the single source of truth and
// per-repository record counts stay bounded by realistic history
// sizes.
type Service struct {
	store  db.Store
	logger *logrus.Logger
}

func NewService(store db.Store, logger *logrus.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// Leaderboard returns the full ranked author list for a repository
// plus the top-N slice. A repository with no records yields an empty
// leaderboard, not an error.
func (s *Service) Leaderboard(ctx context.Context, owner, name string, topN int) (*models.Leaderboard, error) {
	repoKey := utils.RepoKey(owner, name)

	records, err := s.store.ScanAll(ctx, repoKey)
	if err != nil {
		return nil, fmt.Errorf("failed to scan records for %s/%s: %w", owner, name, err)
	}

	scores := Aggregate(records)

	s.logger.WithFields(logrus.Fields{
		"repo":    utils.DisplayRepo(repoKey),
		"records": len(records),
		"authors": len(scores),
	}).Debug("Computed leaderboard")

	return &models.Leaderboard{
		Authors: scores,
		Top:     Top(scores, topN),
	}, nil
}
