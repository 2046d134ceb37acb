package ingest

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/gitgenie/gitgenie/internal/classifier"
	"github.com/gitgenie/gitgenie/internal/db"
	apperrors "github.com/gitgenie/gitgenie/internal/errors"
	"github.com/gitgenie/gitgenie/internal/models"
	"github.com/gitgenie/gitgenie/internal/utils"
)

// DiffSource loads a commit's changed files on demand. The pipeline
// only asks for a diff after the dedup check, so commits that are
// already stored never cost a request.
type DiffSource interface {
	GetCommitDiff(ctx context.Context, owner, name, sha string) ([]models.ChangedFile, error)
}

// Pipeline walks one repository's commit list strictly in the order
// supplied, deduplicates against the store, classifies each new commit
// and persists the result. One commit is in flight at a time; the
// dedup-check-then-insert discipline is only safe because nothing runs
// concurrently within a run.
type Pipeline struct {
	store      db.Store
	classifier classifier.Classifier
	diffs      DiffSource
	logger     *logrus.Logger
}

func NewPipeline(store db.Store, cls classifier.Classifier, diffs DiffSource, logger *logrus.Logger) *Pipeline {
	return &Pipeline{
		store:      store,
		classifier: cls,
		diffs:      diffs,
		logger:     logger,
	}
}

// Run ingests the given commits under the normalized repository key.
// Already-persisted commits are skipped, which makes re-running the
// same list idempotent. The first classifier, diff or persist failure
// halts the remaining run and is reported in the summary; the returned
// error is non-nil only when the caller's context is cancelled.
func (p *Pipeline) Run(ctx context.Context, repoKey string, commits []*models.RawCommit) (*models.RunSummary, error) {
	owner, name, err := utils.SplitRepoKey(repoKey)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid repository key", err)
	}

	logger := p.logger.WithFields(logrus.Fields{
		"repo":    utils.DisplayRepo(repoKey),
		"commits": len(commits),
	})
	logger.Info("Starting ingestion run")

	summary := &models.RunSummary{}

	for i, commit := range commits {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		exists, err := p.store.Exists(ctx, repoKey, commit.SHA)
		if err != nil {
			if apperrors.IsNotFound(err) {
				// Absence of the repository's records is not an error.
				exists = false
			} else {
				// A transient check failure must not silently become a
				// false dedup: pass the commit over without persisting
				// so a later run can pick it up.
				logger.WithField("sha", commit.SHA).WithError(err).
					Warn("Existence check failed, passing commit over without persisting")
				continue
			}
		}

		if exists {
			summary.Skipped++
			continue
		}

		files := commit.ChangedFiles
		if len(files) == 0 && p.diffs != nil {
			files, err = p.diffs.GetCommitDiff(ctx, owner, name, commit.SHA)
			if err != nil {
				return p.fail(summary, logger, i, commit.SHA, err), ctx.Err()
			}
		}

		classification, err := p.classifier.Classify(ctx, files)
		if err != nil {
			return p.fail(summary, logger, i, commit.SHA, err), ctx.Err()
		}

		record := &models.CommitRecord{
			RepoKey:   repoKey,
			SHA:       commit.SHA,
			Username:  commit.Login,
			AvatarURL: commit.AvatarURL,
			Date:      commit.Date,
			Summary:   classification.Summary,
			Body:      classification.Body,
			Impact:    classification.Impact,
		}

		if err := p.store.Insert(ctx, record); err != nil {
			return p.fail(summary, logger, i, commit.SHA, err), ctx.Err()
		}

		summary.Persisted++
	}

	logger.WithFields(logrus.Fields{
		"persisted": summary.Persisted,
		"skipped":   summary.Skipped,
	}).Info("Ingestion run complete")

	return summary, nil
}

// fail records the first failure and halts the run. Failing fast
// bounds wasted classifier spend on a misbehaving upstream.
func (p *Pipeline) fail(summary *models.RunSummary, logger *logrus.Entry, index int, sha string, cause error) *models.RunSummary {
	summary.Failed = true
	summary.FailedIndex = index
	summary.FailedSHA = sha
	summary.FailureCause = cause.Error()

	logger.WithFields(logrus.Fields{
		"sha":       sha,
		"index":     index,
		"persisted": summary.Persisted,
		"skipped":   summary.Skipped,
	}).WithError(cause).Error("Ingestion run halted")

	return summary
}
