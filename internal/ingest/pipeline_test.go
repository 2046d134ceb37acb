package ingest

import (
	"context"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitgenie/gitgenie/internal/classifier"
	apperrors "github.com/gitgenie/gitgenie/internal/errors"
	"github.com/gitgenie/gitgenie/internal/models"
)

const testRepoKey = "test-owner@test-repo"

// fakeStore is an in-memory Store with injectable failures
type fakeStore struct {
	records    map[string]*models.CommitRecord
	existsErr  map[string]error
	insertErr  map[string]error
	existCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records:   make(map[string]*models.CommitRecord),
		existsErr: make(map[string]error),
		insertErr: make(map[string]error),
	}
}

func (s *fakeStore) key(repoKey, sha string) string {
	return repoKey + "|" + sha
}

func (s *fakeStore) Exists(ctx context.Context, repoKey, sha string) (bool, error) {
	s.existCalls++
	if err := s.existsErr[sha]; err != nil {
		return false, err
	}
	_, ok := s.records[s.key(repoKey, sha)]
	return ok, nil
}

func (s *fakeStore) Insert(ctx context.Context, record *models.CommitRecord) error {
	if err := s.insertErr[record.SHA]; err != nil {
		return err
	}
	k := s.key(record.RepoKey, record.SHA)
	if _, ok := s.records[k]; ok {
		return apperrors.NewConflictError("duplicate record", nil)
	}
	s.records[k] = record
	return nil
}

func (s *fakeStore) GetRecord(ctx context.Context, repoKey, sha string) (*models.CommitRecord, error) {
	r, ok := s.records[s.key(repoKey, sha)]
	if !ok {
		return nil, apperrors.NewNotFoundError("no record", nil)
	}
	return r, nil
}

func (s *fakeStore) ScanAll(ctx context.Context, repoKey string) ([]*models.CommitRecord, error) {
	var out []*models.CommitRecord
	for _, r := range s.records {
		if r.RepoKey == repoKey {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeClassifier classifies by the first changed file's name
type fakeClassifier struct {
	results map[string]*classifier.Classification
	errs    map[string]error
	calls   int
}

func (c *fakeClassifier) Classify(ctx context.Context, files []models.ChangedFile) (*classifier.Classification, error) {
	c.calls++
	key := ""
	if len(files) > 0 {
		key = files[0].Filename
	}
	if err := c.errs[key]; err != nil {
		return nil, err
	}
	if r, ok := c.results[key]; ok {
		return r, nil
	}
	return &classifier.Classification{Impact: 5, Summary: "change", Body: "a change"}, nil
}

// fakeDiffs returns one changed file named after the sha
type fakeDiffs struct {
	errs  map[string]error
	calls int
}

func (d *fakeDiffs) GetCommitDiff(ctx context.Context, owner, name, sha string) ([]models.ChangedFile, error) {
	d.calls++
	if err := d.errs[sha]; err != nil {
		return nil, err
	}
	return []models.ChangedFile{{Filename: sha, Status: "modified", Additions: 1}}, nil
}

func rawCommit(sha, login string) *models.RawCommit {
	return &models.RawCommit{
		SHA:   sha,
		Login: login,
		Date:  "2024-03-20T00:00:00Z",
	}
}

func newTestPipeline(store *fakeStore, cls *fakeClassifier, diffs *fakeDiffs) *Pipeline {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewPipeline(store, cls, diffs, logger)
}

func TestPipeline_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("persists all new commits in order", func(t *testing.T) {
		store := newFakeStore()
		cls := &fakeClassifier{results: map[string]*classifier.Classification{
			"sha-a": {Impact: 5, Summary: "a", Body: "body a"},
			"sha-b": {Impact: 3, Summary: "b", Body: "body b"},
		}}
		diffs := &fakeDiffs{}
		p := newTestPipeline(store, cls, diffs)

		summary, err := p.Run(ctx, testRepoKey, []*models.RawCommit{
			rawCommit("sha-a", "alice"),
			rawCommit("sha-b", "bob"),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Persisted)
		assert.Equal(t, 0, summary.Skipped)
		assert.False(t, summary.Failed)

		got, err := store.GetRecord(ctx, testRepoKey, "sha-a")
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, 5, got.Impact)
		assert.Equal(t, "body a", got.Body)
	})

	t.Run("second run is idempotent", func(t *testing.T) {
		store := newFakeStore()
		cls := &fakeClassifier{}
		diffs := &fakeDiffs{}
		p := newTestPipeline(store, cls, diffs)

		commits := []*models.RawCommit{
			rawCommit("sha-a", "alice"),
			rawCommit("sha-b", "bob"),
		}

		first, err := p.Run(ctx, testRepoKey, commits)
		require.NoError(t, err)
		assert.Equal(t, 2, first.Persisted)

		second, err := p.Run(ctx, testRepoKey, commits)
		require.NoError(t, err)
		assert.Equal(t, 0, second.Persisted)
		assert.Equal(t, 2, second.Skipped)

		// Duplicates cost neither a diff fetch nor a classifier call
		assert.Equal(t, 2, diffs.calls)
		assert.Equal(t, 2, cls.calls)

		records, err := store.ScanAll(ctx, testRepoKey)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("classifier failure halts the run", func(t *testing.T) {
		store := newFakeStore()
		cls := &fakeClassifier{errs: map[string]error{
			"sha-b": apperrors.NewSchemaViolationError("free-form output", nil),
		}}
		diffs := &fakeDiffs{}
		p := newTestPipeline(store, cls, diffs)

		summary, err := p.Run(ctx, testRepoKey, []*models.RawCommit{
			rawCommit("sha-a", "alice"),
			rawCommit("sha-b", "bob"),
			rawCommit("sha-c", "carol"),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Persisted)
		assert.True(t, summary.Failed)
		assert.Equal(t, 1, summary.FailedIndex)
		assert.Equal(t, "sha-b", summary.FailedSHA)
		assert.Contains(t, summary.FailureCause, "free-form output")

		// sha-c was never reached
		assert.Equal(t, 2, cls.calls)
		_, err = store.GetRecord(ctx, testRepoKey, "sha-c")
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("transient existence failure passes the commit over", func(t *testing.T) {
		store := newFakeStore()
		store.existsErr["sha-a"] = apperrors.NewTransientError("store unavailable", nil)
		cls := &fakeClassifier{}
		diffs := &fakeDiffs{}
		p := newTestPipeline(store, cls, diffs)

		summary, err := p.Run(ctx, testRepoKey, []*models.RawCommit{
			rawCommit("sha-a", "alice"),
			rawCommit("sha-b", "bob"),
		})
		require.NoError(t, err)
		// The unverifiable commit is neither skipped nor persisted
		assert.Equal(t, 1, summary.Persisted)
		assert.Equal(t, 0, summary.Skipped)
		assert.False(t, summary.Failed)

		_, err = store.GetRecord(ctx, testRepoKey, "sha-a")
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("missing repository collection counts as absent", func(t *testing.T) {
		store := newFakeStore()
		store.existsErr["sha-a"] = apperrors.NewNotFoundError("no such collection", nil)
		cls := &fakeClassifier{}
		diffs := &fakeDiffs{}
		p := newTestPipeline(store, cls, diffs)

		summary, err := p.Run(ctx, testRepoKey, []*models.RawCommit{rawCommit("sha-a", "alice")})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Persisted)
		assert.Equal(t, 0, summary.Skipped)
	})

	t.Run("diff fetch failure halts the run", func(t *testing.T) {
		store := newFakeStore()
		cls := &fakeClassifier{}
		diffs := &fakeDiffs{errs: map[string]error{
			"sha-a": fmt.Errorf("GitHub unavailable"),
		}}
		p := newTestPipeline(store, cls, diffs)

		summary, err := p.Run(ctx, testRepoKey, []*models.RawCommit{
			rawCommit("sha-a", "alice"),
			rawCommit("sha-b", "bob"),
		})
		require.NoError(t, err)
		assert.True(t, summary.Failed)
		assert.Equal(t, 0, summary.Persisted)
		assert.Equal(t, "sha-a", summary.FailedSHA)
		assert.Equal(t, 0, cls.calls)
	})

	t.Run("insert failure halts the run", func(t *testing.T) {
		store := newFakeStore()
		store.insertErr["sha-a"] = apperrors.NewTransientError("store unavailable", nil)
		cls := &fakeClassifier{}
		diffs := &fakeDiffs{}
		p := newTestPipeline(store, cls, diffs)

		summary, err := p.Run(ctx, testRepoKey, []*models.RawCommit{rawCommit("sha-a", "alice")})
		require.NoError(t, err)
		assert.True(t, summary.Failed)
		assert.Equal(t, 0, summary.Persisted)
	})

	t.Run("pre-populated changed files avoid the diff source", func(t *testing.T) {
		store := newFakeStore()
		cls := &fakeClassifier{}
		diffs := &fakeDiffs{}
		p := newTestPipeline(store, cls, diffs)

		commit := rawCommit("sha-a", "alice")
		commit.ChangedFiles = []models.ChangedFile{{Filename: "main.go", Status: "modified"}}

		summary, err := p.Run(ctx, testRepoKey, []*models.RawCommit{commit})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Persisted)
		assert.Equal(t, 0, diffs.calls)
	})

	t.Run("cancelled context aborts the run", func(t *testing.T) {
		store := newFakeStore()
		cls := &fakeClassifier{}
		diffs := &fakeDiffs{}
		p := newTestPipeline(store, cls, diffs)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		summary, err := p.Run(cancelled, testRepoKey, []*models.RawCommit{rawCommit("sha-a", "alice")})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, summary.Persisted)
		assert.Equal(t, 0, store.existCalls)
	})

	t.Run("invalid repository key", func(t *testing.T) {
		store := newFakeStore()
		p := newTestPipeline(store, &fakeClassifier{}, &fakeDiffs{})

		_, err := p.Run(ctx, "not-a-key", nil)
		assert.True(t, apperrors.IsValidationError(err))
	})
}
