package classifier

import (
	"context"

	"github.com/gitgenie/gitgenie/internal/models"
)

// Classification is the structured rating of one commit's diff.
type Classification struct {
	Impact  int    `json:"impact"`
	Summary string `json:"summary"`
	Body    string `json:"body"`
}

// Classifier rates the impact of a commit from its changed files.
// Implementations do not cache: deduplication is the pipeline's
// responsibility via the store.
type Classifier interface {
	Classify(ctx context.Context, files []models.ChangedFile) (*Classification, error)
}
