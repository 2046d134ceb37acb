package leaderboard

import (
	"sort"

	"github.com/gitgenie/gitgenie/internal/models"
)

// DefaultTopN is the leaderboard's convenience slice size.
const DefaultTopN = 3

// Aggregate folds commit records into per-author totals and returns
// them ranked by descending score. One linear pass; the first record
// seen for an author fixes the avatar. Equal scores are ordered by
// username so the ranking is deterministic regardless of scan order.
func Aggregate(records []*models.CommitRecord) []models.AuthorScore {
	totals := make(map[string]*models.AuthorScore)
	order := make([]string, 0)

	for _, r := range records {
		if score, ok := totals[r.Username]; ok {
			score.Score += r.Impact
			continue
		}
		totals[r.Username] = &models.AuthorScore{
			Name:      r.Username,
			Score:     r.Impact,
			AvatarURL: r.AvatarURL,
		}
		order = append(order, r.Username)
	}

	scores := make([]models.AuthorScore, 0, len(order))
	for _, name := range order {
		scores = append(scores, *totals[name])
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Name < scores[j].Name
	})

	return scores
}

// Top returns the first n entries of a ranked score list. n <= 0 falls
// back to DefaultTopN.
func Top(scores []models.AuthorScore, n int) []models.AuthorScore {
	if n <= 0 {
		n = DefaultTopN
	}
	if n > len(scores) {
		n = len(scores)
	}
	return scores[:n]
}
