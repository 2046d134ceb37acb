package models

// AuthorScore is one leaderboard row: the sum of impact ratings across
// all of an author's commits in one repository. Derived at read time,
// never persisted.
type AuthorScore struct {
	Name      string `json:"name"`
	Score     int    `json:"score"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Leaderboard is the full ranked author list plus the top-N slice.
type Leaderboard struct {
	Authors []AuthorScore `json:"authors"`
	Top     []AuthorScore `json:"top"`
}
