package models

// CommitRecord is the durable unit: one scored commit in one repository.
// Records are insert-only; there is no re-scoring path.
type CommitRecord struct {
	ID        int    `json:"-"`
	RepoKey   string `json:"-"`
	SHA       string `json:"sha"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Date      string `json:"date"`
	Summary   string `json:"summary"`
	Body      string `json:"body"`
	Impact    int    `json:"impact"`
}

// RawCommit is one entry of the ordered commit list fetched from GitHub.
// ChangedFiles is filled lazily, after the dedup check, so commits that
// are already stored never cost a commit-detail request.
type RawCommit struct {
	SHA          string        `json:"sha"`
	Login        string        `json:"login"`
	Date         string        `json:"date"`
	AvatarURL    string        `json:"avatar_url"`
	ChangedFiles []ChangedFile `json:"changed_files,omitempty"`
}

// ChangedFile is a single file entry of a commit diff, passed opaquely
// to the classifier.
type ChangedFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Patch     string `json:"patch,omitempty"`
}
