package models

// RunSummary is the outcome of one ingestion run over one repository's
// commit list.
type RunSummary struct {
	Persisted int `json:"persisted"`
	Skipped   int `json:"skipped"`
	// Failed reports that the run halted early; FailedIndex and
	// FailedSHA identify the commit whose classification failed and
	// FailureCause carries the first failure verbatim.
	Failed       bool   `json:"failed"`
	FailedIndex  int    `json:"failed_index"`
	FailedSHA    string `json:"failed_sha,omitempty"`
	FailureCause string `json:"failure_cause,omitempty"`
}
