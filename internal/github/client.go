package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/gitgenie/gitgenie/internal/models"
)

const defaultBaseURL = "https://api.github.com"

// RateLimitInfo holds information about GitHub API rate limits
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetTime time.Time
	// Secondary rate limit info from Retry-After
	SecondaryLimitReset time.Time
}

// Client is a GitHub REST client for listing a repository's commits
// and fetching per-commit diffs.
type Client struct {
	client        *http.Client
	baseURL       string
	logger        *logrus.Logger
	rateLimitInfo RateLimitInfo

	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// ClientOption allows configuring the GitHub client
type ClientOption func(*Client)

// WithRetryConfig configures retry behavior
func WithRetryConfig(maxRetries int, initialBackoff, maxBackoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.initialBackoff = initialBackoff
		c.maxBackoff = maxBackoff
	}
}

// WithBaseURL overrides the API base URL, used by tests
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// NewClient creates a new GitHub client with the given token and options
func NewClient(token string, logger *logrus.Logger, opts ...ClientOption) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	httpClient := oauth2.NewClient(context.Background(), ts)
	httpClient.Timeout = 120 * time.Second

	client := &Client{
		client:         httpClient,
		baseURL:        defaultBaseURL,
		logger:         logger,
		maxRetries:     3,
		initialBackoff: time.Second,
		maxBackoff:     time.Minute,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// updateRateLimitInfo updates the rate limit information from response headers
func (c *Client) updateRateLimitInfo(resp *http.Response) {
	if limit := resp.Header.Get("X-RateLimit-Limit"); limit != "" {
		c.rateLimitInfo.Limit, _ = strconv.Atoi(limit)
	}
	if remaining := resp.Header.Get("X-RateLimit-Remaining"); remaining != "" {
		c.rateLimitInfo.Remaining, _ = strconv.Atoi(remaining)
	}
	if reset := resp.Header.Get("X-RateLimit-Reset"); reset != "" {
		if resetTime, err := strconv.ParseInt(reset, 10, 64); err == nil {
			c.rateLimitInfo.ResetTime = time.Unix(resetTime, 0)
		}
	}

	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if retrySeconds, err := strconv.ParseInt(retryAfter, 10, 64); err == nil {
			c.rateLimitInfo.SecondaryLimitReset = time.Now().Add(time.Duration(retrySeconds) * time.Second)
		}
	}
}

// doRequestWithBackoff performs an HTTP request with exponential backoff
func (c *Client) doRequestWithBackoff(req *http.Request, result interface{}) error {
	var lastErr error
	backoff := c.initialBackoff

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = NewGitHubError(0, "request failed", err)
			c.logger.Warnf("Request attempt %d failed: %v", attempt+1, err)
			time.Sleep(backoff)
			backoff = time.Duration(math.Min(float64(backoff*2), float64(c.maxBackoff)))
			continue
		}

		c.updateRateLimitInfo(resp)

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden && c.rateLimitInfo.Remaining == 0 {
			resp.Body.Close()
			lastErr = &RateLimitError{
				ResetTime: c.rateLimitInfo.ResetTime,
				Limit:     c.rateLimitInfo.Limit,
				Remaining: c.rateLimitInfo.Remaining,
			}
			time.Sleep(backoff)
			backoff = time.Duration(math.Min(float64(backoff*2), float64(c.maxBackoff)))
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = NewGitHubError(resp.StatusCode, "failed to read response body", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = NewGitHubError(resp.StatusCode, string(body), nil)
			if resp.StatusCode >= 500 {
				time.Sleep(backoff)
				backoff = time.Duration(math.Min(float64(backoff*2), float64(c.maxBackoff)))
				continue
			}
			return lastErr
		}

		if result != nil {
			if err := json.Unmarshal(body, result); err != nil {
				return NewGitHubError(resp.StatusCode, "failed to decode response", err)
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// commitListEntry mirrors one element of the GitHub list-commits response
type commitListEntry struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	Author struct {
		Login     string `json:"login"`
		AvatarURL string `json:"avatar_url"`
	} `json:"author"`
}

// ListCommits fetches up to limit commits in the order GitHub returns
// them (reverse chronological). Pages of 100 until the limit or the
// history is exhausted.
func (c *Client) ListCommits(ctx context.Context, owner, name string, limit int) ([]*models.RawCommit, error) {
	if owner == "" {
		return nil, NewValidationError("owner", "cannot be empty")
	}
	if name == "" {
		return nil, NewValidationError("name", "cannot be empty")
	}
	if limit <= 0 {
		limit = 100
	}

	logger := c.logger.WithFields(logrus.Fields{
		"owner": owner,
		"repo":  name,
		"limit": limit,
	})
	logger.Info("Fetching commit list from GitHub API")

	// per_page must stay constant across pages: GitHub page offsets are
	// a function of per_page, so shrinking it mid-fetch would shift the
	// window backwards and duplicate commits.
	perPage := limit
	if perPage > 100 {
		perPage = 100
	}

	var result []*models.RawCommit

	for page := 1; len(result) < limit; page++ {
		url := fmt.Sprintf("%s/repos/%s/%s/commits?per_page=%d&page=%d",
			c.baseURL, owner, name, perPage, page)
		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		var entries []commitListEntry
		if err := c.doRequestWithBackoff(req, &entries); err != nil {
			var ghErr *GitHubError
			if errors.As(err, &ghErr) && ghErr.StatusCode == http.StatusNotFound {
				return nil, NewRepositoryNotFoundError(owner, name)
			}
			logger.WithError(err).Error("Failed to fetch commits from GitHub API")
			return nil, err
		}

		if len(entries) == 0 {
			break
		}

		for _, e := range entries {
			login := e.Author.Login
			if login == "" {
				// Commits pushed without a linked GitHub account only
				// carry the git author name.
				login = e.Commit.Author.Name
			}
			result = append(result, &models.RawCommit{
				SHA:       e.SHA,
				Login:     login,
				Date:      e.Commit.Author.Date,
				AvatarURL: e.Author.AvatarURL,
			})
		}
	}

	// The last page may overshoot; the limit is a simple cap.
	if len(result) > limit {
		result = result[:limit]
	}

	logger.WithField("commits", len(result)).Info("Fetched commit list")
	return result, nil
}

// GetCommitDiff fetches the changed files of a single commit
func (c *Client) GetCommitDiff(ctx context.Context, owner, name, sha string) ([]models.ChangedFile, error) {
	if owner == "" {
		return nil, NewValidationError("owner", "cannot be empty")
	}
	if name == "" {
		return nil, NewValidationError("name", "cannot be empty")
	}
	if sha == "" {
		return nil, NewValidationError("sha", "cannot be empty")
	}

	url := fmt.Sprintf("%s/repos/%s/%s/commits/%s", c.baseURL, owner, name, sha)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var detail struct {
		Files []models.ChangedFile `json:"files"`
	}
	if err := c.doRequestWithBackoff(req, &detail); err != nil {
		c.logger.WithFields(logrus.Fields{
			"owner": owner,
			"repo":  name,
			"sha":   sha,
		}).WithError(err).Error("Failed to fetch commit diff")
		return nil, err
	}

	return detail.Files, nil
}

// IsRateLimitError checks if an error is a rate limit error
func IsRateLimitError(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsRepositoryNotFound checks if an error means the repository does not exist
func IsRepositoryNotFound(err error) bool {
	var notFoundErr *RepositoryNotFoundError
	return errors.As(err, &notFoundErr)
}
