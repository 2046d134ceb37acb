package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "github.com/gitgenie/gitgenie/internal/errors"
	"github.com/gitgenie/gitgenie/internal/models"
)

// IngestService is the slice of the ingestion layer the API needs
type IngestService interface {
	IngestRepository(ctx context.Context, owner, name string, limit int) (*models.RunSummary, error)
	GetRecord(ctx context.Context, owner, name, sha string) (*models.CommitRecord, error)
	ListRecords(ctx context.Context, owner, name string) ([]*models.CommitRecord, error)
}

// LeaderboardService produces ranked author lists
type LeaderboardService interface {
	Leaderboard(ctx context.Context, owner, name string, topN int) (*models.Leaderboard, error)
}

// ErrorResponse is the JSON error body
type ErrorResponse struct {
	Error string `json:"error"`
}

type Handler struct {
	ingest      IngestService
	leaderboard LeaderboardService
	logger      *logrus.Logger
	defaultTopN int
}

func NewHandler(ingest IngestService, leaderboard LeaderboardService, defaultTopN int, logger *logrus.Logger) *Handler {
	return &Handler{
		ingest:      ingest,
		leaderboard: leaderboard,
		logger:      logger,
		defaultTopN: defaultTopN,
	}
}

// IngestRepository runs one ingestion over a repository's recent commits
// @Summary Ingest and score repository commits
// @Description Fetch the repository's commit list, classify each new commit's impact and persist the results
// @Tags repository
// @Accept json
// @Produce json
// @Param owner path string true "Repository owner"
// @Param repo path string true "Repository name"
// @Param limit query int false "Maximum commits to pull this run"
// @Success 200 {object} models.RunSummary
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} models.RunSummary "Run halted on the first classifier failure"
// @Router /repos/{owner}/{repo}/ingest [post]
func (h *Handler) IngestRepository(c *gin.Context) {
	owner := c.Param("owner")
	repo := c.Param("repo")

	limit, err := getIntQueryParam(c, "limit", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid limit parameter"})
		return
	}

	summary, err := h.ingest.IngestRepository(c.Request.Context(), owner, repo, limit)
	if err != nil {
		h.logger.WithError(err).Error("Ingestion failed before the run started")
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to fetch repository commits: " + err.Error()})
		return
	}

	// A halted run is never masked as success
	if summary.Failed {
		c.JSON(http.StatusBadGateway, summary)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetCommit returns one scored commit record
// @Summary Get a scored commit
// @Tags repository
// @Produce json
// @Param owner path string true "Repository owner"
// @Param repo path string true "Repository name"
// @Param sha path string true "Commit SHA"
// @Success 200 {object} models.CommitRecord
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /repos/{owner}/{repo}/commits/{sha} [get]
func (h *Handler) GetCommit(c *gin.Context) {
	owner := c.Param("owner")
	repo := c.Param("repo")
	sha := c.Param("sha")

	record, err := h.ingest.GetRecord(c.Request.Context(), owner, repo, sha)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Commit not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to get commit record")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to get commit"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// ListCommits returns every scored record for a repository
// @Summary List scored commits
// @Tags repository
// @Produce json
// @Param owner path string true "Repository owner"
// @Param repo path string true "Repository name"
// @Success 200 {array} models.CommitRecord
// @Failure 500 {object} ErrorResponse
// @Router /repos/{owner}/{repo}/commits [get]
func (h *Handler) ListCommits(c *gin.Context) {
	owner := c.Param("owner")
	repo := c.Param("repo")

	records, err := h.ingest.ListRecords(c.Request.Context(), owner, repo)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list commit records")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list commits"})
		return
	}

	c.JSON(http.StatusOK, records)
}

// GetLeaderboard returns the ranked author list
// @Summary Get the author leaderboard
// @Description Ranked per-author impact totals for a repository, plus the top-N slice
// @Tags repository
// @Produce json
// @Param owner path string true "Repository owner"
// @Param repo path string true "Repository name"
// @Param limit query int false "Top slice size" default(3)
// @Success 200 {object} models.Leaderboard
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /repos/{owner}/{repo}/leaderboard [get]
func (h *Handler) GetLeaderboard(c *gin.Context) {
	owner := c.Param("owner")
	repo := c.Param("repo")

	topN, err := getIntQueryParam(c, "limit", h.defaultTopN)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid limit parameter"})
		return
	}

	board, err := h.leaderboard.Leaderboard(c.Request.Context(), owner, repo, topN)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build leaderboard")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to build leaderboard"})
		return
	}

	c.JSON(http.StatusOK, board)
}

func getIntQueryParam(c *gin.Context, param string, defaultValue int) (int, error) {
	value := c.Query(param)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}
