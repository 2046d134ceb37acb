package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title GitGenie API
// @version 1.0
// @description API for scoring repository commits and ranking authors by impact
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// SetupRouter configures the API routes
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	// API documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		repos := v1.Group("/repos/:owner/:repo")
		{
			repos.POST("/ingest", h.IngestRepository)
			repos.GET("/commits", h.ListCommits)
			repos.GET("/commits/:sha", h.GetCommit)
			repos.GET("/leaderboard", h.GetLeaderboard)
		}
	}

	return r
}
