// Package apigateway assembles the HTTP API from the handler packages.
package apigateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"asr-benchmark-platform/internal/auth"
	"asr-benchmark-platform/internal/configmanagement"
	"asr-benchmark-platform/internal/jobmanagement"
)

// SetupRouter builds the gin engine with all routes registered. Every
// endpoint except login and health sits behind the admin session check.
func SetupRouter(authService *auth.Service, samples *configmanagement.Handlers, jobs *jobmanagement.JobService) *gin.Engine {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")

	api.POST("/auth/login", authService.LoginHandler)
	api.POST("/auth/logout", authService.LogoutHandler)

	protected := api.Group("", authService.Middleware())

	protected.POST("/reference-samples", samples.CreateReferenceSampleHandler)
	protected.GET("/reference-samples", samples.ListReferenceSamplesHandler)
	protected.GET("/reference-samples/:id", samples.GetReferenceSampleHandler)
	protected.GET("/reference-samples/:id/audio", samples.DownloadAudioHandler)
	protected.PUT("/reference-samples/:id", samples.UpdateReferenceSampleHandler)
	protected.DELETE("/reference-samples/:id", samples.DeleteReferenceSampleHandler)

	protected.POST("/evaluation-jobs", jobs.CreateJobHandler)
	protected.GET("/evaluation-jobs", jobs.ListJobsHandler)
	protected.GET("/evaluation-jobs/:id", jobs.GetJobHandler)
	protected.GET("/evaluation-jobs/:id/results", jobs.GetJobResultsHandler)

	protected.GET("/models", jobs.ListModelsHandler)
	protected.GET("/leaderboard", jobs.LeaderboardHandler)

	return router
}
