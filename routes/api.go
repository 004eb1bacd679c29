package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/referral-checker/app/controllers"
)

// SetupAPIRoutes thiết lập tất cả API routes
func SetupAPIRoutes(router *gin.Engine, analysisController *controllers.AnalysisController, adminController *controllers.AdminController) {
	// API v1 group
	v1 := router.Group("/v1")
	{
		analyses := v1.Group("/analyses")
		{
			analyses.POST("", analysisController.Analyze)
			analyses.POST("/export", analysisController.Export)
			analyses.POST("/jobs", analysisController.CreateJob)
			analyses.GET("/jobs/:jobID/status", analysisController.GetJobStatus)
			analyses.GET("/jobs/:jobID/results", analysisController.GetJobResults)
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/cache/stats", adminController.GetCacheStats)
			admin.POST("/cache/clear", adminController.ClearCache)
			admin.POST("/jobs/cleanup", adminController.CleanupJobs)
			admin.GET("/config", adminController.GetConfig)
		}

		v1.GET("/health", analysisController.HealthCheck)
	}
}

// SetupHealthRoutes thiết lập health check routes
func SetupHealthRoutes(router *gin.Engine, analysisController *controllers.AnalysisController) {
	router.GET("/health", analysisController.HealthCheck)
	router.GET("/ready", analysisController.HealthCheck)
	router.GET("/live", analysisController.HealthCheck)
}
