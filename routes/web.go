package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupWebRoutes thiết lập web routes
func SetupWebRoutes(router *gin.Engine) {
	web := router.Group("/")
	{
		web.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message": "Referral Checker Service",
				"version": "1.0.0",
				"docs":    "/docs",
			})
		})

		web.GET("/docs", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"api": "Referral Checker API v1",
				"endpoints": map[string]string{
					"analyze":     "POST /v1/analyses",
					"export":      "POST /v1/analyses/export?format=csv|xlsx|text",
					"job":         "POST /v1/analyses/jobs",
					"job_status":  "GET /v1/analyses/jobs/:jobID/status",
					"job_results": "GET /v1/analyses/jobs/:jobID/results?format=ndjson&gzip=1",
					"cache_stats": "GET /v1/admin/cache/stats",
					"cache_clear": "POST /v1/admin/cache/clear",
					"health":      "GET /v1/health",
					"metrics":     "GET /metrics",
				},
			})
		})
	}
}
