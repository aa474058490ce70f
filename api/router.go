package api

import (
	"hlsforge/config"
	"hlsforge/transcode"

	"github.com/gin-gonic/gin"
)

func SetupRouter(tm *transcode.Manager, cfg *config.Config) *gin.Engine {
	r := gin.Default()
	r.Use(CorrelationMiddleware())
	h := NewHandler(tm, cfg)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Produced output trees are served read-only under a fixed prefix;
	// everything the pipeline writes becomes addressable by its
	// relative path.
	r.Static(StreamPrefix, cfg.OutputRoot)

	v1 := r.Group("/api/v1")
	v1.Use(AuthMiddleware(cfg))
	{
		v1.GET("/ping", h.handlePing)
		v1.GET("/ping/health", h.handleSystemHealth)

		v1.POST("/videos/upload", h.handleUploadVideo)
		v1.GET("/videos", h.handleListJobs)
		v1.GET("/videos/:jobId", h.handleGetJobStatus)
		v1.PATCH("/videos/:jobId/cancel", h.handleCancelJob)
	}
	return r
}
