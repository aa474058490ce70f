package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"hlsforge/config"
	"hlsforge/transcode"

	"github.com/gin-gonic/gin"
	"github.com/lithammer/shortuuid/v4"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// StreamPrefix is the URL prefix the produced HLS trees are served under.
const StreamPrefix = "/streams"

type Handler struct {
	manager   *transcode.Manager
	cfg       *config.Config
	startedAt time.Time
}

func NewHandler(tm *transcode.Manager, cfg *config.Config) *Handler {
	return &Handler{
		manager:   tm,
		cfg:       cfg,
		startedAt: time.Now(),
	}
}

// handleUploadVideo accepts one source video as multipart field "video",
// stores it, and queues a transcode job.
func (h *Handler) handleUploadVideo(c *gin.Context) {
	file, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Video file is required"})
		return
	}
	if h.cfg.MaxInputSize > 0 && file.Size > h.cfg.MaxInputSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("Input file size %d exceeds limit of %d bytes", file.Size, h.cfg.MaxInputSize)})
		return
	}

	dst := filepath.Join(h.cfg.UploadDir, shortuuid.New()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, dst); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store upload", "details": err.Error()})
		return
	}

	j, err := h.manager.Submit(dst)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to queue job", "details": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"jobId": j.ID})
}

// handleListJobs lists all jobs.
func (h *Handler) handleListJobs(c *gin.Context) {
	jobs := h.manager.List()
	for _, j := range jobs {
		h.buildPlaybackURL(c, j)
	}
	c.JSON(http.StatusOK, jobs)
}

// buildPlaybackURL constructs the master manifest URL for a completed job.
func (h *Handler) buildPlaybackURL(c *gin.Context, j *transcode.Job) {
	if j.Status != transcode.StatusCompleted || j.MasterPath == "" {
		return
	}

	baseURL := h.cfg.BaseURL
	if baseURL == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, c.Request.Host)
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	j.PlaybackURL = fmt.Sprintf("%s%s/%s/master.m3u8", baseURL, StreamPrefix, j.ID)
}

// handleGetJobStatus retrieves the status of a single job.
func (h *Handler) handleGetJobStatus(c *gin.Context) {
	jobID := c.Param("jobId")
	j, found := h.manager.Get(jobID)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	h.buildPlaybackURL(c, j)
	c.JSON(http.StatusOK, j)
}

// handleCancelJob cancels a job.
func (h *Handler) handleCancelJob(c *gin.Context) {
	jobID := c.Param("jobId")
	if err := h.manager.Cancel(jobID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job cancellation requested"})
}

func (h *Handler) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Pong!"})
}

// handleSystemHealth reports application uptime plus system cpu,
// memory, and disk readings.
func (h *Handler) handleSystemHealth(c *gin.Context) {
	health := gin.H{
		"application": gin.H{
			"uptime":    time.Since(h.startedAt).String(),
			"startedAt": h.startedAt,
		},
		"timestamp": time.Now().UnixMilli(),
	}

	system := gin.H{}
	if p, err := cpu.Percent(0, false); err == nil && len(p) > 0 {
		system["cpuUsagePercent"] = p[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		system["memoryTotal"] = vm.Total
		system["memoryAvailable"] = vm.Available
	}
	if d, err := disk.Usage(h.cfg.OutputRoot); err == nil {
		system["diskTotal"] = d.Total
		system["diskFree"] = d.Free
	}
	health["system"] = system

	c.JSON(http.StatusOK, health)
}
