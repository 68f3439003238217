// Package server is the thin HTTP boundary: multipart intake, uuid
// parsing, and response marshaling around the orchestrator.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/preevind/timeverify/constants"
	"github.com/preevind/timeverify/internal/common"
	"github.com/preevind/timeverify/internal/entity"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// JobService is what handlers need from the orchestrator.
type JobService interface {
	Submit(ctx context.Context, docs []entity.DocumentRef, label string) (uuid.UUID, error)
	Status(id uuid.UUID) (entity.Job, error)
	Result(id uuid.UUID) (entity.Job, error)
}

// MetricsService supplies the dashboard projection.
type MetricsService interface {
	Snapshot() entity.DashboardMetrics
}

// ReportService renders a terminal job snapshot.
type ReportService interface {
	Generate(job entity.Job) ([]byte, error)
}

type Handler struct {
	jobs      JobService
	metrics   MetricsService
	reports   ReportService
	visionOK  bool
	maxUpload int64
	logger    *slog.Logger
}

func NewHandler(jobs JobService, metrics MetricsService, reports ReportService, visionOK bool, maxUploadMB int, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		jobs:      jobs,
		metrics:   metrics,
		reports:   reports,
		visionOK:  visionOK,
		maxUpload: int64(maxUploadMB) * 1024 * 1024,
		logger:    logger,
	}
}

// ProcessBulk accepts a multipart batch of DOCX files and returns the job
// id immediately; extraction runs in the background.
// POST /process-bulk
func (h *Handler) ProcessBulk(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart request"})
		return
	}

	files := form.File["docx_files"]
	docs := make([]entity.DocumentRef, 0, len(files))
	for _, fh := range files {
		if !constants.IsAllowedDocument(fh.Filename) {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("cannot read %s", fh.Filename)})
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("cannot read %s", fh.Filename)})
			return
		}
		docs = append(docs, entity.DocumentRef{Name: fh.Filename, Content: content})
	}

	if len(docs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid DOCX files found"})
		return
	}

	label := c.PostForm("label")
	jobID, err := h.jobs.Submit(c.Request.Context(), docs, label)
	if err != nil {
		if errors.Is(err, common.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("server.process_bulk.failed",
			"request_id", common.RequestIDFromContext(c.Request.Context()), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submission failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":      jobID.String(),
		"total_files": len(docs),
	})
}

// JobStatus reports true processed/total counts, partial failures included.
// GET /status/:job_id
func (h *Handler) JobStatus(c *gin.Context) {
	id, ok := h.parseJobID(c)
	if !ok {
		return
	}

	job, err := h.jobs.Status(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        string(job.Status),
		"processed":     job.Processed,
		"total":         job.Total,
		"total_entries": len(job.Entries),
		"failed_files":  len(job.FileErrors),
	})
}

// Download streams the XLSX report once the job is terminal. While tasks
// are still in flight it answers 202 rather than an error.
// GET /download/:job_id
func (h *Handler) Download(c *gin.Context) {
	id, ok := h.parseJobID(c)
	if !ok {
		return
	}

	job, err := h.jobs.Result(id)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrPending):
			c.JSON(http.StatusAccepted, gin.H{"status": string(constants.JobStatusProcessing)})
		case errors.Is(err, common.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "result lookup failed"})
		}
		return
	}

	data, err := h.reports.Generate(job)
	if err != nil {
		h.logger.Error("server.download.generate_failed", "job_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report generation failed"})
		return
	}

	filename := fmt.Sprintf("timesheet_report_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// Dashboard returns the aggregate projection, computed fresh per call.
// GET /dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}

// Health is the liveness probe.
// GET /health
func (h *Handler) Health(c *gin.Context) {
	visionState := "available"
	if !h.visionOK {
		visionState = "missing"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"service":    "timeverify",
		"version":    "1.0.0",
		"vision_api": visionState,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) parseJobID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return uuid.Nil, false
	}
	return id, true
}
