package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/DillanDevs/linkedin-scraping/internal/apperr"
	"github.com/DillanDevs/linkedin-scraping/internal/models"
	"github.com/DillanDevs/linkedin-scraping/internal/scraper"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Store is what the API needs from the repository.
type Store interface {
	UpsertBatch(ctx context.Context, jobs []models.JobListing) (int, error)
	ListAll(ctx context.Context) ([]models.JobListing, error)
	GetByID(ctx context.Context, id int64) (*models.JobListing, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type Handler struct {
	store  Store
	logger zerolog.Logger
}

func NewHandler(store Store, logger zerolog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// NewRouter builds the gin engine serving the jobs API.
func NewRouter(store Store, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(logger), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	NewHandler(store, logger).Register(r)

	r.NoRoute(func(c *gin.Context) {
		jsonError(c, http.StatusNotFound, "Not Found")
	})
	return r
}

func (h *Handler) Register(r gin.IRouter) {
	jobs := r.Group("/jobs")
	jobs.POST("/", h.createJobs)
	jobs.GET("/", h.listJobs)
	jobs.GET("/:id", h.getJob)
	jobs.DELETE("/:id", h.deleteJob)
}

func (h *Handler) createJobs(c *gin.Context) {
	var payload []models.JobCreate
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.fail(c, apperr.Validation("invalid request body: "+err.Error(), err))
		return
	}

	jobs := make([]models.JobListing, 0, len(payload))
	for _, in := range payload {
		job := in.ToListing()
		job.JobURL = scraper.NormalizeURL(job.JobURL)
		jobs = append(jobs, job)
	}

	if _, err := h.store.UpsertBatch(c.Request.Context(), models.DedupeByURL(jobs)); err != nil {
		h.fail(c, err)
		return
	}
	jsonMessage(c, http.StatusCreated, fmt.Sprintf("%d job(s) added or updated", len(payload)))
}

func (h *Handler) listJobs(c *gin.Context) {
	jobs, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	jsonData(c, http.StatusOK, jobs)
}

func (h *Handler) getJob(c *gin.Context) {
	id, ok := h.jobID(c)
	if !ok {
		return
	}
	job, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if job == nil {
		h.fail(c, apperr.NotFound("Job not found", nil))
		return
	}
	jsonData(c, http.StatusOK, job)
}

func (h *Handler) deleteJob(c *gin.Context) {
	id, ok := h.jobID(c)
	if !ok {
		return
	}
	deleted, err := h.store.Delete(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !deleted {
		h.fail(c, apperr.NotFound("Job not found", nil))
		return
	}
	jsonMessage(c, http.StatusOK, fmt.Sprintf("Job with id %d successfully deleted", id))
}

func (h *Handler) jobID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.fail(c, apperr.Validation("job id must be an integer", err))
		return 0, false
	}
	return id, true
}

// fail writes the error envelope. Internal errors are logged and hidden from the caller.
func (h *Handler) fail(c *gin.Context, err error) {
	code := statusFor(err)
	msg := "Internal server error"
	var aerr *apperr.Error
	if code < http.StatusInternalServerError && errors.As(err, &aerr) {
		msg = aerr.Message
	} else {
		h.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("❌ request failed")
	}
	jsonError(c, code, msg)
}

// RequestLogger logs one line per request through zerolog.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := logger.Info()
		if status >= http.StatusInternalServerError {
			ev = logger.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}
