package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ugparu/mp4edts/format/mp4"
	"github.com/ugparu/mp4edts/utils"
)

type handlers struct {
	queue *Queue
}

func statusFor(err error) int {
	var busy *BusyPathError
	var full QueueFullError
	switch {
	case errors.As(err, &busy):
		return http.StatusConflict
	case errors.As(err, &full):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Patch handles POST /api/patch and patches the file before responding.
func (h *handlers) Patch(c *gin.Context) {
	var req PatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	patched, err := h.queue.Patch(req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"patched": patched})
}

// SubmitJob handles POST /api/jobs.
func (h *handlers) SubmitJob(c *gin.Context) {
	var req PatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	job, err := h.queue.Submit(req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, job)
}

func (h *handlers) GetJob(c *gin.Context) {
	job, ok := h.queue.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// GetEditLists handles GET /api/edit-lists?path=.
func (h *handlers) GetEditLists(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}
	info, err := mp4.InspectFile(path)
	if err != nil {
		status := http.StatusInternalServerError
		var noMoov *utils.NoMovieError
		if errors.As(err, &noMoov) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}
