package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/idilsaglam/taskday/internal/logger"
	"github.com/idilsaglam/taskday/internal/model"
	"github.com/idilsaglam/taskday/internal/persist"
	"github.com/idilsaglam/taskday/internal/store"
	"github.com/idilsaglam/taskday/internal/suggest"
)

// taskRequest is the body of POST and PUT /api/tasks. dueDate accepts
// RFC 3339 or YYYY-MM-DD; the latter is a date in the server's zone.
type taskRequest struct {
	Summary     string `json:"summary"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
}

func (r taskRequest) data(loc *time.Location) (model.TaskData, error) {
	d := model.TaskData{Summary: r.Summary, Description: r.Description}
	if r.DueDate == "" {
		return d, model.ErrDueDateRequired
	}
	due, err := persist.ParseDueDate(r.DueDate, loc)
	if err != nil {
		return d, err
	}
	d.DueDate = due
	return d, nil
}

func abort(c *gin.Context, code int, err error) {
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

// fail maps domain errors to status codes.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		abort(c, http.StatusNotFound, err)
	case errors.Is(err, model.ErrSummaryRequired),
		errors.Is(err, model.ErrDescriptionRequired),
		errors.Is(err, model.ErrDueDateRequired),
		errors.Is(err, suggest.ErrSummaryRequired):
		abort(c, http.StatusBadRequest, err)
	case errors.Is(err, suggest.ErrUnavailable):
		abort(c, http.StatusServiceUnavailable, err)
	default:
		logger.Error("request failed", "path", c.Request.URL.Path, "err", err)
		abort(c, http.StatusInternalServerError, err)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": s.version,
		"tasks":   s.store.Len(),
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) listTasks(c *gin.Context) {
	if c.Query("flat") == "1" || c.Query("flat") == "true" {
		tasks := s.store.All()
		if tasks == nil {
			tasks = []model.Task{}
		}
		c.JSON(http.StatusOK, tasks)
		return
	}
	c.JSON(http.StatusOK, s.store.Buckets(s.now()))
}

func (s *Server) getTask(c *gin.Context) {
	t, ok := s.store.Get(c.Param("id"))
	if !ok {
		fail(c, store.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) createTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	data, err := req.data(s.now().Location())
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	t, err := s.store.Add(c.Request.Context(), data)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *Server) updateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	data, err := req.data(s.now().Location())
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	t, err := s.store.Update(c.Request.Context(), c.Param("id"), data)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) deleteTask(c *gin.Context) {
	if _, err := s.store.Remove(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) toggleTask(c *gin.Context) {
	t, err := s.store.ToggleComplete(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) suggest(c *gin.Context) {
	var req suggest.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	resp, err := suggest.Do(c.Request.Context(), s.suggester, req)
	switch {
	case err == nil:
		s.metrics.Suggestions.WithLabelValues("ok").Inc()
	case errors.Is(err, suggest.ErrSummaryRequired):
		s.metrics.Suggestions.WithLabelValues("rejected").Inc()
	default:
		s.metrics.Suggestions.WithLabelValues("failed").Inc()
		logger.Warn("suggestion failed", "err", err)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
