package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/tazhibayda/tasks-service/internal/domain"
	"github.com/tazhibayda/tasks-service/internal/log"
	"github.com/tazhibayda/tasks-service/internal/metrics"
	"github.com/tazhibayda/tasks-service/internal/oauth"
	"github.com/tazhibayda/tasks-service/internal/queue"
	"github.com/tazhibayda/tasks-service/internal/repo"
)

const sessionCookie = "session"

type Handler struct {
	Users           repo.UserRepository
	Tasks           repo.TaskRepository
	Redis           *repo.Redis
	RateLimitPerMin int
	Events          queue.Publisher
	Google          *oauth.GoogleOAuth
	JWTSecret       string
	SessionTTL      time.Duration
	DBPing          func(ctx context.Context) error
}

func NewHandler(users repo.UserRepository, tasks repo.TaskRepository, jwtSecret string, sessionTTLMin int,
	rds *repo.Redis, rlPerMin int, pub queue.Publisher, google *oauth.GoogleOAuth) *Handler {
	return &Handler{
		Users:           users,
		Tasks:           tasks,
		Redis:           rds,
		RateLimitPerMin: rlPerMin,
		Events:          pub,
		Google:          google,
		JWTSecret:       jwtSecret,
		SessionTTL:      time.Duration(sessionTTLMin) * time.Minute,
	}
}

type listResp struct {
	Items      []domain.Task `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	Total      int64         `json:"total"`
	TotalPages int64         `json:"totalPages"`
}

// ListTasks godoc
// @Summary List the caller's tasks
// @Tags tasks
// @Security SessionCookie
// @Produce json
// @Param q query string false "substring filter on title, case-insensitive"
// @Param page query int false "page, min 1, default 1"
// @Param pageSize query int false "page size, clamped to [1,100], default 10"
// @Success 200 {object} listResp
// @Failure 401 {object} map[string]string
// @Router /api/tasks [get]
func (h *Handler) ListTasks(c *gin.Context) {
	au := currentUser(c)

	q := c.Query("q")

	// non-numeric values fall back to the defaults before clamping
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	if page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	if err != nil {
		pageSize = 10
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > 100 {
		pageSize = 100
	}

	total, err := h.Tasks.CountByOwner(c.Request.Context(), au.ID, q)
	if err != nil {
		log.Errorf("list tasks: count: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)

	items, err := h.Tasks.ListByOwner(c.Request.Context(), au.ID, repo.ListParams{
		Q:     q,
		Skip:  (page - 1) * pageSize,
		Limit: pageSize,
	})
	if err != nil {
		log.Errorf("list tasks: find: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if items == nil {
		items = []domain.Task{}
	}

	c.JSON(http.StatusOK, listResp{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	})
}

type createTaskReq struct {
	Title string `json:"title"`
}

// CreateTask godoc
// @Summary Create a task
// @Tags tasks
// @Security SessionCookie
// @Accept json
// @Produce json
// @Param payload body createTaskReq true "title"
// @Success 201 {object} domain.Task
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/tasks [post]
func (h *Handler) CreateTask(c *gin.Context) {
	au := currentUser(c)

	var in createTaskReq
	if err := c.ShouldBindJSON(&in); err != nil {
		// malformed body or non-string title
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required and cannot be empty"})
		return
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required and cannot be empty"})
		return
	}
	if utf8.RuneCountInString(title) > 200 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title must be between 1-200 characters"})
		return
	}

	t := &domain.Task{Title: title, UserID: au.ID}
	if err := h.Tasks.CreateTask(c.Request.Context(), t); err != nil {
		log.Errorf("create task: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	metrics.TaskOps.WithLabelValues("created").Inc()
	_ = h.Events.Publish(c.Request.Context(), queue.Exchange, "task.created",
		queue.TaskCreated{TaskID: t.ID, UserID: t.UserID, Title: t.Title},
		c.GetString("X-Request-ID"))

	c.JSON(http.StatusCreated, t)
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return 0, false
	}
	return id, true
}

// ToggleTask godoc
// @Summary Flip a task's done state
// @Tags tasks
// @Security SessionCookie
// @Produce json
// @Param id path int true "task id"
// @Success 200 {object} domain.Task
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/tasks/{id}/toggle [patch]
func (h *Handler) ToggleTask(c *gin.Context) {
	au := currentUser(c)

	id, ok := taskID(c)
	if !ok {
		return
	}

	// two-stage check: absent and foreign tasks answer differently here
	t, err := h.Tasks.FindTask(c.Request.Context(), id)
	if err != nil {
		log.Errorf("toggle task %d: find: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	if t.UserID != au.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	updated, err := h.Tasks.ToggleTask(c.Request.Context(), id)
	if err == repo.ErrNotFound {
		// deleted between the check and the flip
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	if err != nil {
		log.Errorf("toggle task %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	metrics.TaskOps.WithLabelValues("toggled").Inc()
	_ = h.Events.Publish(c.Request.Context(), queue.Exchange, "task.toggled",
		queue.TaskToggled{TaskID: updated.ID, UserID: updated.UserID, Done: updated.Done},
		c.GetString("X-Request-ID"))

	c.JSON(http.StatusOK, updated)
}

// DeleteTask godoc
// @Summary Delete a task
// @Tags tasks
// @Security SessionCookie
// @Produce json
// @Param id path int true "task id"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/tasks/{id} [delete]
func (h *Handler) DeleteTask(c *gin.Context) {
	au := currentUser(c)

	id, ok := taskID(c)
	if !ok {
		return
	}

	// ownership folded into the lookup: foreign and missing are both 404
	deleted, err := h.Tasks.DeleteTaskByOwner(c.Request.Context(), id, au.ID)
	if err != nil {
		log.Errorf("delete task %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	metrics.TaskOps.WithLabelValues("deleted").Inc()
	_ = h.Events.Publish(c.Request.Context(), queue.Exchange, "task.deleted",
		queue.TaskDeleted{TaskID: id, UserID: au.ID},
		c.GetString("X-Request-ID"))

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func (h *Handler) Healthz(c *gin.Context) {
	if h.DBPing != nil {
		if err := h.DBPing(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	if h.Redis != nil {
		if err := h.Redis.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
