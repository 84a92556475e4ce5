package http

import (
	"net/http"

	"github.com/Saatvik786/TaskSphere/internal/domain"
	"github.com/Saatvik786/TaskSphere/internal/queue"
	"github.com/Saatvik786/TaskSphere/internal/tasks"
	"github.com/gin-gonic/gin"
)

const titleRequired = "Please provide a task title"

type taskResp struct {
	Task *domain.Task `json:"task"`
}

type taskListResp struct {
	Count int           `json:"count"`
	Tasks []domain.Task `json:"tasks"`
}

// ListTasks godoc
// @Summary List my tasks, newest first
// @Tags tasks
// @Security BearerAuth
// @Produce json
// @Success 200 {object} taskListResp
// @Failure 401 {object} map[string]string
// @Router /api/tasks [get]
func (h *Handler) ListTasks(c *gin.Context) {
	ts, err := h.Tasks.List(c.Request.Context(), c.GetString(uidKey))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, taskListResp{Count: len(ts), Tasks: ts})
}

// CreateTask godoc
// @Summary Create a task
// @Tags tasks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body tasks.CreateInput true "title, description, status"
// @Success 201 {object} taskResp
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/tasks [post]
func (h *Handler) CreateTask(c *gin.Context) {
	var in tasks.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	t, err := h.Tasks.Create(c.Request.Context(), c.GetString(uidKey), in)
	if err != nil {
		h.fail(c, err, titleRequired)
		return
	}
	h.publish(c, queue.KeyTaskCreated, queue.TaskCreated{TaskID: t.ID.Hex(), UserID: t.UserID.Hex(), Title: t.Title})
	c.JSON(http.StatusCreated, taskResp{Task: t})
}

// GetTask godoc
// @Summary Get one of my tasks
// @Tags tasks
// @Security BearerAuth
// @Produce json
// @Param id path string true "task id"
// @Success 200 {object} taskResp
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/tasks/{id} [get]
func (h *Handler) GetTask(c *gin.Context) {
	t, err := h.Tasks.Get(c.Request.Context(), c.GetString(uidKey), c.Param("id"))
	if err != nil {
		h.failTask(c, err)
		return
	}
	c.JSON(http.StatusOK, taskResp{Task: t})
}

// UpdateTask godoc
// @Summary Update one of my tasks
// @Description Blank title or status keep the stored value; a present description replaces it.
// @Tags tasks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "task id"
// @Param payload body tasks.UpdateInput true "fields to change"
// @Success 200 {object} taskResp
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/tasks/{id} [put]
func (h *Handler) UpdateTask(c *gin.Context) {
	var in tasks.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	t, err := h.Tasks.Update(c.Request.Context(), c.GetString(uidKey), c.Param("id"), in)
	if err != nil {
		h.failTask(c, err)
		return
	}
	c.JSON(http.StatusOK, taskResp{Task: t})
}

// DeleteTask godoc
// @Summary Delete one of my tasks
// @Tags tasks
// @Security BearerAuth
// @Produce json
// @Param id path string true "task id"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/tasks/{id} [delete]
func (h *Handler) DeleteTask(c *gin.Context) {
	if err := h.Tasks.Delete(c.Request.Context(), c.GetString(uidKey), c.Param("id")); err != nil {
		h.failTask(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task removed"})
}

func (h *Handler) failTask(c *gin.Context, err error) {
	code, _ := classify(err)
	switch code {
	case http.StatusNotFound:
		c.AbortWithStatusJSON(code, gin.H{"error": "Task not found"})
	case http.StatusForbidden:
		c.AbortWithStatusJSON(code, gin.H{"error": "Not authorized to access this task"})
	default:
		h.fail(c, err, titleRequired)
	}
}
