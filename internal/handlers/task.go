package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard/internal/dto"
	apierrors "github.com/yukikurage/taskboard/internal/errors"
	"github.com/yukikurage/taskboard/internal/middleware"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/permissions"
	"github.com/yukikurage/taskboard/internal/services"
	"github.com/yukikurage/taskboard/internal/tasks"
	"github.com/yukikurage/taskboard/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
	converter   *services.MessageConverter
}

func NewTaskHandler(taskService *services.TaskService, converter *services.MessageConverter) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		converter:   converter,
	}
}

// ListTasks returns the tasks matching the query filter, newest first
func (h *TaskHandler) ListTasks(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	params := utils.GetPaginationParams(c)
	all := h.taskService.ListTasks(services.ListTasksInput{Viewer: user, Filter: filter})
	c.JSON(http.StatusOK, dto.ToTaskListResponse(utils.Paginate(all, params), params, len(all)))
}

// GetTask returns a specific task by ID
// Task is already loaded by RequireTask middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(task))
}

// CreateTask creates a new task in the todo column. Without an assignee the
// task is assigned to its creator.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title       string               `json:"title" binding:"required,max=200"`
		Description string               `json:"description"`
		Assignee    *models.AssigneeJSON `json:"assignee"`
		DueDate     *time.Time           `json:"due_date"`
		Priority    models.TaskPriority  `json:"priority"`
		Tags        []string             `json:"tags"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var assignee models.Assignee = models.IndividualAssignee{UserIDs: []string{user.ID}}
	if req.Assignee != nil {
		decoded, err := req.Assignee.Decode()
		if err != nil {
			apierrors.BadRequestWithDetails(c, "Invalid assignee", gin.H{"reason": err.Error()})
			return
		}
		assignee = decoded
	}

	m, err := h.taskService.CreateTask(c.Request.Context(), tasks.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Assignee:    assignee,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		Tags:        req.Tags,
	}, user)
	if abortOnError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, dto.TaskResponse{Task: dto.ToTaskDTO(m.Task), Warning: m.Warning})
}

// UpdateTask updates the fields present in the body. "due_date": null clears
// the due date.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]json.RawMessage
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if _, ok := rawReq["status"]; ok {
		apierrors.BadRequest(c, "Use the move endpoint to change status")
		return
	}

	patch, err := decodePatch(rawReq)
	if err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", gin.H{"reason": err.Error()})
		return
	}

	m, err := h.taskService.UpdateTask(c.Request.Context(), task.ID, patch, user)
	if abortOnError(c, err) {
		return
	}
	c.JSON(http.StatusOK, dto.TaskResponse{Task: dto.ToTaskDTO(m.Task), Warning: m.Warning})
}

func decodePatch(raw map[string]json.RawMessage) (tasks.Patch, error) {
	var patch tasks.Patch
	if v, ok := raw["title"]; ok {
		if err := json.Unmarshal(v, &patch.Title); err != nil {
			return patch, err
		}
	}
	if v, ok := raw["description"]; ok {
		if err := json.Unmarshal(v, &patch.Description); err != nil {
			return patch, err
		}
	}
	if v, ok := raw["due_date"]; ok {
		if string(v) == "null" {
			patch.ClearDueDate = true
		} else if err := json.Unmarshal(v, &patch.DueDate); err != nil {
			return patch, err
		}
	}
	if v, ok := raw["tags"]; ok {
		var tags []string
		if err := json.Unmarshal(v, &tags); err != nil {
			return patch, err
		}
		patch.Tags = &tags
	}
	if v, ok := raw["priority"]; ok {
		if err := json.Unmarshal(v, &patch.Priority); err != nil {
			return patch, err
		}
	}
	if v, ok := raw["assignee"]; ok {
		var aj models.AssigneeJSON
		if err := json.Unmarshal(v, &aj); err != nil {
			return patch, err
		}
		a, err := aj.Decode()
		if err != nil {
			return patch, err
		}
		patch.Assignee = a
	}
	return patch, nil
}

// DeleteTask deletes a task. Creators may delete their own tasks; anyone
// else needs the delete permission.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if task.CreatedBy != user.ID && !middleware.Checker(c).HasPermission(permissions.DeleteTask) {
		apierrors.Forbidden(c, "Only the creator or a manager can delete this task")
		return
	}

	warning, err := h.taskService.DeleteTask(c.Request.Context(), task.ID)
	if abortOnError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
		"warning": warning,
	})
}

// MoveTask changes a task's status through the workflow engine.
func (h *TaskHandler) MoveTask(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	var req struct {
		Status  models.TaskStatus `json:"status" binding:"required"`
		Comment string            `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	move, err := h.taskService.MoveTask(c.Request.Context(), task.ID, actorOf(user), req.Status, req.Comment)
	if abortOnError(c, err) {
		return
	}
	c.JSON(http.StatusOK, dto.ToMoveResponse(move.Result, move.Warning))
}

// Transitions lists the statuses the caller may move the task to.
func (h *TaskHandler) Transitions(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	allowed, err := h.taskService.AllowedTransitions(task.ID, actorOf(user))
	if abortOnError(c, err) {
		return
	}
	c.JSON(http.StatusOK, dto.TransitionsResponse{TaskID: task.ID, Status: task.Status, Allowed: allowed})
}

// ConvertMessage turns a chat message into tasks
func (h *TaskHandler) ConvertMessage(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	type ConvertRequest struct {
		Message string `json:"message" binding:"required"`
		DryRun  bool   `json:"dry_run"`
	}

	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if h.converter == nil {
		apierrors.ServiceUnavailable(c, "Message conversion is not configured")
		return
	}

	res, err := h.converter.Convert(c.Request.Context(), services.ConvertInput{
		Message: req.Message,
		DryRun:  req.DryRun,
	}, user)
	if abortOnError(c, err) {
		return
	}

	status := http.StatusCreated
	if req.DryRun {
		status = http.StatusOK
	}
	c.JSON(status, dto.ToConvertResponse(res))
}
