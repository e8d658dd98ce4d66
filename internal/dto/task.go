package dto

import (
	"time"

	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/services"
	"github.com/yukikurage/taskboard/internal/utils"
	"github.com/yukikurage/taskboard/internal/workflow"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID            string               `json:"id"`
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	Status        models.TaskStatus    `json:"status"`
	Priority      models.TaskPriority  `json:"priority"`
	Tags          []string             `json:"tags"`
	Assignee      *models.AssigneeJSON `json:"assignee"`
	AssigneeName  string               `json:"assignee_name"`
	CreatedBy     string               `json:"created_by"`
	CreatedByName string               `json:"created_by_name"`
	DueDate       *time.Time           `json:"due_date"`
	CompletedBy   string               `json:"completed_by,omitempty"`
	ReviewedBy    string               `json:"reviewed_by,omitempty"`
	ReviewComment string               `json:"review_comment,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// TaskCardDTO is a task as shown on the board, with its due-date urgency
type TaskCardDTO struct {
	TaskDTO
	Urgency      workflow.Urgency `json:"urgency,omitempty"`
	UrgencyLabel string           `json:"urgency_label,omitempty"`
}

// TaskResponse wraps a changed task with an optional persistence warning
type TaskResponse struct {
	Task    TaskDTO `json:"task"`
	Warning string  `json:"warning,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// MoveResponse is the outcome of a status transition
type MoveResponse struct {
	Task    TaskDTO           `json:"task"`
	From    models.TaskStatus `json:"from"`
	To      models.TaskStatus `json:"to"`
	Applied bool              `json:"applied"`
	Warning string            `json:"warning,omitempty"`
}

// TransitionsResponse lists where a task may move next
type TransitionsResponse struct {
	TaskID  string              `json:"task_id"`
	Status  models.TaskStatus   `json:"status"`
	Allowed []models.TaskStatus `json:"allowed"`
}

// ConvertResponse is the result of turning a message into tasks
type ConvertResponse struct {
	Drafts   []services.TaskDraft `json:"drafts"`
	Created  []TaskDTO            `json:"created"`
	Warnings []string             `json:"warnings,omitempty"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	tags := task.Tags
	if tags == nil {
		tags = []string{}
	}
	return TaskDTO{
		ID:            task.ID,
		Title:         task.Title,
		Description:   task.Description,
		Status:        task.Status,
		Priority:      task.Priority,
		Tags:          tags,
		Assignee:      models.EncodeAssignee(task.Assignee),
		AssigneeName:  task.AssigneeName,
		CreatedBy:     task.CreatedBy,
		CreatedByName: task.CreatedByName,
		DueDate:       task.DueDate,
		CompletedBy:   task.CompletedBy,
		ReviewedBy:    task.ReviewedBy,
		ReviewComment: task.ReviewComment,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}
}

// ToTaskCardDTO converts a task and classifies its due date against now
func ToTaskCardDTO(task models.Task, now time.Time) TaskCardDTO {
	urgency := workflow.ClassifyDue(now, task.DueDate)
	return TaskCardDTO{
		TaskDTO:      ToTaskDTO(task),
		Urgency:      urgency,
		UrgencyLabel: urgency.Label(task.DueDate),
	}
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		out[i] = ToTaskDTO(task)
	}
	return out
}

// ToTaskListResponse converts one page of tasks to TaskListResponse
func ToTaskListResponse(page []models.Task, params utils.PaginationParams, total int) TaskListResponse {
	return TaskListResponse{
		Tasks: ToTaskDTOs(page),
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	}
}

// ToMoveResponse converts a transition result
func ToMoveResponse(result workflow.Result, warning string) MoveResponse {
	return MoveResponse{
		Task:    ToTaskDTO(result.Task),
		From:    result.From,
		To:      result.To,
		Applied: result.Applied,
		Warning: warning,
	}
}

// ToConvertResponse converts a message conversion result
func ToConvertResponse(res *services.ConvertResult) ConvertResponse {
	return ConvertResponse{
		Drafts:   res.Drafts,
		Created:  ToTaskDTOs(res.Created),
		Warnings: res.Warnings,
	}
}
