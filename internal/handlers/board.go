package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard/internal/board"
	"github.com/yukikurage/taskboard/internal/dto"
	apierrors "github.com/yukikurage/taskboard/internal/errors"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/services"
)

// BoardHandler serves the kanban board and the drag protocol.
type BoardHandler struct {
	boardService *services.BoardService
}

func NewBoardHandler(boardService *services.BoardService) *BoardHandler {
	return &BoardHandler{boardService: boardService}
}

// GetBoard renders the board. Without filter query parameters the caller's
// saved filter is used.
func (h *BoardHandler) GetBoard(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var (
		filter board.Filter
		err    error
	)
	if hasFilterQuery(c) {
		filter, err = parseFilter(c)
		if err != nil {
			apierrors.BadRequest(c, err.Error())
			return
		}
	} else {
		filter, err = h.boardService.SavedFilter(c.Request.Context(), user.ID)
		if abortOnError(c, err) {
			return
		}
	}

	view, err := h.boardService.Board(user, filter)
	if abortOnError(c, err) {
		return
	}
	c.JSON(http.StatusOK, dto.ToBoardResponse(view, filter))
}

// GetFilter returns the caller's saved filter.
func (h *BoardHandler) GetFilter(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	filter, err := h.boardService.SavedFilter(c.Request.Context(), user.ID)
	if abortOnError(c, err) {
		return
	}
	c.JSON(http.StatusOK, filter)
}

// SaveFilter stores the caller's default filter.
func (h *BoardHandler) SaveFilter(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var filter board.Filter
	if err := c.ShouldBindJSON(&filter); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	err := h.boardService.SaveFilter(c.Request.Context(), user.ID, filter)
	if abortOnError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"filter":  filter,
		"warning": services.Warning(err),
	})
}

// BeginDrag picks up a task.
func (h *BoardHandler) BeginDrag(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req struct {
		TaskID string `json:"task_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drag, targets, err := h.boardService.BeginDrag(user, req.TaskID)
	if abortOnError(c, err) {
		return
	}
	c.JSON(http.StatusOK, dto.ToDragResponse(drag, targets))
}

// CurrentDrag returns the caller's drag in progress.
func (h *BoardHandler) CurrentDrag(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	drag, targets, dragging := h.boardService.CurrentDrag(user.ID)
	if !dragging {
		apierrors.NotFound(c, "No task is being dragged")
		return
	}
	c.JSON(http.StatusOK, dto.ToDragResponse(drag, targets))
}

// Drop lands the dragged task on a column.
func (h *BoardHandler) Drop(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
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

	move, err := h.boardService.Drop(c.Request.Context(), user, req.Status, req.Comment)
	if abortOnError(c, err) {
		return
	}
	c.JSON(http.StatusOK, dto.ToMoveResponse(move.Result, move.Warning))
}

// CancelDrag abandons the caller's drag.
func (h *BoardHandler) CancelDrag(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	h.boardService.CancelDrag(user.ID)
	c.Status(http.StatusNoContent)
}
