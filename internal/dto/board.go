package dto

import (
	"time"

	"github.com/yukikurage/taskboard/internal/board"
	"github.com/yukikurage/taskboard/internal/dragdrop"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/services"
)

// ColumnDTO is one status column of the board
type ColumnDTO struct {
	Status models.TaskStatus `json:"status"`
	Label  string            `json:"label"`
	Count  int               `json:"count"`
	Tasks  []TaskCardDTO     `json:"tasks"`
}

// BoardResponse is the grouped board
type BoardResponse struct {
	Columns    []ColumnDTO  `json:"columns"`
	Total      int          `json:"total"`
	Filter     board.Filter `json:"filter"`
	RenderedAt time.Time    `json:"rendered_at"`
}

// DragResponse describes a drag in progress and where it may land
type DragResponse struct {
	Drag    dragdrop.Drag       `json:"drag"`
	Targets []models.TaskStatus `json:"targets"`
}

// ToBoardResponse converts a rendered board
func ToBoardResponse(view *services.BoardView, filter board.Filter) BoardResponse {
	columns := make([]ColumnDTO, len(view.Columns))
	for i, col := range view.Columns {
		cards := make([]TaskCardDTO, len(col.Tasks))
		for j, task := range col.Tasks {
			cards[j] = ToTaskCardDTO(task, view.RenderedAt)
		}
		columns[i] = ColumnDTO{
			Status: col.Status,
			Label:  col.Label,
			Count:  len(cards),
			Tasks:  cards,
		}
	}
	return BoardResponse{
		Columns:    columns,
		Total:      view.Columns.Total(),
		Filter:     filter,
		RenderedAt: view.RenderedAt,
	}
}

// ToDragResponse converts a drag and its targets
func ToDragResponse(drag dragdrop.Drag, targets []models.TaskStatus) DragResponse {
	if targets == nil {
		targets = []models.TaskStatus{}
	}
	return DragResponse{Drag: drag, Targets: targets}
}
