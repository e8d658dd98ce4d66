package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskboard/internal/board"
	"github.com/yukikurage/taskboard/internal/dto"
	apierrors "github.com/yukikurage/taskboard/internal/errors"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/workflow"
)

type BoardHandlerTestSuite struct {
	handlerSuite
}

func TestBoardHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(BoardHandlerTestSuite))
}

func (suite *BoardHandlerTestSuite) TestGetBoard_GroupsByStatus() {
	alice := suite.user("alice")
	first := suite.createTask("alice", "First", models.IndividualAssignee{UserIDs: []string{alice.ID}})
	suite.createTask("alice", "Second", models.IndividualAssignee{UserIDs: []string{alice.ID}})
	_, err := suite.tasks.MoveTask(suite.ctx, first.ID, actorOf(alice), models.TaskStatusInProgress, "")
	suite.Require().NoError(err)

	w := suite.do(http.MethodGet, "/api/board", "alice", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.BoardResponse
	suite.decode(w, &resp)
	suite.Equal(2, resp.Total)
	suite.Require().Len(resp.Columns, len(models.TaskStatuses))
	for i, col := range resp.Columns {
		suite.Equal(models.TaskStatuses[i], col.Status)
		suite.Equal(len(col.Tasks), col.Count)
	}
	suite.Equal(1, resp.Columns[0].Count)
	suite.Equal("Second", resp.Columns[0].Tasks[0].Title)
	suite.Equal(1, resp.Columns[1].Count)
	suite.Equal("First", resp.Columns[1].Tasks[0].Title)
}

func (suite *BoardHandlerTestSuite) TestGetBoard_UrgencyOnCards() {
	alice := suite.user("alice")
	task := suite.createTask("alice", "Late", models.IndividualAssignee{UserIDs: []string{alice.ID}})
	past := suite.clock.Add(-time.Hour)
	_, err := suite.tasks.UpdateTask(suite.ctx, task.ID, patchDue(past), alice)
	suite.Require().NoError(err)

	w := suite.do(http.MethodGet, "/api/board?urgency=overdue", "alice", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.BoardResponse
	suite.decode(w, &resp)
	suite.Require().Equal(1, resp.Total)
	suite.Equal(workflow.UrgencyOverdue, resp.Columns[0].Tasks[0].Urgency)
	suite.NotEmpty(resp.Columns[0].Tasks[0].UrgencyLabel)
}

func (suite *BoardHandlerTestSuite) TestGetBoard_UsesSavedFilter() {
	alice := suite.user("alice")
	carol := suite.user("carol")
	suite.createTask("alice", "Alice's", models.IndividualAssignee{UserIDs: []string{alice.ID}})
	suite.createTask("carol", "Carol's", models.IndividualAssignee{UserIDs: []string{carol.ID}})

	w := suite.do(http.MethodPut, "/api/board/filters", "alice", board.Filter{Scope: board.ScopeMine})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.do(http.MethodGet, "/api/board/filters", "alice", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var saved board.Filter
	suite.decode(w, &saved)
	suite.Equal(board.ScopeMine, saved.Scope)

	w = suite.do(http.MethodGet, "/api/board", "alice", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.BoardResponse
	suite.decode(w, &resp)
	suite.Equal(1, resp.Total)
	suite.Equal(board.ScopeMine, resp.Filter.Scope)

	w = suite.do(http.MethodGet, "/api/board?scope=all", "alice", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &resp)
	suite.Equal(2, resp.Total)
}

func (suite *BoardHandlerTestSuite) TestSaveFilter_Invalid() {
	w := suite.do(http.MethodPut, "/api/board/filters", "alice", board.Filter{Scope: "everyone"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *BoardHandlerTestSuite) TestDragAndDrop() {
	alice := suite.user("alice")
	task := suite.createTask("alice", "Drag me", models.IndividualAssignee{UserIDs: []string{alice.ID}})

	w := suite.do(http.MethodPost, "/api/board/drag", "alice", map[string]any{"task_id": task.ID})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var drag dto.DragResponse
	suite.decode(w, &drag)
	suite.Equal(task.ID, drag.Drag.TaskID)
	suite.Equal(models.TaskStatusTodo, drag.Drag.Origin)
	suite.ElementsMatch([]models.TaskStatus{models.TaskStatusInProgress, models.TaskStatusBlocked}, drag.Targets)

	w = suite.do(http.MethodGet, "/api/board/drag", "alice", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodPost, "/api/board/drop", "alice", map[string]any{"status": "in-progress"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var move dto.MoveResponse
	suite.decode(w, &move)
	suite.True(move.Applied)
	suite.Equal(models.TaskStatusInProgress, move.Task.Status)

	w = suite.do(http.MethodGet, "/api/board/drag", "alice", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *BoardHandlerTestSuite) TestDrop_Errors() {
	alice := suite.user("alice")
	task := suite.createTask("alice", "Drag me", models.IndividualAssignee{UserIDs: []string{alice.ID}})

	w := suite.do(http.MethodPost, "/api/board/drop", "alice", map[string]any{"status": "in-progress"})
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal(apierrors.ErrCodeNotDragging, suite.errorCode(w))

	w = suite.do(http.MethodPost, "/api/board/drag", "alice", map[string]any{"task_id": task.ID})
	suite.Require().Equal(http.StatusOK, w.Code)
	w = suite.do(http.MethodPost, "/api/board/drop", "alice", map[string]any{"status": "done"})
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal(apierrors.ErrCodeIllegalTransition, suite.errorCode(w))

	stored, err := suite.tasks.GetTask(task.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusTodo, stored.Status)

	w = suite.do(http.MethodPost, "/api/board/drag", "carol", map[string]any{"task_id": task.ID})
	suite.Require().Equal(http.StatusOK, w.Code)
	w = suite.do(http.MethodPost, "/api/board/drop", "carol", map[string]any{"status": "in-progress"})
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *BoardHandlerTestSuite) TestDrop_TaskMovedSincePickUp() {
	alice := suite.user("alice")
	task := suite.createTask("alice", "Drag me", models.IndividualAssignee{UserIDs: []string{alice.ID}})

	w := suite.do(http.MethodPost, "/api/board/drag", "alice", map[string]any{"task_id": task.ID})
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodPost, "/api/tasks/"+task.ID+"/move", "alice", map[string]any{"status": "in-progress"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	w = suite.do(http.MethodPost, "/api/tasks/"+task.ID+"/move", "alice", map[string]any{"status": "pending-review"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.do(http.MethodPost, "/api/board/drop", "alice", map[string]any{"status": "in-progress", "comment": "starting"})
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal(apierrors.ErrCodeStaleDrag, suite.errorCode(w))

	stored, err := suite.tasks.GetTask(task.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusPendingReview, stored.Status)
	suite.Equal(alice.ID, stored.CompletedBy)

	w = suite.do(http.MethodGet, "/api/board/drag", "alice", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *BoardHandlerTestSuite) TestCancelDrag() {
	alice := suite.user("alice")
	task := suite.createTask("alice", "Drag me", models.IndividualAssignee{UserIDs: []string{alice.ID}})

	w := suite.do(http.MethodPost, "/api/board/drag", "alice", map[string]any{"task_id": task.ID})
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodDelete, "/api/board/drag", "alice", nil)
	suite.Equal(http.StatusNoContent, w.Code)

	w = suite.do(http.MethodPost, "/api/board/drop", "alice", map[string]any{"status": "in-progress"})
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.do(http.MethodPost, "/api/board/drag", "alice", map[string]any{"task_id": "missing"})
	suite.Equal(http.StatusNotFound, w.Code)
}
