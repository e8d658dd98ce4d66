package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard/internal/board"
	apierrors "github.com/yukikurage/taskboard/internal/errors"
	"github.com/yukikurage/taskboard/internal/middleware"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/services"
	"github.com/yukikurage/taskboard/internal/workflow"
)

// abortOnError writes err as an API error unless it only reports that a
// change could not be saved. It returns true when the response was written.
func abortOnError(c *gin.Context, err error) bool {
	if err == nil || errors.Is(err, services.ErrPersistence) {
		return false
	}
	apierrors.Respond(c, err)
	return true
}

// requireUser returns the authenticated user or writes a 401.
func requireUser(c *gin.Context) (models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
	}
	return user, ok
}

func actorOf(user models.User) workflow.Actor {
	return workflow.Actor{ID: user.ID, Role: user.Role}
}

// filterQueryKeys are the query parameters parseFilter reads.
var filterQueryKeys = []string{"scope", "team_id", "status", "search", "tag", "priority", "due_from", "due_to", "urgency", "sort"}

func hasFilterQuery(c *gin.Context) bool {
	for _, key := range filterQueryKeys {
		if _, ok := c.GetQuery(key); ok {
			return true
		}
	}
	return false
}

// parseFilter reads a board filter from the query string. List values are
// comma separated.
func parseFilter(c *gin.Context) (board.Filter, error) {
	f := board.Filter{
		Scope:   board.Scope(c.Query("scope")),
		TeamID:  c.Query("team_id"),
		Search:  c.Query("search"),
		Tags:    splitList(c.Query("tag")),
		SortKey: board.SortKey(c.Query("sort")),
	}
	for _, s := range splitList(c.Query("status")) {
		f.Statuses = append(f.Statuses, models.TaskStatus(s))
	}
	for _, p := range splitList(c.Query("priority")) {
		f.Priorities = append(f.Priorities, models.TaskPriority(p))
	}
	for _, u := range splitList(c.Query("urgency")) {
		f.Urgencies = append(f.Urgencies, workflow.Urgency(u))
	}

	var err error
	if f.DueFrom, err = parseTimeParam(c, "due_from"); err != nil {
		return board.Filter{}, err
	}
	if f.DueTo, err = parseTimeParam(c, "due_to"); err != nil {
		return board.Filter{}, err
	}
	if err := f.Validate(); err != nil {
		return board.Filter{}, err
	}
	return f, nil
}

func parseTimeParam(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an RFC 3339 timestamp", key)
	}
	return &t, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
