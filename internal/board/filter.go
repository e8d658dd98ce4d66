package board

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/yukikurage/taskboard/internal/assignment"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/workflow"
)

type Scope string

const (
	ScopeAll     Scope = "all"
	ScopeMine    Scope = "mine"
	ScopeCreated Scope = "created"
	ScopeTeam    Scope = "team"
)

type SortKey string

const (
	SortByCreated SortKey = "created"
	SortByUpdated SortKey = "updated"
)

// Filter narrows the board. Every dimension is optional and the set ones
// are combined with AND.
type Filter struct {
	Scope      Scope                 `json:"scope,omitempty"`
	TeamID     string                `json:"team_id,omitempty"`
	Statuses   []models.TaskStatus   `json:"statuses,omitempty"`
	Search     string                `json:"search,omitempty"`
	Tags       []string              `json:"tags,omitempty"`
	Priorities []models.TaskPriority `json:"priorities,omitempty"`
	DueFrom    *time.Time            `json:"due_from,omitempty"`
	DueTo      *time.Time            `json:"due_to,omitempty"`
	Urgencies  []workflow.Urgency    `json:"urgencies,omitempty"`
	SortKey    SortKey               `json:"sort_key,omitempty"`
}

// Viewer is who the board is rendered for and the data needed to evaluate
// scope and urgency.
type Viewer struct {
	User   models.User
	Roster assignment.Roster
	Now    time.Time
}

// Validate rejects unknown enum values.
func (f Filter) Validate() error {
	switch f.Scope {
	case "", ScopeAll, ScopeMine, ScopeCreated, ScopeTeam:
	default:
		return fmt.Errorf("unknown scope %q", f.Scope)
	}
	switch f.SortKey {
	case "", SortByCreated, SortByUpdated:
	default:
		return fmt.Errorf("unknown sort key %q", f.SortKey)
	}
	for _, s := range f.Statuses {
		if !s.IsValid() {
			return fmt.Errorf("unknown status %q", s)
		}
	}
	for _, p := range f.Priorities {
		if !p.IsValid() {
			return fmt.Errorf("unknown priority %q", p)
		}
	}
	for _, u := range f.Urgencies {
		switch u {
		case workflow.UrgencyOverdue, workflow.UrgencyDueSoon, workflow.UrgencyDueToday,
			workflow.UrgencyDueTomorrow, workflow.UrgencyDueLater:
		default:
			return fmt.Errorf("unknown urgency %q", u)
		}
	}
	if f.DueFrom != nil && f.DueTo != nil && f.DueTo.Before(*f.DueFrom) {
		return fmt.Errorf("due_to is before due_from")
	}
	return nil
}

// Match reports whether task passes every set dimension of the filter.
func (f Filter) Match(task models.Task, v Viewer) bool {
	return f.matchScope(task, v) &&
		f.matchStatus(task) &&
		f.matchSearch(task) &&
		f.matchTags(task) &&
		f.matchPriority(task) &&
		f.matchDueRange(task) &&
		f.matchUrgency(task, v.Now)
}

func (f Filter) matchScope(task models.Task, v Viewer) bool {
	switch f.Scope {
	case ScopeMine:
		return v.Roster != nil && assignment.IsMember(task.Assignee, v.User.ID, v.Roster)
	case ScopeCreated:
		return task.CreatedBy == v.User.ID
	case ScopeTeam:
		teamID, ok := assignment.TeamID(task.Assignee)
		if !ok {
			return false
		}
		if f.TeamID != "" {
			return teamID == f.TeamID
		}
		return v.User.InTeam(teamID)
	default:
		return true
	}
}

func (f Filter) matchStatus(task models.Task) bool {
	return len(f.Statuses) == 0 || slices.Contains(f.Statuses, task.Status)
}

func (f Filter) matchSearch(task models.Task) bool {
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(task.Title), q) ||
		strings.Contains(strings.ToLower(task.Description), q) ||
		strings.Contains(strings.ToLower(task.AssigneeName), q) {
		return true
	}
	for _, tag := range task.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func (f Filter) matchTags(task models.Task) bool {
	if len(f.Tags) == 0 {
		return true
	}
	for _, tag := range f.Tags {
		if task.HasTag(tag) {
			return true
		}
	}
	return false
}

func (f Filter) matchPriority(task models.Task) bool {
	return len(f.Priorities) == 0 || slices.Contains(f.Priorities, task.Priority)
}

func (f Filter) matchDueRange(task models.Task) bool {
	if f.DueFrom == nil && f.DueTo == nil {
		return true
	}
	if task.DueDate == nil {
		return false
	}
	if f.DueFrom != nil && task.DueDate.Before(*f.DueFrom) {
		return false
	}
	if f.DueTo != nil && task.DueDate.After(*f.DueTo) {
		return false
	}
	return true
}

func (f Filter) matchUrgency(task models.Task, now time.Time) bool {
	if len(f.Urgencies) == 0 {
		return true
	}
	return slices.Contains(f.Urgencies, workflow.ClassifyDue(now, task.DueDate))
}
