package models

import (
	"errors"
	"fmt"
	"slices"
)

type AssigneeKind string

const (
	AssigneeKindIndividual AssigneeKind = "individual"
	AssigneeKindTeam       AssigneeKind = "team"
	AssigneeKindBoth       AssigneeKind = "both"
)

var ErrEmptyAssignee = errors.New("assignee has no user or team")

// Assignee is the closed set of assignee shapes a task can carry:
// IndividualAssignee, TeamAssignee or UserTeamAssignee.
type Assignee interface {
	Kind() AssigneeKind
	// Validate checks that the ids required by the variant are present.
	Validate() error
	clone() Assignee
}

// IndividualAssignee assigns the task to one or more users.
type IndividualAssignee struct {
	UserIDs []string
}

func (IndividualAssignee) Kind() AssigneeKind { return AssigneeKindIndividual }

func (a IndividualAssignee) Validate() error {
	if len(a.UserIDs) == 0 {
		return ErrEmptyAssignee
	}
	for _, id := range a.UserIDs {
		if id == "" {
			return ErrEmptyAssignee
		}
	}
	return nil
}

func (a IndividualAssignee) clone() Assignee {
	return IndividualAssignee{UserIDs: slices.Clone(a.UserIDs)}
}

// TeamAssignee assigns the task to a whole team.
type TeamAssignee struct {
	TeamID string
}

func (TeamAssignee) Kind() AssigneeKind { return AssigneeKindTeam }

func (a TeamAssignee) Validate() error {
	if a.TeamID == "" {
		return ErrEmptyAssignee
	}
	return nil
}

func (a TeamAssignee) clone() Assignee { return a }

// UserTeamAssignee assigns the task to a user acting for a team.
type UserTeamAssignee struct {
	UserID string
	TeamID string
}

func (UserTeamAssignee) Kind() AssigneeKind { return AssigneeKindBoth }

func (a UserTeamAssignee) Validate() error {
	if a.UserID == "" || a.TeamID == "" {
		return ErrEmptyAssignee
	}
	return nil
}

func (a UserTeamAssignee) clone() Assignee { return a }

// AssigneeEqual compares two assignees by kind and ids.
func AssigneeEqual(a, b Assignee) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case IndividualAssignee:
		bv, ok := b.(IndividualAssignee)
		return ok && slices.Equal(av.UserIDs, bv.UserIDs)
	case TeamAssignee:
		bv, ok := b.(TeamAssignee)
		return ok && av == bv
	case UserTeamAssignee:
		bv, ok := b.(UserTeamAssignee)
		return ok && av == bv
	default:
		return false
	}
}

// AssigneeJSON is the wire form of an Assignee.
type AssigneeJSON struct {
	Kind    AssigneeKind `json:"kind"`
	UserIDs []string     `json:"user_ids,omitempty"`
	UserID  string       `json:"user_id,omitempty"`
	TeamID  string       `json:"team_id,omitempty"`
}

// EncodeAssignee converts an Assignee into its wire form.
func EncodeAssignee(a Assignee) *AssigneeJSON {
	switch v := a.(type) {
	case IndividualAssignee:
		return &AssigneeJSON{Kind: AssigneeKindIndividual, UserIDs: slices.Clone(v.UserIDs)}
	case TeamAssignee:
		return &AssigneeJSON{Kind: AssigneeKindTeam, TeamID: v.TeamID}
	case UserTeamAssignee:
		return &AssigneeJSON{Kind: AssigneeKindBoth, UserID: v.UserID, TeamID: v.TeamID}
	default:
		return nil
	}
}

// Decode converts the wire form back into an Assignee. The "user" kind is
// accepted as an alias of "individual".
func (j AssigneeJSON) Decode() (Assignee, error) {
	var a Assignee
	switch j.Kind {
	case AssigneeKindIndividual, "user":
		ids := slices.Clone(j.UserIDs)
		if len(ids) == 0 && j.UserID != "" {
			ids = []string{j.UserID}
		}
		a = IndividualAssignee{UserIDs: ids}
	case AssigneeKindTeam:
		a = TeamAssignee{TeamID: j.TeamID}
	case AssigneeKindBoth:
		a = UserTeamAssignee{UserID: j.UserID, TeamID: j.TeamID}
	default:
		return nil, fmt.Errorf("unknown assignee kind %q", j.Kind)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}
