package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/yukikurage/taskboard/internal/assignment"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/repository"
	"go.uber.org/zap"
)

// Roster is the in-memory user and team directory. It satisfies
// assignment.Roster and is safe for concurrent use.
type Roster struct {
	mu       sync.RWMutex
	saveMu   sync.Mutex
	users    map[string]models.User
	teams    map[string]models.Team
	userRepo repository.UserRepository
	teamRepo repository.TeamRepository
	log      *zap.Logger
}

var _ assignment.Roster = (*Roster)(nil)

func NewRoster(userRepo repository.UserRepository, teamRepo repository.TeamRepository, log *zap.Logger) *Roster {
	return &Roster{
		users:    make(map[string]models.User),
		teams:    make(map[string]models.Team),
		userRepo: userRepo,
		teamRepo: teamRepo,
		log:      log,
	}
}

// Load replaces the in-memory roster with the saved one. Missing or corrupt
// documents start empty.
func (r *Roster) Load(ctx context.Context) error {
	users, err := r.userRepo.LoadAll(ctx)
	if err != nil && !repository.IsMissing(err) {
		return fmt.Errorf("failed to load users: %w", err)
	}
	if errors.Is(err, repository.ErrCorruptValue) {
		r.log.Warn("saved users are corrupt, starting empty", zap.Error(err))
	}

	teams, err := r.teamRepo.LoadAll(ctx)
	if err != nil && !repository.IsMissing(err) {
		return fmt.Errorf("failed to load teams: %w", err)
	}
	if errors.Is(err, repository.ErrCorruptValue) {
		r.log.Warn("saved teams are corrupt, starting empty", zap.Error(err))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = make(map[string]models.User, len(users))
	for _, u := range users {
		r.users[u.ID] = u
	}
	r.teams = make(map[string]models.Team, len(teams))
	for _, t := range teams {
		r.teams[t.ID] = t
	}
	return nil
}

func (r *Roster) User(id string) (models.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	return cloneUser(u), ok
}

func (r *Roster) Team(id string) (models.Team, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.teams[id]
	return cloneTeam(t), ok
}

// UserByUsername looks a user up by login name.
func (r *Roster) UserByUsername(username string) (models.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), true
		}
	}
	return models.User{}, false
}

// TeamByInviteCode looks a team up by its invite code.
func (r *Roster) TeamByInviteCode(code string) (models.Team, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.teams {
		if t.InviteCode != "" && t.InviteCode == code {
			return cloneTeam(t), true
		}
	}
	return models.Team{}, false
}

// Users returns every user ordered by username.
func (r *Roster) Users() []models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	slices.SortFunc(out, func(a, b models.User) int { return cmp.Compare(a.Username, b.Username) })
	return out
}

// Teams returns every team ordered by name.
func (r *Roster) Teams() []models.Team {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Team, 0, len(r.teams))
	for _, t := range r.teams {
		out = append(out, cloneTeam(t))
	}
	slices.SortFunc(out, func(a, b models.Team) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Snapshot copies the roster into a MapRoster for lock-free reads.
func (r *Roster) Snapshot() *assignment.MapRoster {
	return assignment.NewMapRoster(r.Users(), r.Teams())
}

// UserCount returns the number of registered users.
func (r *Roster) UserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// Update runs fn with write access to the roster and saves both documents
// afterwards. fn's error aborts without saving; a save error is returned
// wrapped in ErrPersistence after the in-memory change has been kept.
func (r *Roster) Update(ctx context.Context, fn func(tx *RosterTx) error) error {
	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	r.mu.Lock()
	tx := &RosterTx{r: r}
	if err := fn(tx); err != nil {
		tx.rollback()
		r.mu.Unlock()
		return err
	}
	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, cloneUser(u))
	}
	teams := make([]models.Team, 0, len(r.teams))
	for _, t := range r.teams {
		teams = append(teams, cloneTeam(t))
	}
	r.mu.Unlock()

	slices.SortFunc(users, func(a, b models.User) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(teams, func(a, b models.Team) int { return cmp.Compare(a.ID, b.ID) })

	var saveErr error
	if tx.usersDirty {
		if err := r.userRepo.SaveAll(ctx, users); err != nil {
			saveErr = errors.Join(saveErr, err)
		}
	}
	if tx.teamsDirty {
		if err := r.teamRepo.SaveAll(ctx, teams); err != nil {
			saveErr = errors.Join(saveErr, err)
		}
	}
	if saveErr != nil {
		r.log.Warn("roster change kept in memory but not saved", zap.Error(saveErr))
		return fmt.Errorf("%w: %v", ErrPersistence, saveErr)
	}
	return nil
}

// RosterTx is the write view handed to Roster.Update. Changes are undone if
// the update function fails.
type RosterTx struct {
	r          *Roster
	usersDirty bool
	teamsDirty bool
	undo       []func()
}

func (tx *RosterTx) User(id string) (models.User, bool) {
	u, ok := tx.r.users[id]
	return cloneUser(u), ok
}

func (tx *RosterTx) Team(id string) (models.Team, bool) {
	t, ok := tx.r.teams[id]
	return cloneTeam(t), ok
}

func (tx *RosterTx) Users() []models.User {
	out := make([]models.User, 0, len(tx.r.users))
	for _, u := range tx.r.users {
		out = append(out, cloneUser(u))
	}
	return out
}

func (tx *RosterTx) PutUser(u models.User) {
	prev, existed := tx.r.users[u.ID]
	tx.undo = append(tx.undo, func() {
		if existed {
			tx.r.users[u.ID] = prev
		} else {
			delete(tx.r.users, u.ID)
		}
	})
	tx.r.users[u.ID] = cloneUser(u)
	tx.usersDirty = true
}

func (tx *RosterTx) PutTeam(t models.Team) {
	prev, existed := tx.r.teams[t.ID]
	tx.undo = append(tx.undo, func() {
		if existed {
			tx.r.teams[t.ID] = prev
		} else {
			delete(tx.r.teams, t.ID)
		}
	})
	tx.r.teams[t.ID] = cloneTeam(t)
	tx.teamsDirty = true
}

func (tx *RosterTx) DeleteTeam(id string) {
	prev, existed := tx.r.teams[id]
	if !existed {
		return
	}
	tx.undo = append(tx.undo, func() { tx.r.teams[id] = prev })
	delete(tx.r.teams, id)
	tx.teamsDirty = true
}

func (tx *RosterTx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
}

func cloneUser(u models.User) models.User {
	u.TeamIDs = slices.Clone(u.TeamIDs)
	return u
}

func cloneTeam(t models.Team) models.Team {
	t.MemberIDs = slices.Clone(t.MemberIDs)
	return t
}
