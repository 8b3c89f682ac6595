// Package store owns the signed-in user's tasks and projects. Every write goes
// through the gateway first and touches local state only once confirmed; the
// change stream keeps the collections in step with other clients.
package store

import (
	"context"
	"sync"

	"uptask/internal/domain"
	"uptask/internal/errors"
	"uptask/internal/gateway"
	"uptask/internal/logging"
	"uptask/internal/selection"
	"uptask/internal/validation"
)

// Option configures a Store.
type Option func(*Store)

// WithTaskValidator replaces the default task validator.
func WithTaskValidator(v *validation.TaskValidator) Option {
	return func(s *Store) { s.taskValidator = v }
}

// WithProjectValidator replaces the default project validator.
func WithProjectValidator(v *validation.ProjectValidator) Option {
	return func(s *Store) { s.projectValidator = v }
}

// WithChangeListener registers fn to be called, outside the store lock, after each
// change-stream event has been reconciled.
func WithChangeListener(fn func(gateway.ChangeEvent)) Option {
	return func(s *Store) { s.listener = fn }
}

// Store is the in-memory source of truth for one user session.
type Store struct {
	gw               gateway.Gateway
	userID           string
	mapper           *domain.Mapper
	taskValidator    *validation.TaskValidator
	projectValidator *validation.ProjectValidator
	listener         func(gateway.ChangeEvent)

	mu                sync.RWMutex
	tasks             []domain.Task    // created_at descending
	projects          []domain.Project // created_at ascending
	selectedProjectID string
	selection         *selection.Manager
	loading           bool
	loaded            bool
	closed            bool
	held              int
	pending           []gateway.ChangeEvent
	generation        uint64 // bumped on every change to tasks or projects
	sub               gateway.Subscription

	closeOnce sync.Once
}

// Snapshot is a consistent, deep-copied view of the store.
type Snapshot struct {
	Tasks             []domain.Task
	Projects          []domain.Project
	IsLoading         bool
	Loaded            bool
	SelectedProjectID string
	SelectedTaskIDs   []string
	ActiveTasks       []domain.Task
	CompletedTasks    []domain.Task
}

// New creates a Store for userID. An empty userID yields a store that stays empty
// and rejects every operation with a not-authenticated error.
func New(gw gateway.Gateway, userID string, opts ...Option) *Store {
	s := &Store{
		gw:               gw,
		userID:           userID,
		mapper:           domain.NewMapper(),
		taskValidator:    validation.NewTaskValidator(),
		projectValidator: validation.NewProjectValidator(),
		selection:        selection.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UserID returns the owner of this store.
func (s *Store) UserID() string {
	return s.userID
}

// Load subscribes to the user's changes, fetches projects and tasks, and creates the
// default project if the user has none. Events arriving while loading are applied
// after the initial collections are in place.
func (s *Store) Load(ctx context.Context) error {
	if s.userID == "" {
		return errors.NewNotAuthenticatedError("load")
	}

	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return errors.NewNotAuthenticatedError("load")
	case s.loaded || s.loading:
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.held++
	s.mu.Unlock()

	sub, err := s.gw.Subscribe(ctx, s.userID, s.ApplyChange)
	if err != nil {
		s.abortLoad()
		return s.gatewayFailure("subscribe", err)
	}

	projects, tasks, err := s.fetch(ctx)
	if err != nil {
		sub.Unsubscribe()
		s.abortLoad()
		return err
	}

	if defaultProject(projects) == nil {
		inbox, err := s.createInbox(ctx)
		if err != nil {
			sub.Unsubscribe()
			s.abortLoad()
			return err
		}
		projects = append(projects, inbox)
	}

	s.mu.Lock()
	if s.closed {
		s.loading = false
		s.held--
		s.mu.Unlock()
		sub.Unsubscribe()
		return errors.NewNotAuthenticatedError("load")
	}
	s.sub = sub
	s.projects = projects
	s.tasks = tasks
	s.generation++
	s.selectedProjectID = defaultProject(projects).ID
	s.loading = false
	s.loaded = true
	s.mu.Unlock()

	s.releaseEvents(nil)
	logging.Debugf("store: loaded %d projects and %d tasks for %s", len(projects), len(tasks), s.userID)
	return nil
}

func (s *Store) fetch(ctx context.Context) ([]domain.Project, []domain.Task, error) {
	projectRecs, err := s.gw.ListProjects(ctx, s.userID)
	if err != nil {
		return nil, nil, s.gatewayFailure("list projects", err)
	}
	taskRecs, err := s.gw.ListTasks(ctx, s.userID)
	if err != nil {
		return nil, nil, s.gatewayFailure("list tasks", err)
	}

	projects, err := s.mapper.Project.FromRecordSlice(projectRecs)
	if err != nil {
		return nil, nil, s.gatewayFailure("list projects", err)
	}
	tasks, err := s.mapper.Task.FromRecordSlice(taskRecs)
	if err != nil {
		return nil, nil, s.gatewayFailure("list tasks", err)
	}
	return projects, tasks, nil
}

// createInbox inserts the default project. If the insert fails because another
// client created one first, that project is used instead.
func (s *Store) createInbox(ctx context.Context) (domain.Project, error) {
	rec, err := s.gw.Insert(ctx, gateway.EntityProjects, s.mapper.Project.ToRecord(domain.NewInbox(s.userID)))
	if err != nil {
		if inbox, ok := s.existingInbox(ctx); ok {
			logging.Debugf("store: default project %s for %s was created elsewhere", inbox.ID, s.userID)
			return inbox, nil
		}
		return domain.Project{}, s.gatewayFailure("create default project", err)
	}
	inbox, err := s.mapper.Project.FromRecord(rec)
	if err != nil {
		return domain.Project{}, s.gatewayFailure("create default project", err)
	}
	logging.Debugf("store: created default project %s for %s", inbox.ID, s.userID)
	return inbox, nil
}

func (s *Store) existingInbox(ctx context.Context) (domain.Project, bool) {
	recs, err := s.gw.ListProjects(ctx, s.userID)
	if err != nil {
		return domain.Project{}, false
	}
	projects, err := s.mapper.Project.FromRecordSlice(recs)
	if err != nil {
		return domain.Project{}, false
	}
	if inbox := defaultProject(projects); inbox != nil {
		return *inbox, true
	}
	return domain.Project{}, false
}

func (s *Store) abortLoad() {
	s.mu.Lock()
	s.loading = false
	s.held--
	s.pending = nil
	s.mu.Unlock()
}

// Close ends the session: the change subscription is released exactly once and the
// collections are cleared. Events delivered afterwards are ignored.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		sub := s.sub
		s.sub = nil
		s.closed = true
		s.loaded = false
		s.tasks = nil
		s.projects = nil
		s.pending = nil
		s.selectedProjectID = ""
		s.selection.Clear()
		s.mu.Unlock()

		if sub != nil {
			sub.Unsubscribe()
		}
		logging.Debugf("store: closed session for %s", s.userID)
	})
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Tasks:             copyTasks(s.tasks),
		Projects:          append([]domain.Project(nil), s.projects...),
		IsLoading:         s.loading,
		Loaded:            s.loaded,
		SelectedProjectID: s.selectedProjectID,
		SelectedTaskIDs:   s.selection.Selected(),
	}
	for _, t := range s.currentProjectTasksLocked() {
		if t.Completed {
			snap.CompletedTasks = append(snap.CompletedTasks, copyTask(t))
		} else {
			snap.ActiveTasks = append(snap.ActiveTasks, copyTask(t))
		}
	}
	return snap
}

// SetSelectedProjectID switches the project view. Switching to a different project
// clears the task selection.
func (s *Store) SetSelectedProjectID(projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked("select project"); err != nil {
		return err
	}
	if s.projectIndexLocked(projectID) < 0 {
		return errors.NewNotFoundError("project", projectID)
	}
	if projectID != s.selectedProjectID {
		s.selectedProjectID = projectID
		s.selection.Clear()
	}
	return nil
}

// readyLocked reports whether the store can serve operations.
func (s *Store) readyLocked(operation string) error {
	if s.userID == "" || s.closed {
		return errors.NewNotAuthenticatedError(operation)
	}
	if !s.loaded {
		return errors.NewInvalidInputError("store", operation, "store is not loaded")
	}
	return nil
}

func (s *Store) ready(operation string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readyLocked(operation)
}

// gatewayFailure logs a failed gateway call and returns it as a gateway error.
func (s *Store) gatewayFailure(operation string, err error) error {
	logging.Errorf("store: %s: %v", operation, err)
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	return errors.NewGatewayError(operation, err)
}

func invalid(message string, err error) error {
	return errors.NewValidationError(message, err)
}

func copyTask(t domain.Task) domain.Task {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return t
}

func copyTasks(tasks []domain.Task) []domain.Task {
	if tasks == nil {
		return nil
	}
	out := make([]domain.Task, len(tasks))
	for i, t := range tasks {
		out[i] = copyTask(t)
	}
	return out
}

func defaultProject(projects []domain.Project) *domain.Project {
	for i := range projects {
		if projects[i].IsDefault {
			return &projects[i]
		}
	}
	return nil
}
