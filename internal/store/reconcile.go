package store

import (
	"fmt"

	"uptask/internal/domain"
	"uptask/internal/errors"
	"uptask/internal/gateway"
	"uptask/internal/logging"
)

// ApplyChange reconciles one change-stream event into local state. Inserts of a known
// id are treated as updates, updates and deletes of an unknown id are dropped, and
// malformed events are logged and dropped. Applying the same event twice leaves the
// same state as applying it once.
func (s *Store) ApplyChange(ev gateway.ChangeEvent) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		logging.Debugf("store: dropped %s %s event after close", ev.Operation, ev.Entity)
		return
	}
	if s.held > 0 {
		ev.Record = ev.Record.Clone()
		s.pending = append(s.pending, ev)
		s.mu.Unlock()
		return
	}
	applied := s.applyLocked(ev)
	s.mu.Unlock()

	if applied {
		s.notify([]gateway.ChangeEvent{ev})
	}
}

// holdEvents queues change events until the matching releaseEvents, so a batch write
// becomes visible in one step.
func (s *Store) holdEvents() {
	s.mu.Lock()
	s.held++
	s.mu.Unlock()
}

// releaseEvents runs apply under the lock, then replays events queued while held.
func (s *Store) releaseEvents(apply func()) {
	s.mu.Lock()
	if apply != nil && !s.closed {
		apply()
	}
	s.held--
	var replayed []gateway.ChangeEvent
	if s.held == 0 && len(s.pending) > 0 {
		queued := s.pending
		s.pending = nil
		for _, ev := range queued {
			if s.applyLocked(ev) {
				replayed = append(replayed, ev)
			}
		}
	}
	s.mu.Unlock()

	s.notify(replayed)
}

func (s *Store) notify(events []gateway.ChangeEvent) {
	if s.listener == nil {
		return
	}
	for _, ev := range events {
		s.listener(ev)
	}
}

// applyLocked reconciles ev and logs why it was dropped, if it was.
func (s *Store) applyLocked(ev gateway.ChangeEvent) bool {
	if !s.loaded {
		logging.Debugf("store: dropped %s %s event before load", ev.Operation, ev.Entity)
		return false
	}
	err := s.reconcileLocked(ev)
	switch {
	case err == nil:
		return true
	case errors.IsErrorType(err, errors.ErrorTypeConflictIgnored):
		logging.Debugf("store: ignored %s event: %v", ev.Operation, err)
	default:
		logging.Errorf("store: dropped %s %s event: %v", ev.Operation, ev.Entity, err)
	}
	return false
}

func (s *Store) reconcileLocked(ev gateway.ChangeEvent) error {
	switch ev.Entity {
	case gateway.EntityTasks:
		return s.reconcileTaskLocked(ev)
	case gateway.EntityProjects:
		return s.reconcileProjectLocked(ev)
	default:
		return errors.NewGatewayError("reconcile", fmt.Errorf("unknown entity %q", ev.Entity))
	}
}

func (s *Store) reconcileTaskLocked(ev gateway.ChangeEvent) error {
	switch ev.Operation {
	case gateway.OperationInsert, gateway.OperationUpdate:
		task, err := s.mapper.Task.FromRecord(ev.Record)
		if err != nil {
			return err
		}
		if task.UserID != s.userID {
			return errors.NewGatewayError("reconcile task", fmt.Errorf("task %s belongs to another user", task.ID))
		}
		if ev.Operation == gateway.OperationUpdate && s.taskIndexLocked(task.ID) < 0 {
			return errors.NewConflictIgnoredError("task", task.ID)
		}
		s.upsertTaskLocked(task)
		return nil
	case gateway.OperationDelete:
		id := ev.Record.ID()
		if id == "" {
			return errors.NewGatewayError("reconcile task", fmt.Errorf("delete event without id"))
		}
		if !s.removeTaskLocked(id) {
			return errors.NewConflictIgnoredError("task", id)
		}
		return nil
	default:
		return errors.NewGatewayError("reconcile task", fmt.Errorf("unknown operation %q", ev.Operation))
	}
}

func (s *Store) reconcileProjectLocked(ev gateway.ChangeEvent) error {
	switch ev.Operation {
	case gateway.OperationInsert, gateway.OperationUpdate:
		project, err := s.mapper.Project.FromRecord(ev.Record)
		if err != nil {
			return err
		}
		if project.UserID != s.userID {
			return errors.NewGatewayError("reconcile project", fmt.Errorf("project %s belongs to another user", project.ID))
		}
		if ev.Operation == gateway.OperationUpdate && s.projectIndexLocked(project.ID) < 0 {
			return errors.NewConflictIgnoredError("project", project.ID)
		}
		s.upsertProjectLocked(project)
		return nil
	case gateway.OperationDelete:
		id := ev.Record.ID()
		if id == "" {
			return errors.NewGatewayError("reconcile project", fmt.Errorf("delete event without id"))
		}
		if !s.removeProjectLocked(id) {
			return errors.NewConflictIgnoredError("project", id)
		}
		return nil
	default:
		return errors.NewGatewayError("reconcile project", fmt.Errorf("unknown operation %q", ev.Operation))
	}
}

// upsertTaskLocked replaces a known task in place or prepends a new one. A selected
// task that has left the current project is deselected.
func (s *Store) upsertTaskLocked(task domain.Task) {
	s.generation++
	if idx := s.taskIndexLocked(task.ID); idx >= 0 {
		s.tasks[idx] = task
	} else {
		s.tasks = append([]domain.Task{task}, s.tasks...)
	}
	if task.ProjectID != s.selectedProjectID {
		s.selection.Prune(task.ID)
	}
}

func (s *Store) removeTaskLocked(id string) bool {
	idx := s.taskIndexLocked(id)
	if idx < 0 {
		return false
	}
	s.generation++
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	s.selection.Prune(id)
	return true
}

// upsertProjectLocked replaces a known project in place or appends a new one.
func (s *Store) upsertProjectLocked(project domain.Project) {
	s.generation++
	if idx := s.projectIndexLocked(project.ID); idx >= 0 {
		s.projects[idx] = project
		return
	}
	s.projects = append(s.projects, project)
}

// removeProjectLocked drops a project. Removing the viewed project falls back to
// the default project.
func (s *Store) removeProjectLocked(id string) bool {
	idx := s.projectIndexLocked(id)
	if idx < 0 {
		return false
	}
	s.generation++
	s.projects = append(s.projects[:idx], s.projects[idx+1:]...)
	if s.selectedProjectID == id {
		s.selectedProjectID = ""
		if inbox := defaultProject(s.projects); inbox != nil {
			s.selectedProjectID = inbox.ID
		}
		s.selection.Clear()
	}
	return true
}

func (s *Store) taskIndexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) projectIndexLocked(id string) int {
	for i := range s.projects {
		if s.projects[i].ID == id {
			return i
		}
	}
	return -1
}
