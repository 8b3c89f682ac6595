package store

import (
	"context"

	"uptask/internal/domain"
	"uptask/internal/gateway"
	"uptask/internal/logging"
)

// refreshAttempts bounds how often Refresh re-fetches when local state keeps
// changing underneath it.
const refreshAttempts = 3

// Refresh re-reads the user's rows and feeds every difference from local state
// through the reconciler, as if the change stream had delivered it. It catches up
// on writes made by other processes sharing the backend. It returns the number of
// changes applied.
//
// A fetch is only diffed if no write landed locally while it was in flight;
// otherwise the fetched rows may be older than local state and Refresh tries
// again. When every attempt races a write, the round is skipped.
func (s *Store) Refresh(ctx context.Context) (int, error) {
	for attempt := 0; attempt < refreshAttempts; attempt++ {
		s.mu.RLock()
		err := s.readyLocked("refresh")
		generation := s.generation
		s.mu.RUnlock()
		if err != nil {
			return 0, err
		}

		projects, tasks, err := s.fetch(ctx)
		if err != nil {
			return 0, err
		}

		s.mu.Lock()
		if err := s.readyLocked("refresh"); err != nil {
			s.mu.Unlock()
			return 0, err
		}
		if s.generation != generation || s.held > 0 {
			s.mu.Unlock()
			logging.Debugf("store: refresh raced a local write, retrying")
			continue
		}
		var applied []gateway.ChangeEvent
		for _, ev := range s.diffLocked(projects, tasks) {
			if s.applyLocked(ev) {
				applied = append(applied, ev)
			}
		}
		s.mu.Unlock()

		s.notify(applied)
		return len(applied), nil
	}
	logging.Debugf("store: refresh skipped for %s, local state kept changing", s.userID)
	return 0, nil
}

// diffLocked orders events so projects exist before their tasks arrive and tasks
// leave before their project does. New tasks are applied oldest first so the
// collection stays newest first.
func (s *Store) diffLocked(projects []domain.Project, tasks []domain.Task) []gateway.ChangeEvent {
	var events []gateway.ChangeEvent

	localProjects := make(map[string]domain.Project, len(s.projects))
	for _, p := range s.projects {
		localProjects[p.ID] = p
	}
	remoteProjects := make(map[string]bool, len(projects))
	for _, p := range projects {
		remoteProjects[p.ID] = true
		local, ok := localProjects[p.ID]
		switch {
		case !ok:
			events = append(events, s.projectEvent(gateway.OperationInsert, p))
		case !local.UpdatedAt.Equal(p.UpdatedAt):
			events = append(events, s.projectEvent(gateway.OperationUpdate, p))
		}
	}

	localTasks := make(map[string]domain.Task, len(s.tasks))
	for _, t := range s.tasks {
		localTasks[t.ID] = t
	}
	remoteTasks := make(map[string]bool, len(tasks))
	for i := len(tasks) - 1; i >= 0; i-- {
		t := tasks[i]
		remoteTasks[t.ID] = true
		local, ok := localTasks[t.ID]
		switch {
		case !ok:
			events = append(events, s.taskEvent(gateway.OperationInsert, t))
		case !local.UpdatedAt.Equal(t.UpdatedAt):
			events = append(events, s.taskEvent(gateway.OperationUpdate, t))
		}
	}
	for _, t := range s.tasks {
		if !remoteTasks[t.ID] {
			events = append(events, deleteEvent(gateway.EntityTasks, t.ID))
		}
	}
	for _, p := range s.projects {
		if !remoteProjects[p.ID] {
			events = append(events, deleteEvent(gateway.EntityProjects, p.ID))
		}
	}
	return events
}

func (s *Store) projectEvent(op gateway.Operation, p domain.Project) gateway.ChangeEvent {
	return gateway.ChangeEvent{Entity: gateway.EntityProjects, Operation: op, Record: s.mapper.Project.ToRecord(p)}
}

func (s *Store) taskEvent(op gateway.Operation, t domain.Task) gateway.ChangeEvent {
	return gateway.ChangeEvent{Entity: gateway.EntityTasks, Operation: op, Record: s.mapper.Task.ToRecord(t)}
}

func deleteEvent(entity gateway.Entity, id string) gateway.ChangeEvent {
	return gateway.ChangeEvent{Entity: entity, Operation: gateway.OperationDelete, Record: gateway.Record{gateway.FieldID: id}}
}
