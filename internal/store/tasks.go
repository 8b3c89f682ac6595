package store

import (
	"context"
	"time"

	"uptask/internal/domain"
	"uptask/internal/errors"
	"uptask/internal/gateway"
)

// AddTask creates an incomplete task in the selected project.
func (s *Store) AddTask(ctx context.Context, title, description string, dueDate *time.Time) (domain.Task, error) {
	if err := s.ready("add task"); err != nil {
		return domain.Task{}, err
	}
	cleanTitle, err := s.taskValidator.GetValidTitle(title)
	if err != nil {
		return domain.Task{}, invalid("invalid task", err)
	}

	s.mu.RLock()
	projectID := s.selectedProjectID
	s.mu.RUnlock()

	task := domain.NewTask(cleanTitle, projectID, s.userID)
	task.Description = description
	task.DueDate = dueDate

	rec, err := s.gw.Insert(ctx, gateway.EntityTasks, s.mapper.Task.ToRecord(task))
	if err != nil {
		return domain.Task{}, s.gatewayFailure("add task", err)
	}
	return s.confirmTask("add task", rec)
}

// UpdateTask applies patch to a task. Ownership cannot be changed.
func (s *Store) UpdateTask(ctx context.Context, taskID string, patch domain.TaskPatch) (domain.Task, error) {
	if err := s.ready("update task"); err != nil {
		return domain.Task{}, err
	}
	if err := s.taskValidator.ValidatePatch(patch); err != nil {
		return domain.Task{}, invalid("invalid task update", err)
	}
	if patch.Title != nil {
		clean, _ := s.taskValidator.GetValidTitle(*patch.Title)
		patch.Title = &clean
	}

	s.mu.RLock()
	known := s.taskIndexLocked(taskID) >= 0
	projectKnown := patch.ProjectID == nil || s.projectIndexLocked(*patch.ProjectID) >= 0
	s.mu.RUnlock()
	if !known {
		return domain.Task{}, errors.NewNotFoundError("task", taskID)
	}
	if !projectKnown {
		return domain.Task{}, errors.NewNotFoundError("project", *patch.ProjectID)
	}

	rec, err := s.gw.Update(ctx, gateway.EntityTasks, taskID, s.mapper.Task.PatchToRecord(patch))
	if err != nil {
		return domain.Task{}, s.gatewayFailure("update task", err)
	}
	return s.confirmTask("update task", rec)
}

// ToggleTaskCompletion flips a task's completed flag.
func (s *Store) ToggleTaskCompletion(ctx context.Context, taskID string) (domain.Task, error) {
	task, ok := s.Task(taskID)
	if !ok {
		if err := s.ready("toggle task"); err != nil {
			return domain.Task{}, err
		}
		return domain.Task{}, errors.NewNotFoundError("task", taskID)
	}
	completed := !task.Completed
	return s.UpdateTask(ctx, taskID, domain.TaskPatch{Completed: &completed})
}

// DeleteTask removes one task. An absent id is not an error.
func (s *Store) DeleteTask(ctx context.Context, taskID string) error {
	return s.DeleteTasks(ctx, []string{taskID})
}

// DeleteTasks removes every listed task that exists, and deselects them. Absent ids
// are ignored. If a gateway call fails, the deletions confirmed so far are kept and
// the error is returned.
func (s *Store) DeleteTasks(ctx context.Context, taskIDs []string) error {
	if err := s.ready("delete tasks"); err != nil {
		return err
	}
	if err := s.taskValidator.ValidateTaskIDs(taskIDs); err != nil {
		return invalid("invalid task ids", err)
	}

	s.mu.RLock()
	targets := s.presentTaskIDsLocked(taskIDs)
	s.mu.RUnlock()
	if len(targets) == 0 {
		s.pruneSelection(taskIDs)
		return nil
	}

	s.holdEvents()
	deleted := make([]string, 0, len(targets))
	var failure error
	for _, id := range targets {
		if err := s.gw.Delete(ctx, gateway.EntityTasks, id); err != nil {
			failure = s.gatewayFailure("delete task", err)
			break
		}
		deleted = append(deleted, id)
	}
	s.releaseEvents(func() {
		for _, id := range deleted {
			s.removeTaskLocked(id)
		}
		if failure == nil {
			s.selection.Prune(taskIDs...)
		}
	})
	return failure
}

// MoveTasksToProject reassigns every listed task to projectID and deselects them.
// The target project must exist. Absent task ids are ignored.
func (s *Store) MoveTasksToProject(ctx context.Context, taskIDs []string, projectID string) error {
	if err := s.ready("move tasks"); err != nil {
		return err
	}
	if err := s.taskValidator.ValidateTaskIDs(taskIDs); err != nil {
		return invalid("invalid task ids", err)
	}

	s.mu.RLock()
	projectKnown := s.projectIndexLocked(projectID) >= 0
	var targets []string
	for _, id := range s.presentTaskIDsLocked(taskIDs) {
		if s.tasks[s.taskIndexLocked(id)].ProjectID != projectID {
			targets = append(targets, id)
		}
	}
	s.mu.RUnlock()
	if !projectKnown {
		return errors.NewNotFoundError("project", projectID)
	}

	s.holdEvents()
	moved := make([]domain.Task, 0, len(targets))
	var failure error
	patch := s.mapper.Task.PatchToRecord(domain.TaskPatch{ProjectID: &projectID})
	for _, id := range targets {
		task, err := s.updateTaskRecord(ctx, "move task", id, patch)
		if err != nil {
			failure = err
			break
		}
		moved = append(moved, task)
	}
	s.releaseEvents(func() {
		for _, task := range moved {
			s.upsertTaskLocked(task)
			s.selection.Prune(task.ID)
		}
		if failure == nil {
			s.selection.Prune(taskIDs...)
		}
	})
	return failure
}

// updateTaskRecord sends a task patch and maps the confirmed row.
func (s *Store) updateTaskRecord(ctx context.Context, operation, taskID string, patch gateway.Record) (domain.Task, error) {
	rec, err := s.gw.Update(ctx, gateway.EntityTasks, taskID, patch)
	if err != nil {
		return domain.Task{}, s.gatewayFailure(operation, err)
	}
	task, err := s.mapper.Task.FromRecord(rec)
	if err != nil {
		return domain.Task{}, s.gatewayFailure(operation, err)
	}
	return task, nil
}

// confirmTask maps a row returned by the gateway and applies it the way the change
// stream would, so the later echo event changes nothing.
func (s *Store) confirmTask(operation string, rec gateway.Record) (domain.Task, error) {
	task, err := s.mapper.Task.FromRecord(rec)
	if err != nil {
		return domain.Task{}, s.gatewayFailure(operation, err)
	}
	s.mu.Lock()
	if !s.closed {
		s.upsertTaskLocked(task)
	}
	s.mu.Unlock()
	return copyTask(task), nil
}

// presentTaskIDsLocked returns the distinct listed ids that exist locally, in list order.
func (s *Store) presentTaskIDsLocked(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if seen[id] || s.taskIndexLocked(id) < 0 {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
