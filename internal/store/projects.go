package store

import (
	"context"
	"fmt"

	"uptask/internal/domain"
	"uptask/internal/errors"
	"uptask/internal/gateway"
)

// AddProject creates a project. Unsupported icons fall back to the default icon.
func (s *Store) AddProject(ctx context.Context, name, icon string) (domain.Project, error) {
	if err := s.ready("add project"); err != nil {
		return domain.Project{}, err
	}
	cleanName, err := s.projectValidator.GetValidName(name)
	if err != nil {
		return domain.Project{}, invalid("invalid project", err)
	}

	project := domain.NewProject(cleanName, icon, s.userID)
	rec, err := s.gw.Insert(ctx, gateway.EntityProjects, s.mapper.Project.ToRecord(project))
	if err != nil {
		return domain.Project{}, s.gatewayFailure("add project", err)
	}
	return s.confirmProject("add project", rec)
}

// UpdateProject renames a project or changes its icon. The default flag cannot be changed.
func (s *Store) UpdateProject(ctx context.Context, projectID string, patch domain.ProjectPatch) (domain.Project, error) {
	if err := s.ready("update project"); err != nil {
		return domain.Project{}, err
	}
	if err := s.projectValidator.ValidatePatch(patch); err != nil {
		return domain.Project{}, invalid("invalid project update", err)
	}
	if patch.Name != nil {
		clean, _ := s.projectValidator.GetValidName(*patch.Name)
		patch.Name = &clean
	}
	if _, ok := s.Project(projectID); !ok {
		return domain.Project{}, errors.NewNotFoundError("project", projectID)
	}

	rec, err := s.gw.Update(ctx, gateway.EntityProjects, projectID, s.mapper.Project.PatchToRecord(patch))
	if err != nil {
		return domain.Project{}, s.gatewayFailure("update project", err)
	}
	return s.confirmProject("update project", rec)
}

// DeleteProject removes a non-default project. With keepTasks its tasks move to the
// default project first; otherwise they are deleted first. The project itself is
// deleted only after every task has been handled, so no task is ever orphaned.
func (s *Store) DeleteProject(ctx context.Context, projectID string, keepTasks bool) error {
	if err := s.ready("delete project"); err != nil {
		return err
	}

	s.mu.RLock()
	idx := s.projectIndexLocked(projectID)
	var project domain.Project
	var inboxID string
	var taskIDs []string
	if idx >= 0 {
		project = s.projects[idx]
		if inbox := defaultProject(s.projects); inbox != nil {
			inboxID = inbox.ID
		}
		for _, t := range s.tasks {
			if t.ProjectID == projectID {
				taskIDs = append(taskIDs, t.ID)
			}
		}
	}
	s.mu.RUnlock()

	if idx < 0 {
		return errors.NewNotFoundError("project", projectID)
	}
	if project.IsDefault {
		return errors.NewValidationError("the default project cannot be deleted", nil).WithContext("project", projectID)
	}
	if keepTasks && inboxID == "" {
		return errors.NewGatewayError("delete project", fmt.Errorf("no default project to receive tasks"))
	}

	s.holdEvents()
	var moved []domain.Task
	var deleted []string
	failure := func() error {
		patch := s.mapper.Task.PatchToRecord(domain.TaskPatch{ProjectID: &inboxID})
		for _, id := range taskIDs {
			if keepTasks {
				task, err := s.updateTaskRecord(ctx, "reassign task", id, patch)
				if err != nil {
					return err
				}
				moved = append(moved, task)
				continue
			}
			if err := s.gw.Delete(ctx, gateway.EntityTasks, id); err != nil {
				return s.gatewayFailure("delete task", err)
			}
			deleted = append(deleted, id)
		}
		if err := s.gw.Delete(ctx, gateway.EntityProjects, projectID); err != nil {
			return s.gatewayFailure("delete project", err)
		}
		return nil
	}()

	s.releaseEvents(func() {
		for _, task := range moved {
			s.upsertTaskLocked(task)
		}
		for _, id := range deleted {
			s.removeTaskLocked(id)
		}
		if failure == nil {
			s.removeProjectLocked(projectID)
		}
	})
	return failure
}

// confirmProject maps a row returned by the gateway and applies it through the
// reconciliation path.
func (s *Store) confirmProject(operation string, rec gateway.Record) (domain.Project, error) {
	project, err := s.mapper.Project.FromRecord(rec)
	if err != nil {
		return domain.Project{}, s.gatewayFailure(operation, err)
	}
	s.mu.Lock()
	if !s.closed {
		s.upsertProjectLocked(project)
	}
	s.mu.Unlock()
	return project, nil
}
