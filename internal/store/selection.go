package store

import "uptask/internal/errors"

// ToggleSelection selects or deselects a task of the current project.
func (s *Store) ToggleSelection(taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.selectableLocked(taskID); err != nil {
		return err
	}
	s.selection.Toggle(taskID)
	return nil
}

// SelectRange extends the selection from the last interacted task to taskID over
// ordered. A nil ordered uses OrderedTaskIDs. Ids outside the current project are
// skipped.
func (s *Store) SelectRange(taskID string, ordered []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.selectableLocked(taskID); err != nil {
		return err
	}

	visible := s.orderedTaskIDsLocked()
	if ordered != nil {
		inView := make(map[string]bool, len(visible))
		for _, id := range visible {
			inView[id] = true
		}
		filtered := make([]string, 0, len(ordered))
		for _, id := range ordered {
			if inView[id] {
				filtered = append(filtered, id)
			}
		}
		visible = filtered
	}
	s.selection.SelectRange(taskID, visible)
	return nil
}

// SelectTasks adds every listed task of the current project to the selection.
// Unknown ids are skipped.
func (s *Store) SelectTasks(taskIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range taskIDs {
		if s.selectableLocked(id) == nil {
			s.selection.Add(id)
		}
	}
}

// SelectAllVisible selects every task of the current project.
func (s *Store) SelectAllVisible() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Add(s.orderedTaskIDsLocked()...)
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Clear()
}

// SelectedTaskIDs returns the selected task ids in selection order.
func (s *Store) SelectedTaskIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection.Selected()
}

func (s *Store) pruneSelection(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Prune(ids...)
}

func (s *Store) selectableLocked(taskID string) error {
	if err := s.readyLocked("select task"); err != nil {
		return err
	}
	idx := s.taskIndexLocked(taskID)
	if idx < 0 || s.tasks[idx].ProjectID != s.selectedProjectID {
		return errors.NewNotFoundError("task", taskID)
	}
	return nil
}
