// Package selection tracks the multi-selected tasks of one project view.
package selection

// Manager holds a set of selected task ids plus the last-interacted id used as
// the anchor for range selection. It is not safe for concurrent use; the store
// guards it with its own lock.
type Manager struct {
	selected map[string]struct{}
	order    []string
	last     string
}

// New creates an empty Manager.
func New() *Manager {
	return &Manager{selected: make(map[string]struct{})}
}

// Toggle adds taskID if absent and removes it if present. taskID becomes the
// range anchor either way.
func (m *Manager) Toggle(taskID string) {
	if m.Has(taskID) {
		m.remove(taskID)
	} else {
		m.add(taskID)
	}
	m.last = taskID
}

// SelectRange adds every id between the anchor and taskID (inclusive) in
// ordered. Without an anchor, or when either end is missing from ordered, it
// falls back to Toggle. Ids selected outside the range stay selected.
func (m *Manager) SelectRange(taskID string, ordered []string) {
	if m.last == "" {
		m.Toggle(taskID)
		return
	}

	from, to := indexOf(ordered, m.last), indexOf(ordered, taskID)
	if from < 0 || to < 0 {
		m.Toggle(taskID)
		return
	}
	if from > to {
		from, to = to, from
	}
	for _, id := range ordered[from : to+1] {
		m.add(id)
	}
	m.last = taskID
}

// Add selects every id without touching the anchor.
func (m *Manager) Add(ids ...string) {
	for _, id := range ids {
		m.add(id)
	}
}

// Clear empties the selection and drops the anchor.
func (m *Manager) Clear() {
	m.selected = make(map[string]struct{})
	m.order = nil
	m.last = ""
}

// Prune removes ids from the selection. The anchor is dropped if pruned.
func (m *Manager) Prune(ids ...string) {
	for _, id := range ids {
		m.remove(id)
		if m.last == id {
			m.last = ""
		}
	}
}

// Has reports whether taskID is selected.
func (m *Manager) Has(taskID string) bool {
	_, ok := m.selected[taskID]
	return ok
}

// Selected returns the selected ids in the order they were first selected.
func (m *Manager) Selected() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

func (m *Manager) add(id string) {
	if _, ok := m.selected[id]; ok {
		return
	}
	m.selected[id] = struct{}{}
	m.order = append(m.order, id)
}

func (m *Manager) remove(id string) {
	if _, ok := m.selected[id]; !ok {
		return
	}
	delete(m.selected, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
