package store

import (
	"math"
	"sort"
	"strings"
	"time"

	"uptask/internal/domain"
	"uptask/internal/errors"
)

// Search result limits.
const (
	MaxSearchTasks    = 10
	MaxSearchProjects = 5
)

// SearchResults holds the matches of a quick search.
type SearchResults struct {
	Tasks    []domain.Task
	Projects []domain.Project
}

// Stats summarizes completion for a set of tasks.
type Stats struct {
	Total          int
	Completed      int
	Incomplete     int
	CompletionRate int // percent, rounded
}

// Task returns a copy of the task with the given id.
func (s *Store) Task(id string) (domain.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.taskIndexLocked(id); idx >= 0 {
		return copyTask(s.tasks[idx]), true
	}
	return domain.Task{}, false
}

// Project returns the project with the given id.
func (s *Store) Project(id string) (domain.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.projectIndexLocked(id); idx >= 0 {
		return s.projects[idx], true
	}
	return domain.Project{}, false
}

// DefaultProjectID returns the id of the user's inbox, or "" before load.
func (s *Store) DefaultProjectID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if inbox := defaultProject(s.projects); inbox != nil {
		return inbox.ID
	}
	return ""
}

// ResolveProject finds a project by exact id, or else by case-insensitive name.
func (s *Store) ResolveProject(ref string) (domain.Project, error) {
	ref = strings.TrimSpace(ref)
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.projectIndexLocked(ref); idx >= 0 {
		return s.projects[idx], nil
	}
	var matches []domain.Project
	for _, p := range s.projects {
		if strings.EqualFold(p.Name, ref) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Project{}, errors.NewNotFoundError("project", ref)
	case 1:
		return matches[0], nil
	default:
		return domain.Project{}, errors.NewInvalidInputError("project", ref, "name matches more than one project; use the id")
	}
}

// OrderedTaskIDs returns the current project's task ids, active tasks first, then
// completed ones, each in collection order.
func (s *Store) OrderedTaskIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orderedTaskIDsLocked()
}

func (s *Store) orderedTaskIDsLocked() []string {
	var active, completed []string
	for _, t := range s.currentProjectTasksLocked() {
		if t.Completed {
			completed = append(completed, t.ID)
		} else {
			active = append(active, t.ID)
		}
	}
	return append(active, completed...)
}

func (s *Store) currentProjectTasksLocked() []domain.Task {
	var out []domain.Task
	for _, t := range s.tasks {
		if t.ProjectID == s.selectedProjectID {
			out = append(out, t)
		}
	}
	return out
}

// OverdueTasks returns incomplete tasks due before now's calendar day, earliest due
// first. An empty projectID means every project.
func (s *Store) OverdueTasks(now time.Time, projectID string) []domain.Task {
	s.mu.RLock()
	var out []domain.Task
	for _, t := range s.tasks {
		if (projectID == "" || t.ProjectID == projectID) && t.IsOverdue(now) {
			out = append(out, copyTask(t))
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(*out[j].DueDate)
	})
	return out
}

// DueToday returns incomplete tasks due on now's calendar day.
func (s *Store) DueToday(now time.Time) []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Task
	for _, t := range s.tasks {
		if t.IsDueOn(now) {
			out = append(out, copyTask(t))
		}
	}
	return out
}

// Search matches the query case-insensitively against task titles and descriptions
// and project names. A blank query matches nothing.
func (s *Store) Search(query string) SearchResults {
	q := strings.ToLower(strings.TrimSpace(query))
	var res SearchResults
	if q == "" {
		return res
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if len(res.Tasks) == MaxSearchTasks {
			break
		}
		if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Description), q) {
			res.Tasks = append(res.Tasks, copyTask(t))
		}
	}
	for _, p := range s.projects {
		if len(res.Projects) == MaxSearchProjects {
			break
		}
		if strings.Contains(strings.ToLower(p.Name), q) {
			res.Projects = append(res.Projects, p)
		}
	}
	return res
}

// Stats summarizes the tasks of projectID, or of every project when projectID is "".
func (s *Store) Stats(projectID string) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var st Stats
	for _, t := range s.tasks {
		if projectID != "" && t.ProjectID != projectID {
			continue
		}
		st.Total++
		if t.Completed {
			st.Completed++
		}
	}
	st.Incomplete = st.Total - st.Completed
	if st.Total > 0 {
		st.CompletionRate = int(math.Round(float64(st.Completed) * 100 / float64(st.Total)))
	}
	return st
}

// ProjectTaskCounts returns the number of incomplete tasks per project id. Every
// known project has an entry.
func (s *Store) ProjectTaskCounts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int, len(s.projects))
	for _, p := range s.projects {
		counts[p.ID] = 0
	}
	for _, t := range s.tasks {
		if !t.Completed {
			counts[t.ProjectID]++
		}
	}
	return counts
}
