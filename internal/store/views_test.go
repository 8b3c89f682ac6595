package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uptask/internal/domain"
	"uptask/internal/errors"
)

var testNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func addDueTask(t *testing.T, st *Store, title string, due time.Time) domain.Task {
	t.Helper()
	day := domain.DateOnly(due)
	task, err := st.AddTask(context.Background(), title, "", &day)
	require.NoError(t, err)
	return task
}

func titles(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Title)
	}
	return out
}

func TestOverdueTasks(t *testing.T) {
	st, _ := newLoadedStore(t)
	ctx := context.Background()

	addDueTask(t, st, "last week", testNow.AddDate(0, 0, -7))
	addDueTask(t, st, "yesterday", testNow.AddDate(0, 0, -1))
	addDueTask(t, st, "today", testNow)
	addDueTask(t, st, "tomorrow", testNow.AddDate(0, 0, 1))
	done := addDueTask(t, st, "done long ago", testNow.AddDate(0, -1, 0))
	_, err := st.ToggleTaskCompletion(ctx, done.ID)
	require.NoError(t, err)
	addTasks(t, st, "no due date")

	work, err := st.AddProject(ctx, "Work", "briefcase")
	require.NoError(t, err)
	require.NoError(t, st.SetSelectedProjectID(work.ID))
	addDueTask(t, st, "work report", testNow.AddDate(0, 0, -3))

	assert.Equal(t, []string{"last week", "work report", "yesterday"}, titles(st.OverdueTasks(testNow, "")))
	assert.Equal(t, []string{"work report"}, titles(st.OverdueTasks(testNow, work.ID)))
	assert.Equal(t, []string{"last week", "yesterday"}, titles(st.OverdueTasks(testNow, st.DefaultProjectID())))
}

func TestDueToday(t *testing.T) {
	st, _ := newLoadedStore(t)

	addDueTask(t, st, "yesterday", testNow.AddDate(0, 0, -1))
	addDueTask(t, st, "morning", testNow)
	addDueTask(t, st, "also today", testNow)
	addDueTask(t, st, "tomorrow", testNow.AddDate(0, 0, 1))

	assert.Equal(t, []string{"also today", "morning"}, titles(st.DueToday(testNow)))
	assert.Empty(t, st.DueToday(testNow.AddDate(0, 0, 5)))
}

func TestSearch(t *testing.T) {
	st, _ := newLoadedStore(t)
	ctx := context.Background()
	_, err := st.AddTask(ctx, "Call plumber", "kitchen sink leaks", nil)
	require.NoError(t, err)
	addTasks(t, st, "Buy milk")
	_, err = st.AddProject(ctx, "Kitchen remodel", "home")
	require.NoError(t, err)

	tests := []struct {
		name             string
		query            string
		expectedTasks    []string
		expectedProjects int
	}{
		{"title match", "PLUMBER", []string{"Call plumber"}, 0},
		{"description and project match", "kitchen", []string{"Call plumber"}, 1},
		{"project name only", "remodel", nil, 1},
		{"no match", "garage", nil, 0},
		{"blank query", "   ", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := st.Search(tt.query)
			if tt.expectedTasks == nil {
				assert.Empty(t, res.Tasks)
			} else {
				assert.Equal(t, tt.expectedTasks, titles(res.Tasks))
			}
			assert.Len(t, res.Projects, tt.expectedProjects)
		})
	}
}

func TestSearch_Limits(t *testing.T) {
	st, _ := newLoadedStore(t)
	ctx := context.Background()
	for i := 0; i < MaxSearchTasks+3; i++ {
		addTasks(t, st, fmt.Sprintf("report %d", i))
	}
	for i := 0; i < MaxSearchProjects+2; i++ {
		_, err := st.AddProject(ctx, fmt.Sprintf("Report archive %d", i), "archive")
		require.NoError(t, err)
	}

	res := st.Search("report")

	assert.Len(t, res.Tasks, MaxSearchTasks)
	assert.Len(t, res.Projects, MaxSearchProjects)
	assert.Equal(t, fmt.Sprintf("report %d", MaxSearchTasks+2), res.Tasks[0].Title, "newest tasks first")
}

func TestStats(t *testing.T) {
	st, _ := newLoadedStore(t)
	ctx := context.Background()

	assert.Equal(t, Stats{}, st.Stats(""), "no tasks means a zero rate")

	tasks := addTasks(t, st, "a", "b", "c")
	_, err := st.ToggleTaskCompletion(ctx, tasks[0].ID)
	require.NoError(t, err)
	_, err = st.ToggleTaskCompletion(ctx, tasks[1].ID)
	require.NoError(t, err)

	work, err := st.AddProject(ctx, "Work", "briefcase")
	require.NoError(t, err)
	require.NoError(t, st.SetSelectedProjectID(work.ID))
	addTasks(t, st, "w")

	assert.Equal(t, Stats{Total: 3, Completed: 2, Incomplete: 1, CompletionRate: 67}, st.Stats(st.DefaultProjectID()))
	assert.Equal(t, Stats{Total: 4, Completed: 2, Incomplete: 2, CompletionRate: 50}, st.Stats(""))
	assert.Equal(t, Stats{Total: 1, Incomplete: 1}, st.Stats(work.ID))
}

func TestProjectTaskCounts(t *testing.T) {
	st, _ := newLoadedStore(t)
	ctx := context.Background()
	tasks := addTasks(t, st, "a", "b")
	_, err := st.ToggleTaskCompletion(ctx, tasks[0].ID)
	require.NoError(t, err)
	empty, err := st.AddProject(ctx, "Empty", "folder")
	require.NoError(t, err)

	counts := st.ProjectTaskCounts()

	assert.Equal(t, map[string]int{st.DefaultProjectID(): 1, empty.ID: 0}, counts)
}

func TestResolveProject(t *testing.T) {
	st, _ := newLoadedStore(t)
	ctx := context.Background()
	work, err := st.AddProject(ctx, "Work", "briefcase")
	require.NoError(t, err)
	_, err = st.AddProject(ctx, "Errands", "cart")
	require.NoError(t, err)
	_, err = st.AddProject(ctx, "errands", "cart")
	require.NoError(t, err)

	got, err := st.ResolveProject(work.ID)
	require.NoError(t, err)
	assert.Equal(t, work.ID, got.ID)

	got, err = st.ResolveProject("  wOrK ")
	require.NoError(t, err)
	assert.Equal(t, work.ID, got.ID)

	_, err = st.ResolveProject("Errands")
	errorOfType(errors.ErrorTypeInvalidInput)(t, err)

	_, err = st.ResolveProject("Garden")
	errorOfType(errors.ErrorTypeNotFound)(t, err)
}

func TestOrderedTaskIDs_ActiveBeforeCompleted(t *testing.T) {
	st, _ := newLoadedStore(t)
	tasks := addTasks(t, st, "a", "b", "c")
	_, err := st.ToggleTaskCompletion(context.Background(), tasks[2].ID)
	require.NoError(t, err)

	assert.Equal(t, []string{tasks[1].ID, tasks[0].ID, tasks[2].ID}, st.OrderedTaskIDs())
}

func TestSelectRange_ExtendsFromLastInteraction(t *testing.T) {
	st, _ := newLoadedStore(t)
	added := addTasks(t, st, "a", "b", "c", "d", "e")
	id := map[string]string{}
	for _, task := range added {
		id[task.Title] = task.ID
	}
	require.Equal(t, []string{id["e"], id["d"], id["c"], id["b"], id["a"]}, st.OrderedTaskIDs())

	require.NoError(t, st.ToggleSelection(id["b"]))
	require.NoError(t, st.SelectRange(id["d"], nil))
	assert.ElementsMatch(t, []string{id["b"], id["c"], id["d"]}, st.SelectedTaskIDs())

	require.NoError(t, st.SelectRange(id["a"], nil))
	assert.ElementsMatch(t, []string{id["a"], id["b"], id["c"], id["d"]}, st.SelectedTaskIDs())
}

func TestSelectRange_WithoutAnchorToggles(t *testing.T) {
	st, _ := newLoadedStore(t)
	tasks := addTasks(t, st, "a", "b", "c")

	require.NoError(t, st.SelectRange(tasks[1].ID, nil))

	assert.Equal(t, []string{tasks[1].ID}, st.SelectedTaskIDs())
}

func TestSelection_CurrentProjectOnly(t *testing.T) {
	st, _ := newLoadedStore(t)
	ctx := context.Background()
	inboxTask := addTasks(t, st, "inbox")[0]
	work, err := st.AddProject(ctx, "Work", "briefcase")
	require.NoError(t, err)
	require.NoError(t, st.SetSelectedProjectID(work.ID))
	workTasks := addTasks(t, st, "w1", "w2")

	errorOfType(errors.ErrorTypeNotFound)(t, st.ToggleSelection(inboxTask.ID))
	errorOfType(errors.ErrorTypeNotFound)(t, st.SelectRange("missing", nil))

	st.SelectTasks([]string{inboxTask.ID, workTasks[0].ID, "missing"})
	assert.Equal(t, []string{workTasks[0].ID}, st.SelectedTaskIDs())

	st.SelectAllVisible()
	assert.ElementsMatch(t, []string{workTasks[0].ID, workTasks[1].ID}, st.SelectedTaskIDs())

	st.ClearSelection()
	assert.Empty(t, st.SelectedTaskIDs())
}
