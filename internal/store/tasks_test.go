package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uptask/internal/config"
	"uptask/internal/domain"
	"uptask/internal/errors"
	"uptask/internal/gateway"
	"uptask/internal/validation"
)

func TestAddTask(t *testing.T) {
	st, gw := newLoadedStore(t)
	due := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	task, err := st.AddTask(context.Background(), "  Buy milk  ", "2 litres", &due)
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "2 litres", task.Description)
	assert.False(t, task.Completed)
	assert.Equal(t, st.DefaultProjectID(), task.ProjectID)
	assert.Equal(t, testUser, task.UserID)
	require.NotNil(t, task.DueDate)
	assert.True(t, task.DueDate.Equal(due))

	snap := st.Snapshot()
	require.Len(t, snap.Tasks, 1, "echo event must not duplicate the confirmed task")
	assert.Equal(t, task, snap.Tasks[0])
	assert.Len(t, gw.Rows(gateway.EntityTasks), 1)
}

func TestAddTask_PrependsNewest(t *testing.T) {
	st, _ := newLoadedStore(t)
	addTasks(t, st, "first", "second", "third")

	snap := st.Snapshot()
	titles := []string{snap.Tasks[0].Title, snap.Tasks[1].Title, snap.Tasks[2].Title}
	assert.Equal(t, []string{"third", "second", "first"}, titles)
}

func TestAddTask_Rejected(t *testing.T) {
	tests := []struct {
		name           string
		title          string
		errorAssertion func(*testing.T, error)
	}{
		{"empty title", "", errorOfType(errors.ErrorTypeValidation)},
		{"blank title", "   ", errorOfType(errors.ErrorTypeValidation)},
		{"tab and newline", "\t\n", errorOfType(errors.ErrorTypeValidation)},
		{"too long", strings.Repeat("x", 501), errorOfType(errors.ErrorTypeValidation)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, gw := newLoadedStore(t)
			writes := gw.TotalWrites()

			_, err := st.AddTask(context.Background(), tt.title, "", nil)
			tt.errorAssertion(t, err)
			assert.True(t, validation.IsValidationError(err), "field errors stay reachable")

			assert.Empty(t, st.Snapshot().Tasks)
			assert.Equal(t, writes, gw.TotalWrites(), "validation happens before the gateway")
		})
	}
}

func TestAddTask_ConfiguredTitleLimit(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Validation.TitleMaxLength = 4
	st, _ := newLoadedStore(t, WithTaskValidator(validation.NewTaskValidatorWithConfig(cfg)))

	_, err := st.AddTask(context.Background(), "short", "", nil)
	errorOfType(errors.ErrorTypeValidation)(t, err)

	_, err = st.AddTask(context.Background(), "tiny", "", nil)
	assert.NoError(t, err)
}

func TestAddTask_GatewayFailureLeavesStateUnchanged(t *testing.T) {
	st, gw := newLoadedStore(t)
	addTasks(t, st, "existing")
	before := st.Snapshot()

	gw.InsertErr = fmt.Errorf("network down")
	_, err := st.AddTask(context.Background(), "new", "", nil)

	errorOfType(errors.ErrorTypeGateway)(t, err)
	assert.Equal(t, before, st.Snapshot())
}

func TestUpdateTask(t *testing.T) {
	st, _ := newLoadedStore(t)
	ctx := context.Background()
	original := addTasks(t, st, "Draft")[0]
	title := "Final"
	description := "ship it"
	due := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	updated, err := st.UpdateTask(ctx, original.ID, domain.TaskPatch{Title: &title, Description: &description, DueDate: &due})
	require.NoError(t, err)

	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, "ship it", updated.Description)
	assert.Equal(t, original.UserID, updated.UserID)
	assert.Equal(t, original.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(original.UpdatedAt))

	cleared, err := st.UpdateTask(ctx, original.ID, domain.TaskPatch{ClearDueDate: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.DueDate)
	assert.Equal(t, "Final", cleared.Title, "unset fields are left alone")

	got, ok := st.Task(original.ID)
	require.True(t, ok)
	assert.Equal(t, cleared, got)
}

func TestUpdateTask_Errors(t *testing.T) {
	blank := " "
	missingProject := "no-such-project"
	title := "ok"

	tests := []struct {
		name           string
		taskID         func(existing string) string
		patch          domain.TaskPatch
		errorAssertion func(*testing.T, error)
	}{
		{"unknown task", func(string) string { return "missing" }, domain.TaskPatch{Title: &title}, errorOfType(errors.ErrorTypeNotFound)},
		{"blank title", func(id string) string { return id }, domain.TaskPatch{Title: &blank}, errorOfType(errors.ErrorTypeValidation)},
		{"empty patch", func(id string) string { return id }, domain.TaskPatch{}, errorOfType(errors.ErrorTypeValidation)},
		{"unknown project", func(id string) string { return id }, domain.TaskPatch{ProjectID: &missingProject}, errorOfType(errors.ErrorTypeNotFound)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, gw := newLoadedStore(t)
			existing := addTasks(t, st, "keep me")[0]
			writes := gw.TotalWrites()

			_, err := st.UpdateTask(context.Background(), tt.taskID(existing.ID), tt.patch)
			tt.errorAssertion(t, err)

			assert.Equal(t, writes, gw.TotalWrites())
			got, _ := st.Task(existing.ID)
			assert.Equal(t, existing, got)
		})
	}
}

func TestUpdateTask_GatewayFailure(t *testing.T) {
	st, gw := newLoadedStore(t)
	task := addTasks(t, st, "stable")[0]
	gw.UpdateErr = fmt.Errorf("timeout")
	title := "changed"

	_, err := st.UpdateTask(context.Background(), task.ID, domain.TaskPatch{Title: &title})

	errorOfType(errors.ErrorTypeGateway)(t, err)
	got, _ := st.Task(task.ID)
	assert.Equal(t, "stable", got.Title)
}

func TestToggleTaskCompletion(t *testing.T) {
	st, _ := newLoadedStore(t)
	ctx := context.Background()
	task := addTasks(t, st, "flip me")[0]

	done, err := st.ToggleTaskCompletion(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, done.Completed)

	snap := st.Snapshot()
	assert.Empty(t, snap.ActiveTasks)
	require.Len(t, snap.CompletedTasks, 1)

	undone, err := st.ToggleTaskCompletion(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, undone.Completed)

	_, err = st.ToggleTaskCompletion(ctx, "missing")
	errorOfType(errors.ErrorTypeNotFound)(t, err)
}

func TestDeleteTasks(t *testing.T) {
	st, gw := newLoadedStore(t)
	ctx := context.Background()
	tasks := addTasks(t, st, "a", "b", "c")

	require.NoError(t, st.DeleteTasks(ctx, []string{tasks[0].ID, tasks[2].ID, "already-gone", tasks[0].ID}))

	snap := st.Snapshot()
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, "b", snap.Tasks[0].Title)
	assert.Len(t, gw.Rows(gateway.EntityTasks), 1)

	require.NoError(t, st.DeleteTask(ctx, tasks[0].ID), "deleting an absent task is a no-op")
	assert.Len(t, st.Snapshot().Tasks, 1)
}

func TestDeleteTasks_PrunesSelection(t *testing.T) {
	st, _ := newLoadedStore(t)
	tasks := addTasks(t, st, "a", "b", "c")
	for _, task := range tasks {
		require.NoError(t, st.ToggleSelection(task.ID))
	}

	require.NoError(t, st.DeleteTasks(context.Background(), []string{tasks[0].ID, tasks[1].ID}))

	assert.Equal(t, []string{tasks[2].ID}, st.SelectedTaskIDs())
}

func TestDeleteTasks_PartialFailureKeepsConfirmedDeletions(t *testing.T) {
	st, gw := newLoadedStore(t)
	tasks := addTasks(t, st, "a", "b", "c")
	for _, task := range tasks {
		require.NoError(t, st.ToggleSelection(task.ID))
	}
	gw.FailWrite = func(op gateway.Operation, entity gateway.Entity, id string) error {
		if op == gateway.OperationDelete && id == tasks[1].ID {
			return fmt.Errorf("permission denied")
		}
		return nil
	}

	err := st.DeleteTasks(context.Background(), []string{tasks[0].ID, tasks[1].ID, tasks[2].ID})
	errorOfType(errors.ErrorTypeGateway)(t, err)

	snap := st.Snapshot()
	assert.Len(t, snap.Tasks, 2, "the confirmed deletion is applied, the failed and untried ones are kept")
	_, ok := st.Task(tasks[0].ID)
	assert.False(t, ok)
	assert.ElementsMatch(t, []string{tasks[1].ID, tasks[2].ID}, snap.SelectedTaskIDs)
	assert.Len(t, gw.Rows(gateway.EntityTasks), 2, "local state matches the backend")
}

func TestMoveTasksToProject(t *testing.T) {
	st, _ := newLoadedStore(t)
	ctx := context.Background()
	tasks := addTasks(t, st, "a", "b", "c")
	work, err := st.AddProject(ctx, "Work", "briefcase")
	require.NoError(t, err)
	require.NoError(t, st.ToggleSelection(tasks[0].ID))
	require.NoError(t, st.ToggleSelection(tasks[1].ID))
	require.NoError(t, st.ToggleSelection(tasks[2].ID))

	ids := []string{tasks[0].ID, tasks[1].ID}
	require.NoError(t, st.MoveTasksToProject(ctx, ids, work.ID))

	snap := st.Snapshot()
	assert.Len(t, snap.Tasks, 3, "moving never changes the task count")
	for _, id := range ids {
		got, ok := st.Task(id)
		require.True(t, ok)
		assert.Equal(t, work.ID, got.ProjectID)
	}
	assert.Equal(t, []string{tasks[2].ID}, snap.SelectedTaskIDs)
	assert.Equal(t, 2, st.ProjectTaskCounts()[work.ID])
}

func TestMoveTasksToProject_UnknownProject(t *testing.T) {
	st, gw := newLoadedStore(t)
	task := addTasks(t, st, "a")[0]
	writes := gw.TotalWrites()

	err := st.MoveTasksToProject(context.Background(), []string{task.ID}, "nowhere")

	errorOfType(errors.ErrorTypeNotFound)(t, err)
	assert.Equal(t, writes, gw.TotalWrites())
	got, _ := st.Task(task.ID)
	assert.Equal(t, st.DefaultProjectID(), got.ProjectID)
}

func TestMoveTasksToProject_IsAtomicForReaders(t *testing.T) {
	var observed []int
	var st *Store
	st, _ = newLoadedStore(t, WithChangeListener(func(gateway.ChangeEvent) {
		if st == nil {
			return
		}
		observed = append(observed, st.ProjectTaskCounts()[st.DefaultProjectID()])
	}))
	ctx := context.Background()
	tasks := addTasks(t, st, "a", "b", "c")
	work, err := st.AddProject(ctx, "Work", "laptop")
	require.NoError(t, err)
	observed = nil

	require.NoError(t, st.MoveTasksToProject(ctx, []string{tasks[0].ID, tasks[1].ID, tasks[2].ID}, work.ID))

	require.NotEmpty(t, observed)
	for _, inboxCount := range observed {
		assert.Equal(t, 0, inboxCount, "echo events are only reconciled after the whole batch is applied")
	}
}
