package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uptask/internal/domain"
	"uptask/internal/gateway"
	"uptask/internal/testutil"
)

func TestRefresh_CatchesUpOnSilentWrites(t *testing.T) {
	var seen []gateway.ChangeEvent
	st, gw := newLoadedStore(t, WithChangeListener(func(ev gateway.ChangeEvent) {
		seen = append(seen, ev)
	}))
	ctx := context.Background()
	tasks := addTasks(t, st, "keep", "rename", "drop")
	inboxID := st.DefaultProjectID()
	seen = nil

	// Another process writes to the same backend without this store hearing about it.
	gw.SuppressEvents = true
	_, err := gw.Insert(ctx, gateway.EntityTasks, gateway.Record{
		gateway.FieldUserID: testUser, gateway.FieldProjectID: inboxID, gateway.FieldTitle: "first new",
	})
	require.NoError(t, err)
	_, err = gw.Insert(ctx, gateway.EntityTasks, gateway.Record{
		gateway.FieldUserID: testUser, gateway.FieldProjectID: inboxID, gateway.FieldTitle: "second new",
	})
	require.NoError(t, err)
	_, err = gw.Update(ctx, gateway.EntityTasks, tasks[1].ID, gateway.Record{gateway.FieldTitle: "renamed"})
	require.NoError(t, err)
	require.NoError(t, gw.Delete(ctx, gateway.EntityTasks, tasks[2].ID))
	gw.SuppressEvents = false

	n, err := st.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Len(t, seen, 4)

	snap := st.Snapshot()
	titles := make([]string, 0, len(snap.Tasks))
	for _, task := range snap.Tasks {
		titles = append(titles, task.Title)
	}
	assert.Equal(t, []string{"second new", "first new", "renamed", "keep"}, titles)

	n, err = st.Refresh(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "a second refresh finds nothing new")
}

func TestRefresh_ProjectChanges(t *testing.T) {
	st, gw := newLoadedStore(t)
	ctx := context.Background()
	work, err := st.AddProject(ctx, "Work", "briefcase")
	require.NoError(t, err)
	require.NoError(t, st.SetSelectedProjectID(work.ID))

	gw.SuppressEvents = true
	require.NoError(t, gw.Delete(ctx, gateway.EntityProjects, work.ID))
	_, err = gw.Insert(ctx, gateway.EntityProjects, gateway.Record{
		gateway.FieldUserID: testUser, gateway.FieldName: "Home", gateway.FieldIcon: "home",
	})
	require.NoError(t, err)
	gw.SuppressEvents = false

	n, err := st.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	snap := st.Snapshot()
	require.Len(t, snap.Projects, 2)
	assert.Equal(t, "Home", snap.Projects[1].Name)
	assert.Equal(t, st.DefaultProjectID(), snap.SelectedProjectID, "view falls back to the default project")
}

func TestRefresh_Errors(t *testing.T) {
	st := New(nil, testUser)
	_, err := st.Refresh(context.Background())
	require.Error(t, err)

	loaded, gw := newLoadedStore(t)
	gw.ListTasksErr = assert.AnError
	_, err = loaded.Refresh(context.Background())
	require.Error(t, err)
	assert.Len(t, loaded.Snapshot().Projects, 1, "state untouched on failure")
}

func TestRefresh_KeepsWritesConfirmedDuringFetch(t *testing.T) {
	tests := []struct {
		name  string
		write func(t *testing.T, st *Store, existing domain.Task) string
		check func(t *testing.T, st *Store, id string)
	}{
		{
			name: "task added",
			write: func(t *testing.T, st *Store, _ domain.Task) string {
				task, err := st.AddTask(context.Background(), "added mid refresh", "", nil)
				require.NoError(t, err)
				return task.ID
			},
			check: func(t *testing.T, st *Store, id string) {
				_, ok := st.Task(id)
				assert.True(t, ok, "confirmed task stays in the store")
			},
		},
		{
			name: "task renamed",
			write: func(t *testing.T, st *Store, existing domain.Task) string {
				title := "renamed mid refresh"
				_, err := st.UpdateTask(context.Background(), existing.ID, domain.TaskPatch{Title: &title})
				require.NoError(t, err)
				return existing.ID
			},
			check: func(t *testing.T, st *Store, id string) {
				task, ok := st.Task(id)
				require.True(t, ok)
				assert.Equal(t, "renamed mid refresh", task.Title)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &hookGateway{FakeGateway: testutil.NewFakeGateway()}
			st := New(gw, testUser)
			require.NoError(t, st.Load(context.Background()))
			defer st.Close()
			existing := addTasks(t, st, "original")[0]

			var id string
			gw.afterListTasks = func() { id = tt.write(t, st, existing) }

			_, err := st.Refresh(context.Background())
			require.NoError(t, err)

			tt.check(t, st, id)
			assert.Len(t, gw.Rows(gateway.EntityTasks), len(st.Snapshot().Tasks))
		})
	}
}
