package gormstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uptask/internal/errors"
	"uptask/internal/gateway"
)

const testUser = "user-1"

func setupTestGateway(t *testing.T) *Gateway {
	t.Helper()
	clock := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	gw, err := New(Options{
		DSN: ":memory:",
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { gw.Close() })
	return gw
}

func TestNew_CreatesDirectory(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "ut.db")

	gw, err := New(Options{DSN: dsn})
	require.NoError(t, err)
	defer gw.Close()

	_, err = gw.Insert(context.Background(), gateway.EntityProjects, gateway.Record{"user_id": testUser, "name": "Inbox", "icon": "inbox"})
	require.NoError(t, err)
	assert.FileExists(t, dsn)
}

func TestNew_RequiresDSN(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
}

func TestRoundTrip(t *testing.T) {
	gw := setupTestGateway(t)
	ctx := context.Background()
	var events []gateway.ChangeEvent
	_, err := gw.Subscribe(ctx, testUser, func(ev gateway.ChangeEvent) { events = append(events, ev) })
	require.NoError(t, err)

	project, err := gw.Insert(ctx, gateway.EntityProjects, gateway.Record{
		"user_id": testUser, "name": "Inbox", "icon": "inbox", "is_default": true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, project.ID())
	assert.Equal(t, true, project[gateway.FieldIsDefault])
	assert.Equal(t, "2024-01-01T09:00:01Z", project[gateway.FieldCreatedAt])

	first, err := gw.Insert(ctx, gateway.EntityTasks, gateway.Record{
		"user_id": testUser, "project_id": project.ID(), "title": "first",
		"description": nil, "completed": false, "due_date": "2024-03-15",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15T00:00:00Z", first[gateway.FieldDueDate])
	assert.Nil(t, first[gateway.FieldDescription])

	_, err = gw.Insert(ctx, gateway.EntityTasks, gateway.Record{
		"user_id": testUser, "project_id": project.ID(), "title": "second",
	})
	require.NoError(t, err)

	tasks, err := gw.ListTasks(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "second", tasks[0][gateway.FieldTitle], "newest first")

	updated, err := gw.Update(ctx, gateway.EntityTasks, first.ID(), gateway.Record{
		"completed": true, "due_date": nil, "description": "notes", "user_id": "hijacker",
	})
	require.NoError(t, err)
	assert.Equal(t, true, updated[gateway.FieldCompleted])
	assert.Nil(t, updated[gateway.FieldDueDate])
	assert.Equal(t, "notes", updated[gateway.FieldDescription])
	assert.Equal(t, testUser, updated.UserID())

	require.NoError(t, gw.Delete(ctx, gateway.EntityTasks, first.ID()))
	require.NoError(t, gw.Delete(ctx, gateway.EntityTasks, first.ID()))

	projects, err := gw.ListProjects(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, projects, 1)

	ops := make([]gateway.Operation, 0, len(events))
	for _, ev := range events {
		ops = append(ops, ev.Operation)
	}
	assert.Equal(t, []gateway.Operation{
		gateway.OperationInsert, gateway.OperationInsert, gateway.OperationInsert,
		gateway.OperationUpdate, gateway.OperationDelete,
	}, ops)
	assert.Equal(t, gateway.Record{"id": first.ID(), "user_id": testUser}, events[4].Record)
}

func TestUpdate_Missing(t *testing.T) {
	gw := setupTestGateway(t)

	_, err := gw.Update(context.Background(), gateway.EntityProjects, "missing", gateway.Record{"name": "x"})

	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func TestInsert_Rejects(t *testing.T) {
	gw := setupTestGateway(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		entity gateway.Entity
		rec    gateway.Record
	}{
		{"unknown entity", "comments", gateway.Record{"user_id": testUser}},
		{"missing owner", gateway.EntityProjects, gateway.Record{"name": "x"}},
		{"missing title", gateway.EntityTasks, gateway.Record{"user_id": testUser, "project_id": "p"}},
		{"bad completed", gateway.EntityTasks, gateway.Record{"user_id": testUser, "project_id": "p", "title": "x", "completed": "yes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gw.Insert(ctx, tt.entity, tt.rec)
			require.Error(t, err)
			assert.True(t, errors.IsErrorType(err, errors.ErrorTypeGateway), "got %v", err)
		})
	}
}

func TestColumns(t *testing.T) {
	got, err := columns(gateway.EntityTasks, gateway.Record{
		"id": "x", "created_at": "2024-01-01T00:00:00Z", "title": "t", "completed": true,
		"description": "", "due_date": "2024-03-15", "unknown": 1,
	})
	require.NoError(t, err)

	due := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, map[string]interface{}{
		"title": "t", "completed": true, "description": nil, "due_date": &due,
	}, got)

	_, err = columns(gateway.EntityProjects, gateway.Record{"name": 3})
	assert.Error(t, err)
}

func TestInsert_OneDefaultProjectPerUser(t *testing.T) {
	gw := setupTestGateway(t)
	ctx := context.Background()
	inbox := gateway.Record{"user_id": testUser, "name": "Inbox", "icon": "inbox", "is_default": true}

	_, err := gw.Insert(ctx, gateway.EntityProjects, inbox)
	require.NoError(t, err)

	_, err = gw.Insert(ctx, gateway.EntityProjects, inbox)
	require.Error(t, err, "second default project for the same user")

	_, err = gw.Insert(ctx, gateway.EntityProjects, gateway.Record{"user_id": testUser, "name": "Work", "icon": "briefcase"})
	require.NoError(t, err)
	_, err = gw.Insert(ctx, gateway.EntityProjects, gateway.Record{"user_id": "user-2", "name": "Inbox", "icon": "inbox", "is_default": true})
	require.NoError(t, err)

	projects, err := gw.ListProjects(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, true, projects[0][gateway.FieldIsDefault])
	assert.Equal(t, false, projects[1][gateway.FieldIsDefault])
}
