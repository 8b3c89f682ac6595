// Package gateway defines the persistence contract the task store depends on:
// per-entity CRUD over loosely typed wire records plus a per-user change stream.
package gateway

import (
	"context"
	"io"
)

// Entity names a table on the remote store.
type Entity string

const (
	EntityTasks    Entity = "tasks"
	EntityProjects Entity = "projects"
)

// Valid reports whether e is a known entity.
func (e Entity) Valid() bool {
	return e == EntityTasks || e == EntityProjects
}

// Operation is the kind of change carried by a ChangeEvent.
type Operation string

const (
	OperationInsert Operation = "INSERT"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
)

// Record is a row in wire format: snake_case keys, RFC3339 timestamp strings.
type Record map[string]interface{}

// Wire keys shared by both entities.
const (
	FieldID        = "id"
	FieldUserID    = "user_id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// Task wire keys.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldCompleted   = "completed"
	FieldDueDate     = "due_date"
	FieldProjectID   = "project_id"
)

// Project wire keys.
const (
	FieldName      = "name"
	FieldIcon      = "icon"
	FieldIsDefault = "is_default"
)

// ID returns the record's id when it is a non-empty string.
func (r Record) ID() string {
	id, _ := r[FieldID].(string)
	return id
}

// UserID returns the record's owner when it is a non-empty string.
func (r Record) UserID() string {
	uid, _ := r[FieldUserID].(string)
	return uid
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ChangeEvent is one notification from the change stream.
type ChangeEvent struct {
	Entity    Entity
	Operation Operation
	Record    Record
}

// Subscription is a live change-stream registration.
type Subscription interface {
	// Unsubscribe stops delivery. Calling it more than once has no further effect.
	Unsubscribe()
}

// Gateway is the remote store contract. Implementations must be safe for concurrent use
// and must not hold internal locks while delivering change events.
type Gateway interface {
	// ListProjects returns the user's projects ordered by created_at ascending.
	ListProjects(ctx context.Context, userID string) ([]Record, error)

	// ListTasks returns the user's tasks ordered by created_at descending.
	ListTasks(ctx context.Context, userID string) ([]Record, error)

	// Insert stores rec, assigning id, created_at and updated_at, and returns the stored row.
	Insert(ctx context.Context, entity Entity, rec Record) (Record, error)

	// Update applies the fields in patch to the row with the given id and returns the full row.
	Update(ctx context.Context, entity Entity, id string, patch Record) (Record, error)

	// Delete removes the row with the given id. Deleting an absent row is not an error.
	Delete(ctx context.Context, entity Entity, id string) error

	// Subscribe delivers committed changes owned by userID to onChange until unsubscribed.
	Subscribe(ctx context.Context, userID string, onChange func(ChangeEvent)) (Subscription, error)

	io.Closer
}
