// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"uptask/internal/errors"
	"uptask/internal/gateway"
)

// FakeGateway is an in-memory implementation of gateway.Gateway for testing.
// Writes publish change events to subscribers the way a real backend does.
type FakeGateway struct {
	mu    sync.Mutex
	rows  map[gateway.Entity][]gateway.Record
	calls map[string]int
	clock time.Time
	feed  *gateway.Feed

	// Error injection for testing
	ListProjectsErr error
	ListTasksErr    error
	InsertErr       error
	UpdateErr       error
	DeleteErr       error
	SubscribeErr    error

	// FailWrite, when set, is consulted before every write. A non-nil result fails that write.
	FailWrite func(op gateway.Operation, entity gateway.Entity, id string) error

	// SuppressEvents stops writes from publishing change events.
	SuppressEvents bool
}

// NewFakeGateway creates an empty FakeGateway.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		rows:  make(map[gateway.Entity][]gateway.Record),
		calls: make(map[string]int),
		clock: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		feed:  gateway.NewFeed(),
	}
}

// now advances the fake clock so every write gets a distinct, increasing timestamp.
func (f *FakeGateway) now() string {
	f.clock = f.clock.Add(time.Second)
	return f.clock.Format(time.RFC3339Nano)
}

// SeedProject stores a project row without publishing an event and returns its id.
func (f *FakeGateway) SeedProject(userID, name, icon string, isDefault bool) string {
	return f.seed(gateway.EntityProjects, gateway.Record{
		gateway.FieldUserID:    userID,
		gateway.FieldName:      name,
		gateway.FieldIcon:      icon,
		gateway.FieldIsDefault: isDefault,
	})
}

// SeedTask stores a task row without publishing an event and returns its id.
func (f *FakeGateway) SeedTask(userID, projectID, title string) string {
	return f.seed(gateway.EntityTasks, gateway.Record{
		gateway.FieldUserID:      userID,
		gateway.FieldProjectID:   projectID,
		gateway.FieldTitle:       title,
		gateway.FieldCompleted:   false,
		gateway.FieldDescription: nil,
		gateway.FieldDueDate:     nil,
	})
}

// SeedRecord stores an arbitrary row, malformed or not, without publishing an event.
func (f *FakeGateway) SeedRecord(entity gateway.Entity, rec gateway.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[entity] = append(f.rows[entity], rec.Clone())
}

func (f *FakeGateway) seed(entity gateway.Entity, rec gateway.Record) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := f.stamp(rec)
	f.rows[entity] = append(f.rows[entity], stored)
	return stored.ID()
}

func (f *FakeGateway) stamp(rec gateway.Record) gateway.Record {
	stored := rec.Clone()
	if stored.ID() == "" {
		stored[gateway.FieldID] = uuid.NewString()
	}
	ts := f.now()
	stored[gateway.FieldCreatedAt] = ts
	stored[gateway.FieldUpdatedAt] = ts
	return stored
}

// Emit publishes ev to subscribers as if another client had written it.
func (f *FakeGateway) Emit(userID string, ev gateway.ChangeEvent) {
	f.feed.Publish(userID, ev)
}

// Rows returns copies of the stored rows of entity, in insertion order.
func (f *FakeGateway) Rows(entity gateway.Entity) []gateway.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]gateway.Record, 0, len(f.rows[entity]))
	for _, rec := range f.rows[entity] {
		out = append(out, rec.Clone())
	}
	return out
}

// Calls returns how many times the named method was invoked.
func (f *FakeGateway) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// TotalWrites returns the number of Insert, Update and Delete calls.
func (f *FakeGateway) TotalWrites() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls["Insert"] + f.calls["Update"] + f.calls["Delete"]
}

// SubscriberCount returns the number of live subscriptions for userID.
func (f *FakeGateway) SubscriberCount(userID string) int {
	return f.feed.SubscriberCount(userID)
}

// ListProjects implements gateway.Gateway.
func (f *FakeGateway) ListProjects(ctx context.Context, userID string) ([]gateway.Record, error) {
	return f.list("ListProjects", f.ListProjectsErr, gateway.EntityProjects, userID, false)
}

// ListTasks implements gateway.Gateway.
func (f *FakeGateway) ListTasks(ctx context.Context, userID string) ([]gateway.Record, error) {
	return f.list("ListTasks", f.ListTasksErr, gateway.EntityTasks, userID, true)
}

func (f *FakeGateway) list(method string, injected error, entity gateway.Entity, userID string, newestFirst bool) ([]gateway.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	if injected != nil {
		return nil, injected
	}

	var out []gateway.Record
	for _, rec := range f.rows[entity] {
		if rec.UserID() == userID {
			out = append(out, rec.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := out[i][gateway.FieldCreatedAt].(string)
		b, _ := out[j][gateway.FieldCreatedAt].(string)
		if newestFirst {
			return a > b
		}
		return a < b
	})
	return out, nil
}

// Insert implements gateway.Gateway.
func (f *FakeGateway) Insert(ctx context.Context, entity gateway.Entity, rec gateway.Record) (gateway.Record, error) {
	f.mu.Lock()
	f.calls["Insert"]++
	if err := f.writeErr(f.InsertErr, gateway.OperationInsert, entity, rec.ID()); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	if rec.UserID() == "" {
		f.mu.Unlock()
		return nil, errors.NewGatewayError("insert "+string(entity), fmt.Errorf("user_id is required"))
	}
	stored := f.stamp(rec)
	f.rows[entity] = append(f.rows[entity], stored)
	f.mu.Unlock()

	f.publish(entity, gateway.OperationInsert, stored)
	return stored.Clone(), nil
}

// Update implements gateway.Gateway.
func (f *FakeGateway) Update(ctx context.Context, entity gateway.Entity, id string, patch gateway.Record) (gateway.Record, error) {
	f.mu.Lock()
	f.calls["Update"]++
	if err := f.writeErr(f.UpdateErr, gateway.OperationUpdate, entity, id); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	idx := f.indexOf(entity, id)
	if idx < 0 {
		f.mu.Unlock()
		return nil, errors.NewNotFoundError(string(entity), id)
	}
	stored := f.rows[entity][idx]
	for k, v := range patch {
		switch k {
		case gateway.FieldID, gateway.FieldUserID, gateway.FieldCreatedAt:
			continue
		}
		stored[k] = v
	}
	stored[gateway.FieldUpdatedAt] = f.now()
	out := stored.Clone()
	f.mu.Unlock()

	f.publish(entity, gateway.OperationUpdate, out)
	return out.Clone(), nil
}

// Delete implements gateway.Gateway.
func (f *FakeGateway) Delete(ctx context.Context, entity gateway.Entity, id string) error {
	f.mu.Lock()
	f.calls["Delete"]++
	if err := f.writeErr(f.DeleteErr, gateway.OperationDelete, entity, id); err != nil {
		f.mu.Unlock()
		return err
	}
	idx := f.indexOf(entity, id)
	if idx < 0 {
		f.mu.Unlock()
		return nil
	}
	removed := f.rows[entity][idx]
	f.rows[entity] = append(f.rows[entity][:idx], f.rows[entity][idx+1:]...)
	f.mu.Unlock()

	f.publish(entity, gateway.OperationDelete, gateway.Record{
		gateway.FieldID:     removed.ID(),
		gateway.FieldUserID: removed.UserID(),
	})
	return nil
}

// Subscribe implements gateway.Gateway.
func (f *FakeGateway) Subscribe(ctx context.Context, userID string, onChange func(gateway.ChangeEvent)) (gateway.Subscription, error) {
	f.mu.Lock()
	f.calls["Subscribe"]++
	injected := f.SubscribeErr
	f.mu.Unlock()
	if injected != nil {
		return nil, injected
	}
	return f.feed.Subscribe(ctx, userID, onChange)
}

// Close implements io.Closer.
func (f *FakeGateway) Close() error {
	f.feed.Close()
	return nil
}

func (f *FakeGateway) writeErr(injected error, op gateway.Operation, entity gateway.Entity, id string) error {
	if injected != nil {
		return injected
	}
	if f.FailWrite != nil {
		return f.FailWrite(op, entity, id)
	}
	return nil
}

func (f *FakeGateway) indexOf(entity gateway.Entity, id string) int {
	for i, rec := range f.rows[entity] {
		if rec.ID() == id {
			return i
		}
	}
	return -1
}

func (f *FakeGateway) publish(entity gateway.Entity, op gateway.Operation, rec gateway.Record) {
	if f.SuppressEvents {
		return
	}
	f.feed.Publish(rec.UserID(), gateway.ChangeEvent{Entity: entity, Operation: op, Record: rec})
}
