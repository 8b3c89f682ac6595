// Package sqlite implements gateway.Gateway on a local SQLite database. Every
// confirmed write is published to in-process subscribers of the row's owner.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"uptask/internal/errors"
	"uptask/internal/gateway"
	"uptask/internal/gateway/sqlite/migrations"
	"uptask/internal/logging"

	_ "modernc.org/sqlite"
)

// Options configures a Gateway.
type Options struct {
	// Path is the database file, or ":memory:".
	Path string
	// QueryTimeout bounds every call. Zero means no limit.
	QueryTimeout time.Duration
	// Now overrides the clock used for created_at and updated_at.
	Now func() time.Time
}

// Gateway implements gateway.Gateway
type Gateway struct {
	db        *sql.DB
	feed      *gateway.Feed
	timeout   time.Duration
	now       func() time.Time
	closeOnce sync.Once
	closeErr  error
}

var _ gateway.Gateway = (*Gateway)(nil)

// New opens the database at opts.Path and brings its schema up to date
func New(opts Options) (*Gateway, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, errors.NewInvalidInputError("path", opts.Path, "database path is required")
	}

	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, errors.NewGatewayError("open database", err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if err := migrations.RunMigrations(db); err != nil {
		db.Close()
		return nil, errors.NewGatewayError("run migrations", err)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	logging.Debugf("sqlite gateway opened at %s", opts.Path)
	return &Gateway{
		db:      db,
		feed:    gateway.NewFeed(),
		timeout: opts.QueryTimeout,
		now:     now,
	}, nil
}

// Close ends every subscription and closes the database connection
func (g *Gateway) Close() error {
	g.closeOnce.Do(func() {
		g.feed.Close()
		g.closeErr = g.db.Close()
	})
	return g.closeErr
}

// ListProjects returns the user's projects, oldest first
func (g *Gateway) ListProjects(ctx context.Context, userID string) ([]gateway.Record, error) {
	return g.list(ctx, gateway.EntityProjects, userID)
}

// ListTasks returns the user's tasks, newest first
func (g *Gateway) ListTasks(ctx context.Context, userID string) ([]gateway.Record, error) {
	return g.list(ctx, gateway.EntityTasks, userID)
}

func (g *Gateway) list(ctx context.Context, entity gateway.Entity, userID string) ([]gateway.Record, error) {
	op := "list " + string(entity)
	t, err := tableFor(entity)
	if err != nil {
		return nil, errors.NewGatewayError(op, err)
	}

	ctx, cancel := g.queryContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = ? ORDER BY %s`, t.selectList(), t.name, t.order)
	recs, err := QueryMultiple(ctx, g.db, t, query, userID)
	if err != nil {
		return nil, g.fail(op, err)
	}
	return recs, nil
}

// Insert stores rec, assigning an id when it has none and stamping both timestamps
func (g *Gateway) Insert(ctx context.Context, entity gateway.Entity, rec gateway.Record) (gateway.Record, error) {
	op := "insert " + string(entity)
	t, err := tableFor(entity)
	if err != nil {
		return nil, errors.NewGatewayError(op, err)
	}
	if rec.UserID() == "" {
		return nil, errors.NewGatewayError(op, fmt.Errorf("user_id is required"))
	}

	row := rec.Clone()
	if row.ID() == "" {
		row[gateway.FieldID] = uuid.NewString()
	}
	ts := FormatTimeForDB(g.now())
	row[gateway.FieldCreatedAt] = ts
	row[gateway.FieldUpdatedAt] = ts

	names := make([]string, 0, len(t.columns))
	args := make([]interface{}, 0, len(t.columns))
	for _, c := range t.columns {
		v, err := c.encode(row[c.field])
		if err != nil {
			return nil, errors.NewGatewayError(op, fmt.Errorf("field %q: %w", c.field, err))
		}
		names = append(names, c.field)
		args = append(args, v)
	}
	for k := range row {
		if _, known := t.column(k); !known {
			logging.Debugf("%s: ignoring unknown field %q", op, k)
		}
	}

	ctx, cancel := g.queryContext(ctx)
	defer cancel()

	var stored gateway.Record
	err = g.inTx(ctx, func(tx *sql.Tx) error {
		query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
			t.name, strings.Join(names, ", "), placeholders(len(names)))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
		stored, err = g.selectByID(ctx, tx, t, row.ID())
		return err
	})
	if err != nil {
		return nil, g.fail(op, err)
	}

	g.publish(entity, gateway.OperationInsert, stored)
	return stored.Clone(), nil
}

// Update applies patch to the row with the given id. id, user_id and created_at are
// never changed. A missing row is a not-found error.
func (g *Gateway) Update(ctx context.Context, entity gateway.Entity, id string, patch gateway.Record) (gateway.Record, error) {
	op := "update " + string(entity)
	t, err := tableFor(entity)
	if err != nil {
		return nil, errors.NewGatewayError(op, err)
	}

	var sets []string
	var args []interface{}
	for field, value := range patch {
		switch field {
		case gateway.FieldID, gateway.FieldUserID, gateway.FieldCreatedAt, gateway.FieldUpdatedAt:
			continue
		}
		c, known := t.column(field)
		if !known {
			logging.Debugf("%s: ignoring unknown field %q", op, field)
			continue
		}
		v, err := c.encode(value)
		if err != nil {
			return nil, errors.NewGatewayError(op, fmt.Errorf("field %q: %w", field, err))
		}
		sets = append(sets, field+" = ?")
		args = append(args, v)
	}
	sets = append(sets, gateway.FieldUpdatedAt+" = ?")
	args = append(args, FormatTimeForDB(g.now()), id)

	ctx, cancel := g.queryContext(ctx)
	defer cancel()

	var stored gateway.Record
	err = g.inTx(ctx, func(tx *sql.Tx) error {
		query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ?`, t.name, strings.Join(sets, ", "))
		if err := ExecuteWithRowsAffected(ctx, tx, query, string(entity), id, args...); err != nil {
			return err
		}
		stored, err = g.selectByID(ctx, tx, t, id)
		return err
	})
	if err != nil {
		return nil, g.fail(op, err)
	}

	g.publish(entity, gateway.OperationUpdate, stored)
	return stored.Clone(), nil
}

// Delete removes the row with the given id. Deleting a missing row succeeds.
func (g *Gateway) Delete(ctx context.Context, entity gateway.Entity, id string) error {
	op := "delete " + string(entity)
	t, err := tableFor(entity)
	if err != nil {
		return errors.NewGatewayError(op, err)
	}

	ctx, cancel := g.queryContext(ctx)
	defer cancel()

	var owner string
	deleted := false
	err = g.inTx(ctx, func(tx *sql.Tx) error {
		query := fmt.Sprintf(`SELECT user_id FROM %s WHERE id = ?`, t.name)
		if err := tx.QueryRowContext(ctx, query, id).Scan(&owner); err != nil {
			if err == sql.ErrNoRows {
				return nil
			}
			return err
		}
		if err := ExecuteWithRowsAffected(ctx, tx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, t.name), string(entity), id, id); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return g.fail(op, err)
	}

	if deleted {
		g.publish(entity, gateway.OperationDelete, gateway.Record{
			gateway.FieldID:     id,
			gateway.FieldUserID: owner,
		})
	}
	return nil
}

// Subscribe delivers every confirmed change to rows owned by userID
func (g *Gateway) Subscribe(ctx context.Context, userID string, onChange func(gateway.ChangeEvent)) (gateway.Subscription, error) {
	sub, err := g.feed.Subscribe(ctx, userID, onChange)
	if err != nil {
		return nil, errors.NewGatewayError("subscribe", err)
	}
	return sub, nil
}

func (g *Gateway) selectByID(ctx context.Context, q querier, t table, id string) (gateway.Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, t.selectList(), t.name)
	return QuerySingle(ctx, q, t, query, id, id)
}

func (g *Gateway) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (g *Gateway) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if g.timeout > 0 {
		return context.WithTimeout(ctx, g.timeout)
	}
	return context.WithCancel(ctx)
}

func (g *Gateway) fail(op string, err error) error {
	return HandleDatabaseError(op, err, g.timeout)
}

func (g *Gateway) publish(entity gateway.Entity, op gateway.Operation, rec gateway.Record) {
	g.feed.Publish(rec.UserID(), gateway.ChangeEvent{Entity: entity, Operation: op, Record: rec})
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
