// Package gormstore implements gateway.Gateway with gorm over SQLite.
package gormstore

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"uptask/internal/errors"
	"uptask/internal/gateway"
)

// Options configures a Gateway.
type Options struct {
	// DSN is a SQLite file path or DSN. ":memory:" opens a private in-memory database.
	DSN string
	// QueryTimeout bounds every call. Zero means no limit.
	QueryTimeout time.Duration
	// Now overrides gorm's clock for created_at and updated_at.
	Now func() time.Time
}

// Gateway stores tasks and projects through gorm and publishes every confirmed write.
type Gateway struct {
	db      *gorm.DB
	feed    *gateway.Feed
	timeout time.Duration
}

var _ gateway.Gateway = (*Gateway)(nil)

// New opens the database and migrates the schema.
func New(opts Options) (*Gateway, error) {
	if strings.TrimSpace(opts.DSN) == "" {
		return nil, errors.NewInvalidInputError("dsn", opts.DSN, "database DSN is required")
	}
	if err := ensureDirForSQLite(opts.DSN); err != nil {
		return nil, errors.NewGatewayError("open database", err)
	}

	dbLogger := logger.New(
		log.New(os.Stderr, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	cfg := &gorm.Config{Logger: dbLogger}
	if opts.Now != nil {
		cfg.NowFunc = opts.Now
	}

	db, err := gorm.Open(sqlite.Open(opts.DSN), cfg)
	if err != nil {
		return nil, errors.NewGatewayError("open database", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.NewGatewayError("open database", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Project{}, &Task{}); err != nil {
		sqlDB.Close()
		return nil, errors.NewGatewayError("migrate database", err)
	}

	return &Gateway{db: db, feed: gateway.NewFeed(), timeout: opts.QueryTimeout}, nil
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

// Close ends every subscription and closes the database.
func (g *Gateway) Close() error {
	g.feed.Close()
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ListProjects returns the user's projects, oldest first.
func (g *Gateway) ListProjects(ctx context.Context, userID string) ([]gateway.Record, error) {
	ctx, cancel := g.queryContext(ctx)
	defer cancel()

	var projects []Project
	if err := g.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&projects).Error; err != nil {
		return nil, g.fail("list projects", err)
	}
	out := make([]gateway.Record, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.record())
	}
	return out, nil
}

// ListTasks returns the user's tasks, newest first.
func (g *Gateway) ListTasks(ctx context.Context, userID string) ([]gateway.Record, error) {
	ctx, cancel := g.queryContext(ctx)
	defer cancel()

	var tasks []Task
	if err := g.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&tasks).Error; err != nil {
		return nil, g.fail("list tasks", err)
	}
	out := make([]gateway.Record, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.record())
	}
	return out, nil
}

// Insert creates a row from rec, assigning an id when it has none.
func (g *Gateway) Insert(ctx context.Context, entity gateway.Entity, rec gateway.Record) (gateway.Record, error) {
	op := "insert " + string(entity)
	ctx, cancel := g.queryContext(ctx)
	defer cancel()

	var stored gateway.Record
	switch entity {
	case gateway.EntityProjects:
		p, err := projectFromRecord(rec)
		if err != nil {
			return nil, errors.NewGatewayError(op, err)
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if err := g.db.WithContext(ctx).Create(&p).Error; err != nil {
			return nil, g.fail(op, err)
		}
		stored = p.record()
	case gateway.EntityTasks:
		t, err := taskFromRecord(rec)
		if err != nil {
			return nil, errors.NewGatewayError(op, err)
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if err := g.db.WithContext(ctx).Create(&t).Error; err != nil {
			return nil, g.fail(op, err)
		}
		stored = t.record()
	default:
		return nil, errors.NewGatewayError(op, fmt.Errorf("unknown entity %q", entity))
	}

	g.publish(entity, gateway.OperationInsert, stored)
	return stored.Clone(), nil
}

// Update applies patch to the row with the given id and returns the stored row.
func (g *Gateway) Update(ctx context.Context, entity gateway.Entity, id string, patch gateway.Record) (gateway.Record, error) {
	op := "update " + string(entity)
	if !entity.Valid() {
		return nil, errors.NewGatewayError(op, fmt.Errorf("unknown entity %q", entity))
	}
	updates, err := columns(entity, patch)
	if err != nil {
		return nil, errors.NewGatewayError(op, err)
	}

	ctx, cancel := g.queryContext(ctx)
	defer cancel()

	var stored gateway.Record
	err = g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch entity {
		case gateway.EntityProjects:
			var p Project
			if err := tx.First(&p, "id = ?", id).Error; err != nil {
				return err
			}
			if err := tx.Model(&p).Updates(updates).Error; err != nil {
				return err
			}
			if err := tx.First(&p, "id = ?", id).Error; err != nil {
				return err
			}
			stored = p.record()
		case gateway.EntityTasks:
			var t Task
			if err := tx.First(&t, "id = ?", id).Error; err != nil {
				return err
			}
			if err := tx.Model(&t).Updates(updates).Error; err != nil {
				return err
			}
			if err := tx.First(&t, "id = ?", id).Error; err != nil {
				return err
			}
			stored = t.record()
		}
		return nil
	})
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError(string(entity), id)
		}
		return nil, g.fail(op, err)
	}

	g.publish(entity, gateway.OperationUpdate, stored)
	return stored.Clone(), nil
}

// Delete removes the row with the given id. Deleting a missing row succeeds.
func (g *Gateway) Delete(ctx context.Context, entity gateway.Entity, id string) error {
	op := "delete " + string(entity)
	var model interface{}
	switch entity {
	case gateway.EntityProjects:
		model = &Project{}
	case gateway.EntityTasks:
		model = &Task{}
	default:
		return errors.NewGatewayError(op, fmt.Errorf("unknown entity %q", entity))
	}

	ctx, cancel := g.queryContext(ctx)
	defer cancel()

	var owner string
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var found []string
		if err := tx.Model(model).Where("id = ?", id).Pluck("user_id", &found).Error; err != nil {
			return err
		}
		if len(found) == 0 {
			return nil
		}
		owner = found[0]
		return tx.Where("id = ?", id).Delete(model).Error
	})
	if err != nil {
		return g.fail(op, err)
	}

	if owner != "" {
		g.publish(entity, gateway.OperationDelete, gateway.Record{
			gateway.FieldID:     id,
			gateway.FieldUserID: owner,
		})
	}
	return nil
}

// Subscribe delivers every confirmed change to rows owned by userID.
func (g *Gateway) Subscribe(ctx context.Context, userID string, onChange func(gateway.ChangeEvent)) (gateway.Subscription, error) {
	sub, err := g.feed.Subscribe(ctx, userID, onChange)
	if err != nil {
		return nil, errors.NewGatewayError("subscribe", err)
	}
	return sub, nil
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
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewTimeoutError(op, g.timeout)
	}
	return errors.NewGatewayError(op, err)
}

func (g *Gateway) publish(entity gateway.Entity, op gateway.Operation, rec gateway.Record) {
	g.feed.Publish(rec.UserID(), gateway.ChangeEvent{Entity: entity, Operation: op, Record: rec})
}
