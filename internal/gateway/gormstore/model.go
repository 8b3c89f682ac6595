package gormstore

import (
	"fmt"
	"time"

	"uptask/internal/gateway"
)

// Project is the projects table.
type Project struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"index:idx_projects_user_created;uniqueIndex:idx_projects_one_default,where:is_default = 1;not null"`
	Name      string    `gorm:"not null"`
	Icon      string    `gorm:"not null;default:folder"`
	IsDefault bool      `gorm:"default:false"`
	CreatedAt time.Time `gorm:"index:idx_projects_user_created"`
	UpdatedAt time.Time
}

// Task is the tasks table.
type Task struct {
	ID          string `gorm:"primaryKey;size:36"`
	UserID      string `gorm:"index:idx_tasks_user_created;not null"`
	ProjectID   string `gorm:"index;not null"`
	Title       string `gorm:"not null"`
	Description *string
	Completed   bool `gorm:"default:false"`
	DueDate     *time.Time
	CreatedAt   time.Time `gorm:"index:idx_tasks_user_created"`
	UpdatedAt   time.Time
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func (p Project) record() gateway.Record {
	return gateway.Record{
		gateway.FieldID:        p.ID,
		gateway.FieldUserID:    p.UserID,
		gateway.FieldName:      p.Name,
		gateway.FieldIcon:      p.Icon,
		gateway.FieldIsDefault: p.IsDefault,
		gateway.FieldCreatedAt: formatTime(p.CreatedAt),
		gateway.FieldUpdatedAt: formatTime(p.UpdatedAt),
	}
}

func (t Task) record() gateway.Record {
	rec := gateway.Record{
		gateway.FieldID:          t.ID,
		gateway.FieldUserID:      t.UserID,
		gateway.FieldProjectID:   t.ProjectID,
		gateway.FieldTitle:       t.Title,
		gateway.FieldDescription: nil,
		gateway.FieldCompleted:   t.Completed,
		gateway.FieldDueDate:     nil,
		gateway.FieldCreatedAt:   formatTime(t.CreatedAt),
		gateway.FieldUpdatedAt:   formatTime(t.UpdatedAt),
	}
	if t.Description != nil {
		rec[gateway.FieldDescription] = *t.Description
	}
	if t.DueDate != nil {
		rec[gateway.FieldDueDate] = formatTime(*t.DueDate)
	}
	return rec
}

func projectFromRecord(rec gateway.Record) (Project, error) {
	var p Project
	var err error
	if p.UserID, err = textField(rec, gateway.FieldUserID, true); err != nil {
		return Project{}, err
	}
	if p.Name, err = textField(rec, gateway.FieldName, true); err != nil {
		return Project{}, err
	}
	if p.Icon, err = textField(rec, gateway.FieldIcon, false); err != nil {
		return Project{}, err
	}
	if p.Icon == "" {
		p.Icon = "folder"
	}
	if p.IsDefault, err = boolField(rec, gateway.FieldIsDefault); err != nil {
		return Project{}, err
	}
	p.ID = rec.ID()
	return p, nil
}

func taskFromRecord(rec gateway.Record) (Task, error) {
	var t Task
	var err error
	if t.UserID, err = textField(rec, gateway.FieldUserID, true); err != nil {
		return Task{}, err
	}
	if t.ProjectID, err = textField(rec, gateway.FieldProjectID, true); err != nil {
		return Task{}, err
	}
	if t.Title, err = textField(rec, gateway.FieldTitle, true); err != nil {
		return Task{}, err
	}
	desc, err := textField(rec, gateway.FieldDescription, false)
	if err != nil {
		return Task{}, err
	}
	if desc != "" {
		t.Description = &desc
	}
	if t.Completed, err = boolField(rec, gateway.FieldCompleted); err != nil {
		return Task{}, err
	}
	if t.DueDate, err = timeField(rec[gateway.FieldDueDate]); err != nil {
		return Task{}, fmt.Errorf("field %q: %w", gateway.FieldDueDate, err)
	}
	t.ID = rec.ID()
	return t, nil
}

// columns converts a wire patch into gorm column updates for entity. Identity,
// ownership and timestamps are dropped.
func columns(entity gateway.Entity, patch gateway.Record) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(patch))
	for field, value := range patch {
		switch field {
		case gateway.FieldID, gateway.FieldUserID, gateway.FieldCreatedAt, gateway.FieldUpdatedAt:
			continue
		}
		switch {
		case entity == gateway.EntityTasks && (field == gateway.FieldTitle || field == gateway.FieldProjectID):
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("field %q has type %T, want string", field, value)
			}
			out[field] = s
		case entity == gateway.EntityTasks && field == gateway.FieldDescription:
			s, err := textField(patch, field, false)
			if err != nil {
				return nil, err
			}
			if s == "" {
				out[field] = nil
			} else {
				out[field] = s
			}
		case entity == gateway.EntityTasks && field == gateway.FieldCompleted,
			entity == gateway.EntityProjects && field == gateway.FieldIsDefault:
			b, err := boolField(patch, field)
			if err != nil {
				return nil, err
			}
			out[field] = b
		case entity == gateway.EntityTasks && field == gateway.FieldDueDate:
			due, err := timeField(value)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", field, err)
			}
			out[field] = due
		case entity == gateway.EntityProjects && (field == gateway.FieldName || field == gateway.FieldIcon):
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("field %q has type %T, want string", field, value)
			}
			out[field] = s
		}
	}
	return out, nil
}

func textField(rec gateway.Record, key string, required bool) (string, error) {
	v, ok := rec[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("field %q is required", key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
	if required && s == "" {
		return "", fmt.Errorf("field %q is required", key)
	}
	return s, nil
}

func boolField(rec gateway.Record, key string) (bool, error) {
	v, ok := rec[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("field %q has type %T, want bool", key, v)
	}
	return b, nil
}

func timeField(v interface{}) (*time.Time, error) {
	switch tv := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		u := tv.UTC()
		return &u, nil
	case string:
		if tv == "" {
			return nil, nil
		}
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
			if t, err := time.Parse(layout, tv); err == nil {
				u := t.UTC()
				return &u, nil
			}
		}
		return nil, fmt.Errorf("cannot parse %q as a timestamp", tv)
	default:
		return nil, fmt.Errorf("value of type %T is not a timestamp", v)
	}
}
