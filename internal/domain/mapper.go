package domain

import (
	"fmt"
	"time"

	"uptask/internal/errors"
	"uptask/internal/gateway"
)

// DueDateLayout is the date-only form accepted for due dates.
const DueDateLayout = "2006-01-02"

// FormatWireTime formats t the way records carry timestamps.
func FormatWireTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// ParseWireTime parses an RFC3339 timestamp, with or without fractional seconds.
func ParseWireTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// TaskMapper handles conversion between domain Tasks and wire records.
type TaskMapper struct{}

// NewTaskMapper creates a new TaskMapper instance.
func NewTaskMapper() *TaskMapper {
	return &TaskMapper{}
}

// ToRecord converts a domain Task to a wire record. Unset identity and timestamps are omitted.
func (m *TaskMapper) ToRecord(task Task) gateway.Record {
	rec := gateway.Record{
		gateway.FieldTitle:     task.Title,
		gateway.FieldCompleted: task.Completed,
		gateway.FieldProjectID: task.ProjectID,
		gateway.FieldUserID:    task.UserID,
	}
	if task.Description != "" {
		rec[gateway.FieldDescription] = task.Description
	} else {
		rec[gateway.FieldDescription] = nil
	}
	if task.DueDate != nil {
		rec[gateway.FieldDueDate] = FormatWireTime(*task.DueDate)
	} else {
		rec[gateway.FieldDueDate] = nil
	}
	putIdentity(rec, task.ID, task.CreatedAt, task.UpdatedAt)
	return rec
}

// FromRecord converts a wire record to a domain Task. Malformed records fail with a gateway error.
func (m *TaskMapper) FromRecord(rec gateway.Record) (Task, error) {
	var task Task
	var err error
	if task.ID, err = requiredString(rec, gateway.FieldID); err != nil {
		return Task{}, mapError("task", rec, err)
	}
	if task.Title, err = requiredString(rec, gateway.FieldTitle); err != nil {
		return Task{}, mapError("task", rec, err)
	}
	if task.ProjectID, err = requiredString(rec, gateway.FieldProjectID); err != nil {
		return Task{}, mapError("task", rec, err)
	}
	if task.UserID, err = requiredString(rec, gateway.FieldUserID); err != nil {
		return Task{}, mapError("task", rec, err)
	}
	if task.Description, err = optionalString(rec, gateway.FieldDescription); err != nil {
		return Task{}, mapError("task", rec, err)
	}
	if task.Completed, err = optionalBool(rec, gateway.FieldCompleted); err != nil {
		return Task{}, mapError("task", rec, err)
	}
	if task.DueDate, err = optionalDate(rec, gateway.FieldDueDate); err != nil {
		return Task{}, mapError("task", rec, err)
	}
	if task.CreatedAt, err = requiredTime(rec, gateway.FieldCreatedAt); err != nil {
		return Task{}, mapError("task", rec, err)
	}
	if task.UpdatedAt, err = optionalTime(rec, gateway.FieldUpdatedAt, task.CreatedAt); err != nil {
		return Task{}, mapError("task", rec, err)
	}
	return task, nil
}

// PatchToRecord converts a TaskPatch to the partial record sent to the gateway.
func (m *TaskMapper) PatchToRecord(patch TaskPatch) gateway.Record {
	rec := gateway.Record{}
	if patch.Title != nil {
		rec[gateway.FieldTitle] = *patch.Title
	}
	if patch.Description != nil {
		if *patch.Description == "" {
			rec[gateway.FieldDescription] = nil
		} else {
			rec[gateway.FieldDescription] = *patch.Description
		}
	}
	if patch.Completed != nil {
		rec[gateway.FieldCompleted] = *patch.Completed
	}
	if patch.ClearDueDate {
		rec[gateway.FieldDueDate] = nil
	} else if patch.DueDate != nil {
		rec[gateway.FieldDueDate] = FormatWireTime(*patch.DueDate)
	}
	if patch.ProjectID != nil {
		rec[gateway.FieldProjectID] = *patch.ProjectID
	}
	return rec
}

// FromRecordSlice converts records in order, failing on the first malformed one.
func (m *TaskMapper) FromRecordSlice(recs []gateway.Record) ([]Task, error) {
	tasks := make([]Task, 0, len(recs))
	for _, rec := range recs {
		task, err := m.FromRecord(rec)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// ProjectMapper handles conversion between domain Projects and wire records.
type ProjectMapper struct{}

// NewProjectMapper creates a new ProjectMapper instance.
func NewProjectMapper() *ProjectMapper {
	return &ProjectMapper{}
}

// ToRecord converts a domain Project to a wire record.
func (m *ProjectMapper) ToRecord(project Project) gateway.Record {
	rec := gateway.Record{
		gateway.FieldName:      project.Name,
		gateway.FieldIcon:      project.Icon,
		gateway.FieldUserID:    project.UserID,
		gateway.FieldIsDefault: project.IsDefault,
	}
	putIdentity(rec, project.ID, project.CreatedAt, project.UpdatedAt)
	return rec
}

// FromRecord converts a wire record to a domain Project. Unsupported icons are normalized.
func (m *ProjectMapper) FromRecord(rec gateway.Record) (Project, error) {
	var project Project
	var err error
	if project.ID, err = requiredString(rec, gateway.FieldID); err != nil {
		return Project{}, mapError("project", rec, err)
	}
	if project.Name, err = requiredString(rec, gateway.FieldName); err != nil {
		return Project{}, mapError("project", rec, err)
	}
	if project.UserID, err = requiredString(rec, gateway.FieldUserID); err != nil {
		return Project{}, mapError("project", rec, err)
	}
	icon, err := optionalString(rec, gateway.FieldIcon)
	if err != nil {
		return Project{}, mapError("project", rec, err)
	}
	project.Icon = NormalizeIcon(icon)
	if project.IsDefault, err = optionalBool(rec, gateway.FieldIsDefault); err != nil {
		return Project{}, mapError("project", rec, err)
	}
	if project.CreatedAt, err = requiredTime(rec, gateway.FieldCreatedAt); err != nil {
		return Project{}, mapError("project", rec, err)
	}
	if project.UpdatedAt, err = optionalTime(rec, gateway.FieldUpdatedAt, project.CreatedAt); err != nil {
		return Project{}, mapError("project", rec, err)
	}
	return project, nil
}

// PatchToRecord converts a ProjectPatch to the partial record sent to the gateway.
func (m *ProjectMapper) PatchToRecord(patch ProjectPatch) gateway.Record {
	rec := gateway.Record{}
	if patch.Name != nil {
		rec[gateway.FieldName] = *patch.Name
	}
	if patch.Icon != nil {
		rec[gateway.FieldIcon] = NormalizeIcon(*patch.Icon)
	}
	return rec
}

// FromRecordSlice converts records in order, failing on the first malformed one.
func (m *ProjectMapper) FromRecordSlice(recs []gateway.Record) ([]Project, error) {
	projects := make([]Project, 0, len(recs))
	for _, rec := range recs {
		project, err := m.FromRecord(rec)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, nil
}

// Mapper provides a unified interface for all mapping operations.
type Mapper struct {
	Task    *TaskMapper
	Project *ProjectMapper
}

// NewMapper creates a new Mapper instance with all sub-mappers.
func NewMapper() *Mapper {
	return &Mapper{
		Task:    NewTaskMapper(),
		Project: NewProjectMapper(),
	}
}

func putIdentity(rec gateway.Record, id string, createdAt, updatedAt time.Time) {
	if id != "" {
		rec[gateway.FieldID] = id
	}
	if !createdAt.IsZero() {
		rec[gateway.FieldCreatedAt] = FormatWireTime(createdAt)
	}
	if !updatedAt.IsZero() {
		rec[gateway.FieldUpdatedAt] = FormatWireTime(updatedAt)
	}
}

func mapError(entity string, rec gateway.Record, cause error) error {
	return errors.NewGatewayError("map "+entity+" record", cause).WithContext("id", rec.ID())
}

func requiredString(rec gateway.Record, key string) (string, error) {
	v, ok := rec[key]
	if !ok || v == nil {
		return "", fmt.Errorf("field %q is missing", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
	if s == "" {
		return "", fmt.Errorf("field %q is empty", key)
	}
	return s, nil
}

func optionalString(rec gateway.Record, key string) (string, error) {
	v, ok := rec[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
	return s, nil
}

func optionalBool(rec gateway.Record, key string) (bool, error) {
	v, ok := rec[key]
	if !ok || v == nil {
		return false, nil
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case int64:
		return b != 0, nil
	case int:
		return b != 0, nil
	case float64:
		return b != 0, nil
	default:
		return false, fmt.Errorf("field %q has type %T, want bool", key, v)
	}
}

func parseTimeValue(key string, v interface{}) (time.Time, error) {
	switch tv := v.(type) {
	case time.Time:
		return tv, nil
	case string:
		t, err := ParseWireTime(tv)
		if err != nil {
			return time.Time{}, fmt.Errorf("field %q: %w", key, err)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("field %q has type %T, want timestamp", key, v)
	}
}

func requiredTime(rec gateway.Record, key string) (time.Time, error) {
	v, ok := rec[key]
	if !ok || v == nil {
		return time.Time{}, fmt.Errorf("field %q is missing", key)
	}
	return parseTimeValue(key, v)
}

func optionalTime(rec gateway.Record, key string, fallback time.Time) (time.Time, error) {
	v, ok := rec[key]
	if !ok || v == nil {
		return fallback, nil
	}
	return parseTimeValue(key, v)
}

func optionalDate(rec gateway.Record, key string) (*time.Time, error) {
	v, ok := rec[key]
	if !ok || v == nil {
		return nil, nil
	}
	if s, isString := v.(string); isString {
		if s == "" {
			return nil, nil
		}
		if d, err := time.Parse(DueDateLayout, s); err == nil {
			return &d, nil
		}
	}
	t, err := parseTimeValue(key, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
