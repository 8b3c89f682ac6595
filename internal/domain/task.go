package domain

import "time"

// Task represents a task in the domain model.
// This is a pure domain model without wire-format concerns.
type Task struct {
	ID          string
	Title       string
	Description string
	Completed   bool
	DueDate     *time.Time
	ProjectID   string
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTask creates a new, incomplete Task in the given project.
func NewTask(title, projectID, userID string) Task {
	return Task{
		Title:     title,
		ProjectID: projectID,
		UserID:    userID,
	}
}

// IsValid checks if the task has the fields every stored task carries.
func (t Task) IsValid() bool {
	return t.Title != "" && t.ProjectID != "" && t.UserID != ""
}

// String returns the task title for display purposes.
func (t Task) String() string {
	return t.Title
}

// HasDueDate reports whether a due date is set.
func (t Task) HasDueDate() bool {
	return t.DueDate != nil
}

// IsOverdue reports whether the task is incomplete and due on a calendar day before now's.
func (t Task) IsOverdue(now time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	return DateOnly(*t.DueDate).Before(DateOnly(now))
}

// IsDueOn reports whether the task is incomplete and due on day's calendar date.
func (t Task) IsDueOn(day time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	return DateOnly(*t.DueDate).Equal(DateOnly(day))
}

// DateOnly drops the clock part of t, keeping the calendar date as written in t's own zone.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
