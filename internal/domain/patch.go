package domain

import "time"

// TaskPatch lists the task fields an update may change. Nil fields are left alone.
// Ownership is not patchable.
type TaskPatch struct {
	Title        *string
	Description  *string
	Completed    *bool
	DueDate      *time.Time
	ClearDueDate bool
	ProjectID    *string
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil &&
		p.DueDate == nil && !p.ClearDueDate && p.ProjectID == nil
}

// ProjectPatch lists the project fields an update may change. The default flag is not patchable.
type ProjectPatch struct {
	Name *string
	Icon *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ProjectPatch) IsEmpty() bool {
	return p.Name == nil && p.Icon == nil
}
