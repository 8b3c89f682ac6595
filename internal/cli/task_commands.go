package cli

import (
	"context"
	"strings"
	"time"

	"uptask/internal/domain"
	"uptask/internal/errors"
	"uptask/internal/validation"
)

// AddCommand handles the add command
type AddCommand struct {
	app         *App
	Description string
	Due         string
}

// NewAddCommand creates a new add command handler
func NewAddCommand(app *App) *AddCommand {
	return &AddCommand{app: app}
}

// Execute runs the add command
func (c *AddCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.NewInvalidInputError("command", "add", "usage: ut add \"your task here\"")
	}
	due, err := parseDue(c.app, c.Due)
	if err != nil {
		return c.app.errorHandler.Handle("add task", err)
	}

	st, err := c.app.Store(ctx)
	if err != nil {
		return c.app.errorHandler.Handle("add task", err)
	}
	task, err := st.AddTask(ctx, strings.Join(args, " "), c.Description, due)
	if err != nil {
		return c.app.errorHandler.Handle("add task", err)
	}

	project, _ := st.Project(task.ProjectID)
	c.app.printf("Added task to %s: %s\n", project.Name, task.Title)
	return nil
}

// ListCommand handles the list command
type ListCommand struct {
	app *App
	All bool
}

// NewListCommand creates a new list command handler
func NewListCommand(app *App) *ListCommand {
	return &ListCommand{app: app}
}

// Execute runs the list command. Positions are stable with or without
// completed tasks since active tasks always come first.
func (c *ListCommand) Execute(ctx context.Context, args []string) error {
	st, err := c.app.Store(ctx)
	if err != nil {
		return c.app.errorHandler.Handle("list tasks", err)
	}
	snap := st.Snapshot()
	project, _ := st.Project(snap.SelectedProjectID)

	if len(snap.ActiveTasks) == 0 && (!c.All || len(snap.CompletedTasks) == 0) {
		c.app.printf("No tasks in %s\n", project.Name)
		return nil
	}

	now := timeNow()
	c.app.printf("%s\n", project.Name)
	for i, id := range st.OrderedTaskIDs() {
		task, ok := st.Task(id)
		if !ok || (task.Completed && !c.All) {
			continue
		}
		c.app.printf("%s\n", c.app.formatTask(i+1, task, now))
	}
	c.app.printf("%d active, %d completed\n", len(snap.ActiveTasks), len(snap.CompletedTasks))
	return nil
}

// DoneCommand handles the done command
type DoneCommand struct {
	app *App
}

// NewDoneCommand creates a new done command handler
func NewDoneCommand(app *App) *DoneCommand {
	return &DoneCommand{app: app}
}

// Execute toggles the completion of the task at the given position
func (c *DoneCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "done", "usage: ut done <position>")
	}
	st, err := c.app.Store(ctx)
	if err != nil {
		return c.app.errorHandler.Handle("complete task", err)
	}
	id, err := resolveRef(st, args[0])
	if err != nil {
		return c.app.errorHandler.Handle("complete task", err)
	}
	task, err := st.ToggleTaskCompletion(ctx, id)
	if err != nil {
		return c.app.errorHandler.Handle("complete task", err)
	}

	if task.Completed {
		c.app.printf("Completed: %s\n", task.Title)
	} else {
		c.app.printf("Reopened: %s\n", task.Title)
	}
	return nil
}

// EditCommand handles the edit command. Nil fields are left unchanged.
type EditCommand struct {
	app         *App
	Title       *string
	Description *string
	Due         *string
	ClearDue    bool
}

// NewEditCommand creates a new edit command handler
func NewEditCommand(app *App) *EditCommand {
	return &EditCommand{app: app}
}

// Execute applies the given field changes to the task at a position
func (c *EditCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "edit", "usage: ut edit <position> [--title ...] [--description ...] [--due YYYY-MM-DD | --clear-due]")
	}
	if c.Due != nil && c.ClearDue {
		return errors.NewInvalidInputError("due", *c.Due, "--due and --clear-due cannot be combined")
	}

	patch := domain.TaskPatch{
		Title:        c.Title,
		Description:  c.Description,
		ClearDueDate: c.ClearDue,
	}
	if c.Due != nil {
		due, err := parseDue(c.app, *c.Due)
		if err != nil {
			return c.app.errorHandler.Handle("edit task", err)
		}
		patch.DueDate = due
	}

	st, err := c.app.Store(ctx)
	if err != nil {
		return c.app.errorHandler.Handle("edit task", err)
	}
	id, err := resolveRef(st, args[0])
	if err != nil {
		return c.app.errorHandler.Handle("edit task", err)
	}
	task, err := st.UpdateTask(ctx, id, patch)
	if err != nil {
		return c.app.errorHandler.Handle("edit task", err)
	}

	c.app.printf("Updated: %s\n", c.app.formatTask(0, task, timeNow()))
	return nil
}

// RemoveCommand handles the rm command
type RemoveCommand struct {
	app *App
}

// NewRemoveCommand creates a new rm command handler
func NewRemoveCommand(app *App) *RemoveCommand {
	return &RemoveCommand{app: app}
}

// Execute deletes the tasks at the given positions
func (c *RemoveCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.NewInvalidInputError("command", "rm", "usage: ut rm <positions>")
	}
	st, err := c.app.Store(ctx)
	if err != nil {
		return c.app.errorHandler.Handle("delete tasks", err)
	}
	ids, err := selectRefs(st, strings.Join(args, ","))
	if err != nil {
		return c.app.errorHandler.Handle("delete tasks", err)
	}
	if err := st.DeleteTasks(ctx, ids); err != nil {
		return c.app.errorHandler.Handle("delete tasks", err)
	}

	c.app.printf("Deleted %d %s\n", len(ids), plural(len(ids), "task", "tasks"))
	return nil
}

// MoveCommand handles the mv command
type MoveCommand struct {
	app *App
}

// NewMoveCommand creates a new mv command handler
func NewMoveCommand(app *App) *MoveCommand {
	return &MoveCommand{app: app}
}

// Execute moves the tasks at the given positions to another project
func (c *MoveCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.NewInvalidInputError("command", "mv", "usage: ut mv <positions> <project>")
	}
	st, err := c.app.Store(ctx)
	if err != nil {
		return c.app.errorHandler.Handle("move tasks", err)
	}
	target, err := st.ResolveProject(args[len(args)-1])
	if err != nil {
		return c.app.errorHandler.Handle("move tasks", err)
	}
	ids, err := selectRefs(st, strings.Join(args[:len(args)-1], ","))
	if err != nil {
		return c.app.errorHandler.Handle("move tasks", err)
	}
	if err := st.MoveTasksToProject(ctx, ids, target.ID); err != nil {
		return c.app.errorHandler.Handle("move tasks", err)
	}

	c.app.printf("Moved %d %s to %s\n", len(ids), plural(len(ids), "task", "tasks"), target.Name)
	return nil
}

// parseDue parses an optional YYYY-MM-DD flag value.
func parseDue(app *App, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	due, err := validation.NewTaskValidatorWithConfig(app.config).ParseDueDate(value)
	if err != nil {
		return nil, errors.NewValidationError("invalid due date", err)
	}
	return &due, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
