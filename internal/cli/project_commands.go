package cli

import (
	"context"
	"fmt"
	"strings"

	"uptask/internal/domain"
	"uptask/internal/errors"
)

// ProjectsCommand handles the projects command
type ProjectsCommand struct {
	app *App
}

// NewProjectsCommand creates a new projects command handler
func NewProjectsCommand(app *App) *ProjectsCommand {
	return &ProjectsCommand{app: app}
}

// Execute lists the projects with their active task counts. The current view is
// marked with an asterisk.
func (c *ProjectsCommand) Execute(ctx context.Context, args []string) error {
	st, err := c.app.Store(ctx)
	if err != nil {
		return c.app.errorHandler.Handle("list projects", err)
	}
	snap := st.Snapshot()
	counts := st.ProjectTaskCounts()

	for _, p := range snap.Projects {
		marker := " "
		if p.ID == snap.SelectedProjectID {
			marker = "*"
		}
		c.app.printf("%-32s %d active", fmt.Sprintf("%s [%s] %s", marker, p.Icon, p.Name), counts[p.ID])
		if p.IsDefault {
			c.app.printf(" (default)")
		}
		if c.app.verbose() {
			c.app.printf("  [%s]", p.ID)
		}
		c.app.printf("\n")
	}
	return nil
}

// ProjectAddCommand handles the project add command
type ProjectAddCommand struct {
	app  *App
	Icon string
}

// NewProjectAddCommand creates a new project add command handler
func NewProjectAddCommand(app *App) *ProjectAddCommand {
	return &ProjectAddCommand{app: app}
}

// Execute creates a project. Unsupported icons fall back to the default icon.
func (c *ProjectAddCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.NewInvalidInputError("command", "project add", "usage: ut project add <name> [--icon icon]")
	}
	st, err := c.app.Store(ctx)
	if err != nil {
		return c.app.errorHandler.Handle("add project", err)
	}
	project, err := st.AddProject(ctx, strings.Join(args, " "), c.Icon)
	if err != nil {
		return c.app.errorHandler.Handle("add project", err)
	}

	c.app.printf("Created project: [%s] %s\n", project.Icon, project.Name)
	return nil
}

// ProjectRenameCommand handles the project rename command
type ProjectRenameCommand struct {
	app *App
}

// NewProjectRenameCommand creates a new project rename command handler
func NewProjectRenameCommand(app *App) *ProjectRenameCommand {
	return &ProjectRenameCommand{app: app}
}

// Execute renames the project named by the first argument
func (c *ProjectRenameCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.NewInvalidInputError("command", "project rename", "usage: ut project rename <project> <new name>")
	}
	name := strings.Join(args[1:], " ")
	updated, err := updateProject(ctx, c.app, args[0], domain.ProjectPatch{Name: &name})
	if err != nil {
		return c.app.errorHandler.Handle("rename project", err)
	}

	c.app.printf("Renamed project to %s\n", updated.Name)
	return nil
}

// ProjectIconCommand handles the project icon command
type ProjectIconCommand struct {
	app *App
}

// NewProjectIconCommand creates a new project icon command handler
func NewProjectIconCommand(app *App) *ProjectIconCommand {
	return &ProjectIconCommand{app: app}
}

// Execute changes a project's icon
func (c *ProjectIconCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.NewInvalidInputError("command", "project icon", "usage: ut project icon <project> <icon> (one of "+strings.Join(domain.Icons, ", ")+")")
	}
	icon := args[1]
	updated, err := updateProject(ctx, c.app, args[0], domain.ProjectPatch{Icon: &icon})
	if err != nil {
		return c.app.errorHandler.Handle("change project icon", err)
	}

	c.app.printf("Project %s now uses [%s]\n", updated.Name, updated.Icon)
	return nil
}

func updateProject(ctx context.Context, app *App, ref string, patch domain.ProjectPatch) (domain.Project, error) {
	st, err := app.Store(ctx)
	if err != nil {
		return domain.Project{}, err
	}
	project, err := st.ResolveProject(ref)
	if err != nil {
		return domain.Project{}, err
	}
	return st.UpdateProject(ctx, project.ID, patch)
}

// ProjectRemoveCommand handles the project rm command
type ProjectRemoveCommand struct {
	app       *App
	KeepTasks bool
}

// NewProjectRemoveCommand creates a new project rm command handler
func NewProjectRemoveCommand(app *App) *ProjectRemoveCommand {
	return &ProjectRemoveCommand{app: app}
}

// Execute deletes a project together with its tasks, or moves them to the
// default project first when KeepTasks is set.
func (c *ProjectRemoveCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "project rm", "usage: ut project rm <project> [--keep-tasks]")
	}
	st, err := c.app.Store(ctx)
	if err != nil {
		return c.app.errorHandler.Handle("delete project", err)
	}
	project, err := st.ResolveProject(args[0])
	if err != nil {
		return c.app.errorHandler.Handle("delete project", err)
	}
	tasks := st.Stats(project.ID).Total
	if err := st.DeleteProject(ctx, project.ID, c.KeepTasks); err != nil {
		return c.app.errorHandler.Handle("delete project", err)
	}

	if c.KeepTasks {
		inbox, _ := st.Project(st.DefaultProjectID())
		c.app.printf("Deleted project %s; moved %d %s to %s\n", project.Name, tasks, plural(tasks, "task", "tasks"), inbox.Name)
	} else {
		c.app.printf("Deleted project %s and %d %s\n", project.Name, tasks, plural(tasks, "task", "tasks"))
	}
	return nil
}
