package cli

import (
	"context"
	"fmt"
	"strings"

	"uptask/internal/domain"
	"uptask/internal/errors"
	"uptask/internal/store"
)

// DueCommand handles the overdue and today commands
type DueCommand struct {
	app     *App
	overdue bool
}

// NewOverdueCommand creates a handler listing overdue tasks
func NewOverdueCommand(app *App) *DueCommand {
	return &DueCommand{app: app, overdue: true}
}

// NewTodayCommand creates a handler listing tasks due today
func NewTodayCommand(app *App) *DueCommand {
	return &DueCommand{app: app}
}

// Execute lists the due tasks across projects, or only of the --project view.
func (c *DueCommand) Execute(ctx context.Context, args []string) error {
	operation := "list tasks due today"
	if c.overdue {
		operation = "list overdue tasks"
	}
	st, err := c.app.Store(ctx)
	if err != nil {
		return c.app.errorHandler.Handle(operation, err)
	}

	projectID := ""
	if c.app.project != "" {
		projectID = st.Snapshot().SelectedProjectID
	}
	now := timeNow()
	var tasks []domain.Task
	if c.overdue {
		tasks = st.OverdueTasks(now, projectID)
	} else {
		for _, t := range st.DueToday(now) {
			if projectID == "" || t.ProjectID == projectID {
				tasks = append(tasks, t)
			}
		}
	}

	if len(tasks) == 0 {
		if c.overdue {
			c.app.printf("No overdue tasks\n")
		} else {
			c.app.printf("Nothing due today\n")
		}
		return nil
	}

	names := projectNames(st.Snapshot().Projects)
	for _, t := range tasks {
		c.app.printf("%s  @%s\n", c.app.formatTask(0, t, now), names[t.ProjectID])
	}
	return nil
}

// SearchCommand handles the search command
type SearchCommand struct {
	app *App
}

// NewSearchCommand creates a new search command handler
func NewSearchCommand(app *App) *SearchCommand {
	return &SearchCommand{app: app}
}

// Execute prints the tasks and projects matching the query
func (c *SearchCommand) Execute(ctx context.Context, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return errors.NewInvalidInputError("command", "search", "usage: ut search <text>")
	}
	st, err := c.app.Store(ctx)
	if err != nil {
		return c.app.errorHandler.Handle("search", err)
	}

	res := st.Search(query)
	if len(res.Tasks) == 0 && len(res.Projects) == 0 {
		c.app.printf("No matches for %q\n", query)
		return nil
	}

	now := timeNow()
	names := projectNames(st.Snapshot().Projects)
	if len(res.Tasks) > 0 {
		c.app.printf("Tasks:\n")
		for _, t := range res.Tasks {
			c.app.printf("%s  @%s\n", c.app.formatTask(0, t, now), names[t.ProjectID])
		}
	}
	if len(res.Projects) > 0 {
		c.app.printf("Projects:\n")
		for _, p := range res.Projects {
			c.app.printf("  - [%s] %s\n", p.Icon, p.Name)
		}
	}
	return nil
}

// StatsCommand handles the stats command
type StatsCommand struct {
	app *App
}

// NewStatsCommand creates a new stats command handler
func NewStatsCommand(app *App) *StatsCommand {
	return &StatsCommand{app: app}
}

// Execute prints completion figures for the current project and for all tasks
func (c *StatsCommand) Execute(ctx context.Context, args []string) error {
	st, err := c.app.Store(ctx)
	if err != nil {
		return c.app.errorHandler.Handle("show stats", err)
	}
	snap := st.Snapshot()
	project, _ := st.Project(snap.SelectedProjectID)

	c.app.printf("%s\n", formatStats(project.Name, st.Stats(project.ID)))
	c.app.printf("%s\n", formatStats("All projects", st.Stats("")))
	if overdue := len(st.OverdueTasks(timeNow(), "")); overdue > 0 {
		c.app.printf("%d overdue\n", overdue)
	}
	return nil
}

func formatStats(label string, s store.Stats) string {
	return fmt.Sprintf("%s: %d %s, %d completed, %d open (%d%% done)",
		label, s.Total, plural(s.Total, "task", "tasks"), s.Completed, s.Incomplete, s.CompletionRate)
}
