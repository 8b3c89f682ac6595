package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"uptask/internal/config"
	"uptask/internal/export"
)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd    *cobra.Command
	loader *config.Loader
	open   GatewayOpener
	config *config.Config
	app    *App
}

// NewRootCommand creates the root cobra command with global flags. Configuration
// is loaded through loader once flags are parsed; open builds the gateway the
// first time a command needs the store.
func NewRootCommand(loader *config.Loader, open GatewayOpener) *RootCommand {
	root := &RootCommand{
		loader: loader,
		open:   open,
	}

	root.cmd = &cobra.Command{
		Use:   "ut",
		Short: "A command-line task and project manager",
		Long: `uptask (ut) keeps your tasks organized in projects, with due dates,
overdue tracking and batch edits.

FEATURES:
  • Add, edit, complete and delete tasks in projects
  • Select several tasks by position or range (1,3,5-7) for batch moves and deletes
  • See what is overdue or due today, search, and view completion stats
  • Export tasks to CSV, JSON or PDF
  • Watch mode with a scheduled digest of due tasks
  • Fully configurable via a YAML file, environment variables and command-line flags

EXAMPLES:
  ut add "Write report" --due 2024-03-20   # Add a task to the Inbox
  ut list                                  # List active tasks with their positions
  ut done 2                                # Complete the task at position 2
  ut mv 1,3-4 Work                         # Move tasks 1, 3 and 4 to the Work project
  ut --project Work list --all             # List every task of the Work project
  ut overdue                               # Show overdue tasks across projects
  ut export --format pdf --out tasks.pdf   # Export a PDF report

CONFIGURATION:
  Configuration follows this priority order: command-line flags > environment variables > config file > defaults
  The config file is read from UT_CONFIG (default: ~/.uptask/config.yaml)

  Session Configuration:
    UT_USER                                Signed-in user id (required)

  Gateway Configuration:
    UT_GATEWAY                             Backend driver: sqlite or gorm (default: sqlite)
    UT_DB_DIR                              Database directory (default: ~/.uptask)
    UT_DB_FILENAME                         Database filename (default: uptask.db)
    UT_DB_QUERY_TIMEOUT                    Query timeout (default: 10s)

  Validation Configuration:
    UT_VALIDATION_TITLE_MAX                Max task title length (default: 500)
    UT_VALIDATION_NAME_MAX                 Max project name length (default: 100)

  Display Configuration:
    UT_DISPLAY_DATE_FORMAT                 Due date format (default: 2006-01-02)

  Application Configuration:
    UT_APP_TIMEOUT                         Application timeout (default: 60s)
    UT_APP_VERBOSE                         Show ids in listings (default: false)
    UT_DEBUG                               Print debug logging

  Schedule Configuration:
    UT_DIGEST_INTERVAL                     Watch digest interval (default: 1h)
    UT_DAILY_DIGEST_AT                     Daily watch digest time (default: 09:00)
    UT_REFRESH_INTERVAL                    Watch refresh interval (default: 30s)

GETTING HELP:
  ut [command] --help                      # Get help for any specific command
  ut completion bash                       # Generate bash completion script`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Apply configuration overrides from flags before any command runs
			return root.getConfigFromFlags()
		},
	}

	// Add global flags for configuration overrides
	root.addGlobalFlags()

	// Add all subcommands
	root.addSubcommands()

	return root
}

// Execute runs the root command and releases the session and gateway afterwards
func (r *RootCommand) Execute() error {
	defer r.shutdown()
	return r.cmd.Execute()
}

func (r *RootCommand) shutdown() {
	if r.app == nil {
		return
	}
	if err := r.app.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: closing gateway: %v\n", err)
	}
	r.app = nil
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	// Session configuration
	flags.String("user", "", "Signed-in user id (overrides UT_USER)")
	flags.String("project", "", "Project to work in, by name or id (default: the Inbox)")

	// Gateway configuration
	flags.String("gateway", "", "Backend driver: sqlite or gorm (overrides UT_GATEWAY)")
	flags.String("db-dir", "", "Database directory (overrides UT_DB_DIR)")
	flags.String("db-filename", "", "Database filename (overrides UT_DB_FILENAME)")
	flags.Duration("db-query-timeout", 0, "Database query timeout (overrides UT_DB_QUERY_TIMEOUT)")

	// Application configuration
	flags.Duration("app-timeout", 0, "Application timeout (overrides UT_APP_TIMEOUT)")
	flags.Bool("verbose", false, "Show ids in listings (overrides UT_APP_VERBOSE)")
}

// run wraps a handler in the application timeout
func (r *RootCommand) run(handler func(ctx context.Context, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout())
		defer cancel()
		return handler(ctx, args)
	}
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	// Add command
	addCmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task",
		Long: `Add a task to the current project (the Inbox unless --project is given).

Examples:
  ut add Buy milk
  ut add "Pay rent" --due 2024-04-01
  ut --project Work add "Draft slides" --description "for the Monday review"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := NewAddCommand(r.app)
			handler.Description, _ = cmd.Flags().GetString("description")
			handler.Due, _ = cmd.Flags().GetString("due")
			return r.run(handler.Execute)(cmd, args)
		},
	}
	addCmd.Flags().StringP("description", "d", "", "Task description")
	addCmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the tasks of the current project",
		Long: `List the tasks of the current project. Active tasks come first and every
task is shown with the position other commands accept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := NewListCommand(r.app)
			handler.All, _ = cmd.Flags().GetBool("all")
			return r.run(handler.Execute)(cmd, args)
		},
	}
	listCmd.Flags().BoolP("all", "a", false, "Include completed tasks")

	// Done command
	doneCmd := &cobra.Command{
		Use:   "done [position]",
		Short: "Complete or reopen a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(NewDoneCommand(r.app).Execute)(cmd, args)
		},
	}

	// Edit command
	editCmd := &cobra.Command{
		Use:   "edit [position]",
		Short: "Change a task's title, description or due date",
		Long: `Change the fields of the task at a position. Only the flags given are changed.

Examples:
  ut edit 2 --title "Pay rent today"
  ut edit 2 --due 2024-04-01
  ut edit 2 --clear-due`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := NewEditCommand(r.app)
			flags := cmd.Flags()
			if flags.Changed("title") {
				title, _ := flags.GetString("title")
				handler.Title = &title
			}
			if flags.Changed("description") {
				description, _ := flags.GetString("description")
				handler.Description = &description
			}
			if flags.Changed("due") {
				due, _ := flags.GetString("due")
				handler.Due = &due
			}
			handler.ClearDue, _ = flags.GetBool("clear-due")
			return r.run(handler.Execute)(cmd, args)
		},
	}
	editCmd.Flags().String("title", "", "New title")
	editCmd.Flags().StringP("description", "d", "", "New description (empty clears it)")
	editCmd.Flags().String("due", "", "New due date (YYYY-MM-DD)")
	editCmd.Flags().Bool("clear-due", false, "Remove the due date")

	// Remove command
	rmCmd := &cobra.Command{
		Use:   "rm [positions|all]",
		Short: "Delete tasks",
		Long: `Delete the tasks at the given positions. Positions may be listed with commas
and ranges: 1,3,5-7. "all" deletes every task of the current project.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(NewRemoveCommand(r.app).Execute)(cmd, args)
		},
	}

	// Move command
	mvCmd := &cobra.Command{
		Use:   "mv [positions|all] [project]",
		Short: "Move tasks to another project",
		Long: `Move the tasks at the given positions to a project, named or by id.

Example:
  ut mv 1,3-4 Work`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(NewMoveCommand(r.app).Execute)(cmd, args)
		},
	}

	// Projects command
	projectsCmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(NewProjectsCommand(r.app).Execute)(cmd, args)
		},
	}

	// Overdue and today commands
	overdueCmd := &cobra.Command{
		Use:   "overdue",
		Short: "Show overdue tasks",
		Long:  "Show incomplete tasks due before today, earliest first. With --project only that project is shown.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(NewOverdueCommand(r.app).Execute)(cmd, args)
		},
	}
	todayCmd := &cobra.Command{
		Use:   "today",
		Short: "Show tasks due today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(NewTodayCommand(r.app).Execute)(cmd, args)
		},
	}

	// Search command
	searchCmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search tasks and projects",
		Long:  "Search task titles and descriptions and project names, ignoring case.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(NewSearchCommand(r.app).Execute)(cmd, args)
		},
	}

	// Stats command
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show completion statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(NewStatsCommand(r.app).Execute)(cmd, args)
		},
	}

	// Export command
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks",
		Long: `Export every task in the specified format.

Supported formats:
  csv  - Comma-separated values
  json - JSON array
  pdf  - Printable report grouped by project

Example:
  ut export --format csv > tasks.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := NewExportCommand(r.app)
			handler.Format, _ = cmd.Flags().GetString("format")
			handler.Out, _ = cmd.Flags().GetString("out")
			return r.run(handler.Execute)(cmd, args)
		},
	}
	exportCmd.Flags().StringP("format", "f", export.FormatCSV, "Export format: csv, json or pdf")
	exportCmd.Flags().StringP("out", "o", "", "Write to a file instead of standard output")

	// Watch command
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Print a digest of due tasks on a schedule and follow changes",
		Long: `Print a digest of overdue and due-today tasks now, every digest interval and at the
daily digest time, and print task and project changes as they happen. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return NewWatchCommand(r.app, r.getAppTimeout()).Execute(ctx, args)
		},
	}

	// Add all subcommands to root
	r.cmd.AddCommand(
		addCmd,
		listCmd,
		doneCmd,
		editCmd,
		rmCmd,
		mvCmd,
		projectsCmd,
		r.projectCommand(),
		overdueCmd,
		todayCmd,
		searchCmd,
		statsCmd,
		exportCmd,
		watchCmd,
	)
}

// projectCommand builds the project command group
func (r *RootCommand) projectCommand() *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Create, rename, re-icon or delete projects",
	}

	addCmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Create a project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := NewProjectAddCommand(r.app)
			handler.Icon, _ = cmd.Flags().GetString("icon")
			return r.run(handler.Execute)(cmd, args)
		},
	}
	addCmd.Flags().String("icon", "folder", "Project icon")

	renameCmd := &cobra.Command{
		Use:   "rename [project] [name]",
		Short: "Rename a project",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(NewProjectRenameCommand(r.app).Execute)(cmd, args)
		},
	}

	iconCmd := &cobra.Command{
		Use:   "icon [project] [icon]",
		Short: "Change a project's icon",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(NewProjectIconCommand(r.app).Execute)(cmd, args)
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm [project]",
		Short: "Delete a project",
		Long: `Delete a project and its tasks. With --keep-tasks its tasks are moved to the
default project instead. The default project cannot be deleted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := NewProjectRemoveCommand(r.app)
			handler.KeepTasks, _ = cmd.Flags().GetBool("keep-tasks")
			return r.run(handler.Execute)(cmd, args)
		},
	}
	rmCmd.Flags().Bool("keep-tasks", false, "Move the project's tasks to the default project")

	projectCmd.AddCommand(addCmd, renameCmd, iconCmd, rmCmd)
	return projectCmd
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil {
		return r.config.Application.Timeout
	}
	return 60 * time.Second // Default timeout
}

// getConfigFromFlags loads the configuration with the command-line flags as
// overrides and prepares the App the commands run against
func (r *RootCommand) getConfigFromFlags() error {
	if r.loader == nil {
		return fmt.Errorf("configuration loader not initialized")
	}

	flags := r.cmd.PersistentFlags()
	overrides := &config.ConfigOverrides{}

	// Session configuration
	if user, _ := flags.GetString("user"); user != "" {
		overrides.UserID = &user
	}

	// Gateway configuration
	if driver, _ := flags.GetString("gateway"); driver != "" {
		overrides.Driver = &driver
	}
	if dbDir, _ := flags.GetString("db-dir"); dbDir != "" {
		overrides.DBDir = &dbDir
	}
	if dbFilename, _ := flags.GetString("db-filename"); dbFilename != "" {
		overrides.DBFilename = &dbFilename
	}
	if queryTimeout, _ := flags.GetDuration("db-query-timeout"); queryTimeout > 0 {
		overrides.DBQueryTimeout = &queryTimeout
	}

	// Application configuration
	if appTimeout, _ := flags.GetDuration("app-timeout"); appTimeout > 0 {
		overrides.Timeout = &appTimeout
	}
	if verbose, _ := flags.GetBool("verbose"); verbose {
		overrides.Verbose = &verbose
	}

	cfg, err := r.loader.LoadWithOverrides(overrides)
	if err != nil {
		return err
	}
	r.config = cfg

	r.app = NewApp(cfg, r.open, r.cmd.OutOrStdout())
	r.app.project, _ = flags.GetString("project")
	return nil
}
