package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"uptask/internal/config"
	"uptask/internal/domain"
	"uptask/internal/gateway"
	"uptask/internal/session"
	"uptask/internal/store"
	"uptask/internal/validation"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// GatewayOpener builds the persistence gateway for a loaded configuration.
type GatewayOpener func(cfg *config.Config) (gateway.Gateway, error)

// App holds the state shared by the commands of one invocation. The gateway is
// opened and the user signed in on first use.
type App struct {
	config       *config.Config
	open         GatewayOpener
	out          io.Writer
	project      string
	errorHandler *ErrorHandler

	gw       gateway.Gateway
	sessions *session.Manager
	onChange func(gateway.ChangeEvent)
}

// NewApp creates an App writing to out.
func NewApp(cfg *config.Config, open GatewayOpener, out io.Writer) *App {
	return &App{
		config:       cfg,
		open:         open,
		out:          out,
		errorHandler: NewErrorHandler(),
	}
}

// Store signs the configured user in and switches to the --project view, if any.
func (a *App) Store(ctx context.Context) (*store.Store, error) {
	if a.sessions == nil {
		gw, err := a.open(a.config)
		if err != nil {
			return nil, err
		}
		a.gw = gw
		a.sessions = session.New(session.GatewayFactory(gw,
			store.WithTaskValidator(validation.NewTaskValidatorWithConfig(a.config)),
			store.WithProjectValidator(validation.NewProjectValidatorWithConfig(a.config)),
			store.WithChangeListener(a.changed),
		))
	}

	st, err := a.sessions.SignIn(ctx, a.config.Session.UserID)
	if err != nil {
		return nil, err
	}
	if a.project != "" {
		project, err := st.ResolveProject(a.project)
		if err != nil {
			return nil, err
		}
		if err := st.SetSelectedProjectID(project.ID); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// Close signs out and closes the gateway.
func (a *App) Close() error {
	if a.sessions != nil {
		a.sessions.SignOut()
	}
	if a.gw == nil {
		return nil
	}
	err := a.gw.Close()
	a.gw = nil
	a.sessions = nil
	return err
}

func (a *App) changed(ev gateway.ChangeEvent) {
	if a.onChange != nil {
		a.onChange(ev)
	}
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) verbose() bool {
	return a.config.Application.Verbose
}

// formatTask renders one task line. pos is omitted when zero.
func (a *App) formatTask(pos int, t domain.Task, now time.Time) string {
	var b strings.Builder
	if pos > 0 {
		fmt.Fprintf(&b, "%3d. ", pos)
	} else {
		b.WriteString("  - ")
	}
	if t.Completed {
		b.WriteString("[x] ")
	} else {
		b.WriteString("[ ] ")
	}
	b.WriteString(t.Title)
	if t.DueDate != nil {
		due := t.DueDate.Format(a.config.Display.DateFormat)
		if t.IsOverdue(now) {
			fmt.Fprintf(&b, " (overdue, due %s)", due)
		} else {
			fmt.Fprintf(&b, " (due %s)", due)
		}
	}
	if a.verbose() {
		fmt.Fprintf(&b, "  [%s]", t.ID)
	}
	return b.String()
}

// projectNames maps project ids to names.
func projectNames(projects []domain.Project) map[string]string {
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}
	return names
}

func describeChange(ev gateway.ChangeEvent) string {
	kind := strings.TrimSuffix(string(ev.Entity), "s")
	label := ev.Record.ID()
	switch ev.Entity {
	case gateway.EntityTasks:
		if title, ok := ev.Record[gateway.FieldTitle].(string); ok {
			label = title
		}
	case gateway.EntityProjects:
		if name, ok := ev.Record[gateway.FieldName].(string); ok {
			label = name
		}
	}
	return fmt.Sprintf("%s %s: %s", strings.ToLower(string(ev.Operation)), kind, label)
}
