package cli

import (
	"context"
	"fmt"
	"os"

	"uptask/internal/export"
)

// ExportCommand handles the export command
type ExportCommand struct {
	app    *App
	Format string
	Out    string
}

// NewExportCommand creates a new export command handler
func NewExportCommand(app *App) *ExportCommand {
	return &ExportCommand{app: app, Format: export.FormatCSV}
}

// Execute renders every task of the signed-in user. Without Out the report goes
// to the command output.
func (c *ExportCommand) Execute(ctx context.Context, args []string) error {
	st, err := c.app.Store(ctx)
	if err != nil {
		return c.app.errorHandler.Handle("export tasks", err)
	}
	snap := st.Snapshot()

	data, err := export.NewExporter(c.app.config.Display.DateFormat).Export(snap.Tasks, snap.Projects, c.Format)
	if err != nil {
		return c.app.errorHandler.Handle("export tasks", err)
	}

	if c.Out == "" {
		_, err := c.app.out.Write(data)
		return err
	}
	if err := os.WriteFile(c.Out, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Out, err)
	}
	c.app.printf("Exported %d %s to %s\n", len(snap.Tasks), plural(len(snap.Tasks), "task", "tasks"), c.Out)
	return nil
}
