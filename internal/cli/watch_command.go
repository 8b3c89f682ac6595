package cli

import (
	"context"
	"io"
	"sync"
	"time"

	"uptask/internal/gateway"
	"uptask/internal/logging"
	"uptask/internal/scheduler"
)

// lockedWriter serializes writes from the scheduler and the change stream.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// WatchCommand handles the watch command
type WatchCommand struct {
	app     *App
	timeout time.Duration
}

// NewWatchCommand creates a new watch command handler. timeout bounds each
// refresh.
func NewWatchCommand(app *App, timeout time.Duration) *WatchCommand {
	return &WatchCommand{app: app, timeout: timeout}
}

// Execute prints a digest of due tasks now, then on the configured interval and
// daily time, and echoes every reconciled change until ctx is done. Writes by
// other processes are picked up by a periodic refresh.
func (c *WatchCommand) Execute(ctx context.Context, args []string) error {
	out := &lockedWriter{w: c.app.out}
	c.app.onChange = func(ev gateway.ChangeEvent) {
		io.WriteString(out, timeNow().Format("15:04:05")+" "+describeChange(ev)+"\n")
	}
	defer func() { c.app.onChange = nil }()

	st, err := c.app.Store(ctx)
	if err != nil {
		return c.app.errorHandler.Handle("watch tasks", err)
	}

	cfg := c.app.config.Schedule
	digest := scheduler.OverdueDigest(st, timeNow, c.app.config.Display.DateFormat, out)
	svc := scheduler.New(time.Local)
	if _, err := svc.ScheduleInterval(cfg.DigestInterval, digest); err != nil {
		return c.app.errorHandler.Handle("schedule digest", err)
	}
	dailyID, err := svc.ScheduleDaily(cfg.DailyDigestAt, digest)
	if err != nil {
		return c.app.errorHandler.Handle("schedule digest", err)
	}

	refresh := func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		if _, err := st.Refresh(ctx); err != nil {
			logging.Errorf("watch: refresh failed: %v", err)
		}
	}
	if _, err := svc.ScheduleInterval(cfg.RefreshInterval, refresh); err != nil {
		return c.app.errorHandler.Handle("schedule refresh", err)
	}

	digest()
	io.WriteString(out, "Watching tasks for "+st.UserID()+". Press Ctrl+C to stop.\n")

	svc.Start()
	defer svc.Stop()
	logging.Debugf("watch: next daily digest at %s", svc.Next(dailyID).Format("2006-01-02 15:04"))
	<-ctx.Done()
	return nil
}
