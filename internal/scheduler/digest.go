package scheduler

import (
	"fmt"
	"io"
	"sync"
	"time"

	"uptask/internal/domain"
)

// DueSource provides the due-date views a digest reports on.
type DueSource interface {
	OverdueTasks(now time.Time, projectID string) []domain.Task
	DueToday(now time.Time) []domain.Task
}

// OverdueDigest returns a job writing a summary of overdue and due-today tasks to out.
// Nothing is written when no task is due.
func OverdueDigest(src DueSource, now func() time.Time, dateFormat string, out io.Writer) func() {
	var mu sync.Mutex
	return func() {
		mu.Lock()
		defer mu.Unlock()

		at := now()
		overdue := src.OverdueTasks(at, "")
		today := src.DueToday(at)
		if len(overdue) == 0 && len(today) == 0 {
			return
		}

		fmt.Fprintf(out, "Digest %s: %d overdue, %d due today\n", at.Format("2006-01-02 15:04"), len(overdue), len(today))
		for _, t := range overdue {
			fmt.Fprintf(out, "  ! %s (due %s)\n", t.Title, t.DueDate.Format(dateFormat))
		}
		for _, t := range today {
			fmt.Fprintf(out, "  - %s\n", t.Title)
		}
	}
}
