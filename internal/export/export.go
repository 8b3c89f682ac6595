// Package export renders task reports as CSV, JSON or PDF.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"uptask/internal/domain"
	"uptask/internal/errors"
)

// Supported formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatPDF  = "pdf"
)

// Header is the CSV column header.
var Header = []string{"id", "title", "project", "completed", "due_date", "created_at"}

// Exporter renders tasks with their project names.
type Exporter struct {
	dateFormat string
	now        func() time.Time
}

// NewExporter creates an exporter formatting due dates with dateFormat.
func NewExporter(dateFormat string) *Exporter {
	if dateFormat == "" {
		dateFormat = domain.DueDateLayout
	}
	return &Exporter{dateFormat: dateFormat, now: time.Now}
}

type row struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Project   string `json:"project"`
	Completed bool   `json:"completed"`
	DueDate   string `json:"due_date,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Export renders tasks in the given format. Tasks keep their given order.
func (e *Exporter) Export(tasks []domain.Task, projects []domain.Project, format string) ([]byte, error) {
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}
	rows := make([]row, 0, len(tasks))
	for _, t := range tasks {
		r := row{
			ID:        t.ID,
			Title:     t.Title,
			Project:   names[t.ProjectID],
			Completed: t.Completed,
			CreatedAt: domain.FormatWireTime(t.CreatedAt),
		}
		if t.DueDate != nil {
			r.DueDate = t.DueDate.Format(e.dateFormat)
		}
		rows = append(rows, r)
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV:
		return e.csv(rows)
	case FormatJSON:
		return json.MarshalIndent(rows, "", "  ")
	case FormatPDF:
		return e.pdf(rows, projects)
	default:
		return nil, errors.NewInvalidInputError("format", format, "supported formats are csv, json and pdf")
	}
}

func (e *Exporter) csv(rows []row) ([]byte, error) {
	var b bytes.Buffer
	w := csv.NewWriter(&b)
	_ = w.Write(Header)
	for _, r := range rows {
		_ = w.Write([]string{r.ID, r.Title, r.Project, fmt.Sprint(r.Completed), r.DueDate, r.CreatedAt})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// pdf renders one section per project, in project order, with one line per task.
func (e *Exporter) pdf(rows []row, projects []domain.Project) ([]byte, error) {
	byProject := make(map[string][]row)
	for _, r := range rows {
		byProject[r.Project] = append(byProject[r.Project], r)
	}
	order := make([]string, 0, len(byProject))
	seen := make(map[string]bool)
	for _, p := range projects {
		if _, ok := byProject[p.Name]; ok && !seen[p.Name] {
			order = append(order, p.Name)
			seen[p.Name] = true
		}
	}
	var orphans []string
	for name := range byProject {
		if !seen[name] {
			orphans = append(orphans, name)
		}
	}
	sort.Strings(orphans)
	order = append(order, orphans...)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Task Report")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(40, 6, "Generated "+e.now().Format("2006-01-02 15:04"))
	pdf.Ln(10)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, name := range order {
		heading := name
		if heading == "" {
			heading = "(no project)"
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, tr(heading))
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 10)
		for _, r := range byProject[name] {
			mark := "[ ]"
			if r.Completed {
				mark = "[x]"
			}
			line := fmt.Sprintf("%s %s", mark, r.Title)
			if r.DueDate != "" {
				line += " (due " + r.DueDate + ")"
			}
			pdf.MultiCell(0, 6, tr(line), "0", "L", false)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
