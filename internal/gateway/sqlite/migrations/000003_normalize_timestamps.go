package migrations

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"uptask/internal/logging"
)

func init() {
	RegisterGoMigration(3, Up_000003_normalize_timestamps, Down_000003_normalize_timestamps)
}

var timestampColumns = map[string][]string{
	"projects": {"created_at", "updated_at"},
	"tasks":    {"created_at", "updated_at", "due_date"},
}

// Up_000003_normalize_timestamps rewrites every stored timestamp as RFC3339 in UTC.
// Rows written by older clients may carry Go's default time format, a monotonic
// clock suffix, a zone offset or a bare date.
func Up_000003_normalize_timestamps(tx *sql.Tx) error {
	for _, table := range []string{"projects", "tasks"} {
		for _, column := range timestampColumns[table] {
			if err := normalizeColumn(tx, table, column); err != nil {
				return err
			}
		}
	}
	return nil
}

// Down_000003_normalize_timestamps is a no-op: normalized values remain readable.
func Down_000003_normalize_timestamps(tx *sql.Tx) error {
	return nil
}

func normalizeColumn(tx *sql.Tx, table, column string) error {
	// Read all rows into memory first to avoid locking issues
	type row struct {
		id    string
		value sql.NullString
	}
	var rows []row

	query := fmt.Sprintf("SELECT id, %s FROM %s", column, table)
	result, err := tx.Query(query)
	if err != nil {
		return fmt.Errorf("failed to query %s.%s: %w", table, column, err)
	}
	for result.Next() {
		var r row
		if err := result.Scan(&r.id, &r.value); err != nil {
			result.Close()
			return fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		rows = append(rows, r)
	}
	if err := result.Err(); err != nil {
		result.Close()
		return fmt.Errorf("error iterating %s: %w", table, err)
	}
	result.Close()

	stmt, err := tx.Prepare(fmt.Sprintf("UPDATE %s SET %s = ? WHERE id = ?", table, column))
	if err != nil {
		return fmt.Errorf("failed to prepare %s.%s update statement: %w", table, column, err)
	}
	defer stmt.Close()

	updates, skipped := 0, 0
	for _, r := range rows {
		if !r.value.Valid || r.value.String == "" {
			continue
		}
		normalized, err := NormalizeTimestamp(r.value.String)
		if err != nil {
			logging.Debugf("migration 3: could not parse %s.%s for id %s: %v", table, column, r.id, err)
			skipped++
			continue
		}
		if normalized == r.value.String {
			continue
		}
		if _, err := stmt.Exec(normalized, r.id); err != nil {
			return fmt.Errorf("failed to update %s.%s for id %s: %w", table, column, r.id, err)
		}
		updates++
	}

	logging.Debugf("migration 3: %s.%s processed %d rows, updated %d, skipped %d", table, column, len(rows), updates, skipped)
	return nil
}

// NormalizeTimestamp parses the time formats older clients may have stored and
// returns the value as RFC3339 in UTC.
func NormalizeTimestamp(value string) (string, error) {
	value = stripMonotonicSuffix(strings.TrimSpace(value))

	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999 -0700 MST",
		"2006-01-02 15:04:05.999999999 -0700",
		"2006-01-02 15:04:05 -0700 MST",
		"2006-01-02 15:04:05 -0700",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Format(time.RFC3339Nano), nil
		}
	}

	return "", fmt.Errorf("could not parse time format: %s", value)
}

// stripMonotonicSuffix removes the monotonic clock reading Go appends to time strings.
func stripMonotonicSuffix(value string) string {
	if idx := strings.Index(value, " m="); idx != -1 {
		return value[:idx]
	}
	return value
}
