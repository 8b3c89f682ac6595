package sqlite

import (
	"database/sql"

	"uptask/internal/gateway"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// ScanRecord scans one row of t into a wire record. NULL columns become nil values.
func ScanRecord(t table, scanner Scanner) (gateway.Record, error) {
	dest := make([]interface{}, len(t.columns))
	for i, c := range t.columns {
		if c.kind == kindBool {
			dest[i] = new(sql.NullInt64)
		} else {
			dest[i] = new(sql.NullString)
		}
	}

	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	rec := make(gateway.Record, len(t.columns))
	for i, c := range t.columns {
		switch v := dest[i].(type) {
		case *sql.NullInt64:
			rec[c.field] = v.Valid && v.Int64 != 0
		case *sql.NullString:
			if v.Valid {
				rec[c.field] = v.String
			} else {
				rec[c.field] = nil
			}
		}
	}
	return rec, nil
}

// ScanRecords scans every remaining row of t.
func ScanRecords(t table, rows Rows) ([]gateway.Record, error) {
	var out []gateway.Record
	for rows.Next() {
		rec, err := ScanRecord(t, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
