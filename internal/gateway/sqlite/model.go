package sqlite

import (
	"fmt"
	"strings"

	"uptask/internal/gateway"
)

type columnKind int

const (
	kindText columnKind = iota
	kindNullText
	kindBool
	kindTime
	kindNullTime
)

type column struct {
	field string
	kind  columnKind
}

// table describes how an entity's wire fields map onto its SQL columns.
type table struct {
	name    string
	order   string
	columns []column
}

var tables = map[gateway.Entity]table{
	gateway.EntityProjects: {
		name:  "projects",
		order: "created_at ASC, id ASC",
		columns: []column{
			{gateway.FieldID, kindText},
			{gateway.FieldUserID, kindText},
			{gateway.FieldName, kindText},
			{gateway.FieldIcon, kindText},
			{gateway.FieldIsDefault, kindBool},
			{gateway.FieldCreatedAt, kindTime},
			{gateway.FieldUpdatedAt, kindTime},
		},
	},
	gateway.EntityTasks: {
		name:  "tasks",
		order: "created_at DESC, id DESC",
		columns: []column{
			{gateway.FieldID, kindText},
			{gateway.FieldUserID, kindText},
			{gateway.FieldProjectID, kindText},
			{gateway.FieldTitle, kindText},
			{gateway.FieldDescription, kindNullText},
			{gateway.FieldCompleted, kindBool},
			{gateway.FieldDueDate, kindNullTime},
			{gateway.FieldCreatedAt, kindTime},
			{gateway.FieldUpdatedAt, kindTime},
		},
	},
}

func tableFor(entity gateway.Entity) (table, error) {
	t, ok := tables[entity]
	if !ok {
		return table{}, fmt.Errorf("unknown entity %q", entity)
	}
	return t, nil
}

func (t table) column(field string) (column, bool) {
	for _, c := range t.columns {
		if c.field == field {
			return c, true
		}
	}
	return column{}, false
}

func (t table) selectList() string {
	fields := make([]string, len(t.columns))
	for i, c := range t.columns {
		fields[i] = c.field
	}
	return strings.Join(fields, ", ")
}

// encode converts a wire value into the value stored for column c.
func (c column) encode(v interface{}) (interface{}, error) {
	switch c.kind {
	case kindText:
		s, ok := v.(string)
		if !ok {
			return nil, errUnsupportedValue(v, "string")
		}
		return s, nil
	case kindNullText:
		if v == nil {
			return nil, nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, errUnsupportedValue(v, "string")
		}
		if s == "" {
			return nil, nil
		}
		return s, nil
	case kindBool:
		switch b := v.(type) {
		case nil:
			return 0, nil
		case bool:
			if b {
				return 1, nil
			}
			return 0, nil
		default:
			return nil, errUnsupportedValue(v, "bool")
		}
	case kindTime:
		if v == nil {
			return nil, errUnsupportedValue(v, "timestamp")
		}
		return normalizeTimeValue(v)
	case kindNullTime:
		return normalizeTimeValue(v)
	}
	return nil, fmt.Errorf("column %s has unknown kind %d", c.field, c.kind)
}

func errUnsupportedValue(v interface{}, want string) error {
	return fmt.Errorf("value of type %T is not a %s", v, want)
}
