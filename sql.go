package exportable

import (
	"database/sql"
	"reflect"
	"strings"
	"time"
)

// NewSQLTable builds a lazy [DictTable] over a query result. Columns are
// named after the result columns and typed after their database types. The
// rows are closed when the table has been read to the end or the read stops
// early; callers that may not read the table should close them as well.
func NewSQLTable(rows *sql.Rows, opts ...TableOption) (*DictTable, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		_ = rows.Close()
		return nil, err
	}
	cols := make([]*Column, len(types))
	for i, ct := range types {
		cols[i] = NewColumn(ct.Name(), sqlColumnType(ct))
	}

	src := FromSeq2(func(yield func(map[string]any, error) bool) {
		defer rows.Close()
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		for rows.Next() {
			if err := rows.Scan(ptrs...); err != nil {
				yield(nil, err)
				return
			}
			m := make(map[string]any, len(cols))
			for i, c := range cols {
				m[c.Label()] = sqlValue(c, vals[i])
			}
			if !yield(m, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	})
	t, err := NewDictTable(src, cols, opts...)
	if err != nil {
		_ = rows.Close()
		return nil, err
	}
	return t, nil
}

var timeType = reflect.TypeFor[time.Time]()

var sqlTypes = map[string]Type{
	"INT": Integer, "INTEGER": Integer, "INT2": Integer, "INT4": Integer, "INT8": Integer,
	"SMALLINT": Integer, "TINYINT": Integer, "MEDIUMINT": Integer, "BIGINT": Integer,
	"SERIAL": Integer, "BIGSERIAL": Integer,
	"REAL": Float, "FLOAT": Float, "FLOAT4": Float, "FLOAT8": Float, "DOUBLE": Float,
	"DOUBLE PRECISION": Float, "NUMERIC": Float, "DECIMAL": Float,
	"DATE": Date,
	"DATETIME": DateTime, "TIMESTAMP": DateTime, "TIMESTAMPTZ": DateTime,
}

func sqlColumnType(ct *sql.ColumnType) Type {
	name := strings.ToUpper(ct.DatabaseTypeName())
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	if t, ok := sqlTypes[name]; ok {
		return t
	}
	if name != "" {
		return Text
	}
	if st := ct.ScanType(); st != nil {
		switch {
		case st == timeType:
			return DateTime
		case st.Kind() >= reflect.Int && st.Kind() <= reflect.Uint64:
			return Integer
		case st.Kind() == reflect.Float32 || st.Kind() == reflect.Float64:
			return Float
		}
	}
	return Text
}

// sqlValue converts a scanned value to the column type. Drivers with
// dynamic typing may hand back text for typed columns.
func sqlValue(c *Column, v any) any {
	var s string
	switch x := v.(type) {
	case []byte:
		s = string(x)
	case string:
		s = x
	default:
		return v
	}
	if c.Type() == Text {
		return s
	}
	if parsed, err := c.FromText(s); err == nil {
		return parsed
	}
	return s
}
