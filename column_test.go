package exportable_test

import (
	"testing"
	"time"

	"github.com/bjaus/exportable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "integer", exportable.Integer.String())
	assert.Equal(t, "datetime", exportable.DateTime.String())
	assert.Equal(t, "Type(9)", exportable.Type(9).String())
}

func TestColumnDefaults(t *testing.T) {
	t.Parallel()
	c := exportable.FloatColumn("score")
	assert.Equal(t, "score", c.Label())
	assert.Equal(t, "score", c.VerboseName())
	assert.Equal(t, exportable.Float, c.Type())
	assert.False(t, c.Calculated())

	named := exportable.TextColumn("score", exportable.WithVerboseName("Final score"))
	assert.Equal(t, "Final score", named.VerboseName())
}

func TestToText(t *testing.T) {
	t.Parallel()
	day := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)
	tests := map[string]struct {
		col  *exportable.Column
		in   any
		want string
	}{
		"nil":              {col: exportable.IntColumn("c"), in: nil, want: ""},
		"int":              {col: exportable.IntColumn("c"), in: 42, want: "42"},
		"int from float":   {col: exportable.IntColumn("c"), in: 42.0, want: "42"},
		"float":            {col: exportable.FloatColumn("c"), in: 1.5, want: "1.5"},
		"float from int":   {col: exportable.FloatColumn("c"), in: int64(3), want: "3"},
		"text":             {col: exportable.TextColumn("c"), in: "hello", want: "hello"},
		"text from bytes":  {col: exportable.TextColumn("c"), in: []byte("raw"), want: "raw"},
		"date":             {col: exportable.DateColumn("c"), in: day, want: "2024-03-09"},
		"datetime":         {col: exportable.DateTimeColumn("c"), in: day, want: "2024-03-09T14:05:00Z"},
		"mismatched value": {col: exportable.IntColumn("c"), in: "n/a", want: "n/a"},
		"bool":             {col: exportable.TextColumn("c"), in: true, want: "true"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.col.ToText(tt.in))
		})
	}
}

func TestFromText(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		col     *exportable.Column
		in      string
		want    any
		wantErr bool
	}{
		"empty":          {col: exportable.IntColumn("c"), in: "  ", want: nil},
		"int":            {col: exportable.IntColumn("c"), in: "42", want: int64(42)},
		"bad int":        {col: exportable.IntColumn("c"), in: "4x", wantErr: true},
		"float":          {col: exportable.FloatColumn("c"), in: "2.25", want: 2.25},
		"bad float":      {col: exportable.FloatColumn("c"), in: "two", wantErr: true},
		"text":           {col: exportable.TextColumn("c"), in: "abc", want: "abc"},
		"date":           {col: exportable.DateColumn("c"), in: "2024-03-09", want: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)},
		"slashed date":   {col: exportable.DateColumn("c"), in: "2024/03/09", want: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)},
		"bad date":       {col: exportable.DateColumn("c"), in: "March", wantErr: true},
		"datetime":       {col: exportable.DateTimeColumn("c"), in: "2024-03-09T14:05:00Z", want: time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)},
		"sql datetime":   {col: exportable.DateTimeColumn("c"), in: "2024-03-09 14:05:00", want: time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)},
		"date only":      {col: exportable.DateTimeColumn("c"), in: "2024-03-09", want: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.col.FromText(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, exportable.ErrConversion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTextRoundTrip(t *testing.T) {
	t.Parallel()
	day := time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC)
	for _, tt := range []struct {
		col *exportable.Column
		v   any
	}{
		{exportable.IntColumn("c"), int64(-7)},
		{exportable.FloatColumn("c"), 0.125},
		{exportable.DateColumn("c"), day},
		{exportable.DateTimeColumn("c"), day.Add(90 * time.Minute)},
	} {
		got, err := tt.col.FromText(tt.col.ToText(tt.v))
		require.NoError(t, err)
		assert.Equal(t, tt.v, got, tt.col.Type().String())
	}
}
