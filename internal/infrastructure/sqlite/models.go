package sqlite

import (
	"database/sql"
	"time"

	"github.com/freelog/freelog/internal/calendar"
)

// Rows store times as Unix seconds and calendar dates as the Unix time of
// their UTC midnight. Optional text columns are NULL when empty.

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func nullDate(d calendar.Date) sql.NullInt64 {
	if d.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: d.Unix(), Valid: true}
}

func timeFrom(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func timePtrFrom(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := timeFrom(n.Int64)
	return &t
}

func dateFrom(n sql.NullInt64) calendar.Date {
	if !n.Valid {
		return calendar.Date{}
	}
	return calendar.FromUnix(n.Int64)
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
