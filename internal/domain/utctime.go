package domain

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// utcTimeLayout is RFC 3339 with fixed-width nanoseconds. Every rendered
// value has the same length, so lexicographic order on the stored TEXT
// column equals chronological order regardless of the engine.
const utcTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// UTCTime is a timestamp normalized to UTC with a stable TEXT storage form.
type UTCTime struct {
	time.Time
}

// NewUTCTime normalizes t to UTC.
func NewUTCTime(t time.Time) UTCTime {
	return UTCTime{t.UTC()}
}

// UTCNow returns the current instant in UTC.
func UTCNow() UTCTime {
	return UTCTime{time.Now().UTC()}
}

// ParseUTCTime parses any RFC 3339 timestamp and normalizes it to UTC.
func ParseUTCTime(s string) (UTCTime, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return UTCTime{}, fmt.Errorf("parse utc time: %w", err)
	}
	return UTCTime{t.UTC()}, nil
}

// Storage returns the fixed-width RFC 3339 form written to the database.
func (t UTCTime) Storage() string {
	return t.UTC().Format(utcTimeLayout)
}

// Value implements driver.Valuer.
func (t UTCTime) Value() (driver.Value, error) {
	return t.Storage(), nil
}

// Scan implements sql.Scanner, accepting the stored TEXT form or a native
// driver timestamp.
func (t *UTCTime) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseUTCTime(v)
		if err != nil {
			return fmt.Errorf("scan utc time: %w", err)
		}
		*t = parsed
		return nil
	case []byte:
		return t.Scan(string(v))
	case time.Time:
		*t = UTCTime{v.UTC()}
		return nil
	default:
		return fmt.Errorf("scan utc time: unsupported source type %T", src)
	}
}
