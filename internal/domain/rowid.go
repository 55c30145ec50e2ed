package domain

import (
	"bytes"
	"database/sql/driver"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Errors returned when constructing a RowID from outside input.
var (
	ErrRowIDFormat  = errors.New("invalid row id format")
	ErrRowIDVersion = errors.New("row id is not a version 7 UUID")
)

// RowID is a time-ordered unique row identifier backed by a UUID v7.
// Byte-wise comparison of two RowIDs matches their creation order, so rows
// keyed by RowID sort chronologically without a separate timestamp column.
type RowID uuid.UUID

// NewRowID returns a fresh RowID for the current instant.
func NewRowID() RowID {
	return RowID(uuid.Must(uuid.NewV7()))
}

// RowIDFromTime returns the smallest RowID whose embedded timestamp equals t,
// truncated to millisecond precision. Useful as a range boundary when
// scanning by id.
func RowIDFromTime(t time.Time) RowID {
	var id uuid.UUID
	ms := uint64(t.UnixMilli())
	id[0] = byte(ms >> 40)
	id[1] = byte(ms >> 32)
	id[2] = byte(ms >> 24)
	id[3] = byte(ms >> 16)
	id[4] = byte(ms >> 8)
	id[5] = byte(ms)
	id[6] = 0x70 // version 7
	id[8] = 0x80 // RFC 4122 variant
	return RowID(id)
}

// ParseRowID parses the hyphenated UUID form and verifies the version tag.
// Malformed input fails with ErrRowIDFormat, a well-formed UUID of any other
// version with ErrRowIDVersion.
func ParseRowID(s string) (RowID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return RowID{}, fmt.Errorf("%w: %q", ErrRowIDFormat, s)
	}
	return RowIDFromUUID(u)
}

// RowIDFromUUID validates an existing UUID as a RowID.
func RowIDFromUUID(u uuid.UUID) (RowID, error) {
	if u.Version() != 7 {
		return RowID{}, fmt.Errorf("%w: got version %d", ErrRowIDVersion, u.Version())
	}
	return RowID(u), nil
}

// UUID returns the underlying UUID value.
func (r RowID) UUID() uuid.UUID { return uuid.UUID(r) }

func (r RowID) String() string { return uuid.UUID(r).String() }

// IsZero reports whether r is the all-zero id, the value of an unset field.
func (r RowID) IsZero() bool { return r == RowID{} }

// Time returns the creation instant embedded in the id, at millisecond
// precision, in UTC.
func (r RowID) Time() time.Time {
	ms := int64(r[0])<<40 | int64(r[1])<<32 | int64(r[2])<<24 |
		int64(r[3])<<16 | int64(r[4])<<8 | int64(r[5])
	return time.UnixMilli(ms).UTC()
}

// Compare orders two ids byte-wise. It returns -1 when r was created before
// other, 0 when equal and 1 when created after.
func (r RowID) Compare(other RowID) int {
	return bytes.Compare(r[:], other[:])
}

// Before reports whether r was created before other.
func (r RowID) Before(other RowID) bool { return r.Compare(other) < 0 }

// After reports whether r was created after other.
func (r RowID) After(other RowID) bool { return r.Compare(other) > 0 }

// SortRowIDsAscending sorts ids in place, oldest first.
func SortRowIDsAscending(ids []RowID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Compare(ids[j]) < 0 })
}

// SortRowIDsDescending sorts ids in place, newest first.
func SortRowIDsDescending(ids []RowID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Compare(ids[j]) > 0 })
}

// MinRowID returns the earliest id in the slice; ok is false when the slice
// is empty.
func MinRowID(ids []RowID) (min RowID, ok bool) {
	if len(ids) == 0 {
		return RowID{}, false
	}
	min = ids[0]
	for _, id := range ids[1:] {
		if id.Compare(min) < 0 {
			min = id
		}
	}
	return min, true
}

// MaxRowID returns the latest id in the slice; ok is false when the slice
// is empty.
func MaxRowID(ids []RowID) (max RowID, ok bool) {
	if len(ids) == 0 {
		return RowID{}, false
	}
	max = ids[0]
	for _, id := range ids[1:] {
		if id.Compare(max) > 0 {
			max = id
		}
	}
	return max, true
}

// MarshalText encodes the id as its hyphenated string form.
func (r RowID) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText parses and validates the id from its string form.
func (r *RowID) UnmarshalText(b []byte) error {
	id, err := ParseRowID(string(b))
	if err != nil {
		return err
	}
	*r = id
	return nil
}

// Value implements driver.Valuer, storing the canonical hyphenated string.
func (r RowID) Value() (driver.Value, error) {
	return r.String(), nil
}

// Scan implements sql.Scanner for TEXT id columns.
func (r *RowID) Scan(src any) error {
	switch v := src.(type) {
	case string:
		u, err := uuid.Parse(v)
		if err != nil {
			return fmt.Errorf("scan row id: %w", err)
		}
		*r = RowID(u)
		return nil
	case []byte:
		return r.Scan(string(v))
	default:
		return fmt.Errorf("scan row id: unsupported source type %T", src)
	}
}
