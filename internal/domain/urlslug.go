package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// Slug validation errors. ParseURLSlug only ever fails with ErrSlugEmpty;
// the remaining errors come from ValidateSlug's strict checks.
var (
	ErrSlugEmpty              = errors.New("slug is empty after cleaning")
	ErrSlugInvalidCharacters  = errors.New("slug may only contain a-z, 0-9 and hyphens")
	ErrSlugBoundaryHyphen     = errors.New("slug must not start or end with a hyphen")
	ErrSlugConsecutiveHyphens = errors.New("slug must not contain consecutive hyphens")
)

// URLSlug is a normalized URL-safe identifier: lowercase ASCII letters,
// digits and single interior hyphens, never empty.
type URLSlug string

// ParseURLSlug repairs arbitrary input into a valid slug: lowercases, turns
// spaces and underscores into hyphens, drops every other character outside
// [a-z0-9-], collapses hyphen runs and trims boundary hyphens. It fails only
// with ErrSlugEmpty, when nothing survives cleaning. Parsing is idempotent:
// feeding a produced slug back in yields the same slug.
func ParseURLSlug(raw string) (URLSlug, error) {
	var b strings.Builder
	b.Grow(len(raw))
	pendingHyphen := false
	for _, r := range strings.ToLower(raw) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == ' ', r == '_', r == '-':
			pendingHyphen = true
		}
	}
	if b.Len() == 0 {
		return "", ErrSlugEmpty
	}
	return URLSlug(b.String()), nil
}

// ValidateSlug strictly checks s without repairing it. Unlike ParseURLSlug
// it rejects rather than fixes: uppercase or otherwise invalid characters,
// boundary hyphens and hyphen runs all fail with their own error.
func ValidateSlug(s string) error {
	if s == "" {
		return ErrSlugEmpty
	}
	for _, r := range s {
		valid := r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-'
		if !valid {
			return fmt.Errorf("%w: found %q", ErrSlugInvalidCharacters, r)
		}
	}
	if strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") {
		return ErrSlugBoundaryHyphen
	}
	if strings.Contains(s, "--") {
		return ErrSlugConsecutiveHyphens
	}
	return nil
}

func (s URLSlug) String() string { return string(s) }

// Value implements driver.Valuer.
func (s URLSlug) Value() (driver.Value, error) {
	return string(s), nil
}

// Scan implements sql.Scanner for TEXT slug columns.
func (s *URLSlug) Scan(src any) error {
	switch v := src.(type) {
	case string:
		*s = URLSlug(v)
		return nil
	case []byte:
		*s = URLSlug(v)
		return nil
	default:
		return fmt.Errorf("scan url slug: unsupported source type %T", src)
	}
}
