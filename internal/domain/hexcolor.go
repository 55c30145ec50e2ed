package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Hex color parse errors.
var (
	ErrColorEmpty             = errors.New("hex color is empty")
	ErrColorInvalidLength     = errors.New("hex color must have exactly 6 hex digits")
	ErrColorInvalidCharacters = errors.New("hex color contains non-hex characters")
)

// HexColor is a canonical #RRGGBB color string, always uppercase, always
// seven characters.
type HexColor string

// ParseHexColor accepts a 6-digit hex color with or without the leading '#'
// and canonicalizes it to uppercase #RRGGBB form.
func ParseHexColor(raw string) (HexColor, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrColorEmpty
	}
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return "", fmt.Errorf("%w: got %d", ErrColorInvalidLength, len(s))
	}
	for _, r := range s {
		if !isHexDigit(r) {
			return "", fmt.Errorf("%w: found %q", ErrColorInvalidCharacters, r)
		}
	}
	return HexColor("#" + strings.ToUpper(s)), nil
}

func isHexDigit(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F'
}

// HexColorFromRGB builds the canonical color for the given component bytes.
func HexColorFromRGB(r, g, b byte) HexColor {
	return HexColor(fmt.Sprintf("#%02X%02X%02X", r, g, b))
}

// IsValidHexColor reports whether raw parses as a hex color.
func IsValidHexColor(raw string) bool {
	_, err := ParseHexColor(raw)
	return err == nil
}

// Components decodes the color back into its red, green and blue bytes.
// It round-trips exactly with HexColorFromRGB. The zero HexColor decodes
// to black.
func (c HexColor) Components() (r, g, b byte) {
	if len(c) != 7 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(string(c[1:]), 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return byte(v >> 16), byte(v >> 8), byte(v)
}

// Red returns the red component byte.
func (c HexColor) Red() byte {
	r, _, _ := c.Components()
	return r
}

// Green returns the green component byte.
func (c HexColor) Green() byte {
	_, g, _ := c.Components()
	return g
}

// Blue returns the blue component byte.
func (c HexColor) Blue() byte {
	_, _, b := c.Components()
	return b
}

func (c HexColor) String() string { return string(c) }

// Value implements driver.Valuer.
func (c HexColor) Value() (driver.Value, error) {
	return string(c), nil
}

// Scan implements sql.Scanner for TEXT color columns.
func (c *HexColor) Scan(src any) error {
	switch v := src.(type) {
	case string:
		*c = HexColor(v)
		return nil
	case []byte:
		*c = HexColor(v)
		return nil
	default:
		return fmt.Errorf("scan hex color: unsupported source type %T", src)
	}
}
