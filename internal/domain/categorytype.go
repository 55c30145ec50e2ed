package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// CategoryType classifies a category into one of the five fundamental
// accounting groupings. The string form is the lowercase type name, which is
// also how the value is stored.
type CategoryType string

const (
	CategoryTypeAsset     CategoryType = "asset"
	CategoryTypeLiability CategoryType = "liability"
	CategoryTypeIncome    CategoryType = "income"
	CategoryTypeExpense   CategoryType = "expense"
	CategoryTypeEquity    CategoryType = "equity"
)

// DefaultCategoryType is the classification assumed when none is given.
const DefaultCategoryType = CategoryTypeExpense

// ErrCategoryTypeInvalid reports a string or wire value outside the closed
// set of category types.
var ErrCategoryTypeInvalid = errors.New("invalid category type")

// Wire enum values used at the transport boundary. Zero is reserved for
// "unspecified" so list filters can treat it as absent; the five types are
// numbered alphabetically.
const (
	WireCategoryTypeUnspecified int32 = iota
	WireCategoryTypeAsset
	WireCategoryTypeEquity
	WireCategoryTypeExpense
	WireCategoryTypeIncome
	WireCategoryTypeLiability
)

// AllCategoryTypes returns every valid classification.
func AllCategoryTypes() []CategoryType {
	return []CategoryType{
		CategoryTypeAsset,
		CategoryTypeLiability,
		CategoryTypeIncome,
		CategoryTypeExpense,
		CategoryTypeEquity,
	}
}

// ParseCategoryType matches s case-insensitively against the five type
// names.
func ParseCategoryType(s string) (CategoryType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asset":
		return CategoryTypeAsset, nil
	case "liability":
		return CategoryTypeLiability, nil
	case "income":
		return CategoryTypeIncome, nil
	case "expense":
		return CategoryTypeExpense, nil
	case "equity":
		return CategoryTypeEquity, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrCategoryTypeInvalid, s)
	}
}

// CategoryTypeFromWire maps a wire enum value to its domain type, failing on
// zero or any unknown value.
func CategoryTypeFromWire(v int32) (CategoryType, error) {
	switch v {
	case WireCategoryTypeAsset:
		return CategoryTypeAsset, nil
	case WireCategoryTypeEquity:
		return CategoryTypeEquity, nil
	case WireCategoryTypeExpense:
		return CategoryTypeExpense, nil
	case WireCategoryTypeIncome:
		return CategoryTypeIncome, nil
	case WireCategoryTypeLiability:
		return CategoryTypeLiability, nil
	default:
		return "", fmt.Errorf("%w: wire value %d", ErrCategoryTypeInvalid, v)
	}
}

// ToWire maps the type to its wire enum value. Unknown values map to
// unspecified.
func (t CategoryType) ToWire() int32 {
	switch t {
	case CategoryTypeAsset:
		return WireCategoryTypeAsset
	case CategoryTypeEquity:
		return WireCategoryTypeEquity
	case CategoryTypeExpense:
		return WireCategoryTypeExpense
	case CategoryTypeIncome:
		return WireCategoryTypeIncome
	case CategoryTypeLiability:
		return WireCategoryTypeLiability
	default:
		return WireCategoryTypeUnspecified
	}
}

func (t CategoryType) String() string { return string(t) }

// IsDebitNormal reports whether a debit increases balances of this type.
// Asset and expense categories are debit-normal; the other three are
// credit-normal.
func (t CategoryType) IsDebitNormal() bool {
	return t == CategoryTypeAsset || t == CategoryTypeExpense
}

// IsCreditNormal reports whether a credit increases balances of this type.
func (t CategoryType) IsCreditNormal() bool {
	return t == CategoryTypeLiability || t == CategoryTypeIncome || t == CategoryTypeEquity
}

// IsBalanceSheet reports whether categories of this type appear on the
// balance sheet.
func (t CategoryType) IsBalanceSheet() bool {
	return t == CategoryTypeAsset || t == CategoryTypeLiability || t == CategoryTypeEquity
}

// IsIncomeStatement reports whether categories of this type appear on the
// income statement.
func (t CategoryType) IsIncomeStatement() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// Value implements driver.Valuer.
func (t CategoryType) Value() (driver.Value, error) {
	return string(t), nil
}

// Scan implements sql.Scanner, normalizing and rejecting unknown stored
// values.
func (t *CategoryType) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("scan category type: unsupported source type %T", src)
	}
	parsed, err := ParseCategoryType(raw)
	if err != nil {
		return fmt.Errorf("scan category type: %w", err)
	}
	*t = parsed
	return nil
}
