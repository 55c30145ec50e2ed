package constants

import (
	"strings"
)

// Canonical names of the five category classifications.
const (
	Asset     = "asset"
	Liability = "liability"
	Income    = "income"
	Expense   = "expense"
	Equity    = "equity"
)

var allCategoryTypes = []string{
	Asset,
	Liability,
	Income,
	Expense,
	Equity,
}

func CategoryTypeNames() []string {
	result := make([]string, len(allCategoryTypes))
	copy(result, allCategoryTypes)
	return result
}

// CanonicalizeCategoryType maps free-form input (import files, CLI flags)
// onto a canonical classification name.
func CanonicalizeCategoryType(input string) (string, bool) {
	if input == "" {
		return "", false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]string{
		"assets":      Asset,
		"cash":        Asset,
		"bank":        Asset,
		"property":    Asset,
		"liabilities": Liability,
		"debt":        Liability,
		"loan":        Liability,
		"credit":      Liability,
		"revenue":     Income,
		"earnings":    Income,
		"salary":      Income,
		"expenses":    Expense,
		"spending":    Expense,
		"cost":        Expense,
		"costs":       Expense,
		"capital":     Equity,
		"net worth":   Equity,
	}

	if name, ok := synonyms[normalized]; ok {
		return name, true
	}

	// check if it matches any canonical name
	for _, name := range allCategoryTypes {
		if normalized == name {
			return name, true
		}
	}

	return "", false
}
