package entity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/personal-ledger/ledger-backend/internal/domain"
)

// CategoryPatch carries the wire-typed replacement values for an update.
// Required strings arrive as plain values, optional strings as pointers and
// the category type in its wire integer form. Which of these apply is decided
// by the field mask, not by the patch itself.
type CategoryPatch struct {
	Code         string
	Name         string
	Description  *string
	URLSlug      *string
	CategoryType int32
	Color        *string
	Icon         *string
	IsActive     bool
}

// MutableCategoryFields lists every field name an update mask may reference,
// in the order a full replace applies them.
func MutableCategoryFields() []string {
	return []string{
		"code",
		"name",
		"description",
		"url_slug",
		"category_type",
		"color",
		"icon",
		"is_active",
	}
}

// ApplyFieldMask merges patch into existing, restricted to the named paths.
// An empty paths slice means every mutable field (full replace). The merge
// fails fast on the first invalid value or unknown path and the partially
// merged result is discarded, so callers can treat any error as "no fields
// applied". UpdatedOn is stamped on success; the id, code uniqueness and
// CreatedOn are never touched here.
func ApplyFieldMask(existing Category, patch CategoryPatch, paths []string) (Category, error) {
	if len(paths) == 0 {
		paths = MutableCategoryFields()
	}
	for _, path := range paths {
		switch path {
		case "code":
			if strings.TrimSpace(patch.Code) == "" {
				return Category{}, errors.New("category code cannot be empty")
			}
			existing.Code = patch.Code
		case "name":
			if strings.TrimSpace(patch.Name) == "" {
				return Category{}, errors.New("category name cannot be empty")
			}
			existing.Name = patch.Name
		case "description":
			existing.Description = cloneStringPtr(patch.Description)
		case "url_slug":
			slug, err := OptionalURLSlug(patch.URLSlug)
			if err != nil {
				return Category{}, err
			}
			existing.URLSlug = slug
		case "category_type":
			ct, err := domain.CategoryTypeFromWire(patch.CategoryType)
			if err != nil {
				return Category{}, err
			}
			existing.CategoryType = ct
		case "color":
			color, err := OptionalHexColor(patch.Color)
			if err != nil {
				return Category{}, err
			}
			existing.Color = color
		case "icon":
			existing.Icon = cloneStringPtr(patch.Icon)
		case "is_active":
			existing.IsActive = patch.IsActive
		default:
			return Category{}, fmt.Errorf("unknown field in update mask: %q", path)
		}
	}
	existing.UpdatedOn = domain.UTCNow()
	return existing, nil
}
