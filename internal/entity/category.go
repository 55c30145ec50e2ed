package entity

import (
	"errors"
	"strings"

	"github.com/personal-ledger/ledger-backend/internal/domain"
)

// Errors emitted by CategoryBuilder.Build and Category.Validate when
// required data is missing.
var (
	ErrCategoryNameRequired = errors.New("category name is required")
	ErrCategoryTypeRequired = errors.New("category type is required")
	ErrCategoryCodeRequired = errors.New("category code is required")
)

// Category is the persisted chart-of-categories aggregate. Records are
// immutable snapshots: mutation happens only through repository operations
// that round-trip through storage.
type Category struct {
	ID           domain.RowID        `db:"id" json:"id"`
	Code         string              `db:"code" json:"code"`
	Name         string              `db:"name" json:"name"`
	Description  *string             `db:"description" json:"description,omitempty"`
	URLSlug      *domain.URLSlug     `db:"url_slug" json:"url_slug,omitempty"`
	CategoryType domain.CategoryType `db:"category_type" json:"category_type"`
	Color        *domain.HexColor    `db:"color" json:"color,omitempty"`
	Icon         *string             `db:"icon" json:"icon,omitempty"`
	IsActive     bool                `db:"is_active" json:"is_active"`
	CreatedOn    domain.UTCTime      `db:"created_on" json:"created_on"`
	UpdatedOn    domain.UTCTime      `db:"updated_on" json:"updated_on"`
}

// Validate re-checks the aggregate invariants on a record, typically one
// assembled outside the builder.
func (c *Category) Validate() error {
	if c.ID.IsZero() {
		return errors.New("category id is not set")
	}
	if strings.TrimSpace(c.Code) == "" {
		return ErrCategoryCodeRequired
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrCategoryNameRequired
	}
	if _, err := domain.ParseCategoryType(c.CategoryType.String()); err != nil {
		return err
	}
	if c.URLSlug != nil {
		if err := domain.ValidateSlug(c.URLSlug.String()); err != nil {
			return err
		}
	}
	if c.Color != nil {
		if !domain.IsValidHexColor(c.Color.String()) {
			return errors.New("category color is not a valid hex color")
		}
	}
	return nil
}

// OptionalString treats nil or whitespace-only input as absent; non-blank
// values are kept with their whitespace intact.
func OptionalString(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	v := *p
	return &v
}

// OptionalURLSlug parses p leniently, treating nil or blank input as absent.
func OptionalURLSlug(p *string) (*domain.URLSlug, error) {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil, nil
	}
	slug, err := domain.ParseURLSlug(*p)
	if err != nil {
		return nil, err
	}
	return &slug, nil
}

// OptionalHexColor parses p, treating nil or blank input as absent.
func OptionalHexColor(p *string) (*domain.HexColor, error) {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil, nil
	}
	color, err := domain.ParseHexColor(*p)
	if err != nil {
		return nil, err
	}
	return &color, nil
}

// CategoryBuilder assembles a Category step by step, injecting defaults for
// anything optional: a fresh id, active status and current timestamps.
// Handy for tests and for converting inbound requests.
type CategoryBuilder struct {
	id           *domain.RowID
	code         *string
	name         *string
	description  *string
	urlSlug      *domain.URLSlug
	categoryType *domain.CategoryType
	color        *domain.HexColor
	icon         *string
	isActive     *bool
	createdOn    *domain.UTCTime
	updatedOn    *domain.UTCTime
}

// NewCategoryBuilder returns an empty builder.
func NewCategoryBuilder() *CategoryBuilder {
	return &CategoryBuilder{}
}

// WithID overrides the generated id.
func (b *CategoryBuilder) WithID(id domain.RowID) *CategoryBuilder {
	b.id = &id
	return b
}

// WithCode sets the unique category code.
func (b *CategoryBuilder) WithCode(code string) *CategoryBuilder {
	b.code = &code
	return b
}

// WithName sets the display name.
func (b *CategoryBuilder) WithName(name string) *CategoryBuilder {
	b.name = &name
	return b
}

// WithDescription sets the description.
func (b *CategoryBuilder) WithDescription(description string) *CategoryBuilder {
	b.description = &description
	return b
}

// WithDescriptionOpt replaces the description with p, clearing it when nil.
func (b *CategoryBuilder) WithDescriptionOpt(p *string) *CategoryBuilder {
	b.description = cloneStringPtr(p)
	return b
}

// WithURLSlug sets the slug.
func (b *CategoryBuilder) WithURLSlug(slug domain.URLSlug) *CategoryBuilder {
	b.urlSlug = &slug
	return b
}

// WithURLSlugOpt replaces the slug with p, clearing it when nil.
func (b *CategoryBuilder) WithURLSlugOpt(p *domain.URLSlug) *CategoryBuilder {
	if p == nil {
		b.urlSlug = nil
		return b
	}
	slug := *p
	b.urlSlug = &slug
	return b
}

// WithCategoryType sets the accounting classification.
func (b *CategoryBuilder) WithCategoryType(ct domain.CategoryType) *CategoryBuilder {
	b.categoryType = &ct
	return b
}

// WithColor sets the display color.
func (b *CategoryBuilder) WithColor(color domain.HexColor) *CategoryBuilder {
	b.color = &color
	return b
}

// WithColorOpt replaces the color with p, clearing it when nil.
func (b *CategoryBuilder) WithColorOpt(p *domain.HexColor) *CategoryBuilder {
	if p == nil {
		b.color = nil
		return b
	}
	color := *p
	b.color = &color
	return b
}

// WithIcon sets the icon name.
func (b *CategoryBuilder) WithIcon(icon string) *CategoryBuilder {
	b.icon = &icon
	return b
}

// WithIconOpt replaces the icon with p, clearing it when nil.
func (b *CategoryBuilder) WithIconOpt(p *string) *CategoryBuilder {
	b.icon = cloneStringPtr(p)
	return b
}

// WithIsActive overrides the default active status.
func (b *CategoryBuilder) WithIsActive(isActive bool) *CategoryBuilder {
	b.isActive = &isActive
	return b
}

// WithCreatedOn overrides the creation timestamp.
func (b *CategoryBuilder) WithCreatedOn(t domain.UTCTime) *CategoryBuilder {
	b.createdOn = &t
	return b
}

// WithUpdatedOn overrides the update timestamp.
func (b *CategoryBuilder) WithUpdatedOn(t domain.UTCTime) *CategoryBuilder {
	b.updatedOn = &t
	return b
}

// Build assembles the Category, failing when a required field is missing.
func (b *CategoryBuilder) Build() (*Category, error) {
	if b.name == nil {
		return nil, ErrCategoryNameRequired
	}
	if b.categoryType == nil {
		return nil, ErrCategoryTypeRequired
	}
	if b.code == nil {
		return nil, ErrCategoryCodeRequired
	}

	id := domain.NewRowID()
	if b.id != nil {
		id = *b.id
	}

	now := domain.UTCNow()
	createdOn, updatedOn := now, now
	if b.createdOn != nil {
		createdOn = *b.createdOn
	}
	if b.updatedOn != nil {
		updatedOn = *b.updatedOn
	}

	isActive := true
	if b.isActive != nil {
		isActive = *b.isActive
	}

	return &Category{
		ID:           id,
		Code:         *b.code,
		Name:         *b.name,
		Description:  cloneStringPtr(b.description),
		URLSlug:      b.urlSlug,
		CategoryType: *b.categoryType,
		Color:        b.color,
		Icon:         cloneStringPtr(b.icon),
		IsActive:     isActive,
		CreatedOn:    createdOn,
		UpdatedOn:    updatedOn,
	}, nil
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
