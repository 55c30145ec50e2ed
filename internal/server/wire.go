package server

import (
	"time"

	"google.golang.org/protobuf/types/known/fieldmaskpb"

	"github.com/personal-ledger/ledger-backend/internal/entity"
)

// Category is the wire shape of a category record. Field names follow the
// personal_ledger proto package so the struct binds to a transport without
// reshaping; timestamps travel as RFC 3339 strings.
type Category struct {
	Id           string  `json:"id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
	UrlSlug      *string `json:"url_slug,omitempty"`
	CategoryType int32   `json:"category_type"`
	Color        *string `json:"color,omitempty"`
	Icon         *string `json:"icon,omitempty"`
	IsActive     bool    `json:"is_active"`
	CreatedOn    string  `json:"created_on,omitempty"`
	UpdatedOn    string  `json:"updated_on,omitempty"`
}

type CategoryCreateRequest struct {
	Category *Category `json:"category,omitempty"`
}

type CategoryCreateResponse struct {
	Category *Category `json:"category,omitempty"`
}

type CategoriesCreateBatchRequest struct {
	Categories []*Category `json:"categories"`
}

type CategoriesCreateBatchResponse struct {
	Categories []*Category `json:"categories"`
}

type CategoryGetRequest struct {
	Id string `json:"id"`
}

type CategoryGetByCodeRequest struct {
	Code string `json:"code"`
}

type CategoryGetBySlugRequest struct {
	UrlSlug string `json:"url_slug"`
}

type CategoryGetResponse struct {
	Category *Category `json:"category,omitempty"`
}

type CategoriesListRequest struct {
	CategoryType int32  `json:"category_type,omitempty"`
	IsActive     *bool  `json:"is_active,omitempty"`
	SortBy       string `json:"sort_by,omitempty"`
	SortDesc     bool   `json:"sort_desc,omitempty"`
	Offset       int64  `json:"offset"`
	Limit        int64  `json:"limit"`
}

type CategoriesListResponse struct {
	Categories []*Category `json:"categories"`
	TotalCount int64       `json:"total_count"`
	Offset     int64       `json:"offset"`
	Limit      int64       `json:"limit"`
}

type CategoryUpdateRequest struct {
	Id         string                 `json:"id"`
	Category   *Category              `json:"category,omitempty"`
	UpdateMask *fieldmaskpb.FieldMask `json:"update_mask,omitempty"`
}

type CategoryUpdateResponse struct {
	Category *Category `json:"category,omitempty"`
}

type CategoryActivateRequest struct {
	Id string `json:"id"`
}

type CategoryActivateResponse struct {
	Category *Category `json:"category,omitempty"`
}

type CategoryDeactivateRequest struct {
	Id string `json:"id"`
}

type CategoryDeactivateResponse struct {
	Category *Category `json:"category,omitempty"`
}

type CategoryDeleteRequest struct {
	Id string `json:"id"`
}

type CategoryDeleteResponse struct {
	RowsDeleted int64 `json:"rows_deleted"`
}

type CategoryDeleteByCodeRequest struct {
	Code string `json:"code"`
}

type CategoriesDeleteBatchRequest struct {
	Ids []string `json:"ids"`
}

type CategoriesDeleteBatchResponse struct {
	RowsDeleted int64 `json:"rows_deleted"`
}

type CategoriesPruneInactiveRequest struct{}

type CategoriesPruneInactiveResponse struct {
	RowsDeleted int64 `json:"rows_deleted"`
}

func toWireCategory(c *entity.Category) *Category {
	out := &Category{
		Id:           c.ID.String(),
		Code:         c.Code,
		Name:         c.Name,
		Description:  copyString(c.Description),
		CategoryType: c.CategoryType.ToWire(),
		Icon:         copyString(c.Icon),
		IsActive:     c.IsActive,
		CreatedOn:    c.CreatedOn.UTC().Format(time.RFC3339Nano),
		UpdatedOn:    c.UpdatedOn.UTC().Format(time.RFC3339Nano),
	}
	if c.URLSlug != nil {
		s := c.URLSlug.String()
		out.UrlSlug = &s
	}
	if c.Color != nil {
		v := c.Color.String()
		out.Color = &v
	}
	return out
}

func toWireCategories(categories []*entity.Category) []*Category {
	out := make([]*Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, toWireCategory(c))
	}
	return out
}

func categoryPatchFromWire(wire *Category) entity.CategoryPatch {
	return entity.CategoryPatch{
		Code:         wire.Code,
		Name:         wire.Name,
		Description:  wire.Description,
		URLSlug:      wire.UrlSlug,
		CategoryType: wire.CategoryType,
		Color:        wire.Color,
		Icon:         wire.Icon,
		IsActive:     wire.IsActive,
	}
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
