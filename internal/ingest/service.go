package ingest

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/personal-ledger/ledger-backend/constants"
	"github.com/personal-ledger/ledger-backend/internal/domain"
	"github.com/personal-ledger/ledger-backend/internal/entity"
	"github.com/personal-ledger/ledger-backend/internal/repository"
)

//go:embed category_import_schema.json
var categoryImportSchema string

// Compiled once; the embedded schema is static.
var importSchema = jsonschema.MustCompileString("category_import_schema.json", categoryImportSchema)

// Service loads bulk category documents into the repository.
type Service struct {
	repo   repository.CategoryRepository
	logger *slog.Logger
}

func NewService(repo repository.CategoryRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// importDocument is the accepted shape of a bulk import file.
type importDocument struct {
	Categories []importItem `json:"categories"`
}

type importItem struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
	URLSlug      *string `json:"url_slug,omitempty"`
	CategoryType string  `json:"category_type"`
	Color        *string `json:"color,omitempty"`
	Icon         *string `json:"icon,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

// ImportJSON validates r against the import schema, converts every item and
// persists the whole set in one transaction. Nothing is written unless every
// item converts cleanly; conversion and persistence errors name the 0-based
// index of the offending item. Returns the number of categories written.
func (s *Service) ImportJSON(ctx context.Context, r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read import document: %w", err)
	}

	var document any
	if err := json.Unmarshal(data, &document); err != nil {
		return 0, fmt.Errorf("unmarshal import document: %w", err)
	}
	if err := importSchema.Validate(document); err != nil {
		return 0, fmt.Errorf("import document does not match schema: %w", err)
	}

	var doc importDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("decode import document: %w", err)
	}

	categories := make([]*entity.Category, 0, len(doc.Categories))
	for i, item := range doc.Categories {
		category, err := item.toCategory()
		if err != nil {
			return 0, fmt.Errorf("category at index %d: %w", i, err)
		}
		categories = append(categories, category)
	}

	if err := s.repo.InsertMany(ctx, categories); err != nil {
		s.logger.Error("failed to import categories", "count", len(categories), "error", err)
		return 0, err
	}

	s.logger.Info("categories imported", "count", len(categories))
	return len(categories), nil
}

func (item importItem) toCategory() (*entity.Category, error) {
	name, ok := constants.CanonicalizeCategoryType(item.CategoryType)
	if !ok {
		return nil, fmt.Errorf("unknown category type %q", item.CategoryType)
	}
	categoryType, err := domain.ParseCategoryType(name)
	if err != nil {
		return nil, err
	}
	slug, err := entity.OptionalURLSlug(item.URLSlug)
	if err != nil {
		return nil, err
	}
	color, err := entity.OptionalHexColor(item.Color)
	if err != nil {
		return nil, err
	}

	builder := entity.NewCategoryBuilder().
		WithCode(item.Code).
		WithName(item.Name).
		WithCategoryType(categoryType).
		WithDescriptionOpt(entity.OptionalString(item.Description)).
		WithURLSlugOpt(slug).
		WithColorOpt(color).
		WithIconOpt(entity.OptionalString(item.Icon))
	if item.IsActive != nil {
		builder = builder.WithIsActive(*item.IsActive)
	}
	return builder.Build()
}
