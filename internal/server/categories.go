package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/personal-ledger/ledger-backend/internal/domain"
	"github.com/personal-ledger/ledger-backend/internal/entity"
	"github.com/personal-ledger/ledger-backend/internal/repository"
)

type CategoriesService struct {
	repo   repository.CategoryRepository
	logger *slog.Logger
}

func NewCategoriesService(repo repository.CategoryRepository, logger *slog.Logger) *CategoriesService {
	return &CategoriesService{
		repo:   repo,
		logger: logger,
	}
}

func (s *CategoriesService) Create(ctx context.Context, req *CategoryCreateRequest) (*CategoryCreateResponse, error) {
	if req.Category == nil {
		return nil, status.Error(codes.InvalidArgument, "Category field is required in CategoryCreateRequest")
	}
	category, err := categoryFromWire(req.Category)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := s.repo.Insert(ctx, category); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, status.Error(codes.AlreadyExists, "Category with the same code or URL slug already exists")
		}
		s.logger.Error("failed to create category", "code", category.Code, "error", err)
		return nil, status.Error(codes.Internal, "Failed to create category")
	}

	s.logger.Info("category created", "id", category.ID, "code", category.Code)
	return &CategoryCreateResponse{Category: toWireCategory(category)}, nil
}

func (s *CategoriesService) CreateBatch(ctx context.Context, req *CategoriesCreateBatchRequest) (*CategoriesCreateBatchResponse, error) {
	categories := make([]*entity.Category, 0, len(req.Categories))
	for i, wire := range req.Categories {
		if wire == nil {
			return nil, status.Errorf(codes.InvalidArgument, "category at index %d: Category field is required in CategoryCreateRequest", i)
		}
		category, err := categoryFromWire(wire)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "category at index %d: %v", i, err)
		}
		categories = append(categories, category)
	}
	if len(categories) == 0 {
		return &CategoriesCreateBatchResponse{Categories: []*Category{}}, nil
	}

	if err := s.repo.InsertMany(ctx, categories); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, status.Error(codes.AlreadyExists, "Category with the same code or URL slug already exists")
		}
		s.logger.Error("failed to create category batch", "count", len(categories), "error", err)
		return nil, status.Error(codes.Internal, "Failed to create categories")
	}

	s.logger.Info("category batch created", "count", len(categories))
	return &CategoriesCreateBatchResponse{Categories: toWireCategories(categories)}, nil
}

func (s *CategoriesService) Get(ctx context.Context, req *CategoryGetRequest) (*CategoryGetResponse, error) {
	id, err := domain.ParseRowID(req.Id)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "Invalid category ID format")
	}

	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to find category by id", "id", req.Id, "error", err)
		return nil, status.Error(codes.Internal, "Failed to retrieve category")
	}
	if category == nil {
		return nil, status.Errorf(codes.NotFound, "Category with ID '%s' not found", req.Id)
	}
	return &CategoryGetResponse{Category: toWireCategory(category)}, nil
}

func (s *CategoriesService) GetByCode(ctx context.Context, req *CategoryGetByCodeRequest) (*CategoryGetResponse, error) {
	if strings.TrimSpace(req.Code) == "" {
		return nil, status.Error(codes.InvalidArgument, "Category code cannot be empty")
	}

	category, err := s.repo.FindByCode(ctx, req.Code)
	if err != nil {
		s.logger.Error("failed to find category by code", "code", req.Code, "error", err)
		return nil, status.Error(codes.Internal, "Failed to retrieve category")
	}
	if category == nil {
		return nil, status.Errorf(codes.NotFound, "Category with code '%s' not found", req.Code)
	}
	return &CategoryGetResponse{Category: toWireCategory(category)}, nil
}

func (s *CategoriesService) GetBySlug(ctx context.Context, req *CategoryGetBySlugRequest) (*CategoryGetResponse, error) {
	if strings.TrimSpace(req.UrlSlug) == "" {
		return nil, status.Error(codes.InvalidArgument, "URL slug cannot be empty")
	}
	if err := domain.ValidateSlug(req.UrlSlug); err != nil {
		return nil, status.Error(codes.InvalidArgument, "Invalid URL slug format")
	}

	category, err := s.repo.FindBySlug(ctx, domain.URLSlug(req.UrlSlug))
	if err != nil {
		s.logger.Error("failed to find category by slug", "url_slug", req.UrlSlug, "error", err)
		return nil, status.Error(codes.Internal, "Failed to retrieve category")
	}
	if category == nil {
		return nil, status.Errorf(codes.NotFound, "Category with slug '%s' not found", req.UrlSlug)
	}
	return &CategoryGetResponse{Category: toWireCategory(category)}, nil
}

func (s *CategoriesService) List(ctx context.Context, req *CategoriesListRequest) (*CategoriesListResponse, error) {
	var typeFilter *domain.CategoryType
	if req.CategoryType != 0 {
		categoryType, err := domain.CategoryTypeFromWire(req.CategoryType)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "Invalid category type")
		}
		typeFilter = &categoryType
	}

	if req.Offset < 0 {
		return nil, status.Error(codes.InvalidArgument, "Offset cannot be negative")
	}
	if req.Limit <= 0 {
		return nil, status.Error(codes.InvalidArgument, "Limit must be positive")
	}
	if req.Limit > 1000 {
		return nil, status.Error(codes.InvalidArgument, "Limit cannot exceed 1000")
	}

	filter := repository.CategoryFilter{
		CategoryType: typeFilter,
		IsActive:     req.IsActive,
		SortBy:       strings.TrimSpace(req.SortBy),
		SortDesc:     req.SortDesc,
		Offset:       req.Offset,
		Limit:        req.Limit,
	}
	categories, totalCount, err := s.repo.FindWithFilters(ctx, filter)
	if err != nil {
		if errors.Is(err, repository.ErrValidation) {
			return nil, status.Errorf(codes.InvalidArgument, "Invalid sort column: %s", filter.SortBy)
		}
		s.logger.Error("failed to list categories", "error", err)
		return nil, status.Error(codes.Internal, "Failed to retrieve categories")
	}

	return &CategoriesListResponse{
		Categories: toWireCategories(categories),
		TotalCount: totalCount,
		Offset:     req.Offset,
		Limit:      req.Limit,
	}, nil
}

func (s *CategoriesService) Update(ctx context.Context, req *CategoryUpdateRequest) (*CategoryUpdateResponse, error) {
	if req.Category == nil {
		return nil, status.Error(codes.InvalidArgument, "Category field is required in CategoryUpdateRequest")
	}
	id, err := domain.ParseRowID(req.Id)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "Invalid category ID format")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to find category for update", "id", req.Id, "error", err)
		return nil, status.Error(codes.Internal, "Failed to retrieve category")
	}
	if existing == nil {
		return nil, status.Errorf(codes.NotFound, "Category with ID '%s' not found", req.Id)
	}

	var paths []string
	if req.UpdateMask != nil {
		paths = req.UpdateMask.GetPaths()
	}
	merged, err := entity.ApplyFieldMask(*existing, categoryPatchFromWire(req.Category), paths)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	saved, err := s.repo.Update(ctx, &merged)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, status.Errorf(codes.NotFound, "Category with ID '%s' not found", req.Id)
		case errors.Is(err, repository.ErrConflict):
			return nil, status.Error(codes.AlreadyExists, "Category with the same code or URL slug already exists")
		default:
			s.logger.Error("failed to update category", "id", req.Id, "error", err)
			return nil, status.Error(codes.Internal, "Failed to update category")
		}
	}

	s.logger.Info("category updated", "id", req.Id, "fields", len(paths))
	return &CategoryUpdateResponse{Category: toWireCategory(saved)}, nil
}

func (s *CategoriesService) Activate(ctx context.Context, req *CategoryActivateRequest) (*CategoryActivateResponse, error) {
	category, err := s.setActiveStatus(ctx, req.Id, true, "Failed to activate category")
	if err != nil {
		return nil, err
	}
	return &CategoryActivateResponse{Category: toWireCategory(category)}, nil
}

func (s *CategoriesService) Deactivate(ctx context.Context, req *CategoryDeactivateRequest) (*CategoryDeactivateResponse, error) {
	category, err := s.setActiveStatus(ctx, req.Id, false, "Failed to deactivate category")
	if err != nil {
		return nil, err
	}
	return &CategoryDeactivateResponse{Category: toWireCategory(category)}, nil
}

func (s *CategoriesService) setActiveStatus(ctx context.Context, rawID string, active bool, internalMsg string) (*entity.Category, error) {
	id, err := domain.ParseRowID(rawID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "Invalid category ID format")
	}

	category, err := s.repo.UpdateActiveStatus(ctx, id, active)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, status.Errorf(codes.NotFound, "Category with ID '%s' not found", rawID)
		}
		s.logger.Error("failed to update category active status", "id", rawID, "active", active, "error", err)
		return nil, status.Error(codes.Internal, internalMsg)
	}

	s.logger.Info("category active status updated", "id", rawID, "active", active)
	return category, nil
}

func (s *CategoriesService) Delete(ctx context.Context, req *CategoryDeleteRequest) (*CategoryDeleteResponse, error) {
	id, err := domain.ParseRowID(req.Id)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "Invalid category ID format")
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		// Deleting an absent row is not an error, just nothing to do.
		if errors.Is(err, repository.ErrNotFound) {
			return &CategoryDeleteResponse{RowsDeleted: 0}, nil
		}
		s.logger.Error("failed to delete category", "id", req.Id, "error", err)
		return nil, status.Error(codes.Internal, "Failed to delete category")
	}

	s.logger.Info("category deleted", "id", req.Id)
	return &CategoryDeleteResponse{RowsDeleted: 1}, nil
}

func (s *CategoriesService) DeleteByCode(ctx context.Context, req *CategoryDeleteByCodeRequest) (*CategoryDeleteResponse, error) {
	if strings.TrimSpace(req.Code) == "" {
		return nil, status.Error(codes.InvalidArgument, "Category code cannot be empty")
	}

	if err := s.repo.DeleteByCode(ctx, req.Code); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &CategoryDeleteResponse{RowsDeleted: 0}, nil
		}
		s.logger.Error("failed to delete category by code", "code", req.Code, "error", err)
		return nil, status.Error(codes.Internal, "Failed to delete category")
	}

	s.logger.Info("category deleted", "code", req.Code)
	return &CategoryDeleteResponse{RowsDeleted: 1}, nil
}

func (s *CategoriesService) DeleteBatch(ctx context.Context, req *CategoriesDeleteBatchRequest) (*CategoriesDeleteBatchResponse, error) {
	ids := make([]domain.RowID, 0, len(req.Ids))
	for _, raw := range req.Ids {
		id, err := domain.ParseRowID(raw)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "Invalid category ID format: %s", raw)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return &CategoriesDeleteBatchResponse{RowsDeleted: 0}, nil
	}

	if err := s.repo.DeleteManyByID(ctx, ids); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// The atomic batch rolled back because some rows were already
			// gone. Fall back to individual deletes and count what was
			// actually removed.
			var deleted int64
			for _, id := range ids {
				if delErr := s.repo.DeleteByID(ctx, id); delErr != nil {
					if errors.Is(delErr, repository.ErrNotFound) {
						continue
					}
					s.logger.Error("failed to delete category during batch", "id", id, "error", delErr)
					return nil, status.Error(codes.Internal, "Failed to delete categories")
				}
				deleted++
			}
			s.logger.Info("category batch deleted", "requested", len(ids), "deleted", deleted)
			return &CategoriesDeleteBatchResponse{RowsDeleted: deleted}, nil
		}
		s.logger.Error("failed to delete category batch", "count", len(ids), "error", err)
		return nil, status.Error(codes.Internal, "Failed to delete categories")
	}

	s.logger.Info("category batch deleted", "requested", len(ids), "deleted", len(ids))
	return &CategoriesDeleteBatchResponse{RowsDeleted: int64(len(ids))}, nil
}

func (s *CategoriesService) PruneInactive(ctx context.Context, _ *CategoriesPruneInactiveRequest) (*CategoriesPruneInactiveResponse, error) {
	rowsDeleted, err := s.repo.DeleteInactive(ctx)
	if err != nil {
		s.logger.Error("failed to prune inactive categories", "error", err)
		return nil, status.Error(codes.Internal, "Failed to delete inactive categories")
	}

	s.logger.Info("inactive categories pruned", "count", rowsDeleted)
	return &CategoriesPruneInactiveResponse{RowsDeleted: rowsDeleted}, nil
}

// categoryFromWire converts inbound wire data into a fresh aggregate with a
// new id and current timestamps. Required fields must be present; optional
// blank strings collapse to absent.
func categoryFromWire(wire *Category) (*entity.Category, error) {
	if strings.TrimSpace(wire.Code) == "" {
		return nil, errors.New("Category code is required and cannot be empty")
	}
	if strings.TrimSpace(wire.Name) == "" {
		return nil, errors.New("Category name is required and cannot be empty")
	}

	slug, err := entity.OptionalURLSlug(wire.UrlSlug)
	if err != nil {
		return nil, err
	}
	categoryType, err := domain.CategoryTypeFromWire(wire.CategoryType)
	if err != nil {
		return nil, err
	}
	color, err := entity.OptionalHexColor(wire.Color)
	if err != nil {
		return nil, err
	}

	now := domain.UTCNow()
	return &entity.Category{
		ID:           domain.NewRowID(),
		Code:         wire.Code,
		Name:         wire.Name,
		Description:  entity.OptionalString(wire.Description),
		URLSlug:      slug,
		CategoryType: categoryType,
		Color:        color,
		Icon:         entity.OptionalString(wire.Icon),
		IsActive:     wire.IsActive,
		CreatedOn:    now,
		UpdatedOn:    now,
	}, nil
}
