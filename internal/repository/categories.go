package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"

	"github.com/personal-ledger/ledger-backend/internal/domain"
	"github.com/personal-ledger/ledger-backend/internal/entity"
)

// CategoryFilter narrows and pages a category listing. Nil filter fields
// match everything. Offset and Limit are validated by the caller.
type CategoryFilter struct {
	CategoryType *domain.CategoryType
	IsActive     *bool
	SortBy       string
	SortDesc     bool
	Offset       int64
	Limit        int64
}

// Columns a listing may be sorted by.
var sortableColumns = map[string]struct{}{
	"code":          {},
	"name":          {},
	"created_on":    {},
	"updated_on":    {},
	"category_type": {},
}

type CategoryRepository interface {
	Insert(ctx context.Context, category *entity.Category) error
	InsertMany(ctx context.Context, categories []*entity.Category) error
	FindByID(ctx context.Context, id domain.RowID) (*entity.Category, error)
	FindByCode(ctx context.Context, code string) (*entity.Category, error)
	FindBySlug(ctx context.Context, slug domain.URLSlug) (*entity.Category, error)
	FindAll(ctx context.Context) ([]*entity.Category, error)
	FindAllActive(ctx context.Context) ([]*entity.Category, error)
	FindByType(ctx context.Context, categoryType domain.CategoryType) ([]*entity.Category, error)
	FindActiveByType(ctx context.Context, categoryType domain.CategoryType) ([]*entity.Category, error)
	FindWithFilters(ctx context.Context, filter CategoryFilter) ([]*entity.Category, int64, error)
	Update(ctx context.Context, category *entity.Category) (*entity.Category, error)
	UpdateMany(ctx context.Context, categories []*entity.Category) ([]*entity.Category, error)
	UpdateActiveStatus(ctx context.Context, id domain.RowID, active bool) (*entity.Category, error)
	DeleteByID(ctx context.Context, id domain.RowID) error
	DeleteByCode(ctx context.Context, code string) error
	DeleteManyByID(ctx context.Context, ids []domain.RowID) error
	DeleteInactive(ctx context.Context) (int64, error)
}

type categoryRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewCategoryRepository(db *DB, logger *slog.Logger) CategoryRepository {
	return &categoryRepository{
		db:     db,
		logger: logger,
	}
}

var categoryColumns = []string{
	"id",
	"code",
	"name",
	"description",
	"url_slug",
	"category_type",
	"color",
	"icon",
	"is_active",
	"created_on",
	"updated_on",
}

func selectCategories() squirrel.SelectBuilder {
	return squirrel.Select(categoryColumns...).From("categories")
}

func categoryValues(c *entity.Category) []interface{} {
	return []interface{}{
		c.ID,
		c.Code,
		c.Name,
		c.Description,
		c.URLSlug,
		c.CategoryType,
		c.Color,
		c.Icon,
		c.IsActive,
		c.CreatedOn,
		c.UpdatedOn,
	}
}

func (r *categoryRepository) Insert(ctx context.Context, category *entity.Category) error {
	query, args, err := squirrel.Insert("categories").
		Columns(categoryColumns...).
		Values(categoryValues(category)...).
		ToSql()
	if err != nil {
		return wrapError("insert category", err)
	}

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("failed to insert category", "code", category.Code, "error", err)
		return wrapError("insert category", err)
	}
	return nil
}

// InsertMany writes all categories in one transaction. Any failure rolls
// the whole batch back and the error names the offending position.
func (r *categoryRepository) InsertMany(ctx context.Context, categories []*entity.Category) error {
	if len(categories) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrapError("insert categories", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, category := range categories {
		query, args, err := squirrel.Insert("categories").
			Columns(categoryColumns...).
			Values(categoryValues(category)...).
			ToSql()
		if err != nil {
			return wrapError("insert categories", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			r.logger.Error("failed to insert category batch", "index", i, "code", category.Code, "error", err)
			return &StorageError{Op: "insert categories", Err: fmt.Errorf("category at index %d: %w", i, classifyError(err))}
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapError("insert categories", err)
	}
	return nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id domain.RowID) (*entity.Category, error) {
	query, args, err := selectCategories().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, wrapError("find category by id", err)
	}

	var category entity.Category
	if err := r.db.GetContext(ctx, &category, r.db.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("failed to find category by id", "id", id, "error", err)
		return nil, wrapError("find category by id", err)
	}
	return &category, nil
}

func (r *categoryRepository) FindByCode(ctx context.Context, code string) (*entity.Category, error) {
	query, args, err := selectCategories().Where(squirrel.Eq{"code": code}).ToSql()
	if err != nil {
		return nil, wrapError("find category by code", err)
	}

	var category entity.Category
	if err := r.db.GetContext(ctx, &category, r.db.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("failed to find category by code", "code", code, "error", err)
		return nil, wrapError("find category by code", err)
	}
	return &category, nil
}

func (r *categoryRepository) FindBySlug(ctx context.Context, slug domain.URLSlug) (*entity.Category, error) {
	query, args, err := selectCategories().Where(squirrel.Eq{"url_slug": slug}).ToSql()
	if err != nil {
		return nil, wrapError("find category by slug", err)
	}

	var category entity.Category
	if err := r.db.GetContext(ctx, &category, r.db.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("failed to find category by slug", "slug", slug, "error", err)
		return nil, wrapError("find category by slug", err)
	}
	return &category, nil
}

func (r *categoryRepository) FindAll(ctx context.Context) ([]*entity.Category, error) {
	return r.findList(ctx, "find all categories", selectCategories().OrderBy("created_on DESC"))
}

func (r *categoryRepository) FindAllActive(ctx context.Context) ([]*entity.Category, error) {
	builder := selectCategories().
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("created_on DESC")
	return r.findList(ctx, "find active categories", builder)
}

func (r *categoryRepository) FindByType(ctx context.Context, categoryType domain.CategoryType) ([]*entity.Category, error) {
	builder := selectCategories().
		Where(squirrel.Eq{"category_type": categoryType}).
		OrderBy("created_on DESC")
	return r.findList(ctx, "find categories by type", builder)
}

func (r *categoryRepository) FindActiveByType(ctx context.Context, categoryType domain.CategoryType) ([]*entity.Category, error) {
	builder := selectCategories().
		Where(squirrel.Eq{"category_type": categoryType, "is_active": true}).
		OrderBy("created_on DESC")
	return r.findList(ctx, "find active categories by type", builder)
}

func (r *categoryRepository) findList(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]*entity.Category, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, wrapError(op, err)
	}

	categories := make([]*entity.Category, 0)
	if err := r.db.SelectContext(ctx, &categories, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("failed to list categories", "op", op, "error", err)
		return nil, wrapError(op, err)
	}
	return categories, nil
}

// FindWithFilters returns one page of matching categories together with
// the total match count across all pages.
func (r *categoryRepository) FindWithFilters(ctx context.Context, filter CategoryFilter) ([]*entity.Category, int64, error) {
	conditions := squirrel.And{}
	if filter.CategoryType != nil {
		conditions = append(conditions, squirrel.Eq{"category_type": *filter.CategoryType})
	}
	if filter.IsActive != nil {
		conditions = append(conditions, squirrel.Eq{"is_active": *filter.IsActive})
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_on"
	}
	if _, ok := sortableColumns[sortBy]; !ok {
		return nil, 0, &StorageError{Op: "find categories with filters", Err: fmt.Errorf("%w: unsupported sort column %q", ErrValidation, filter.SortBy)}
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	countQuery, countArgs, err := squirrel.Select("COUNT(*)").From("categories").Where(conditions).ToSql()
	if err != nil {
		return nil, 0, wrapError("find categories with filters", err)
	}
	var total int64
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(countQuery), countArgs...); err != nil {
		r.logger.Error("failed to count categories", "error", err)
		return nil, 0, wrapError("find categories with filters", err)
	}

	query, args, err := selectCategories().
		Where(conditions).
		OrderBy(sortBy + " " + direction).
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, wrapError("find categories with filters", err)
	}

	categories := make([]*entity.Category, 0)
	if err := r.db.SelectContext(ctx, &categories, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("failed to list categories with filters", "error", err)
		return nil, 0, wrapError("find categories with filters", err)
	}
	return categories, total, nil
}

func updateCategoryBuilder(c *entity.Category) squirrel.UpdateBuilder {
	return squirrel.Update("categories").
		Set("code", c.Code).
		Set("name", c.Name).
		Set("description", c.Description).
		Set("url_slug", c.URLSlug).
		Set("category_type", c.CategoryType).
		Set("color", c.Color).
		Set("icon", c.Icon).
		Set("is_active", c.IsActive).
		Set("created_on", c.CreatedOn).
		Set("updated_on", c.UpdatedOn).
		Where(squirrel.Eq{"id": c.ID})
}

// Update replaces every column of the stored row and returns the record
// as persisted.
func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) (*entity.Category, error) {
	query, args, err := updateCategoryBuilder(category).ToSql()
	if err != nil {
		return nil, wrapError("update category", err)
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		r.logger.Error("failed to update category", "id", category.ID, "error", err)
		return nil, wrapError("update category", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, wrapError("update category", err)
	}
	if affected == 0 {
		return nil, &StorageError{Op: "update category", Err: fmt.Errorf("%w: category with id %s", ErrNotFound, category.ID)}
	}

	updated, err := r.FindByID(ctx, category.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, &StorageError{Op: "update category", Err: fmt.Errorf("%w: category with id %s", ErrNotFound, category.ID)}
	}
	return updated, nil
}

// UpdateMany applies every update in one transaction. A missing record
// aborts and rolls back the whole batch.
func (r *categoryRepository) UpdateMany(ctx context.Context, categories []*entity.Category) ([]*entity.Category, error) {
	if len(categories) == 0 {
		return []*entity.Category{}, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, wrapError("update categories", err)
	}
	defer func() { _ = tx.Rollback() }()

	updated := make([]*entity.Category, 0, len(categories))
	for _, category := range categories {
		query, args, err := updateCategoryBuilder(category).ToSql()
		if err != nil {
			return nil, wrapError("update categories", err)
		}
		result, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			r.logger.Error("failed to update category batch", "id", category.ID, "error", err)
			return nil, wrapError("update categories", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, wrapError("update categories", err)
		}
		if affected == 0 {
			return nil, &StorageError{Op: "update categories", Err: fmt.Errorf("%w: category with id %s", ErrNotFound, category.ID)}
		}

		query, args, err = selectCategories().Where(squirrel.Eq{"id": category.ID}).ToSql()
		if err != nil {
			return nil, wrapError("update categories", err)
		}
		var row entity.Category
		if err := tx.GetContext(ctx, &row, tx.Rebind(query), args...); err != nil {
			return nil, wrapError("update categories", err)
		}
		updated = append(updated, &row)
	}

	if err := tx.Commit(); err != nil {
		return nil, wrapError("update categories", err)
	}
	return updated, nil
}

// UpdateActiveStatus flips the active flag and stamps the modification
// time, returning the record as persisted.
func (r *categoryRepository) UpdateActiveStatus(ctx context.Context, id domain.RowID, active bool) (*entity.Category, error) {
	query, args, err := squirrel.Update("categories").
		Set("is_active", active).
		Set("updated_on", domain.UTCNow()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, wrapError("update category active status", err)
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		r.logger.Error("failed to update category active status", "id", id, "error", err)
		return nil, wrapError("update category active status", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, wrapError("update category active status", err)
	}
	if affected == 0 {
		return nil, &StorageError{Op: "update category active status", Err: fmt.Errorf("%w: category with id %s", ErrNotFound, id)}
	}

	updated, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, &StorageError{Op: "update category active status", Err: fmt.Errorf("%w: category with id %s", ErrNotFound, id)}
	}
	return updated, nil
}

func (r *categoryRepository) DeleteByID(ctx context.Context, id domain.RowID) error {
	query, args, err := squirrel.Delete("categories").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return wrapError("delete category", err)
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		r.logger.Error("failed to delete category", "id", id, "error", err)
		return wrapError("delete category", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return wrapError("delete category", err)
	}
	if affected == 0 {
		return &StorageError{Op: "delete category", Err: fmt.Errorf("%w: category with id %s", ErrNotFound, id)}
	}
	return nil
}

func (r *categoryRepository) DeleteByCode(ctx context.Context, code string) error {
	query, args, err := squirrel.Delete("categories").Where(squirrel.Eq{"code": code}).ToSql()
	if err != nil {
		return wrapError("delete category by code", err)
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		r.logger.Error("failed to delete category by code", "code", code, "error", err)
		return wrapError("delete category by code", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return wrapError("delete category by code", err)
	}
	if affected == 0 {
		return &StorageError{Op: "delete category by code", Err: fmt.Errorf("%w: category with code %q", ErrNotFound, code)}
	}
	return nil
}

// DeleteManyByID removes all listed categories in one transaction. A
// missing id aborts and rolls back the whole batch.
func (r *categoryRepository) DeleteManyByID(ctx context.Context, ids []domain.RowID) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrapError("delete categories", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range ids {
		query, args, err := squirrel.Delete("categories").Where(squirrel.Eq{"id": id}).ToSql()
		if err != nil {
			return wrapError("delete categories", err)
		}
		result, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			r.logger.Error("failed to delete category batch", "id", id, "error", err)
			return wrapError("delete categories", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return wrapError("delete categories", err)
		}
		if affected == 0 {
			return &StorageError{Op: "delete categories", Err: fmt.Errorf("%w: category with id %s", ErrNotFound, id)}
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapError("delete categories", err)
	}
	return nil
}

// DeleteInactive removes every deactivated category and reports how many
// rows went away. Zero matches is not an error.
func (r *categoryRepository) DeleteInactive(ctx context.Context) (int64, error) {
	query, args, err := squirrel.Delete("categories").Where(squirrel.Eq{"is_active": false}).ToSql()
	if err != nil {
		return 0, wrapError("delete inactive categories", err)
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		r.logger.Error("failed to delete inactive categories", "error", err)
		return 0, wrapError("delete inactive categories", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, wrapError("delete inactive categories", err)
	}
	return affected, nil
}
