// Package repositorytest provides an in-memory CategoryRepository for
// exercising callers without a database.
package repositorytest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/personal-ledger/ledger-backend/internal/domain"
	"github.com/personal-ledger/ledger-backend/internal/entity"
	"github.com/personal-ledger/ledger-backend/internal/repository"
)

// Fake implements repository.CategoryRepository against a map. It honors
// the same contract as the real repository: absent lookups return nil,
// mutations on missing rows fail with ErrNotFound, duplicate codes and
// slugs fail with ErrConflict, and batch operations apply all or nothing.
type Fake struct {
	mu         sync.RWMutex
	categories map[domain.RowID]*entity.Category
	forcedErr  error
}

func New() *Fake {
	return &Fake{categories: make(map[domain.RowID]*entity.Category)}
}

// SetError makes every subsequent operation fail with err. Pass nil to
// restore normal behavior.
func (f *Fake) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forcedErr = err
}

// Len reports how many categories are stored.
func (f *Fake) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.categories)
}

func cloneCategory(c *entity.Category) *entity.Category {
	if c == nil {
		return nil
	}
	out := *c
	if c.Description != nil {
		v := *c.Description
		out.Description = &v
	}
	if c.URLSlug != nil {
		v := *c.URLSlug
		out.URLSlug = &v
	}
	if c.Color != nil {
		v := *c.Color
		out.Color = &v
	}
	if c.Icon != nil {
		v := *c.Icon
		out.Icon = &v
	}
	return &out
}

func (f *Fake) conflictLocked(candidate *entity.Category) error {
	for id, existing := range f.categories {
		if id == candidate.ID {
			continue
		}
		if existing.Code == candidate.Code {
			return fmt.Errorf("%w: categories_code_key", repository.ErrConflict)
		}
		if existing.URLSlug != nil && candidate.URLSlug != nil && *existing.URLSlug == *candidate.URLSlug {
			return fmt.Errorf("%w: categories_url_slug_key", repository.ErrConflict)
		}
	}
	return nil
}

func (f *Fake) Insert(_ context.Context, category *entity.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return f.forcedErr
	}
	if _, ok := f.categories[category.ID]; ok {
		return fmt.Errorf("%w: categories_pkey", repository.ErrConflict)
	}
	if err := f.conflictLocked(category); err != nil {
		return err
	}
	f.categories[category.ID] = cloneCategory(category)
	return nil
}

func (f *Fake) InsertMany(_ context.Context, categories []*entity.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return f.forcedErr
	}

	staged := make(map[domain.RowID]*entity.Category, len(f.categories)+len(categories))
	for id, c := range f.categories {
		staged[id] = c
	}
	for i, category := range categories {
		conflict := func() error {
			for id, existing := range staged {
				if id == category.ID {
					return fmt.Errorf("%w: categories_pkey", repository.ErrConflict)
				}
				if existing.Code == category.Code {
					return fmt.Errorf("%w: categories_code_key", repository.ErrConflict)
				}
				if existing.URLSlug != nil && category.URLSlug != nil && *existing.URLSlug == *category.URLSlug {
					return fmt.Errorf("%w: categories_url_slug_key", repository.ErrConflict)
				}
			}
			return nil
		}()
		if conflict != nil {
			return fmt.Errorf("category at index %d: %w", i, conflict)
		}
		staged[category.ID] = cloneCategory(category)
	}

	f.categories = staged
	return nil
}

func (f *Fake) FindByID(_ context.Context, id domain.RowID) (*entity.Category, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	return cloneCategory(f.categories[id]), nil
}

func (f *Fake) FindByCode(_ context.Context, code string) (*entity.Category, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	for _, c := range f.categories {
		if c.Code == code {
			return cloneCategory(c), nil
		}
	}
	return nil, nil
}

func (f *Fake) FindBySlug(_ context.Context, slug domain.URLSlug) (*entity.Category, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	for _, c := range f.categories {
		if c.URLSlug != nil && *c.URLSlug == slug {
			return cloneCategory(c), nil
		}
	}
	return nil, nil
}

func (f *Fake) list(match func(*entity.Category) bool) []*entity.Category {
	out := make([]*entity.Category, 0, len(f.categories))
	for _, c := range f.categories {
		if match(c) {
			out = append(out, cloneCategory(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedOn.Storage() > out[j].CreatedOn.Storage()
	})
	return out
}

func (f *Fake) FindAll(_ context.Context) ([]*entity.Category, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	return f.list(func(*entity.Category) bool { return true }), nil
}

func (f *Fake) FindAllActive(_ context.Context) ([]*entity.Category, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	return f.list(func(c *entity.Category) bool { return c.IsActive }), nil
}

func (f *Fake) FindByType(_ context.Context, categoryType domain.CategoryType) ([]*entity.Category, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	return f.list(func(c *entity.Category) bool { return c.CategoryType == categoryType }), nil
}

func (f *Fake) FindActiveByType(_ context.Context, categoryType domain.CategoryType) ([]*entity.Category, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	return f.list(func(c *entity.Category) bool { return c.IsActive && c.CategoryType == categoryType }), nil
}

func (f *Fake) FindWithFilters(_ context.Context, filter repository.CategoryFilter) ([]*entity.Category, int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.forcedErr != nil {
		return nil, 0, f.forcedErr
	}

	matched := f.list(func(c *entity.Category) bool {
		if filter.CategoryType != nil && c.CategoryType != *filter.CategoryType {
			return false
		}
		if filter.IsActive != nil && c.IsActive != *filter.IsActive {
			return false
		}
		return true
	})

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_on"
	}
	key := func(c *entity.Category) string {
		switch sortBy {
		case "code":
			return c.Code
		case "name":
			return c.Name
		case "updated_on":
			return c.UpdatedOn.Storage()
		case "category_type":
			return c.CategoryType.String()
		default:
			return c.CreatedOn.Storage()
		}
	}
	switch sortBy {
	case "code", "name", "created_on", "updated_on", "category_type":
	default:
		return nil, 0, fmt.Errorf("%w: unsupported sort column %q", repository.ErrValidation, filter.SortBy)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if filter.SortDesc {
			return key(matched[i]) > key(matched[j])
		}
		return key(matched[i]) < key(matched[j])
	})

	total := int64(len(matched))
	start := filter.Offset
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (f *Fake) Update(_ context.Context, category *entity.Category) (*entity.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	if _, ok := f.categories[category.ID]; !ok {
		return nil, fmt.Errorf("%w: category with id %s", repository.ErrNotFound, category.ID)
	}
	if err := f.conflictLocked(category); err != nil {
		return nil, err
	}
	f.categories[category.ID] = cloneCategory(category)
	return cloneCategory(category), nil
}

func (f *Fake) UpdateMany(_ context.Context, categories []*entity.Category) ([]*entity.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	for _, category := range categories {
		if _, ok := f.categories[category.ID]; !ok {
			return nil, fmt.Errorf("%w: category with id %s", repository.ErrNotFound, category.ID)
		}
	}
	updated := make([]*entity.Category, 0, len(categories))
	for _, category := range categories {
		f.categories[category.ID] = cloneCategory(category)
		updated = append(updated, cloneCategory(category))
	}
	return updated, nil
}

func (f *Fake) UpdateActiveStatus(_ context.Context, id domain.RowID, active bool) (*entity.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	existing, ok := f.categories[id]
	if !ok {
		return nil, fmt.Errorf("%w: category with id %s", repository.ErrNotFound, id)
	}
	existing.IsActive = active
	existing.UpdatedOn = domain.UTCNow()
	return cloneCategory(existing), nil
}

func (f *Fake) DeleteByID(_ context.Context, id domain.RowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return f.forcedErr
	}
	if _, ok := f.categories[id]; !ok {
		return fmt.Errorf("%w: category with id %s", repository.ErrNotFound, id)
	}
	delete(f.categories, id)
	return nil
}

func (f *Fake) DeleteByCode(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return f.forcedErr
	}
	for id, c := range f.categories {
		if c.Code == code {
			delete(f.categories, id)
			return nil
		}
	}
	return fmt.Errorf("%w: category with code %q", repository.ErrNotFound, code)
}

func (f *Fake) DeleteManyByID(_ context.Context, ids []domain.RowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return f.forcedErr
	}
	for _, id := range ids {
		if _, ok := f.categories[id]; !ok {
			return fmt.Errorf("%w: category with id %s", repository.ErrNotFound, id)
		}
	}
	for _, id := range ids {
		delete(f.categories, id)
	}
	return nil
}

func (f *Fake) DeleteInactive(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedErr != nil {
		return 0, f.forcedErr
	}
	var deleted int64
	for id, c := range f.categories {
		if !c.IsActive {
			delete(f.categories, id)
			deleted++
		}
	}
	return deleted, nil
}

var _ repository.CategoryRepository = (*Fake)(nil)
