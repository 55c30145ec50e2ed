package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/fieldmaskpb"

	"github.com/personal-ledger/ledger-backend/internal/domain"
	"github.com/personal-ledger/ledger-backend/internal/entity"
	"github.com/personal-ledger/ledger-backend/internal/repository/repositorytest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T) (*CategoriesService, *repositorytest.Fake) {
	t.Helper()
	fake := repositorytest.New()
	return NewCategoriesService(fake, testLogger()), fake
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func wireFixture(i int) *Category {
	return &Category{
		Code:         fmt.Sprintf("SRV.%03d", i),
		Name:         fmt.Sprintf("Service Category %d", i),
		Description:  strPtr(fmt.Sprintf("service category number %d", i)),
		UrlSlug:      strPtr(fmt.Sprintf("service-category-%d", i)),
		CategoryType: domain.WireCategoryTypeExpense,
		Color:        strPtr("#336699"),
		Icon:         strPtr("tag"),
		IsActive:     true,
	}
}

var seedBase = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func seedCategory(t *testing.T, fake *repositorytest.Fake, i int, categoryType domain.CategoryType, active bool) *entity.Category {
	t.Helper()
	slug := domain.URLSlug(fmt.Sprintf("seed-category-%d", i))
	stamp := domain.NewUTCTime(seedBase.Add(time.Duration(i) * time.Minute))
	c := &entity.Category{
		ID:           domain.NewRowID(),
		Code:         fmt.Sprintf("SEED.%03d", i),
		Name:         fmt.Sprintf("Seed Category %d", i),
		URLSlug:      &slug,
		CategoryType: categoryType,
		IsActive:     active,
		CreatedOn:    stamp,
		UpdatedOn:    stamp,
	}
	require.NoError(t, fake.Insert(context.Background(), c))
	return c
}

func requireStatus(t *testing.T, err error, code codes.Code, message string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, status.Code(err))
	require.Equal(t, message, status.Convert(err).Message())
}

func TestCreateCategory(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, &CategoryCreateRequest{Category: wireFixture(1)})
	require.NoError(t, err)
	require.NotNil(t, resp.Category)

	got := resp.Category
	_, err = domain.ParseRowID(got.Id)
	require.NoError(t, err, "response id should be a canonical row id")
	assert.Equal(t, "SRV.001", got.Code)
	assert.Equal(t, "Service Category 1", got.Name)
	require.NotNil(t, got.Description)
	assert.Equal(t, "service category number 1", *got.Description)
	require.NotNil(t, got.UrlSlug)
	assert.Equal(t, "service-category-1", *got.UrlSlug)
	assert.Equal(t, domain.WireCategoryTypeExpense, got.CategoryType)
	require.NotNil(t, got.Color)
	assert.Equal(t, "#336699", *got.Color)
	assert.True(t, got.IsActive)

	created, err := time.Parse(time.RFC3339Nano, got.CreatedOn)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), created, time.Minute)
	assert.Equal(t, got.CreatedOn, got.UpdatedOn)

	assert.Equal(t, 1, fake.Len())
}

func TestCreateCategoryNormalizesInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	wire := wireFixture(2)
	wire.UrlSlug = strPtr("My Category!")
	wire.Color = strPtr("#ff00aa")
	wire.Description = strPtr("   ")
	wire.Icon = nil

	resp, err := svc.Create(ctx, &CategoryCreateRequest{Category: wire})
	require.NoError(t, err)

	require.NotNil(t, resp.Category.UrlSlug)
	assert.Equal(t, "my-category", *resp.Category.UrlSlug)
	require.NotNil(t, resp.Category.Color)
	assert.Equal(t, "#FF00AA", *resp.Category.Color)
	assert.Nil(t, resp.Category.Description, "blank description collapses to absent")
	assert.Nil(t, resp.Category.Icon)
}

func TestCreateCategoryValidation(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	t.Run("missing category payload", func(t *testing.T) {
		_, err := svc.Create(ctx, &CategoryCreateRequest{})
		requireStatus(t, err, codes.InvalidArgument, "Category field is required in CategoryCreateRequest")
	})

	t.Run("blank code", func(t *testing.T) {
		wire := wireFixture(1)
		wire.Code = "   "
		_, err := svc.Create(ctx, &CategoryCreateRequest{Category: wire})
		requireStatus(t, err, codes.InvalidArgument, "Category code is required and cannot be empty")
	})

	t.Run("blank name", func(t *testing.T) {
		wire := wireFixture(1)
		wire.Name = ""
		_, err := svc.Create(ctx, &CategoryCreateRequest{Category: wire})
		requireStatus(t, err, codes.InvalidArgument, "Category name is required and cannot be empty")
	})

	t.Run("unspecified category type", func(t *testing.T) {
		wire := wireFixture(1)
		wire.CategoryType = domain.WireCategoryTypeUnspecified
		_, err := svc.Create(ctx, &CategoryCreateRequest{Category: wire})
		require.Equal(t, codes.InvalidArgument, status.Code(err))
		assert.Contains(t, status.Convert(err).Message(), "invalid category type")
	})

	t.Run("unusable slug", func(t *testing.T) {
		wire := wireFixture(1)
		wire.UrlSlug = strPtr("!!!")
		_, err := svc.Create(ctx, &CategoryCreateRequest{Category: wire})
		require.Equal(t, codes.InvalidArgument, status.Code(err))
		assert.Contains(t, status.Convert(err).Message(), "slug is empty after cleaning")
	})

	t.Run("bad color", func(t *testing.T) {
		wire := wireFixture(1)
		wire.Color = strPtr("#GGGGGG")
		_, err := svc.Create(ctx, &CategoryCreateRequest{Category: wire})
		require.Equal(t, codes.InvalidArgument, status.Code(err))
		assert.Contains(t, status.Convert(err).Message(), "non-hex characters")
	})

	assert.Equal(t, 0, fake.Len(), "no validation failure may persist anything")
}

func TestCreateCategoryDuplicate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &CategoryCreateRequest{Category: wireFixture(1)})
	require.NoError(t, err)

	dup := wireFixture(2)
	dup.Code = "SRV.001"
	dup.UrlSlug = nil
	_, err = svc.Create(ctx, &CategoryCreateRequest{Category: dup})
	requireStatus(t, err, codes.AlreadyExists, "Category with the same code or URL slug already exists")
}

func TestCreateCategoryStorageFailure(t *testing.T) {
	svc, fake := newTestService(t)
	fake.SetError(errors.New("disk full"))

	_, err := svc.Create(context.Background(), &CategoryCreateRequest{Category: wireFixture(1)})
	requireStatus(t, err, codes.Internal, "Failed to create category")
}

func TestCreateBatch(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	req := &CategoriesCreateBatchRequest{Categories: []*Category{
		wireFixture(1), wireFixture(2), wireFixture(3),
	}}
	resp, err := svc.CreateBatch(ctx, req)
	require.NoError(t, err)
	require.Len(t, resp.Categories, 3)
	for i, c := range resp.Categories {
		_, err := domain.ParseRowID(c.Id)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("SRV.%03d", i+1), c.Code)
	}
	assert.Equal(t, 3, fake.Len())
}

func TestCreateBatchEmpty(t *testing.T) {
	svc, fake := newTestService(t)

	resp, err := svc.CreateBatch(context.Background(), &CategoriesCreateBatchRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Categories)
	assert.Equal(t, 0, fake.Len())
}

func TestCreateBatchValidatesBeforePersisting(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	t.Run("invalid item reports its index", func(t *testing.T) {
		bad := wireFixture(2)
		bad.Name = "  "
		_, err := svc.CreateBatch(ctx, &CategoriesCreateBatchRequest{Categories: []*Category{
			wireFixture(1), bad, wireFixture(3),
		}})
		requireStatus(t, err, codes.InvalidArgument, "category at index 1: Category name is required and cannot be empty")
		assert.Equal(t, 0, fake.Len())
	})

	t.Run("nil item reports its index", func(t *testing.T) {
		_, err := svc.CreateBatch(ctx, &CategoriesCreateBatchRequest{Categories: []*Category{nil}})
		requireStatus(t, err, codes.InvalidArgument, "category at index 0: Category field is required in CategoryCreateRequest")
	})

	t.Run("duplicate code rolls back the whole batch", func(t *testing.T) {
		dup := wireFixture(5)
		dup.Code = "SRV.004"
		dup.UrlSlug = nil
		_, err := svc.CreateBatch(ctx, &CategoriesCreateBatchRequest{Categories: []*Category{
			wireFixture(4), dup,
		}})
		require.Equal(t, codes.AlreadyExists, status.Code(err))
		assert.Equal(t, 0, fake.Len())
	})
}

func TestGetCategory(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()
	seeded := seedCategory(t, fake, 1, domain.CategoryTypeExpense, true)

	t.Run("found", func(t *testing.T) {
		resp, err := svc.Get(ctx, &CategoryGetRequest{Id: seeded.ID.String()})
		require.NoError(t, err)
		assert.Equal(t, seeded.ID.String(), resp.Category.Id)
		assert.Equal(t, "SEED.001", resp.Category.Code)
		assert.Equal(t, seeded.CreatedOn.UTC().Format(time.RFC3339Nano), resp.Category.CreatedOn)
	})

	t.Run("invalid id", func(t *testing.T) {
		_, err := svc.Get(ctx, &CategoryGetRequest{Id: "not-a-row-id"})
		requireStatus(t, err, codes.InvalidArgument, "Invalid category ID format")
	})

	t.Run("absent id", func(t *testing.T) {
		missing := domain.NewRowID().String()
		_, err := svc.Get(ctx, &CategoryGetRequest{Id: missing})
		requireStatus(t, err, codes.NotFound, fmt.Sprintf("Category with ID '%s' not found", missing))
	})

	t.Run("storage failure", func(t *testing.T) {
		fake.SetError(errors.New("connection reset"))
		defer fake.SetError(nil)
		_, err := svc.Get(ctx, &CategoryGetRequest{Id: seeded.ID.String()})
		requireStatus(t, err, codes.Internal, "Failed to retrieve category")
	})
}

func TestGetCategoryByCode(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()
	seedCategory(t, fake, 1, domain.CategoryTypeIncome, true)

	t.Run("found", func(t *testing.T) {
		resp, err := svc.GetByCode(ctx, &CategoryGetByCodeRequest{Code: "SEED.001"})
		require.NoError(t, err)
		assert.Equal(t, "Seed Category 1", resp.Category.Name)
	})

	t.Run("blank code", func(t *testing.T) {
		_, err := svc.GetByCode(ctx, &CategoryGetByCodeRequest{Code: "   "})
		requireStatus(t, err, codes.InvalidArgument, "Category code cannot be empty")
	})

	t.Run("absent code", func(t *testing.T) {
		_, err := svc.GetByCode(ctx, &CategoryGetByCodeRequest{Code: "NOPE.001"})
		requireStatus(t, err, codes.NotFound, "Category with code 'NOPE.001' not found")
	})
}

func TestGetCategoryBySlug(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()
	seedCategory(t, fake, 1, domain.CategoryTypeAsset, true)

	t.Run("found", func(t *testing.T) {
		resp, err := svc.GetBySlug(ctx, &CategoryGetBySlugRequest{UrlSlug: "seed-category-1"})
		require.NoError(t, err)
		assert.Equal(t, "SEED.001", resp.Category.Code)
	})

	t.Run("blank slug", func(t *testing.T) {
		_, err := svc.GetBySlug(ctx, &CategoryGetBySlugRequest{UrlSlug: ""})
		requireStatus(t, err, codes.InvalidArgument, "URL slug cannot be empty")
	})

	t.Run("non canonical slug", func(t *testing.T) {
		_, err := svc.GetBySlug(ctx, &CategoryGetBySlugRequest{UrlSlug: "Seed Category 1"})
		requireStatus(t, err, codes.InvalidArgument, "Invalid URL slug format")
	})

	t.Run("absent slug", func(t *testing.T) {
		_, err := svc.GetBySlug(ctx, &CategoryGetBySlugRequest{UrlSlug: "seed-category-9"})
		requireStatus(t, err, codes.NotFound, "Category with slug 'seed-category-9' not found")
	})
}

func TestListCategories(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()
	for i := 1; i <= 9; i++ {
		categoryType := domain.CategoryTypeExpense
		if i%2 == 0 {
			categoryType = domain.CategoryTypeIncome
		}
		seedCategory(t, fake, i, categoryType, i%3 != 0)
	}

	t.Run("pages with total count", func(t *testing.T) {
		resp, err := svc.List(ctx, &CategoriesListRequest{Offset: 0, Limit: 4})
		require.NoError(t, err)
		assert.Len(t, resp.Categories, 4)
		assert.Equal(t, int64(9), resp.TotalCount)
		assert.Equal(t, int64(0), resp.Offset)
		assert.Equal(t, int64(4), resp.Limit)

		rest, err := svc.List(ctx, &CategoriesListRequest{Offset: 8, Limit: 4})
		require.NoError(t, err)
		assert.Len(t, rest.Categories, 1)
		assert.Equal(t, int64(9), rest.TotalCount)
	})

	t.Run("filters by category type", func(t *testing.T) {
		resp, err := svc.List(ctx, &CategoriesListRequest{
			CategoryType: domain.WireCategoryTypeIncome,
			Offset:       0,
			Limit:        100,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(4), resp.TotalCount)
		for _, c := range resp.Categories {
			assert.Equal(t, domain.WireCategoryTypeIncome, c.CategoryType)
		}
	})

	t.Run("filters by active status", func(t *testing.T) {
		resp, err := svc.List(ctx, &CategoriesListRequest{
			IsActive: boolPtr(false),
			Offset:   0,
			Limit:    100,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.TotalCount)
		for _, c := range resp.Categories {
			assert.False(t, c.IsActive)
		}
	})

	t.Run("sorts by code ascending", func(t *testing.T) {
		resp, err := svc.List(ctx, &CategoriesListRequest{SortBy: "code", Offset: 0, Limit: 3})
		require.NoError(t, err)
		require.Len(t, resp.Categories, 3)
		assert.Equal(t, "SEED.001", resp.Categories[0].Code)
		assert.Equal(t, "SEED.002", resp.Categories[1].Code)
		assert.Equal(t, "SEED.003", resp.Categories[2].Code)
	})

	t.Run("invalid category type", func(t *testing.T) {
		_, err := svc.List(ctx, &CategoriesListRequest{CategoryType: 99, Offset: 0, Limit: 10})
		requireStatus(t, err, codes.InvalidArgument, "Invalid category type")
	})

	t.Run("negative offset", func(t *testing.T) {
		_, err := svc.List(ctx, &CategoriesListRequest{Offset: -1, Limit: 10})
		requireStatus(t, err, codes.InvalidArgument, "Offset cannot be negative")
	})

	t.Run("zero limit", func(t *testing.T) {
		_, err := svc.List(ctx, &CategoriesListRequest{Offset: 0, Limit: 0})
		requireStatus(t, err, codes.InvalidArgument, "Limit must be positive")
	})

	t.Run("oversized limit", func(t *testing.T) {
		_, err := svc.List(ctx, &CategoriesListRequest{Offset: 0, Limit: 1001})
		requireStatus(t, err, codes.InvalidArgument, "Limit cannot exceed 1000")
	})

	t.Run("unknown sort column", func(t *testing.T) {
		_, err := svc.List(ctx, &CategoriesListRequest{SortBy: "password", Offset: 0, Limit: 10})
		requireStatus(t, err, codes.InvalidArgument, "Invalid sort column: password")
	})

	t.Run("storage failure", func(t *testing.T) {
		fake.SetError(errors.New("connection reset"))
		defer fake.SetError(nil)
		_, err := svc.List(ctx, &CategoriesListRequest{Offset: 0, Limit: 10})
		requireStatus(t, err, codes.Internal, "Failed to retrieve categories")
	})
}

func TestUpdateCategory(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	t.Run("masked update touches only named fields", func(t *testing.T) {
		seeded := seedCategory(t, fake, 1, domain.CategoryTypeExpense, true)

		resp, err := svc.Update(ctx, &CategoryUpdateRequest{
			Id: seeded.ID.String(),
			Category: &Category{
				Code: "IGNORED",
				Name: "Renamed Category",
			},
			UpdateMask: &fieldmaskpb.FieldMask{Paths: []string{"name"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed Category", resp.Category.Name)
		assert.Equal(t, "SEED.001", resp.Category.Code, "unmasked fields stay put")
		assert.Equal(t, seeded.CreatedOn.UTC().Format(time.RFC3339Nano), resp.Category.CreatedOn)
		assert.NotEqual(t, resp.Category.CreatedOn, resp.Category.UpdatedOn)

		stored, err := fake.FindByID(ctx, seeded.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed Category", stored.Name)
	})

	t.Run("no mask replaces every mutable field", func(t *testing.T) {
		seeded := seedCategory(t, fake, 2, domain.CategoryTypeExpense, true)
		resp, err := svc.Update(ctx, &CategoryUpdateRequest{
			Id: seeded.ID.String(),
			Category: &Category{
				Code:         "FULL.001",
				Name:         "Fully Replaced",
				UrlSlug:      strPtr("Fully Replaced!"),
				CategoryType: domain.WireCategoryTypeLiability,
				IsActive:     false,
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "FULL.001", resp.Category.Code)
		assert.Equal(t, "Fully Replaced", resp.Category.Name)
		require.NotNil(t, resp.Category.UrlSlug)
		assert.Equal(t, "fully-replaced", *resp.Category.UrlSlug)
		assert.Equal(t, domain.WireCategoryTypeLiability, resp.Category.CategoryType)
		assert.False(t, resp.Category.IsActive)
		assert.Nil(t, resp.Category.Description, "absent optionals clear on full replace")
	})

	t.Run("missing payload", func(t *testing.T) {
		_, err := svc.Update(ctx, &CategoryUpdateRequest{Id: domain.NewRowID().String()})
		requireStatus(t, err, codes.InvalidArgument, "Category field is required in CategoryUpdateRequest")
	})

	t.Run("invalid id", func(t *testing.T) {
		_, err := svc.Update(ctx, &CategoryUpdateRequest{Id: "nope", Category: &Category{}})
		requireStatus(t, err, codes.InvalidArgument, "Invalid category ID format")
	})

	t.Run("absent id", func(t *testing.T) {
		missing := domain.NewRowID().String()
		_, err := svc.Update(ctx, &CategoryUpdateRequest{
			Id:       missing,
			Category: &Category{Name: "Whatever"},
			UpdateMask: &fieldmaskpb.FieldMask{
				Paths: []string{"name"},
			},
		})
		requireStatus(t, err, codes.NotFound, fmt.Sprintf("Category with ID '%s' not found", missing))
	})

	t.Run("blank code in masked path", func(t *testing.T) {
		seeded := seedCategory(t, fake, 3, domain.CategoryTypeExpense, true)
		_, err := svc.Update(ctx, &CategoryUpdateRequest{
			Id:         seeded.ID.String(),
			Category:   &Category{Code: "   "},
			UpdateMask: &fieldmaskpb.FieldMask{Paths: []string{"code"}},
		})
		requireStatus(t, err, codes.InvalidArgument, "category code cannot be empty")
	})

	t.Run("unknown mask path", func(t *testing.T) {
		seeded := seedCategory(t, fake, 4, domain.CategoryTypeExpense, true)
		_, err := svc.Update(ctx, &CategoryUpdateRequest{
			Id:         seeded.ID.String(),
			Category:   &Category{},
			UpdateMask: &fieldmaskpb.FieldMask{Paths: []string{"nickname"}},
		})
		require.Equal(t, codes.InvalidArgument, status.Code(err))
		assert.Contains(t, status.Convert(err).Message(), `unknown field in update mask: "nickname"`)
	})

	t.Run("code collision", func(t *testing.T) {
		seedCategory(t, fake, 5, domain.CategoryTypeExpense, true)
		other := seedCategory(t, fake, 6, domain.CategoryTypeExpense, true)
		_, err := svc.Update(ctx, &CategoryUpdateRequest{
			Id:         other.ID.String(),
			Category:   &Category{Code: "SEED.005"},
			UpdateMask: &fieldmaskpb.FieldMask{Paths: []string{"code"}},
		})
		requireStatus(t, err, codes.AlreadyExists, "Category with the same code or URL slug already exists")
	})
}

func TestActivateAndDeactivateCategory(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()
	seeded := seedCategory(t, fake, 1, domain.CategoryTypeEquity, false)

	t.Run("activate", func(t *testing.T) {
		resp, err := svc.Activate(ctx, &CategoryActivateRequest{Id: seeded.ID.String()})
		require.NoError(t, err)
		assert.True(t, resp.Category.IsActive)

		stored, err := fake.FindByID(ctx, seeded.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsActive)
	})

	t.Run("deactivate", func(t *testing.T) {
		resp, err := svc.Deactivate(ctx, &CategoryDeactivateRequest{Id: seeded.ID.String()})
		require.NoError(t, err)
		assert.False(t, resp.Category.IsActive)
	})

	t.Run("invalid id", func(t *testing.T) {
		_, err := svc.Activate(ctx, &CategoryActivateRequest{Id: "x"})
		requireStatus(t, err, codes.InvalidArgument, "Invalid category ID format")
	})

	t.Run("absent id", func(t *testing.T) {
		missing := domain.NewRowID().String()
		_, err := svc.Deactivate(ctx, &CategoryDeactivateRequest{Id: missing})
		requireStatus(t, err, codes.NotFound, fmt.Sprintf("Category with ID '%s' not found", missing))
	})

	t.Run("storage failure", func(t *testing.T) {
		fake.SetError(errors.New("connection reset"))
		defer fake.SetError(nil)
		_, err := svc.Activate(ctx, &CategoryActivateRequest{Id: seeded.ID.String()})
		requireStatus(t, err, codes.Internal, "Failed to activate category")

		_, err = svc.Deactivate(ctx, &CategoryDeactivateRequest{Id: seeded.ID.String()})
		requireStatus(t, err, codes.Internal, "Failed to deactivate category")
	})
}

func TestDeleteCategory(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()
	seeded := seedCategory(t, fake, 1, domain.CategoryTypeExpense, true)

	t.Run("deletes one row", func(t *testing.T) {
		resp, err := svc.Delete(ctx, &CategoryDeleteRequest{Id: seeded.ID.String()})
		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.RowsDeleted)
		assert.Equal(t, 0, fake.Len())
	})

	t.Run("absent row deletes nothing", func(t *testing.T) {
		resp, err := svc.Delete(ctx, &CategoryDeleteRequest{Id: domain.NewRowID().String()})
		require.NoError(t, err)
		assert.Equal(t, int64(0), resp.RowsDeleted)
	})

	t.Run("invalid id", func(t *testing.T) {
		_, err := svc.Delete(ctx, &CategoryDeleteRequest{Id: "nope"})
		requireStatus(t, err, codes.InvalidArgument, "Invalid category ID format")
	})
}

func TestDeleteCategoryByCode(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()
	seedCategory(t, fake, 1, domain.CategoryTypeExpense, true)

	t.Run("deletes one row", func(t *testing.T) {
		resp, err := svc.DeleteByCode(ctx, &CategoryDeleteByCodeRequest{Code: "SEED.001"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.RowsDeleted)
		assert.Equal(t, 0, fake.Len())
	})

	t.Run("absent code deletes nothing", func(t *testing.T) {
		resp, err := svc.DeleteByCode(ctx, &CategoryDeleteByCodeRequest{Code: "SEED.001"})
		require.NoError(t, err)
		assert.Equal(t, int64(0), resp.RowsDeleted)
	})

	t.Run("blank code", func(t *testing.T) {
		_, err := svc.DeleteByCode(ctx, &CategoryDeleteByCodeRequest{Code: ""})
		requireStatus(t, err, codes.InvalidArgument, "Category code cannot be empty")
	})
}

func TestDeleteBatchCategories(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	t.Run("deletes all requested rows", func(t *testing.T) {
		a := seedCategory(t, fake, 1, domain.CategoryTypeExpense, true)
		b := seedCategory(t, fake, 2, domain.CategoryTypeExpense, true)
		c := seedCategory(t, fake, 3, domain.CategoryTypeExpense, true)

		resp, err := svc.DeleteBatch(ctx, &CategoriesDeleteBatchRequest{
			Ids: []string{a.ID.String(), b.ID.String(), c.ID.String()},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.RowsDeleted)
		assert.Equal(t, 0, fake.Len())
	})

	t.Run("empty ids delete nothing", func(t *testing.T) {
		resp, err := svc.DeleteBatch(ctx, &CategoriesDeleteBatchRequest{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), resp.RowsDeleted)
	})

	t.Run("invalid id names the offender", func(t *testing.T) {
		_, err := svc.DeleteBatch(ctx, &CategoriesDeleteBatchRequest{
			Ids: []string{domain.NewRowID().String(), "bad-id"},
		})
		requireStatus(t, err, codes.InvalidArgument, "Invalid category ID format: bad-id")
	})

	t.Run("missing rows fall back to best effort", func(t *testing.T) {
		a := seedCategory(t, fake, 4, domain.CategoryTypeExpense, true)
		b := seedCategory(t, fake, 5, domain.CategoryTypeExpense, true)
		missing := domain.NewRowID()

		resp, err := svc.DeleteBatch(ctx, &CategoriesDeleteBatchRequest{
			Ids: []string{a.ID.String(), missing.String(), b.ID.String()},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.RowsDeleted)
		assert.Equal(t, 0, fake.Len())
	})

	t.Run("storage failure", func(t *testing.T) {
		seedCategory(t, fake, 6, domain.CategoryTypeExpense, true)
		fake.SetError(errors.New("connection reset"))
		defer fake.SetError(nil)
		_, err := svc.DeleteBatch(ctx, &CategoriesDeleteBatchRequest{
			Ids: []string{domain.NewRowID().String()},
		})
		requireStatus(t, err, codes.Internal, "Failed to delete categories")
	})
}

func TestPruneInactiveCategories(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()
	seedCategory(t, fake, 1, domain.CategoryTypeExpense, true)
	seedCategory(t, fake, 2, domain.CategoryTypeExpense, false)
	seedCategory(t, fake, 3, domain.CategoryTypeExpense, false)

	resp, err := svc.PruneInactive(ctx, &CategoriesPruneInactiveRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.RowsDeleted)
	assert.Equal(t, 1, fake.Len())

	again, err := svc.PruneInactive(ctx, &CategoriesPruneInactiveRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), again.RowsDeleted)
}
