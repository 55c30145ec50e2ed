package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/personal-ledger/ledger-backend/internal/domain"
	"github.com/personal-ledger/ledger-backend/internal/entity"
	"github.com/personal-ledger/ledger-backend/internal/repository"
)

// Service is a tiny façade over the category repository that produces XLSX
// bytes for chart-of-categories exports.
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

// Filter narrows the exported rows. The zero value exports everything.
type Filter struct {
	CategoryType *domain.CategoryType
	ActiveOnly   bool
}

// ExportCategoriesXLSX returns an XLSX workbook (as bytes) with one row per
// category matching the filter, newest first.
func (s *Service) ExportCategoriesXLSX(ctx context.Context, filter Filter) ([]byte, error) {
	start := time.Now()

	categories, err := s.listCategories(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Categories"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Code",
		"Name",
		"Type",
		"Description",
		"URL Slug",
		"Color",
		"Icon",
		"Active",
		"Created On",
		"Updated On",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, c := range categories {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, c.Code)
		write(2, c.Name)
		write(3, c.CategoryType.String())
		write(4, truncate(strOrEmpty(c.Description), 140))
		if c.URLSlug != nil {
			write(5, c.URLSlug.String())
		} else {
			write(5, "")
		}
		if c.Color != nil {
			write(6, c.Color.String())
		} else {
			write(6, "")
		}
		write(7, strOrEmpty(c.Icon))
		write(8, c.IsActive)
		write(9, c.CreatedOn.UTC().Format("2006-01-02 15:04:05"))
		write(10, c.UpdatedOn.UTC().Format("2006-01-02 15:04:05"))

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 12) // code
	_ = f.SetColWidth(sheet, "B", "B", 28) // name
	_ = f.SetColWidth(sheet, "C", "C", 12) // type
	_ = f.SetColWidth(sheet, "D", "D", 48) // description
	_ = f.SetColWidth(sheet, "E", "E", 24) // slug
	_ = f.SetColWidth(sheet, "F", "G", 10) // color, icon
	_ = f.SetColWidth(sheet, "I", "J", 20) // timestamps

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(categories),
		"active_only", filter.ActiveOnly,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) listCategories(ctx context.Context, filter Filter) ([]*entity.Category, error) {
	switch {
	case filter.CategoryType != nil && filter.ActiveOnly:
		return s.repo.FindActiveByType(ctx, *filter.CategoryType)
	case filter.CategoryType != nil:
		return s.repo.FindByType(ctx, *filter.CategoryType)
	case filter.ActiveOnly:
		return s.repo.FindAllActive(ctx)
	default:
		return s.repo.FindAll(ctx)
	}
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
