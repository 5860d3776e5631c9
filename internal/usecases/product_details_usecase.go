package usecases

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"instadm/internal/entities"
	"instadm/internal/interfaces"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	MaxImportRows    = 1000
)

// ListParams are the raw listing options from a request.
type ListParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Pagination is returned alongside every paged listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// NormalizePage clamps paging options and rejects unknown sort keys.
func NormalizePage(p ListParams) (entities.Page, error) {
	page := entities.Page{Page: p.Page, Limit: p.Limit, SortBy: "created_at"}
	if page.Page < 1 {
		page.Page = 1
	}
	if page.Limit < 1 {
		page.Limit = DefaultPageLimit
	}
	if page.Limit > MaxPageLimit {
		page.Limit = MaxPageLimit
	}
	// Keep (Page-1)*Limit within int; any page this far out is empty anyway.
	if maxPage := math.MaxInt / page.Limit; page.Page > maxPage {
		page.Page = maxPage
	}

	switch p.SortBy {
	case "", "created_at", "createdAt":
	default:
		return entities.Page{}, entities.NewValidationError("sortBy must be created_at")
	}
	switch strings.ToLower(p.SortOrder) {
	case "", "desc":
	case "asc":
		page.Ascending = true
	default:
		return entities.Page{}, entities.NewValidationError("sortOrder must be asc or desc")
	}
	return page, nil
}

func NewPagination(p entities.Page, total int64) Pagination {
	pages := int64(0)
	if p.Limit > 0 {
		pages = (total + int64(p.Limit) - 1) / int64(p.Limit)
	}
	return Pagination{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}

type ProductDetailsUsecase struct {
	details   interfaces.ProductDetailsStore
	companies interfaces.CompanyStore
}

func NewProductDetailsUsecase(details interfaces.ProductDetailsStore, companies interfaces.CompanyStore) *ProductDetailsUsecase {
	return &ProductDetailsUsecase{details: details, companies: companies}
}

func (uc *ProductDetailsUsecase) Create(ctx context.Context, companyInstagramID, details string) (*entities.ProductDetails, error) {
	companyInstagramID = strings.TrimSpace(companyInstagramID)
	if companyInstagramID == "" {
		return nil, &entities.ValidationError{Message: "Validation failed", Fields: []entities.FieldError{
			{Field: "company_instagram_id", Message: "is required"},
		}}
	}
	details, err := checkDetails(details)
	if err != nil {
		return nil, &entities.ValidationError{Message: "Validation failed", Fields: []entities.FieldError{
			{Field: "details", Message: err.Error()},
		}}
	}

	if err := uc.ensureCompany(ctx, companyInstagramID); err != nil {
		return nil, err
	}

	d := &entities.ProductDetails{CompanyInstagramID: companyInstagramID, Details: details}
	if err := uc.details.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (uc *ProductDetailsUsecase) List(ctx context.Context, companyInstagramID string, p ListParams) ([]entities.ProductDetails, Pagination, error) {
	companyInstagramID = strings.TrimSpace(companyInstagramID)
	if companyInstagramID == "" {
		return nil, Pagination{}, entities.NewValidationError("company_instagram_id is required")
	}
	page, err := NormalizePage(p)
	if err != nil {
		return nil, Pagination{}, err
	}

	items, total, err := uc.details.List(ctx, companyInstagramID, page)
	if err != nil {
		return nil, Pagination{}, err
	}
	return items, NewPagination(page, total), nil
}

// Import appends one snippet per CSV row, taking the first column. Blank
// rows and a leading "details" header are skipped. Nothing is stored unless
// every row is valid.
func (uc *ProductDetailsUsecase) Import(ctx context.Context, company *entities.Company, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		batch  []entities.ProductDetails
		fields []entities.FieldError
	)
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, entities.NewValidationError("Invalid CSV: " + err.Error())
		}
		if len(record) == 0 {
			continue
		}

		cell := strings.TrimSpace(record[0])
		if cell == "" || (line == 1 && strings.EqualFold(cell, "details")) {
			continue
		}
		details, err := checkDetails(cell)
		if err != nil {
			fields = append(fields, entities.FieldError{Field: fmt.Sprintf("row %d", line), Message: err.Error()})
			continue
		}
		batch = append(batch, entities.ProductDetails{CompanyInstagramID: company.InstagramID, Details: details})
		if len(batch) > MaxImportRows {
			return 0, entities.NewValidationError(fmt.Sprintf("CSV has more than %d rows", MaxImportRows))
		}
	}

	if len(fields) > 0 {
		return 0, &entities.ValidationError{Message: "Invalid rows in CSV", Fields: fields}
	}
	if len(batch) == 0 {
		return 0, entities.NewValidationError("CSV contains no product details")
	}
	if err := uc.details.CreateMany(ctx, batch); err != nil {
		return 0, err
	}
	return len(batch), nil
}

func (uc *ProductDetailsUsecase) ensureCompany(ctx context.Context, instagramID string) error {
	_, err := uc.companies.GetByInstagramID(ctx, instagramID)
	if errors.Is(err, entities.ErrNotFound) {
		return entities.NotFound("Company not found")
	}
	return err
}

func checkDetails(details string) (string, error) {
	details = strings.TrimSpace(details)
	if details == "" {
		return "", errors.New("is required")
	}
	if utf8.RuneCountInString(details) > entities.MaxProductDetailsLength {
		return "", fmt.Errorf("must be at most %d characters", entities.MaxProductDetailsLength)
	}
	return details, nil
}
