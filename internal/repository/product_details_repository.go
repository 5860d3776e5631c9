package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"instadm/internal/entities"
)

type ProductDetailsRepository struct {
	db *pgxpool.Pool
}

func NewProductDetailsRepository(db *pgxpool.Pool) *ProductDetailsRepository {
	return &ProductDetailsRepository{db: db}
}

func (r *ProductDetailsRepository) Create(ctx context.Context, d *entities.ProductDetails) error {
	if d.ID == "" {
		d.ID = entities.NewProductDetailsID()
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO product_details (id, company_instagram_id, details)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, d.ID, d.CompanyInstagramID, d.Details).Scan(&d.CreatedAt)
}

// CreateMany bulk-inserts snippets with COPY.
func (r *ProductDetailsRepository) CreateMany(ctx context.Context, ds []entities.ProductDetails) error {
	now := time.Now().UTC()
	for i := range ds {
		if ds[i].ID == "" {
			ds[i].ID = entities.NewProductDetailsID()
		}
		if ds[i].CreatedAt.IsZero() {
			ds[i].CreatedAt = now
		}
	}

	_, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"product_details"},
		[]string{"id", "company_instagram_id", "details", "created_at"},
		pgx.CopyFromSlice(len(ds), func(i int) ([]any, error) {
			return []any{ds[i].ID, ds[i].CompanyInstagramID, ds[i].Details, ds[i].CreatedAt}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy product details: %w", err)
	}
	return nil
}

func (r *ProductDetailsRepository) List(ctx context.Context, companyInstagramID string, p entities.Page) ([]entities.ProductDetails, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM product_details WHERE company_instagram_id = $1", companyInstagramID).Scan(&total); err != nil {
		return nil, 0, err
	}

	direction := "DESC"
	if p.Ascending {
		direction = "ASC"
	}
	// Only created_at is sortable; the sort key is never taken from input.
	query := fmt.Sprintf(`
		SELECT id, company_instagram_id, details, created_at FROM product_details
		WHERE company_instagram_id = $1
		ORDER BY created_at %s, id COLLATE "C" %s
		LIMIT $2 OFFSET $3`, direction, direction)

	rows, err := r.db.Query(ctx, query, companyInstagramID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	details := []entities.ProductDetails{}
	for rows.Next() {
		var d entities.ProductDetails
		if err := rows.Scan(&d.ID, &d.CompanyInstagramID, &d.Details, &d.CreatedAt); err != nil {
			return nil, 0, err
		}
		details = append(details, d)
	}
	return details, total, rows.Err()
}
