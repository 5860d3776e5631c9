package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"instadm/internal/entities"
)

// TenantManager removes a tenant and everything scoped to it.
type TenantManager struct {
	db *pgxpool.Pool
}

func NewTenantManager(db *pgxpool.Pool) *TenantManager {
	return &TenantManager{db: db}
}

var tenantScopedTables = []string{"chat_histories", "appointments", "product_details"}

// DropTenant deletes the company row and its scoped records in one
// transaction.
func (t *TenantManager) DropTenant(ctx context.Context, companyID, instagramID string) error {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range tenantScopedTables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE company_instagram_id = $1", table), instagramID); err != nil {
			return fmt.Errorf("failed to purge %s: %w", table, err)
		}
	}

	tag, err := tx.Exec(ctx, "DELETE FROM companies WHERE id = $1", companyID)
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrNotFound
	}

	return tx.Commit(ctx)
}
