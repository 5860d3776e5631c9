package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"instadm/internal/entities"
)

const companyColumns = `id, name, email, password_hash, phone, profile, instagram_id, company_id,
	bot_identity, bot_role, conversation_flow, faqs, keywords, is_active, created_at, updated_at`

type CompanyRepository struct {
	db      *pgxpool.Pool
	tenants *TenantManager
}

func NewCompanyRepository(db *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{db: db, tenants: NewTenantManager(db)}
}

func (r *CompanyRepository) Create(ctx context.Context, c *entities.Company) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.FAQs == nil {
		c.FAQs = []entities.FAQ{}
	}
	if c.Keywords == nil {
		c.Keywords = []string{}
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO companies (id, name, email, password_hash, phone, profile, instagram_id, company_id,
			bot_identity, bot_role, conversation_flow, faqs, keywords, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`, c.ID, c.Name, c.Email, c.PasswordHash, c.Phone, c.Profile, c.InstagramID, c.CompanyID,
		c.BotIdentity, c.BotRole, c.ConversationFlow, c.FAQs, c.Keywords, c.IsActive,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if isUniqueViolation(err) {
		return entities.ErrConflict
	}
	return err
}

func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*entities.Company, error) {
	return r.getBy(ctx, "id", id)
}

func (r *CompanyRepository) GetByEmail(ctx context.Context, email string) (*entities.Company, error) {
	return r.getBy(ctx, "email", strings.ToLower(email))
}

func (r *CompanyRepository) GetByInstagramID(ctx context.Context, instagramID string) (*entities.Company, error) {
	return r.getBy(ctx, "instagram_id", instagramID)
}

// getBy looks up a single company; column is always a constant.
func (r *CompanyRepository) getBy(ctx context.Context, column, value string) (*entities.Company, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM companies WHERE %s = $1", companyColumns, column), value)
	return scanCompany(row)
}

func (r *CompanyRepository) Update(ctx context.Context, id string, u entities.CompanyUpdate) (*entities.Company, error) {
	var setClauses []string
	var args []interface{}
	add := func(col string, val interface{}) {
		args = append(args, val)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Phone != nil {
		add("phone", *u.Phone)
	}
	if u.Profile != nil {
		add("profile", *u.Profile)
	}
	if u.BotIdentity != nil {
		add("bot_identity", *u.BotIdentity)
	}
	if u.BotRole != nil {
		add("bot_role", *u.BotRole)
	}
	if u.ConversationFlow != nil {
		add("conversation_flow", *u.ConversationFlow)
	}
	if u.FAQs != nil {
		faqs := *u.FAQs
		if faqs == nil {
			faqs = []entities.FAQ{}
		}
		add("faqs", faqs)
	}
	if u.Keywords != nil {
		keywords := *u.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		add("keywords", keywords)
	}
	if u.IsActive != nil {
		add("is_active", *u.IsActive)
	}
	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE companies SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), len(args), companyColumns)
	return scanCompany(r.db.QueryRow(ctx, query, args...))
}

func (r *CompanyRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.db.Exec(ctx, "UPDATE companies SET password_hash = $1, updated_at = NOW() WHERE id = $2", passwordHash, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrNotFound
	}
	return nil
}

func (r *CompanyRepository) Delete(ctx context.Context, c *entities.Company) error {
	return r.tenants.DropTenant(ctx, c.ID, c.InstagramID)
}

func scanCompany(row pgx.Row) (*entities.Company, error) {
	var c entities.Company
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.Phone, &c.Profile, &c.InstagramID, &c.CompanyID,
		&c.BotIdentity, &c.BotRole, &c.ConversationFlow, &c.FAQs, &c.Keywords, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
