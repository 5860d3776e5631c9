package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"instadm/internal/entities"
)

const chatHistoryColumns = "id, sender_id, recipient_id, company_id, company_instagram_id, message, message_id, created_at"

// ChatHistoryRepository reads and appends to the shared message log. Every
// query filters on company_instagram_id.
type ChatHistoryRepository struct {
	db *pgxpool.Pool
}

func NewChatHistoryRepository(db *pgxpool.Pool) *ChatHistoryRepository {
	return &ChatHistoryRepository{db: db}
}

func (r *ChatHistoryRepository) Insert(ctx context.Context, m *entities.ChatHistory) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO chat_histories (id, sender_id, recipient_id, company_id, company_instagram_id, message, message_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, m.ID, m.SenderID, m.RecipientID, m.CompanyID, m.CompanyInstagramID, m.Message, m.MessageID, m.CreatedAt)
	if isUniqueViolation(err) {
		return entities.ErrConflict
	}
	return err
}

func (r *ChatHistoryRepository) List(ctx context.Context, companyInstagramID string, p entities.Page) ([]entities.ChatHistory, int64, error) {
	total, err := r.CountByCompany(ctx, companyInstagramID)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+chatHistoryColumns+` FROM chat_histories
		WHERE company_instagram_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, companyInstagramID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	messages, err := collectChatHistory(rows)
	return messages, total, err
}

// CountByCompany returns the tenant's total message count.
func (r *ChatHistoryRepository) CountByCompany(ctx context.Context, companyInstagramID string) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM chat_histories WHERE company_instagram_id = $1", companyInstagramID).Scan(&n)
	return n, err
}

// CountCounterparts returns |distinct senders ∪ distinct recipients|.
func (r *ChatHistoryRepository) CountCounterparts(ctx context.Context, companyInstagramID string) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM (
			SELECT sender_id AS participant FROM chat_histories WHERE company_instagram_id = $1
			UNION
			SELECT recipient_id FROM chat_histories WHERE company_instagram_id = $1
		) participants
	`, companyInstagramID).Scan(&n)
	return n, err
}

func (r *ChatHistoryRepository) Recent(ctx context.Context, companyInstagramID string, limit int) ([]entities.ChatHistory, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+chatHistoryColumns+` FROM chat_histories
		WHERE company_instagram_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, companyInstagramID, limit)
	if err != nil {
		return nil, err
	}
	return collectChatHistory(rows)
}

// Breakdown counts sent and received messages in a single pass.
func (r *ChatHistoryRepository) Breakdown(ctx context.Context, companyInstagramID, ownerID string) (entities.MessageBreakdown, error) {
	var b entities.MessageBreakdown
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE sender_id = $2),
			COUNT(*) FILTER (WHERE sender_id IS DISTINCT FROM $2)
		FROM chat_histories
		WHERE company_instagram_id = $1
	`, companyInstagramID, ownerID).Scan(&b.Sent, &b.Received)
	return b, err
}

func collectChatHistory(rows pgx.Rows) ([]entities.ChatHistory, error) {
	defer rows.Close()

	messages := []entities.ChatHistory{}
	for rows.Next() {
		var m entities.ChatHistory
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.CompanyID, &m.CompanyInstagramID, &m.Message, &m.MessageID, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
