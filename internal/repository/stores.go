package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"instadm/internal/interfaces"
)

// NewStores wires the Postgres repositories over one pool.
func NewStores(db *pgxpool.Pool) interfaces.Stores {
	return interfaces.Stores{
		Companies:      NewCompanyRepository(db),
		ChatHistory:    NewChatHistoryRepository(db),
		Appointments:   NewAppointmentRepository(db),
		ProductDetails: NewProductDetailsRepository(db),
	}
}
