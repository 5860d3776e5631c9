package interfaces

import (
	"context"

	"instadm/internal/entities"
)

// CompanyStore persists tenants. Lookups return entities.ErrNotFound when no
// record matches; Create returns entities.ErrConflict on a duplicate email or
// instagram id.
type CompanyStore interface {
	Create(ctx context.Context, c *entities.Company) error
	GetByID(ctx context.Context, id string) (*entities.Company, error)
	GetByEmail(ctx context.Context, email string) (*entities.Company, error)
	GetByInstagramID(ctx context.Context, instagramID string) (*entities.Company, error)
	Update(ctx context.Context, id string, u entities.CompanyUpdate) (*entities.Company, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// Delete removes the company together with every tenant-scoped record.
	Delete(ctx context.Context, c *entities.Company) error
}

// ChatHistoryStore is the shared message log. Every method is scoped by the
// tenant's instagram id.
type ChatHistoryStore interface {
	Insert(ctx context.Context, m *entities.ChatHistory) error
	List(ctx context.Context, companyInstagramID string, p entities.Page) ([]entities.ChatHistory, int64, error)
	CountByCompany(ctx context.Context, companyInstagramID string) (int64, error)
	CountCounterparts(ctx context.Context, companyInstagramID string) (int64, error)
	Recent(ctx context.Context, companyInstagramID string, limit int) ([]entities.ChatHistory, error)
	Breakdown(ctx context.Context, companyInstagramID, ownerID string) (entities.MessageBreakdown, error)
}

type AppointmentStore interface {
	Create(ctx context.Context, a *entities.Appointment) error
	GetByID(ctx context.Context, companyInstagramID, id string) (*entities.Appointment, error)
	ListByCompany(ctx context.Context, companyInstagramID string) ([]entities.Appointment, error)
	Update(ctx context.Context, a *entities.Appointment) error
}

type ProductDetailsStore interface {
	Create(ctx context.Context, d *entities.ProductDetails) error
	CreateMany(ctx context.Context, ds []entities.ProductDetails) error
	List(ctx context.Context, companyInstagramID string, p entities.Page) ([]entities.ProductDetails, int64, error)
}

// Notification is an operator-facing message.
type Notification struct {
	Subject string
	Body    string
}

// Notifier delivers operator notifications (email, Telegram).
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Stores bundles one backend's repositories.
type Stores struct {
	Companies      CompanyStore
	ChatHistory    ChatHistoryStore
	Appointments   AppointmentStore
	ProductDetails ProductDetailsStore
}

// NotificationDispatcher delivers notifications without blocking the caller.
type NotificationDispatcher interface {
	Dispatch(n Notification)
}
