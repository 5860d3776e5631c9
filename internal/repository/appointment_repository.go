package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"instadm/internal/entities"
)

const appointmentColumns = `id, name, phone, email, user_instagram_id, company_instagram_id, date,
	start_time, end_time, service, status, notes, created_at, updated_at`

type AppointmentRepository struct {
	db *pgxpool.Pool
}

func NewAppointmentRepository(db *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *entities.Appointment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO appointments (id, name, phone, email, user_instagram_id, company_instagram_id, date,
			start_time, end_time, service, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`, a.ID, a.Name, a.Phone, a.Email, a.UserInstagramID, a.CompanyInstagramID, a.Date,
		a.StartTime, a.EndTime, a.Service, a.Status, a.Notes,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *AppointmentRepository) GetByID(ctx context.Context, companyInstagramID, id string) (*entities.Appointment, error) {
	row := r.db.QueryRow(ctx, "SELECT "+appointmentColumns+" FROM appointments WHERE id = $1 AND company_instagram_id = $2",
		id, companyInstagramID)
	a, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entities.ErrNotFound
	}
	return a, err
}

// ListByCompany returns the tenant's appointments, latest slot first.
func (r *AppointmentRepository) ListByCompany(ctx context.Context, companyInstagramID string) ([]entities.Appointment, error) {
	rows, err := r.db.Query(ctx, "SELECT "+appointmentColumns+` FROM appointments
		WHERE company_instagram_id = $1
		ORDER BY date DESC, start_time DESC`, companyInstagramID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appointments := []entities.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, *a)
	}
	return appointments, rows.Err()
}

func (r *AppointmentRepository) Update(ctx context.Context, a *entities.Appointment) error {
	err := r.db.QueryRow(ctx, `
		UPDATE appointments SET name = $1, phone = $2, email = $3, date = $4, start_time = $5, end_time = $6,
			service = $7, status = $8, notes = $9, updated_at = NOW()
		WHERE id = $10 AND company_instagram_id = $11
		RETURNING updated_at
	`, a.Name, a.Phone, a.Email, a.Date, a.StartTime, a.EndTime, a.Service, a.Status, a.Notes,
		a.ID, a.CompanyInstagramID,
	).Scan(&a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.ErrNotFound
	}
	return err
}

func scanAppointment(row pgx.Row) (*entities.Appointment, error) {
	var a entities.Appointment
	err := row.Scan(&a.ID, &a.Name, &a.Phone, &a.Email, &a.UserInstagramID, &a.CompanyInstagramID, &a.Date,
		&a.StartTime, &a.EndTime, &a.Service, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
