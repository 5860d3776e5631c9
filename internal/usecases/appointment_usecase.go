package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"instadm/internal/entities"
	"instadm/internal/interfaces"
)

type CreateAppointmentInput struct {
	Name               string `json:"name" validate:"required"`
	Phone              string `json:"phone" validate:"required,phone"`
	Email              string `json:"email" validate:"omitempty,email"`
	UserInstagramID    string `json:"user_instagram_id" validate:"required"`
	CompanyInstagramID string `json:"company_instagram_id" validate:"required"`
	Date               string `json:"date" validate:"required,date"`
	StartTime          string `json:"startTime" validate:"required,clock"`
	EndTime            string `json:"endTime" validate:"omitempty,clock"`
	Service            string `json:"service" validate:"required"`
	Status             string `json:"status" validate:"omitempty,oneof=pending confirmed cancelled"`
	Notes              string `json:"notes"`
}

// UpdateAppointmentInput carries the changed fields. Nil means unchanged.
type UpdateAppointmentInput struct {
	ID        string  `json:"id" validate:"required"`
	Name      *string `json:"name" validate:"omitempty,min=1"`
	Phone     *string `json:"phone" validate:"omitempty,phone"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Date      *string `json:"date" validate:"omitempty,date"`
	StartTime *string `json:"startTime" validate:"omitempty,clock"`
	EndTime   *string `json:"endTime" validate:"omitempty,clock"`
	Service   *string `json:"service" validate:"omitempty,min=1"`
	Status    *string `json:"status" validate:"omitempty,oneof=pending confirmed cancelled"`
	Notes     *string `json:"notes"`
}

type AppointmentUsecase struct {
	appointments interfaces.AppointmentStore
	companies    interfaces.CompanyStore
	dispatcher   interfaces.NotificationDispatcher
}

func NewAppointmentUsecase(appointments interfaces.AppointmentStore, companies interfaces.CompanyStore, dispatcher interfaces.NotificationDispatcher) *AppointmentUsecase {
	return &AppointmentUsecase{appointments: appointments, companies: companies, dispatcher: dispatcher}
}

func (uc *AppointmentUsecase) Create(ctx context.Context, in CreateAppointmentInput) (*entities.Appointment, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.Service = strings.TrimSpace(in.Service)
	if err := validateStruct(in, "Validation failed"); err != nil {
		return nil, err
	}
	if !endAfterStart(in.StartTime, in.EndTime) {
		return nil, endBeforeStartError()
	}

	company, err := uc.companies.GetByInstagramID(ctx, in.CompanyInstagramID)
	if errors.Is(err, entities.ErrNotFound) {
		return nil, entities.NotFound("Company not found")
	}
	if err != nil {
		return nil, err
	}

	status := entities.StatusPending
	if in.Status != "" {
		status = entities.AppointmentStatus(in.Status)
	}
	a := &entities.Appointment{
		Name:               in.Name,
		Phone:              in.Phone,
		Email:              in.Email,
		UserInstagramID:    in.UserInstagramID,
		CompanyInstagramID: in.CompanyInstagramID,
		Date:               in.Date,
		StartTime:          in.StartTime,
		EndTime:            in.EndTime,
		Service:            in.Service,
		Status:             status,
		Notes:              in.Notes,
	}
	if err := uc.appointments.Create(ctx, a); err != nil {
		return nil, err
	}

	uc.dispatcher.Dispatch(appointmentNotification("New appointment", company, a))
	return a, nil
}

// List returns the company's appointments, latest slot first.
func (uc *AppointmentUsecase) List(ctx context.Context, company *entities.Company) ([]entities.Appointment, error) {
	return uc.appointments.ListByCompany(ctx, company.InstagramID)
}

// Update merges the changed fields into an appointment owned by company.
// Appointments of other companies are reported as not found.
func (uc *AppointmentUsecase) Update(ctx context.Context, company *entities.Company, in UpdateAppointmentInput) (*entities.Appointment, error) {
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" {
		return nil, entities.NewValidationError("Appointment id is required")
	}
	in.trim()
	if err := validateStruct(in.withoutCleared(), "Validation failed"); err != nil {
		return nil, err
	}

	a, err := uc.appointments.GetByID(ctx, company.InstagramID, in.ID)
	if errors.Is(err, entities.ErrNotFound) {
		return nil, entities.NotFound("Appointment not found")
	}
	if err != nil {
		return nil, err
	}

	in.apply(a)
	if !endAfterStart(a.StartTime, a.EndTime) {
		return nil, endBeforeStartError()
	}

	if err := uc.appointments.Update(ctx, a); err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil, entities.NotFound("Appointment not found")
		}
		return nil, err
	}

	uc.dispatcher.Dispatch(appointmentNotification("Appointment updated", company, a))
	return a, nil
}

func (in *UpdateAppointmentInput) trim() {
	for _, f := range []**string{&in.Name, &in.Phone, &in.Email, &in.Date, &in.StartTime, &in.EndTime, &in.Service, &in.Notes} {
		if *f != nil {
			v := strings.TrimSpace(**f)
			*f = &v
		}
	}
}

// withoutCleared drops the optional fields set to "" so only real values are
// validated. An empty email or endTime clears the stored value.
func (in UpdateAppointmentInput) withoutCleared() UpdateAppointmentInput {
	for _, f := range []**string{&in.Email, &in.EndTime} {
		if *f != nil && **f == "" {
			*f = nil
		}
	}
	return in
}

func (in UpdateAppointmentInput) apply(a *entities.Appointment) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&a.Name, in.Name)
	set(&a.Phone, in.Phone)
	set(&a.Email, in.Email)
	set(&a.Date, in.Date)
	set(&a.StartTime, in.StartTime)
	set(&a.EndTime, in.EndTime)
	set(&a.Service, in.Service)
	set(&a.Notes, in.Notes)
	if in.Status != nil {
		a.Status = entities.AppointmentStatus(*in.Status)
	}
}

func endBeforeStartError() error {
	return &entities.ValidationError{Message: "Validation failed", Fields: []entities.FieldError{
		{Field: "endTime", Message: "must be after startTime"},
	}}
}

func appointmentNotification(subject string, c *entities.Company, a *entities.Appointment) interfaces.Notification {
	slot := a.Date + " " + a.StartTime
	if a.EndTime != "" {
		slot += "-" + a.EndTime
	}
	return interfaces.Notification{
		Subject: fmt.Sprintf("%s for %s", subject, c.Name),
		Body: fmt.Sprintf("Client: %s\nPhone: %s\nService: %s\nSlot: %s\nStatus: %s\nNotes: %s",
			a.Name, a.Phone, a.Service, slot, a.Status, a.Notes),
	}
}
