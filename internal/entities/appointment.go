package entities

import "time"

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Appointment is a booked slot. Date is YYYY-MM-DD, times are HH:MM.
type Appointment struct {
	ID                 string            `json:"_id" bson:"_id"`
	Name               string            `json:"name" bson:"name"`
	Phone              string            `json:"phone" bson:"phone"`
	Email              string            `json:"email,omitempty" bson:"email,omitempty"`
	UserInstagramID    string            `json:"user_instagram_id" bson:"user_instagram_id"`
	CompanyInstagramID string            `json:"company_instagram_id" bson:"company_instagram_id"`
	Date               string            `json:"date" bson:"date"`
	StartTime          string            `json:"startTime" bson:"start_time"`
	EndTime            string            `json:"endTime,omitempty" bson:"end_time,omitempty"`
	Service            string            `json:"service" bson:"service"`
	Status             AppointmentStatus `json:"status" bson:"status"`
	Notes              string            `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt          time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at" bson:"updated_at"`
}
