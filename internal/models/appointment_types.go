package models

import (
	"database/sql"
	"time"
)

type AppointmentType string

const (
	AppointmentWalkIn    AppointmentType = "Walk-in"
	AppointmentScheduled AppointmentType = "Scheduled"
)

func ValidAppointmentType(t AppointmentType) bool {
	switch t {
	case AppointmentWalkIn, AppointmentScheduled:
		return true
	default:
		return false
	}
}

type AppointmentStatus string

const (
	ApptScheduled AppointmentStatus = "Scheduled"
	ApptConfirmed AppointmentStatus = "Confirmed"
	ApptCancelled AppointmentStatus = "Cancelled"
	ApptCompleted AppointmentStatus = "Completed"
	ApptNoShow    AppointmentStatus = "No-Show"
)

func ValidAppointmentStatus(s AppointmentStatus) bool {
	switch s {
	case ApptScheduled, ApptConfirmed, ApptCancelled, ApptCompleted, ApptNoShow:
		return true
	default:
		return false
	}
}

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	ApptScheduled: {ApptConfirmed, ApptCancelled},
	ApptConfirmed: {ApptCompleted, ApptNoShow, ApptCancelled},
}

// CanTransition reports whether facility staff may move an appointment
// from s to next.
func (s AppointmentStatus) CanTransition(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s AppointmentStatus) Terminal() bool {
	return len(appointmentTransitions[s]) == 0
}

// Appointment is the model for the 'appointments' table
type Appointment struct {
	ID              int64             `json:"id" db:"id"`
	DonorID         int64             `json:"donorId" db:"donor_id"`
	OrganizationID  int64             `json:"organizationId" db:"organization_id"`
	RequestID       sql.NullInt64     `json:"requestId,omitempty" db:"request_id"`
	AppointmentDate time.Time         `json:"appointmentDate" db:"appointment_date"`
	Type            AppointmentType   `json:"type" db:"type"`
	DonationType    RequestType       `json:"donationType" db:"donation_type"`
	Status          AppointmentStatus `json:"status" db:"status"`
	CreatedAt       time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time         `json:"updatedAt" db:"updated_at"`

	// Populated by handlers for list views, not stored.
	DonorName    string `json:"donorName,omitempty" db:"-"`
	FacilityName string `json:"facilityName,omitempty" db:"-"`
}
