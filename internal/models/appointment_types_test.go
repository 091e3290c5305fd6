package models

import "testing"

func TestAppointmentStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    AppointmentStatus
		to      AppointmentStatus
		allowed bool
	}{
		{"scheduled to confirmed", ApptScheduled, ApptConfirmed, true},
		{"scheduled to cancelled", ApptScheduled, ApptCancelled, true},
		{"scheduled cannot complete directly", ApptScheduled, ApptCompleted, false},
		{"scheduled cannot no-show directly", ApptScheduled, ApptNoShow, false},
		{"confirmed to completed", ApptConfirmed, ApptCompleted, true},
		{"confirmed to no-show", ApptConfirmed, ApptNoShow, true},
		{"confirmed to cancelled", ApptConfirmed, ApptCancelled, true},
		{"completed is terminal", ApptCompleted, ApptScheduled, false},
		{"no-show is terminal", ApptNoShow, ApptConfirmed, false},
		{"cancelled is terminal", ApptCancelled, ApptConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.allowed {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestAppointmentStatusTerminal(t *testing.T) {
	for _, s := range []AppointmentStatus{ApptCompleted, ApptCancelled, ApptNoShow} {
		if !s.Terminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
	for _, s := range []AppointmentStatus{ApptScheduled, ApptConfirmed} {
		if s.Terminal() {
			t.Errorf("expected %s not to be terminal", s)
		}
	}
}

func TestValidAppointmentType(t *testing.T) {
	if !ValidAppointmentType(AppointmentWalkIn) || !ValidAppointmentType(AppointmentScheduled) {
		t.Error("expected known appointment types to be valid")
	}
	if ValidAppointmentType("Drop-in") {
		t.Error("expected 'Drop-in' to be invalid")
	}
}
