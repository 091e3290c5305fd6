package models

import "testing"

func TestRequestStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    RequestStatus
		to      RequestStatus
		allowed bool
	}{
		{"pending to accepted", RequestPending, RequestAccepted, true},
		{"pending to fulfilled (donor path)", RequestPending, RequestFulfilled, true},
		{"pending to rejected", RequestPending, RequestRejected, true},
		{"pending to cancelled", RequestPending, RequestCancelled, true},
		{"pending cannot skip to in-fulfillment", RequestPending, RequestInFulfillment, false},
		{"accepted to in-fulfillment", RequestAccepted, RequestInFulfillment, true},
		{"accepted cannot be cancelled", RequestAccepted, RequestCancelled, false},
		{"accepted cannot jump to fulfilled", RequestAccepted, RequestFulfilled, false},
		{"in-fulfillment to fulfilled", RequestInFulfillment, RequestFulfilled, true},
		{"fulfilled is terminal", RequestFulfilled, RequestPending, false},
		{"cancelled is terminal", RequestCancelled, RequestAccepted, false},
		{"rejected is terminal", RequestRejected, RequestPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.allowed {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestRequestStatusTerminal(t *testing.T) {
	terminal := []RequestStatus{RequestFulfilled, RequestRejected, RequestCancelled}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}

	open := []RequestStatus{RequestPending, RequestAccepted, RequestInFulfillment}
	for _, s := range open {
		if s.Terminal() {
			t.Errorf("expected %s not to be terminal", s)
		}
	}
}

func TestRequestStatusCancellable(t *testing.T) {
	// Only a Pending request may be cancelled by its issuer.
	for _, s := range []RequestStatus{RequestPending, RequestAccepted, RequestInFulfillment,
		RequestFulfilled, RequestRejected, RequestCancelled} {
		want := s == RequestPending
		if got := s.Cancellable(); got != want {
			t.Errorf("Cancellable(%s) = %v, want %v", s, got, want)
		}
	}
}

func TestValidRequestStatus(t *testing.T) {
	for _, s := range []RequestStatus{RequestPending, RequestAccepted, RequestInFulfillment,
		RequestFulfilled, RequestRejected, RequestCancelled} {
		if !ValidRequestStatus(s) {
			t.Errorf("expected %s to be valid", s)
		}
	}

	// The old, inconsistent vocabulary must not leak back in.
	for _, s := range []RequestStatus{"Approved", "Completed", "Processing", ""} {
		if ValidRequestStatus(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestValidBloodGroup(t *testing.T) {
	for _, bg := range []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"} {
		if !ValidBloodGroup(bg) {
			t.Errorf("expected %s to be valid", bg)
		}
	}
	for _, bg := range []string{"C+", "ab+", "O", ""} {
		if ValidBloodGroup(bg) {
			t.Errorf("expected %q to be invalid", bg)
		}
	}
}

func TestValidGenotype(t *testing.T) {
	for _, g := range []string{"AA", "AS", "SS", "AC"} {
		if !ValidGenotype(g) {
			t.Errorf("expected %s to be valid", g)
		}
	}
	if ValidGenotype("SC") || ValidGenotype("") {
		t.Error("expected unknown genotypes to be invalid")
	}
}

func TestRequestSourceGates(t *testing.T) {
	tests := []struct {
		source RequestSource
		banks  bool
		donors bool
	}{
		{SourceDonors, false, true},
		{SourceBloodBanks, true, false},
		{SourceBoth, true, true},
	}

	for _, tt := range tests {
		if got := tt.source.AcceptsBankOffers(); got != tt.banks {
			t.Errorf("AcceptsBankOffers(%s) = %v, want %v", tt.source, got, tt.banks)
		}
		if got := tt.source.AcceptsDonors(); got != tt.donors {
			t.Errorf("AcceptsDonors(%s) = %v, want %v", tt.source, got, tt.donors)
		}
	}
}

func TestValidUrgencyLevel(t *testing.T) {
	for _, u := range []UrgencyLevel{UrgencyRoutine, UrgencyUrgent, UrgencyCritical} {
		if !ValidUrgencyLevel(u) {
			t.Errorf("expected %s to be valid", u)
		}
	}
	if ValidUrgencyLevel("Emergency") {
		t.Error("expected 'Emergency' to be invalid")
	}
}
