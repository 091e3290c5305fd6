package models

import (
	"database/sql"
	"time"
)

type RequestType string

const (
	RequestTypeBlood      RequestType = "Blood"
	RequestTypePlatelets  RequestType = "Platelets"
	RequestTypeBoneMarrow RequestType = "Bone Marrow"
)

func ValidRequestType(t RequestType) bool {
	switch t {
	case RequestTypeBlood, RequestTypePlatelets, RequestTypeBoneMarrow:
		return true
	default:
		return false
	}
}

type RequestSource string

const (
	SourceDonors     RequestSource = "donors"
	SourceBloodBanks RequestSource = "blood_banks"
	SourceBoth       RequestSource = "both"
)

func ValidRequestSource(s RequestSource) bool {
	switch s {
	case SourceDonors, SourceBloodBanks, SourceBoth:
		return true
	default:
		return false
	}
}

// AcceptsBankOffers reports whether blood banks may bid on a request
// with this source.
func (s RequestSource) AcceptsBankOffers() bool {
	return s == SourceBloodBanks || s == SourceBoth
}

// AcceptsDonors reports whether donor appointments may fulfil a request
// with this source.
func (s RequestSource) AcceptsDonors() bool {
	return s == SourceDonors || s == SourceBoth
}

type UrgencyLevel string

const (
	UrgencyRoutine  UrgencyLevel = "Routine"
	UrgencyUrgent   UrgencyLevel = "Urgent"
	UrgencyCritical UrgencyLevel = "Critical"
)

func ValidUrgencyLevel(u UrgencyLevel) bool {
	switch u {
	case UrgencyRoutine, UrgencyUrgent, UrgencyCritical:
		return true
	default:
		return false
	}
}

// RequestStatus is the single closed status vocabulary for blood requests.
// Every consumer (handlers, workers, dashboards) goes through this set.
type RequestStatus string

const (
	RequestPending       RequestStatus = "Pending"
	RequestAccepted      RequestStatus = "Accepted"
	RequestInFulfillment RequestStatus = "InFulfillment"
	RequestFulfilled     RequestStatus = "Fulfilled"
	RequestRejected      RequestStatus = "Rejected"
	RequestCancelled     RequestStatus = "Cancelled"
)

func ValidRequestStatus(s RequestStatus) bool {
	switch s {
	case RequestPending, RequestAccepted, RequestInFulfillment,
		RequestFulfilled, RequestRejected, RequestCancelled:
		return true
	default:
		return false
	}
}

// requestTransitions is the full lifecycle:
//
//	Pending -> Accepted (offer accepted) | Fulfilled (donor donation completed)
//	        -> Rejected (regulator stop) | Cancelled (issuer or expiry)
//	Accepted -> InFulfillment (winning bank dispatches)
//	InFulfillment -> Fulfilled (issuer confirms delivery)
var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestPending:       {RequestAccepted, RequestFulfilled, RequestRejected, RequestCancelled},
	RequestAccepted:      {RequestInFulfillment},
	RequestInFulfillment: {RequestFulfilled},
}

// CanTransition reports whether the state machine allows moving from s to next.
func (s RequestStatus) CanTransition(next RequestStatus) bool {
	for _, allowed := range requestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s RequestStatus) Terminal() bool {
	return len(requestTransitions[s]) == 0
}

// Cancellable reports whether the issuer may still cancel. Once an offer
// has been accepted the supplying bank is committed, so only Pending
// requests can be cancelled.
func (s RequestStatus) Cancellable() bool {
	return s == RequestPending
}

// BloodRequest is the model for the 'blood_requests' table
type BloodRequest struct {
	ID                  int64          `json:"id" db:"id"`
	Reference           string         `json:"reference" db:"reference"` // public tracking code
	RequesterID         int64          `json:"requesterId" db:"requester_id"`
	Type                RequestType    `json:"type" db:"type"`
	BloodGroup          sql.NullString `json:"bloodGroup,omitempty" db:"blood_group"`
	Genotype            sql.NullString `json:"genotype,omitempty" db:"genotype"`
	UnitsNeeded         int            `json:"unitsNeeded" db:"units_needed"`
	MinUnitsBankCanSend sql.NullInt64  `json:"minUnitsBankCanSend,omitempty" db:"min_units_bank_can_send"`
	NeededBy            time.Time      `json:"neededBy" db:"needed_by"`
	Urgency             UrgencyLevel   `json:"urgency" db:"urgency"`
	RequestSource       RequestSource  `json:"requestSource" db:"request_source"`
	Status              RequestStatus  `json:"status" db:"status"`
	RejectionReason     sql.NullString `json:"rejectionReason,omitempty" db:"rejection_reason"`
	CreatedAt           time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time      `json:"updatedAt" db:"updated_at"`

	// Populated by handlers for list/detail views, not stored.
	RequesterName string `json:"requesterName,omitempty" db:"-"`
	OfferCount    int    `json:"offerCount" db:"-"`
}

// BloodGroups is the closed set of the 8 standard ABO/Rh types.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

func ValidBloodGroup(bg string) bool {
	for _, g := range BloodGroups {
		if g == bg {
			return true
		}
	}
	return false
}

// Genotypes is the closed set of accepted genotypes.
var Genotypes = []string{"AA", "AS", "SS", "AC"}

func ValidGenotype(g string) bool {
	for _, known := range Genotypes {
		if known == g {
			return true
		}
	}
	return false
}
