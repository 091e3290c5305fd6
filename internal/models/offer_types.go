package models

import (
	"database/sql"
	"errors"
	"time"
)

type OfferStatus string

const (
	OfferPending  OfferStatus = "Pending"
	OfferAccepted OfferStatus = "Accepted"
	OfferRejected OfferStatus = "Rejected"
)

func ValidOfferStatus(s OfferStatus) bool {
	switch s {
	case OfferPending, OfferAccepted, OfferRejected:
		return true
	default:
		return false
	}
}

// Offer is the model for the 'offers' table.
// The rider is a proper foreign key and the supplied unit count is a
// first-class column; 'notes' carries human commentary only.
type Offer struct {
	ID             int64          `json:"id" db:"id"`
	RequestID      int64          `json:"requestId" db:"request_id"`
	OrganizationID int64          `json:"organizationId" db:"organization_id"`
	Units          int            `json:"units" db:"units"`
	ProductFee     float64        `json:"productFee" db:"product_fee"`
	ShippingFee    float64        `json:"shippingFee" db:"shipping_fee"`
	CardCharge     float64        `json:"cardCharge" db:"card_charge"`
	TotalAmount    float64        `json:"totalAmount" db:"total_amount"`
	RiderID        sql.NullInt64  `json:"riderId,omitempty" db:"rider_id"`
	Notes          sql.NullString `json:"notes,omitempty" db:"notes"`
	Status         OfferStatus    `json:"status" db:"status"`
	CreatedAt      time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time      `json:"updatedAt" db:"updated_at"`

	// Populated by handlers for the issuer's review screen, not stored.
	OrganizationName string `json:"organizationName,omitempty" db:"-"`
	RiderName        string `json:"riderName,omitempty" db:"-"`
	RiderVehicle     string `json:"riderVehicle,omitempty" db:"-"`
}

// ComputeTotal returns the only legal total for an offer. total_amount is
// never set independently of its three components.
func ComputeTotal(productFee, shippingFee, cardCharge float64) float64 {
	return productFee + shippingFee + cardCharge
}

// RecomputeTotal refreshes TotalAmount from the fee components.
func (o *Offer) RecomputeTotal() {
	o.TotalAmount = ComputeTotal(o.ProductFee, o.ShippingFee, o.CardCharge)
}

var (
	ErrUnitsNotPositive = errors.New("units must be a positive number")
	ErrUnitsExceedNeed  = errors.New("units exceed the requested amount")
	ErrUnitsBelowMin    = errors.New("units are below the request's minimum")
)

// ValidateOfferUnits checks a proposed unit count against the parent
// request's bounds: 0 < units <= units_needed, and units >= the request's
// minimum when the issuer set one.
func ValidateOfferUnits(units int, req *BloodRequest) error {
	if units <= 0 {
		return ErrUnitsNotPositive
	}
	if units > req.UnitsNeeded {
		return ErrUnitsExceedNeed
	}
	if req.MinUnitsBankCanSend.Valid && int64(units) < req.MinUnitsBankCanSend.Int64 {
		return ErrUnitsBelowMin
	}
	return nil
}
