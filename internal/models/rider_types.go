package models

import "time"

type VehicleType string

const (
	VehicleBike VehicleType = "bike"
	VehicleCar  VehicleType = "car"
	VehicleVan  VehicleType = "van"
)

func ValidVehicleType(v VehicleType) bool {
	switch v {
	case VehicleBike, VehicleCar, VehicleVan:
		return true
	default:
		return false
	}
}

type RiderStatus string

const (
	RiderAvailable  RiderStatus = "Available"
	RiderOnDelivery RiderStatus = "On Delivery"
	RiderOffline    RiderStatus = "Offline"
)

func ValidRiderStatus(s RiderStatus) bool {
	switch s {
	case RiderAvailable, RiderOnDelivery, RiderOffline:
		return true
	default:
		return false
	}
}

// Dispatchable reports whether a rider in this status can be booked for a
// delivery. A rider already On Delivery (or Offline) must never be sent
// out again until released.
func (s RiderStatus) Dispatchable() bool {
	return s == RiderAvailable
}

// Rider is the model for the 'riders' table
type Rider struct {
	ID          int64       `json:"id" db:"id"`
	FullName    string      `json:"fullName" db:"full_name"`
	PhoneNumber string      `json:"phoneNumber" db:"phone_number"`
	VehicleType VehicleType `json:"vehicleType" db:"vehicle_type"`
	Status      RiderStatus `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// ShippingRateKey returns the settings key holding the flat delivery rate
// for this rider's vehicle class.
func (r *Rider) ShippingRateKey() string {
	return "shipping_rate_" + string(r.VehicleType)
}
