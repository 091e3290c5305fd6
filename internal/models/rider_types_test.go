package models

import "testing"

func TestValidVehicleType(t *testing.T) {
	for _, v := range []VehicleType{VehicleBike, VehicleCar, VehicleVan} {
		if !ValidVehicleType(v) {
			t.Errorf("ValidVehicleType(%q) = false, want true", v)
		}
	}
	for _, v := range []VehicleType{"truck", "BIKE", ""} {
		if ValidVehicleType(v) {
			t.Errorf("ValidVehicleType(%q) = true, want false", v)
		}
	}
}

func TestRiderStatusDispatchable(t *testing.T) {
	if !RiderAvailable.Dispatchable() {
		t.Error("an Available rider should be dispatchable")
	}

	// A rider mid-delivery or offline must never be booked again, even if
	// an earlier assignment already attached them to another offer.
	for _, s := range []RiderStatus{RiderOnDelivery, RiderOffline} {
		if s.Dispatchable() {
			t.Errorf("Dispatchable() = true for status %q, want false", s)
		}
	}
}

func TestRiderShippingRateKey(t *testing.T) {
	r := Rider{VehicleType: VehicleVan}
	if got := r.ShippingRateKey(); got != "shipping_rate_van" {
		t.Errorf("ShippingRateKey() = %q, want %q", got, "shipping_rate_van")
	}
}
