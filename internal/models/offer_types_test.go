package models

import (
	"database/sql"
	"testing"
)

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name        string
		productFee  float64
		shippingFee float64
		cardCharge  float64
		want        float64
	}{
		{"all components", 6000, 2000, 0, 8000},
		{"with card charge", 6000, 5000, 150, 11150},
		{"zero everything", 0, 0, 0, 0},
		{"product only", 2500, 0, 0, 2500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeTotal(tt.productFee, tt.shippingFee, tt.cardCharge); got != tt.want {
				t.Errorf("ComputeTotal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecomputeTotal(t *testing.T) {
	o := Offer{ProductFee: 6000, ShippingFee: 2000, CardCharge: 0}
	o.RecomputeTotal()
	if o.TotalAmount != 8000 {
		t.Errorf("TotalAmount = %v, want 8000", o.TotalAmount)
	}

	// Re-assigning a rider changes the shipping fee; the total must follow.
	o.ShippingFee = 5000
	o.RecomputeTotal()
	if o.TotalAmount != 11000 {
		t.Errorf("TotalAmount after fee change = %v, want 11000", o.TotalAmount)
	}
}

func TestValidateOfferUnits(t *testing.T) {
	base := BloodRequest{UnitsNeeded: 10}
	withMin := BloodRequest{
		UnitsNeeded:         10,
		MinUnitsBankCanSend: sql.NullInt64{Int64: 3, Valid: true},
	}

	tests := []struct {
		name    string
		units   int
		req     *BloodRequest
		wantErr error
	}{
		{"within bounds", 5, &base, nil},
		{"exactly the need", 10, &base, nil},
		{"zero units", 0, &base, ErrUnitsNotPositive},
		{"negative units", -1, &base, ErrUnitsNotPositive},
		{"exceeds the need", 11, &base, ErrUnitsExceedNeed},
		{"meets the minimum", 3, &withMin, nil},
		{"below the minimum", 2, &withMin, ErrUnitsBelowMin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateOfferUnits(tt.units, tt.req); err != tt.wantErr {
				t.Errorf("ValidateOfferUnits(%d) = %v, want %v", tt.units, err, tt.wantErr)
			}
		})
	}
}

func TestValidOfferStatus(t *testing.T) {
	for _, s := range []OfferStatus{OfferPending, OfferAccepted, OfferRejected} {
		if !ValidOfferStatus(s) {
			t.Errorf("expected %s to be valid", s)
		}
	}
	if ValidOfferStatus("Withdrawn") {
		t.Error("expected 'Withdrawn' to be invalid")
	}
}
