package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleDonor     Role = "donor"
	RoleBloodBank Role = "blood_bank"
	RoleHospital  Role = "hospital"
	RoleRegulator Role = "regulator"
	RoleAdmin     Role = "administrator"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleDonor, RoleBloodBank, RoleHospital, RoleRegulator, RoleAdmin:
		return true
	default:
		return false
	}
}

// Facility reports whether the role may issue blood requests.
func (r Role) Facility() bool {
	return r == RoleHospital || r == RoleBloodBank
}

// User Model with Pointers for Nullable Fields
type User struct {
	ID           int64  `json:"id" db:"id"`
	Role         Role   `json:"role" db:"role"`
	Status       string `json:"status" db:"status"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	FullName     string `json:"fullName" db:"full_name"`
	PhoneNumber  string `json:"phoneNumber" db:"phone_number"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
	Version   int       `json:"-" db:"version"`

	// --- Organization Fields (hospital / blood bank) ---
	FacilityName  *string `json:"facilityName,omitempty" db:"facility_name"`
	LicenseNumber *string `json:"licenseNumber,omitempty" db:"license_number"`
	AddressLine   *string `json:"addressLine,omitempty" db:"address_line"`
	City          *string `json:"city,omitempty" db:"city"`
	State         *string `json:"state,omitempty" db:"state"`

	// --- Donor Fields ---
	BloodGroup *string `json:"bloodGroup,omitempty" db:"blood_group"`
	Genotype   *string `json:"genotype,omitempty" db:"genotype"`
}

// Password Helper (Standard)
type Password struct {
	Plaintext *string
	Hash      string
}

func (p *Password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Hash = string(hash)
	p.Plaintext = &plaintextPassword
	return nil
}

func (p *Password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(p.Hash), []byte(plaintextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
