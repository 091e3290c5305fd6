package models

import "testing"

func TestPasswordSetAndMatches(t *testing.T) {
	var p Password
	if err := p.Set("correct horse battery"); err != nil {
		t.Fatalf("Set() returned error: %v", err)
	}
	if p.Hash == "" || p.Hash == "correct horse battery" {
		t.Fatal("expected a non-empty hash distinct from the plaintext")
	}

	ok, err := p.Matches("correct horse battery")
	if err != nil {
		t.Fatalf("Matches() returned error: %v", err)
	}
	if !ok {
		t.Error("expected the correct password to match")
	}

	ok, err = p.Matches("wrong password")
	if err != nil {
		t.Fatalf("Matches() returned error: %v", err)
	}
	if ok {
		t.Error("expected the wrong password not to match")
	}
}

func TestRoleFacility(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleHospital, true},
		{RoleBloodBank, true},
		{RoleDonor, false},
		{RoleRegulator, false},
		{RoleAdmin, false},
	}

	for _, tt := range tests {
		if got := tt.role.Facility(); got != tt.want {
			t.Errorf("Facility(%s) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []Role{RoleDonor, RoleBloodBank, RoleHospital, RoleRegulator, RoleAdmin} {
		if !ValidRole(r) {
			t.Errorf("expected %s to be valid", r)
		}
	}
	if ValidRole("manager") {
		t.Error("expected 'manager' to be invalid")
	}
}
