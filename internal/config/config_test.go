package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ServiceName != "hemotrackr-api" {
		t.Errorf("ServiceName = %q, want %q", cfg.ServiceName, "hemotrackr-api")
	}
	if cfg.AppPort != 8080 {
		t.Errorf("AppPort = %d, want 8080", cfg.AppPort)
	}
	if cfg.MySQLHost != "127.0.0.1" {
		t.Errorf("MySQLHost = %q, want 127.0.0.1", cfg.MySQLHost)
	}
	if cfg.RequestExpirySweepMinutes != 60 {
		t.Errorf("RequestExpirySweepMinutes = %d, want 60", cfg.RequestExpirySweepMinutes)
	}
	if cfg.DefaultShippingRate != 5000 {
		t.Errorf("DefaultShippingRate = %v, want 5000", cfg.DefaultShippingRate)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("MYSQL_DB", "hemotrackr_test")
	t.Setenv("DEFAULT_SHIPPING_RATE", "7500")

	cfg := Load()

	if cfg.AppPort != 9090 {
		t.Errorf("AppPort = %d, want 9090", cfg.AppPort)
	}
	if cfg.MySQLDB != "hemotrackr_test" {
		t.Errorf("MySQLDB = %q, want hemotrackr_test", cfg.MySQLDB)
	}
	if cfg.DefaultShippingRate != 7500 {
		t.Errorf("DefaultShippingRate = %v, want 7500", cfg.DefaultShippingRate)
	}
}
