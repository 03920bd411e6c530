package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.MinimumTopup() != 10000 {
		t.Fatalf("minimum topup = %d, want 10000", s.MinimumTopup())
	}
	if s.MinimumWithdrawal() != 50000 {
		t.Fatalf("minimum withdrawal = %d, want 50000", s.MinimumWithdrawal())
	}
	if s.MaxWithdrawalPerDay() != 0 {
		t.Fatalf("daily cap = %d, want 0", s.MaxWithdrawalPerDay())
	}
	if s.DefaultInterestRate() != 500 {
		t.Fatalf("default rate = %d, want 500", s.DefaultInterestRate())
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "minimum_topup: \"250.00\"\nminimum_withdrawal: \"600.00\"\nmax_withdrawal_per_day: \"5000.00\"\ndefault_interest_rate: \"4.25\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write settings file: %v", err)
	}
	t.Setenv("LEDGER_SETTINGS_FILE", path)
	// Env beats the file.
	t.Setenv("LEDGER_MINIMUM_WITHDRAWAL", "750.50")

	s, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.MinimumTopup() != 25000 {
		t.Fatalf("minimum topup = %d, want 25000", s.MinimumTopup())
	}
	if s.MinimumWithdrawal() != 75050 {
		t.Fatalf("minimum withdrawal = %d, want 75050", s.MinimumWithdrawal())
	}
	if s.MaxWithdrawalPerDay() != 500000 {
		t.Fatalf("daily cap = %d, want 500000", s.MaxWithdrawalPerDay())
	}
	if s.DefaultInterestRate() != 425 {
		t.Fatalf("default rate = %d, want 425", s.DefaultInterestRate())
	}
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("LEDGER_MINIMUM_TOPUP", "abc")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed amount")
	}
}
