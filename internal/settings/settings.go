package settings

import (
	"os"

	"gopkg.in/yaml.v3"

	ledger "fundledger/internal/ledger/domain"
)

// Static holds the platform settings the ledger core reads. Values are
// resolved once at startup; the core receives them through the read-only
// provider interface and never re-reads the environment.
type Static struct {
	minimumTopup        ledger.Money
	minimumWithdrawal   ledger.Money
	maxWithdrawalPerDay ledger.Money
	defaultInterestRate ledger.Rate
}

// New constructs a provider with explicit values. Used directly in tests.
func New(minimumTopup, minimumWithdrawal, maxWithdrawalPerDay ledger.Money, defaultInterestRate ledger.Rate) *Static {
	return &Static{
		minimumTopup:        minimumTopup,
		minimumWithdrawal:   minimumWithdrawal,
		maxWithdrawalPerDay: maxWithdrawalPerDay,
		defaultInterestRate: defaultInterestRate,
	}
}

// MinimumTopup returns the top-up floor.
func (s *Static) MinimumTopup() ledger.Money { return s.minimumTopup }

// MinimumWithdrawal returns the withdrawal floor.
func (s *Static) MinimumWithdrawal() ledger.Money { return s.minimumWithdrawal }

// MaxWithdrawalPerDay returns the daily withdrawal cap; zero means no cap.
func (s *Static) MaxWithdrawalPerDay() ledger.Money { return s.maxWithdrawalPerDay }

// DefaultInterestRate returns the platform monthly rate.
func (s *Static) DefaultInterestRate() ledger.Rate { return s.defaultInterestRate }

type fileValues struct {
	MinimumTopup        string `yaml:"minimum_topup"`
	MinimumWithdrawal   string `yaml:"minimum_withdrawal"`
	MaxWithdrawalPerDay string `yaml:"max_withdrawal_per_day"`
	DefaultInterestRate string `yaml:"default_interest_rate"`
}

// Load resolves settings from defaults, an optional yaml file
// (LEDGER_SETTINGS_FILE) and env overrides, in that order.
func Load() (*Static, error) {
	values := fileValues{
		MinimumTopup:        "100.00",
		MinimumWithdrawal:   "500.00",
		MaxWithdrawalPerDay: "0",
		DefaultInterestRate: "5.00",
	}

	if path := os.Getenv("LEDGER_SETTINGS_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, err
		}
	}

	applyEnv(&values.MinimumTopup, "LEDGER_MINIMUM_TOPUP")
	applyEnv(&values.MinimumWithdrawal, "LEDGER_MINIMUM_WITHDRAWAL")
	applyEnv(&values.MaxWithdrawalPerDay, "LEDGER_MAX_WITHDRAWAL_PER_DAY")
	applyEnv(&values.DefaultInterestRate, "LEDGER_DEFAULT_INTEREST_RATE")

	minTopup, err := ledger.ParseMoney(values.MinimumTopup)
	if err != nil {
		return nil, err
	}
	minWithdrawal, err := ledger.ParseMoney(values.MinimumWithdrawal)
	if err != nil {
		return nil, err
	}
	maxPerDay, err := ledger.ParseMoney(values.MaxWithdrawalPerDay)
	if err != nil {
		return nil, err
	}
	rate, err := ledger.ParseRate(values.DefaultInterestRate)
	if err != nil {
		return nil, err
	}
	return New(minTopup, minWithdrawal, maxPerDay, rate), nil
}

func applyEnv(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}
