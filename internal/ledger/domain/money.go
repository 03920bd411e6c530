package ledger

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is a fixed-point currency amount in cents.
type Money int64

// Rate is a monthly interest rate in hundredths of a percent
// (550 means 5.50% per month).
type Rate int64

// ParseMoney parses a decimal string with up to two fraction digits
// ("1000", "1000.5", "1000.50", "-25.75") into cents. Only digits, an
// optional leading minus and a single decimal point are accepted.
func ParseMoney(value string) (Money, error) {
	value = strings.TrimSpace(value)
	negative := strings.HasPrefix(value, "-")
	if negative {
		value = value[1:]
	}
	whole, frac, hasFrac := strings.Cut(value, ".")
	if whole == "" && frac == "" {
		return 0, ErrInvalidAmount
	}
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) {
		return 0, ErrInvalidAmount
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	var cents int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 || !isDigits(frac) {
			return 0, ErrInvalidAmount
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, ErrInvalidAmount
		}
		if len(frac) == 1 {
			cents *= 10
		}
	}
	if units > (math.MaxInt64-cents)/100 {
		return 0, ErrInvalidAmount
	}
	total := units*100 + cents
	if negative {
		total = -total
	}
	return Money(total), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// ParseRate parses a percentage string with up to two fraction digits
// ("5", "5.5", "5.50") into hundredths of a percent.
func ParseRate(value string) (Rate, error) {
	m, err := ParseMoney(value)
	if err != nil {
		return 0, ErrInvalidRate
	}
	if m < 0 {
		return 0, ErrInvalidRate
	}
	return Rate(m), nil
}

// String renders the amount as a plain decimal ("1050.00").
func (m Money) String() string {
	cents := int64(m)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// String renders the rate as a percentage ("5.50").
func (r Rate) String() string {
	return Money(r).String()
}

// MonthlyInterest computes one month of simple interest on a principal,
// rounded half-up to the cent.
func MonthlyInterest(principal Money, rate Rate) Money {
	if principal <= 0 || rate <= 0 {
		return 0
	}
	// principal is cents, rate is percent*100, so divide by 100*100.
	return Money((int64(principal)*int64(rate) + 5000) / 10000)
}
