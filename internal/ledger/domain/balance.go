package ledger

// AvailableBalance derives the amount a member may withdraw:
//
//	sum(principal of active+paused investments)
//	+ sum(interest earned of all investments)
//	- sum(amount of pending+approved+paid withdrawals)
//
// Pure function over current state; callers must pass freshly loaded
// records, never a cached snapshot.
func AvailableBalance(investments []Investment, withdrawals []WithdrawalRequest) Money {
	var balance Money
	for i := range investments {
		inv := &investments[i]
		if inv.CountsTowardPrincipal() {
			balance += inv.Principal
		}
		balance += inv.InterestEarned
	}
	for i := range withdrawals {
		if withdrawals[i].HoldsBalance() {
			balance -= withdrawals[i].Amount
		}
	}
	return balance
}
