package ledger

import "fmt"

// Expense carries the minimal expense fields the aggregator needs.
type Expense struct {
	ID          string
	PayerID     string
	AmountCents int64
}

// Contribution carries the minimal contribution fields the aggregator needs.
type Contribution struct {
	ID          string
	ExpenseID   string
	UserID      string
	AmountCents int64
}

// ComputeBalances folds a snapshot of a group's expenses and contributions
// into a net balance per user, in minor units. Positive means the user is
// owed money, negative means the user owes money.
//
// Every expense credits its payer with the full amount; every contribution
// debits its user with their share. For a ledger where each expense's
// contributions sum to the expense amount, the resulting balances sum to
// zero (money paid out equals money owed).
//
// ComputeBalances verifies that invariant per expense, within Epsilon, and
// fails with ErrInvalidLedgerState naming the offending expense instead of
// returning a best-effort balance sheet.
func ComputeBalances(expenses []Expense, contributions []Contribution) (map[string]int64, error) {
	byExpense := make(map[string][]Contribution, len(expenses))
	for _, c := range contributions {
		byExpense[c.ExpenseID] = append(byExpense[c.ExpenseID], c)
	}

	balances := make(map[string]int64, len(contributions))
	for _, e := range expenses {
		var contributed int64
		for _, c := range byExpense[e.ID] {
			contributed += c.AmountCents
		}
		if diff := contributed - e.AmountCents; diff > Epsilon || diff < -Epsilon {
			return nil, fmt.Errorf("%w: expense %s amount is %d cents but its contributions sum to %d",
				ErrInvalidLedgerState, e.ID, e.AmountCents, contributed)
		}

		balances[e.PayerID] += e.AmountCents
		for _, c := range byExpense[e.ID] {
			balances[c.UserID] -= c.AmountCents
		}
	}
	return balances, nil
}
