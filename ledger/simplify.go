package ledger

import (
	"fmt"
	"sort"
)

// Instruction directs one user to pay another a specific amount.
type Instruction struct {
	FromUserID  string
	ToUserID    string
	AmountCents int64
}

type party struct {
	userID    string
	remaining int64
}

// Simplify collapses a balance map into payment instructions that drive
// every balance to exactly zero.
//
// The algorithm is greedy: users are split into creditors and debtors,
// sorted by user id so output is deterministic, and the head of each list
// is matched for min(creditor, debtor) until both lists drain. It emits at
// most creditors+debtors-1 instructions. This is a heuristic, not a
// minimum-cardinality settlement: finding the fewest possible transactions
// is a partition-style combinatorial problem, and the greedy result is the
// deliberate tractability trade-off.
//
// Balances must sum to zero within Epsilon; otherwise Simplify fails with
// ErrUnbalancedLedger rather than produce a misleading partial settlement.
// An empty or already-settled map yields an empty list.
func Simplify(balances map[string]int64) ([]Instruction, error) {
	var sum int64
	for _, b := range balances {
		sum += b
	}
	if sum > Epsilon || sum < -Epsilon {
		return nil, fmt.Errorf("%w: balances sum to %d cents, want 0", ErrUnbalancedLedger, sum)
	}

	var creditors, debtors []party
	for userID, b := range balances {
		switch {
		case b > 0:
			creditors = append(creditors, party{userID: userID, remaining: b})
		case b < 0:
			debtors = append(debtors, party{userID: userID, remaining: -b})
		}
	}
	sort.Slice(creditors, func(i, j int) bool { return creditors[i].userID < creditors[j].userID })
	sort.Slice(debtors, func(i, j int) bool { return debtors[i].userID < debtors[j].userID })

	instructions := []Instruction{}
	for len(debtors) > 0 && len(creditors) > 0 {
		debtor := &debtors[0]
		creditor := &creditors[0]

		amount := debtor.remaining
		if creditor.remaining < amount {
			amount = creditor.remaining
		}

		instructions = append(instructions, Instruction{
			FromUserID:  debtor.userID,
			ToUserID:    creditor.userID,
			AmountCents: amount,
		})

		debtor.remaining -= amount
		creditor.remaining -= amount
		if debtor.remaining == 0 {
			debtors = debtors[1:]
		}
		if creditor.remaining == 0 {
			creditors = creditors[1:]
		}
	}
	return instructions, nil
}
