package models

// BalanceEntry is one user's net position in a group: positive means they
// are owed money, negative means they owe money. Derived, never persisted.
type BalanceEntry struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
}

// SettlementInstruction directs one member to pay another to reduce group
// debt. Replaying a group's full instruction list against its balances
// drives every balance to zero. Derived, never persisted.
type SettlementInstruction struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}
