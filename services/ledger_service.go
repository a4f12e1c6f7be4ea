package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/splitledger/ledger-api/ledger"
	"github.com/splitledger/ledger-api/models"
	"github.com/splitledger/ledger-api/storage"
)

// LedgerService is the read side of the ledger: it pulls a snapshot of a
// group's records and folds it through the ledger core. It never partially
// succeeds; any detected inconsistency aborts the whole computation.
type LedgerService struct {
	store storage.Store
}

func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{store: store}
}

// balances fetches the group snapshot and aggregates it in minor units.
func (s *LedgerService) balances(ctx context.Context, groupID string) (map[string]int64, error) {
	exists, err := s.store.GroupExists(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ledger.ErrGroupNotFound, groupID)
	}

	expenses, err := s.store.ListExpenses(ctx, groupID)
	if err != nil {
		return nil, err
	}
	contributions, err := s.store.ListGroupContributions(ctx, groupID)
	if err != nil {
		return nil, err
	}

	ledgerExpenses := make([]ledger.Expense, len(expenses))
	for i, e := range expenses {
		ledgerExpenses[i] = ledger.Expense{ID: e.ID, PayerID: e.PayerID, AmountCents: e.AmountCents}
	}
	ledgerContributions := make([]ledger.Contribution, len(contributions))
	for i, c := range contributions {
		ledgerContributions[i] = ledger.Contribution{
			ID:          c.ID,
			ExpenseID:   c.ExpenseID,
			UserID:      c.UserID,
			AmountCents: c.AmountCents,
		}
	}

	return ledger.ComputeBalances(ledgerExpenses, ledgerContributions)
}

// GroupBalances returns every member's net position in the group, sorted by
// user id.
func (s *LedgerService) GroupBalances(ctx context.Context, groupID string) ([]models.BalanceEntry, error) {
	balances, err := s.balances(ctx, groupID)
	if err != nil {
		return nil, err
	}

	entries := make([]models.BalanceEntry, 0, len(balances))
	for userID, cents := range balances {
		entries = append(entries, models.BalanceEntry{
			UserID: userID,
			Amount: ledger.FormatAmount(cents),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].UserID < entries[j].UserID })
	return entries, nil
}

// UserBalance returns one user's net position in the group. Users that never
// appear in the ledger have a zero balance.
func (s *LedgerService) UserBalance(ctx context.Context, groupID, userID string) (models.BalanceEntry, error) {
	balances, err := s.balances(ctx, groupID)
	if err != nil {
		return models.BalanceEntry{}, err
	}
	return models.BalanceEntry{
		UserID: userID,
		Amount: ledger.FormatAmount(balances[userID]),
	}, nil
}

// SimplifiedDebts returns the payment instructions that settle the group.
func (s *LedgerService) SimplifiedDebts(ctx context.Context, groupID string) ([]models.SettlementInstruction, error) {
	balances, err := s.balances(ctx, groupID)
	if err != nil {
		return nil, err
	}

	instructions, err := ledger.Simplify(balances)
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", groupID, err)
	}

	result := make([]models.SettlementInstruction, len(instructions))
	for i, ins := range instructions {
		result[i] = models.SettlementInstruction{
			From:   ins.FromUserID,
			To:     ins.ToUserID,
			Amount: ledger.FormatAmount(ins.AmountCents),
		}
	}
	return result, nil
}
