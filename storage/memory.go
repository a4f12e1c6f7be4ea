package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/splitledger/ledger-api/models"
)

var (
	errSimulatedFailure = errors.New("simulated write failure")
	errDuplicateID      = errors.New("duplicate record id")
)

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory ledger store. It backs the service and
// handler tests and honors the same atomicity contract as the postgres
// store: a multi-record write either lands completely or not at all.
type MemoryStore struct {
	mu            sync.Mutex
	groups        map[string]bool
	expenses      map[string]models.Expense
	contributions map[string]models.Contribution

	// failWrites makes the next writes fail before any mutation, to
	// exercise the no-partial-write guarantee in tests.
	failWrites bool
}

func NewMemoryStore(groupIDs ...string) *MemoryStore {
	groups := make(map[string]bool, len(groupIDs))
	for _, id := range groupIDs {
		groups[id] = true
	}
	return &MemoryStore{
		groups:        groups,
		expenses:      make(map[string]models.Expense),
		contributions: make(map[string]models.Contribution),
	}
}

// FailWrites toggles simulated write failure.
func (s *MemoryStore) FailWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = fail
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) GroupExists(_ context.Context, groupID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groups[groupID], nil
}

func (s *MemoryStore) ListExpenses(_ context.Context, groupID string) ([]models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expenses []models.Expense
	for _, e := range s.expenses {
		if e.GroupID == groupID {
			expenses = append(expenses, e)
		}
	}
	sort.Slice(expenses, func(i, j int) bool { return expenses[i].ID < expenses[j].ID })
	return expenses, nil
}

func (s *MemoryStore) ListGroupContributions(_ context.Context, groupID string) ([]models.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var contributions []models.Contribution
	for _, c := range s.contributions {
		if e, ok := s.expenses[c.ExpenseID]; ok && e.GroupID == groupID {
			contributions = append(contributions, c)
		}
	}
	sort.Slice(contributions, func(i, j int) bool { return contributions[i].ID < contributions[j].ID })
	return contributions, nil
}

func (s *MemoryStore) ListExpenseContributions(_ context.Context, expenseID string) ([]models.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var contributions []models.Contribution
	for _, c := range s.contributions {
		if c.ExpenseID == expenseID {
			contributions = append(contributions, c)
		}
	}
	sort.Slice(contributions, func(i, j int) bool { return contributions[i].ID < contributions[j].ID })
	return contributions, nil
}

func (s *MemoryStore) ListUserExpenses(_ context.Context, userID string) ([]models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	involved := make(map[string]bool)
	for _, e := range s.expenses {
		if e.PayerID == userID {
			involved[e.ID] = true
		}
	}
	for _, c := range s.contributions {
		if c.UserID == userID {
			involved[c.ExpenseID] = true
		}
	}
	var expenses []models.Expense
	for id := range involved {
		if e, ok := s.expenses[id]; ok {
			expenses = append(expenses, e)
		}
	}
	sort.Slice(expenses, func(i, j int) bool { return expenses[i].ID < expenses[j].ID })
	return expenses, nil
}

func (s *MemoryStore) GetExpense(_ context.Context, expenseID string) (*models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[expenseID]
	if !ok {
		return nil, ErrExpenseNotFound
	}
	return &e, nil
}

func (s *MemoryStore) GetContribution(_ context.Context, contributionID string) (*models.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contributions[contributionID]
	if !ok {
		return nil, ErrContributionNotFound
	}
	return &c, nil
}

func (s *MemoryStore) CreateExpenseWithContributions(_ context.Context, expense *models.Expense, contributions []models.Contribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return wrapStoreErr("create expense with contributions", errSimulatedFailure)
	}
	// Stage everything before touching the maps so a conflict cannot leave
	// a partial write behind.
	if _, exists := s.expenses[expense.ID]; exists {
		return wrapStoreErr("create expense with contributions", errDuplicateID)
	}
	for _, c := range contributions {
		if _, exists := s.contributions[c.ID]; exists {
			return wrapStoreErr("create expense with contributions", errDuplicateID)
		}
	}
	s.expenses[expense.ID] = *expense
	for _, c := range contributions {
		s.contributions[c.ID] = c
	}
	return nil
}

func (s *MemoryStore) ReplaceExpenseWithContributions(_ context.Context, expense *models.Expense, contributions []models.Contribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return wrapStoreErr("replace expense with contributions", errSimulatedFailure)
	}
	if _, exists := s.expenses[expense.ID]; !exists {
		return ErrExpenseNotFound
	}
	for id, c := range s.contributions {
		if c.ExpenseID == expense.ID {
			delete(s.contributions, id)
		}
	}
	s.expenses[expense.ID] = *expense
	for _, c := range contributions {
		s.contributions[c.ID] = c
	}
	return nil
}

func (s *MemoryStore) DeleteExpense(_ context.Context, expenseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return wrapStoreErr("delete expense", errSimulatedFailure)
	}
	if _, exists := s.expenses[expenseID]; !exists {
		return ErrExpenseNotFound
	}
	delete(s.expenses, expenseID)
	for id, c := range s.contributions {
		if c.ExpenseID == expenseID {
			delete(s.contributions, id)
		}
	}
	return nil
}

func (s *MemoryStore) UpdateContributionAmount(_ context.Context, contributionID string, amountCents int64, percentage float64) (*models.Contribution, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return nil, false, wrapStoreErr("update contribution amount", errSimulatedFailure)
	}
	c, ok := s.contributions[contributionID]
	if !ok {
		return nil, false, ErrContributionNotFound
	}
	if c.Status != models.ContributionPending {
		return &c, false, nil
	}
	c.AmountCents = amountCents
	c.Percentage = percentage
	c.UpdatedAt = time.Now()
	s.contributions[contributionID] = c
	return &c, true, nil
}

func (s *MemoryStore) UpdateContributionStatus(_ context.Context, contributionID, from, to string) (*models.Contribution, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return nil, false, wrapStoreErr("update contribution status", errSimulatedFailure)
	}
	c, ok := s.contributions[contributionID]
	if !ok {
		return nil, false, ErrContributionNotFound
	}
	if c.Status != from {
		return &c, false, nil
	}
	c.Status = to
	c.UpdatedAt = time.Now()
	s.contributions[contributionID] = c
	return &c, true, nil
}
