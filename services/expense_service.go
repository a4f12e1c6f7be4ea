package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/splitledger/ledger-api/ledger"
	"github.com/splitledger/ledger-api/models"
	"github.com/splitledger/ledger-api/storage"
)

// ExpenseService is the write side of the ledger: transactional expense
// creation and the contribution status lifecycle.
type ExpenseService struct {
	store     storage.Store
	directory Directory
}

func NewExpenseService(store storage.Store, directory Directory) *ExpenseService {
	return &ExpenseService{store: store, directory: directory}
}

// authorize allows site admins and group members, in that order of checks.
func (s *ExpenseService) authorize(ctx context.Context, actorID, groupID string) error {
	isAdmin, err := s.directory.IsAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if isAdmin {
		return nil
	}
	isMember, err := s.directory.IsMember(ctx, actorID, groupID)
	if err != nil {
		return err
	}
	if !isMember {
		return fmt.Errorf("%w: user %s is not a member of group %s", ledger.ErrPermissionDenied, actorID, groupID)
	}
	return nil
}

// Create validates and persists an expense and its contributions as one
// atomic unit. Validation failures abort before any write; a write failure
// leaves nothing behind (no expense, no orphan contributions).
func (s *ExpenseService) Create(ctx context.Context, groupID, actorID string, req models.CreateExpenseRequest) (*models.Expense, error) {
	exists, err := s.store.GroupExists(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ledger.ErrGroupNotFound, groupID)
	}

	if err := s.authorize(ctx, actorID, groupID); err != nil {
		return nil, err
	}

	amountCents, err := ledger.ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	if amountCents <= 0 {
		return nil, fmt.Errorf("%w: expense amount must be positive, got %s", ledger.ErrInvalidAmount, req.Amount)
	}

	now := time.Now().UTC()
	expense := &models.Expense{
		ID:          uuid.New().String(),
		GroupID:     groupID,
		PayerID:     req.PayerID,
		AmountCents: amountCents,
		Amount:      ledger.FormatAmount(amountCents),
		Description: req.Description,
		Category:    req.Category,
		CreatedBy:   actorID,
		CreatedAt:   now,
	}

	contributions, err := buildContributions(expense.ID, amountCents, req.Contributions, now)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateExpenseWithContributions(ctx, expense, contributions); err != nil {
		return nil, err
	}

	slog.Info("expense recorded",
		"expense_id", expense.ID,
		"group_id", groupID,
		"payer_id", expense.PayerID,
		"amount", expense.Amount,
		"contributions", len(contributions))

	expense.Contributions = contributions
	return expense, nil
}

// buildContributions validates the contribution inputs and materializes
// fresh PENDING records reconciling against the expense amount.
func buildContributions(expenseID string, amountCents int64, inputs []models.ContributionInput, now time.Time) ([]models.Contribution, error) {
	var contributedCents int64
	contributions := make([]models.Contribution, len(inputs))
	for i, in := range inputs {
		shareCents, err := ledger.ParseAmount(in.Amount)
		if err != nil {
			return nil, err
		}
		if shareCents < 0 {
			return nil, fmt.Errorf("%w: contribution for user %s is negative", ledger.ErrInvalidAmount, in.UserID)
		}
		if in.Percentage < 0 || in.Percentage > 100 {
			return nil, fmt.Errorf("%w: contribution percentage for user %s out of range", ledger.ErrInvalidAmount, in.UserID)
		}
		contributedCents += shareCents
		contributions[i] = models.Contribution{
			ID:          uuid.New().String(),
			ExpenseID:   expenseID,
			UserID:      in.UserID,
			AmountCents: shareCents,
			Amount:      ledger.FormatAmount(shareCents),
			Percentage:  in.Percentage,
			Status:      models.ContributionPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	if diff := contributedCents - amountCents; diff > ledger.Epsilon || diff < -ledger.Epsilon {
		return nil, fmt.Errorf("%w: contributions sum to %s but expense amount is %s",
			ledger.ErrInvalidLedgerState, ledger.FormatAmount(contributedCents), ledger.FormatAmount(amountCents))
	}
	return contributions, nil
}

// ensureMutable refuses expense mutation once any contribution is SETTLED:
// a settled contribution records money that already moved, and rewriting
// the expense under it would corrupt that record.
func (s *ExpenseService) ensureMutable(ctx context.Context, expenseID string) error {
	contributions, err := s.store.ListExpenseContributions(ctx, expenseID)
	if err != nil {
		return err
	}
	for _, c := range contributions {
		if c.Status == models.ContributionSettled {
			return fmt.Errorf("%w: expense %s has a settled contribution (%s)",
				ledger.ErrInvalidTransition, expenseID, c.ID)
		}
	}
	return nil
}

// Update replaces an expense and its full contribution set as one atomic
// unit, under the same validation as Create. Expenses with any settled
// contribution are immutable.
func (s *ExpenseService) Update(ctx context.Context, expenseID, actorID string, req models.CreateExpenseRequest) (*models.Expense, error) {
	existing, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, existing.GroupID); err != nil {
		return nil, err
	}
	if err := s.ensureMutable(ctx, expenseID); err != nil {
		return nil, err
	}

	amountCents, err := ledger.ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	if amountCents <= 0 {
		return nil, fmt.Errorf("%w: expense amount must be positive, got %s", ledger.ErrInvalidAmount, req.Amount)
	}

	now := time.Now().UTC()
	contributions, err := buildContributions(expenseID, amountCents, req.Contributions, now)
	if err != nil {
		return nil, err
	}

	updated := &models.Expense{
		ID:          existing.ID,
		GroupID:     existing.GroupID,
		PayerID:     req.PayerID,
		AmountCents: amountCents,
		Amount:      ledger.FormatAmount(amountCents),
		Description: req.Description,
		Category:    req.Category,
		CreatedBy:   existing.CreatedBy,
		CreatedAt:   existing.CreatedAt,
	}

	if err := s.store.ReplaceExpenseWithContributions(ctx, updated, contributions); err != nil {
		return nil, err
	}

	slog.Info("expense updated",
		"expense_id", expenseID,
		"group_id", existing.GroupID,
		"amount", updated.Amount,
		"actor_id", actorID)

	updated.Contributions = contributions
	return updated, nil
}

// Delete removes an expense and its contributions atomically. Expenses with
// any settled contribution are immutable.
func (s *ExpenseService) Delete(ctx context.Context, expenseID, actorID string) (*models.Expense, error) {
	existing, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, existing.GroupID); err != nil {
		return nil, err
	}
	if err := s.ensureMutable(ctx, expenseID); err != nil {
		return nil, err
	}

	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		return nil, err
	}

	slog.Info("expense deleted",
		"expense_id", expenseID,
		"group_id", existing.GroupID,
		"actor_id", actorID)
	return existing, nil
}

// UpdateContribution adjusts a PENDING contribution's amount and
// percentage. The expense's contributions must still reconcile against its
// amount after the change.
func (s *ExpenseService) UpdateContribution(ctx context.Context, contributionID, actorID string, req models.UpdateContributionRequest) (*models.Contribution, error) {
	contribution, err := s.store.GetContribution(ctx, contributionID)
	if err != nil {
		return nil, err
	}
	expense, err := s.store.GetExpense(ctx, contribution.ExpenseID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, expense.GroupID); err != nil {
		return nil, err
	}

	shareCents, err := ledger.ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	if shareCents < 0 {
		return nil, fmt.Errorf("%w: contribution for user %s is negative", ledger.ErrInvalidAmount, contribution.UserID)
	}
	if req.Percentage < 0 || req.Percentage > 100 {
		return nil, fmt.Errorf("%w: contribution percentage for user %s out of range", ledger.ErrInvalidAmount, contribution.UserID)
	}

	siblings, err := s.store.ListExpenseContributions(ctx, contribution.ExpenseID)
	if err != nil {
		return nil, err
	}
	contributedCents := shareCents
	for _, c := range siblings {
		if c.ID != contributionID {
			contributedCents += c.AmountCents
		}
	}
	if diff := contributedCents - expense.AmountCents; diff > ledger.Epsilon || diff < -ledger.Epsilon {
		return nil, fmt.Errorf("%w: contributions would sum to %s but expense amount is %s",
			ledger.ErrInvalidLedgerState, ledger.FormatAmount(contributedCents), ledger.FormatAmount(expense.AmountCents))
	}

	updated, ok, err := s.store.UpdateContributionAmount(ctx, contributionID, shareCents, req.Percentage)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: contribution %s is already %s",
			ledger.ErrInvalidTransition, contributionID, updated.Status)
	}

	slog.Info("contribution updated",
		"contribution_id", contributionID,
		"expense_id", contribution.ExpenseID,
		"amount", ledger.FormatAmount(shareCents),
		"actor_id", actorID)

	updated.Amount = ledger.FormatAmount(updated.AmountCents)
	return updated, nil
}

// ListUserExpenses returns every expense the user pays for or contributes
// to, across groups, amounts formatted.
func (s *ExpenseService) ListUserExpenses(ctx context.Context, userID string) ([]models.Expense, error) {
	expenses, err := s.store.ListUserExpenses(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range expenses {
		expenses[i].Amount = ledger.FormatAmount(expenses[i].AmountCents)
	}
	return expenses, nil
}

// MarkSettled transitions a contribution from PENDING to SETTLED. A second
// settle is a conflict, not an idempotent no-op: it fails with
// ErrInvalidTransition so callers know the money was already recorded.
func (s *ExpenseService) MarkSettled(ctx context.Context, contributionID, actorID string) (*models.Contribution, error) {
	contribution, err := s.store.GetContribution(ctx, contributionID)
	if err != nil {
		return nil, err
	}
	expense, err := s.store.GetExpense(ctx, contribution.ExpenseID)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, actorID, expense.GroupID); err != nil {
		return nil, err
	}

	updated, ok, err := s.store.UpdateContributionStatus(ctx, contributionID,
		models.ContributionPending, models.ContributionSettled)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: contribution %s is already %s",
			ledger.ErrInvalidTransition, contributionID, updated.Status)
	}

	slog.Info("contribution settled",
		"contribution_id", contributionID,
		"expense_id", contribution.ExpenseID,
		"user_id", contribution.UserID,
		"actor_id", actorID)

	updated.Amount = ledger.FormatAmount(updated.AmountCents)
	return updated, nil
}

// GetExpense returns an expense with its contributions attached.
func (s *ExpenseService) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	contributions, err := s.store.ListExpenseContributions(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	expense.Amount = ledger.FormatAmount(expense.AmountCents)
	for i := range contributions {
		contributions[i].Amount = ledger.FormatAmount(contributions[i].AmountCents)
	}
	expense.Contributions = contributions
	return expense, nil
}

// ListGroupExpenses returns a group's expenses, amounts formatted.
func (s *ExpenseService) ListGroupExpenses(ctx context.Context, groupID string) ([]models.Expense, error) {
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
	for i := range expenses {
		expenses[i].Amount = ledger.FormatAmount(expenses[i].AmountCents)
	}
	return expenses, nil
}

// GetContribution returns a single contribution, amount formatted.
func (s *ExpenseService) GetContribution(ctx context.Context, contributionID string) (*models.Contribution, error) {
	contribution, err := s.store.GetContribution(ctx, contributionID)
	if err != nil {
		return nil, err
	}
	contribution.Amount = ledger.FormatAmount(contribution.AmountCents)
	return contribution, nil
}
