// Package storage provides the ledger store: persistence for expense and
// contribution records, behind an interface so the service layer and its
// tests are not tied to postgres.
package storage

import (
	"context"
	"errors"

	"github.com/splitledger/ledger-api/models"
)

// Record-level not-found errors. Group resolution failures surface as
// ledger.ErrGroupNotFound at the service layer.
var (
	ErrExpenseNotFound      = errors.New("expense not found")
	ErrContributionNotFound = errors.New("contribution not found")
)

// Store is the ledger store consumed by the services.
type Store interface {
	// GroupExists reports whether the group id resolves.
	GroupExists(ctx context.Context, groupID string) (bool, error)

	// ListExpenses returns all expenses belonging to a group.
	ListExpenses(ctx context.Context, groupID string) ([]models.Expense, error)

	// ListGroupContributions returns all contributions attached to any
	// expense of the group.
	ListGroupContributions(ctx context.Context, groupID string) ([]models.Contribution, error)

	// ListExpenseContributions returns the contributions of one expense.
	ListExpenseContributions(ctx context.Context, expenseID string) ([]models.Contribution, error)

	// ListUserExpenses returns every expense the user pays for or
	// contributes to, across all groups.
	ListUserExpenses(ctx context.Context, userID string) ([]models.Expense, error)

	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	GetContribution(ctx context.Context, contributionID string) (*models.Contribution, error)

	// CreateExpenseWithContributions persists an expense and all of its
	// contributions as one atomic unit: either everything is written or
	// nothing is. A partially written expense would corrupt every
	// settlement computed for the group afterwards.
	CreateExpenseWithContributions(ctx context.Context, expense *models.Expense, contributions []models.Contribution) error

	// ReplaceExpenseWithContributions overwrites an existing expense and
	// swaps its full contribution set in one atomic unit, under the same
	// no-partial-write guarantee as creation. Fails with ErrExpenseNotFound
	// when the expense id does not resolve.
	ReplaceExpenseWithContributions(ctx context.Context, expense *models.Expense, contributions []models.Contribution) error

	// DeleteExpense removes an expense and all of its contributions.
	DeleteExpense(ctx context.Context, expenseID string) error

	// UpdateContributionAmount adjusts a contribution's amount and
	// percentage as a compare-and-set on PENDING status: it fails with
	// ErrContributionNotFound when the id does not resolve, and returns
	// ok=false without modifying anything when the contribution is not
	// PENDING.
	UpdateContributionAmount(ctx context.Context, contributionID string, amountCents int64, percentage float64) (*models.Contribution, bool, error)

	// UpdateContributionStatus transitions a contribution from one status
	// to another as a compare-and-set: it fails with ErrContributionNotFound
	// when the id does not resolve, and returns ok=false without modifying
	// anything when the stored status is not `from`.
	UpdateContributionStatus(ctx context.Context, contributionID, from, to string) (*models.Contribution, bool, error)

	Close() error
}
