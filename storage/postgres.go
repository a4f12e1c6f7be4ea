package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/splitledger/ledger-api/ledger"
	"github.com/splitledger/ledger-api/models"
	"github.com/splitledger/ledger-api/utils"
)

// Ensure PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

// PostgresStore implements Store on top of postgres. Multi-record writes use
// a single database transaction, so an expense and its contributions appear
// together or not at all.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// wrapStoreErr tags persistence failures as retryable store unavailability.
// Not-found conditions are handled before this is reached.
func wrapStoreErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ledger.ErrStoreUnavailable, op, err)
}

func (s *PostgresStore) GroupExists(ctx context.Context, groupID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1)`, groupID,
	).Scan(&exists)
	if err != nil {
		return false, wrapStoreErr("group exists", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListExpenses(ctx context.Context, groupID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, group_id, payer_id, amount_cents, description, category, created_by, created_at
		FROM expenses
		WHERE group_id = $1
		ORDER BY created_at, id
	`, groupID)
	if err != nil {
		return nil, wrapStoreErr("list expenses", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		var category sql.NullString
		if err := rows.Scan(&e.ID, &e.GroupID, &e.PayerID, &e.AmountCents,
			&e.Description, &category, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, wrapStoreErr("scan expense", err)
		}
		e.Category = category.String
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr("iterate expenses", err)
	}
	return expenses, nil
}

const contributionColumns = `id, expense_id, user_id, amount_cents, percentage, status, created_at, updated_at`

func scanContribution(row interface{ Scan(...any) error }) (*models.Contribution, error) {
	var c models.Contribution
	err := row.Scan(&c.ID, &c.ExpenseID, &c.UserID, &c.AmountCents,
		&c.Percentage, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) ListGroupContributions(ctx context.Context, groupID string) ([]models.Contribution, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.expense_id, c.user_id, c.amount_cents, c.percentage, c.status, c.created_at, c.updated_at
		FROM contributions c
		INNER JOIN expenses e ON c.expense_id = e.id
		WHERE e.group_id = $1
		ORDER BY c.created_at, c.id
	`, groupID)
	if err != nil {
		return nil, wrapStoreErr("list group contributions", err)
	}
	defer rows.Close()
	return collectContributions(rows)
}

func (s *PostgresStore) ListExpenseContributions(ctx context.Context, expenseID string) ([]models.Contribution, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contributionColumns+`
		FROM contributions
		WHERE expense_id = $1
		ORDER BY created_at, id
	`, expenseID)
	if err != nil {
		return nil, wrapStoreErr("list expense contributions", err)
	}
	defer rows.Close()
	return collectContributions(rows)
}

func collectContributions(rows *sql.Rows) ([]models.Contribution, error) {
	var contributions []models.Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, wrapStoreErr("scan contribution", err)
		}
		contributions = append(contributions, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr("iterate contributions", err)
	}
	return contributions, nil
}

func (s *PostgresStore) ListUserExpenses(ctx context.Context, userID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT e.id, e.group_id, e.payer_id, e.amount_cents, e.description, e.category, e.created_by, e.created_at
		FROM expenses e
		LEFT JOIN contributions c ON c.expense_id = e.id
		WHERE e.payer_id = $1 OR c.user_id = $1
		ORDER BY e.created_at, e.id
	`, userID)
	if err != nil {
		return nil, wrapStoreErr("list user expenses", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		var category sql.NullString
		if err := rows.Scan(&e.ID, &e.GroupID, &e.PayerID, &e.AmountCents,
			&e.Description, &category, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, wrapStoreErr("scan expense", err)
		}
		e.Category = category.String
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr("iterate user expenses", err)
	}
	return expenses, nil
}

func (s *PostgresStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	var e models.Expense
	var category sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, group_id, payer_id, amount_cents, description, category, created_by, created_at
		FROM expenses
		WHERE id = $1
	`, expenseID).Scan(&e.ID, &e.GroupID, &e.PayerID, &e.AmountCents,
		&e.Description, &category, &e.CreatedBy, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExpenseNotFound
	}
	if err != nil {
		return nil, wrapStoreErr("get expense", err)
	}
	e.Category = category.String
	return &e, nil
}

func (s *PostgresStore) GetContribution(ctx context.Context, contributionID string) (*models.Contribution, error) {
	c, err := scanContribution(s.db.QueryRowContext(ctx, `
		SELECT `+contributionColumns+`
		FROM contributions
		WHERE id = $1
	`, contributionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContributionNotFound
	}
	if err != nil {
		return nil, wrapStoreErr("get contribution", err)
	}
	return c, nil
}

func (s *PostgresStore) CreateExpenseWithContributions(ctx context.Context, expense *models.Expense, contributions []models.Contribution) error {
	err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO expenses (id, group_id, payer_id, amount_cents, description, category, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
		`, expense.ID, expense.GroupID, expense.PayerID, expense.AmountCents,
			expense.Description, expense.Category, expense.CreatedBy, expense.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert expense: %w", err)
		}

		for _, c := range contributions {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO contributions (id, expense_id, user_id, amount_cents, percentage, status, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, c.ID, c.ExpenseID, c.UserID, c.AmountCents, c.Percentage, c.Status, c.CreatedAt, c.UpdatedAt)
			if err != nil {
				return fmt.Errorf("insert contribution for user %s: %w", c.UserID, err)
			}
		}
		return nil
	})
	if err != nil {
		return wrapStoreErr("create expense with contributions", err)
	}
	return nil
}

func (s *PostgresStore) ReplaceExpenseWithContributions(ctx context.Context, expense *models.Expense, contributions []models.Contribution) error {
	err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE expenses
			SET payer_id = $1, amount_cents = $2, description = $3, category = NULLIF($4, '')
			WHERE id = $5
		`, expense.PayerID, expense.AmountCents, expense.Description, expense.Category, expense.ID)
		if err != nil {
			return fmt.Errorf("update expense: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update expense: %w", err)
		}
		if affected == 0 {
			return ErrExpenseNotFound
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM contributions WHERE expense_id = $1`, expense.ID); err != nil {
			return fmt.Errorf("clear contributions: %w", err)
		}
		for _, c := range contributions {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO contributions (id, expense_id, user_id, amount_cents, percentage, status, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, c.ID, c.ExpenseID, c.UserID, c.AmountCents, c.Percentage, c.Status, c.CreatedAt, c.UpdatedAt)
			if err != nil {
				return fmt.Errorf("insert contribution for user %s: %w", c.UserID, err)
			}
		}
		return nil
	})
	if errors.Is(err, ErrExpenseNotFound) {
		return err
	}
	if err != nil {
		return wrapStoreErr("replace expense with contributions", err)
	}
	return nil
}

func (s *PostgresStore) DeleteExpense(ctx context.Context, expenseID string) error {
	// ON DELETE CASCADE removes the contributions with the expense.
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, expenseID)
	if err != nil {
		return wrapStoreErr("delete expense", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return wrapStoreErr("delete expense", err)
	}
	if affected == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateContributionAmount(ctx context.Context, contributionID string, amountCents int64, percentage float64) (*models.Contribution, bool, error) {
	c, err := scanContribution(s.db.QueryRowContext(ctx, `
		UPDATE contributions
		SET amount_cents = $1, percentage = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
		RETURNING `+contributionColumns+`
	`, amountCents, percentage, contributionID, models.ContributionPending))
	if err == nil {
		return c, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, wrapStoreErr("update contribution amount", err)
	}

	// No row matched: missing contribution or one that is no longer
	// PENDING. Fetch it to tell the two apart.
	current, err := s.GetContribution(ctx, contributionID)
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}

func (s *PostgresStore) UpdateContributionStatus(ctx context.Context, contributionID, from, to string) (*models.Contribution, bool, error) {
	c, err := scanContribution(s.db.QueryRowContext(ctx, `
		UPDATE contributions
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING `+contributionColumns+`
	`, to, contributionID, from))
	if err == nil {
		return c, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, wrapStoreErr("update contribution status", err)
	}

	// No row matched: either the contribution is missing or its status is
	// not `from`. Fetch it to tell the two apart.
	current, err := s.GetContribution(ctx, contributionID)
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}
