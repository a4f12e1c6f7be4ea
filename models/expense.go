package models

import "time"

// Contribution status lifecycle: PENDING is the sole initial state and
// SETTLED is terminal. No other transitions exist.
const (
	ContributionPending = "PENDING"
	ContributionSettled = "SETTLED"
)

// Expense is a single shared cost paid by one member on behalf of a group.
// Amounts are minor currency units (cents); JSON carries them as exact
// decimal strings, rendered by the handlers.
type Expense struct {
	ID            string         `json:"id"`
	GroupID       string         `json:"group_id"`
	PayerID       string         `json:"payer_id"`
	AmountCents   int64          `json:"-"`
	Amount        string         `json:"amount"`
	Description   string         `json:"description,omitempty"`
	Category      string         `json:"category,omitempty"`
	CreatedBy     string         `json:"created_by"`
	CreatedAt     time.Time      `json:"created_at"`
	Contributions []Contribution `json:"contributions,omitempty"`
}

// Contribution is one member's assigned share of an expense. Percentage is
// informational bookkeeping only; the amount is authoritative.
type Contribution struct {
	ID          string    `json:"id"`
	ExpenseID   string    `json:"expense_id"`
	UserID      string    `json:"user_id"`
	AmountCents int64     `json:"-"`
	Amount      string    `json:"amount"`
	Percentage  float64   `json:"percentage"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ContributionInput struct {
	UserID     string  `json:"user_id" binding:"required"`
	Amount     string  `json:"amount" binding:"required"`
	Percentage float64 `json:"percentage" binding:"min=0,max=100"`
}

type UpdateContributionRequest struct {
	Amount     string  `json:"amount" binding:"required"`
	Percentage float64 `json:"percentage" binding:"min=0,max=100"`
}

type CreateExpenseRequest struct {
	PayerID       string              `json:"payer_id" binding:"required"`
	Amount        string              `json:"amount" binding:"required"`
	Description   string              `json:"description"`
	Category      string              `json:"category"`
	Contributions []ContributionInput `json:"contributions" binding:"required,min=1,dive"`
}
