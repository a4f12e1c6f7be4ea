package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/splitledger/ledger-api/middleware"
	"github.com/splitledger/ledger-api/models"
	"github.com/splitledger/ledger-api/services"
)

// ExpenseHandler serves the expense write and read paths.
type ExpenseHandler struct {
	Expenses  *services.ExpenseService
	Directory services.Directory
	Email     *services.EmailService
	WS        *WSHandler
}

func NewExpenseHandler(expenses *services.ExpenseService, directory services.Directory, email *services.EmailService, ws *WSHandler) *ExpenseHandler {
	return &ExpenseHandler{Expenses: expenses, Directory: directory, Email: email, WS: ws}
}

// CreateExpense records a shared expense together with its contributions.
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	groupID := c.Param("id")
	expense, err := h.Expenses.Create(c.Request.Context(), groupID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	go h.notifyExpenseAdded(groupID, expense)
	if h.WS != nil {
		h.WS.BroadcastLedgerChanged(groupID, "expense:created", userID)
	}

	c.JSON(http.StatusCreated, expense)
}

// notifyExpenseAdded emails the group off the request path. Failures are
// logged inside the email service; the expense is already committed.
func (h *ExpenseHandler) notifyExpenseAdded(groupID string, expense *models.Expense) {
	if h.Email == nil || h.Directory == nil {
		return
	}
	ctx := context.Background()
	emails, err := h.Directory.MemberEmails(ctx, groupID)
	if err != nil {
		slog.Warn("member email lookup failed", "group_id", groupID, "error", err)
		return
	}
	name, err := h.Directory.GroupName(ctx, groupID)
	if err != nil || name == "" {
		name = groupID
	}
	h.Email.NotifyExpenseAdded(emails, name, expense.Description, expense.Amount)
}

// UpdateExpense replaces an expense and its contributions in one atomic
// write. Expenses with a settled contribution are immutable.
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expense, err := h.Expenses.Update(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.WS != nil {
		h.WS.BroadcastLedgerChanged(expense.GroupID, "expense:updated", userID)
	}
	c.JSON(http.StatusOK, expense)
}

// DeleteExpense removes an expense and its contributions. Expenses with a
// settled contribution are immutable.
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	expense, err := h.Expenses.Delete(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.WS != nil {
		h.WS.BroadcastLedgerChanged(expense.GroupID, "expense:deleted", userID)
	}
	c.JSON(http.StatusOK, gin.H{"message": "expense deleted", "id": expense.ID})
}

// ListMyExpenses returns every expense the caller pays for or contributes
// to, across groups.
func (h *ExpenseHandler) ListMyExpenses(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	expenses, err := h.Expenses.ListUserExpenses(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "expenses": expenses})
}

// GetExpense returns one expense with its contributions.
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	expense, err := h.Expenses.GetExpense(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

// ListGroupExpenses returns all expenses recorded in a group.
func (h *ExpenseHandler) ListGroupExpenses(c *gin.Context) {
	expenses, err := h.Expenses.ListGroupExpenses(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group_id": c.Param("id"), "expenses": expenses})
}
