package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/splitledger/ledger-api/middleware"
	"github.com/splitledger/ledger-api/models"
	"github.com/splitledger/ledger-api/services"
)

// ContributionHandler serves contribution reads and the settle transition.
type ContributionHandler struct {
	Expenses *services.ExpenseService
	WS       *WSHandler
}

func NewContributionHandler(expenses *services.ExpenseService, ws *WSHandler) *ContributionHandler {
	return &ContributionHandler{Expenses: expenses, WS: ws}
}

// GetContribution returns a single contribution.
func (h *ContributionHandler) GetContribution(c *gin.Context) {
	contribution, err := h.Expenses.GetContribution(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contribution)
}

// UpdateContribution adjusts a PENDING contribution's amount and
// percentage. The parent expense must still reconcile after the change.
func (h *ContributionHandler) UpdateContribution(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdateContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contribution, err := h.Expenses.UpdateContribution(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.WS != nil {
		if expense, err := h.Expenses.GetExpense(c.Request.Context(), contribution.ExpenseID); err == nil {
			h.WS.BroadcastLedgerChanged(expense.GroupID, "contribution:updated", userID)
		}
	}
	c.JSON(http.StatusOK, contribution)
}

// SettleContribution marks a PENDING contribution as SETTLED. Settling is
// bookkeeping for an externally recorded payment; it does not change the
// group's balances.
func (h *ContributionHandler) SettleContribution(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	contribution, err := h.Expenses.MarkSettled(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.WS != nil {
		if expense, err := h.Expenses.GetExpense(c.Request.Context(), contribution.ExpenseID); err == nil {
			h.WS.BroadcastLedgerChanged(expense.GroupID, "contribution:settled", userID)
		}
	}
	c.JSON(http.StatusOK, contribution)
}
