package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/splitledger/ledger-api/middleware"
	"github.com/splitledger/ledger-api/services"
)

// LedgerHandler serves the derived views of a group's ledger: balances and
// simplified debts.
type LedgerHandler struct {
	Ledger *services.LedgerService
}

func NewLedgerHandler(ledgerSvc *services.LedgerService) *LedgerHandler {
	return &LedgerHandler{Ledger: ledgerSvc}
}

// GetBalances returns every member's net position in the group.
func (h *LedgerHandler) GetBalances(c *gin.Context) {
	balances, err := h.Ledger.GroupBalances(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group_id": c.Param("id"), "balances": balances})
}

// GetMyBalance returns the calling user's net position in the group.
func (h *LedgerHandler) GetMyBalance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.Ledger.UserBalance(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// GetSimplifiedDebts returns the payment instructions that settle the group.
func (h *LedgerHandler) GetSimplifiedDebts(c *gin.Context) {
	instructions, err := h.Ledger.SimplifiedDebts(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group_id": c.Param("id"), "transactions": instructions})
}
