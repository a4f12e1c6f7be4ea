package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/splitledger/ledger-api/ledger"
	"github.com/splitledger/ledger-api/storage"
)

// respondError maps ledger error kinds to HTTP status codes. The error
// message is passed through so callers can identify the offending expense
// or contribution for manual audit.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrGroupNotFound),
		errors.Is(err, storage.ErrExpenseNotFound),
		errors.Is(err, storage.ErrContributionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, ledger.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, ledger.ErrInvalidLedgerState),
		errors.Is(err, ledger.ErrUnbalancedLedger):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "status", status, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
