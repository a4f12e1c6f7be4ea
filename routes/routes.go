package routes

import (
	"database/sql"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/splitledger/ledger-api/handlers"
	"github.com/splitledger/ledger-api/services"
	"github.com/splitledger/ledger-api/storage"
)

// SetupLedgerRoutes wires the group ledger surface: balances, simplified
// debts, expenses and the contribution lifecycle.
func SetupLedgerRoutes(rg *gin.RouterGroup, db *sql.DB, wsHandler *handlers.WSHandler) {
	store := storage.NewPostgresStore(db)
	directory := services.NewSQLDirectory(db)

	ledgerSvc := services.NewLedgerService(store)
	expenseSvc := services.NewExpenseService(store, directory)
	emailSvc := services.NewEmailService(os.Getenv("RESEND_API_KEY"), os.Getenv("FROM_EMAIL"))

	ledgerHandler := handlers.NewLedgerHandler(ledgerSvc)
	expenseHandler := handlers.NewExpenseHandler(expenseSvc, directory, emailSvc, wsHandler)
	contributionHandler := handlers.NewContributionHandler(expenseSvc, wsHandler)

	rg.GET("/groups/:id/balances", ledgerHandler.GetBalances)
	rg.GET("/groups/:id/balances/me", ledgerHandler.GetMyBalance)
	rg.GET("/groups/:id/simplified-debts", ledgerHandler.GetSimplifiedDebts)

	rg.POST("/groups/:id/expenses", expenseHandler.CreateExpense)
	rg.GET("/groups/:id/expenses", expenseHandler.ListGroupExpenses)
	rg.GET("/expenses/:id", expenseHandler.GetExpense)
	rg.PUT("/expenses/:id", expenseHandler.UpdateExpense)
	rg.DELETE("/expenses/:id", expenseHandler.DeleteExpense)
	rg.GET("/users/me/expenses", expenseHandler.ListMyExpenses)

	rg.GET("/contributions/:id", contributionHandler.GetContribution)
	rg.PUT("/contributions/:id", contributionHandler.UpdateContribution)
	rg.PUT("/contributions/:id/settle", contributionHandler.SettleContribution)
}
