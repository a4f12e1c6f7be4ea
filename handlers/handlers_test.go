package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/splitledger/ledger-api/models"
	"github.com/splitledger/ledger-api/services"
	"github.com/splitledger/ledger-api/storage"
)

type fakeDirectory struct {
	members map[string][]string
	admins  map[string]bool
}

func (d *fakeDirectory) IsMember(_ context.Context, userID, groupID string) (bool, error) {
	for _, m := range d.members[groupID] {
		if m == userID {
			return true, nil
		}
	}
	return false, nil
}

func (d *fakeDirectory) IsAdmin(_ context.Context, userID string) (bool, error) {
	return d.admins[userID], nil
}

func (d *fakeDirectory) MemberEmails(_ context.Context, groupID string) ([]string, error) {
	var emails []string
	for _, m := range d.members[groupID] {
		emails = append(emails, m+"@example.com")
	}
	return emails, nil
}

func (d *fakeDirectory) GroupName(_ context.Context, groupID string) (string, error) {
	return groupID, nil
}

// testUserHeader stands in for the auth middleware: the test client names
// itself via a header instead of a signed token.
const testUserHeader = "X-Test-User"

func newTestRouter(t *testing.T) (*gin.Engine, *storage.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryStore("trip")
	directory := &fakeDirectory{
		members: map[string][]string{"trip": {"alice", "bob", "carol"}},
		admins:  map[string]bool{"root": true},
	}

	ledgerSvc := services.NewLedgerService(store)
	expenseSvc := services.NewExpenseService(store, directory)

	ledgerHandler := NewLedgerHandler(ledgerSvc)
	expenseHandler := NewExpenseHandler(expenseSvc, directory, nil, nil)
	contributionHandler := NewContributionHandler(expenseSvc, nil)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if user := c.GetHeader(testUserHeader); user != "" {
			c.Set("user_id", user)
		}
		c.Next()
	})

	router.GET("/groups/:id/balances", ledgerHandler.GetBalances)
	router.GET("/groups/:id/balances/me", ledgerHandler.GetMyBalance)
	router.GET("/groups/:id/simplified-debts", ledgerHandler.GetSimplifiedDebts)
	router.POST("/groups/:id/expenses", expenseHandler.CreateExpense)
	router.GET("/groups/:id/expenses", expenseHandler.ListGroupExpenses)
	router.GET("/expenses/:id", expenseHandler.GetExpense)
	router.PUT("/expenses/:id", expenseHandler.UpdateExpense)
	router.DELETE("/expenses/:id", expenseHandler.DeleteExpense)
	router.GET("/users/me/expenses", expenseHandler.ListMyExpenses)
	router.GET("/contributions/:id", contributionHandler.GetContribution)
	router.PUT("/contributions/:id", contributionHandler.UpdateContribution)
	router.PUT("/contributions/:id/settle", contributionHandler.SettleContribution)

	return router, store
}

func doRequest(router *gin.Engine, method, path, user string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(testUserHeader, user)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func evenSplitBody() map[string]any {
	return map[string]any{
		"payer_id":    "alice",
		"amount":      "90.00",
		"description": "groceries",
		"contributions": []map[string]any{
			{"user_id": "alice", "amount": "30.00", "percentage": 33.33},
			{"user_id": "bob", "amount": "30.00", "percentage": 33.33},
			{"user_id": "carol", "amount": "30.00", "percentage": 33.34},
		},
	}
}

func TestCreateExpense_HTTP(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/groups/trip/expenses", "alice", evenSplitBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", w.Code, w.Body.String())
	}

	var expense models.Expense
	if err := json.Unmarshal(w.Body.Bytes(), &expense); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if expense.Amount != "90.00" {
		t.Errorf("amount = %q, want 90.00", expense.Amount)
	}
	if len(expense.Contributions) != 3 {
		t.Fatalf("contributions = %d, want 3", len(expense.Contributions))
	}
	for _, contribution := range expense.Contributions {
		if contribution.Status != models.ContributionPending {
			t.Errorf("contribution %s status = %q, want PENDING", contribution.ID, contribution.Status)
		}
	}
}

func TestCreateExpense_HTTPErrors(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name     string
		user     string
		group    string
		body     any
		wantCode int
	}{
		{
			name:     "no authenticated user",
			user:     "",
			group:    "trip",
			body:     evenSplitBody(),
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "non-member rejected",
			user:     "mallory",
			group:    "trip",
			body:     evenSplitBody(),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "unknown group",
			user:     "alice",
			group:    "ghost",
			body:     evenSplitBody(),
			wantCode: http.StatusNotFound,
		},
		{
			name:  "missing contributions",
			user:  "alice",
			group: "trip",
			body: map[string]any{
				"payer_id": "alice",
				"amount":   "90.00",
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name:  "contributions do not cover the amount",
			user:  "alice",
			group: "trip",
			body: map[string]any{
				"payer_id": "alice",
				"amount":   "90.00",
				"contributions": []map[string]any{
					{"user_id": "alice", "amount": "10.00"},
				},
			},
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:  "malformed amount",
			user:  "alice",
			group: "trip",
			body: map[string]any{
				"payer_id": "alice",
				"amount":   "ninety",
				"contributions": []map[string]any{
					{"user_id": "alice", "amount": "90.00"},
				},
			},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, "/groups/"+tt.group+"/expenses", tt.user, tt.body)
			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d, body %s", w.Code, tt.wantCode, w.Body.String())
			}
		})
	}
}

func TestCreateExpense_InvalidJSON(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/groups/trip/expenses", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(testUserHeader, "alice")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetBalances_HTTP(t *testing.T) {
	router, _ := newTestRouter(t)

	if w := doRequest(router, http.MethodPost, "/groups/trip/expenses", "alice", evenSplitBody()); w.Code != http.StatusCreated {
		t.Fatalf("seed expense: status %d, body %s", w.Code, w.Body.String())
	}

	w := doRequest(router, http.MethodGet, "/groups/trip/balances", "alice", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		GroupID  string                `json:"group_id"`
		Balances []models.BalanceEntry `json:"balances"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	want := map[string]string{"alice": "60.00", "bob": "-30.00", "carol": "-30.00"}
	if len(resp.Balances) != len(want) {
		t.Fatalf("balances = %v, want entries for %v", resp.Balances, want)
	}
	for _, entry := range resp.Balances {
		if want[entry.UserID] != entry.Amount {
			t.Errorf("balance[%s] = %s, want %s", entry.UserID, entry.Amount, want[entry.UserID])
		}
	}
}

func TestGetBalances_UnknownGroup(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/groups/ghost/balances", "alice", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404, body %s", w.Code, w.Body.String())
	}
}

func TestGetMyBalance_HTTP(t *testing.T) {
	router, _ := newTestRouter(t)

	if w := doRequest(router, http.MethodPost, "/groups/trip/expenses", "alice", evenSplitBody()); w.Code != http.StatusCreated {
		t.Fatalf("seed expense: status %d", w.Code)
	}

	w := doRequest(router, http.MethodGet, "/groups/trip/balances/me", "bob", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var entry models.BalanceEntry
	if err := json.Unmarshal(w.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if entry.UserID != "bob" || entry.Amount != "-30.00" {
		t.Errorf("entry = %+v, want bob at -30.00", entry)
	}

	if w := doRequest(router, http.MethodGet, "/groups/trip/balances/me", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", w.Code)
	}
}

func TestGetSimplifiedDebts_HTTP(t *testing.T) {
	router, _ := newTestRouter(t)

	if w := doRequest(router, http.MethodPost, "/groups/trip/expenses", "alice", evenSplitBody()); w.Code != http.StatusCreated {
		t.Fatalf("seed expense: status %d", w.Code)
	}

	w := doRequest(router, http.MethodGet, "/groups/trip/simplified-debts", "alice", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Transactions []models.SettlementInstruction `json:"transactions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	want := []models.SettlementInstruction{
		{From: "bob", To: "alice", Amount: "30.00"},
		{From: "carol", To: "alice", Amount: "30.00"},
	}
	if len(resp.Transactions) != len(want) {
		t.Fatalf("transactions = %v, want %v", resp.Transactions, want)
	}
	for i, instruction := range resp.Transactions {
		if instruction != want[i] {
			t.Errorf("transactions[%d] = %+v, want %+v", i, instruction, want[i])
		}
	}
}

func TestSettleContribution_HTTP(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/groups/trip/expenses", "alice", evenSplitBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("seed expense: status %d", w.Code)
	}
	var expense models.Expense
	if err := json.Unmarshal(w.Body.Bytes(), &expense); err != nil {
		t.Fatalf("decode expense: %v", err)
	}
	var target string
	for _, contribution := range expense.Contributions {
		if contribution.UserID == "bob" {
			target = contribution.ID
		}
	}
	if target == "" {
		t.Fatal("no contribution for bob in created expense")
	}

	w = doRequest(router, http.MethodPut, "/contributions/"+target+"/settle", "bob", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("settle status = %d, body %s", w.Code, w.Body.String())
	}
	var settled models.Contribution
	if err := json.Unmarshal(w.Body.Bytes(), &settled); err != nil {
		t.Fatalf("decode contribution: %v", err)
	}
	if settled.Status != models.ContributionSettled {
		t.Errorf("status = %q, want SETTLED", settled.Status)
	}

	// Settling again is a conflict, not a no-op.
	if w := doRequest(router, http.MethodPut, "/contributions/"+target+"/settle", "bob", nil); w.Code != http.StatusConflict {
		t.Errorf("second settle status = %d, want 409, body %s", w.Code, w.Body.String())
	}

	if w := doRequest(router, http.MethodPut, "/contributions/missing/settle", "bob", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing contribution status = %d, want 404", w.Code)
	}
	if w := doRequest(router, http.MethodPut, "/contributions/"+target+"/settle", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", w.Code)
	}
}

func TestSettleContribution_StoreFailure(t *testing.T) {
	router, store := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/groups/trip/expenses", "alice", evenSplitBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("seed expense: status %d", w.Code)
	}
	var expense models.Expense
	if err := json.Unmarshal(w.Body.Bytes(), &expense); err != nil {
		t.Fatalf("decode expense: %v", err)
	}

	store.FailWrites(true)
	w = doRequest(router, http.MethodPut, "/contributions/"+expense.Contributions[0].ID+"/settle", "alice", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503, body %s", w.Code, w.Body.String())
	}
}

func TestGetExpenseAndContribution_HTTP(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/groups/trip/expenses", "alice", evenSplitBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("seed expense: status %d", w.Code)
	}
	var expense models.Expense
	if err := json.Unmarshal(w.Body.Bytes(), &expense); err != nil {
		t.Fatalf("decode expense: %v", err)
	}

	w = doRequest(router, http.MethodGet, "/expenses/"+expense.ID, "alice", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get expense status = %d, body %s", w.Code, w.Body.String())
	}
	var fetched models.Expense
	if err := json.Unmarshal(w.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("decode expense: %v", err)
	}
	if fetched.ID != expense.ID || len(fetched.Contributions) != 3 {
		t.Errorf("fetched = %+v, want id %s with 3 contributions", fetched, expense.ID)
	}

	w = doRequest(router, http.MethodGet, "/contributions/"+expense.Contributions[0].ID, "alice", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get contribution status = %d, body %s", w.Code, w.Body.String())
	}

	if w := doRequest(router, http.MethodGet, "/expenses/missing", "alice", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing expense status = %d, want 404", w.Code)
	}
	if w := doRequest(router, http.MethodGet, "/contributions/missing", "alice", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing contribution status = %d, want 404", w.Code)
	}
}

func TestListGroupExpenses_HTTP(t *testing.T) {
	router, _ := newTestRouter(t)

	for i := 0; i < 2; i++ {
		if w := doRequest(router, http.MethodPost, "/groups/trip/expenses", "alice", evenSplitBody()); w.Code != http.StatusCreated {
			t.Fatalf("seed expense %d: status %d", i, w.Code)
		}
	}

	w := doRequest(router, http.MethodGet, "/groups/trip/expenses", "alice", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Expenses []models.Expense `json:"expenses"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Expenses) != 2 {
		t.Errorf("expenses = %d, want 2", len(resp.Expenses))
	}
}

func TestUpdateExpense_HTTP(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/groups/trip/expenses", "alice", evenSplitBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("seed expense: status %d", w.Code)
	}
	var expense models.Expense
	if err := json.Unmarshal(w.Body.Bytes(), &expense); err != nil {
		t.Fatalf("decode expense: %v", err)
	}

	update := map[string]any{
		"payer_id": "bob",
		"amount":   "60.00",
		"contributions": []map[string]any{
			{"user_id": "bob", "amount": "30.00"},
			{"user_id": "carol", "amount": "30.00"},
		},
	}
	w = doRequest(router, http.MethodPut, "/expenses/"+expense.ID, "alice", update)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", w.Code, w.Body.String())
	}
	var updated models.Expense
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode updated expense: %v", err)
	}
	if updated.PayerID != "bob" || updated.Amount != "60.00" || len(updated.Contributions) != 2 {
		t.Errorf("updated = %+v, want bob paying 60.00 with 2 contributions", updated)
	}

	// Balances reflect the replacement, not the original split.
	w = doRequest(router, http.MethodGet, "/groups/trip/balances", "alice", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("balances status = %d", w.Code)
	}
	var resp struct {
		Balances []models.BalanceEntry `json:"balances"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode balances: %v", err)
	}
	want := map[string]string{"bob": "30.00", "carol": "-30.00"}
	for _, entry := range resp.Balances {
		if wantAmount, ok := want[entry.UserID]; ok && entry.Amount != wantAmount {
			t.Errorf("balance[%s] = %s, want %s", entry.UserID, entry.Amount, wantAmount)
		}
	}

	if w := doRequest(router, http.MethodPut, "/expenses/missing", "alice", update); w.Code != http.StatusNotFound {
		t.Errorf("update missing expense status = %d, want 404", w.Code)
	}
	if w := doRequest(router, http.MethodPut, "/expenses/"+expense.ID, "mallory", update); w.Code != http.StatusForbidden {
		t.Errorf("update by non-member status = %d, want 403", w.Code)
	}
}

func TestUpdateExpense_SettledIsImmutable(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/groups/trip/expenses", "alice", evenSplitBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("seed expense: status %d", w.Code)
	}
	var expense models.Expense
	if err := json.Unmarshal(w.Body.Bytes(), &expense); err != nil {
		t.Fatalf("decode expense: %v", err)
	}

	if w := doRequest(router, http.MethodPut, "/contributions/"+expense.Contributions[0].ID+"/settle", "alice", nil); w.Code != http.StatusOK {
		t.Fatalf("settle status = %d", w.Code)
	}

	if w := doRequest(router, http.MethodPut, "/expenses/"+expense.ID, "alice", evenSplitBody()); w.Code != http.StatusConflict {
		t.Errorf("update settled expense status = %d, want 409, body %s", w.Code, w.Body.String())
	}
	if w := doRequest(router, http.MethodDelete, "/expenses/"+expense.ID, "alice", nil); w.Code != http.StatusConflict {
		t.Errorf("delete settled expense status = %d, want 409, body %s", w.Code, w.Body.String())
	}
}

func TestDeleteExpense_HTTP(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/groups/trip/expenses", "alice", evenSplitBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("seed expense: status %d", w.Code)
	}
	var expense models.Expense
	if err := json.Unmarshal(w.Body.Bytes(), &expense); err != nil {
		t.Fatalf("decode expense: %v", err)
	}

	if w := doRequest(router, http.MethodDelete, "/expenses/"+expense.ID, "mallory", nil); w.Code != http.StatusForbidden {
		t.Errorf("delete by non-member status = %d, want 403", w.Code)
	}

	w = doRequest(router, http.MethodDelete, "/expenses/"+expense.ID, "alice", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", w.Code, w.Body.String())
	}

	if w := doRequest(router, http.MethodGet, "/expenses/"+expense.ID, "alice", nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
	if w := doRequest(router, http.MethodDelete, "/expenses/"+expense.ID, "alice", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}

	// The group ledger is empty again.
	w = doRequest(router, http.MethodGet, "/groups/trip/balances", "alice", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("balances status = %d", w.Code)
	}
	var resp struct {
		Balances []models.BalanceEntry `json:"balances"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode balances: %v", err)
	}
	if len(resp.Balances) != 0 {
		t.Errorf("balances after delete = %v, want empty", resp.Balances)
	}
}

func TestUpdateContribution_HTTP(t *testing.T) {
	router, _ := newTestRouter(t)

	body := evenSplitBody()
	body["contributions"] = []map[string]any{
		{"user_id": "alice", "amount": "30.00"},
		{"user_id": "bob", "amount": "30.00"},
		{"user_id": "carol", "amount": "29.99"},
	}
	w := doRequest(router, http.MethodPost, "/groups/trip/expenses", "alice", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("seed expense: status %d, body %s", w.Code, w.Body.String())
	}
	var expense models.Expense
	if err := json.Unmarshal(w.Body.Bytes(), &expense); err != nil {
		t.Fatalf("decode expense: %v", err)
	}
	var target string
	for _, contribution := range expense.Contributions {
		if contribution.UserID == "carol" {
			target = contribution.ID
		}
	}

	w = doRequest(router, http.MethodPut, "/contributions/"+target, "carol", map[string]any{
		"amount":     "30.00",
		"percentage": 33.34,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", w.Code, w.Body.String())
	}
	var updated models.Contribution
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode contribution: %v", err)
	}
	if updated.Amount != "30.00" {
		t.Errorf("amount = %s, want 30.00", updated.Amount)
	}

	// Breaking the reconciliation is rejected.
	w = doRequest(router, http.MethodPut, "/contributions/"+target, "carol", map[string]any{"amount": "5.00"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("unbalanced update status = %d, want 422, body %s", w.Code, w.Body.String())
	}

	if w := doRequest(router, http.MethodPut, "/contributions/missing", "carol", map[string]any{"amount": "1.00"}); w.Code != http.StatusNotFound {
		t.Errorf("update missing contribution status = %d, want 404", w.Code)
	}

	// Settled contributions are immutable.
	if w := doRequest(router, http.MethodPut, "/contributions/"+target+"/settle", "carol", nil); w.Code != http.StatusOK {
		t.Fatalf("settle status = %d", w.Code)
	}
	if w := doRequest(router, http.MethodPut, "/contributions/"+target, "carol", map[string]any{"amount": "30.00"}); w.Code != http.StatusConflict {
		t.Errorf("update settled contribution status = %d, want 409, body %s", w.Code, w.Body.String())
	}
}

func TestListMyExpenses_HTTP(t *testing.T) {
	router, _ := newTestRouter(t)

	if w := doRequest(router, http.MethodPost, "/groups/trip/expenses", "alice", evenSplitBody()); w.Code != http.StatusCreated {
		t.Fatalf("seed expense: status %d", w.Code)
	}

	w := doRequest(router, http.MethodGet, "/users/me/expenses", "bob", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		UserID   string           `json:"user_id"`
		Expenses []models.Expense `json:"expenses"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.UserID != "bob" || len(resp.Expenses) != 1 {
		t.Errorf("response = %+v, want one expense for bob", resp)
	}

	if w := doRequest(router, http.MethodGet, "/users/me/expenses", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", w.Code)
	}
}
