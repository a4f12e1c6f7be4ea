package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestEmailService(endpoint string) *EmailService {
	return &EmailService{
		apiKey:    "test-key",
		fromEmail: "ledger@example.com",
		endpoint:  endpoint,
		client:    &http.Client{Timeout: time.Second},
	}
}

func TestEmailSendAcceptsAny2xx(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "200 ok", status: http.StatusOK},
		{name: "201 created", status: http.StatusCreated},
		{name: "422 rejected", status: http.StatusUnprocessableEntity, wantErr: true},
		{name: "500 upstream failure", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
					t.Errorf("Authorization = %q, want bearer test key", got)
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			svc := newTestEmailService(srv.URL)
			err := svc.send(map[string]interface{}{"to": []string{"a@example.com"}})
			if (err != nil) != tt.wantErr {
				t.Errorf("send() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNotifyExpenseAddedSkipsWithoutConfig(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	svc := newTestEmailService(srv.URL)
	svc.apiKey = ""
	svc.NotifyExpenseAdded([]string{"a@example.com"}, "trip", "groceries", "90.00")

	svc = newTestEmailService(srv.URL)
	svc.NotifyExpenseAdded(nil, "trip", "groceries", "90.00")

	if called {
		t.Error("notification sent without api key or recipients")
	}
}
