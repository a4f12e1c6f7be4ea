package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// EmailService sends ledger notifications through the Resend HTTP API.
// Notifications are best effort: failures are logged and never block the
// write path that triggered them.
const resendEndpoint = "https://api.resend.com/emails"

type EmailService struct {
	apiKey    string
	fromEmail string
	endpoint  string
	client    *http.Client
}

func NewEmailService(apiKey, fromEmail string) *EmailService {
	return &EmailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		endpoint:  resendEndpoint,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// NotifyExpenseAdded tells a group's members that a new shared expense was
// recorded.
func (s *EmailService) NotifyExpenseAdded(to []string, groupName, description, amount string) {
	if s.apiKey == "" || len(to) == 0 {
		return
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background-color: #f3f4f6;">
    <table role="presentation" style="width: 100%%; border-collapse: collapse;">
        <tr>
            <td style="padding: 32px; text-align: center;">
                <h2 style="margin: 0 0 16px;">New shared expense in %s</h2>
                <p style="margin: 0; color: #374151;">%s — %s</p>
                <p style="margin: 16px 0 0; color: #6b7280;">Check the group to see your updated balance.</p>
            </td>
        </tr>
    </table>
</body>
</html>
	`, groupName, description, amount)

	payload := map[string]interface{}{
		"from":    fmt.Sprintf("Split Ledger <%s>", s.fromEmail),
		"to":      to,
		"subject": fmt.Sprintf("New expense in %s: %s", groupName, amount),
		"html":    htmlBody,
	}

	if err := s.send(payload); err != nil {
		slog.Warn("expense notification failed", "group", groupName, "recipients", len(to), "error", err)
	}
}

func (s *EmailService) send(payload map[string]interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", s.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Resend answers 200 or 201 depending on the endpoint; any 2xx is a
	// delivered request.
	if resp.StatusCode >= 300 {
		return fmt.Errorf("resend API returned status %d", resp.StatusCode)
	}
	return nil
}
