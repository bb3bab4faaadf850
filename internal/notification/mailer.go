package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Email struct {
	To      []string `json:"to"`
	From    string   `json:"from"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// Mailer はメールを1通送る。失敗しても注文処理には影響させないこと。
type Mailer interface {
	Send(ctx context.Context, mail Email) error
}

const resendEndpoint = "https://api.resend.com/emails"

// Resend API経由で送るMailer。
// APIキー未設定なら送らずログだけ出す（開発用）。
type ResendMailer struct {
	apiKey string
	client *http.Client
	logger *zap.Logger
}

func NewResendMailer(apiKey string, logger *zap.Logger) *ResendMailer {
	return &ResendMailer{
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (m *ResendMailer) Send(ctx context.Context, mail Email) error {
	if m.apiKey == "" {
		m.logger.Info("resend not configured, skipping mail",
			zap.Strings("to", mail.To),
			zap.String("subject", mail.Subject),
		)
		return nil
	}

	body, err := json.Marshal(mail)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return fmt.Errorf("resend: unexpected status %d", res.StatusCode)
	}
	return nil
}
