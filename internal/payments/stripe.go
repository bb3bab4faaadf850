package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"
)

// PaymentIntent作成の入力。金額はペンス。
type CreateIntentInput struct {
	Amount       int64
	Currency     string
	ReceiptEmail string
	Metadata     map[string]string
}

type CreateIntentOutput struct {
	ID           string
	ClientSecret string
}

// Stripe側の住所スナップショット
type EventAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type EventShipping struct {
	Name    string       `json:"name"`
	Address EventAddress `json:"address"`
}

// 検証済みWebhookから取り出した決済情報。
// stripe-goの型をusecaseへ漏らさないためのローカル表現。
type EventPaymentIntent struct {
	ID           string
	Amount       int64
	Currency     string
	ReceiptEmail string
	Metadata     map[string]string
	Shipping     EventShipping
}

type Event struct {
	Type          string
	PaymentIntent EventPaymentIntent
}

// イベントの種別
const EventTypePaymentIntentSucceeded = "payment_intent.succeeded"

var (
	ErrInvalidPayload   = errors.New("payments: invalid payload")
	ErrInvalidSignature = errors.New("payments: invalid signature")
)

// IntentCreator はPaymentIntentを作る。usecaseはこれ越しにStripeを呼ぶ。
type IntentCreator interface {
	CreatePaymentIntent(ctx context.Context, in CreateIntentInput) (CreateIntentOutput, error)
}

// WebhookVerifier は署名を検証してイベントを返す。検証失敗はErrInvalidSignature。
type WebhookVerifier interface {
	VerifyEvent(payload []byte, signatureHeader string) (Event, error)
}

type StripeClient struct {
	api           *client.API
	webhookSecret string
}

// NewStripeClient はStripeクライアントを作る。
// 外部呼び出しはすべて短いタイムアウト付き（リトライはしない）。
func NewStripeClient(apiKey, webhookSecret string) (*StripeClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("payments: api key is required")
	}
	if strings.TrimSpace(webhookSecret) == "" {
		return nil, errors.New("payments: webhook secret is required")
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}
	backends := stripe.NewBackends(httpClient)

	return &StripeClient{
		api:           client.New(apiKey, backends),
		webhookSecret: webhookSecret,
	}, nil
}

func (s *StripeClient) CreatePaymentIntent(ctx context.Context, in CreateIntentInput) (CreateIntentOutput, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(in.Amount),
		Currency: stripe.String(in.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	//同じリクエストの二重送信でPaymentIntentが増えないように
	params.SetIdempotencyKey(uuid.NewString())

	if in.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(in.ReceiptEmail)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return CreateIntentOutput{}, err
	}

	return CreateIntentOutput{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}

func (s *StripeClient) VerifyEvent(payload []byte, signatureHeader string) (Event, error) {
	ev, err := webhook.ConstructEvent(payload, signatureHeader, s.webhookSecret)
	if err != nil {
		return Event{}, ErrInvalidSignature
	}

	out := Event{Type: string(ev.Type)}

	if out.Type == EventTypePaymentIntentSucceeded {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return Event{}, ErrInvalidPayload
		}
		out.PaymentIntent = toEventPaymentIntent(&pi)
	}

	return out, nil
}

func toEventPaymentIntent(pi *stripe.PaymentIntent) EventPaymentIntent {
	out := EventPaymentIntent{
		ID:           pi.ID,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		ReceiptEmail: pi.ReceiptEmail,
		Metadata:     pi.Metadata,
	}

	if pi.Shipping != nil {
		out.Shipping.Name = pi.Shipping.Name
		if pi.Shipping.Address != nil {
			out.Shipping.Address = EventAddress{
				Line1:      pi.Shipping.Address.Line1,
				Line2:      pi.Shipping.Address.Line2,
				City:       pi.Shipping.Address.City,
				State:      pi.Shipping.Address.State,
				PostalCode: pi.Shipping.Address.PostalCode,
				Country:    pi.Shipping.Address.Country,
			}
		}
	}

	return out
}
