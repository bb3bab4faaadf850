package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

type jobKind int

const (
	jobOrderConfirmation jobKind = iota
	jobOperatorAlert
)

type job struct {
	kind jobKind

	//注文確認用
	order model.Order
	items []model.OrderItem
	email string

	//運用通知用
	subject string
	body    string
}

// Dispatcher は確認メールと運用通知を非同期で送るワーカー。
// 送信失敗はログに残すだけで、注文処理の結果には一切影響しない。
type Dispatcher struct {
	mailer       Mailer
	orders       repo.OrderRepository
	logger       *zap.Logger
	fromEmail    string
	contactEmail string

	jobs chan job
	wg   sync.WaitGroup
}

func NewDispatcher(mailer Mailer, orders repo.OrderRepository, logger *zap.Logger, fromEmail, contactEmail string) *Dispatcher {
	return &Dispatcher{
		mailer:       mailer,
		orders:       orders,
		logger:       logger,
		fromEmail:    fromEmail,
		contactEmail: contactEmail,
		jobs:         make(chan job, 64),
	}
}

// Start はワーカーを起動する。ctxのcancelで停止。
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case j, ok := <-d.jobs:
				if !ok {
					return
				}
				d.process(j)
			}
		}
	}()
}

// Stop はキューを閉じてワーカーの終了を待つ。
func (d *Dispatcher) Stop() {
	close(d.jobs)
	d.wg.Wait()
}

// EnqueueOrderConfirmation は注文確認メールを積む。キューが満杯なら捨ててログ。
func (d *Dispatcher) EnqueueOrderConfirmation(order model.Order, items []model.OrderItem, email string) {
	select {
	case d.jobs <- job{kind: jobOrderConfirmation, order: order, items: items, email: email}:
	default:
		d.logger.Warn("notification queue full, dropping confirmation mail",
			zap.String("order_number", order.OrderNumber),
		)
	}
}

// EnqueueOperatorAlert は手動対応が必要な異常の通知を積む。
func (d *Dispatcher) EnqueueOperatorAlert(subject, body string) {
	select {
	case d.jobs <- job{kind: jobOperatorAlert, subject: subject, body: body}:
	default:
		d.logger.Warn("notification queue full, dropping operator alert",
			zap.String("subject", subject),
		)
	}
}

func (d *Dispatcher) process(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch j.kind {
	case jobOrderConfirmation:
		mail := Email{
			To:      []string{j.email},
			From:    d.fromEmail,
			Subject: fmt.Sprintf("Order confirmed - %s", j.order.OrderNumber),
			HTML:    orderConfirmationHTML(j.order, j.items),
		}
		if err := d.mailer.Send(ctx, mail); err != nil {
			d.logger.Error("failed to send confirmation mail",
				zap.String("order_number", j.order.OrderNumber),
				zap.String("email", j.email),
				zap.Error(err),
			)
			return
		}
		if err := d.orders.MarkConfirmationEmailSent(ctx, j.order.ID); err != nil {
			d.logger.Error("failed to mark confirmation mail sent",
				zap.Int64("order_id", j.order.ID),
				zap.Error(err),
			)
		}

	case jobOperatorAlert:
		if d.contactEmail == "" {
			d.logger.Warn("contact email not configured, alert logged only",
				zap.String("subject", j.subject),
				zap.String("body", j.body),
			)
			return
		}
		mail := Email{
			To:      []string{d.contactEmail},
			From:    d.fromEmail,
			Subject: "[Plagued Store] " + j.subject,
			HTML:    "<pre>" + j.body + "</pre>",
		}
		if err := d.mailer.Send(ctx, mail); err != nil {
			d.logger.Error("failed to send operator alert",
				zap.String("subject", j.subject),
				zap.Error(err),
			)
		}
	}
}

func orderConfirmationHTML(order model.Order, items []model.OrderItem) string {
	var b strings.Builder

	b.WriteString("<h2>Thanks for your order!</h2>")
	fmt.Fprintf(&b, "<p>Order number: <strong>%s</strong></p>", order.OrderNumber)
	b.WriteString("<table><tr><th>Item</th><th>Size</th><th>Qty</th><th>Total</th></tr>")
	for _, it := range items {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%d</td><td>£%.2f</td></tr>",
			it.ProductName, it.ProductSize, it.Quantity, float64(it.LineTotal)/100)
	}
	b.WriteString("</table>")

	fmt.Fprintf(&b, "<p>Subtotal: £%.2f</p>", float64(order.SubtotalAmount)/100)
	if order.DiscountAmount > 0 {
		fmt.Fprintf(&b, "<p>Discount: -£%.2f</p>", float64(order.DiscountAmount)/100)
	}
	fmt.Fprintf(&b, "<p>Shipping: £%.2f</p>", float64(order.ShippingAmount)/100)
	fmt.Fprintf(&b, "<p><strong>Total: £%.2f</strong></p>", float64(order.TotalAmount)/100)

	return b.String()
}
