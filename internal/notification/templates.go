package notification

import (
	"fmt"
	"strings"

	"ms-marketplace/internal/models"
	"ms-marketplace/internal/order"
)

// EmailContent is a rendered message ready for the mailer.
type EmailContent struct {
	Subject  string
	HTMLBody string
	// AttachQR embeds a QR code of the order number inline.
	AttachQR bool
	QRData   string
}

type statusTemplate struct {
	subject  string
	headline string
	body     string
	accent   string
}

var statusTemplates = map[string]statusTemplate{
	order.StatusPendingPayment: {
		subject:  "We received your order %s",
		headline: "Order placed",
		body:     "Your order is waiting for payment. Complete the payment to get it moving.",
		accent:   "#f0ad4e",
	},
	order.StatusWaitingApproval: {
		subject:  "Payment received for order %s",
		headline: "Payment confirmed",
		body:     "Your payment came through. The seller will review your order shortly.",
		accent:   "#5bc0de",
	},
	order.StatusProcessing: {
		subject:  "Order %s is being prepared",
		headline: "Order approved",
		body:     "The seller accepted your order and is preparing it for shipment.",
		accent:   "#0275d8",
	},
	order.StatusShipped: {
		subject:  "Order %s is on its way",
		headline: "Shipped",
		body:     "Your order left the seller's hands and is on its way to you.",
		accent:   "#5cb85c",
	},
	order.StatusDelivered: {
		subject:  "Order %s was delivered",
		headline: "Delivered",
		body:     "Your order arrived. Thanks for shopping with us.",
		accent:   "#2e7d32",
	},
	order.StatusCancelled: {
		subject:  "Order %s was cancelled",
		headline: "Cancelled",
		body:     "Your order was cancelled.",
		accent:   "#d9534f",
	},
}

// RenderStatusEmail produces the buyer-facing email for a status change.
// Unknown statuses yield ok=false so the worker can skip them without failing.
func RenderStatusEmail(event models.OrderStatusEvent) (EmailContent, bool) {
	tpl, found := statusTemplates[event.Status]
	if !found {
		return EmailContent{}, false
	}

	orderNumber := event.Order.OrderNumber
	if orderNumber == "" {
		orderNumber = event.OrderID
	}
	var extras []string
	if event.Order.SellerNote != "" {
		extras = append(extras, fmt.Sprintf("<p><strong>Note from the seller:</strong> %s</p>", event.Order.SellerNote))
	}
	if event.Order.EstimatedDelivery != nil {
		extras = append(extras, fmt.Sprintf("<p><strong>Estimated delivery:</strong> %s</p>",
			event.Order.EstimatedDelivery.Format("Monday, 2 January 2006")))
	}
	if event.Status == order.StatusCancelled && event.Order.CancelReason != "" {
		extras = append(extras, fmt.Sprintf("<p><strong>Reason:</strong> %s</p>", event.Order.CancelReason))
	}

	html := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <div style="background:%s;color:#fff;padding:20px;text-align:center">
    <h1 style="margin:0">%s</h1>
  </div>
  <div style="padding:24px;border:1px solid #eee;border-top:none">
    <p>%s</p>
    <p><strong>Order number:</strong> %s</p>
    %s
    <p style="text-align:center"><img src="cid:order-qr" alt="%s" width="160" height="160"/></p>
  </div>
</div>`, tpl.accent, tpl.headline, tpl.body, orderNumber, strings.Join(extras, "\n    "), orderNumber)

	return EmailContent{
		Subject:  fmt.Sprintf(tpl.subject, orderNumber),
		HTMLBody: html,
		AttachQR: true,
		QRData:   orderNumber,
	}, true
}

// RenderPasswordResetEmail builds the one-shot reset link message.
func RenderPasswordResetEmail(resetLink string) EmailContent {
	html := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
  <div style="background:#0275d8;color:#fff;padding:20px;text-align:center">
    <h1 style="margin:0">Reset your password</h1>
  </div>
  <div style="padding:24px;border:1px solid #eee;border-top:none">
    <p>Someone asked to reset the password for your account. The link below works once and expires shortly.</p>
    <p style="text-align:center">
      <a href="%s" style="background:#0275d8;color:#fff;padding:12px 24px;text-decoration:none;border-radius:4px">Choose a new password</a>
    </p>
    <p>If this wasn't you, ignore this email and your password stays unchanged.</p>
  </div>
</div>`, resetLink)

	return EmailContent{
		Subject:  "Password reset request",
		HTMLBody: html,
	}
}
