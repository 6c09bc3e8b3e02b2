package notification_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"
	"ms-marketplace/internal/notification"
	"ms-marketplace/internal/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	sent []struct {
		to      string
		content notification.EmailContent
	}
	failWith error
}

func (m *recordingMailer) Send(to string, content notification.EmailContent) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.sent = append(m.sent, struct {
		to      string
		content notification.EmailContent
	}{to, content})
	return nil
}

func statusEvent(status string) models.OrderStatusEvent {
	return models.OrderStatusEvent{
		OrderID:    "order-1",
		Status:     status,
		BuyerEmail: "buyer@example.com",
		Order: models.Order{
			OrderID:     "order-1",
			OrderNumber: "MKT-AB12CD34",
			Status:      status,
		},
	}
}

func TestWorkerSendsTemplatedMailPerStatus(t *testing.T) {
	mailer := &recordingMailer{}
	worker := notification.NewWorker(nil, mailer, logger.NewLogger())

	statuses := []string{
		order.StatusPendingPayment, order.StatusWaitingApproval, order.StatusProcessing,
		order.StatusShipped, order.StatusDelivered, order.StatusCancelled,
	}
	for _, status := range statuses {
		worker.Handle(statusEvent(status))
	}

	require.Len(t, mailer.sent, len(statuses))
	for _, s := range mailer.sent {
		assert.Equal(t, "buyer@example.com", s.to)
		assert.Contains(t, s.content.Subject, "MKT-AB12CD34")
		assert.True(t, s.content.AttachQR)
		assert.Equal(t, "MKT-AB12CD34", s.content.QRData)
	}
}

func TestWorkerSkipsUnknownStatus(t *testing.T) {
	mailer := &recordingMailer{}
	worker := notification.NewWorker(nil, mailer, logger.NewLogger())

	worker.Handle(statusEvent("Refunded"))
	assert.Empty(t, mailer.sent)
}

func TestWorkerDropsEventsWithoutBuyerEmail(t *testing.T) {
	mailer := &recordingMailer{}
	worker := notification.NewWorker(nil, mailer, logger.NewLogger())

	event := statusEvent(order.StatusShipped)
	event.BuyerEmail = ""
	worker.Handle(event)
	assert.Empty(t, mailer.sent)
}

func TestWorkerSwallowsTransportFailures(t *testing.T) {
	mailer := &recordingMailer{failWith: errors.New("smtp down")}
	worker := notification.NewWorker(nil, mailer, logger.NewLogger())

	assert.NotPanics(t, func() {
		worker.Handle(statusEvent(order.StatusDelivered))
	})
}

func TestCancellationTemplateCarriesReason(t *testing.T) {
	event := statusEvent(order.StatusCancelled)
	event.Order.CancelReason = "out of stock"

	content, ok := notification.RenderStatusEmail(event)
	require.True(t, ok)
	assert.Contains(t, content.HTMLBody, "out of stock")
}

func TestShippedTemplateCarriesSellerNoteAndETA(t *testing.T) {
	eta := time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)
	event := statusEvent(order.StatusShipped)
	event.Order.SellerNote = "left at the depot"
	event.Order.EstimatedDelivery = &eta

	content, ok := notification.RenderStatusEmail(event)
	require.True(t, ok)
	assert.Contains(t, content.HTMLBody, "left at the depot")
	assert.Contains(t, content.HTMLBody, "4 July 2025")
}

func TestPasswordResetTemplateEmbedsLink(t *testing.T) {
	content := notification.RenderPasswordResetEmail("https://app.example/reset?token=abc")
	assert.False(t, content.AttachQR)
	assert.True(t, strings.Contains(content.HTMLBody, "https://app.example/reset?token=abc"))
}
