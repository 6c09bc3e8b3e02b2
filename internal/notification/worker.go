package notification

import (
	"context"
	"fmt"

	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"
)

// Sender is what the worker needs from the mailer.
type Sender interface {
	Send(to string, content EmailContent) error
}

// EventSource abstracts the queue consumer so tests can feed events directly.
type EventSource interface {
	Start(ctx context.Context, handler func(event models.OrderStatusEvent))
}

// Worker turns order events from the queue into buyer email. It runs off the
// request path; nothing here can fail an order operation.
type Worker struct {
	Source EventSource
	Mailer Sender
	Logger *logger.Logger
}

func NewWorker(source EventSource, mailer Sender, log *logger.Logger) *Worker {
	return &Worker{Source: source, Mailer: mailer, Logger: log}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.Source.Start(ctx, w.Handle)
}

// Handle processes one event. Events without a buyer email are dropped
// silently; templates for unknown statuses are skipped with a log line.
// Transport failures are logged and never propagated.
func (w *Worker) Handle(event models.OrderStatusEvent) {
	if event.BuyerEmail == "" {
		return
	}

	content, ok := RenderStatusEmail(event)
	if !ok {
		w.Logger.Warn("MAIL", fmt.Sprintf("No template for status %q on order %s, skipping", event.Status, event.OrderID))
		return
	}

	if err := w.Mailer.Send(event.BuyerEmail, content); err != nil {
		w.Logger.Error("MAIL", fmt.Sprintf("Failed to send %q mail for order %s: %v", event.Status, event.OrderID, err))
		return
	}
	w.Logger.LogMail(event.Status, event.BuyerEmail, fmt.Sprintf("Order %s notification delivered", event.OrderID))
}
