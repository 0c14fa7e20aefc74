// Package notify is the outbound notification boundary. Confirmations are
// enqueued on Redis via asynq and delivered by the notify-worker binary;
// enqueue failures are logged by the caller, never surfaced to the customer.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/slotwise/booking-engine/internal/booking"
)

const TypeCommitmentConfirmed = "notify:commitment_confirmed"

type ConfirmedPayload struct {
	CommitmentID  uuid.UUID `json:"commitment_id"`
	TenantID      uuid.UUID `json:"tenant_id"`
	ResourceID    uuid.UUID `json:"resource_id"`
	StartAt       time.Time `json:"start_at"`
	EndAt         time.Time `json:"end_at"`
	CustomerName  string    `json:"customer_name,omitempty"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
}

// AsynqNotifier enqueues confirmation notifications for async delivery.
type AsynqNotifier struct {
	client *asynq.Client
}

func NewAsynqNotifier(client *asynq.Client) *AsynqNotifier {
	return &AsynqNotifier{client: client}
}

func (n *AsynqNotifier) CommitmentConfirmed(ctx context.Context, c booking.Commitment) error {
	p := ConfirmedPayload{
		CommitmentID: c.ID,
		TenantID:     c.TenantID,
		ResourceID:   c.ResourceID,
		StartAt:      c.StartAt,
		EndAt:        c.EndAt,
	}
	if c.CustomerName != nil {
		p.CustomerName = *c.CustomerName
	}
	if c.CustomerPhone != nil {
		p.CustomerPhone = *c.CustomerPhone
	}

	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal confirmation payload: %w", err)
	}

	task := asynq.NewTask(TypeCommitmentConfirmed, b)
	if _, err := n.client.EnqueueContext(ctx, task, asynq.MaxRetry(5), asynq.Timeout(30*time.Second)); err != nil {
		return fmt.Errorf("enqueue confirmation: %w", err)
	}
	return nil
}

var _ booking.Notifier = (*AsynqNotifier)(nil)

// NewHandler returns the asynq handler that delivers confirmation messages.
// Delivery here is a structured log line standing in for the email/SMS
// senders, which live outside this core.
func NewHandler(logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p ConfirmedPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			return fmt.Errorf("unmarshal confirmation payload: %w", err)
		}

		logger.Info("delivering booking confirmation",
			zap.String("commitment_id", p.CommitmentID.String()),
			zap.String("tenant_id", p.TenantID.String()),
			zap.String("resource_id", p.ResourceID.String()),
			zap.Time("start_at", p.StartAt),
			zap.Time("end_at", p.EndAt),
			zap.String("customer_name", p.CustomerName),
		)
		return nil
	}
}
