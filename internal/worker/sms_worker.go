package worker

// sms_worker.go
// Processes SMS jobs from QueueSMS. Builds the message text for the
// parent's phone and sends it through the SMS gateway client, which is
// wrapped in a circuit breaker. Failed jobs are retried with exponential
// backoff and moved to the dead letter queue after the final attempt.

import (
	"context"
	"encoding/json"
	"fmt"

	"schoolpay/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const smsMaxAttempts = 3

// ConfirmationSMSPayload carries everything needed to build the
// payment-confirmation message sent to the parent after settlement.
type ConfirmationSMSPayload struct {
	Phone              string `json:"phone"`
	StudentName        string `json:"student_name"`
	StudentID          string `json:"student_id"`
	RegistrationNumber string `json:"registration_number"`
	Amount             string `json:"amount"`
	GradeName          string `json:"grade_name"`
	DiscountPercentage string `json:"discount_percentage"`
}

// PaymentLinkSMSPayload carries the payment link sent to the parent when
// a gateway payment is still pending.
type PaymentLinkSMSPayload struct {
	Phone         string `json:"phone"`
	StudentName   string `json:"student_name"`
	StudentID     string `json:"student_id"`
	Amount        string `json:"amount"`
	PaymentLink   string `json:"payment_link"`
	InvoiceNumber string `json:"invoice_number"`
}

// SMSWorker sends SMS notifications through the gateway client.
type SMSWorker struct {
	client *infra.SMSClient
	rdb    *redis.Client
}

func NewSMSWorker(client *infra.SMSClient, rdb *redis.Client) *SMSWorker {
	return &SMSWorker{client: client, rdb: rdb}
}

// Process handles a single SMS job, dispatching on the job type.
func (w *SMSWorker) Process(ctx context.Context, jobType string, raw json.RawMessage) {
	var phone, message string

	switch jobType {
	case JobTypeConfirmationSMS:
		var p ConfirmationSMSPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			log.Error().Err(err).Msg("sms_worker: invalid confirmation payload")
			return
		}
		phone = p.Phone
		message = buildConfirmationMessage(p)
	case JobTypePaymentLinkSMS:
		var p PaymentLinkSMSPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			log.Error().Err(err).Msg("sms_worker: invalid payment-link payload")
			return
		}
		phone = p.Phone
		message = buildPaymentLinkMessage(p)
	default:
		log.Warn().Str("type", jobType).Msg("sms_worker: unknown job type dropped")
		return
	}

	if phone == "" {
		log.Warn().Str("type", jobType).Msg("sms_worker: empty phone — skipping")
		return
	}

	err := withRetry(ctx, smsMaxAttempts, func(attempt int) error {
		if err := w.client.SendSMS(ctx, phone, message); err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("phone", phone).
				Msg("sms_worker: send attempt failed, retrying")
			return err
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("phone", phone).Msg("sms_worker: send failed after all retries")
		SendToDLQ(ctx, w.rdb, QueueSMS, jobType, raw, err.Error(), smsMaxAttempts)
		return
	}
	log.Info().Str("phone", phone).Str("type", jobType).Msg("sms_worker: SMS sent")
}

func buildConfirmationMessage(p ConfirmationSMSPayload) string {
	msg := fmt.Sprintf(
		"Dear Parent, payment of %s Birr for %s (ID: %s) has been received. Registration %s is confirmed",
		p.Amount, p.StudentName, p.StudentID, p.RegistrationNumber,
	)
	if p.GradeName != "" {
		msg += fmt.Sprintf(" for %s", p.GradeName)
	}
	if p.DiscountPercentage != "" && p.DiscountPercentage != "0" {
		msg += fmt.Sprintf(" (discount %s%% applied)", p.DiscountPercentage)
	}
	return msg + ". Thank you."
}

func buildPaymentLinkMessage(p PaymentLinkSMSPayload) string {
	return fmt.Sprintf(
		"Dear Parent, invoice %s of %s Birr for %s (ID: %s) is awaiting payment. Pay here: %s",
		p.InvoiceNumber, p.Amount, p.StudentName, p.StudentID, p.PaymentLink,
	)
}
