package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipt: renders the invoice receipt
// PDF, stores its path on the invoice, and enqueues an email job when the
// parent has an email address on file.

import (
	"context"
	"encoding/json"
	"fmt"

	"schoolpay/internal/infra"
	"schoolpay/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	InvoiceID string `json:"invoice_id"`
}

// ReceiptWorker generates PDF receipts for settled invoices.
type ReceiptWorker struct {
	invoiceRepo    repository.InvoiceRepository
	dispatcher     *Dispatcher
	pdfStoragePath string
}

func NewReceiptWorker(invoiceRepo repository.InvoiceRepository, dispatcher *Dispatcher, pdfStoragePath string) *ReceiptWorker {
	return &ReceiptWorker{
		invoiceRepo:    invoiceRepo,
		dispatcher:     dispatcher,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process handles a single receipt job:
//  1. Parse ReceiptJobPayload from the job envelope
//  2. Fetch the invoice with items, payments and student
//  3. Render the receipt PDF
//  4. Store the PDF path on the invoice
//  5. Enqueue an email job when the parent has an email address
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return
	}

	invoiceID, err := uuid.Parse(payload.InvoiceID)
	if err != nil {
		log.Error().Str("invoice_id", payload.InvoiceID).Msg("receipt_worker: invalid invoice_id")
		return
	}

	invoice, err := w.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		log.Error().Err(err).Str("invoice_id", payload.InvoiceID).Msg("receipt_worker: invoice not found")
		return
	}

	pdfPath, err := infra.GenerateReceiptPDF(invoice, w.pdfStoragePath)
	if err != nil {
		log.Error().Err(err).Str("invoice", invoice.InvoiceNumber).Msg("receipt_worker: PDF generation failed")
		return
	}

	if err := w.invoiceRepo.UpdatePDFPath(ctx, invoice.ID, pdfPath); err != nil {
		log.Error().Err(err).Str("invoice", invoice.InvoiceNumber).Msg("receipt_worker: failed to store PDF path")
	} else {
		log.Info().Str("pdf", pdfPath).Str("invoice", invoice.InvoiceNumber).Msg("receipt_worker: receipt generated")
	}

	// Email the receipt when the parent has an address on file.
	if invoice.Student != nil && invoice.Student.Parent != nil && invoice.Student.Parent.Email != nil && *invoice.Student.Parent.Email != "" {
		emailJob := EmailJobPayload{
			ToEmail: *invoice.Student.Parent.Email,
			Subject: fmt.Sprintf("Payment Receipt — Invoice %s", invoice.InvoiceNumber),
			Body: fmt.Sprintf(
				"Dear Parent,\n\nPlease find attached the receipt for invoice %s.\nAmount paid: %s Birr.\n\nThank you.",
				invoice.InvoiceNumber, invoice.PaidAmount.StringFixed(2),
			),
			PDFPath: pdfPath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("invoice", invoice.InvoiceNumber).Msg("receipt_worker: failed to enqueue email")
		} else {
			log.Info().Str("invoice", invoice.InvoiceNumber).Msg("receipt_worker: email job enqueued")
		}
	}
}
