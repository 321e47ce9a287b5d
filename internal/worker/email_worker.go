package worker

// email_worker.go
// Processes receipt email jobs from QueueEmail: renders the receipt PDF,
// archives it under PDF_STORAGE_PATH and mails it to the customer.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/infra"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReceiptRenderer renders a receipt PDF.
type ReceiptRenderer interface {
	PDF(ctx context.Context, id uuid.UUID) ([]byte, string, error)
}

// ReceiptMailer delivers a receipt by email.
type ReceiptMailer interface {
	SendReceipt(to, subject, body, pdfPath string) error
}

type EmailWorker struct {
	receipts    ReceiptRenderer
	mailer      ReceiptMailer
	storagePath string
}

func NewEmailWorker(receipts ReceiptRenderer, mailer ReceiptMailer, storagePath string) *EmailWorker {
	return &EmailWorker{receipts: receipts, mailer: mailer, storagePath: storagePath}
}

// Process returns nil for payloads that can never succeed so they are not
// retried; delivery failures are returned for retry.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var job service.ReceiptEmailJob
	if err := json.Unmarshal(raw, &job); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if job.ToEmail == "" {
		log.Warn().Str("receipt_id", job.ReceiptID).Msg("email_worker: empty to_email, skipping")
		return nil
	}
	id, err := uuid.Parse(job.ReceiptID)
	if err != nil {
		log.Error().Str("receipt_id", job.ReceiptID).Msg("email_worker: invalid receipt_id")
		return nil
	}

	data, name, err := w.receipts.PDF(ctx, id)
	if errors.Is(err, service.ErrNotFound) {
		log.Warn().Str("receipt_id", job.ReceiptID).Msg("email_worker: receipt not found, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}
	path, err := infra.SavePDF(w.storagePath, name, data)
	if err != nil {
		return err
	}

	subject := "Recibo Garage Mitre"
	body := "Adjuntamos su recibo mensual. Gracias por confiar en nosotros."
	if err := w.mailer.SendReceipt(job.ToEmail, subject, body, path); err != nil {
		if errors.Is(err, infra.ErrMailerDisabled) {
			log.Warn().Str("receipt_id", job.ReceiptID).Msg("email_worker: SMTP not configured, dropping job")
			return nil
		}
		return fmt.Errorf("send receipt: %w", err)
	}
	log.Info().Str("to", job.ToEmail).Str("receipt_id", job.ReceiptID).Msg("email_worker: receipt sent")
	return nil
}
