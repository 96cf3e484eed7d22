package services

import (
	"context"

	"github.com/Lllllllleong/formdocumentflow/internal/config"
	"github.com/Lllllllleong/formdocumentflow/internal/models"
)

// Notifier composes and sends the administrator emails.
type Notifier struct {
	sender MailSender
	config config.Config
}

// NewNotifier returns a notifier sending through sender.
func NewNotifier(sender MailSender, cfg config.Config) *Notifier {
	return &Notifier{sender: sender, config: cfg}
}

// SuccessEmail is the configured body followed by the document link, with the export attached.
func (n *Notifier) SuccessEmail(docID string, file *models.ExportedFile) *models.NotificationEmail {
	return &models.NotificationEmail{
		From:       n.config.SenderEmail,
		To:         n.config.AdminEmails,
		Subject:    n.config.Subject,
		Body:       n.config.SuccessBody + "\n" + n.config.DocumentURL(docID),
		Attachment: file,
	}
}

// ErrorEmail is the configured error body followed by the failure message. It has no attachment.
func (n *Notifier) ErrorEmail(failure error) *models.NotificationEmail {
	return &models.NotificationEmail{
		From:    n.config.SenderEmail,
		To:      n.config.AdminEmails,
		Subject: n.config.ErrorSubject,
		Body:    n.config.ErrorBody + "\n" + failureMessage(failure),
	}
}

// NotifySuccess sends the success email.
func (n *Notifier) NotifySuccess(ctx context.Context, docID string, file *models.ExportedFile) error {
	return n.sender.Send(ctx, n.SuccessEmail(docID, file))
}

// NotifyError sends the error email for failure.
func (n *Notifier) NotifyError(ctx context.Context, failure error) error {
	return n.sender.Send(ctx, n.ErrorEmail(failure))
}
