package services

import (
	"context"

	"github.com/Lllllllleong/formdocumentflow/internal/config"
	"github.com/Lllllllleong/formdocumentflow/internal/models"
	"github.com/Lllllllleong/formdocumentflow/internal/placeholder"
)

// FormResponseSource reads stored form responses. It backs the debug entry point only.
type FormResponseSource interface {
	LatestResponse(ctx context.Context) (*models.FormSubmissionRequest, error)
}

// DocumentStore copies, edits and names documents on the hosting platform.
type DocumentStore interface {
	Copy(ctx context.Context, templateID string) (string, error)
	ReplaceText(ctx context.Context, docID string, plan []placeholder.Replacement) error
	Rename(ctx context.Context, fileID, name string) error
	Name(ctx context.Context, fileID string) (string, error)
}

// ExportService converts a document to a binary format.
type ExportService interface {
	Export(ctx context.Context, docID string, format config.Format) ([]byte, error)
}

// MailSender delivers a notification email.
type MailSender interface {
	Send(ctx context.Context, email *models.NotificationEmail) error
}

// Recorder persists the progress of each invocation.
type Recorder interface {
	Create(ctx context.Context, sub models.Submission) error
	UpdateStatus(ctx context.Context, invocationID, status string, fields map[string]interface{}) error
}

// Archiver keeps a copy of exported files.
type Archiver interface {
	Archive(ctx context.Context, docID string, file *models.ExportedFile) (string, error)
}
