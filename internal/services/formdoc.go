package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/Lllllllleong/formdocumentflow/internal/config"
	"github.com/Lllllllleong/formdocumentflow/internal/gcp"
	"github.com/Lllllllleong/formdocumentflow/internal/mailer"
	"github.com/Lllllllleong/formdocumentflow/internal/models"
)

// Trigger names how an invocation was started.
const (
	TriggerEvent = "event"
	TriggerDebug = "debug-latest-response"
)

// Dependencies are the platform capabilities the workflow runs against.
// Responses, Recorder and Archiver are optional.
type Dependencies struct {
	Responses FormResponseSource
	Documents DocumentStore
	Exports   ExportService
	Mail      MailSender
	Recorder  Recorder
	Archiver  Archiver
	Now       func() time.Time
	NewID     func() string
}

// FormDocFunction turns one form submission into a document and mails it to the administrator.
type FormDocFunction struct {
	extractor *Extractor
	generator *Generator
	exporter  *Exporter
	notifier  *Notifier
	recorder  Recorder
	archiver  Archiver
	newID     func() string
	config    config.Config
}

// NewFormDoc loads the configuration and connects to the Google APIs.
func NewFormDoc(ctx context.Context) (*FormDocFunction, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var deps Dependencies
	if deps.Documents, err = gcp.NewDriveDocumentStore(ctx); err != nil {
		return nil, fmt.Errorf("failed to create document store: %w", err)
	}
	if deps.Exports, err = gcp.NewDefaultHTTPExporter(ctx, cfg.DocumentBaseURL); err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	switch cfg.MailTransport {
	case config.TransportSMTP:
		deps.Mail, err = mailer.NewSMTPSender(cfg.SMTP)
	default:
		deps.Mail, err = newGmailSender(ctx, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create mail sender: %w", err)
	}

	if cfg.FormID != "" {
		if deps.Responses, err = gcp.NewFormsSource(ctx, cfg.FormID); err != nil {
			return nil, fmt.Errorf("failed to create form response source: %w", err)
		}
	}

	if cfg.FirestoreCollection != "" {
		firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
		if err != nil {
			return nil, err
		}
		deps.Recorder = gcp.NewFirestoreRecorder(firestoreClient, cfg.FirestoreCollection)
	}

	if cfg.ArchiveBucket != "" {
		storageClient, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		deps.Archiver = gcp.NewGCSArchiver(storageClient, cfg.ArchiveBucket)
	}

	f, err := New(cfg, deps)
	if err != nil {
		return nil, err
	}
	slog.Info("Form-to-document logic initialized.", "templateId", cfg.TemplateID, "debugPath", cfg.FormID != "")
	return f, nil
}

// newGmailSender sends as the delegated user when one is configured. Without
// delegation the default credentials must belong to a real mailbox.
func newGmailSender(ctx context.Context, cfg config.Config) (*gcp.GmailSender, error) {
	if cfg.GmailDelegatedUser == "" {
		slog.Warn("GMAIL_DELEGATED_USER is not set; sending with the default credentials, which fails for service accounts.")
		return gcp.NewGmailSender(ctx)
	}
	return gcp.NewDelegatedGmailSender(ctx, cfg.GmailServiceAccount, cfg.GmailDelegatedUser)
}

// New wires a FormDocFunction from an explicit configuration and dependencies.
func New(cfg config.Config, deps Dependencies) (*FormDocFunction, error) {
	if deps.Documents == nil || deps.Exports == nil || deps.Mail == nil {
		return nil, errors.New("document store, export service and mail sender are required")
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	newID := deps.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	return &FormDocFunction{
		extractor: NewExtractor(deps.Responses),
		generator: NewGenerator(deps.Documents, cfg, loc, deps.Now),
		exporter:  NewExporter(deps.Exports, deps.Documents, cfg.OutputFormat),
		notifier:  NewNotifier(deps.Mail, cfg),
		recorder:  deps.Recorder,
		archiver:  deps.Archiver,
		newID:     newID,
		config:    cfg,
	}, nil
}

// extractFunc produces the field responses of one invocation and the response ID, if known.
type extractFunc func(ctx context.Context) ([]models.FieldResponse, string, error)

// Process handles a decoded submission event.
func (f *FormDocFunction) Process(ctx context.Context, req *models.FormSubmissionRequest) (*models.FormSubmissionResponse, error) {
	return f.run(ctx, TriggerEvent, func(ctx context.Context) ([]models.FieldResponse, string, error) {
		responses, err := f.extractor.FromRequest(req)
		if err != nil {
			return nil, "", err
		}
		return responses, req.ResponseID, nil
	})
}

// ProcessPayload handles a raw submission payload. A payload that cannot be
// parsed fails the extraction stage like any other extraction error.
func (f *FormDocFunction) ProcessPayload(ctx context.Context, data []byte) (*models.FormSubmissionResponse, error) {
	return f.run(ctx, TriggerEvent, func(ctx context.Context) ([]models.FieldResponse, string, error) {
		req, err := f.extractor.Decode(data)
		if err != nil {
			return nil, "", err
		}
		responses, err := f.extractor.FromRequest(req)
		if err != nil {
			return nil, "", err
		}
		return responses, req.ResponseID, nil
	})
}

// ProcessLatest re-processes the most recent stored response of the configured form.
func (f *FormDocFunction) ProcessLatest(ctx context.Context) (*models.FormSubmissionResponse, error) {
	return f.run(ctx, TriggerDebug, func(ctx context.Context) ([]models.FieldResponse, string, error) {
		req, err := f.extractor.Latest(ctx)
		if err != nil {
			return nil, "", err
		}
		responses, err := f.extractor.FromRequest(req)
		if err != nil {
			return nil, "", err
		}
		return responses, req.ResponseID, nil
	})
}

// run executes one invocation and sends exactly one email. The returned error
// is non-nil only when the error notification itself could not be sent.
func (f *FormDocFunction) run(ctx context.Context, trigger string, extract extractFunc) (*models.FormSubmissionResponse, error) {
	invocationID := f.newID()
	logCtx := slog.With("invocationId", invocationID, "trigger", trigger)
	logCtx.Info("Starting form-to-document processing.")

	res := &models.FormSubmissionResponse{InvocationID: invocationID}
	f.createRecord(ctx, logCtx, models.Submission{
		InvocationID: invocationID,
		Trigger:      trigger,
		Status:       models.StatusExtracting,
	})

	err := f.pipeline(ctx, logCtx, res, extract)
	if err == nil {
		res.Status = "success"
		f.updateRecord(ctx, logCtx, invocationID, models.StatusDone, nil)
		logCtx.Info("Form-to-document processing complete.", "documentId", res.DocumentID, "fileName", res.FileName)
		return res, nil
	}

	res.Status = "failed"
	res.FailedStage = string(FailedStage(err))
	res.Error = failureMessage(err)
	logCtx.Error("Form-to-document processing failed", "stage", res.FailedStage, "error", err, "documentId", res.DocumentID)
	f.updateRecord(ctx, logCtx, invocationID, models.StatusFailed, map[string]interface{}{
		"failedStage":  res.FailedStage,
		"errorDetails": res.Error,
	})

	if mailErr := f.notifier.NotifyError(ctx, err); mailErr != nil {
		logCtx.Error("Critical: failed to send error notification", "error", mailErr)
		return res, fmt.Errorf("failed to send error notification for %q: %w", res.Error, mailErr)
	}
	logCtx.Info("Error notification sent.", "to", f.config.AdminEmails)
	return res, nil
}

// pipeline runs the four stages in order. A panic is reported as a failure of
// the stage it happened in.
func (f *FormDocFunction) pipeline(ctx context.Context, logCtx *slog.Logger, res *models.FormSubmissionResponse, extract extractFunc) (err error) {
	stage := StageExtract
	defer func() {
		if r := recover(); r != nil {
			err = &StageError{Stage: stage, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	responses, responseID, err := extract(ctx)
	if err != nil {
		return &StageError{Stage: StageExtract, Err: err}
	}
	logCtx.Info("Responses extracted.", "responseId", responseID, "fieldCount", len(responses))

	stage = StageGenerate
	f.updateRecord(ctx, logCtx, res.InvocationID, models.StatusGenerating, map[string]interface{}{"responseId": responseID})
	doc, err := f.generator.Generate(ctx, logCtx, responses)
	if doc != nil {
		res.DocumentID = doc.ID
		res.DocumentURL = f.config.DocumentURL(doc.ID)
	}
	if err != nil {
		return &StageError{Stage: StageGenerate, Err: err}
	}
	logCtx = logCtx.With("documentId", doc.ID)

	stage = StageExport
	f.updateRecord(ctx, logCtx, res.InvocationID, models.StatusExporting, map[string]interface{}{"documentId": doc.ID})
	file, err := f.exporter.Export(ctx, doc.ID)
	if err != nil {
		return &StageError{Stage: StageExport, Err: err}
	}
	res.FileName = file.Name
	logCtx.Info("Document exported.", "fileName", file.Name, "bytes", len(file.Content))
	f.archive(ctx, logCtx, doc.ID, file)

	stage = StageNotify
	f.updateRecord(ctx, logCtx, res.InvocationID, models.StatusNotifying, map[string]interface{}{"fileName": file.Name})
	if err := f.notifier.NotifySuccess(ctx, doc.ID, file); err != nil {
		return &StageError{Stage: StageNotify, Err: err}
	}
	logCtx.Info("Success notification sent.", "to", f.config.AdminEmails)
	return nil
}

// archive is best effort; a failed copy never fails the invocation.
func (f *FormDocFunction) archive(ctx context.Context, logCtx *slog.Logger, docID string, file *models.ExportedFile) {
	if f.archiver == nil {
		return
	}
	uri, err := f.archiver.Archive(ctx, docID, file)
	if err != nil {
		logCtx.Warn("Failed to archive exported file", "error", err, "fileName", file.Name)
		return
	}
	logCtx.Info("Exported file archived.", "gcsUri", uri)
}

func (f *FormDocFunction) createRecord(ctx context.Context, logCtx *slog.Logger, sub models.Submission) {
	if f.recorder == nil {
		return
	}
	if err := f.recorder.Create(ctx, sub); err != nil {
		logCtx.Error("Critical: failed to create submission record", "error", err)
	}
}

func (f *FormDocFunction) updateRecord(ctx context.Context, logCtx *slog.Logger, invocationID, status string, fields map[string]interface{}) {
	if f.recorder == nil {
		return
	}
	if err := f.recorder.UpdateStatus(ctx, invocationID, status, fields); err != nil {
		logCtx.Error("Critical: failed to update submission record", "status", status, "error", err)
	}
}
