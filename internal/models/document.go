package models

import "time"

// Submission is the Firestore record of one form-to-document invocation.
// It tracks the stage the invocation reached and the resulting document.
type Submission struct {
	InvocationID string    `firestore:"invocationId,omitempty"`
	Trigger      string    `firestore:"trigger,omitempty"`
	ResponseID   string    `firestore:"responseId,omitempty"`
	Status       string    `firestore:"status,omitempty"`
	DocumentID   string    `firestore:"documentId,omitempty"`
	FileName     string    `firestore:"fileName,omitempty"`
	FailedStage  string    `firestore:"failedStage,omitempty"`
	ErrorDetails string    `firestore:"errorDetails,omitempty"`
	CreatedAt    time.Time `firestore:"createdAt,omitempty"`
	UpdatedAt    time.Time `firestore:"updatedAt,omitempty"`
}

// Submission statuses, one per workflow state.
const (
	StatusExtracting = "EXTRACTING"
	StatusGenerating = "GENERATING"
	StatusExporting  = "EXPORTING"
	StatusNotifying  = "NOTIFYING"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// FieldResponse is one submitted form item: the item title and its answer as text.
type FieldResponse struct {
	Key   string
	Value string
}

// ExportedFile is a generated document converted to a binary format.
type ExportedFile struct {
	Name     string
	MIMEType string
	Content  []byte
}

// NotificationEmail is a message to the administrators. Attachment is nil on the error path.
type NotificationEmail struct {
	From       string
	To         []string
	Subject    string
	Body       string
	Attachment *ExportedFile
}
