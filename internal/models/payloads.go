package models

// These structs define the JSON payloads accepted and returned by the
// form-to-document functions.

// ItemResponse is a single answered form item as delivered by the form trigger.
type ItemResponse struct {
	Title  string `json:"title"`
	Answer string `json:"answer"`
}

// FormSubmissionRequest is the input for the form-submission function.
type FormSubmissionRequest struct {
	FormID     string         `json:"formId,omitempty"`
	ResponseID string         `json:"responseId,omitempty"`
	Items      []ItemResponse `json:"items"`
}

// FormSubmissionResponse is the output of the form-submission function.
type FormSubmissionResponse struct {
	Status       string `json:"status"`
	InvocationID string `json:"invocationId"`
	DocumentID   string `json:"documentId,omitempty"`
	DocumentURL  string `json:"documentUrl,omitempty"`
	FileName     string `json:"fileName,omitempty"`
	FailedStage  string `json:"failedStage,omitempty"`
	Error        string `json:"error,omitempty"`
}

// PubSubMessage is the envelope of a Pub/Sub-delivered CloudEvent.
type PubSubMessage struct {
	Message struct {
		Data       []byte            `json:"data"`
		Attributes map[string]string `json:"attributes,omitempty"`
		ID         string            `json:"messageId,omitempty"`
	} `json:"message"`
	Subscription string `json:"subscription,omitempty"`
}
