package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Lllllllleong/formdocumentflow/internal/models"
)

var (
	errNoSubmission = errors.New("no form submission in event")
	errNoFormSource = errors.New("no form configured for reading stored responses (set FORM_ID)")
)

// Extractor turns a submission event, or the latest stored response, into field responses.
type Extractor struct {
	source FormResponseSource
}

// NewExtractor returns an extractor. source may be nil when the debug path is not configured.
func NewExtractor(source FormResponseSource) *Extractor {
	return &Extractor{source: source}
}

// Decode parses a submission payload, either the bare JSON request or the same
// JSON wrapped in a Pub/Sub push envelope.
func (e *Extractor) Decode(data []byte) (*models.FormSubmissionRequest, error) {
	if len(data) == 0 {
		return nil, errNoSubmission
	}

	var envelope models.PubSubMessage
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Message.Data) > 0 {
		data = envelope.Message.Data
	}

	var req models.FormSubmissionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("could not parse form submission: %w", err)
	}
	return &req, nil
}

// FromRequest returns the item responses of req in submission order.
func (e *Extractor) FromRequest(req *models.FormSubmissionRequest) ([]models.FieldResponse, error) {
	if req == nil {
		return nil, errNoSubmission
	}
	responses := make([]models.FieldResponse, 0, len(req.Items))
	for _, item := range req.Items {
		responses = append(responses, models.FieldResponse{Key: item.Title, Value: item.Answer})
	}
	return responses, nil
}

// Latest reads the most recent stored response of the configured form.
// Every call returns the same record until a new response arrives, so it is
// meant for manual runs only.
func (e *Extractor) Latest(ctx context.Context) (*models.FormSubmissionRequest, error) {
	if e.source == nil {
		return nil, errNoFormSource
	}
	return e.source.LatestResponse(ctx)
}
