package gcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/api/forms/v1"
	"google.golang.org/api/option"

	"github.com/Lllllllleong/formdocumentflow/internal/models"
)

// ErrNoResponses is returned when the form has no stored responses.
var ErrNoResponses = errors.New("no responses found")

// FormsSource reads stored responses of one form through the Forms API.
type FormsSource struct {
	service *forms.Service
	formID  string
}

// NewFormsSource creates a Forms API client bound to formID.
func NewFormsSource(ctx context.Context, formID string, opts ...option.ClientOption) (*FormsSource, error) {
	if formID == "" {
		return nil, fmt.Errorf("formID must be provided to read form responses")
	}
	opts = append([]option.ClientOption{option.WithScopes(forms.FormsResponsesReadonlyScope, forms.FormsBodyReadonlyScope)}, opts...)
	service, err := forms.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("forms.NewService: %w", err)
	}
	return &FormsSource{service: service, formID: formID}, nil
}

// LatestResponse returns the most recently submitted response, with answers
// titled by their form items and ordered as the items appear on the form.
func (s *FormsSource) LatestResponse(ctx context.Context) (*models.FormSubmissionRequest, error) {
	form, err := s.service.Forms.Get(s.formID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read form %s: %w", s.formID, err)
	}

	latest, err := s.latest(ctx)
	if err != nil {
		return nil, err
	}

	req := &models.FormSubmissionRequest{FormID: s.formID, ResponseID: latest.ResponseId}
	for _, item := range form.Items {
		if item.QuestionItem == nil || item.QuestionItem.Question == nil {
			continue
		}
		answer, ok := latest.Answers[item.QuestionItem.Question.QuestionId]
		if !ok {
			continue
		}
		req.Items = append(req.Items, models.ItemResponse{Title: item.Title, Answer: answerText(answer)})
	}
	return req, nil
}

func (s *FormsSource) latest(ctx context.Context) (*forms.FormResponse, error) {
	var (
		latest     *forms.FormResponse
		latestTime time.Time
		pageToken  string
	)
	for {
		call := s.service.Forms.Responses.List(s.formID).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		page, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list responses of form %s: %w", s.formID, err)
		}
		for _, r := range page.Responses {
			submitted, err := time.Parse(time.RFC3339Nano, r.LastSubmittedTime)
			if err != nil {
				slog.Warn("Skipping response with unparsable submission time.", "responseId", r.ResponseId, "lastSubmittedTime", r.LastSubmittedTime, "error", err)
				continue
			}
			if latest == nil || submitted.After(latestTime) {
				latest, latestTime = r, submitted
			}
		}
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}
	if latest == nil {
		return nil, ErrNoResponses
	}
	return latest, nil
}

// answerText flattens an answer the way the form would display it.
func answerText(answer forms.Answer) string {
	var values []string
	if answer.TextAnswers != nil {
		for _, a := range answer.TextAnswers.Answers {
			values = append(values, a.Value)
		}
	}
	if answer.FileUploadAnswers != nil {
		for _, a := range answer.FileUploadAnswers.Answers {
			values = append(values, a.FileId)
		}
	}
	return strings.Join(values, ", ")
}
