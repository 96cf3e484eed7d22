package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Lllllllleong/formdocumentflow/internal/config"
	"github.com/Lllllllleong/formdocumentflow/internal/models"
	"github.com/Lllllllleong/formdocumentflow/internal/placeholder"
)

var fixedClock = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

func testConfig() config.Config {
	return config.Config{
		TemplateID:        "template-1",
		AdminEmails:       []string{"admin@example.com"},
		SenderEmail:       "admin@example.com",
		Subject:           "[formdocumentflow] accepted",
		SuccessBody:       "\nYour form accepted a new response.\n",
		ErrorSubject:      "[formdocumentflow] error",
		ErrorBody:         "\nThe function was not executed.\n",
		SuffixFieldName:   "name",
		OutputFormat:      config.FormatDOCX,
		PlaceholderFields: []string{"name", "email", "message"},
		TimeZone:          "UTC",
		MailTransport:     config.TransportGmail,
		DocumentBaseURL:   "https://docs.google.com/document/d/",
	}
}

// fakeStore keeps documents in memory and applies replacement plans to their text.
type fakeStore struct {
	templates  map[string]string
	bodies     map[string]string
	names      map[string]string
	copies     int
	copyErr    error
	replaceErr error
	renameErr  error
	nameErr    error
}

func newFakeStore(templateBody string) *fakeStore {
	return &fakeStore{
		templates: map[string]string{"template-1": templateBody},
		bodies:    map[string]string{},
		names:     map[string]string{},
	}
}

func (s *fakeStore) Copy(_ context.Context, templateID string) (string, error) {
	if s.copyErr != nil {
		return "", s.copyErr
	}
	body, ok := s.templates[templateID]
	if !ok {
		return "", fmt.Errorf("file not found: %s", templateID)
	}
	s.copies++
	id := fmt.Sprintf("doc-%d", s.copies)
	s.bodies[id] = body
	s.names[id] = "Copy of template"
	return id, nil
}

func (s *fakeStore) ReplaceText(_ context.Context, docID string, plan []placeholder.Replacement) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.bodies[docID] = placeholder.Apply(s.bodies[docID], plan)
	return nil
}

func (s *fakeStore) Rename(_ context.Context, fileID, name string) error {
	if s.renameErr != nil {
		return s.renameErr
	}
	s.names[fileID] = name
	return nil
}

func (s *fakeStore) Name(_ context.Context, fileID string) (string, error) {
	if s.nameErr != nil {
		return "", s.nameErr
	}
	name, ok := s.names[fileID]
	if !ok {
		return "", fmt.Errorf("file not found: %s", fileID)
	}
	return name, nil
}

type fakeExports struct {
	content []byte
	err     error
	calls   []string
}

func (e *fakeExports) Export(_ context.Context, docID string, format config.Format) ([]byte, error) {
	e.calls = append(e.calls, docID+"."+string(format))
	if e.err != nil {
		return nil, e.err
	}
	return e.content, nil
}

// fakeMail records delivered emails; failures[i] is returned for the i-th call.
type fakeMail struct {
	sent     []*models.NotificationEmail
	attempts int
	failures map[int]error
}

func (m *fakeMail) Send(_ context.Context, email *models.NotificationEmail) error {
	i := m.attempts
	m.attempts++
	if err := m.failures[i]; err != nil {
		return err
	}
	m.sent = append(m.sent, email)
	return nil
}

type fakeSource struct {
	req *models.FormSubmissionRequest
	err error
}

func (s *fakeSource) LatestResponse(context.Context) (*models.FormSubmissionRequest, error) {
	return s.req, s.err
}

type fakeRecorder struct {
	created  []models.Submission
	statuses []string
	fields   map[string]interface{}
	err      error
}

func (r *fakeRecorder) Create(_ context.Context, sub models.Submission) error {
	r.created = append(r.created, sub)
	r.statuses = append(r.statuses, sub.Status)
	return r.err
}

func (r *fakeRecorder) UpdateStatus(_ context.Context, _ string, status string, fields map[string]interface{}) error {
	r.statuses = append(r.statuses, status)
	if r.fields == nil {
		r.fields = map[string]interface{}{}
	}
	for k, v := range fields {
		r.fields[k] = v
	}
	return r.err
}

type fakeArchiver struct {
	archived []string
	err      error
}

func (a *fakeArchiver) Archive(_ context.Context, docID string, file *models.ExportedFile) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.archived = append(a.archived, docID+"/"+file.Name)
	return "gs://archive/" + docID + "/" + file.Name, nil
}

var docxContent = []byte("PK\x03\x04docx-bytes")

var errBoom = errors.New("boom")

func scenarioResponses() []models.ItemResponse {
	return []models.ItemResponse{
		{Title: "name", Answer: "Alice"},
		{Title: "email", Answer: "a@x.com"},
		{Title: "message", Answer: "Hi"},
	}
}
