package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/formdocumentflow/internal/models"
)

func TestSuccessEmail(t *testing.T) {
	cfg := testConfig()
	n := NewNotifier(&fakeMail{}, cfg)
	file := &models.ExportedFile{Name: "2024-01-01_00-00-00_Alice.docx"}

	email := n.SuccessEmail("doc-1", file)
	assert.Equal(t, cfg.AdminEmails, email.To)
	assert.Equal(t, cfg.Subject, email.Subject)
	assert.True(t, strings.HasSuffix(email.Body, "https://docs.google.com/document/d/doc-1"))
	assert.Equal(t, cfg.SuccessBody+"\nhttps://docs.google.com/document/d/doc-1", email.Body)
	assert.Same(t, file, email.Attachment)
}

func TestErrorEmail_UsesUnderlyingMessage(t *testing.T) {
	cfg := testConfig()
	n := NewNotifier(&fakeMail{}, cfg)

	email := n.ErrorEmail(&StageError{Stage: StageExport, Err: errors.New("Access denied")})
	assert.Equal(t, cfg.ErrorSubject, email.Subject)
	assert.Equal(t, cfg.ErrorBody+"\nAccess denied", email.Body)
	assert.Nil(t, email.Attachment)

	plain := n.ErrorEmail(errors.New("boom"))
	assert.Equal(t, cfg.ErrorBody+"\nboom", plain.Body)
}

func TestNotifyError_PropagatesSendFailure(t *testing.T) {
	mail := &fakeMail{failures: map[int]error{0: errBoom}}
	n := NewNotifier(mail, testConfig())

	err := n.NotifyError(context.Background(), errors.New("x"))
	require.ErrorIs(t, err, errBoom)
	assert.Empty(t, mail.sent)
}

func TestFailedStage(t *testing.T) {
	err := &StageError{Stage: StageGenerate, Err: errBoom}
	assert.Equal(t, StageGenerate, FailedStage(err))
	assert.Equal(t, Stage(""), FailedStage(errBoom))
	assert.Equal(t, "generate stage failed: "+errBoom.Error(), err.Error())
	assert.True(t, errors.Is(err, errBoom))
}
