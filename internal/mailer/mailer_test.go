package mailer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/formdocumentflow/internal/config"
	"github.com/Lllllllleong/formdocumentflow/internal/models"
)

func TestRender_WithAttachment(t *testing.T) {
	email := &models.NotificationEmail{
		From:    "robot@example.com",
		To:      []string{"admin@example.com", "boss@example.com"},
		Subject: "Form accepted",
		Body:    "See attachment",
		Attachment: &models.ExportedFile{
			Name:     "2024-01-01_00-00-00_Alice.docx",
			MIMEType: config.FormatDOCX.MIMEType(),
			Content:  []byte("PK\x03\x04fake"),
		},
	}

	raw, err := Render(email)
	require.NoError(t, err)

	msg := string(raw)
	assert.Contains(t, msg, "Subject: Form accepted")
	assert.Contains(t, msg, "admin@example.com")
	assert.Contains(t, msg, "boss@example.com")
	assert.Contains(t, msg, "robot@example.com")
	assert.Contains(t, msg, "2024-01-01_00-00-00_Alice.docx")
	assert.Contains(t, msg, "multipart/mixed")
}

func TestRender_WithoutAttachment(t *testing.T) {
	email := &models.NotificationEmail{
		To:      []string{"admin@example.com"},
		Subject: "Error",
		Body:    "Something failed",
	}

	raw, err := Render(email)
	require.NoError(t, err)

	msg := string(raw)
	assert.Contains(t, msg, "Subject: Error")
	assert.Contains(t, msg, "Something failed")
	assert.False(t, strings.Contains(msg, "multipart/mixed"))
}

func TestNewMessage_InvalidRecipient(t *testing.T) {
	_, err := NewMessage(&models.NotificationEmail{To: []string{"not an address"}, Subject: "x"})
	require.Error(t, err)
}

func TestNewSMTPSender(t *testing.T) {
	sender, err := NewSMTPSender(config.SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", UseTLS: true})
	require.NoError(t, err)
	assert.NotNil(t, sender)
}
