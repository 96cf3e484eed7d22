package gcp

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/impersonate"
	"google.golang.org/api/option"

	"github.com/Lllllllleong/formdocumentflow/internal/mailer"
	"github.com/Lllllllleong/formdocumentflow/internal/models"
)

// GmailSender sends notification emails through the Gmail API.
type GmailSender struct {
	service *gmail.Service
	userID  string
}

// NewGmailSender creates a Gmail client sending as the authenticated user.
func NewGmailSender(ctx context.Context, opts ...option.ClientOption) (*GmailSender, error) {
	opts = append([]option.ClientOption{option.WithScopes(gmail.GmailSendScope)}, opts...)
	service, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gmail.NewService: %w", err)
	}
	return &GmailSender{service: service, userID: "me"}, nil
}

// DelegatedTokenSource returns gmail.send tokens for user, minted by
// impersonating serviceAccount. serviceAccount needs domain-wide delegation
// for the gmail.send scope, and the calling identity needs
// roles/iam.serviceAccountTokenCreator on it. opts configure the IAM
// Credentials client used for impersonation.
func DelegatedTokenSource(ctx context.Context, serviceAccount, user string, opts ...option.ClientOption) (oauth2.TokenSource, error) {
	if serviceAccount == "" || user == "" {
		return nil, errors.New("both a service account and a delegated user are required for Gmail delegation")
	}
	tokens, err := impersonate.CredentialsTokenSource(ctx, impersonate.CredentialsConfig{
		TargetPrincipal: serviceAccount,
		Scopes:          []string{gmail.GmailSendScope},
		Subject:         user,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to impersonate %s as %s: %w", serviceAccount, user, err)
	}
	return tokens, nil
}

// NewDelegatedGmailSender creates a Gmail client that sends as user through
// domain-wide delegation of serviceAccount. This is the form that works under
// a Cloud Functions runtime identity, which has no mailbox of its own.
func NewDelegatedGmailSender(ctx context.Context, serviceAccount, user string, opts ...option.ClientOption) (*GmailSender, error) {
	tokens, err := DelegatedTokenSource(ctx, serviceAccount, user, opts...)
	if err != nil {
		return nil, err
	}
	return NewGmailSender(ctx, option.WithTokenSource(tokens))
}

// Send renders email as MIME and submits it with users.messages.send.
func (s *GmailSender) Send(ctx context.Context, email *models.NotificationEmail) error {
	raw, err := mailer.Render(email)
	if err != nil {
		return err
	}
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}
	if _, err := s.service.Users.Messages.Send(s.userID, msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", strings.Join(email.To, ", "), err)
	}
	return nil
}
