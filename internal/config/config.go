package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Format is an export format supported by the Docs export endpoint.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatODT  Format = "odt"
	FormatPDF  Format = "pdf"
)

// MIMEType returns the content type used when attaching an export of this format.
func (f Format) MIMEType() string {
	switch f {
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatODT:
		return "application/vnd.oasis.opendocument.text"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

const (
	TransportGmail = "gmail"
	TransportSMTP  = "smtp"
)

const (
	defaultSubject      = "[formdocumentflow] Your form accepted a new response."
	defaultErrorSubject = "[formdocumentflow] An error has occurred."
	defaultBody         = `
Your form accepted a new response.
The Google Docs document with the same content as the attached file is at the following URL.
`
	defaultErrorBody = `
The formdocumentflow function was not executed for the following reasons.
Check your configuration.
`
	defaultDocumentBaseURL = "https://docs.google.com/document/d/"
)

// SMTPConfig holds the settings for the SMTP mail transport.
type SMTPConfig struct {
	Host     string `validate:"required_if=Enabled true"`
	Port     int    `validate:"omitempty,min=1,max=65535"`
	Username string
	Password string
	UseTLS   bool
	Enabled  bool
}

// Config holds every setting of the form-to-document function.
// It is built once by Load and passed by value to each component.
type Config struct {
	ProjectID         string   `validate:"required_with=FirestoreCollection"`
	TemplateID        string   `validate:"required"`
	AdminEmails       []string `validate:"required,min=1,dive,email"`
	SenderEmail       string   `validate:"omitempty,email"`
	Subject           string
	SuccessBody       string
	ErrorSubject      string
	ErrorBody         string
	SuffixFieldName   string
	OutputFormat      Format   `validate:"required,oneof=docx odt pdf"`
	PlaceholderFields []string `validate:"required,min=1,dive,required"`
	TimeZone          string   `validate:"required,timezone"`
	FormID            string
	MailTransport     string `validate:"oneof=gmail smtp"`
	SMTP              SMTPConfig
	// FirestoreCollection enables the per-invocation audit record when set.
	FirestoreCollection string
	ArchiveBucket       string
	DocumentBaseURL     string `validate:"required,url"`
	// GmailDelegatedUser is the mailbox the Gmail transport sends as. The
	// token is minted by impersonating GmailServiceAccount, which needs
	// domain-wide delegation for the gmail.send scope.
	GmailDelegatedUser  string `validate:"omitempty,email"`
	GmailServiceAccount string `validate:"required_with=GmailDelegatedUser"`
}

// GetEnv reads an environment variable or returns a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// Load reads the optional .env file, then the process environment, and
// returns a validated configuration.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read .env file: %w", err)
	}

	smtpPort, err := strconv.Atoi(GetEnv("SMTP_PORT", "587"))
	if err != nil {
		return Config{}, fmt.Errorf("SMTP_PORT must be an integer: %w", err)
	}
	useTLS, err := strconv.ParseBool(GetEnv("SMTP_USE_TLS", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("SMTP_USE_TLS must be a boolean: %w", err)
	}

	cfg := Config{
		ProjectID:         GetEnv("PROJECT_ID", ""),
		TemplateID:        GetEnv("TEMPLATE_ID", ""),
		AdminEmails:       SplitList(GetEnv("ADMIN_EMAIL", "")),
		SenderEmail:       GetEnv("SENDER_EMAIL", ""),
		Subject:           GetEnv("MAIL_SUBJECT", defaultSubject),
		SuccessBody:       GetEnv("MAIL_BODY", defaultBody),
		ErrorSubject:      GetEnv("ERROR_MAIL_SUBJECT", defaultErrorSubject),
		ErrorBody:         GetEnv("ERROR_MAIL_BODY", defaultErrorBody),
		SuffixFieldName:   GetEnv("SUFFIX_FIELD", "name"),
		OutputFormat:      Format(strings.ToLower(GetEnv("OUTPUT_FORMAT", string(FormatDOCX)))),
		PlaceholderFields: SplitList(GetEnv("PLACEHOLDER_FIELDS", "")),
		TimeZone:          GetEnv("TIME_ZONE", "Asia/Tokyo"),
		FormID:            GetEnv("FORM_ID", ""),
		MailTransport:     strings.ToLower(GetEnv("MAIL_TRANSPORT", TransportGmail)),
		SMTP: SMTPConfig{
			Host:     GetEnv("SMTP_HOST", ""),
			Port:     smtpPort,
			Username: GetEnv("SMTP_USERNAME", ""),
			Password: GetEnv("SMTP_PASSWORD", ""),
			UseTLS:   useTLS,
		},
		FirestoreCollection: GetEnv("FIRESTORE_COLLECTION", ""),
		ArchiveBucket:       GetEnv("ARCHIVE_BUCKET", ""),
		DocumentBaseURL:     GetEnv("DOCUMENT_BASE_URL", defaultDocumentBaseURL),
		GmailDelegatedUser:  GetEnv("GMAIL_DELEGATED_USER", ""),
		GmailServiceAccount: GetEnv("GMAIL_SERVICE_ACCOUNT", ""),
	}
	cfg.SMTP.Enabled = cfg.MailTransport == TransportSMTP
	if cfg.SenderEmail == "" {
		switch {
		case cfg.GmailDelegatedUser != "":
			cfg.SenderEmail = cfg.GmailDelegatedUser
		case len(cfg.AdminEmails) > 0:
			cfg.SenderEmail = cfg.AdminEmails[0]
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	slog.Info("Configuration loaded.", "templateId", cfg.TemplateID, "outputFormat", cfg.OutputFormat, "mailTransport", cfg.MailTransport)
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration and reports the first offending setting.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid configuration: %s failed %q validation", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Location resolves the fixed time zone used for document names.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// DocumentURL returns the browser link of a generated document.
func (c Config) DocumentURL(docID string) string {
	return c.DocumentBaseURL + docID
}

// HasPlaceholder reports whether key is one of the configured placeholder fields.
func (c Config) HasPlaceholder(key string) bool {
	for _, f := range c.PlaceholderFields {
		if f == key {
			return true
		}
	}
	return false
}

// SplitList splits a comma separated list, trimming blanks and dropping empty items.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
