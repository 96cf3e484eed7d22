package gcp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"

	"github.com/Lllllllleong/formdocumentflow/internal/config"
)

// maxErrorExcerpt bounds how much of a failed export body is kept in the error.
const maxErrorExcerpt = 512

// ExportError reports a non-success response from the export endpoint.
type ExportError struct {
	DocumentID string
	Format     config.Format
	StatusCode int
	Body       string
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export of %s as %s failed with HTTP %d: %s", e.DocumentID, e.Format, e.StatusCode, e.Body)
}

// HTTPExporter downloads documents from the Docs export endpoint
// (<base><docId>/export?format=<format>) with a bearer token.
type HTTPExporter struct {
	client  *http.Client
	baseURL string
}

// NewHTTPExporter returns an exporter whose requests carry tokens from the supplied source.
func NewHTTPExporter(ctx context.Context, tokens oauth2.TokenSource, baseURL string) *HTTPExporter {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &HTTPExporter{client: oauth2.NewClient(ctx, tokens), baseURL: baseURL}
}

// NewDefaultHTTPExporter uses Application Default Credentials for the bearer token.
func NewDefaultHTTPExporter(ctx context.Context, baseURL string) (*HTTPExporter, error) {
	tokens, err := google.DefaultTokenSource(ctx, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to find default credentials: %w", err)
	}
	return NewHTTPExporter(ctx, tokens, baseURL), nil
}

// Export fetches the document converted to format. Any non-2xx status is an *ExportError.
func (e *HTTPExporter) Export(ctx context.Context, docID string, format config.Format) ([]byte, error) {
	exportURL := fmt.Sprintf("%s%s/export?format=%s", e.baseURL, url.PathEscape(docID), url.QueryEscape(string(format)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build export request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("export request for %s failed: %w", docID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read export of %s: %w", docID, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ExportError{
			DocumentID: docID,
			Format:     format,
			StatusCode: resp.StatusCode,
			Body:       excerpt(body),
		}
	}
	return body, nil
}

// excerpt keeps at most maxErrorExcerpt bytes of body, cut on a rune boundary.
func excerpt(body []byte) string {
	if len(body) > maxErrorExcerpt {
		cut := maxErrorExcerpt
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut]
	}
	return strings.TrimSpace(strings.ToValidUTF8(string(body), ""))
}
