package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Lllllllleong/formdocumentflow/internal/config"
	"github.com/Lllllllleong/formdocumentflow/internal/models"
)

// zipMagic opens every docx and odt file.
var zipMagic = []byte("PK\x03\x04")

// Exporter converts a generated document into the configured format and names the result.
type Exporter struct {
	exports ExportService
	store   DocumentStore
	format  config.Format
}

// NewExporter returns an exporter producing format.
func NewExporter(exports ExportService, store DocumentStore, format config.Format) *Exporter {
	return &Exporter{exports: exports, store: store, format: format}
}

// Export downloads docID as <documentName>.<format>. A body that is not a file
// of the requested format is an error even when the endpoint reported success.
func (e *Exporter) Export(ctx context.Context, docID string) (*models.ExportedFile, error) {
	name, err := e.store.Name(ctx, docID)
	if err != nil {
		return nil, err
	}

	content, err := e.exports.Export(ctx, docID, e.format)
	if err != nil {
		return nil, err
	}
	if err := checkFormat(e.format, content); err != nil {
		return nil, fmt.Errorf("export of %s: %w", docID, err)
	}

	return &models.ExportedFile{
		Name:     ExportName(name, e.format),
		MIMEType: e.format.MIMEType(),
		Content:  content,
	}, nil
}

// ExportName returns <documentName>.<format>.
func ExportName(documentName string, format config.Format) string {
	return fmt.Sprintf("%s.%s", documentName, format)
}

func checkFormat(format config.Format, content []byte) error {
	if len(content) == 0 {
		return fmt.Errorf("empty %s file", format)
	}
	switch format {
	case config.FormatDOCX, config.FormatODT:
		if !bytes.HasPrefix(content, zipMagic) {
			return fmt.Errorf("response of %d bytes is not a %s file", len(content), format)
		}
	case config.FormatPDF:
		conf := model.NewDefaultConfiguration()
		conf.ValidationMode = model.ValidationRelaxed
		if err := api.Validate(bytes.NewReader(content), conf); err != nil {
			return fmt.Errorf("response is not a valid pdf: %w", err)
		}
	}
	return nil
}
