package services

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/formdocumentflow/internal/config"
)

func TestExportName(t *testing.T) {
	assert.Equal(t, "2024-01-01_00-00-00_Alice.docx", ExportName("2024-01-01_00-00-00_Alice", config.FormatDOCX))
	assert.Equal(t, "report.odt", ExportName("report", config.FormatODT))
}

func TestExporter_UsesDisplayName(t *testing.T) {
	store := newFakeStore("x")
	store.names["doc-7"] = "2024-01-01_00-00-00_Bob"
	exports := &fakeExports{content: []byte("PK\x03\x04odt")}
	e := NewExporter(exports, store, config.FormatODT)

	file, err := e.Export(context.Background(), "doc-7")
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01_00-00-00_Bob.odt", file.Name)
	assert.Equal(t, config.FormatODT.MIMEType(), file.MIMEType)
	assert.Equal(t, []string{"doc-7.odt"}, exports.calls)
}

func TestExporter_NameLookupFailure(t *testing.T) {
	store := newFakeStore("x")
	store.nameErr = errBoom
	exports := &fakeExports{content: docxContent}

	_, err := NewExporter(exports, store, config.FormatDOCX).Export(context.Background(), "doc-1")
	require.ErrorIs(t, err, errBoom)
	assert.Empty(t, exports.calls)
}

func TestCheckFormat(t *testing.T) {
	tests := []struct {
		name    string
		format  config.Format
		content []byte
		wantErr bool
	}{
		{"docx zip", config.FormatDOCX, docxContent, false},
		{"odt zip", config.FormatODT, []byte("PK\x03\x04mimetype"), false},
		{"docx html", config.FormatDOCX, []byte("<!DOCTYPE html>"), true},
		{"empty", config.FormatDOCX, nil, true},
		{"pdf garbage", config.FormatPDF, []byte("<html>error</html>"), true},
		{"pdf one page", config.FormatPDF, onePagePDF(), false},
		{"pdf truncated", config.FormatPDF, onePagePDF()[:40], true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkFormat(tt.format, tt.content)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExporter_AcceptsPDF(t *testing.T) {
	store := newFakeStore("x")
	store.names["doc-1"] = "2024-01-01_00-00-00_Alice"
	exports := &fakeExports{content: onePagePDF()}

	file, err := NewExporter(exports, store, config.FormatPDF).Export(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01_00-00-00_Alice.pdf", file.Name)
	assert.Equal(t, "application/pdf", file.MIMEType)
}

// onePagePDF returns a minimal single page PDF with a correct cross-reference table.
func onePagePDF() []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Resources << >> >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}
