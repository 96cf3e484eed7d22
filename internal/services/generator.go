package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Lllllllleong/formdocumentflow/internal/config"
	"github.com/Lllllllleong/formdocumentflow/internal/models"
	"github.com/Lllllllleong/formdocumentflow/internal/placeholder"
)

// TimestampLayout formats document names as yyyy-MM-dd_HH-mm-ss.
const TimestampLayout = "2006-01-02_15-04-05"

// GeneratedDocument is a filled-in copy of the template.
type GeneratedDocument struct {
	ID   string
	Name string
}

// Generator creates a filled-in copy of the template for one submission.
type Generator struct {
	store  DocumentStore
	config config.Config
	loc    *time.Location
	now    func() time.Time
}

// NewGenerator returns a generator naming documents with now() in loc.
func NewGenerator(store DocumentStore, cfg config.Config, loc *time.Location, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{store: store, config: cfg, loc: loc, now: now}
}

// Generate copies the template, substitutes every {{key}} with its answer and
// renames the copy. The copy is left on the platform even if a later step fails.
func (g *Generator) Generate(ctx context.Context, logCtx *slog.Logger, responses []models.FieldResponse) (*GeneratedDocument, error) {
	docID, err := g.store.Copy(ctx, g.config.TemplateID)
	if err != nil {
		return nil, err
	}
	logCtx = logCtx.With("documentId", docID)
	logCtx.Info("Template copied.", "templateId", g.config.TemplateID)

	g.checkPlaceholders(logCtx, responses)

	if err := g.store.ReplaceText(ctx, docID, placeholder.Plan(responses)); err != nil {
		return &GeneratedDocument{ID: docID}, err
	}

	suffix, ok := g.suffix(responses)
	name := DocumentName(g.now().In(g.loc), suffix, ok)
	if err := g.store.Rename(ctx, docID, name); err != nil {
		return &GeneratedDocument{ID: docID}, err
	}
	logCtx.Info("Document generated.", "documentName", name, "fieldCount", len(responses))

	return &GeneratedDocument{ID: docID, Name: name}, nil
}

// suffix returns the answer of the configured suffix field; the last match wins.
func (g *Generator) suffix(responses []models.FieldResponse) (string, bool) {
	var (
		value string
		found bool
	)
	if g.config.SuffixFieldName == "" {
		return "", false
	}
	for _, r := range responses {
		if r.Key == g.config.SuffixFieldName {
			value, found = r.Value, true
		}
	}
	return value, found
}

// checkPlaceholders only logs: substitution runs over whatever fields arrived.
func (g *Generator) checkPlaceholders(logCtx *slog.Logger, responses []models.FieldResponse) {
	present := make(map[string]bool, len(responses))
	for _, r := range responses {
		present[r.Key] = true
		if !g.config.HasPlaceholder(r.Key) {
			logCtx.Warn("Response field has no configured placeholder.", "field", r.Key)
		}
	}
	for _, field := range g.config.PlaceholderFields {
		if !present[field] {
			logCtx.Warn("Configured placeholder has no response; its token is left in the document.", "field", field)
		}
	}
}

// DocumentName builds <timestamp> or <timestamp>_<suffix>.
func DocumentName(t time.Time, suffix string, withSuffix bool) string {
	name := t.Format(TimestampLayout)
	if withSuffix {
		name += "_" + suffix
	}
	return name
}
