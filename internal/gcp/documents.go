package gcp

import (
	"context"
	"fmt"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/Lllllllleong/formdocumentflow/internal/placeholder"
)

// DriveDocumentStore copies and renames files through the Drive API and edits
// their text through the Docs API.
type DriveDocumentStore struct {
	drive *drive.Service
	docs  *docs.Service
}

// NewDriveDocumentStore creates Drive and Docs clients sharing the given options.
func NewDriveDocumentStore(ctx context.Context, opts ...option.ClientOption) (*DriveDocumentStore, error) {
	driveOpts := append([]option.ClientOption{option.WithScopes(drive.DriveScope)}, opts...)
	driveService, err := drive.NewService(ctx, driveOpts...)
	if err != nil {
		return nil, fmt.Errorf("drive.NewService: %w", err)
	}

	docsOpts := append([]option.ClientOption{option.WithScopes(docs.DocumentsScope)}, opts...)
	docsService, err := docs.NewService(ctx, docsOpts...)
	if err != nil {
		return nil, fmt.Errorf("docs.NewService: %w", err)
	}

	return &DriveDocumentStore{drive: driveService, docs: docsService}, nil
}

// Copy duplicates the template file and returns the ID of the copy.
func (s *DriveDocumentStore) Copy(ctx context.Context, templateID string) (string, error) {
	file, err := s.drive.Files.Copy(templateID, &drive.File{}).
		SupportsAllDrives(true).
		Fields("id", "name").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to copy template %s: %w", templateID, err)
	}
	return file.Id, nil
}

// ReplaceText applies the plan to the whole document in a single batch update.
// The Docs API applies the requests in order, which keeps the plan's
// single-pass guarantee.
func (s *DriveDocumentStore) ReplaceText(ctx context.Context, docID string, plan []placeholder.Replacement) error {
	if len(plan) == 0 {
		return nil
	}

	requests := make([]*docs.Request, 0, len(plan))
	for _, r := range plan {
		replace := &docs.ReplaceAllTextRequest{
			ContainsText: &docs.SubstringMatchCriteria{Text: r.Find, MatchCase: true},
			ReplaceText:  r.Replace,
		}
		// An empty answer must still remove the token.
		if r.Replace == "" {
			replace.ForceSendFields = []string{"ReplaceText"}
		}
		requests = append(requests, &docs.Request{ReplaceAllText: replace})
	}

	_, err := s.docs.Documents.BatchUpdate(docID, &docs.BatchUpdateDocumentRequest{Requests: requests}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to replace placeholders in %s: %w", docID, err)
	}
	return nil
}

// Rename sets the display name of a file.
func (s *DriveDocumentStore) Rename(ctx context.Context, fileID, name string) error {
	_, err := s.drive.Files.Update(fileID, &drive.File{Name: name}).
		SupportsAllDrives(true).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to rename %s to %q: %w", fileID, name, err)
	}
	return nil
}

// Name returns the display name of a file.
func (s *DriveDocumentStore) Name(ctx context.Context, fileID string) (string, error) {
	file, err := s.drive.Files.Get(fileID).
		SupportsAllDrives(true).
		Fields("name").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to read name of %s: %w", fileID, err)
	}
	return file.Name, nil
}
