package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"github.com/Lllllllleong/formdocumentflow/internal/models"
)

// SaveToGCSAtomically writes content to a GCS object only if it doesn't already exist.
func SaveToGCSAtomically(ctx context.Context, bucket *storage.BucketHandle, objectName, contentType string, content []byte) error {
	writer := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, bytes.NewReader(content)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write to GCS: %w", err)
	}

	// Precondition failures surface on Close for small objects.
	if err := writer.Close(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
			slog.Info("Skipping: object already exists.", "object", objectName)
			return nil
		}
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}

// GCSArchiver keeps a copy of every exported file in a bucket.
type GCSArchiver struct {
	bucket     *storage.BucketHandle
	bucketName string
}

// NewGCSArchiver returns an archiver writing into bucketName.
func NewGCSArchiver(client *storage.Client, bucketName string) *GCSArchiver {
	return &GCSArchiver{bucket: client.Bucket(bucketName), bucketName: bucketName}
}

// Archive stores file under <docID>/<file name> and returns its gs:// URI.
func (a *GCSArchiver) Archive(ctx context.Context, docID string, file *models.ExportedFile) (string, error) {
	objectName := fmt.Sprintf("%s/%s", docID, file.Name)
	if err := SaveToGCSAtomically(ctx, a.bucket, objectName, file.MIMEType, file.Content); err != nil {
		return "", err
	}
	return fmt.Sprintf("gs://%s/%s", a.bucketName, objectName), nil
}
