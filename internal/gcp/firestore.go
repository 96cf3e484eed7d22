package gcp

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/Lllllllleong/formdocumentflow/internal/models"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// FirestoreRecorder keeps one Firestore document per invocation, keyed by invocation ID.
type FirestoreRecorder struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreRecorder returns a recorder writing to the given collection.
func NewFirestoreRecorder(client *firestore.Client, collection string) *FirestoreRecorder {
	return &FirestoreRecorder{client: client, collection: collection}
}

// Create writes the initial record of an invocation.
func (r *FirestoreRecorder) Create(ctx context.Context, sub models.Submission) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}
	sub.UpdatedAt = sub.CreatedAt
	if _, err := r.client.Collection(r.collection).Doc(sub.InvocationID).Set(ctx, sub); err != nil {
		return fmt.Errorf("failed to create submission record: %w", err)
	}
	return nil
}

// UpdateStatus moves an invocation record to status and sets any extra fields.
func (r *FirestoreRecorder) UpdateStatus(ctx context.Context, invocationID, status string, fields map[string]interface{}) error {
	updates := []firestore.Update{
		{Path: "status", Value: status},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	}
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	if _, err := r.client.Collection(r.collection).Doc(invocationID).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update submission record to %s: %w", status, err)
	}
	return nil
}

// Close releases the underlying client.
func (r *FirestoreRecorder) Close() error {
	return r.client.Close()
}
