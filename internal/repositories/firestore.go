package repositories

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/asifdigital/ai-marketing-functions/internal/domain"
)

// FirestoreRepository implements domain.UsageWriter using Firestore
// Uses requestId as document ID for guaranteed idempotency
type FirestoreRepository struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreRepository creates a new Firestore repository
func NewFirestoreRepository(client *firestore.Client, collection string) *FirestoreRepository {
	return &FirestoreRepository{
		client:     client,
		collection: collection,
	}
}

// Write stores a usage record in Firestore
func (r *FirestoreRepository) Write(ctx context.Context, record domain.UsageRecord) error {
	if record.RequestID == "" {
		return fmt.Errorf("usage record has no requestId")
	}
	docRef := r.client.Collection(r.collection).Doc(record.RequestID)

	// Set overwrites if document exists (idempotent operation)
	if _, err := docRef.Set(ctx, usageFields(record)); err != nil {
		return fmt.Errorf("failed to write usage to Firestore: %w", err)
	}

	return nil
}
