package repositories

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/db"

	"github.com/asifdigital/ai-marketing-functions/internal/domain"
)

// FirebaseRepository implements domain.UsageWriter using Firebase Realtime Database
type FirebaseRepository struct {
	client *db.Client
	path   string
}

// NewFirebaseRepository creates a new Firebase repository writing under path
func NewFirebaseRepository(client *db.Client, path string) *FirebaseRepository {
	return &FirebaseRepository{
		client: client,
		path:   path,
	}
}

// Write stores a usage record in Firebase
func (r *FirebaseRepository) Write(ctx context.Context, record domain.UsageRecord) error {
	ref := r.client.NewRef(r.path)

	// Push creates a new child with auto-generated key
	if _, err := ref.Push(ctx, usageFields(record)); err != nil {
		return fmt.Errorf("failed to write usage: %w", err)
	}

	return nil
}
