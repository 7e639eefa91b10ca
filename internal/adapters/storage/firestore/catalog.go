package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/friday-agent/internal/domain"
)

const DefaultCollection = "features"

// CatalogSource reads the feature catalog from a Firestore collection, one
// document per feature, ordered by the "order" field.
type CatalogSource struct {
	client     *firestore.Client
	collection string
}

// NewCatalogSource creates a Firestore-backed domain.CatalogSource.
func NewCatalogSource(ctx context.Context, projectID, collection string) (*CatalogSource, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore catalog")
	}
	if collection == "" {
		collection = DefaultCollection
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &CatalogSource{client: client, collection: collection}, nil
}

type featureDoc struct {
	Name        string `firestore:"name"`
	Category    string `firestore:"category"`
	Command     string `firestore:"command"`
	Description string `firestore:"description"`
	Order       int    `firestore:"order"`
}

func (d featureDoc) toRecord(id string) domain.FeatureRecord {
	return domain.FeatureRecord{
		ID:             domain.FeatureID(id),
		Name:           d.Name,
		Category:       domain.Category(d.Category),
		TriggerCommand: d.Command,
		Description:    d.Description,
	}
}

// LoadFeatures implements domain.CatalogSource.
func (s *CatalogSource) LoadFeatures(ctx context.Context) ([]domain.FeatureRecord, error) {
	iter := s.client.Collection(s.collection).OrderBy("order", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var records []domain.FeatureRecord
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			if status.Code(err) == codes.PermissionDenied {
				return nil, fmt.Errorf("firestore LoadFeatures: permission denied on %q: %w", s.collection, err)
			}
			return nil, fmt.Errorf("firestore LoadFeatures: %w", err)
		}

		var doc featureDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("firestore LoadFeatures decode %s: %w", snap.Ref.ID, err)
		}
		records = append(records, doc.toRecord(snap.Ref.ID))
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("firestore LoadFeatures: collection %q is empty", s.collection)
	}
	return records, nil
}

func (s *CatalogSource) Close() error {
	return s.client.Close()
}
