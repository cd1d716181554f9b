package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/behuman/cascade/internal/model"
)

// CatalogRepo handles MongoDB operations for assessment question catalogs.
// Catalogs are written by the seed command and read-only at runtime.
type CatalogRepo interface {
	Upsert(ctx context.Context, catalog *model.Catalog) error
	GetByID(ctx context.Context, id string) (*model.Catalog, error)
}

type catalogRepo struct {
	collection *mongo.Collection
}

// NewCatalogRepo creates a new catalog repository.
func NewCatalogRepo(db *mongo.Database) CatalogRepo {
	return &catalogRepo{
		collection: db.Collection("catalogs"),
	}
}

func (r *catalogRepo) Upsert(ctx context.Context, catalog *model.Catalog) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": catalog.ID}, catalog, opts)
	if err != nil {
		return model.Persistencef("upsert catalog", err)
	}
	return nil
}

func (r *catalogRepo) GetByID(ctx context.Context, id string) (*model.Catalog, error) {
	var catalog model.Catalog
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&catalog)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, model.Persistencef("load catalog", err)
	}
	return &catalog, nil
}
