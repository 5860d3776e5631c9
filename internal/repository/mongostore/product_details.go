package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"instadm/internal/entities"
)

type ProductDetailsRepository struct {
	coll *mongo.Collection
}

func (r *ProductDetailsRepository) Create(ctx context.Context, d *entities.ProductDetails) error {
	if d.ID == "" {
		d.ID = entities.NewProductDetailsID()
	}
	d.CreatedAt = time.Now().UTC()
	_, err := r.coll.InsertOne(ctx, d)
	return err
}

func (r *ProductDetailsRepository) CreateMany(ctx context.Context, ds []entities.ProductDetails) error {
	if len(ds) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]any, len(ds))
	for i := range ds {
		if ds[i].ID == "" {
			ds[i].ID = entities.NewProductDetailsID()
		}
		if ds[i].CreatedAt.IsZero() {
			ds[i].CreatedAt = now
		}
		docs[i] = ds[i]
	}
	_, err := r.coll.InsertMany(ctx, docs)
	return err
}

func (r *ProductDetailsRepository) List(ctx context.Context, companyInstagramID string, p entities.Page) ([]entities.ProductDetails, int64, error) {
	total, err := r.coll.CountDocuments(ctx, tenant(companyInstagramID))
	if err != nil {
		return nil, 0, err
	}

	direction := -1
	if p.Ascending {
		direction = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: direction}, {Key: "_id", Value: direction}}).
		SetSkip(int64(p.Offset())).
		SetLimit(int64(p.Limit))
	cur, err := r.coll.Find(ctx, tenant(companyInstagramID), opts)
	if err != nil {
		return nil, 0, err
	}
	details, err := decodeAll[entities.ProductDetails](ctx, cur)
	return details, total, err
}
