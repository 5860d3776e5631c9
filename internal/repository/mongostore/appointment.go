package mongostore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"instadm/internal/entities"
)

type AppointmentRepository struct {
	coll *mongo.Collection
}

func (r *AppointmentRepository) Create(ctx context.Context, a *entities.Appointment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	_, err := r.coll.InsertOne(ctx, a)
	return err
}

func (r *AppointmentRepository) GetByID(ctx context.Context, companyInstagramID, id string) (*entities.Appointment, error) {
	filter := bson.D{{Key: "_id", Value: id}, {Key: "company_instagram_id", Value: companyInstagramID}}
	return decodeOne[entities.Appointment](r.coll.FindOne(ctx, filter))
}

func (r *AppointmentRepository) ListByCompany(ctx context.Context, companyInstagramID string) ([]entities.Appointment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "start_time", Value: -1}})
	cur, err := r.coll.Find(ctx, tenant(companyInstagramID), opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[entities.Appointment](ctx, cur)
}

func (r *AppointmentRepository) Update(ctx context.Context, a *entities.Appointment) error {
	a.UpdatedAt = time.Now().UTC()
	filter := bson.D{{Key: "_id", Value: a.ID}, {Key: "company_instagram_id", Value: a.CompanyInstagramID}}
	res, err := r.coll.ReplaceOne(ctx, filter, a)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return entities.ErrNotFound
	}
	return nil
}
