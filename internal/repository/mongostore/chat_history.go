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

type ChatHistoryRepository struct {
	coll *mongo.Collection
}

func tenant(companyInstagramID string) bson.D {
	return bson.D{{Key: "company_instagram_id", Value: companyInstagramID}}
}

func (r *ChatHistoryRepository) Insert(ctx context.Context, m *entities.ChatHistory) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return entities.ErrConflict
		}
		return err
	}
	return nil
}

func (r *ChatHistoryRepository) List(ctx context.Context, companyInstagramID string, p entities.Page) ([]entities.ChatHistory, int64, error) {
	total, err := r.CountByCompany(ctx, companyInstagramID)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(p.Offset())).
		SetLimit(int64(p.Limit))
	cur, err := r.coll.Find(ctx, tenant(companyInstagramID), opts)
	if err != nil {
		return nil, 0, err
	}
	messages, err := decodeAll[entities.ChatHistory](ctx, cur)
	return messages, total, err
}

func (r *ChatHistoryRepository) CountByCompany(ctx context.Context, companyInstagramID string) (int64, error) {
	return r.coll.CountDocuments(ctx, tenant(companyInstagramID))
}

// CountCounterparts folds senders and recipients into one set of ids and
// counts it server side.
func (r *ChatHistoryRepository) CountCounterparts(ctx context.Context, companyInstagramID string) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: tenant(companyInstagramID)}},
		{{Key: "$project", Value: bson.D{{Key: "ids", Value: bson.A{"$sender_id", "$recipient_id"}}}}},
		{{Key: "$unwind", Value: "$ids"}},
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$ids"}}}},
		{{Key: "$count", Value: "n"}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}

	var out []struct {
		N int64 `bson:"n"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].N, nil
}

func (r *ChatHistoryRepository) Recent(ctx context.Context, companyInstagramID string, limit int) ([]entities.ChatHistory, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, tenant(companyInstagramID), opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[entities.ChatHistory](ctx, cur)
}

func (r *ChatHistoryRepository) Breakdown(ctx context.Context, companyInstagramID, ownerID string) (entities.MessageBreakdown, error) {
	sent := bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$eq", Value: bson.A{"$sender_id", ownerID}}}, 1, 0,
	}}}
	received := bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$eq", Value: bson.A{"$sender_id", ownerID}}}, 0, 1,
	}}}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: tenant(companyInstagramID)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "sent", Value: bson.D{{Key: "$sum", Value: sent}}},
			{Key: "received", Value: bson.D{{Key: "$sum", Value: received}}},
		}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return entities.MessageBreakdown{}, err
	}

	var out []struct {
		Sent     int64 `bson:"sent"`
		Received int64 `bson:"received"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return entities.MessageBreakdown{}, err
	}
	if len(out) == 0 {
		return entities.MessageBreakdown{}, nil
	}
	return entities.MessageBreakdown{Sent: out[0].Sent, Received: out[0].Received}, nil
}
