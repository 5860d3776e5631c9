package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Collection names shared by the mongo repositories.
const (
	CompaniesCollection      = "companies"
	ChatHistoriesCollection  = "chathistories"
	AppointmentsCollection   = "appointments"
	ProductDetailsCollection = "productdetails"
)

type MongoClient struct {
	Client *mongo.Client
	DB     *mongo.Database
}

func NewMongoClient(ctx context.Context, uri, database string) (*MongoClient, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(20).
		SetMinPoolSize(2).
		SetMaxConnIdleTime(30 * time.Minute)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("unable to ping mongo: %w", err)
	}

	return &MongoClient{Client: client, DB: client.Database(database)}, nil
}

var mongoIndexes = map[string][]mongo.IndexModel{
	CompaniesCollection: {
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "instagram_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	ChatHistoriesCollection: {
		{Keys: bson.D{{Key: "message_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "company_instagram_id", Value: 1}, {Key: "created_at", Value: -1}}},
	},
	AppointmentsCollection: {
		{Keys: bson.D{{Key: "company_instagram_id", Value: 1}, {Key: "date", Value: -1}, {Key: "start_time", Value: -1}}},
	},
	ProductDetailsCollection: {
		{Keys: bson.D{{Key: "company_instagram_id", Value: 1}, {Key: "created_at", Value: -1}}},
	},
}

// EnsureIndexes creates the unique and lookup indexes. It is idempotent.
func (m *MongoClient) EnsureIndexes(ctx context.Context) error {
	for name, models := range mongoIndexes {
		if _, err := m.DB.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

func (m *MongoClient) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
