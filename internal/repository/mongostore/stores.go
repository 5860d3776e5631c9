// Package mongostore implements the repositories on MongoDB. Documents use
// string ids so records stay portable across backends.
package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"instadm/internal/entities"
	"instadm/internal/infrastructure"
	"instadm/internal/interfaces"
)

// NewStores wires the mongo repositories over one database.
func NewStores(db *mongo.Database) interfaces.Stores {
	chat := &ChatHistoryRepository{coll: db.Collection(infrastructure.ChatHistoriesCollection)}
	appointments := &AppointmentRepository{coll: db.Collection(infrastructure.AppointmentsCollection)}
	details := &ProductDetailsRepository{coll: db.Collection(infrastructure.ProductDetailsCollection)}
	return interfaces.Stores{
		Companies: &CompanyRepository{
			coll:       db.Collection(infrastructure.CompaniesCollection),
			dependents: []*mongo.Collection{chat.coll, appointments.coll, details.coll},
		},
		ChatHistory:    chat,
		Appointments:   appointments,
		ProductDetails: details,
	}
}

func decodeOne[T any](res *mongo.SingleResult) (*T, error) {
	var v T
	if err := res.Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entities.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
