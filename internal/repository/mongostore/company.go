package mongostore

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"instadm/internal/entities"
)

type CompanyRepository struct {
	coll       *mongo.Collection
	dependents []*mongo.Collection
}

func (r *CompanyRepository) Create(ctx context.Context, c *entities.Company) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.FAQs == nil {
		c.FAQs = []entities.FAQ{}
	}
	if c.Keywords == nil {
		c.Keywords = []string{}
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return entities.ErrConflict
		}
		return err
	}
	return nil
}

func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*entities.Company, error) {
	return decodeOne[entities.Company](r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}))
}

func (r *CompanyRepository) GetByEmail(ctx context.Context, email string) (*entities.Company, error) {
	return decodeOne[entities.Company](r.coll.FindOne(ctx, bson.D{{Key: "email", Value: strings.ToLower(email)}}))
}

func (r *CompanyRepository) GetByInstagramID(ctx context.Context, instagramID string) (*entities.Company, error) {
	return decodeOne[entities.Company](r.coll.FindOne(ctx, bson.D{{Key: "instagram_id", Value: instagramID}}))
}

func (r *CompanyRepository) Update(ctx context.Context, id string, u entities.CompanyUpdate) (*entities.Company, error) {
	set := bson.D{}
	add := func(key string, val any) { set = append(set, bson.E{Key: key, Value: val}) }

	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Phone != nil {
		add("phone", *u.Phone)
	}
	if u.Profile != nil {
		add("profile", *u.Profile)
	}
	if u.BotIdentity != nil {
		add("bot_identity", *u.BotIdentity)
	}
	if u.BotRole != nil {
		add("bot_role", *u.BotRole)
	}
	if u.ConversationFlow != nil {
		add("conversation_flow", *u.ConversationFlow)
	}
	if u.FAQs != nil {
		faqs := *u.FAQs
		if faqs == nil {
			faqs = []entities.FAQ{}
		}
		add("faqs", faqs)
	}
	if u.Keywords != nil {
		keywords := *u.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		add("keywords", keywords)
	}
	if u.IsActive != nil {
		add("is_active", *u.IsActive)
	}
	add("updated_at", time.Now().UTC())

	res := r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	return decodeOne[entities.Company](res)
}

func (r *CompanyRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "password", Value: passwordHash},
			{Key: "updated_at", Value: time.Now().UTC()},
		}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// Delete removes dependents before the company itself, so a failure midway
// leaves the company in place and the delete can be retried.
func (r *CompanyRepository) Delete(ctx context.Context, c *entities.Company) error {
	scope := bson.D{{Key: "company_instagram_id", Value: c.InstagramID}}
	for _, coll := range r.dependents {
		if _, err := coll.DeleteMany(ctx, scope); err != nil {
			return err
		}
	}

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: c.ID}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return entities.ErrNotFound
	}
	return nil
}
