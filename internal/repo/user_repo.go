package repo

import (
	"context"
	"errors"
	"time"

	"github.com/Saatvik786/TaskSphere/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

func (s *Store) findUser(ctx context.Context, op string, filter bson.M) (*domain.User, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users."+op)
	defer sp.Finish()

	var u domain.User
	err := s.colUsers.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	return &u, nil
}

// FindUserByEmail expects a normalized email. Returns (nil, nil) when absent.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUser(ctx, "find_by_email", bson.M{"email": email})
}

func (s *Store) FindUserByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	return s.findUser(ctx, "find_by_external_id", bson.M{"external_id": externalID})
}

// FindUserByID returns (nil, nil) for unknown or malformed ids.
func (s *Store) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return s.findUser(ctx, "find_by_id", bson.M{"_id": oid})
}

// CreateUser inserts u and sets its ID. A unique index hit on email or external_id is ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.insert",
		tracer.Tag("provider", u.Provider),
	)
	defer sp.Finish()

	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	res, err := s.colUsers.InsertOne(ctx, u)
	if IsDup(err) {
		return ErrDuplicate
	}
	if err != nil {
		sp.SetTag("error", err)
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

// LinkExternalID attaches an external identity to an existing user and returns the updated
// document. The password hash is left untouched.
func (s *Store) LinkExternalID(ctx context.Context, id primitive.ObjectID, provider, externalID string) (*domain.User, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.link",
		tracer.Tag("provider", provider),
	)
	defer sp.Finish()

	res := s.colUsers.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"external_id": externalID,
			"provider":    provider,
			"updated_at":  time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var u domain.User
	if err := res.Decode(&u); err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrNotFound
		case IsDup(err):
			return nil, ErrDuplicate
		}
		sp.SetTag("error", err)
		return nil, err
	}
	return &u, nil
}
