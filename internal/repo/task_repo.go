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

func (s *Store) CreateTask(ctx context.Context, t *domain.Task) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.tasks.insert")
	defer sp.Finish()

	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	res, err := s.colTasks.InsertOne(ctx, t)
	if err != nil {
		sp.SetTag("error", err)
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		t.ID = oid
	}
	return nil
}

// FindTaskByID returns (nil, nil) for unknown or malformed ids.
func (s *Store) FindTaskByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.tasks.find_by_id")
	defer sp.Finish()

	var t domain.Task
	err = s.colTasks.FindOne(ctx, bson.M{"_id": oid}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	return &t, nil
}

// ListTasksByOwner returns the owner's tasks, newest first.
func (s *Store) ListTasksByOwner(ctx context.Context, owner primitive.ObjectID) ([]domain.Task, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.tasks.list_by_owner")
	defer sp.Finish()

	cur, err := s.colTasks.Find(ctx,
		bson.M{"user": owner},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	defer cur.Close(ctx)

	out := []domain.Task{}
	for cur.Next(ctx) {
		var t domain.Task
		if err := cur.Decode(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, cur.Err()
}

// UpdateTask replaces the mutable fields of t.
func (s *Store) UpdateTask(ctx context.Context, t *domain.Task) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.tasks.update")
	defer sp.Finish()

	t.UpdatedAt = time.Now().UTC()
	res, err := s.colTasks.UpdateOne(ctx,
		bson.M{"_id": t.ID},
		bson.M{"$set": bson.M{
			"title":       t.Title,
			"description": t.Description,
			"status":      t.Status,
			"updated_at":  t.UpdatedAt,
		}},
	)
	if err != nil {
		sp.SetTag("error", err)
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id primitive.ObjectID) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.tasks.delete")
	defer sp.Finish()

	res, err := s.colTasks.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		sp.SetTag("error", err)
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
