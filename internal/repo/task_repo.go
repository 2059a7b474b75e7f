package repo

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/tazhibayda/tasks-service/internal/domain"
)

// ListParams is the pagination window applied to the owner-scoped,
// optionally title-filtered task set.
type ListParams struct {
	Q     string
	Skip  int
	Limit int
}

type TaskRepository interface {
	ListByOwner(ctx context.Context, owner primitive.ObjectID, p ListParams) ([]domain.Task, error)
	CountByOwner(ctx context.Context, owner primitive.ObjectID, q string) (int64, error)
	CreateTask(ctx context.Context, t *domain.Task) error
	FindTask(ctx context.Context, id int64) (*domain.Task, error)
	ToggleTask(ctx context.Context, id int64) (*domain.Task, error)
	DeleteTaskByOwner(ctx context.Context, id int64, owner primitive.ObjectID) (bool, error)
}

func taskFilter(owner primitive.ObjectID, q string) bson.M {
	f := bson.M{"user_id": owner}
	if q != "" {
		// substring, case-insensitive; quote so "a.b" doesn't match "axb"
		f["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	}
	return f
}

func (s *Store) ListByOwner(ctx context.Context, owner primitive.ObjectID, p ListParams) ([]domain.Task, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.tasks.list")
	defer sp.Finish()

	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 10
	}
	if p.Skip < 0 {
		p.Skip = 0
	}

	cur, err := s.colTasks.Find(ctx,
		taskFilter(owner, p.Q),
		options.Find().
			SetSort(bson.D{{Key: "done", Value: 1}, {Key: "created_at", Value: -1}}).
			SetSkip(int64(p.Skip)).
			SetLimit(int64(p.Limit)),
	)
	if err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.Task
	for cur.Next(ctx) {
		var t domain.Task
		if err := cur.Decode(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, cur.Err()
}

func (s *Store) CountByOwner(ctx context.Context, owner primitive.ObjectID, q string) (int64, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.tasks.count")
	defer sp.Finish()
	return s.colTasks.CountDocuments(ctx, taskFilter(owner, q))
}

func (s *Store) CreateTask(ctx context.Context, t *domain.Task) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.tasks.insert")
	defer sp.Finish()

	id, err := s.nextTaskID(ctx)
	if err != nil {
		sp.SetTag("error", err)
		return err
	}
	t.ID = id
	t.Done = false
	t.CreatedAt = time.Now().UTC()
	_, err = s.colTasks.InsertOne(ctx, t)
	if err != nil {
		sp.SetTag("error", err)
	}
	return err
}

func (s *Store) FindTask(ctx context.Context, id int64) (*domain.Task, error) {
	var t domain.Task
	err := s.colTasks.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &t, err
}

// ToggleTask flips done in a single server-side update, so concurrent
// toggles of the same row cannot lose each other's writes.
func (s *Store) ToggleTask(ctx context.Context, id int64) (*domain.Task, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.tasks.toggle",
		tracer.Tag("task_id", id))
	defer sp.Finish()

	res := s.colTasks.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		mongo.Pipeline{{{Key: "$set", Value: bson.M{"done": bson.M{"$not": "$done"}}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var t domain.Task
	if err := res.Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		sp.SetTag("error", err)
		return nil, err
	}
	return &t, nil
}

// DeleteTaskByOwner bundles the ownership check into the delete filter:
// a foreign task and a missing task are indistinguishable to the caller.
func (s *Store) DeleteTaskByOwner(ctx context.Context, id int64, owner primitive.ObjectID) (bool, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.tasks.delete",
		tracer.Tag("task_id", id))
	defer sp.Finish()

	res, err := s.colTasks.DeleteOne(ctx, bson.M{"_id": id, "user_id": owner})
	if err != nil {
		sp.SetTag("error", err)
		return false, err
	}
	return res.DeletedCount == 1, nil
}
