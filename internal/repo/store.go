package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	Client      *mongo.Client
	DB          *mongo.Database
	colUsers    *mongo.Collection
	colTasks    *mongo.Collection
	colCounters *mongo.Collection
}

func NewStore(ctx context.Context, uri, dbname string) (*Store, error) {
	cli, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetRetryWrites(true).
		SetMaxPoolSize(50),
	)
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx, nil); err != nil {
		return nil, err
	}
	db := cli.Database(dbname)
	return &Store{
		Client:      cli,
		DB:          db,
		colUsers:    db.Collection("users"),
		colTasks:    db.Collection("tasks"),
		colCounters: db.Collection("counters"),
	}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error { return s.Client.Disconnect(ctx) }

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.colUsers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	if err != nil {
		return err
	}

	// Matches the list query: owner scope, pending-first, newest-first.
	_, err = s.colTasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "done", Value: 1},
			{Key: "created_at", Value: -1},
		},
		Options: options.Index().SetName("owner_done_created_desc"),
	})
	return err
}

// nextTaskID hands out monotonically increasing integer ids from the
// counters collection. The $inc upsert is atomic on the server, so two
// concurrent creates never see the same value.
func (s *Store) nextTaskID(ctx context.Context) (int64, error) {
	res := s.colCounters.FindOneAndUpdate(ctx,
		bson.M{"_id": "tasks"},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	var c struct {
		Seq int64 `bson:"seq"`
	}
	if err := res.Decode(&c); err != nil {
		return 0, err
	}
	return c.Seq, nil
}

func IsDup(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce *mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	return false
}
