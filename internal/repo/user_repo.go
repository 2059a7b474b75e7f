package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tazhibayda/tasks-service/internal/domain"
)

var ErrEmailExists = errors.New("email already registered")

// UserRepository is the user directory: external identities (emails)
// mapped to internal user records.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	UpsertGoogle(ctx context.Context, email, name, sub string) (*domain.User, error)
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (s *Store) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := s.colUsers.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &u, err
}

func (s *Store) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var u domain.User
	err := s.colUsers.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &u, err
}

func (s *Store) Create(ctx context.Context, u *domain.User) error {
	u.Email = normalizeEmail(u.Email)
	u.CreatedAt = time.Now().UTC()
	res, err := s.colUsers.InsertOne(ctx, u)
	if IsDup(err) {
		return ErrEmailExists
	}
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

// UpsertGoogle creates the user record lazily on first Google sign-in and
// returns the existing one otherwise.
func (s *Store) UpsertGoogle(ctx context.Context, email, name, sub string) (*domain.User, error) {
	email = normalizeEmail(email)
	res := s.colUsers.FindOneAndUpdate(ctx,
		bson.M{"email": email},
		bson.M{
			"$set": bson.M{"provider": "google", "external_id": sub},
			"$setOnInsert": bson.M{
				"email":      email,
				"name":       name,
				"created_at": time.Now().UTC(),
			},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	var u domain.User
	if err := res.Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}
