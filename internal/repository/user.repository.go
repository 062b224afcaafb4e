package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/duccv/medrecords-api/internal/apperror"
	"github.com/duccv/medrecords-api/internal/model"
)

type UserRepository interface {
	// Create fails with apperror.ErrRegistrationConflict when the email is taken.
	Create(ctx context.Context, user model.User) error
	FindByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type mongoUserRepository struct {
	read  *mongo.Collection
	write *mongo.Collection
}

func NewUserRepository(readDB, writeDB *mongo.Database) UserRepository {
	return &mongoUserRepository{
		read:  readDB.Collection(model.UserCollection),
		write: writeDB.Collection(model.UserCollection),
	}
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *mongoUserRepository) Create(ctx context.Context, user model.User) error {
	user.Email = NormalizeEmail(user.Email)
	if _, err := r.write.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.ErrRegistrationConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	err := r.read.FindOne(ctx, bson.D{{Key: "email", Value: NormalizeEmail(email)}}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.User{}, apperror.ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (r *mongoUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := r.read.CountDocuments(ctx,
		bson.D{{Key: "email", Value: NormalizeEmail(email)}},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

// EnsureUserIndexes creates the unique email index.
func EnsureUserIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(model.UserCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}
