package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	proferrors "fleetdesk/internal/professionals/errors"
	"fleetdesk/pkg/config"
	"fleetdesk/pkg/model"
)

const (
	CollectionName = "Professionals"
)

type ProfessionalRepository interface {
	Create(ctx context.Context, professional *model.Professional) error
	FindByID(ctx context.Context, id string) (*model.Professional, error)
	FindByEmail(ctx context.Context, email string) (*model.Professional, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Professional, error)
	Update(ctx context.Context, id string, professional *model.Professional) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type mongoProfessionalRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoProfessionalRepository(cfg *config.Config) ProfessionalRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoProfessionalRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoProfessionalRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoProfessionalRepository) Create(ctx context.Context, professional *model.Professional) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	professional.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, professional)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return proferrors.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create professional: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		professional.ID = oid.Hex()
	}
	return nil
}

func (r *mongoProfessionalRepository) FindByID(ctx context.Context, id string) (*model.Professional, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", proferrors.ErrInvalidID, id)
	}

	var professional model.Professional
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&professional)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, proferrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find professional: %w", err)
	}

	return &professional, nil
}

func (r *mongoProfessionalRepository) FindByEmail(ctx context.Context, email string) (*model.Professional, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var professional model.Professional
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&professional)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, proferrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find professional by email: %w", err)
	}

	return &professional, nil
}

func (r *mongoProfessionalRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Professional, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "last_name", Value: 1}, {Key: "first_name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find professionals: %w", err)
	}
	defer cursor.Close(ctx)

	var professionals []*model.Professional
	if err = cursor.All(ctx, &professionals); err != nil {
		return nil, fmt.Errorf("failed to decode professionals: %w", err)
	}

	return professionals, nil
}

func (r *mongoProfessionalRepository) Update(ctx context.Context, id string, professional *model.Professional) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", proferrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"first_name":              professional.FirstName,
			"last_name":               professional.LastName,
			"date_of_birth":           professional.DateOfBirth,
			"email":                   professional.Email,
			"phone":                   professional.Phone,
			"country":                 professional.Country,
			"language":                professional.Language,
			"address":                 professional.Address,
			"location":                professional.Location,
			"qualification":           professional.Qualification,
			"years_of_experience":     professional.YearsOfExperience,
			"certification":           professional.Certification,
			"skills":                  professional.Skills,
			"bio":                     professional.Bio,
			"services":                professional.Services,
			"start_time":              professional.StartTime,
			"end_time":                professional.EndTime,
			"active_for_night_shifts": professional.ActiveForNightShifts,
			"active_days":             professional.ActiveDays,
			"gender":                  professional.Gender,
			"avatar":                  professional.Avatar,
			"updated_at":              time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return proferrors.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update professional: %w", err)
	}

	if result.MatchedCount == 0 {
		return proferrors.ErrNotFound
	}

	return nil
}

func (r *mongoProfessionalRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", proferrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete professional: %w", err)
	}

	if result.DeletedCount == 0 {
		return proferrors.ErrNotFound
	}

	return nil
}

func (r *mongoProfessionalRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count professionals: %w", err)
	}

	return count, nil
}
