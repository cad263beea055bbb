package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"fleetdesk/pkg/config"
	"fleetdesk/pkg/model"
)

const LockCollectionName = "Schedule_locks"

// SlotLockRepository provides operations for advisory booking locks.
// Lock acquisition relies on the _id uniqueness of the collection; a
// TTL index on expires_at reaps locks leaked by crashed requests.
type SlotLockRepository interface {
	Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error)
	Delete(ctx context.Context, lockID string) error
}

type mongoSlotLockRepository struct {
	collection *mongo.Collection
}

func NewSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		collection: db.Collection(LockCollectionName),
	}
}

// Create returns a duplicate key error when the lock is already held.
func (r *mongoSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		return nil, err
	}

	return lock, nil
}

func (r *mongoSlotLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
