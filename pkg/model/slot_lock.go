package model

import "time"

// SlotLock is an advisory lock preventing concurrent booking validation
// for the same resource and date. The mongo _id uniqueness constraint is
// what makes acquisition exclusive; ExpiresAt backs a TTL index so stale
// locks from crashed requests disappear on their own.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
