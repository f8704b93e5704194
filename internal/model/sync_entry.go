package model

import (
	"fmt"
	"time"
)

// Entity types and actions a queue entry can carry.
const (
	EntityCustomer = "customer"
	EntitySale     = "sale"

	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// SyncEntry is one pending mutation in the sync queue. Payload is a full JSON
// snapshot of the entity at enqueue time; later local edits never mutate an
// already-enqueued payload.
type SyncEntry struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	EntityType string    `gorm:"not null" json:"entityType"` // customer | sale
	Action     string    `gorm:"not null" json:"action"`     // create | update | delete
	Payload    []byte    `gorm:"not null" json:"payload"`
	EnqueuedAt time.Time `gorm:"not null" json:"enqueuedAt"`
}

func (SyncEntry) TableName() string { return "sync_queue" }

// EntryID builds the queue entry key. The enqueue timestamp keeps IDs unique
// even for repeated operations on the same entity.
func EntryID(entityType, action, entityID string, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%d", entityType, action, entityID, at.UnixNano())
}
