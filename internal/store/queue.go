package store

import (
	"context"
	"encoding/json"
	"time"

	"washpos/internal/apperror"
	"washpos/internal/model"

	"gorm.io/gorm"
)

// enqueueTx appends a queue entry inside an existing transaction. The payload
// is marshalled now so later edits to the record cannot retroactively change
// what gets synced.
func enqueueTx(tx *gorm.DB, entityType, action, entityID string, payload any) (*model.SyncEntry, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	entry := &model.SyncEntry{
		ID:         model.EntryID(entityType, action, entityID, now),
		EntityType: entityType,
		Action:     action,
		Payload:    data,
		EnqueuedAt: now,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// Enqueue appends a standalone entry. payload must carry the entity as it
// should reach the remote; it is snapshotted by value here.
func (s *sqliteStore) Enqueue(ctx context.Context, entityType, action string, payload any) (*model.SyncEntry, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	entityID := ""
	if ident, ok := payload.(interface{ GetID() string }); ok {
		entityID = ident.GetID()
	} else {
		// Fall back to the payload's JSON "id" field.
		var probe struct {
			ID string `json:"id"`
		}
		if data, err := json.Marshal(payload); err == nil {
			_ = json.Unmarshal(data, &probe)
		}
		entityID = probe.ID
	}

	var entry *model.SyncEntry
	txErr := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = enqueueTx(tx, entityType, action, entityID, payload)
		return err
	})
	if txErr != nil {
		return nil, apperror.NewStorage("enqueue", txErr)
	}
	return entry, nil
}

// QueueSnapshot returns every queued entry in enqueue order without removing
// anything. Drains are bounded by a snapshot, never by the live queue.
func (s *sqliteStore) QueueSnapshot(ctx context.Context) ([]model.SyncEntry, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	var entries []model.SyncEntry
	if err := db.WithContext(ctx).Order("rowid").Find(&entries).Error; err != nil {
		return nil, apperror.NewStorage("snapshot queue", err)
	}
	return entries, nil
}

// RemoveEntry deletes one entry by id. Removing an absent id is a no-op.
func (s *sqliteStore) RemoveEntry(ctx context.Context, id string) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	err = db.WithContext(ctx).Delete(&model.SyncEntry{}, "id = ?", id).Error
	return apperror.NewStorage("remove queue entry", err)
}

// ClearQueue removes all entries. Only the sync engine calls this, and only
// after a verified full drain.
func (s *sqliteStore) ClearQueue(ctx context.Context) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	err = db.WithContext(ctx).Where("1 = 1").Delete(&model.SyncEntry{}).Error
	return apperror.NewStorage("clear queue", err)
}

func (s *sqliteStore) PendingCount(ctx context.Context) (int64, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}
	var count int64
	if err := db.WithContext(ctx).Model(&model.SyncEntry{}).Count(&count).Error; err != nil {
		return 0, apperror.NewStorage("count queue", err)
	}
	return count, nil
}
