package store

import (
	"context"
	"errors"

	"washpos/internal/apperror"
	"washpos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetValue returns the stored value for key, or "" when the key is absent.
func (s *sqliteStore) GetValue(ctx context.Context, key string) (string, error) {
	db, err := s.handle()
	if err != nil {
		return "", err
	}
	var pair model.KVPair
	err = db.WithContext(ctx).First(&pair, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", apperror.NewStorage("get value", err)
	}
	return pair.Value, nil
}

func (s *sqliteStore) SetValue(ctx context.Context, key, value string) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	err = db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&model.KVPair{Key: key, Value: value}).Error
	return apperror.NewStorage("set value", err)
}

func (s *sqliteStore) DeleteValue(ctx context.Context, key string) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	err = db.WithContext(ctx).Delete(&model.KVPair{}, "key = ?", key).Error
	return apperror.NewStorage("delete value", err)
}
