// Package store is the on-device persistence layer: the two entity
// collections, the sync queue, and a small key-value table, all in one
// SQLite file. Keeping the queue in the same database is what makes the
// record-write + enqueue pair a single transaction.
package store

import (
	"context"
	"sync"

	"washpos/internal/apperror"
	"washpos/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store interface {
	Close() error

	// Record store. Add/Update write the record and, when the record is not
	// yet synced, its queue entry in the same transaction.
	AddCustomer(ctx context.Context, c *model.Customer) error
	UpdateCustomer(ctx context.Context, c *model.Customer) error
	AddSale(ctx context.Context, s *model.Sale) error
	Customers(ctx context.Context) ([]model.Customer, error)
	SearchCustomers(ctx context.Context, query string) ([]model.Customer, error)
	Sales(ctx context.Context) ([]model.Sale, error)
	SalesOn(ctx context.Context, date string) ([]model.Sale, error)
	MarkCustomerSynced(ctx context.Context, id string) error
	MarkSaleSynced(ctx context.Context, id string) error

	// Sync queue.
	Enqueue(ctx context.Context, entityType, action string, payload any) (*model.SyncEntry, error)
	QueueSnapshot(ctx context.Context) ([]model.SyncEntry, error)
	RemoveEntry(ctx context.Context, id string) error
	ClearQueue(ctx context.Context) error
	PendingCount(ctx context.Context) (int64, error)

	// Key-value storage for the auth token and sync metadata.
	GetValue(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key, value string) error
	DeleteValue(ctx context.Context, key string) error
}

type sqliteStore struct {
	mu sync.Mutex
	db *gorm.DB
}

// Open initializes the SQLite database at path and migrates the schema.
// The host application calls this once at startup; there is no
// init-on-first-access fallback.
func Open(path string) (Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, apperror.NewStorage("open database", err)
	}

	// Single writer at a time; SQLite serializes anyway, this avoids
	// SQLITE_BUSY under concurrent goroutines.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, apperror.NewStorage("open database", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.Customer{},
		&model.Sale{},
		&model.SaleItem{},
		&model.SyncEntry{},
		&model.KVPair{},
	); err != nil {
		return nil, apperror.NewStorage("migrate schema", err)
	}

	return &sqliteStore{db: db}, nil
}

// Close releases the underlying database. Any later call returns
// apperror.ErrNotInitialized.
func (s *sqliteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	s.db = nil
	if err != nil {
		return apperror.NewStorage("close database", err)
	}
	return apperror.NewStorage("close database", sqlDB.Close())
}

// handle returns the live DB or ErrNotInitialized after Close.
func (s *sqliteStore) handle() (*gorm.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, apperror.ErrNotInitialized
	}
	return s.db, nil
}

// ── Record store ──────────────────────────────────────────────────────────────

func (s *sqliteStore) AddCustomer(ctx context.Context, c *model.Customer) error {
	return s.saveWithQueue(ctx, "save customer", c, !c.Synced, model.EntityCustomer, model.ActionCreate, c.ID)
}

func (s *sqliteStore) UpdateCustomer(ctx context.Context, c *model.Customer) error {
	return s.saveWithQueue(ctx, "update customer", c, !c.Synced, model.EntityCustomer, model.ActionUpdate, c.ID)
}

func (s *sqliteStore) AddSale(ctx context.Context, sale *model.Sale) error {
	if err := validateSale(sale); err != nil {
		return err
	}
	return s.saveWithQueue(ctx, "save sale", sale, !sale.Synced, model.EntitySale, model.ActionCreate, sale.ID)
}

// validateSale enforces the sale invariants at the storage boundary,
// before any write is attempted.
func validateSale(sale *model.Sale) error {
	if len(sale.Items) == 0 {
		return apperror.NewValidation("sale has no items", nil)
	}
	for _, item := range sale.Items {
		if item.Quantity < 1 {
			return apperror.NewValidation("sale item quantity must be at least 1", nil)
		}
	}
	if !sale.Total.Equal(sale.ItemsTotal()) {
		return apperror.NewValidation("sale total does not match item sum", nil)
	}
	return nil
}

// saveWithQueue upserts the record and, when enqueue is true, appends the
// matching queue entry inside the same transaction. A crash leaves the
// database in one of the two consistent states: both written or neither.
func (s *sqliteStore) saveWithQueue(ctx context.Context, op string, record any, enqueue bool, entityType, action, entityID string) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	txErr := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(record).Error; err != nil {
			return err
		}
		if !enqueue {
			return nil
		}
		_, err := enqueueTx(tx, entityType, action, entityID, record)
		return err
	})
	return apperror.NewStorage(op, txErr)
}

func (s *sqliteStore) Customers(ctx context.Context) ([]model.Customer, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	var customers []model.Customer
	if err := db.WithContext(ctx).Order("rowid").Find(&customers).Error; err != nil {
		return nil, apperror.NewStorage("list customers", err)
	}
	return customers, nil
}

func (s *sqliteStore) SearchCustomers(ctx context.Context, query string) ([]model.Customer, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	var customers []model.Customer
	like := "%" + query + "%"
	err = db.WithContext(ctx).
		Where("name LIKE ? OR phone LIKE ?", like, like).
		Order("rowid").
		Find(&customers).Error
	if err != nil {
		return nil, apperror.NewStorage("search customers", err)
	}
	return customers, nil
}

func (s *sqliteStore) Sales(ctx context.Context) ([]model.Sale, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	var sales []model.Sale
	if err := db.WithContext(ctx).Preload("Items").Order("rowid").Find(&sales).Error; err != nil {
		return nil, apperror.NewStorage("list sales", err)
	}
	return sales, nil
}

// SalesOn returns the sales whose created_at falls on the given calendar day
// (date formatted YYYY-MM-DD).
func (s *sqliteStore) SalesOn(ctx context.Context, date string) ([]model.Sale, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	var sales []model.Sale
	err = db.WithContext(ctx).
		Preload("Items").
		Where("DATE(created_at) = ?", date).
		Order("rowid").
		Find(&sales).Error
	if err != nil {
		return nil, apperror.NewStorage("list sales by date", err)
	}
	return sales, nil
}

func (s *sqliteStore) MarkCustomerSynced(ctx context.Context, id string) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	err = db.WithContext(ctx).Model(&model.Customer{}).Where("id = ?", id).Update("synced", true).Error
	return apperror.NewStorage("mark customer synced", err)
}

func (s *sqliteStore) MarkSaleSynced(ctx context.Context, id string) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	err = db.WithContext(ctx).Model(&model.Sale{}).Where("id = ?", id).Update("synced", true).Error
	return apperror.NewStorage("mark sale synced", err)
}
