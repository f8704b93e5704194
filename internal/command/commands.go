// Package command is the in-process surface UI-level code calls into. It
// validates input, stamps identities and timestamps, and hands fully formed
// entities to the store. Nothing here talks to the remote — new records
// reach it later through the sync queue.
package command

import (
	"context"
	"time"

	"washpos/internal/apperror"
	"washpos/internal/dto"
	"washpos/internal/model"
	"washpos/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, id string, req dto.UpdateCustomerRequest) (*model.Customer, error)
	Customers(ctx context.Context) ([]model.Customer, error)
	SearchCustomers(ctx context.Context, query string) ([]model.Customer, error)

	CreateSale(ctx context.Context, req dto.CreateSaleRequest) (*model.Sale, error)
	Sales(ctx context.Context) ([]model.Sale, error)
	SalesOn(ctx context.Context, date string) ([]model.Sale, error)
	TodayStats(ctx context.Context) (*dto.TodayStats, error)
}

type service struct {
	store    store.Store
	validate *validator.Validate
	now      func() time.Time
}

func New(st store.Store) Service {
	return &service{
		store:    st,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// checkRequest maps validator output into the boundary ValidationError.
func (s *service) checkRequest(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	fields := map[string]string{}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	}
	return apperror.NewValidation("invalid request", fields)
}

// ── Customers ─────────────────────────────────────────────────────────────────

func (s *service) CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*model.Customer, error) {
	if err := s.checkRequest(req); err != nil {
		return nil, err
	}
	now := s.now()
	customer := &model.Customer{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		CreatedAt: now,
		UpdatedAt: now,
		Synced:    false,
	}
	if err := s.store.AddCustomer(ctx, customer); err != nil {
		return nil, err
	}
	log.Debug().Str("customer_id", customer.ID).Msg("customer created locally")
	return customer, nil
}

// UpdateCustomer applies a partial edit. Any local edit re-enters the sync
// queue regardless of the record's previous synced state.
func (s *service) UpdateCustomer(ctx context.Context, id string, req dto.UpdateCustomerRequest) (*model.Customer, error) {
	if err := s.checkRequest(req); err != nil {
		return nil, err
	}
	customers, err := s.store.Customers(ctx)
	if err != nil {
		return nil, err
	}
	var customer *model.Customer
	for i := range customers {
		if customers[i].ID == id {
			customer = &customers[i]
			break
		}
	}
	if customer == nil {
		return nil, apperror.NewValidation("customer not found", map[string]string{"id": id})
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Email != nil {
		customer.Email = req.Email
	}
	customer.UpdatedAt = s.now()
	customer.Synced = false

	if err := s.store.UpdateCustomer(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *service) Customers(ctx context.Context) ([]model.Customer, error) {
	return s.store.Customers(ctx)
}

func (s *service) SearchCustomers(ctx context.Context, query string) ([]model.Customer, error) {
	return s.store.SearchCustomers(ctx, query)
}

// ── Sales ─────────────────────────────────────────────────────────────────────

func (s *service) CreateSale(ctx context.Context, req dto.CreateSaleRequest) (*model.Sale, error) {
	if err := s.checkRequest(req); err != nil {
		return nil, err
	}

	sale := &model.Sale{
		ID:            uuid.NewString(),
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		PaymentMethod: req.PaymentMethod,
		CashierID:     req.CashierID,
		CreatedAt:     s.now(),
		Synced:        false,
	}
	for _, item := range req.Items {
		sale.Items = append(sale.Items, model.SaleItem{
			ServiceID: item.ServiceID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	// Total is never caller-settable — always the fold over items.
	sale.Total = sale.ItemsTotal()

	if err := s.store.AddSale(ctx, sale); err != nil {
		return nil, err
	}
	log.Debug().Str("sale_id", sale.ID).Str("total", sale.Total.String()).Msg("sale recorded locally")
	return sale, nil
}

func (s *service) Sales(ctx context.Context) ([]model.Sale, error) {
	return s.store.Sales(ctx)
}

func (s *service) SalesOn(ctx context.Context, date string) ([]model.Sale, error) {
	return s.store.SalesOn(ctx, date)
}
