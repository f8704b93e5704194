package dto

import "github.com/shopspring/decimal"

type SaleItemRequest struct {
	ServiceID string          `json:"serviceId" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
}

type CreateSaleRequest struct {
	CustomerID    *string           `json:"customerId,omitempty"`
	CustomerName  *string           `json:"customerName,omitempty"`
	Items         []SaleItemRequest `json:"services" validate:"required,min=1,dive"`
	PaymentMethod string            `json:"paymentMethod" validate:"required,oneof=cash card digital"`
	CashierID     string            `json:"cashierId" validate:"required"`
}

// TodayStats is the local read-side fold the dashboard shows while offline.
type TodayStats struct {
	Transactions    int             `json:"transactions"`
	Revenue         decimal.Decimal `json:"revenue"`
	PopularServices []ServiceCount  `json:"popularServices"`
}

type ServiceCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
