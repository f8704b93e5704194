package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods accepted at the register.
const (
	PaymentCash    = "cash"
	PaymentCard    = "card"
	PaymentDigital = "digital"
)

// Sale is one completed transaction. CustomerID is a weak reference —
// walk-ins carry only the denormalized CustomerName snapshot.
type Sale struct {
	ID            string          `gorm:"primaryKey" json:"id"`
	CustomerID    *string         `gorm:"index" json:"customerId,omitempty"`
	CustomerName  *string         `json:"customerName,omitempty"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"services"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	PaymentMethod string          `gorm:"type:varchar(10);not null" json:"paymentMethod"` // cash | card | digital
	CashierID     string          `gorm:"not null" json:"cashierId"`
	CreatedAt     time.Time       `gorm:"index" json:"createdAt"`
	Synced        bool            `gorm:"not null;default:false" json:"synced"`
}

// SaleItem is one service line on a sale.
type SaleItem struct {
	ID        uint            `gorm:"primaryKey;autoIncrement" json:"-"`
	SaleID    string          `gorm:"index;not null" json:"-"`
	ServiceID string          `gorm:"not null" json:"serviceId"`
	Name      string          `gorm:"not null" json:"name"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unitPrice"`
	Quantity  int             `gorm:"not null" json:"quantity"`
}

// Subtotal returns UnitPrice × Quantity for this line.
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemsTotal folds Subtotal over all lines.
func (s *Sale) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}
