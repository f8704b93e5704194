package model

import "time"

// Customer is a business customer record. IDs are client-generated UUIDs so
// offline creates never collide with the remote and creates are safe to retry.
type Customer struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"index;not null" json:"name"`
	Phone     string    `gorm:"index;not null" json:"phone"`
	Email     *string   `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// Synced is true only after the remote has confirmed this record.
	Synced bool `gorm:"not null;default:false" json:"synced"`
}
