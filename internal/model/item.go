package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a stock keeping unit tracked by the inventory.
// SKU is stored uppercase — CreateItem normalizes before the uniqueness check,
// so "abc-1" and "ABC-1" collide on the same index entry.
type Item struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string          `gorm:"index;not null"`
	SKU          string          `gorm:"column:sku;uniqueIndex;not null"`
	Category     string          `gorm:"index;not null"`
	Cost         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	OnHand       int             `gorm:"not null;default:0"`
	Reserved     int             `gorm:"not null;default:0"`
	ReorderPoint int             `gorm:"not null;default:0"`
	Image        string          `gorm:"not null;default:''"`
	CreatedAt    time.Time
	UpdatedAt    time.Time `gorm:"index"`
}

// FreeToUse is the quantity available for new allocation.
// Derived at read time, never stored.
func (i *Item) FreeToUse() int {
	return i.OnHand - i.Reserved
}
