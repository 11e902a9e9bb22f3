package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mercaline/storefront-backend/pkg/enums"
)

// Item is a purchasable catalog entry. Prices are stored in the smallest
// currency unit; an item referenced by an order line is never mutated in place.
type Item struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Description string         `gorm:"column:description;not null;default:''" json:"description"`
	PriceCents  int64          `gorm:"column:price_cents;not null" json:"price"`
	Currency    enums.Currency `gorm:"column:currency;not null;default:'usd'" json:"currency"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}
