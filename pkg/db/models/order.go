package models

import (
	"time"

	"github.com/google/uuid"
)

// Order groups items for a single checkout. Discount and tax are weak
// references: deleting either clears the column (ON DELETE SET NULL) and the
// order prices as if the reference was never set.
type Order struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Items      []Item     `gorm:"many2many:order_items" json:"items"`
	DiscountID *uuid.UUID `gorm:"column:discount_id;type:uuid" json:"discount_id,omitempty"`
	Discount   *Discount  `gorm:"foreignKey:DiscountID;constraint:OnDelete:SET NULL" json:"discount,omitempty"`
	TaxID      *uuid.UUID `gorm:"column:tax_id;type:uuid" json:"tax_id,omitempty"`
	Tax        *Tax       `gorm:"foreignKey:TaxID;constraint:OnDelete:SET NULL" json:"tax,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
