package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Discount is a percentage reduction applied before tax. Percent is within
// [0, 100] and may carry a fractional part (e.g. 10.5).
type Discount struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string          `gorm:"column:name;not null" json:"name"`
	Percent   decimal.Decimal `gorm:"column:percent;type:numeric(5,2);not null" json:"percent"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}
