package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"           json:"id"`
	Title       string          `gorm:"not null"                       json:"title"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"    json:"price"`
	Description string          `gorm:"not null"                       json:"description"`
	ImageURL    string          `gorm:"not null"                       json:"imageUrl"`
	UserID      uuid.UUID       `gorm:"type:uuid;index;not null"       json:"userId"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
