package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/money"
)

// Order is written once at checkout and never updated.
type Order struct {
	ID                uuid.UUID   `gorm:"type:uuid;primaryKey"       json:"id"`
	UserID            uuid.UUID   `gorm:"type:uuid;index;not null"   json:"userId"`
	Email             string      `gorm:"not null"                   json:"email"`
	CheckoutSessionID *string     `gorm:"uniqueIndex"                json:"-"`
	Items             []OrderItem `gorm:"foreignKey:OrderID"         json:"items"`
	CreatedAt         time.Time   `json:"createdAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// OrderItem is a value copy of the product taken when the order was placed.
// ProductID is kept for reference only; the product may since have changed or gone.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"         json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;index;not null"     json:"-"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"           json:"productId"`
	Title       string          `gorm:"not null"                     json:"title"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"  json:"price"`
	Description string          `gorm:"not null"                     json:"description"`
	ImageURL    string          `gorm:"not null"                     json:"imageUrl"`
	Quantity    int             `gorm:"not null;check:quantity>0"    json:"quantity"`
	Position    int             `gorm:"not null;default:0"           json:"-"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return money.LineTotal(i.Price, i.Quantity)
}
