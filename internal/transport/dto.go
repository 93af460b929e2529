package transport

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/money"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/util"
)

// Amount accepts a JSON number or string and keeps its text.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = Amount(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = Amount(n.String())
	return nil
}

type SignupRequest struct {
	Email           string `json:"email"           validate:"required,email"`
	Password        string `json:"password"        validate:"required,min=5,alphanum"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CartItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
}

type ProductRequest struct {
	Title       string `json:"title"       validate:"required,min=3"`
	Price       Amount `json:"price"       validate:"required,positive_amount"`
	Description string `json:"description" validate:"required,min=5,max=400"`
	ImageURL    string `json:"imageUrl"`
}

func (r *ProductRequest) Trim() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
}

type ValidationErrorResponse struct {
	Message  string              `json:"message"`
	Errors   service.FieldErrors `json:"errors"`
	OldInput any                 `json:"oldInput,omitempty"`
}

type ProductResponse struct {
	models.Product
	FormattedPrice string `json:"formattedPrice"`
}

func NewProductResponse(p models.Product) ProductResponse {
	return ProductResponse{Product: p, FormattedPrice: money.Format(p.Price)}
}

func NewProductResponses(ps []models.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewProductResponse(p))
	}
	return out
}

type ProductPageResponse struct {
	Products []ProductResponse `json:"products"`
	util.Page
}

type CartLineResponse struct {
	Product   ProductResponse `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal string          `json:"lineTotal"`
}

type CartResponse struct {
	Items    []CartLineResponse `json:"items"`
	TotalSum string             `json:"totalSum"`
}

func NewCartLines(lines []service.CartLine) []CartLineResponse {
	out := make([]CartLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, CartLineResponse{
			Product:   NewProductResponse(l.Product),
			Quantity:  l.Quantity,
			LineTotal: money.Format(l.LineTotal()),
		})
	}
	return out
}

func NewCartResponse(c *service.Cart) CartResponse {
	return CartResponse{Items: NewCartLines(c.Items), TotalSum: money.Format(c.Total)}
}

type CheckoutResponse struct {
	SessionID  string             `json:"sessionId"`
	PaymentURL string             `json:"paymentUrl,omitempty"`
	Items      []CartLineResponse `json:"items"`
	TotalSum   string             `json:"totalSum"`
}

type OrderItemResponse struct {
	models.OrderItem
	FormattedPrice string `json:"formattedPrice"`
}

type OrderResponse struct {
	ID        uuid.UUID           `json:"id"`
	CreatedAt time.Time           `json:"createdAt"`
	Items     []OrderItemResponse `json:"items"`
	TotalSum  string              `json:"totalSum"`
}

func NewOrderResponses(orders []models.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		items := make([]OrderItemResponse, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, OrderItemResponse{OrderItem: it, FormattedPrice: money.Format(it.Price)})
		}
		out = append(out, OrderResponse{
			ID:        o.ID,
			CreatedAt: o.CreatedAt,
			Items:     items,
			TotalSum:  money.Format(o.Total()),
		})
	}
	return out
}

type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}
