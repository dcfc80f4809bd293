package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pos-backend/pkg/db/models"
	"github.com/angelmondragon/pos-backend/pkg/enums"
)

// LineInput is one requested basket line.
type LineInput struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"min=1"`
}

// CreateSaleRequest is the body of POST /api/sales.
type CreateSaleRequest struct {
	Products      []LineInput `json:"products" validate:"required,min=1,dive"`
	PaymentMethod string      `json:"paymentMethod" validate:"required,oneof=cash card transfer"`
}

// UpdateSaleRequest is the body of PUT /api/sales/{id}. A nil Products slice
// means the basket is left unchanged; an empty one is rejected.
type UpdateSaleRequest struct {
	Products      []LineInput `json:"products" validate:"omitempty,min=1,dive"`
	PaymentMethod *string     `json:"paymentMethod" validate:"omitempty,oneof=cash card transfer"`
	Status        *string     `json:"status" validate:"omitempty,oneof=completed cancelled"`
}

// Actor identifies the authenticated caller performing a sale mutation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// SellerDTO is the public projection of the seller on a sale.
type SellerDTO struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// LineItemDTO is a priced snapshot line.
type LineItemDTO struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SaleDTO is the public sale representation.
type SaleDTO struct {
	ID            uuid.UUID           `json:"id"`
	Seller        *SellerDTO          `json:"seller,omitempty"`
	Products      []LineItemDTO       `json:"products"`
	Total         decimal.Decimal     `json:"total"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
	Status        enums.SaleStatus    `json:"status"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// CreateSaleResult is returned with HTTP 201 after a sale is booked.
type CreateSaleResult struct {
	Message string  `json:"message"`
	Sale    SaleDTO `json:"sale"`
	Alerts  []Alert `json:"alerts,omitempty"`
}

// ListSalesResult carries every sale plus live stock alerts for their lines.
type ListSalesResult struct {
	Sales  []SaleDTO `json:"sales"`
	Alerts []Alert   `json:"alerts,omitempty"`
}

// GetSaleResult carries one sale plus live stock alerts for its lines.
type GetSaleResult struct {
	Sale   SaleDTO `json:"sale"`
	Alerts []Alert `json:"alerts,omitempty"`
}

// UpdateSaleResult never carries alerts.
type UpdateSaleResult struct {
	Message string  `json:"message"`
	Sale    SaleDTO `json:"sale"`
}

// FromModel maps a sale row and its preloaded associations onto the DTO.
func FromModel(sale *models.Sale) SaleDTO {
	out := SaleDTO{
		ID:            sale.ID,
		Products:      make([]LineItemDTO, 0, len(sale.Items)),
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod,
		Status:        sale.Status,
		CreatedAt:     sale.CreatedAt,
		UpdatedAt:     sale.UpdatedAt,
	}
	if sale.Seller != nil {
		out.Seller = &SellerDTO{ID: sale.Seller.ID, Name: sale.Seller.Name, Email: sale.Seller.Email}
	}
	for _, item := range sale.Items {
		out.Products = append(out.Products, LineItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Subtotal:  item.Subtotal,
		})
	}
	return out
}

// saleEventData is the journal payload describing a sale at the time of the event.
type saleEventData struct {
	SaleID        uuid.UUID           `json:"saleId"`
	SellerID      uuid.UUID           `json:"sellerId"`
	Total         decimal.Decimal     `json:"total"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
	Status        enums.SaleStatus    `json:"status"`
	Items         []LineItemDTO       `json:"items"`
}

func eventData(sale *models.Sale) saleEventData {
	dto := FromModel(sale)
	return saleEventData{
		SaleID:        sale.ID,
		SellerID:      sale.SellerID,
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod,
		Status:        sale.Status,
		Items:         dto.Products,
	}
}
