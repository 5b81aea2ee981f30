package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Действия корректировки остатка
const (
	ActionAdd        = "add"
	ActionNewVersion = "new_version"
)

// Варианты запроса на инвестицию
const (
	InvestmentExistingProduct = "existing_product"
	InvestmentNewProduct      = "new_product"
)

// Поля decimal.Decimal валидируются как числа (см. handler.NewValidator)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	User        *User  `json:"user"`
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Name     string `json:"name" validate:"required,min=2,max=150"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=admin seller"`
}

type CreateProductRequest struct {
	Name          string          `json:"name" validate:"required,min=2,max=200"`
	Description   string          `json:"description" validate:"max=2000"`
	Color         string          `json:"color" validate:"max=50"`
	CategoryID    uuid.UUID       `json:"category_id" validate:"required"`
	CurrencyID    uuid.UUID       `json:"currency_id" validate:"required"`
	Price         decimal.Decimal `json:"price" validate:"gt=0"`
	PurchasePrice decimal.Decimal `json:"purchase_price" validate:"gt=0"`
	Stock         int             `json:"stock" validate:"gte=0"`
}

// UpdateProductRequest меняет только карточку товара.
// Остаток, версия и себестоимость меняются через adjust-stock, продажи и инвестиции.
type UpdateProductRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	Color       string          `json:"color" validate:"max=50"`
	CategoryID  uuid.UUID       `json:"category_id" validate:"required"`
	CurrencyID  uuid.UUID       `json:"currency_id" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"gt=0"`
}

type AdjustStockRequest struct {
	ProductID     uuid.UUID        `json:"product_id" validate:"required"`
	Action        string           `json:"action" validate:"required,oneof=add new_version"`
	Quantity      int              `json:"quantity" validate:"gt=0"`
	PurchasePrice *decimal.Decimal `json:"purchase_price" validate:"omitempty,gt=0"`
}

type AdjustStockResponse struct {
	Product *Product        `json:"product"`
	Version *ProductVersion `json:"version"`
}

// Availability - сколько единиц текущей версии ещё можно распределить
type Availability struct {
	ProductID          uuid.UUID `json:"product_id"`
	Version            int       `json:"version"`
	Stock              int       `json:"stock"`
	Allocated          int       `json:"allocated"`
	AvailableForShared int       `json:"available_for_shared"`
}

type PartnerAllocation struct {
	UserID   uuid.UUID `json:"user_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"gt=0"`
	Notes    string    `json:"notes" validate:"max=500"`
}

type AllocateRequest struct {
	ProductID uuid.UUID           `json:"product_id" validate:"required"`
	Partners  []PartnerAllocation `json:"partners" validate:"required,min=1,dive"`
}

type UpdateAllocationRequest struct {
	Quantity int     `json:"quantity" validate:"gt=0"`
	Notes    *string `json:"notes" validate:"omitempty,max=500"`
}

// SaleRequest используется и при создании, и при полной замене продажи
type SaleRequest struct {
	ProductID          uuid.UUID       `json:"product_id" validate:"required"`
	SharedItemID       *uuid.UUID      `json:"shared_item_id"`
	SellerID           *uuid.UUID      `json:"seller_id"`
	ClientName         string          `json:"client_name" validate:"max=200"`
	Color              string          `json:"color" validate:"max=50"`
	QuantitySold       int             `json:"quantity_sold" validate:"gt=0"`
	SalePrice          decimal.Decimal `json:"sale_price" validate:"gt=0"`
	Commission         decimal.Decimal `json:"commission" validate:"gte=0"`
	AdditionalExpenses decimal.Decimal `json:"additional_expenses" validate:"gte=0"`
	SaleDate           *time.Time      `json:"sale_date"`
}

// SaleProfit - два варианта прибыли; в БД не хранится
type SaleProfit struct {
	SaleID                uuid.UUID       `json:"sale_id"`
	ProductVersion        int             `json:"product_version"`
	Revenue               decimal.Decimal `json:"revenue"`
	SnapshotPurchasePrice decimal.Decimal `json:"snapshot_purchase_price"`
	CurrentPurchasePrice  decimal.Decimal `json:"current_purchase_price"`
	HistoricalProfit      decimal.Decimal `json:"historical_profit"`
	LiveProfit            decimal.Decimal `json:"live_profit"`
}

// InvestmentRequest - размеченное объединение: заполнена ровно одна ветка, и она совпадает с Kind
type InvestmentRequest struct {
	Kind            string                     `json:"kind" validate:"required,oneof=existing_product new_product"`
	ExistingProduct *ExistingProductInvestment `json:"existing_product"`
	NewProduct      *NewProductInvestment      `json:"new_product"`
}

type ExistingProductInvestment struct {
	ProductID      uuid.UUID       `json:"product_id" validate:"required"`
	ProviderID     *uuid.UUID      `json:"provider_id"`
	Quantity       int             `json:"quantity" validate:"gt=0"`
	UnitCost       decimal.Decimal `json:"unit_cost" validate:"gt=0"`
	NewVersion     bool            `json:"new_version"`
	InvestmentDate *time.Time      `json:"investment_date"`
}

type NewProductInvestment struct {
	Name           string          `json:"name" validate:"required,min=2,max=200"`
	Description    string          `json:"description" validate:"max=2000"`
	Color          string          `json:"color" validate:"max=50"`
	CategoryID     uuid.UUID       `json:"category_id" validate:"required"`
	CurrencyID     uuid.UUID       `json:"currency_id" validate:"required"`
	Price          decimal.Decimal `json:"price" validate:"gt=0"`
	ProviderID     *uuid.UUID      `json:"provider_id"`
	Quantity       int             `json:"quantity" validate:"gt=0"`
	UnitCost       decimal.Decimal `json:"unit_cost" validate:"gt=0"`
	InvestmentDate *time.Time      `json:"investment_date"`
}

type InvestmentResponse struct {
	Investment *Investment     `json:"investment"`
	Product    *Product        `json:"product"`
	Version    *ProductVersion `json:"version"`
}

type CategoryRequest struct {
	Name     string     `json:"name" validate:"required,min=2,max=100"`
	Icon     string     `json:"icon" validate:"max=100"`
	Color    string     `json:"color" validate:"max=20"`
	ParentID *uuid.UUID `json:"parent_id"`
}

type ProviderRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=150"`
	ContactName string `json:"contact_name" validate:"max=150"`
	Phone       string `json:"phone" validate:"max=50"`
	Email       string `json:"email" validate:"omitempty,email,max=255"`
	Notes       string `json:"notes" validate:"max=2000"`
}

type CurrencyRequest struct {
	Code   string `json:"code" validate:"required,len=3,alpha"`
	Name   string `json:"name" validate:"required,max=50"`
	Symbol string `json:"symbol" validate:"required,max=5"`
}

// Money - сумма с локализованной строкой для отчётов
type Money struct {
	Amount    decimal.Decimal `json:"amount"`
	Formatted string          `json:"formatted"`
}

type DashboardTotals struct {
	SalesCount       int   `json:"sales_count"`
	UnitsSold        int   `json:"units_sold"`
	Revenue          Money `json:"revenue"`
	Costs            Money `json:"costs"`
	Commissions      Money `json:"commissions"`
	Expenses         Money `json:"expenses"`
	NetProfit        Money `json:"net_profit"`
	LiveProfit       Money `json:"live_profit"`
	HistoricalProfit Money `json:"historical_profit"`
}

type RollupLine struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Quantity   int    `json:"quantity"`
	Revenue    Money  `json:"revenue"`
	Commission Money  `json:"commission"`
}

type Dashboard struct {
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Totals      DashboardTotals `json:"totals"`
	TopProducts []RollupLine    `json:"top_products"`
	BySeller    []RollupLine    `json:"by_seller"`
	ByColor     []RollupLine    `json:"by_color"`
	GeneratedAt time.Time       `json:"generated_at"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// NewListResponse не отдаёт null вместо пустого списка
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Total: len(items)}
}
