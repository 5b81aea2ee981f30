package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Роли пользователей
const (
	RoleAdmin  = "admin"
	RoleSeller = "seller"
)

// User - сотрудник или партнёр, владелец личной доли общего инвентаря
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"type:varchar(150);not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	Role         string    `json:"role" gorm:"type:varchar(20);not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

// Category - иерархическая категория (parent_id ссылается на эту же таблицу)
type Category struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string     `json:"name" gorm:"type:varchar(100);not null"`
	Icon      string     `json:"icon" gorm:"type:varchar(100)"`
	Color     string     `json:"color" gorm:"type:varchar(20)"`
	ParentID  *uuid.UUID `json:"parent_id" gorm:"type:uuid;index"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

func (Category) TableName() string {
	return "categories"
}

// CategoryNode - категория с дочерними, для отдачи дерева
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children"`
}

// Provider - поставщик
type Provider struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(150);not null"`
	ContactName string    `json:"contact_name" gorm:"type:varchar(150)"`
	Phone       string    `json:"phone" gorm:"type:varchar(50)"`
	Email       string    `json:"email" gorm:"type:varchar(255)"`
	Notes       string    `json:"notes" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Provider) TableName() string {
	return "providers"
}

// Currency - валюта товара (MXN, USD)
type Currency struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Code   string    `json:"code" gorm:"type:varchar(3);uniqueIndex;not null"`
	Name   string    `json:"name" gorm:"type:varchar(50);not null"`
	Symbol string    `json:"symbol" gorm:"type:varchar(5);not null"`
}

func (Currency) TableName() string {
	return "currencies"
}

// Product - строка складского учёта.
// PurchasePrice всегда относится к текущей версии; Stock - все физические единицы,
// включая распределённые между партнёрами.
type Product struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Name          string          `json:"name" gorm:"type:varchar(200);not null"`
	Description   string          `json:"description" gorm:"type:text"`
	Color         string          `json:"color" gorm:"type:varchar(50)"`
	CategoryID    uuid.UUID       `json:"category_id" gorm:"type:uuid;not null;index"`
	CurrencyID    uuid.UUID       `json:"currency_id" gorm:"type:uuid;not null"`
	Stock         int             `json:"stock" gorm:"not null;default:0;check:stock >= 0"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	PurchasePrice decimal.Decimal `json:"purchase_price" gorm:"type:decimal(12,2);not null"`
	Version       int             `json:"version" gorm:"not null;default:1"`
	CreatedAt     time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt  `json:"-" gorm:"index"`
}

func (Product) TableName() string {
	return "products"
}

// ProductVersion - неизменяемая запись партии с одной себестоимостью.
// Продажи и доли ссылаются на неё, а не на изменяемую строку товара.
type ProductVersion struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	ProductID     uuid.UUID       `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_product_version"`
	Version       int             `json:"version" gorm:"not null;uniqueIndex:idx_product_version"`
	PurchasePrice decimal.Decimal `json:"purchase_price" gorm:"type:decimal(12,2);not null"`
	CreatedAt     time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

func (ProductVersion) TableName() string {
	return "product_versions"
}

// VersionRef - снимок версии, который копируется в продажу и в долю
type VersionRef struct {
	ProductVersionID uuid.UUID       `json:"product_version_id" gorm:"type:uuid;not null"`
	ProductVersion   int             `json:"product_version" gorm:"not null"`
	PurchasePrice    decimal.Decimal `json:"purchase_price" gorm:"type:decimal(12,2);not null"`
}

// Ref возвращает снимок версии
func (v *ProductVersion) Ref() VersionRef {
	return VersionRef{
		ProductVersionID: v.ID,
		ProductVersion:   v.Version,
		PurchasePrice:    v.PurchasePrice,
	}
}

// Investment - запись о пополнении склада, только добавление
type Investment struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	ProductID      uuid.UUID       `json:"product_id" gorm:"type:uuid;not null;index"`
	ProviderID     *uuid.UUID      `json:"provider_id" gorm:"type:uuid;index"`
	ProductVersion int             `json:"product_version" gorm:"not null"`
	QuantityAdded  int             `json:"quantity_added" gorm:"not null"`
	UnitCost       decimal.Decimal `json:"unit_cost" gorm:"type:decimal(12,2);not null"`
	TotalCost      decimal.Decimal `json:"total_cost" gorm:"type:decimal(14,2);not null"`
	InvestmentDate time.Time       `json:"investment_date" gorm:"not null;index"`
	CreatedBy      *uuid.UUID      `json:"created_by" gorm:"type:uuid"`
	CreatedAt      time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

func (Investment) TableName() string {
	return "investments"
}

// SharedInventoryItem - личная доля пользователя в конкретной версии товара.
// Доля не списывает остаток, только закрепляет право на часть единиц.
type SharedInventoryItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	VersionRef
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Quantity  int       `json:"quantity" gorm:"not null;check:quantity >= 0"`
	Notes     string    `json:"notes" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (SharedInventoryItem) TableName() string {
	return "shared_inventory_items"
}

// Sale - продажа; хранит снимок версии на момент создания
type Sale struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	VersionRef
	SellerID           *uuid.UUID      `json:"seller_id" gorm:"type:uuid;index"`
	SharedItemID       *uuid.UUID      `json:"shared_item_id" gorm:"type:uuid;index"`
	ClientName         string          `json:"client_name" gorm:"type:varchar(200)"`
	Color              string          `json:"color" gorm:"type:varchar(50)"`
	QuantitySold       int             `json:"quantity_sold" gorm:"not null"`
	SalePrice          decimal.Decimal `json:"sale_price" gorm:"type:decimal(12,2);not null"`
	Commission         decimal.Decimal `json:"commission" gorm:"type:decimal(12,2);not null"`
	AdditionalExpenses decimal.Decimal `json:"additional_expenses" gorm:"type:decimal(12,2);not null"`
	SaleDate           time.Time       `json:"sale_date" gorm:"not null;index"`
	CreatedAt          time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Sale) TableName() string {
	return "sales"
}

// Revenue - выручка по продаже
func (s *Sale) Revenue() decimal.Decimal {
	return s.SalePrice.Mul(decimal.NewFromInt(int64(s.QuantitySold)))
}

// AllModels - порядок для AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Provider{},
		&Currency{},
		&Product{},
		&ProductVersion{},
		&Investment{},
		&SharedInventoryItem{},
		&Sale{},
	}
}
