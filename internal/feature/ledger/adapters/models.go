package adapters

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Persistence models for the ledger document. Column layout mirrors the
// document schema the desktop application maintains; the importer only ever
// adds rows (and updates price points in place).

// CurrencyModel is the pre-existing currency table, looked up by ISO code.
type CurrencyModel struct {
	ID   uint   `gorm:"primaryKey"`
	Code string `gorm:"size:8;not null;uniqueIndex"`
	Name string `gorm:"size:64"`
}

func (CurrencyModel) TableName() string {
	return "currencies"
}

// Account classes. The document keeps primary accounts and category
// accounts in one table.
const (
	accountClassPrimary  = "account"
	accountClassCategory = "category"
)

// AccountModel holds primary accounts and category accounts. Full names are
// hierarchical and colon-separated; subcategories reference their parent.
type AccountModel struct {
	ID         uint   `gorm:"primaryKey"`
	Class      string `gorm:"size:16;not null"`
	FullName   string `gorm:"size:255;not null;uniqueIndex"`
	Name       string `gorm:"size:255;not null"`
	ParentID   *uint
	CurrencyID *uint
	Hidden     bool `gorm:"not null;default:false"`
	Note       *string
	UniqueID   string `gorm:"size:36;not null"`
	CreatedAt  time.Time
}

func (AccountModel) TableName() string {
	return "accounts"
}

// TransactionTypeModel is the pre-seeded name-to-id lookup for transaction
// types.
type TransactionTypeModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:32;not null;uniqueIndex"`
}

func (TransactionTypeModel) TableName() string {
	return "transaction_types"
}

// TransactionModel owns one or more line items.
type TransactionModel struct {
	ID          uint      `gorm:"primaryKey"`
	TypeID      uint      `gorm:"not null"`
	CurrencyID  uint      `gorm:"not null"`
	Date        time.Time `gorm:"not null;index"`
	CheckNumber int       `gorm:"not null;default:0"`
	Cleared     bool      `gorm:"not null;default:false"`
	Void        bool      `gorm:"not null;default:false"`
	Note        string
	Title       *string
	UniqueID    string `gorm:"size:36;not null"`
	CreatedAt   time.Time
}

func (TransactionModel) TableName() string {
	return "transactions"
}

// LineItemModel is one side of a transaction. AccountID is NULL for the
// unassigned category side of security trades. Cleared is set only on the
// primary side.
type LineItemModel struct {
	ID                 uint  `gorm:"primaryKey"`
	TransactionID      uint  `gorm:"not null;index"`
	AccountID          *uint `gorm:"index"`
	SecurityLineItemID *uint
	Cleared            *bool
	IntradaySortIndex  int             `gorm:"not null;default:0"`
	ExchangeRate       decimal.Decimal `gorm:"type:numeric;not null"`
	Amount             decimal.Decimal `gorm:"type:numeric;not null"`
	Memo               *string
	UniqueID           string `gorm:"size:36;not null"`
	CreatedAt          time.Time
}

func (LineItemModel) TableName() string {
	return "line_items"
}

// SecurityModel is a tradable instrument, keyed by its stable symbol.
type SecurityModel struct {
	ID         uint   `gorm:"primaryKey"`
	Symbol     string `gorm:"size:32;not null;uniqueIndex"`
	Name       string `gorm:"size:255;not null"`
	Kind       int    `gorm:"not null"`
	CurrencyID uint   `gorm:"not null"`
	ParValue   decimal.NullDecimal `gorm:"type:numeric"`
	Note       string
	UniqueID   string `gorm:"size:36;not null"`
	CreatedAt  time.Time
}

func (SecurityModel) TableName() string {
	return "securities"
}

// Cost basis methods for Sell security line items.
const costBasisFIFO = 1

// SecurityLineItemModel carries the security-specific side of a transaction,
// attached to the primary line item. Trade fields are NULL for income rows;
// income rows cross-link the category line item's unique id.
type SecurityLineItemModel struct {
	ID                       uint                `gorm:"primaryKey"`
	LineItemID               uint                `gorm:"not null;index"`
	SecurityID               uint                `gorm:"not null;index"`
	Amount                   decimal.NullDecimal `gorm:"type:numeric"`
	Commission               decimal.NullDecimal `gorm:"type:numeric"`
	Income                   decimal.NullDecimal `gorm:"type:numeric"`
	PriceMultiplier          decimal.Decimal     `gorm:"type:numeric;not null"`
	PricePerShare            decimal.NullDecimal `gorm:"type:numeric"`
	Shares                   decimal.NullDecimal `gorm:"type:numeric"`
	CostBasisMethod          *int
	DistributionType         int     `gorm:"not null;default:1"`
	IncomeCategoryLineItemID *string `gorm:"size:36"`
}

func (SecurityLineItemModel) TableName() string {
	return "security_line_items"
}

// SecurityPriceModel is one daily OHLCV row. The schema carries no unique
// constraint on (security, day); the single-row invariant is enforced by the
// upsert and violating documents are treated as corrupt.
type SecurityPriceModel struct {
	ID         uint            `gorm:"primaryKey"`
	SecurityID uint            `gorm:"not null;index:price_sec_day,priority:1"`
	Day        time.Time       `gorm:"not null;index:price_sec_day,priority:2"`
	Open       decimal.Decimal `gorm:"type:numeric;not null"`
	High       decimal.Decimal `gorm:"type:numeric;not null"`
	Low        decimal.Decimal `gorm:"type:numeric;not null"`
	Close      decimal.Decimal `gorm:"type:numeric;not null"`
	Volume     int64           `gorm:"not null;default:0"`
}

func (SecurityPriceModel) TableName() string {
	return "security_prices"
}

// KeyCatalogModel is the per-record-type key allocation catalog the desktop
// application consults; FinalizeRun refreshes it from the table maxima.
type KeyCatalogModel struct {
	Name   string `gorm:"primaryKey;size:64"`
	MaxKey int64  `gorm:"not null;default:0"`
}

func (KeyCatalogModel) TableName() string {
	return "key_catalog"
}

// Migrate creates the document schema. Real documents arrive with the schema
// in place; this exists for tests and for bootstrapping empty documents.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&CurrencyModel{},
		&AccountModel{},
		&TransactionTypeModel{},
		&TransactionModel{},
		&LineItemModel{},
		&SecurityModel{},
		&SecurityLineItemModel{},
		&SecurityPriceModel{},
		&KeyCatalogModel{},
	)
}
