package models

import (
	"time"

	"github.com/lib/pq"
)

// RawProduct is the source-neutral shape every adapter converts its native
// API payload into before normalization. It is transient: it lives only for
// the duration of one import or webhook call and is never persisted.
type RawProduct struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Vendor      string       `json:"vendor"`
	Category    string       `json:"category"`
	Tags        []string     `json:"tags"`
	Images      []string     `json:"images"`
	Variants    []RawVariant `json:"variants"`
}

type RawVariant struct {
	ID       string  `json:"id"`
	SKU      string  `json:"sku"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Weight   float64 `json:"weight"`
	Barcode  string  `json:"barcode"`
}

// SPU is the canonical product family record, one per source-native product.
// Its ID is deterministic from (connector id, raw product id) so re-importing
// the same source item always upserts the same row.
type SPU struct {
	ID          string         `json:"id" gorm:"primary_key"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description"`
	Vendor      string         `json:"vendor"`
	Category    string         `json:"category"`
	Tags        pq.StringArray `json:"tags" gorm:"type:text[]"`
	Images      pq.StringArray `json:"images" gorm:"type:text[]"`
	ConnectorID string         `json:"connector_id" gorm:"not null;index"`
	ExternalID  string         `json:"external_id" gorm:"not null"`
	SKUs        []SKU          `json:"skus" gorm:"foreignKey:SPUID"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// SKU is the canonical sellable variant record, one per source-native variant.
type SKU struct {
	ID            string        `json:"id" gorm:"primary_key"`
	SPUID         string        `json:"spu_id" gorm:"column:spu_id;not null;index"`
	SupplierSKU   string        `json:"supplier_sku" gorm:"not null;index"`
	MasterSKU     string        `json:"master_sku"`
	Price         float64       `json:"price" gorm:"type:decimal(10,2)"`
	Stock         int           `json:"stock"`
	Weight        float64       `json:"weight"`
	Barcode       string        `json:"barcode"`
	MappingStatus MappingStatus `json:"mapping_status" gorm:"default:pending;index"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// MappingStatus tracks how a SKU's master identifier was resolved. It only
// advances pending -> auto or pending -> manual; nothing moves it backward.
type MappingStatus string

const (
	MappingStatusPending MappingStatus = "pending"
	MappingStatusAuto    MappingStatus = "auto"
	MappingStatusManual  MappingStatus = "manual"
)
