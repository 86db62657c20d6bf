package models

import (
	"time"
)

// SKUMapping is the persisted resolution of one supplier-local SKU to the
// shared master SKU. There is at most one mapping per supplier SKU; manual
// mappings always carry confidence 1.0 and are never superseded by the
// auto-mapping path.
type SKUMapping struct {
	SupplierSKU string      `json:"supplier_sku" gorm:"primary_key"`
	MasterSKU   string      `json:"master_sku" gorm:"not null;index"`
	Confidence  float64     `json:"confidence"`
	MappingType MappingType `json:"mapping_type" gorm:"not null"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type MappingType string

const (
	MappingTypeAuto   MappingType = "auto"
	MappingTypeManual MappingType = "manual"
)
