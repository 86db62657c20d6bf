package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Connector struct {
	ID          string                 `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string                 `json:"name" gorm:"not null"`
	Type        SourceType             `json:"type" gorm:"not null"`
	Status      ConnectorStatus        `json:"status" gorm:"default:INACTIVE"`
	Config      map[string]interface{} `json:"config" gorm:"serializer:json"`
	Credentials map[string]interface{} `json:"credentials" gorm:"serializer:json"`
	LastSync    *time.Time             `json:"last_sync"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// SourceType is the closed set of supported catalog sources. Adapter
// constructors are bound to these tags through the connector registry.
type SourceType string

const (
	SourceTypeShopify   SourceType = "SHOPIFY"
	SourceTypeNuvemshop SourceType = "NUVEMSHOP"
	SourceTypeBling     SourceType = "BLING"
)

type ConnectorStatus string

const (
	ConnectorStatusActive   ConnectorStatus = "ACTIVE"
	ConnectorStatusInactive ConnectorStatus = "INACTIVE"
	ConnectorStatusError    ConnectorStatus = "ERROR"
	ConnectorStatusSyncing  ConnectorStatus = "SYNCING"
)

// Credential returns a string credential by key, or "" when absent.
func (c *Connector) Credential(key string) string {
	if c.Credentials == nil {
		return ""
	}
	if v, ok := c.Credentials[key].(string); ok {
		return v
	}
	return ""
}

func (c *Connector) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
