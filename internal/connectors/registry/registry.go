// Package registry binds every supported source type to its adapter
// constructor. Importing it (usually blank, from main) builds the connector
// registry once at startup.
package registry

import (
	"catalogsync/internal/connectors"
	"catalogsync/internal/connectors/bling"
	"catalogsync/internal/connectors/nuvemshop"
	"catalogsync/internal/connectors/shopify"
	"catalogsync/internal/models"
)

func init() {
	connectors.Register(models.SourceTypeShopify, shopify.New)
	connectors.Register(models.SourceTypeNuvemshop, nuvemshop.New)
	connectors.Register(models.SourceTypeBling, bling.New)
}
