package shopify

import (
	"strconv"
	"strings"
	"time"

	"catalogsync/internal/models"
)

// Product represents a Shopify product
type Product struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	BodyHTML    string     `json:"body_html"`
	Vendor      string     `json:"vendor"`
	ProductType string     `json:"product_type"`
	Handle      string     `json:"handle"`
	Status      string     `json:"status"`
	Tags        string     `json:"tags"`
	Variants    []Variant  `json:"variants"`
	Images      []Image    `json:"images"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at"`
}

// Variant represents a product variant
type Variant struct {
	ID                int64   `json:"id"`
	ProductID         int64   `json:"product_id"`
	Title             string  `json:"title"`
	Price             string  `json:"price"`
	Sku               string  `json:"sku"`
	Position          int     `json:"position"`
	Barcode           *string `json:"barcode"`
	Grams             int     `json:"grams"`
	Weight            float64 `json:"weight"`
	WeightUnit        string  `json:"weight_unit"`
	InventoryItemID   int64   `json:"inventory_item_id"`
	InventoryQuantity int     `json:"inventory_quantity"`
}

// Image represents a product image
type Image struct {
	ID       int64  `json:"id"`
	Position int    `json:"position"`
	Src      string `json:"src"`
}

// Shop represents shop information, trimmed to the identity fields the
// connectivity probe needs.
type Shop struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Domain          string `json:"domain"`
	Currency        string `json:"currency"`
	Timezone        string `json:"timezone"`
	MyshopifyDomain string `json:"myshopify_domain"`
}

// ProductsResponse represents the response from products API
type ProductsResponse struct {
	Products []Product `json:"products"`
}

// inventoryEvent is the body of an inventory_levels/update callback.
type inventoryEvent struct {
	InventoryItemID int64  `json:"inventory_item_id"`
	Available       int    `json:"available"`
	SKU             string `json:"sku"`
}

// TokenResponse is the OAuth code-for-token exchange result.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}

// toRaw converts a Shopify product to the source-neutral raw shape.
func (p *Product) toRaw() *models.RawProduct {
	raw := &models.RawProduct{
		ID:          strconv.FormatInt(p.ID, 10),
		Title:       p.Title,
		Description: p.BodyHTML,
		Vendor:      p.Vendor,
		Category:    p.ProductType,
	}

	if p.Tags != "" {
		for _, tag := range strings.Split(p.Tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				raw.Tags = append(raw.Tags, tag)
			}
		}
	}

	for _, img := range p.Images {
		raw.Images = append(raw.Images, img.Src)
	}

	for _, v := range p.Variants {
		price, _ := strconv.ParseFloat(v.Price, 64)
		barcode := ""
		if v.Barcode != nil {
			barcode = *v.Barcode
		}
		raw.Variants = append(raw.Variants, models.RawVariant{
			ID:       strconv.FormatInt(v.ID, 10),
			SKU:      v.Sku,
			Price:    price,
			Quantity: v.InventoryQuantity,
			Weight:   v.Weight,
			Barcode:  barcode,
		})
	}

	return raw
}

func (p *Product) toInventory() []models.InventoryUpdate {
	updates := make([]models.InventoryUpdate, 0, len(p.Variants))
	for _, v := range p.Variants {
		price, _ := strconv.ParseFloat(v.Price, 64)
		priceCopy := price
		updates = append(updates, models.InventoryUpdate{
			SKU:      v.Sku,
			Quantity: v.InventoryQuantity,
			Price:    &priceCopy,
		})
	}
	return updates
}
