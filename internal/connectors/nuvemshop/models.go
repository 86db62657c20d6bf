package nuvemshop

import (
	"strconv"
	"strings"

	"catalogsync/internal/models"
)

// Product is Nuvemshop's native product shape. Name and description are
// locale-keyed maps; prices and weights come back as strings.
type Product struct {
	ID          int64             `json:"id"`
	Name        map[string]string `json:"name"`
	Description map[string]string `json:"description"`
	Brand       string            `json:"brand"`
	Tags        string            `json:"tags"`
	Variants    []Variant         `json:"variants"`
	Images      []Image           `json:"images"`
	Categories  []Category        `json:"categories"`
}

type Variant struct {
	ID      int64  `json:"id"`
	SKU     string `json:"sku"`
	Price   string `json:"price"`
	Stock   int    `json:"stock"`
	Weight  string `json:"weight"`
	Barcode string `json:"barcode"`
}

type Image struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
}

type Category struct {
	ID   int64             `json:"id"`
	Name map[string]string `json:"name"`
}

// StoreInfo is the /store identity payload used by the connectivity probe.
type StoreInfo struct {
	ID       int64             `json:"id"`
	Name     map[string]string `json:"name"`
	URL      string            `json:"url_with_protocol"`
	Country  string            `json:"country"`
	Currency string            `json:"main_currency"`
}

// webhookEvent is the callback body: Nuvemshop posts only identifiers, the
// affected resource is refetched.
type webhookEvent struct {
	StoreID int64  `json:"store_id"`
	Event   string `json:"event"`
	ID      int64  `json:"id"`
}

// TokenResponse is the OAuth code-for-token exchange result. UserID doubles
// as the store id the API base URL needs.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	UserID      int64  `json:"user_id"`
}

// localized picks the pt value when present, otherwise the first non-empty
// translation. Brazilian stores are the common case here.
func localized(m map[string]string) string {
	if m == nil {
		return ""
	}
	if v, ok := m["pt"]; ok && v != "" {
		return v
	}
	for _, v := range m {
		if v != "" {
			return v
		}
	}
	return ""
}

func (p *Product) toRaw() *models.RawProduct {
	raw := &models.RawProduct{
		ID:          strconv.FormatInt(p.ID, 10),
		Title:       localized(p.Name),
		Description: localized(p.Description),
		Vendor:      p.Brand,
	}

	if len(p.Categories) > 0 {
		raw.Category = localized(p.Categories[0].Name)
	}
	if p.Tags != "" {
		raw.Tags = splitTags(p.Tags)
	}
	for _, img := range p.Images {
		raw.Images = append(raw.Images, img.Src)
	}

	for _, v := range p.Variants {
		price, _ := strconv.ParseFloat(v.Price, 64)
		weight, _ := strconv.ParseFloat(v.Weight, 64)
		raw.Variants = append(raw.Variants, models.RawVariant{
			ID:       strconv.FormatInt(v.ID, 10),
			SKU:      v.SKU,
			Price:    price,
			Quantity: v.Stock,
			Weight:   weight,
			Barcode:  v.Barcode,
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
			SKU:      v.SKU,
			Quantity: v.Stock,
			Price:    &priceCopy,
		})
	}
	return updates
}

func splitTags(tags string) []string {
	var out []string
	for _, tag := range strings.Split(tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
