package bling

import (
	"strconv"
	"strings"

	"catalogsync/internal/models"
)

// Product is Bling's native product shape. The v2 API wraps every list item
// in a {"produto": {...}} envelope and serializes numbers as strings.
type Product struct {
	Codigo         string      `json:"codigo"`
	Descricao      string      `json:"descricao"`
	DescricaoCurta string      `json:"descricaoCurta"`
	Marca          string      `json:"marca"`
	Categoria      string      `json:"categoria"`
	Preco          string      `json:"preco"`
	EstoqueAtual   float64     `json:"estoqueAtual"`
	PesoLiq        string      `json:"pesoLiq"`
	Gtin           string      `json:"gtin"`
	ImagemURL      string      `json:"urlImagem"`
	Variacoes      []Variation `json:"variacoes"`
}

type Variation struct {
	Codigo       string  `json:"codigo"`
	Nome         string  `json:"nome"`
	Preco        string  `json:"preco"`
	EstoqueAtual float64 `json:"estoqueAtual"`
	Gtin         string  `json:"gtin"`
}

type productEnvelope struct {
	Produto Product `json:"produto"`
}

type apiError struct {
	Erro struct {
		Cod int    `json:"cod"`
		Msg string `json:"msg"`
	} `json:"erro"`
}

type listResponse struct {
	Retorno struct {
		Produtos []productEnvelope `json:"produtos"`
		Erros    []apiError        `json:"erros"`
	} `json:"retorno"`
}

type singleResponse struct {
	Retorno struct {
		Produtos []productEnvelope `json:"produtos"`
		Erros    []apiError        `json:"erros"`
	} `json:"retorno"`
}

type statusResponse struct {
	Retorno struct {
		Erros []apiError `json:"erros"`
	} `json:"retorno"`
}

// webhookEvent is the callback body Bling posts. Bling does not sign its
// callbacks.
type webhookEvent struct {
	Codigo       string  `json:"codigo"`
	EstoqueAtual float64 `json:"estoqueAtual"`
	Preco        string  `json:"preco"`
}

// toRaw converts a Bling product into the source-neutral raw shape. Products
// without explicit variations sell as a single variant keyed by their own
// code.
func (p *Product) toRaw() *models.RawProduct {
	raw := &models.RawProduct{
		ID:          p.Codigo,
		Title:       p.Descricao,
		Description: p.DescricaoCurta,
		Vendor:      p.Marca,
		Category:    p.Categoria,
	}
	if p.ImagemURL != "" {
		raw.Images = []string{p.ImagemURL}
	}

	if len(p.Variacoes) == 0 {
		raw.Variants = []models.RawVariant{{
			ID:       p.Codigo,
			SKU:      p.Codigo,
			Price:    parseDecimal(p.Preco),
			Quantity: int(p.EstoqueAtual),
			Weight:   parseDecimal(p.PesoLiq),
			Barcode:  p.Gtin,
		}}
		return raw
	}

	for _, v := range p.Variacoes {
		price := v.Preco
		if price == "" {
			price = p.Preco
		}
		raw.Variants = append(raw.Variants, models.RawVariant{
			ID:       v.Codigo,
			SKU:      v.Codigo,
			Price:    parseDecimal(price),
			Quantity: int(v.EstoqueAtual),
			Weight:   parseDecimal(p.PesoLiq),
			Barcode:  v.Gtin,
		})
	}
	return raw
}

func (p *Product) toInventory() []models.InventoryUpdate {
	if len(p.Variacoes) == 0 {
		price := parseDecimal(p.Preco)
		return []models.InventoryUpdate{{
			SKU:      p.Codigo,
			Quantity: int(p.EstoqueAtual),
			Price:    &price,
		}}
	}

	updates := make([]models.InventoryUpdate, 0, len(p.Variacoes))
	for _, v := range p.Variacoes {
		price := parseDecimal(v.Preco)
		updates = append(updates, models.InventoryUpdate{
			SKU:      v.Codigo,
			Quantity: int(v.EstoqueAtual),
			Price:    &price,
		})
	}
	return updates
}

// parseDecimal reads Bling's string-encoded decimals, tolerating the comma
// separator older accounts still emit.
func parseDecimal(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
