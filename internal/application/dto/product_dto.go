package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	BaseUnit     string          `json:"base_unit"`
	Price        decimal.Decimal `json:"price"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	Barcode      string          `json:"barcode,omitempty"`
	Attributes   json.RawMessage `json:"attributes,omitempty"`
}

// UpdateProductRequest body para PUT /api/products/:id.
// Solo precio y metadatos: identidad y unidad base son inmutables una vez
// que existen movimientos que referencian el producto.
type UpdateProductRequest struct {
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	Barcode      string          `json:"barcode,omitempty"`
	Attributes   json.RawMessage `json:"attributes,omitempty"`
}

// ProductResponse producto en respuestas.
type ProductResponse struct {
	ID           string          `json:"id"`
	CompanyID    string          `json:"company_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	BaseUnit     string          `json:"base_unit"`
	Price        decimal.Decimal `json:"price"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	Barcode      string          `json:"barcode,omitempty"`
}

// CreateProductUnitRequest body para POST /api/products/:id/units.
type CreateProductUnitRequest struct {
	Name             string           `json:"name"`
	ConversionFactor decimal.Decimal  `json:"conversion_factor"`
	PriceOverride    *decimal.Decimal `json:"price_override,omitempty"`
	Barcode          string           `json:"barcode,omitempty"`
}

// ProductUnitResponse presentación alterna en respuestas. Price es el precio
// efectivo por unidad alterna (override o precio base / factor).
type ProductUnitResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	Name             string          `json:"name"`
	ConversionFactor decimal.Decimal `json:"conversion_factor"`
	Price            decimal.Decimal `json:"price"`
	Barcode          string          `json:"barcode,omitempty"`
}
