package dto

import "github.com/shopspring/decimal"

// CreateSaleRequest body para POST /api/sales.
// OutletID: sucursal de la cual se descuenta el stock.
type CreateSaleRequest struct {
	OutletID string            `json:"outlet_id"`
	Number   string            `json:"number,omitempty"` // opcional; si va vacío se genera
	Discount decimal.Decimal   `json:"discount"`         // descuento a nivel de venta
	TaxRate  decimal.Decimal   `json:"tax_rate"`         // 0, 0.05, 0.19
	Tendered decimal.Decimal   `json:"tendered"`         // monto recibido
	Note     string            `json:"note,omitempty"`
	Items    []SaleItemRequest `json:"items"`
}

// SaleItemRequest línea de venta. Quantity va en la unidad elegida
// (ProductUnitID vacío = unidad base). UnitPrice en 0 usa el precio del
// catálogo para esa presentación.
type SaleItemRequest struct {
	ProductID     string          `json:"product_id"`
	ProductUnitID string          `json:"product_unit_id,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Discount      decimal.Decimal `json:"discount"` // descuento de línea
}

// SaleResponse venta con detalle para POST/GET /api/sales.
type SaleResponse struct {
	ID         string             `json:"id"`
	CompanyID  string             `json:"company_id"`
	OutletID   string             `json:"outlet_id"`
	Number     string             `json:"number"`
	Subtotal   decimal.Decimal    `json:"subtotal"`
	Discount   decimal.Decimal    `json:"discount"`
	TaxRate    decimal.Decimal    `json:"tax_rate"`
	TaxAmount  decimal.Decimal    `json:"tax_amount"`
	GrandTotal decimal.Decimal    `json:"grand_total"`
	Tendered   decimal.Decimal    `json:"tendered"`
	Change     decimal.Decimal    `json:"change"`
	Date       string             `json:"date"`
	Lines      []SaleLineResponse `json:"lines"`
}

// SaleLineResponse línea en la respuesta; incluye el factor de conversión
// capturado al vender y la cantidad descontada en unidad base.
type SaleLineResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	ProductUnitID    string          `json:"product_unit_id,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
	ConversionFactor decimal.Decimal `json:"conversion_factor"`
	BaseQuantity     decimal.Decimal `json:"base_quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Discount         decimal.Decimal `json:"discount"`
	LineTotal        decimal.Decimal `json:"line_total"`
}
