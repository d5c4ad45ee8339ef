package dto

import "github.com/shopspring/decimal"

// AdjustStockRequest body para POST /api/stock/adjustments (ajuste manual).
// Direction: "increase" o "decrease"; Quantity siempre positiva.
type AdjustStockRequest struct {
	ProductID string          `json:"product_id"`
	OutletID  string          `json:"outlet_id"`
	Direction string          `json:"direction"`
	Quantity  decimal.Decimal `json:"quantity"`
	Note      string          `json:"note,omitempty"`
}

// StockLevelResponse nivel actual para GET /api/stock/levels.
type StockLevelResponse struct {
	ProductID string          `json:"product_id"`
	OutletID  string          `json:"outlet_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// StockMovementResponse asiento del journal para GET /api/stock/movements.
type StockMovementResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	OutletID       string          `json:"outlet_id"`
	Kind           string          `json:"kind"`
	Delta          decimal.Decimal `json:"delta"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	ReferenceType  string          `json:"reference_type"`
	ReferenceID    string          `json:"reference_id,omitempty"`
	Note           string          `json:"note,omitempty"`
	CreatedAt      string          `json:"created_at"`
	CreatedBy      string          `json:"created_by,omitempty"`
}
