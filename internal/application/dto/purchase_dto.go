package dto

import "github.com/shopspring/decimal"

// CreatePurchaseRequest body para POST /api/purchases. La compra nace en
// pending y NO afecta stock hasta el edge a paid.
type CreatePurchaseRequest struct {
	OutletID     string                `json:"outlet_id"`
	SupplierName string                `json:"supplier_name"`
	Number       string                `json:"number,omitempty"`
	Note         string                `json:"note,omitempty"`
	Items        []PurchaseItemRequest `json:"items"`
}

// PurchaseItemRequest línea de compra en unidad base.
type PurchaseItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// ChangePurchaseStatusRequest body para PUT /api/purchases/:id/status.
type ChangePurchaseStatusRequest struct {
	Status string `json:"status"` // pending, paid, cancelled
}

// PurchaseResponse compra con detalle.
type PurchaseResponse struct {
	ID           string                 `json:"id"`
	CompanyID    string                 `json:"company_id"`
	OutletID     string                 `json:"outlet_id"`
	SupplierName string                 `json:"supplier_name"`
	Number       string                 `json:"number"`
	Status       string                 `json:"status"`
	StockApplied bool                   `json:"stock_applied"`
	GrandTotal   decimal.Decimal        `json:"grand_total"`
	Date         string                 `json:"date"`
	Lines        []PurchaseLineResponse `json:"lines"`
}

// PurchaseLineResponse línea en la respuesta.
type PurchaseLineResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	LineTotal decimal.Decimal `json:"line_total"`
}
