package dto

import "github.com/shopspring/decimal"

// CreateTransferRequest body para POST /api/transfers. El traslado nace en
// pending; el stock se mueve al aprobar.
type CreateTransferRequest struct {
	FromOutletID string                `json:"from_outlet_id"`
	ToOutletID   string                `json:"to_outlet_id"`
	Number       string                `json:"number,omitempty"`
	Note         string                `json:"note,omitempty"`
	Items        []TransferItemRequest `json:"items"`
}

// TransferItemRequest línea de traslado en unidad base.
type TransferItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// TransferResponse traslado con detalle.
type TransferResponse struct {
	ID           string                 `json:"id"`
	CompanyID    string                 `json:"company_id"`
	FromOutletID string                 `json:"from_outlet_id"`
	ToOutletID   string                 `json:"to_outlet_id"`
	Number       string                 `json:"number"`
	Status       string                 `json:"status"`
	StockMoved   bool                   `json:"stock_moved"`
	Date         string                 `json:"date"`
	Lines        []TransferLineResponse `json:"lines"`
}

// TransferLineResponse línea en la respuesta.
type TransferLineResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}
