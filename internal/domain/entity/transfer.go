package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un traslado entre sucursales. Solo el primer edge a approved
// mueve stock; StockMoved es el marcador de idempotencia.
const (
	TransferStatusPending   = "pending"
	TransferStatusApproved  = "approved"
	TransferStatusCancelled = "cancelled"
)

// Transfer representa un traslado de stock de una sucursal a otra como una
// unidad atómica: o se debita el origen Y se acredita el destino, o nada.
type Transfer struct {
	ID           string
	CompanyID    string
	FromOutletID string
	ToOutletID   string
	Number       string
	Status       string // ver constantes TransferStatus*
	StockMoved   bool
	Note         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CreatedBy    string
}

// TransferLine representa una línea de traslado en unidad base.
type TransferLine struct {
	ID         string
	TransferID string
	ProductID  string
	Quantity   decimal.Decimal
}
