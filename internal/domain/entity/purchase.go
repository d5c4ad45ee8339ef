package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una compra. Máquina: pending -> paid -> cancelled;
// paid -> paid es no-op idempotente.
const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusPaid      = "paid"
	PurchaseStatusCancelled = "cancelled"
)

// Purchase representa una compra a proveedor. Crear una compra en pending NO
// tiene efecto en stock; el efecto se aplica en el edge a paid y se revierte
// en el edge paid -> cancelled. StockApplied es el marcador persistido que
// garantiza a-lo-sumo-una aplicación por edge.
type Purchase struct {
	ID           string
	CompanyID    string
	OutletID     string
	SupplierName string
	Number       string
	Status       string // ver constantes PurchaseStatus*
	StockApplied bool
	GrandTotal   decimal.Decimal
	Note         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CreatedBy    string
}

// PurchaseLine representa una línea de compra en unidad base.
type PurchaseLine struct {
	ID         string
	PurchaseID string
	ProductID  string
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	LineTotal  decimal.Decimal
}
