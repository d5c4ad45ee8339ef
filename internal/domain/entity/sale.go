package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale representa una venta liquidada en un punto de venta.
// Los totales quedan congelados al liquidar; el descuento de stock asociado
// vive en el journal (movimientos con referencia Sale).
type Sale struct {
	ID         string
	CompanyID  string
	OutletID   string
	Number     string
	Subtotal   decimal.Decimal // suma de líneas menos descuentos de línea
	Discount   decimal.Decimal // descuento a nivel de venta
	TaxRate    decimal.Decimal
	TaxAmount  decimal.Decimal
	GrandTotal decimal.Decimal
	Tendered   decimal.Decimal // monto recibido
	Change     decimal.Decimal // Tendered - GrandTotal
	Note       string
	CreatedAt  time.Time
	CreatedBy  string // UserID del cajero
}

// SaleLine representa una línea de venta. Quantity está en la unidad elegida;
// ConversionFactor se captura al vender para que la línea sea auditable aunque
// la presentación cambie después. BaseQuantity = Quantity * ConversionFactor.
type SaleLine struct {
	ID               string
	SaleID           string
	ProductID        string
	ProductUnitID    string // vacío = unidad base
	Quantity         decimal.Decimal
	ConversionFactor decimal.Decimal
	BaseQuantity     decimal.Decimal
	UnitPrice        decimal.Decimal
	Discount         decimal.Decimal // descuento de línea
	LineTotal        decimal.Decimal // Quantity*UnitPrice - Discount
}
