package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductUnit representa una presentación alterna de un producto
// (ej. caja de 24, docena). 1 unidad alterna = ConversionFactor unidades base.
// PriceOverride, si no es nil, reemplaza al precio derivado (precio base / factor).
// Lo crea la gestión de catálogo; el motor de stock solo lo lee.
type ProductUnit struct {
	ID               string
	CompanyID        string
	ProductID        string
	Name             string          // ej. "caja", "docena"
	ConversionFactor decimal.Decimal // > 0; validado en domain/units
	PriceOverride    *decimal.Decimal
	Barcode          string // código de barras propio de la presentación (opcional)
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
