package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU vendible (multi-sucursal).
// La cantidad en mano NO vive aquí: se maneja por sucursal en StockLevel.
// BaseUnit es la unidad canónica en la que se almacena la cantidad; las
// presentaciones alternas (caja, docena, etc.) se modelan en ProductUnit.
type Product struct {
	ID           string
	CompanyID    string
	SKU          string // código único por empresa
	Name         string
	Description  string
	BaseUnit     string          // ej. "und", "kg", "lt"
	Price        decimal.Decimal // precio de venta por unidad base
	MinimumStock decimal.Decimal // umbral de stock mínimo (alertas de reposición, fuera del core)
	TaxRate      decimal.Decimal // 0, 0.05, 0.19
	Barcode      string
	Attributes   json.RawMessage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
