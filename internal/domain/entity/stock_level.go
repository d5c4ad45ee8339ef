package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel representa la cantidad en mano autoritativa de un producto en una
// sucursal (clave única producto+sucursal). Invariante: Quantity >= 0 siempre.
// La fila se materializa con cantidad 0 la primera vez que se referencia y
// nunca se borra mientras existan movimientos que la apunten.
type StockLevel struct {
	ProductID string
	OutletID  string
	CompanyID string
	Quantity  decimal.Decimal // NUMERIC(15,3) en DB
	UpdatedAt time.Time
}
