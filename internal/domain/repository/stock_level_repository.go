package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/domain/entity"
)

// StockLevelRepository define el puerto sobre la cantidad en mano por
// producto+sucursal. Las mutaciones son primitivas atómicas de una sola
// sentencia en el storage: el before/after retornado proviene de la MISMA
// sentencia que mutó, nunca de una lectura separada. Ningún componente debe
// hacer leer-calcular-escribir contra quantity por fuera de estas primitivas.
type StockLevelRepository interface {
	// Get devuelve el nivel actual; cantidad 0 si la fila aún no existe.
	Get(ctx context.Context, companyID, productID, outletID string) (*entity.StockLevel, error)
	// AddQuantity suma qty de forma atómica (materializa la fila si falta)
	// y devuelve (before, after) de la misma sentencia.
	AddQuantity(ctx context.Context, companyID, productID, outletID string, qty decimal.Decimal) (before, after decimal.Decimal, err error)
	// SubtractQuantity resta qty solo si quantity >= qty (compare-and-decrement
	// atómico). Si la condición no se cumple devuelve domain.ErrInsufficientStock
	// y la cantidad queda intacta; no hay decremento parcial.
	SubtractQuantity(ctx context.Context, companyID, productID, outletID string, qty decimal.Decimal) (before, after decimal.Decimal, err error)
}
