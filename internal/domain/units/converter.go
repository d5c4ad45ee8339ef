package units

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/domain"
)

// Servicio de dominio para conversión de unidades (aritmética pura).
// 1 unidad alterna = factor unidades base.

// ToBase convierte una cantidad pedida en unidad alterna a unidad base:
// base = qty * factor. Falla si factor <= 0.
func ToBase(qty, factor decimal.Decimal) (decimal.Decimal, error) {
	if !factor.GreaterThan(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidConversionFactor
	}
	return qty.Mul(factor), nil
}

// FromBase convierte una cantidad en unidad base a la unidad alterna:
// qty = base / factor. Falla si factor <= 0.
func FromBase(base, factor decimal.Decimal) (decimal.Decimal, error) {
	if !factor.GreaterThan(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidConversionFactor
	}
	return base.Div(factor), nil
}

// UnitPrice calcula el precio a mostrar por unidad alterna: precio base / factor,
// salvo que exista un precio override configurado para esa presentación, que gana.
func UnitPrice(basePrice, factor decimal.Decimal, override *decimal.Decimal) (decimal.Decimal, error) {
	if !factor.GreaterThan(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidConversionFactor
	}
	if override != nil {
		return *override, nil
	}
	return basePrice.Div(factor), nil
}
