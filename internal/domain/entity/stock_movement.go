package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock (value object conceptual).
const (
	MovementKindIn         = "in"         // entrada (compras)
	MovementKindOut        = "out"        // salida (ventas)
	MovementKindAdjustment = "adjustment" // ajuste manual o reverso de compra
	MovementKindTransfer   = "transfer"   // entre sucursales
)

// Tipos de referencia persistidos en stock_movements.reference_type.
const (
	ReferenceTypeSale     = "sale"
	ReferenceTypePurchase = "purchase"
	ReferenceTypeTransfer = "transfer"
	ReferenceTypeManual   = "manual"
)

// MovementReference apunta un movimiento a la entidad que lo causó.
// Es un tipo suma cerrado: solo se construye con SaleReference,
// PurchaseReference, TransferReference o ManualReference, de modo que el
// compilador y ParseReference acotan los casos posibles (nada de strings
// arbitrarios como en esquemas reference_type/reference_id abiertos).
type MovementReference struct {
	refType string
	refID   string
}

// SaleReference referencia a la venta que originó el movimiento.
func SaleReference(saleID string) MovementReference {
	return MovementReference{refType: ReferenceTypeSale, refID: saleID}
}

// PurchaseReference referencia a la compra que originó el movimiento.
func PurchaseReference(purchaseID string) MovementReference {
	return MovementReference{refType: ReferenceTypePurchase, refID: purchaseID}
}

// TransferReference referencia al traslado que originó el movimiento.
func TransferReference(transferID string) MovementReference {
	return MovementReference{refType: ReferenceTypeTransfer, refID: transferID}
}

// ManualReference ajuste manual sin documento asociado.
func ManualReference() MovementReference {
	return MovementReference{refType: ReferenceTypeManual}
}

// ParseReference reconstruye la referencia desde las columnas persistidas.
// Un reference_type desconocido es un error (journal corrupto).
func ParseReference(refType, refID string) (MovementReference, error) {
	switch refType {
	case ReferenceTypeSale, ReferenceTypePurchase, ReferenceTypeTransfer:
		return MovementReference{refType: refType, refID: refID}, nil
	case ReferenceTypeManual:
		return ManualReference(), nil
	}
	return MovementReference{}, errUnknownReferenceType(refType)
}

// ReferenceType devuelve el tipo de la referencia (ver constantes ReferenceType*).
func (r MovementReference) ReferenceType() string { return r.refType }

// ReferenceID devuelve el ID del documento referenciado; vacío para Manual.
func (r MovementReference) ReferenceID() string { return r.refID }

// IsZero indica si la referencia no fue construida con un constructor válido.
func (r MovementReference) IsZero() bool { return r.refType == "" }

type errUnknownReferenceType string

func (e errUnknownReferenceType) Error() string {
	return "tipo de referencia desconocido: " + string(e)
}

// StockMovement representa un asiento inmutable del journal de stock.
// Delta es firmado (negativo para salidas); QuantityBefore/QuantityAfter se
// capturan de la MISMA sentencia atómica que mutó StockLevel, nunca de una
// lectura posterior. El journal es solo-append: no hay update ni delete.
type StockMovement struct {
	ID             string
	CompanyID      string
	ProductID      string
	OutletID       string
	Kind           string          // ver constantes MovementKind*
	Delta          decimal.Decimal // firmado
	QuantityBefore decimal.Decimal
	QuantityAfter  decimal.Decimal
	Reference      MovementReference
	Note           string
	CreatedAt      time.Time
	CreatedBy      string // UserID
}
