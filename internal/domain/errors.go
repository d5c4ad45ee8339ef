package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
)

// Errores del motor de stock y sus coordinadores.
var (
	// ErrInvalidQuantity cantidad <= 0 en un ajuste; se rechaza antes de tocar el store.
	ErrInvalidQuantity = errors.New("cantidad inválida")
	// ErrInsufficientStock el descuento condicional no se pudo satisfacer; la cantidad queda intacta.
	ErrInsufficientStock = errors.New("stock insuficiente")
	// ErrInvalidConversionFactor factor de conversión <= 0 en una unidad alterna.
	ErrInvalidConversionFactor = errors.New("factor de conversión inválido")
	// ErrDuplicateStatusTransition la transición de estado ya fue aplicada; el caller la trata como no-op.
	ErrDuplicateStatusTransition = errors.New("transición de estado ya aplicada")
	// ErrInvalidStatusTransition la transición no existe en la máquina de estados.
	ErrInvalidStatusTransition = errors.New("transición de estado inválida")
	// ErrInsufficientPayment el monto recibido es menor al total de la venta.
	ErrInsufficientPayment = errors.New("pago insuficiente")
)
