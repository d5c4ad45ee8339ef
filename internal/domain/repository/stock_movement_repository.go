package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/pos-pro/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del journal de
// stock. Solo-append: Create y lecturas; no expone update ni delete.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByProductOutlet lista el historial de un producto en una sucursal,
	// en orden de creación ascendente, con rango de fechas opcional.
	ListByProductOutlet(ctx context.Context, companyID, productID, outletID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	// ListByReference lista los movimientos causados por un documento (venta,
	// compra o traslado).
	ListByReference(ctx context.Context, companyID string, ref entity.MovementReference) ([]*entity.StockMovement, error)
}
