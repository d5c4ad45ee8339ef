package repository

import (
	"context"

	"github.com/tu-usuario/pos-pro/internal/domain/entity"
)

// PurchaseRepository define el puerto de persistencia para compras.
// GetByIDForUpdate bloquea la cabecera para serializar edges de estado
// concurrentes; el stock en sí solo se toca vía StockLevelRepository.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *entity.Purchase) error
	CreateLine(ctx context.Context, line *entity.PurchaseLine) error
	GetByID(ctx context.Context, id string) (*entity.Purchase, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Purchase, error)
	GetLinesByPurchaseID(ctx context.Context, purchaseID string) ([]*entity.PurchaseLine, error)
	// UpdateStatus persiste status y el marcador stock_applied en una sola fila.
	UpdateStatus(ctx context.Context, purchase *entity.Purchase) error
}
