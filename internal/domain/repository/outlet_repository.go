package repository

import (
	"context"

	"github.com/tu-usuario/pos-pro/internal/domain/entity"
)

// OutletRepository define el puerto de persistencia para sucursales.
type OutletRepository interface {
	Create(ctx context.Context, outlet *entity.Outlet) error
	GetByID(ctx context.Context, id string) (*entity.Outlet, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Outlet, error)
}
