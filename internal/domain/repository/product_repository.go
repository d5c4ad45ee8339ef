package repository

import (
	"context"

	"github.com/tu-usuario/pos-pro/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para productos.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCompanyAndSKU(ctx context.Context, companyID, sku string) (*entity.Product, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
}

// ProductUnitRepository define el puerto para presentaciones alternas.
// Solo lectura desde el motor de stock; escritura desde gestión de catálogo.
type ProductUnitRepository interface {
	Create(ctx context.Context, unit *entity.ProductUnit) error
	GetByID(ctx context.Context, id string) (*entity.ProductUnit, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.ProductUnit, error)
}
