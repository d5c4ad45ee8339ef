package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/application/dto"
	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
	"github.com/tu-usuario/pos-pro/internal/domain/units"
)

// ProductUseCase casos de uso de catálogo para productos y sus presentaciones
// alternas. La cantidad en mano NO se toca aquí: se maneja vía el ledger.
type ProductUseCase struct {
	repo     repository.ProductRepository
	unitRepo repository.ProductUnitRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, unitRepo repository.ProductUnitRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, unitRepo: unitRepo}
}

// Create crea un nuevo producto.
func (uc *ProductUseCase) Create(ctx context.Context, companyID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.SKU == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Price.LessThan(decimal.Zero) || in.MinimumStock.LessThan(decimal.Zero) || in.TaxRate.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	existing, _ := uc.repo.GetByCompanyAndSKU(ctx, companyID, in.SKU)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if in.BaseUnit == "" {
		in.BaseUnit = "und"
	}
	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		SKU:          in.SKU,
		Name:         in.Name,
		Description:  in.Description,
		BaseUnit:     in.BaseUnit,
		Price:        in.Price,
		MinimumStock: in.MinimumStock,
		TaxRate:      in.TaxRate,
		Barcode:      in.Barcode,
		Attributes:   in.Attributes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID (validando empresa).
func (uc *ProductUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return toProductResponse(product), nil
}

// Update actualiza precio y metadatos. SKU y unidad base son inmutables una
// vez referenciados por movimientos; no se exponen aquí.
func (uc *ProductUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if in.Price.LessThan(decimal.Zero) || in.MinimumStock.LessThan(decimal.Zero) || in.TaxRate.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if in.Name != "" {
		product.Name = in.Name
	}
	product.Description = in.Description
	product.Price = in.Price
	product.MinimumStock = in.MinimumStock
	product.TaxRate = in.TaxRate
	product.Barcode = in.Barcode
	if len(in.Attributes) > 0 {
		product.Attributes = in.Attributes
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos por empresa con paginación.
func (uc *ProductUseCase) List(ctx context.Context, companyID string, limit, offset int) ([]dto.ProductResponse, error) {
	list, err := uc.repo.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toProductResponse(p))
	}
	return out, nil
}

// CreateUnit crea una presentación alterna del producto. El factor debe ser
// positivo; lo valida el resolver de unidades.
func (uc *ProductUseCase) CreateUnit(ctx context.Context, companyID, productID string, in dto.CreateProductUnitRequest) (*dto.ProductUnitResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.repo.GetByID(ctx, productID)
	if err != nil || product == nil {
		return nil, domain.ErrNotFound
	}
	if product.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	// Valida el factor y deja calculado el precio efectivo de la presentación.
	price, err := units.UnitPrice(product.Price, in.ConversionFactor, in.PriceOverride)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	unit := &entity.ProductUnit{
		ID:               uuid.New().String(),
		CompanyID:        companyID,
		ProductID:        productID,
		Name:             in.Name,
		ConversionFactor: in.ConversionFactor,
		PriceOverride:    in.PriceOverride,
		Barcode:          in.Barcode,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.unitRepo.Create(ctx, unit); err != nil {
		return nil, err
	}
	return toProductUnitResponse(unit, price), nil
}

// ListUnits lista las presentaciones alternas de un producto con su precio efectivo.
func (uc *ProductUseCase) ListUnits(ctx context.Context, companyID, productID string) ([]dto.ProductUnitResponse, error) {
	product, err := uc.repo.GetByID(ctx, productID)
	if err != nil || product == nil {
		return nil, domain.ErrNotFound
	}
	if product.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	list, err := uc.unitRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductUnitResponse, 0, len(list))
	for _, u := range list {
		price, err := units.UnitPrice(product.Price, u.ConversionFactor, u.PriceOverride)
		if err != nil {
			return nil, err
		}
		out = append(out, *toProductUnitResponse(u, price))
	}
	return out, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:           p.ID,
		CompanyID:    p.CompanyID,
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		BaseUnit:     p.BaseUnit,
		Price:        p.Price,
		MinimumStock: p.MinimumStock,
		TaxRate:      p.TaxRate,
		Barcode:      p.Barcode,
	}
}

func toProductUnitResponse(u *entity.ProductUnit, price decimal.Decimal) *dto.ProductUnitResponse {
	return &dto.ProductUnitResponse{
		ID:               u.ID,
		ProductID:        u.ProductID,
		Name:             u.Name,
		ConversionFactor: u.ConversionFactor,
		Price:            price,
		Barcode:          u.Barcode,
	}
}
