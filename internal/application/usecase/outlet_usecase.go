package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tu-usuario/pos-pro/internal/application/dto"
	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

// OutletUseCase casos de uso CRUD para sucursales.
type OutletUseCase struct {
	repo repository.OutletRepository
}

// NewOutletUseCase construye el caso de uso.
func NewOutletUseCase(repo repository.OutletRepository) *OutletUseCase {
	return &OutletUseCase{repo: repo}
}

// Create crea una sucursal para la empresa.
func (uc *OutletUseCase) Create(ctx context.Context, companyID string, in dto.CreateOutletRequest) (*dto.OutletResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	outlet := &entity.Outlet{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      in.Name,
		Address:   in.Address,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, outlet); err != nil {
		return nil, err
	}
	return toOutletResponse(outlet), nil
}

// GetByID obtiene una sucursal por ID (validando empresa).
func (uc *OutletUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.OutletResponse, error) {
	outlet, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if outlet == nil {
		return nil, domain.ErrNotFound
	}
	if outlet.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return toOutletResponse(outlet), nil
}

// List lista las sucursales de la empresa.
func (uc *OutletUseCase) List(ctx context.Context, companyID string) ([]dto.OutletResponse, error) {
	list, err := uc.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OutletResponse, 0, len(list))
	for _, o := range list {
		out = append(out, *toOutletResponse(o))
	}
	return out, nil
}

func toOutletResponse(o *entity.Outlet) *dto.OutletResponse {
	return &dto.OutletResponse{
		ID:        o.ID,
		CompanyID: o.CompanyID,
		Name:      o.Name,
		Address:   o.Address,
		Phone:     o.Phone,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
