package purchasing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/application/dto"
	"github.com/tu-usuario/pos-pro/internal/application/stock"
	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

// ReceivingUseCase acopla los efectos de stock a las transiciones de estado
// de la compra, no a su existencia. Máquina: pending -> paid -> cancelled;
// paid -> paid es no-op. El marcador persistido StockApplied garantiza que el
// efecto se aplica a lo sumo una vez por edge a paid y se revierte a lo sumo
// una vez por edge paid -> cancelled.
type ReceivingUseCase struct {
	txRunner     PurchaseTxRunner
	ledger       Ledger
	productRepo  repository.ProductRepository
	outletRepo   repository.OutletRepository
	purchaseRepo repository.PurchaseRepository
}

// NewReceivingUseCase construye el caso de uso.
func NewReceivingUseCase(
	txRunner PurchaseTxRunner,
	ledger Ledger,
	productRepo repository.ProductRepository,
	outletRepo repository.OutletRepository,
	purchaseRepo repository.PurchaseRepository,
) *ReceivingUseCase {
	return &ReceivingUseCase{
		txRunner:     txRunner,
		ledger:       ledger,
		productRepo:  productRepo,
		outletRepo:   outletRepo,
		purchaseRepo: purchaseRepo,
	}
}

// CreatePurchase crea la compra en pending. Sin efecto en stock.
func (uc *ReceivingUseCase) CreatePurchase(ctx context.Context, companyID, userID string, in dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if in.OutletID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	outlet, err := uc.outletRepo.GetByID(ctx, in.OutletID)
	if err != nil || outlet == nil {
		return nil, domain.ErrNotFound
	}
	if outlet.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	var grandTotal decimal.Decimal
	lines := make([]*entity.PurchaseLine, 0, len(in.Items))
	purchaseID := uuid.New().String()
	for _, item := range in.Items {
		if item.ProductID == "" {
			return nil, domain.ErrInvalidInput
		}
		if !item.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidQuantity
		}
		if item.UnitCost.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(ctx, item.ProductID)
		if err != nil || product == nil {
			return nil, domain.ErrNotFound
		}
		if product.CompanyID != companyID {
			return nil, domain.ErrForbidden
		}
		lineTotal := item.Quantity.Mul(item.UnitCost)
		grandTotal = grandTotal.Add(lineTotal)
		lines = append(lines, &entity.PurchaseLine{
			ID:         uuid.New().String(),
			PurchaseID: purchaseID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitCost:   item.UnitCost,
			LineTotal:  lineTotal,
		})
	}

	now := time.Now()
	number := in.Number
	if number == "" {
		number = fmt.Sprintf("C-%d", now.Unix())
	}
	purchase := &entity.Purchase{
		ID:           purchaseID,
		CompanyID:    companyID,
		OutletID:     in.OutletID,
		SupplierName: in.SupplierName,
		Number:       number,
		Status:       entity.PurchaseStatusPending,
		StockApplied: false,
		GrandTotal:   grandTotal,
		Note:         in.Note,
		CreatedAt:    now,
		UpdatedAt:    now,
		CreatedBy:    userID,
	}

	err = uc.txRunner.RunPurchase(ctx, func(
		_ repository.StockLevelRepository,
		_ repository.StockMovementRepository,
		purchaseRepo repository.PurchaseRepository,
	) error {
		if err := purchaseRepo.Create(ctx, purchase); err != nil {
			return err
		}
		for _, line := range lines {
			if err := purchaseRepo.CreateLine(ctx, line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(purchase, lines), nil
}

// OnPurchaseStatusChanged es el punto de entrada que el controlador externo
// invoca al cambiar el estado de una compra. Todo corre en una transacción:
// la cabecera se bloquea (FOR UPDATE) para serializar edges concurrentes y
// los efectos de stock van por las primitivas atómicas del ledger.
//
// Reglas:
//   - edge a paid con stock sin aplicar: increase por línea (kind=in).
//   - paid repetido (o cualquier estado ya aplicado re-enviado): no-op.
//   - paid -> cancelled: decrease por línea (kind=adjustment) revirtiendo lo
//     aplicado; si el stock ya se vendió (ErrInsufficientStock) se bloquea la
//     cancelación y nada cambia.
//   - pending -> cancelled: sin efecto de stock.
func (uc *ReceivingUseCase) OnPurchaseStatusChanged(ctx context.Context, companyID, userID, purchaseID, newStatus string) (*dto.PurchaseResponse, error) {
	switch newStatus {
	case entity.PurchaseStatusPending, entity.PurchaseStatusPaid, entity.PurchaseStatusCancelled:
	default:
		return nil, domain.ErrInvalidInput
	}

	var result *entity.Purchase
	var resultLines []*entity.PurchaseLine
	err := uc.txRunner.RunPurchase(ctx, func(
		stockRepo repository.StockLevelRepository,
		movRepo repository.StockMovementRepository,
		purchaseRepo repository.PurchaseRepository,
	) error {
		purchase, err := purchaseRepo.GetByIDForUpdate(ctx, purchaseID)
		if err != nil {
			return err
		}
		if purchase == nil {
			return domain.ErrNotFound
		}
		if purchase.CompanyID != companyID {
			return domain.ErrForbidden
		}
		lines, err := purchaseRepo.GetLinesByPurchaseID(ctx, purchaseID)
		if err != nil {
			return err
		}

		if err := uc.applyTransition(ctx, stockRepo, movRepo, purchase, lines, userID, newStatus); err != nil {
			if err == domain.ErrDuplicateStatusTransition {
				// Re-envío del mismo estado: idempotente, nada que hacer.
				result, resultLines = purchase, lines
				return nil
			}
			return err
		}
		purchase.Status = newStatus
		purchase.UpdatedAt = time.Now()
		if err := purchaseRepo.UpdateStatus(ctx, purchase); err != nil {
			return err
		}
		result, resultLines = purchase, lines
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(result, resultLines), nil
}

// applyTransition ejecuta el efecto de stock del edge (o lo marca como no-op).
func (uc *ReceivingUseCase) applyTransition(
	ctx context.Context,
	stockRepo repository.StockLevelRepository,
	movRepo repository.StockMovementRepository,
	purchase *entity.Purchase,
	lines []*entity.PurchaseLine,
	userID, newStatus string,
) error {
	switch newStatus {
	case entity.PurchaseStatusPaid:
		if purchase.Status == entity.PurchaseStatusPaid || purchase.StockApplied {
			return domain.ErrDuplicateStatusTransition
		}
		for _, line := range lines {
			if _, err := uc.ledger.IncreaseInTx(ctx, stockRepo, movRepo, stock.AdjustInput{
				CompanyID: purchase.CompanyID,
				ProductID: line.ProductID,
				OutletID:  purchase.OutletID,
				Quantity:  line.Quantity,
				Kind:      entity.MovementKindIn,
				Reference: entity.PurchaseReference(purchase.ID),
				UserID:    userID,
			}); err != nil {
				return err
			}
		}
		purchase.StockApplied = true
		return nil

	case entity.PurchaseStatusCancelled:
		if purchase.Status == entity.PurchaseStatusCancelled {
			return domain.ErrDuplicateStatusTransition
		}
		if purchase.Status == entity.PurchaseStatusPaid && purchase.StockApplied {
			// Reversa exacta de lo aplicado. Si ya se vendió, el decrease
			// condicional falla y la tx entera hace rollback.
			for _, line := range lines {
				if _, err := uc.ledger.DecreaseInTx(ctx, stockRepo, movRepo, stock.AdjustInput{
					CompanyID: purchase.CompanyID,
					ProductID: line.ProductID,
					OutletID:  purchase.OutletID,
					Quantity:  line.Quantity,
					Kind:      entity.MovementKindAdjustment,
					Reference: entity.PurchaseReference(purchase.ID),
					UserID:    userID,
					Note:      "reverso por cancelación de compra",
				}); err != nil {
					return err
				}
			}
			purchase.StockApplied = false
		}
		return nil

	case entity.PurchaseStatusPending:
		if purchase.Status == entity.PurchaseStatusPending {
			return domain.ErrDuplicateStatusTransition
		}
		// Volver a pending desde paid/cancelled no está modelado.
		return domain.ErrInvalidStatusTransition
	}
	return domain.ErrInvalidInput
}

// GetPurchase obtiene una compra por ID con su detalle.
func (uc *ReceivingUseCase) GetPurchase(ctx context.Context, companyID, id string) (*dto.PurchaseResponse, error) {
	purchase, err := uc.purchaseRepo.GetByID(ctx, id)
	if err != nil || purchase == nil {
		return nil, domain.ErrNotFound
	}
	if purchase.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	lines, err := uc.purchaseRepo.GetLinesByPurchaseID(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(purchase, lines), nil
}

func (uc *ReceivingUseCase) toResponse(p *entity.Purchase, lines []*entity.PurchaseLine) *dto.PurchaseResponse {
	resp := &dto.PurchaseResponse{
		ID:           p.ID,
		CompanyID:    p.CompanyID,
		OutletID:     p.OutletID,
		SupplierName: p.SupplierName,
		Number:       p.Number,
		Status:       p.Status,
		StockApplied: p.StockApplied,
		GrandTotal:   p.GrandTotal,
		Date:         p.CreatedAt.Format("2006-01-02"),
		Lines:        make([]dto.PurchaseLineResponse, 0, len(lines)),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.PurchaseLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitCost:  l.UnitCost,
			LineTotal: l.LineTotal,
		})
	}
	return resp
}
