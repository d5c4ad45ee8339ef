package transfers

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

// TransferUseCase mueve cantidades de una sucursal a otra como una unidad
// atómica: por cada línea, decrease en origen e increase en destino dentro de
// la MISMA transacción del traslado completo. Si el crédito en destino falla
// después del débito en origen, el rollback de la tx restaura el débito: no
// se pierde ni se crea cantidad.
type TransferUseCase struct {
	txRunner     TransferTxRunner
	ledger       Ledger
	productRepo  repository.ProductRepository
	outletRepo   repository.OutletRepository
	transferRepo repository.TransferRepository
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(
	txRunner TransferTxRunner,
	ledger Ledger,
	productRepo repository.ProductRepository,
	outletRepo repository.OutletRepository,
	transferRepo repository.TransferRepository,
) *TransferUseCase {
	return &TransferUseCase{
		txRunner:     txRunner,
		ledger:       ledger,
		productRepo:  productRepo,
		outletRepo:   outletRepo,
		transferRepo: transferRepo,
	}
}

// CreateTransfer crea el traslado en pending. El stock se mueve al aprobar.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, companyID, userID string, in dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	if in.FromOutletID == "" || in.ToOutletID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.FromOutletID == in.ToOutletID {
		return nil, domain.ErrInvalidInput
	}
	fromOutlet, _ := uc.outletRepo.GetByID(ctx, in.FromOutletID)
	toOutlet, _ := uc.outletRepo.GetByID(ctx, in.ToOutletID)
	if fromOutlet == nil || toOutlet == nil ||
		fromOutlet.CompanyID != companyID || toOutlet.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}

	transferID := uuid.New().String()
	lines := make([]*entity.TransferLine, 0, len(in.Items))
	for _, item := range in.Items {
		if item.ProductID == "" {
			return nil, domain.ErrInvalidInput
		}
		if !item.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidQuantity
		}
		product, err := uc.productRepo.GetByID(ctx, item.ProductID)
		if err != nil || product == nil {
			return nil, domain.ErrNotFound
		}
		if product.CompanyID != companyID {
			return nil, domain.ErrForbidden
		}
		lines = append(lines, &entity.TransferLine{
			ID:         uuid.New().String(),
			TransferID: transferID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
		})
	}

	now := time.Now()
	number := in.Number
	if number == "" {
		number = fmt.Sprintf("T-%d", now.Unix())
	}
	transfer := &entity.Transfer{
		ID:           transferID,
		CompanyID:    companyID,
		FromOutletID: in.FromOutletID,
		ToOutletID:   in.ToOutletID,
		Number:       number,
		Status:       entity.TransferStatusPending,
		StockMoved:   false,
		Note:         in.Note,
		CreatedAt:    now,
		UpdatedAt:    now,
		CreatedBy:    userID,
	}

	err := uc.txRunner.RunTransfer(ctx, func(
		_ repository.StockLevelRepository,
		_ repository.StockMovementRepository,
		transferRepo repository.TransferRepository,
	) error {
		if err := transferRepo.Create(ctx, transfer); err != nil {
			return err
		}
		for _, line := range lines {
			if err := transferRepo.CreateLine(ctx, line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toTransferResponse(transfer, lines), nil
}

// OnTransferApproved es el punto de entrada que el controlador de aprobación
// invoca. Solo el primer edge a approved mueve stock (marcador StockMoved);
// re-envíos son no-op. La cabecera se bloquea FOR UPDATE para serializar
// aprobaciones concurrentes del mismo traslado.
func (uc *TransferUseCase) OnTransferApproved(ctx context.Context, companyID, userID, transferID string) (*dto.TransferResponse, error) {
	var result *entity.Transfer
	var resultLines []*entity.TransferLine
	err := uc.txRunner.RunTransfer(ctx, func(
		stockRepo repository.StockLevelRepository,
		movRepo repository.StockMovementRepository,
		transferRepo repository.TransferRepository,
	) error {
		transfer, err := transferRepo.GetByIDForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		if transfer == nil {
			return domain.ErrNotFound
		}
		if transfer.CompanyID != companyID {
			return domain.ErrForbidden
		}
		lines, err := transferRepo.GetLinesByTransferID(ctx, transferID)
		if err != nil {
			return err
		}
		result, resultLines = transfer, lines

		if transfer.Status == entity.TransferStatusApproved || transfer.StockMoved {
			// Aprobación repetida: idempotente, nada que hacer.
			return nil
		}
		if transfer.Status == entity.TransferStatusCancelled {
			return domain.ErrInvalidStatusTransition
		}

		// Débito en origen y crédito en destino por línea; el traslado entero
		// comparte la transacción.
		for _, line := range lines {
			if _, err := uc.ledger.DecreaseInTx(ctx, stockRepo, movRepo, stock.AdjustInput{
				CompanyID: transfer.CompanyID,
				ProductID: line.ProductID,
				OutletID:  transfer.FromOutletID,
				Quantity:  line.Quantity,
				Kind:      entity.MovementKindTransfer,
				Reference: entity.TransferReference(transfer.ID),
				UserID:    userID,
			}); err != nil {
				return err
			}
			if _, err := uc.ledger.IncreaseInTx(ctx, stockRepo, movRepo, stock.AdjustInput{
				CompanyID: transfer.CompanyID,
				ProductID: line.ProductID,
				OutletID:  transfer.ToOutletID,
				Quantity:  line.Quantity,
				Kind:      entity.MovementKindTransfer,
				Reference: entity.TransferReference(transfer.ID),
				UserID:    userID,
			}); err != nil {
				return err
			}
		}
		transfer.Status = entity.TransferStatusApproved
		transfer.StockMoved = true
		transfer.UpdatedAt = time.Now()
		return transferRepo.UpdateStatus(ctx, transfer)
	})
	if err != nil {
		return nil, err
	}
	return toTransferResponse(result, resultLines), nil
}

// GetTransfer obtiene un traslado por ID con su detalle.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, companyID, id string) (*dto.TransferResponse, error) {
	transfer, err := uc.transferRepo.GetByID(ctx, id)
	if err != nil || transfer == nil {
		return nil, domain.ErrNotFound
	}
	if transfer.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	lines, err := uc.transferRepo.GetLinesByTransferID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTransferResponse(transfer, lines), nil
}

func toTransferResponse(t *entity.Transfer, lines []*entity.TransferLine) *dto.TransferResponse {
	resp := &dto.TransferResponse{
		ID:           t.ID,
		CompanyID:    t.CompanyID,
		FromOutletID: t.FromOutletID,
		ToOutletID:   t.ToOutletID,
		Number:       t.Number,
		Status:       t.Status,
		StockMoved:   t.StockMoved,
		Date:         t.CreatedAt.Format("2006-01-02"),
		Lines:        make([]dto.TransferLineResponse, 0, len(lines)),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.TransferLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
		})
	}
	return resp
}
