package sales

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
	"github.com/tu-usuario/pos-pro/internal/domain/units"
)

// SettleSaleUseCase liquida una venta completada: traduce sus líneas a
// descuentos de stock con semántica todo-o-nada y persiste cabecera y líneas
// en la misma transacción. Si alguna línea falla con ErrInsufficientStock se
// revierte todo: la venta nunca deja efectos parciales en el stock.
type SettleSaleUseCase struct {
	txRunner        SaleTxRunner
	ledger          Ledger
	productRepo     repository.ProductRepository
	productUnitRepo repository.ProductUnitRepository
	outletRepo      repository.OutletRepository
	saleRepo        repository.SaleRepository
}

// NewSettleSaleUseCase construye el caso de uso.
func NewSettleSaleUseCase(
	txRunner SaleTxRunner,
	ledger Ledger,
	productRepo repository.ProductRepository,
	productUnitRepo repository.ProductUnitRepository,
	outletRepo repository.OutletRepository,
	saleRepo repository.SaleRepository,
) *SettleSaleUseCase {
	return &SettleSaleUseCase{
		txRunner:        txRunner,
		ledger:          ledger,
		productRepo:     productRepo,
		productUnitRepo: productUnitRepo,
		outletRepo:      outletRepo,
		saleRepo:        saleRepo,
	}
}

// resolvedLine línea validada con el factor de conversión y precio resueltos.
type resolvedLine struct {
	item         dto.SaleItemRequest
	factor       decimal.Decimal
	baseQuantity decimal.Decimal
	unitPrice    decimal.Decimal
	lineTotal    decimal.Decimal
}

// Settle valida la venta, resuelve unidades y precios, calcula totales y
// ejecuta los descuentos + persistencia dentro de una sola transacción.
// Líneas repetidas del mismo producto se descuentan de forma independiente
// (no se consolidan; cada línea puede llevar descuento o presentación distinta).
func (uc *SettleSaleUseCase) Settle(ctx context.Context, companyID, userID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if in.OutletID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.Discount.LessThan(decimal.Zero) || in.TaxRate.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	// Validar sucursal
	outlet, err := uc.outletRepo.GetByID(ctx, in.OutletID)
	if err != nil || outlet == nil {
		return nil, domain.ErrNotFound
	}
	if outlet.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	// Validar productos, resolver unidad elegida y precio (fuera de la tx, solo lectura)
	resolved := make([]resolvedLine, 0, len(in.Items))
	for _, item := range in.Items {
		if item.ProductID == "" {
			return nil, domain.ErrInvalidInput
		}
		if !item.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidQuantity
		}
		if item.UnitPrice.LessThan(decimal.Zero) || item.Discount.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(ctx, item.ProductID)
		if err != nil || product == nil {
			return nil, domain.ErrNotFound
		}
		if product.CompanyID != companyID {
			return nil, domain.ErrForbidden
		}

		factor := decimal.NewFromInt(1)
		catalogPrice := product.Price
		if item.ProductUnitID != "" {
			unit, err := uc.productUnitRepo.GetByID(ctx, item.ProductUnitID)
			if err != nil || unit == nil {
				return nil, domain.ErrNotFound
			}
			if unit.ProductID != product.ID || unit.CompanyID != companyID {
				return nil, domain.ErrForbidden
			}
			factor = unit.ConversionFactor
			catalogPrice, err = units.UnitPrice(product.Price, unit.ConversionFactor, unit.PriceOverride)
			if err != nil {
				return nil, err
			}
		}
		baseQty, err := units.ToBase(item.Quantity, factor)
		if err != nil {
			return nil, err
		}

		unitPrice := item.UnitPrice
		if unitPrice.IsZero() {
			unitPrice = catalogPrice
		}
		lineTotal := item.Quantity.Mul(unitPrice).Sub(item.Discount)
		if lineTotal.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		resolved = append(resolved, resolvedLine{
			item:         item,
			factor:       factor,
			baseQuantity: baseQty,
			unitPrice:    unitPrice,
			lineTotal:    lineTotal,
		})
	}

	// Totales: subtotal = Σ(cantidad*precio - descuento de línea);
	// impuesto sobre (subtotal - descuento de venta); total = base + impuesto.
	var subtotal decimal.Decimal
	for _, line := range resolved {
		subtotal = subtotal.Add(line.lineTotal)
	}
	taxable := subtotal.Sub(in.Discount)
	if taxable.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	taxAmount := taxable.Mul(in.TaxRate).Round(3)
	grandTotal := taxable.Add(taxAmount)
	if in.Tendered.LessThan(grandTotal) {
		return nil, domain.ErrInsufficientPayment
	}
	change := in.Tendered.Sub(grandTotal)

	now := time.Now()
	saleID := uuid.New().String() // referencia Sale(id) en el journal
	number := in.Number
	if number == "" {
		number = fmt.Sprintf("V-%d", now.Unix())
	}

	sale := &entity.Sale{
		ID:         saleID,
		CompanyID:  companyID,
		OutletID:   in.OutletID,
		Number:     number,
		Subtotal:   subtotal,
		Discount:   in.Discount,
		TaxRate:    in.TaxRate,
		TaxAmount:  taxAmount,
		GrandTotal: grandTotal,
		Tendered:   in.Tendered,
		Change:     change,
		Note:       in.Note,
		CreatedAt:  now,
		CreatedBy:  userID,
	}
	lines := make([]*entity.SaleLine, 0, len(resolved))
	for _, line := range resolved {
		lines = append(lines, &entity.SaleLine{
			ID:               uuid.New().String(),
			SaleID:           saleID,
			ProductID:        line.item.ProductID,
			ProductUnitID:    line.item.ProductUnitID,
			Quantity:         line.item.Quantity,
			ConversionFactor: line.factor,
			BaseQuantity:     line.baseQuantity,
			UnitPrice:        line.unitPrice,
			Discount:         line.item.Discount,
			LineTotal:        line.lineTotal,
		})
	}

	// Transacción: descuentos por línea + cabecera + líneas. Cualquier error
	// (ej. ErrInsufficientStock) hace rollback de todo.
	err = uc.txRunner.RunSale(ctx, func(
		stockRepo repository.StockLevelRepository,
		movRepo repository.StockMovementRepository,
		saleRepo repository.SaleRepository,
	) error {
		for _, line := range resolved {
			if _, err := uc.ledger.DecreaseInTx(ctx, stockRepo, movRepo, stock.AdjustInput{
				CompanyID: companyID,
				ProductID: line.item.ProductID,
				OutletID:  in.OutletID,
				Quantity:  line.baseQuantity,
				Kind:      entity.MovementKindOut,
				Reference: entity.SaleReference(saleID),
				UserID:    userID,
			}); err != nil {
				return err
			}
		}
		if err := saleRepo.Create(ctx, sale); err != nil {
			return err
		}
		for _, line := range lines {
			if err := saleRepo.CreateLine(ctx, line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toSaleResponse(sale, lines), nil
}

// GetSale obtiene una venta por ID con su detalle completo.
func (uc *SettleSaleUseCase) GetSale(ctx context.Context, companyID, id string) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil || sale == nil {
		return nil, domain.ErrNotFound
	}
	if sale.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	lines, err := uc.saleRepo.GetLinesBySaleID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale, lines), nil
}

func toSaleResponse(sale *entity.Sale, lines []*entity.SaleLine) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:         sale.ID,
		CompanyID:  sale.CompanyID,
		OutletID:   sale.OutletID,
		Number:     sale.Number,
		Subtotal:   sale.Subtotal,
		Discount:   sale.Discount,
		TaxRate:    sale.TaxRate,
		TaxAmount:  sale.TaxAmount,
		GrandTotal: sale.GrandTotal,
		Tendered:   sale.Tendered,
		Change:     sale.Change,
		Date:       sale.CreatedAt.Format("2006-01-02"),
		Lines:      make([]dto.SaleLineResponse, 0, len(lines)),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.SaleLineResponse{
			ID:               l.ID,
			ProductID:        l.ProductID,
			ProductUnitID:    l.ProductUnitID,
			Quantity:         l.Quantity,
			ConversionFactor: l.ConversionFactor,
			BaseQuantity:     l.BaseQuantity,
			UnitPrice:        l.UnitPrice,
			Discount:         l.Discount,
			LineTotal:        l.LineTotal,
		})
	}
	return resp
}
