package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

// LedgerService es la única autoridad para leer y mutar la cantidad en mano.
// Cada mutación es una primitiva atómica del storage (suma atómica o
// compare-and-decrement condicional de una sola sentencia) más exactamente un
// asiento en el journal con el before/after de esa misma sentencia. Nunca se
// hace leer-calcular-escribir contra quantity en memoria de la aplicación.
type LedgerService struct {
	txRunner    TxRunner
	stockRepo   repository.StockLevelRepository
	movRepo     repository.StockMovementRepository
	productRepo repository.ProductRepository
	outletRepo  repository.OutletRepository
}

// NewLedgerService construye el servicio. stockRepo y movRepo van atados al
// pool (lecturas); las mutaciones corren dentro de txRunner.
func NewLedgerService(
	txRunner TxRunner,
	stockRepo repository.StockLevelRepository,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	outletRepo repository.OutletRepository,
) *LedgerService {
	return &LedgerService{
		txRunner:    txRunner,
		stockRepo:   stockRepo,
		movRepo:     movRepo,
		productRepo: productRepo,
		outletRepo:  outletRepo,
	}
}

// AdjustInput entrada para un ajuste de stock (entrada o salida).
// Quantity siempre positiva; el signo lo determina la operación.
type AdjustInput struct {
	CompanyID string
	ProductID string
	OutletID  string
	Quantity  decimal.Decimal
	Kind      string // ver entity.MovementKind*
	Reference entity.MovementReference
	UserID    string
	Note      string
}

// validate rechaza el ajuste antes de tocar el store.
func (in *AdjustInput) validate() error {
	if in.CompanyID == "" || in.ProductID == "" || in.OutletID == "" {
		return domain.ErrInvalidInput
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidQuantity
	}
	switch in.Kind {
	case entity.MovementKindIn, entity.MovementKindOut,
		entity.MovementKindAdjustment, entity.MovementKindTransfer:
	default:
		return domain.ErrInvalidInput
	}
	if in.Reference.IsZero() {
		return domain.ErrInvalidInput
	}
	// Cantidades con 3 decimales fijos (NUMERIC(15,3) en DB).
	in.Quantity = in.Quantity.Round(3)
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidQuantity
	}
	return nil
}

// Increase suma Quantity al nivel de stock en su propia transacción y
// devuelve la cantidad resultante. La fila se materializa con 0 si no existe.
func (s *LedgerService) Increase(ctx context.Context, in AdjustInput) (decimal.Decimal, error) {
	if err := s.validateAgainstCatalog(ctx, &in); err != nil {
		return decimal.Zero, err
	}
	var after decimal.Decimal
	err := s.txRunner.Run(ctx, func(
		stockRepo repository.StockLevelRepository,
		movRepo repository.StockMovementRepository,
	) error {
		var err error
		after, err = s.IncreaseInTx(ctx, stockRepo, movRepo, in)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return after, nil
}

// Decrease resta Quantity en su propia transacción y devuelve la cantidad
// resultante. Si el stock no alcanza retorna domain.ErrInsufficientStock y no
// queda ningún efecto parcial.
func (s *LedgerService) Decrease(ctx context.Context, in AdjustInput) (decimal.Decimal, error) {
	if err := s.validateAgainstCatalog(ctx, &in); err != nil {
		return decimal.Zero, err
	}
	var after decimal.Decimal
	err := s.txRunner.Run(ctx, func(
		stockRepo repository.StockLevelRepository,
		movRepo repository.StockMovementRepository,
	) error {
		var err error
		after, err = s.DecreaseInTx(ctx, stockRepo, movRepo, in)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return after, nil
}

// validateAgainstCatalog valida entrada y que producto y sucursal existan y
// pertenezcan a la empresa (fuera de la tx, solo lectura).
func (s *LedgerService) validateAgainstCatalog(ctx context.Context, in *AdjustInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	product, err := s.productRepo.GetByID(ctx, in.ProductID)
	if err != nil || product == nil {
		return domain.ErrNotFound
	}
	if product.CompanyID != in.CompanyID {
		return domain.ErrForbidden
	}
	outlet, err := s.outletRepo.GetByID(ctx, in.OutletID)
	if err != nil || outlet == nil {
		return domain.ErrNotFound
	}
	if outlet.CompanyID != in.CompanyID {
		return domain.ErrForbidden
	}
	return nil
}

// IncreaseInTx ejecuta la suma atómica usando los repositorios del caller
// (misma transacción). Lo usan los coordinadores de compra y traslado para
// que sus efectos multi-línea sean todo-o-nada.
func (s *LedgerService) IncreaseInTx(
	ctx context.Context,
	stockRepo repository.StockLevelRepository,
	movRepo repository.StockMovementRepository,
	in AdjustInput,
) (decimal.Decimal, error) {
	if err := in.validate(); err != nil {
		return decimal.Zero, err
	}
	before, after, err := stockRepo.AddQuantity(ctx, in.CompanyID, in.ProductID, in.OutletID, in.Quantity)
	if err != nil {
		return decimal.Zero, err
	}
	if err := s.journal(ctx, movRepo, in, in.Quantity, before, after); err != nil {
		return decimal.Zero, err
	}
	return after, nil
}

// DecreaseInTx ejecuta el compare-and-decrement condicional usando los
// repositorios del caller (misma transacción). Si retorna
// domain.ErrInsufficientStock el caller debe dejar que la tx haga rollback.
func (s *LedgerService) DecreaseInTx(
	ctx context.Context,
	stockRepo repository.StockLevelRepository,
	movRepo repository.StockMovementRepository,
	in AdjustInput,
) (decimal.Decimal, error) {
	if err := in.validate(); err != nil {
		return decimal.Zero, err
	}
	before, after, err := stockRepo.SubtractQuantity(ctx, in.CompanyID, in.ProductID, in.OutletID, in.Quantity)
	if err != nil {
		return decimal.Zero, err
	}
	if err := s.journal(ctx, movRepo, in, in.Quantity.Neg(), before, after); err != nil {
		return decimal.Zero, err
	}
	return after, nil
}

// journal guarda el asiento inmutable con el snapshot before/after que entregó
// la primitiva atómica.
func (s *LedgerService) journal(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	in AdjustInput,
	delta, before, after decimal.Decimal,
) error {
	mov := &entity.StockMovement{
		ID:             uuid.New().String(),
		CompanyID:      in.CompanyID,
		ProductID:      in.ProductID,
		OutletID:       in.OutletID,
		Kind:           in.Kind,
		Delta:          delta,
		QuantityBefore: before,
		QuantityAfter:  after,
		Reference:      in.Reference,
		Note:           in.Note,
		CreatedAt:      time.Now(),
		CreatedBy:      in.UserID,
	}
	return movRepo.Create(ctx, mov)
}

// CurrentQuantity devuelve la cantidad en mano actual (0 si la fila no existe).
func (s *LedgerService) CurrentQuantity(ctx context.Context, companyID, productID, outletID string) (decimal.Decimal, error) {
	if companyID == "" || productID == "" || outletID == "" {
		return decimal.Zero, domain.ErrInvalidInput
	}
	level, err := s.stockRepo.Get(ctx, companyID, productID, outletID)
	if err != nil {
		return decimal.Zero, err
	}
	return level.Quantity, nil
}

// MovementHistory devuelve el historial ordenado de movimientos de un
// producto en una sucursal (solo lectura; lo consumen reportes/exportación).
func (s *LedgerService) MovementHistory(
	ctx context.Context,
	companyID, productID, outletID string,
	from, to *time.Time,
	limit, offset int,
) ([]*entity.StockMovement, error) {
	if companyID == "" || productID == "" || outletID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.movRepo.ListByProductOutlet(ctx, companyID, productID, outletID, from, to, limit, offset)
}
