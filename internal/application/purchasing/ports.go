package purchasing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/application/stock"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

// PurchaseTxRunner ejecuta una función dentro de una transacción que incluye
// los repos de stock y de compras: el edge de estado y sus efectos de stock
// son todo-o-nada.
type PurchaseTxRunner interface {
	RunPurchase(ctx context.Context, fn func(
		stockRepo repository.StockLevelRepository,
		movRepo repository.StockMovementRepository,
		purchaseRepo repository.PurchaseRepository,
	) error) error
}

// Ledger interfaz hacia el motor de stock (variantes dentro de la tx del caller).
type Ledger interface {
	IncreaseInTx(
		ctx context.Context,
		stockRepo repository.StockLevelRepository,
		movRepo repository.StockMovementRepository,
		in stock.AdjustInput,
	) (decimal.Decimal, error)
	DecreaseInTx(
		ctx context.Context,
		stockRepo repository.StockLevelRepository,
		movRepo repository.StockMovementRepository,
		in stock.AdjustInput,
	) (decimal.Decimal, error)
}
