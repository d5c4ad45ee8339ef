package transfers

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/application/stock"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

// TransferTxRunner ejecuta una función dentro de una transacción que incluye
// los repos de stock y de traslados: el débito en origen y el crédito en
// destino de TODAS las líneas son una sola unidad atómica.
type TransferTxRunner interface {
	RunTransfer(ctx context.Context, fn func(
		stockRepo repository.StockLevelRepository,
		movRepo repository.StockMovementRepository,
		transferRepo repository.TransferRepository,
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
