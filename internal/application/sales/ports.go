package sales

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/application/stock"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

// SaleTxRunner ejecuta una función dentro de una transacción que incluye los
// repos de stock y de ventas: el descuento de todas las líneas y la
// persistencia de la venta son todo-o-nada.
type SaleTxRunner interface {
	RunSale(ctx context.Context, fn func(
		stockRepo repository.StockLevelRepository,
		movRepo repository.StockMovementRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// Ledger interfaz hacia el motor de stock. DecreaseInTx descuenta usando los
// repositorios del caller (misma transacción); si retorna
// domain.ErrInsufficientStock el caller deja que la tx haga rollback.
type Ledger interface {
	DecreaseInTx(
		ctx context.Context,
		stockRepo repository.StockLevelRepository,
		movRepo repository.StockMovementRepository,
		in stock.AdjustInput,
	) (decimal.Decimal, error)
}
