package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tu-usuario/pos-pro/internal/application/purchasing"
	"github.com/tu-usuario/pos-pro/internal/application/sales"
	"github.com/tu-usuario/pos-pro/internal/application/stock"
	"github.com/tu-usuario/pos-pro/internal/application/transfers"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

// Compile checks: TxRunner implementa los runners de cada coordinador.
var _ stock.TxRunner = (*TxRunner)(nil)
var _ sales.SaleTxRunner = (*TxRunner)(nil)
var _ purchasing.PurchaseTxRunner = (*TxRunner)(nil)
var _ transfers.TransferTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL, pasando
// repositorios atados a esa tx. Cada Run* es la frontera todo-o-nada de una
// operación lógica: Commit si fn retorna nil, Rollback si retorna error.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción con los repos del motor de stock (ajustes sueltos).
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockLevelRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewStockLevelRepository(q), NewStockMovementRepository(q))
	})
}

// RunSale inicia una transacción con repos de stock y ventas (liquidación).
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	stockRepo repository.StockLevelRepository,
	movRepo repository.StockMovementRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewStockLevelRepository(q), NewStockMovementRepository(q), NewSaleRepository(q))
	})
}

// RunPurchase inicia una transacción con repos de stock y compras (recepción).
func (r *TxRunner) RunPurchase(ctx context.Context, fn func(
	stockRepo repository.StockLevelRepository,
	movRepo repository.StockMovementRepository,
	purchaseRepo repository.PurchaseRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewStockLevelRepository(q), NewStockMovementRepository(q), NewPurchaseRepository(q))
	})
}

// RunTransfer inicia una transacción con repos de stock y traslados.
func (r *TxRunner) RunTransfer(ctx context.Context, fn func(
	stockRepo repository.StockLevelRepository,
	movRepo repository.StockMovementRepository,
	transferRepo repository.TransferRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewStockLevelRepository(q), NewStockMovementRepository(q), NewTransferRepository(q))
	})
}

// inTx abre la tx, ejecuta fn y hace Commit o Rollback.
func (r *TxRunner) inTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
