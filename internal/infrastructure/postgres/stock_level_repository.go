package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo implementación de StockLevelRepository sobre PostgreSQL
// (usable con pool o tx). Las mutaciones son sentencias únicas que mutan y
// devuelven before/after en el mismo statement, de modo que el snapshot del
// journal no puede ser contaminado por un tercer escritor concurrente.
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

// Get obtiene el nivel actual de un producto en una sucursal.
// Si la fila aún no existe devuelve cantidad 0 (la fila se materializa recién
// en la primera mutación).
func (r *StockLevelRepo) Get(ctx context.Context, companyID, productID, outletID string) (*entity.StockLevel, error) {
	query := `
		SELECT company_id, product_id, outlet_id, quantity, updated_at
		FROM stock_levels
		WHERE company_id = $1 AND product_id = $2 AND outlet_id = $3`
	var s entity.StockLevel
	err := r.q.QueryRow(ctx, query, companyID, productID, outletID).Scan(
		&s.CompanyID, &s.ProductID, &s.OutletID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockLevel{CompanyID: companyID, ProductID: productID, OutletID: outletID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock level: %w", err)
	}
	return &s, nil
}

// AddQuantity suma qty en una sola sentencia atómica. El upsert materializa
// la fila con 0 si no existe y el RETURNING entrega before y after de esa
// misma sentencia (quantity - qty, quantity).
func (r *StockLevelRepo) AddQuantity(ctx context.Context, companyID, productID, outletID string, qty decimal.Decimal) (before, after decimal.Decimal, err error) {
	query := `
		INSERT INTO stock_levels (company_id, product_id, outlet_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (company_id, product_id, outlet_id)
		DO UPDATE SET quantity = stock_levels.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING quantity - $4, quantity`
	err = r.q.QueryRow(ctx, query, companyID, productID, outletID, qty).Scan(&before, &after)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("add stock quantity: %w", err)
	}
	return before, after, nil
}

// SubtractQuantity resta qty solo si quantity >= qty (compare-and-decrement).
// El INSERT previo materializa la fila en 0 si falta, dentro de la misma tx;
// el UPDATE condicional es el único statement que decide y muta, y su
// RETURNING entrega before y after (quantity + qty, quantity). Si el WHERE no
// matchea no hubo decremento: domain.ErrInsufficientStock.
func (r *StockLevelRepo) SubtractQuantity(ctx context.Context, companyID, productID, outletID string, qty decimal.Decimal) (before, after decimal.Decimal, err error) {
	materialize := `
		INSERT INTO stock_levels (company_id, product_id, outlet_id, quantity, updated_at)
		VALUES ($1, $2, $3, 0, now())
		ON CONFLICT (company_id, product_id, outlet_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, materialize, companyID, productID, outletID); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("materialize stock level: %w", err)
	}

	query := `
		UPDATE stock_levels
		SET quantity = quantity - $4, updated_at = now()
		WHERE company_id = $1 AND product_id = $2 AND outlet_id = $3 AND quantity >= $4
		RETURNING quantity + $4, quantity`
	err = r.q.QueryRow(ctx, query, companyID, productID, outletID, qty).Scan(&before, &after)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, decimal.Zero, domain.ErrInsufficientStock
		}
		return decimal.Zero, decimal.Zero, fmt.Errorf("subtract stock quantity: %w", err)
	}
	return before, after, nil
}
