package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

const purchaseColumns = `id, company_id, outlet_id, supplier_name, number, status, stock_applied, grand_total, note, created_at, updated_at, created_by`

// PurchaseRepo implementación del puerto PurchaseRepository sobre PostgreSQL.
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador de persistencia para compras.
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

// Create persiste la cabecera de una compra (estado pending, sin efecto en stock).
func (r *PurchaseRepo) Create(ctx context.Context, purchase *entity.Purchase) error {
	query := `
		INSERT INTO purchases (` + purchaseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	var createdBy *string
	if purchase.CreatedBy != "" {
		createdBy = &purchase.CreatedBy
	}
	_, err := r.q.Exec(ctx, query,
		purchase.ID, purchase.CompanyID, purchase.OutletID, purchase.SupplierName,
		purchase.Number, purchase.Status, purchase.StockApplied, purchase.GrandTotal,
		purchase.Note, purchase.CreatedAt, purchase.UpdatedAt, createdBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// CreateLine persiste una línea de compra.
func (r *PurchaseRepo) CreateLine(ctx context.Context, line *entity.PurchaseLine) error {
	query := `
		INSERT INTO purchase_lines (id, purchase_id, product_id, quantity, unit_cost, line_total)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		line.ID, line.PurchaseID, line.ProductID, line.Quantity, line.UnitCost, line.LineTotal,
	)
	if err != nil {
		return fmt.Errorf("insert purchase line: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera de una compra.
func (r *PurchaseRepo) GetByID(ctx context.Context, id string) (*entity.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetByIDForUpdate obtiene la cabecera bloqueándola (FOR UPDATE) para
// serializar transiciones de estado concurrentes sobre la misma compra.
// Debe llamarse dentro de una transacción.
func (r *PurchaseRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetLinesByPurchaseID lista las líneas de una compra.
func (r *PurchaseRepo) GetLinesByPurchaseID(ctx context.Context, purchaseID string) ([]*entity.PurchaseLine, error) {
	query := `
		SELECT id, purchase_id, product_id, quantity, unit_cost, line_total
		FROM purchase_lines WHERE purchase_id = $1 ORDER BY id ASC`
	rows, err := r.q.Query(ctx, query, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("list purchase lines: %w", err)
	}
	defer rows.Close()

	var lines []*entity.PurchaseLine
	for rows.Next() {
		var l entity.PurchaseLine
		if err := rows.Scan(&l.ID, &l.PurchaseID, &l.ProductID, &l.Quantity, &l.UnitCost, &l.LineTotal); err != nil {
			return nil, fmt.Errorf("scan purchase line: %w", err)
		}
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}

// UpdateStatus persiste status y stock_applied en una sola sentencia, de modo
// que el nuevo estado y su marcador de aplicación queden juntos o no queden.
func (r *PurchaseRepo) UpdateStatus(ctx context.Context, purchase *entity.Purchase) error {
	query := `
		UPDATE purchases
		SET status = $2, stock_applied = $3, updated_at = $4
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, purchase.ID, purchase.Status, purchase.StockApplied, purchase.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update purchase status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PurchaseRepo) scanOne(row pgx.Row) (*entity.Purchase, error) {
	var p entity.Purchase
	var createdBy *string
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.OutletID, &p.SupplierName, &p.Number, &p.Status,
		&p.StockApplied, &p.GrandTotal, &p.Note, &p.CreatedAt, &p.UpdatedAt, &createdBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	if createdBy != nil {
		p.CreatedBy = *createdBy
	}
	return &p, nil
}
