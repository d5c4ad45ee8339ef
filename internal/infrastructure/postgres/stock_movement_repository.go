package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del journal sobre PostgreSQL (usable con
// pool o tx). Solo-append: no hay UPDATE ni DELETE sobre stock_movements.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, company_id, product_id, outlet_id, kind, delta, quantity_before, quantity_after, reference_type, reference_id, note, created_at, created_by`

// Create persiste un asiento del journal.
func (r *StockMovementRepo) Create(ctx context.Context, movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	createdBy := (*string)(nil)
	if movement.CreatedBy != "" {
		createdBy = &movement.CreatedBy
	}
	refID := (*string)(nil)
	if movement.Reference.ReferenceID() != "" {
		id := movement.Reference.ReferenceID()
		refID = &id
	}
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.CompanyID, movement.ProductID, movement.OutletID,
		movement.Kind, movement.Delta, movement.QuantityBefore, movement.QuantityAfter,
		movement.Reference.ReferenceType(), refID, movement.Note,
		movement.CreatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// ListByProductOutlet lista el historial de un producto en una sucursal con
// rango de fechas opcional, en orden de creación ascendente.
func (r *StockMovementRepo) ListByProductOutlet(ctx context.Context, companyID, productID, outletID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE company_id = $1 AND product_id = $2 AND outlet_id = $3`
	args := []any{companyID, productID, outletID}
	pos := 4
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at ASC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// ListByReference lista los movimientos causados por un documento.
func (r *StockMovementRepo) ListByReference(ctx context.Context, companyID string, ref entity.MovementReference) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE company_id = $1 AND reference_type = $2 AND reference_id = $3
		ORDER BY created_at ASC`
	rows, err := r.q.Query(ctx, query, companyID, ref.ReferenceType(), ref.ReferenceID())
	if err != nil {
		return nil, fmt.Errorf("list movements by reference: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// scanMovements materializa filas del journal reconstruyendo la referencia
// desde reference_type/reference_id.
func scanMovements(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var refType string
		var refID, createdBy *string
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.ProductID, &m.OutletID, &m.Kind,
			&m.Delta, &m.QuantityBefore, &m.QuantityAfter,
			&refType, &refID, &m.Note, &m.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		id := ""
		if refID != nil {
			id = *refID
		}
		ref, err := entity.ParseReference(refType, id)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.Reference = ref
		if createdBy != nil {
			m.CreatedBy = *createdBy
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
