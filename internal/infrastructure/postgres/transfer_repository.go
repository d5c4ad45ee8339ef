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

var _ repository.TransferRepository = (*TransferRepo)(nil)

const transferColumns = `id, company_id, from_outlet_id, to_outlet_id, number, status, stock_moved, note, created_at, updated_at, created_by`

// TransferRepo implementación del puerto TransferRepository sobre PostgreSQL.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador de persistencia para traslados.
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create persiste la cabecera de un traslado (pending, sin movimiento de stock).
func (r *TransferRepo) Create(ctx context.Context, transfer *entity.Transfer) error {
	query := `
		INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	var createdBy *string
	if transfer.CreatedBy != "" {
		createdBy = &transfer.CreatedBy
	}
	_, err := r.q.Exec(ctx, query,
		transfer.ID, transfer.CompanyID, transfer.FromOutletID, transfer.ToOutletID,
		transfer.Number, transfer.Status, transfer.StockMoved, transfer.Note,
		transfer.CreatedAt, transfer.UpdatedAt, createdBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

// CreateLine persiste una línea de traslado.
func (r *TransferRepo) CreateLine(ctx context.Context, line *entity.TransferLine) error {
	query := `
		INSERT INTO transfer_lines (id, transfer_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(ctx, query, line.ID, line.TransferID, line.ProductID, line.Quantity)
	if err != nil {
		return fmt.Errorf("insert transfer line: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera de un traslado.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetByIDForUpdate obtiene la cabecera bloqueándola (FOR UPDATE) para
// serializar aprobaciones concurrentes. Debe llamarse dentro de una transacción.
func (r *TransferRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetLinesByTransferID lista las líneas de un traslado.
func (r *TransferRepo) GetLinesByTransferID(ctx context.Context, transferID string) ([]*entity.TransferLine, error) {
	query := `
		SELECT id, transfer_id, product_id, quantity
		FROM transfer_lines WHERE transfer_id = $1 ORDER BY id ASC`
	rows, err := r.q.Query(ctx, query, transferID)
	if err != nil {
		return nil, fmt.Errorf("list transfer lines: %w", err)
	}
	defer rows.Close()

	var lines []*entity.TransferLine
	for rows.Next() {
		var l entity.TransferLine
		if err := rows.Scan(&l.ID, &l.TransferID, &l.ProductID, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan transfer line: %w", err)
		}
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}

// UpdateStatus persiste status y stock_moved en una sola sentencia.
func (r *TransferRepo) UpdateStatus(ctx context.Context, transfer *entity.Transfer) error {
	query := `
		UPDATE transfers
		SET status = $2, stock_moved = $3, updated_at = $4
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, transfer.ID, transfer.Status, transfer.StockMoved, transfer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update transfer status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TransferRepo) scanOne(row pgx.Row) (*entity.Transfer, error) {
	var t entity.Transfer
	var createdBy *string
	err := row.Scan(
		&t.ID, &t.CompanyID, &t.FromOutletID, &t.ToOutletID, &t.Number, &t.Status,
		&t.StockMoved, &t.Note, &t.CreatedAt, &t.UpdatedAt, &createdBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	if createdBy != nil {
		t.CreatedBy = *createdBy
	}
	return &t, nil
}
