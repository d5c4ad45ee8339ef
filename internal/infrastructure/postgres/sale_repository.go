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

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, company_id, outlet_id, number, subtotal, discount, tax_rate, tax_amount, grand_total, tendered, change, note, created_at, created_by`

const saleLineColumns = `id, sale_id, product_id, product_unit_id, quantity, conversion_factor, base_quantity, unit_price, discount, line_total`

// SaleRepo implementación del puerto SaleRepository sobre PostgreSQL. Dentro
// de una liquidación se construye atado a la tx vía TxRunner.RunSale.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de persistencia para ventas.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la cabecera de una venta con sus totales congelados.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	var createdBy *string
	if sale.CreatedBy != "" {
		createdBy = &sale.CreatedBy
	}
	_, err := r.q.Exec(ctx, query,
		sale.ID, sale.CompanyID, sale.OutletID, sale.Number, sale.Subtotal,
		sale.Discount, sale.TaxRate, sale.TaxAmount, sale.GrandTotal,
		sale.Tendered, sale.Change, sale.Note, sale.CreatedAt, createdBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// CreateLine persiste una línea de venta con el factor de conversión capturado.
func (r *SaleRepo) CreateLine(ctx context.Context, line *entity.SaleLine) error {
	query := `
		INSERT INTO sale_lines (` + saleLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	var unitID *string
	if line.ProductUnitID != "" {
		unitID = &line.ProductUnitID
	}
	_, err := r.q.Exec(ctx, query,
		line.ID, line.SaleID, line.ProductID, unitID, line.Quantity,
		line.ConversionFactor, line.BaseQuantity, line.UnitPrice,
		line.Discount, line.LineTotal,
	)
	if err != nil {
		return fmt.Errorf("insert sale line: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera de una venta.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	var s entity.Sale
	var createdBy *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.CompanyID, &s.OutletID, &s.Number, &s.Subtotal, &s.Discount,
		&s.TaxRate, &s.TaxAmount, &s.GrandTotal, &s.Tendered, &s.Change,
		&s.Note, &s.CreatedAt, &createdBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if createdBy != nil {
		s.CreatedBy = *createdBy
	}
	return &s, nil
}

// GetLinesBySaleID lista las líneas de una venta.
func (r *SaleRepo) GetLinesBySaleID(ctx context.Context, saleID string) ([]*entity.SaleLine, error) {
	query := `SELECT ` + saleLineColumns + ` FROM sale_lines WHERE sale_id = $1 ORDER BY id ASC`
	rows, err := r.q.Query(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale lines: %w", err)
	}
	defer rows.Close()

	var lines []*entity.SaleLine
	for rows.Next() {
		var l entity.SaleLine
		var unitID *string
		if err := rows.Scan(
			&l.ID, &l.SaleID, &l.ProductID, &unitID, &l.Quantity,
			&l.ConversionFactor, &l.BaseQuantity, &l.UnitPrice,
			&l.Discount, &l.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		if unitID != nil {
			l.ProductUnitID = *unitID
		}
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}
