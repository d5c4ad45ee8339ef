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

var _ repository.ProductUnitRepository = (*ProductUnitRepo)(nil)

const productUnitColumns = `id, company_id, product_id, name, conversion_factor, price_override, barcode, created_at, updated_at`

// ProductUnitRepo implementación del puerto ProductUnitRepository sobre PostgreSQL.
type ProductUnitRepo struct {
	q Querier
}

// NewProductUnitRepository construye el adaptador para presentaciones alternas.
func NewProductUnitRepository(q Querier) *ProductUnitRepo {
	return &ProductUnitRepo{q: q}
}

// Create persiste una presentación alterna. El nombre es único por producto.
func (r *ProductUnitRepo) Create(ctx context.Context, unit *entity.ProductUnit) error {
	query := `
		INSERT INTO product_units (` + productUnitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		unit.ID, unit.CompanyID, unit.ProductID, unit.Name, unit.ConversionFactor,
		unit.PriceOverride, unit.Barcode, unit.CreatedAt, unit.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product unit: %w", err)
	}
	return nil
}

// GetByID obtiene una presentación por ID.
func (r *ProductUnitRepo) GetByID(ctx context.Context, id string) (*entity.ProductUnit, error) {
	query := `SELECT ` + productUnitColumns + ` FROM product_units WHERE id = $1`
	var u entity.ProductUnit
	err := r.q.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.CompanyID, &u.ProductID, &u.Name, &u.ConversionFactor,
		&u.PriceOverride, &u.Barcode, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product unit: %w", err)
	}
	return &u, nil
}

// ListByProduct lista las presentaciones de un producto.
func (r *ProductUnitRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.ProductUnit, error) {
	query := `
		SELECT ` + productUnitColumns + ` FROM product_units
		WHERE product_id = $1
		ORDER BY name ASC`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list product units: %w", err)
	}
	defer rows.Close()

	var units []*entity.ProductUnit
	for rows.Next() {
		var u entity.ProductUnit
		if err := rows.Scan(
			&u.ID, &u.CompanyID, &u.ProductID, &u.Name, &u.ConversionFactor,
			&u.PriceOverride, &u.Barcode, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product unit: %w", err)
		}
		units = append(units, &u)
	}
	return units, rows.Err()
}
