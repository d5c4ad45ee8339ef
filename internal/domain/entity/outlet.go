package entity

import "time"

// Outlet representa una sucursal o punto de venta donde se mantiene stock.
type Outlet struct {
	ID        string
	CompanyID string
	Name      string
	Address   string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
