package entity

import "time"

// Company representa una organización/tenant del sistema (multi-tenant).
// Toda entidad lleva CompanyID y toda query lo incluye en sus claves.
type Company struct {
	ID        string
	Name      string
	TaxID     string
	Address   string
	Phone     string
	Email     string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}
