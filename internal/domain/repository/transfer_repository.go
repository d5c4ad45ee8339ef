package repository

import (
	"context"

	"github.com/tu-usuario/pos-pro/internal/domain/entity"
)

// TransferRepository define el puerto de persistencia para traslados.
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	CreateLine(ctx context.Context, line *entity.TransferLine) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Transfer, error)
	GetLinesByTransferID(ctx context.Context, transferID string) ([]*entity.TransferLine, error)
	UpdateStatus(ctx context.Context, transfer *entity.Transfer) error
}
