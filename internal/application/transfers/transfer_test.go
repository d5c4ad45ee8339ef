package transfers_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-pro/internal/application/dto"
	"github.com/tu-usuario/pos-pro/internal/application/stock"
	"github.com/tu-usuario/pos-pro/internal/application/transfers"
	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria con rollback transaccional
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

type memState struct {
	mu        sync.Mutex
	levels    map[string]decimal.Decimal
	movements []*entity.StockMovement
	transfers map[string]*entity.Transfer
	lines     []*entity.TransferLine
}

func key(companyID, productID, outletID string) string {
	return companyID + "|" + productID + "|" + outletID
}

type stateStockRepo struct{ s *memState }

var _ repository.StockLevelRepository = (*stateStockRepo)(nil)

func (r *stateStockRepo) Get(_ context.Context, companyID, productID, outletID string) (*entity.StockLevel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return &entity.StockLevel{CompanyID: companyID, ProductID: productID, OutletID: outletID,
		Quantity: r.s.levels[key(companyID, productID, outletID)]}, nil
}

func (r *stateStockRepo) AddQuantity(_ context.Context, companyID, productID, outletID string, qty decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key(companyID, productID, outletID)
	before := r.s.levels[k]
	after := before.Add(qty)
	r.s.levels[k] = after
	return before, after, nil
}

func (r *stateStockRepo) SubtractQuantity(_ context.Context, companyID, productID, outletID string, qty decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key(companyID, productID, outletID)
	before := r.s.levels[k]
	if before.LessThan(qty) {
		return decimal.Zero, decimal.Zero, domain.ErrInsufficientStock
	}
	after := before.Sub(qty)
	r.s.levels[k] = after
	return before, after, nil
}

type stateMovementRepo struct{ s *memState }

var _ repository.StockMovementRepository = (*stateMovementRepo)(nil)

func (r *stateMovementRepo) Create(_ context.Context, mov *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movements = append(r.s.movements, mov)
	return nil
}

func (r *stateMovementRepo) ListByProductOutlet(_ context.Context, _, _, _ string, _, _ *time.Time, _, _ int) ([]*entity.StockMovement, error) {
	return nil, nil
}

func (r *stateMovementRepo) ListByReference(_ context.Context, companyID string, ref entity.MovementReference) ([]*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.CompanyID == companyID && m.Reference == ref {
			out = append(out, m)
		}
	}
	return out, nil
}

type stateTransferRepo struct{ s *memState }

var _ repository.TransferRepository = (*stateTransferRepo)(nil)

func (r *stateTransferRepo) Create(_ context.Context, t *entity.Transfer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *t
	r.s.transfers[t.ID] = &cp
	return nil
}

func (r *stateTransferRepo) CreateLine(_ context.Context, line *entity.TransferLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.lines = append(r.s.lines, line)
	return nil
}

func (r *stateTransferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transfers[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *stateTransferRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.GetByID(ctx, id)
}

func (r *stateTransferRepo) GetLinesByTransferID(_ context.Context, transferID string) ([]*entity.TransferLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.TransferLine
	for _, l := range r.s.lines {
		if l.TransferID == transferID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *stateTransferRepo) UpdateStatus(_ context.Context, t *entity.Transfer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.transfers[t.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Status = t.Status
	stored.StockMoved = t.StockMoved
	stored.UpdatedAt = t.UpdatedAt
	return nil
}

// transferTxRunner revierte stock, journal y traslados si fn falla.
type transferTxRunner struct{ s *memState }

var _ transfers.TransferTxRunner = (*transferTxRunner)(nil)

func (t *transferTxRunner) RunTransfer(ctx context.Context, fn func(repository.StockLevelRepository, repository.StockMovementRepository, repository.TransferRepository) error) error {
	t.s.mu.Lock()
	levels := make(map[string]decimal.Decimal, len(t.s.levels))
	for k, v := range t.s.levels {
		levels[k] = v
	}
	movCount := len(t.s.movements)
	lineCount := len(t.s.lines)
	snap := make(map[string]*entity.Transfer, len(t.s.transfers))
	for id, tr := range t.s.transfers {
		cp := *tr
		snap[id] = &cp
	}
	t.s.mu.Unlock()

	if err := fn(&stateStockRepo{s: t.s}, &stateMovementRepo{s: t.s}, &stateTransferRepo{s: t.s}); err != nil {
		t.s.mu.Lock()
		t.s.levels = levels
		t.s.movements = t.s.movements[:movCount]
		t.s.lines = t.s.lines[:lineCount]
		t.s.transfers = snap
		t.s.mu.Unlock()
		return err
	}
	return nil
}

type mapProductRepo struct{ products map[string]*entity.Product }

var _ repository.ProductRepository = (*mapProductRepo)(nil)

func (r *mapProductRepo) Create(_ context.Context, _ *entity.Product) error { return nil }
func (r *mapProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return r.products[id], nil
}
func (r *mapProductRepo) GetByCompanyAndSKU(_ context.Context, _, _ string) (*entity.Product, error) {
	return nil, nil
}
func (r *mapProductRepo) ListByCompany(_ context.Context, _ string, _, _ int) ([]*entity.Product, error) {
	return nil, nil
}
func (r *mapProductRepo) Update(_ context.Context, _ *entity.Product) error { return nil }

type mapOutletRepo struct{ outlets map[string]*entity.Outlet }

var _ repository.OutletRepository = (*mapOutletRepo)(nil)

func (r *mapOutletRepo) Create(_ context.Context, _ *entity.Outlet) error { return nil }
func (r *mapOutletRepo) GetByID(_ context.Context, id string) (*entity.Outlet, error) {
	return r.outlets[id], nil
}
func (r *mapOutletRepo) ListByCompany(_ context.Context, _ string) ([]*entity.Outlet, error) {
	return nil, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	companyID = "co-1"
	outletX   = "out-x"
	outletY   = "out-y"
	productA  = "prod-a"
	productB  = "prod-b"
	userID    = "bodeguero-1"
)

type fixture struct {
	uc    *transfers.TransferUseCase
	state *memState
}

func newFixture() *fixture {
	state := &memState{
		levels:    map[string]decimal.Decimal{},
		transfers: map[string]*entity.Transfer{},
	}
	products := &mapProductRepo{products: map[string]*entity.Product{
		productA: {ID: productA, CompanyID: companyID, SKU: "A", Name: "Harina", BaseUnit: "kg", Price: dec("4000")},
		productB: {ID: productB, CompanyID: companyID, SKU: "B", Name: "Azúcar", BaseUnit: "kg", Price: dec("3500")},
	}}
	outlets := &mapOutletRepo{outlets: map[string]*entity.Outlet{
		outletX: {ID: outletX, CompanyID: companyID, Name: "Norte"},
		outletY: {ID: outletY, CompanyID: companyID, Name: "Sur"},
	}}
	ledger := stock.NewLedgerService(nil, &stateStockRepo{s: state}, &stateMovementRepo{s: state}, products, outlets)
	uc := transfers.NewTransferUseCase(&transferTxRunner{s: state}, ledger, products, outlets, &stateTransferRepo{s: state})
	return &fixture{uc: uc, state: state}
}

func (f *fixture) setLevel(productID, outletID string, qty decimal.Decimal) {
	f.state.levels[key(companyID, productID, outletID)] = qty
}

func (f *fixture) level(productID, outletID string) decimal.Decimal {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	return f.state.levels[key(companyID, productID, outletID)]
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// Aprobar mueve el stock: débito en origen, crédito en destino, dos asientos
// con la misma referencia.
func TestApprove_MueveStockEntreSucursales(t *testing.T) {
	f := newFixture()
	f.setLevel(productA, outletX, dec("10"))

	created, err := f.uc.CreateTransfer(context.Background(), companyID, userID, dto.CreateTransferRequest{
		FromOutletID: outletX,
		ToOutletID:   outletY,
		Items:        []dto.TransferItemRequest{{ProductID: productA, Quantity: dec("6")}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusPending, created.Status)
	assert.True(t, dec("10").Equal(f.level(productA, outletX)), "crear no mueve stock")

	resp, err := f.uc.OnTransferApproved(context.Background(), companyID, userID, created.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.TransferStatusApproved, resp.Status)
	assert.True(t, resp.StockMoved)
	assert.True(t, dec("4").Equal(f.level(productA, outletX)))
	assert.True(t, dec("6").Equal(f.level(productA, outletY)))

	require.Len(t, f.state.movements, 2)
	for _, mov := range f.state.movements {
		assert.Equal(t, entity.MovementKindTransfer, mov.Kind)
		assert.Equal(t, entity.ReferenceTypeTransfer, mov.Reference.ReferenceType())
		assert.Equal(t, created.ID, mov.Reference.ReferenceID())
	}
	assert.True(t, dec("-6").Equal(f.state.movements[0].Delta))
	assert.True(t, dec("6").Equal(f.state.movements[1].Delta))
}

// La segunda aprobación del mismo traslado es un no-op.
func TestApprove_Idempotente(t *testing.T) {
	f := newFixture()
	f.setLevel(productA, outletX, dec("10"))

	created, err := f.uc.CreateTransfer(context.Background(), companyID, userID, dto.CreateTransferRequest{
		FromOutletID: outletX,
		ToOutletID:   outletY,
		Items:        []dto.TransferItemRequest{{ProductID: productA, Quantity: dec("6")}},
	})
	require.NoError(t, err)

	_, err = f.uc.OnTransferApproved(context.Background(), companyID, userID, created.ID)
	require.NoError(t, err)
	resp, err := f.uc.OnTransferApproved(context.Background(), companyID, userID, created.ID)
	require.NoError(t, err, "re-aprobar no es un error")

	assert.Equal(t, entity.TransferStatusApproved, resp.Status)
	assert.True(t, dec("4").Equal(f.level(productA, outletX)), "el stock se mueve exactamente una vez")
	assert.True(t, dec("6").Equal(f.level(productA, outletY)))
	assert.Len(t, f.state.movements, 2)
}

// Traslado multi-línea: si una línea no alcanza en origen, NINGUNA línea queda
// aplicada y el traslado sigue en pending.
func TestApprove_OrigenInsuficiente_RollbackCompleto(t *testing.T) {
	f := newFixture()
	f.setLevel(productA, outletX, dec("10"))
	f.setLevel(productB, outletX, dec("1"))

	created, err := f.uc.CreateTransfer(context.Background(), companyID, userID, dto.CreateTransferRequest{
		FromOutletID: outletX,
		ToOutletID:   outletY,
		Items: []dto.TransferItemRequest{
			{ProductID: productA, Quantity: dec("6")},
			{ProductID: productB, Quantity: dec("5")},
		},
	})
	require.NoError(t, err)

	_, err = f.uc.OnTransferApproved(context.Background(), companyID, userID, created.ID)
	assert.Equal(t, domain.ErrInsufficientStock, err)

	assert.True(t, dec("10").Equal(f.level(productA, outletX)),
		"el débito de la primera línea debe revertirse")
	assert.True(t, decimal.Zero.Equal(f.level(productA, outletY)))
	assert.Empty(t, f.state.movements)

	stored, getErr := f.uc.GetTransfer(context.Background(), companyID, created.ID)
	require.NoError(t, getErr)
	assert.Equal(t, entity.TransferStatusPending, stored.Status)
	assert.False(t, stored.StockMoved)
}

// Un traslado cancelado no puede aprobarse.
func TestApprove_TrasladoCancelado(t *testing.T) {
	f := newFixture()
	f.setLevel(productA, outletX, dec("10"))

	created, err := f.uc.CreateTransfer(context.Background(), companyID, userID, dto.CreateTransferRequest{
		FromOutletID: outletX,
		ToOutletID:   outletY,
		Items:        []dto.TransferItemRequest{{ProductID: productA, Quantity: dec("2")}},
	})
	require.NoError(t, err)

	f.state.mu.Lock()
	f.state.transfers[created.ID].Status = entity.TransferStatusCancelled
	f.state.mu.Unlock()

	_, err = f.uc.OnTransferApproved(context.Background(), companyID, userID, created.ID)
	assert.Equal(t, domain.ErrInvalidStatusTransition, err)
	assert.True(t, dec("10").Equal(f.level(productA, outletX)))
}

func TestCreateTransfer_Validaciones(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.CreateTransfer(ctx, companyID, userID, dto.CreateTransferRequest{
		FromOutletID: outletX,
		ToOutletID:   outletX,
		Items:        []dto.TransferItemRequest{{ProductID: productA, Quantity: dec("1")}},
	})
	assert.Equal(t, domain.ErrInvalidInput, err, "origen y destino no pueden coincidir")

	_, err = f.uc.CreateTransfer(ctx, companyID, userID, dto.CreateTransferRequest{
		FromOutletID: outletX,
		ToOutletID:   outletY,
		Items:        []dto.TransferItemRequest{{ProductID: productA, Quantity: decimal.Zero}},
	})
	assert.Equal(t, domain.ErrInvalidQuantity, err)

	_, err = f.uc.CreateTransfer(ctx, companyID, userID, dto.CreateTransferRequest{
		FromOutletID: outletX,
		ToOutletID:   "no-existe",
		Items:        []dto.TransferItemRequest{{ProductID: productA, Quantity: dec("1")}},
	})
	assert.Equal(t, domain.ErrNotFound, err)
}

func TestApprove_TrasladoDeOtraEmpresa(t *testing.T) {
	f := newFixture()
	f.setLevel(productA, outletX, dec("10"))

	created, err := f.uc.CreateTransfer(context.Background(), companyID, userID, dto.CreateTransferRequest{
		FromOutletID: outletX,
		ToOutletID:   outletY,
		Items:        []dto.TransferItemRequest{{ProductID: productA, Quantity: dec("1")}},
	})
	require.NoError(t, err)

	_, err = f.uc.OnTransferApproved(context.Background(), "otra-empresa", userID, created.ID)
	assert.Equal(t, domain.ErrForbidden, err)
	assert.True(t, dec("10").Equal(f.level(productA, outletX)))
}
