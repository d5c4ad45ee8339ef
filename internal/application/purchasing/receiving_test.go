package purchasing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-pro/internal/application/dto"
	"github.com/tu-usuario/pos-pro/internal/application/purchasing"
	"github.com/tu-usuario/pos-pro/internal/application/stock"
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
	purchases map[string]*entity.Purchase
	lines     []*entity.PurchaseLine
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

type statePurchaseRepo struct{ s *memState }

var _ repository.PurchaseRepository = (*statePurchaseRepo)(nil)

func (r *statePurchaseRepo) Create(_ context.Context, p *entity.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.purchases[p.ID] = &cp
	return nil
}

func (r *statePurchaseRepo) CreateLine(_ context.Context, line *entity.PurchaseLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.lines = append(r.s.lines, line)
	return nil
}

func (r *statePurchaseRepo) GetByID(_ context.Context, id string) (*entity.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.purchases[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *statePurchaseRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.GetByID(ctx, id)
}

func (r *statePurchaseRepo) GetLinesByPurchaseID(_ context.Context, purchaseID string) ([]*entity.PurchaseLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.PurchaseLine
	for _, l := range r.s.lines {
		if l.PurchaseID == purchaseID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *statePurchaseRepo) UpdateStatus(_ context.Context, p *entity.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.purchases[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Status = p.Status
	stored.StockApplied = p.StockApplied
	stored.UpdatedAt = p.UpdatedAt
	return nil
}

// purchaseTxRunner revierte stock, journal y compras si fn falla.
type purchaseTxRunner struct{ s *memState }

var _ purchasing.PurchaseTxRunner = (*purchaseTxRunner)(nil)

func (t *purchaseTxRunner) RunPurchase(ctx context.Context, fn func(repository.StockLevelRepository, repository.StockMovementRepository, repository.PurchaseRepository) error) error {
	t.s.mu.Lock()
	levels := make(map[string]decimal.Decimal, len(t.s.levels))
	for k, v := range t.s.levels {
		levels[k] = v
	}
	movCount := len(t.s.movements)
	lineCount := len(t.s.lines)
	purchases := make(map[string]*entity.Purchase, len(t.s.purchases))
	for id, p := range t.s.purchases {
		cp := *p
		purchases[id] = &cp
	}
	t.s.mu.Unlock()

	if err := fn(&stateStockRepo{s: t.s}, &stateMovementRepo{s: t.s}, &statePurchaseRepo{s: t.s}); err != nil {
		t.s.mu.Lock()
		t.s.levels = levels
		t.s.movements = t.s.movements[:movCount]
		t.s.lines = t.s.lines[:lineCount]
		t.s.purchases = purchases
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
	outletID  = "out-1"
	productA  = "prod-a"
	productB  = "prod-b"
	userID    = "bodeguero-1"
)

type fixture struct {
	uc    *purchasing.ReceivingUseCase
	state *memState
}

func newFixture() *fixture {
	state := &memState{
		levels:    map[string]decimal.Decimal{},
		purchases: map[string]*entity.Purchase{},
	}
	products := &mapProductRepo{products: map[string]*entity.Product{
		productA: {ID: productA, CompanyID: companyID, SKU: "A", Name: "Arroz", BaseUnit: "und", Price: dec("3000")},
		productB: {ID: productB, CompanyID: companyID, SKU: "B", Name: "Aceite", BaseUnit: "und", Price: dec("9000")},
	}}
	outlets := &mapOutletRepo{outlets: map[string]*entity.Outlet{
		outletID: {ID: outletID, CompanyID: companyID, Name: "Bodega"},
	}}
	ledger := stock.NewLedgerService(nil, &stateStockRepo{s: state}, &stateMovementRepo{s: state}, products, outlets)
	uc := purchasing.NewReceivingUseCase(&purchaseTxRunner{s: state}, ledger, products, outlets, &statePurchaseRepo{s: state})
	return &fixture{uc: uc, state: state}
}

func (f *fixture) level(productID string) decimal.Decimal {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	return f.state.levels[key(companyID, productID, outletID)]
}

func (f *fixture) createPending(t *testing.T) *dto.PurchaseResponse {
	t.Helper()
	resp, err := f.uc.CreatePurchase(context.Background(), companyID, userID, dto.CreatePurchaseRequest{
		OutletID:     outletID,
		SupplierName: "Distribuidora Sur",
		Items: []dto.PurchaseItemRequest{
			{ProductID: productA, Quantity: dec("10"), UnitCost: dec("2500")},
		},
	})
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// Crear la compra no toca el stock: el efecto va acoplado al edge a paid.
func TestCreatePurchase_SinEfectoEnStock(t *testing.T) {
	f := newFixture()
	resp := f.createPending(t)

	assert.Equal(t, entity.PurchaseStatusPending, resp.Status)
	assert.False(t, resp.StockApplied)
	assert.True(t, dec("25000").Equal(resp.GrandTotal))
	assert.True(t, decimal.Zero.Equal(f.level(productA)))
	assert.Empty(t, f.state.movements)
}

func TestStatusChange_PendingAPaid_AplicaStock(t *testing.T) {
	f := newFixture()
	p := f.createPending(t)

	resp, err := f.uc.OnPurchaseStatusChanged(context.Background(), companyID, userID, p.ID, entity.PurchaseStatusPaid)
	require.NoError(t, err)

	assert.Equal(t, entity.PurchaseStatusPaid, resp.Status)
	assert.True(t, resp.StockApplied)
	assert.True(t, dec("10").Equal(f.level(productA)))

	require.Len(t, f.state.movements, 1)
	mov := f.state.movements[0]
	assert.Equal(t, entity.MovementKindIn, mov.Kind)
	assert.Equal(t, entity.ReferenceTypePurchase, mov.Reference.ReferenceType())
	assert.Equal(t, p.ID, mov.Reference.ReferenceID())
}

// paid repetido es idempotente: el stock no se aplica dos veces.
func TestStatusChange_PaidRepetido_NoDuplicaStock(t *testing.T) {
	f := newFixture()
	p := f.createPending(t)

	_, err := f.uc.OnPurchaseStatusChanged(context.Background(), companyID, userID, p.ID, entity.PurchaseStatusPaid)
	require.NoError(t, err)
	resp, err := f.uc.OnPurchaseStatusChanged(context.Background(), companyID, userID, p.ID, entity.PurchaseStatusPaid)
	require.NoError(t, err, "el re-envío del mismo estado es un no-op, no un error")

	assert.Equal(t, entity.PurchaseStatusPaid, resp.Status)
	assert.True(t, dec("10").Equal(f.level(productA)), "el stock debe aplicarse exactamente una vez")
	assert.Len(t, f.state.movements, 1)
}

// paid -> cancelled revierte exactamente lo aplicado.
func TestStatusChange_PaidACancelled_RevierteStock(t *testing.T) {
	f := newFixture()
	p := f.createPending(t)

	_, err := f.uc.OnPurchaseStatusChanged(context.Background(), companyID, userID, p.ID, entity.PurchaseStatusPaid)
	require.NoError(t, err)
	resp, err := f.uc.OnPurchaseStatusChanged(context.Background(), companyID, userID, p.ID, entity.PurchaseStatusCancelled)
	require.NoError(t, err)

	assert.Equal(t, entity.PurchaseStatusCancelled, resp.Status)
	assert.False(t, resp.StockApplied)
	assert.True(t, decimal.Zero.Equal(f.level(productA)))

	require.Len(t, f.state.movements, 2)
	assert.Equal(t, entity.MovementKindAdjustment, f.state.movements[1].Kind,
		"la reversa se asienta como ajuste, no como venta")
}

// Si parte del stock recibido ya se vendió, la cancelación se bloquea y la
// compra permanece en paid con su stock aplicado.
func TestStatusChange_CancelacionBloqueadaPorStockVendido(t *testing.T) {
	f := newFixture()
	p := f.createPending(t)

	_, err := f.uc.OnPurchaseStatusChanged(context.Background(), companyID, userID, p.ID, entity.PurchaseStatusPaid)
	require.NoError(t, err)

	// Simula una venta posterior que dejó solo 4 de las 10 unidades recibidas.
	f.state.mu.Lock()
	f.state.levels[key(companyID, productA, outletID)] = dec("4")
	f.state.mu.Unlock()

	_, err = f.uc.OnPurchaseStatusChanged(context.Background(), companyID, userID, p.ID, entity.PurchaseStatusCancelled)
	assert.Equal(t, domain.ErrInsufficientStock, err)

	stored, getErr := f.uc.GetPurchase(context.Background(), companyID, p.ID)
	require.NoError(t, getErr)
	assert.Equal(t, entity.PurchaseStatusPaid, stored.Status, "la compra sigue en paid")
	assert.True(t, stored.StockApplied)
	assert.True(t, dec("4").Equal(f.level(productA)), "el rollback no debe tocar el stock")
}

// cancelled -> paid vuelve a aplicar el stock (el marcador quedó en false).
func TestStatusChange_CancelledAPaid_ReAplicaStock(t *testing.T) {
	f := newFixture()
	p := f.createPending(t)

	ctx := context.Background()
	_, err := f.uc.OnPurchaseStatusChanged(ctx, companyID, userID, p.ID, entity.PurchaseStatusPaid)
	require.NoError(t, err)
	_, err = f.uc.OnPurchaseStatusChanged(ctx, companyID, userID, p.ID, entity.PurchaseStatusCancelled)
	require.NoError(t, err)
	resp, err := f.uc.OnPurchaseStatusChanged(ctx, companyID, userID, p.ID, entity.PurchaseStatusPaid)
	require.NoError(t, err)

	assert.True(t, resp.StockApplied)
	assert.True(t, dec("10").Equal(f.level(productA)))
	assert.Len(t, f.state.movements, 3)
}

// pending -> cancelled no tiene efecto de stock; volver a pending no está modelado.
func TestStatusChange_EdgesSinEfecto(t *testing.T) {
	f := newFixture()
	p := f.createPending(t)
	ctx := context.Background()

	resp, err := f.uc.OnPurchaseStatusChanged(ctx, companyID, userID, p.ID, entity.PurchaseStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusCancelled, resp.Status)
	assert.True(t, decimal.Zero.Equal(f.level(productA)))
	assert.Empty(t, f.state.movements)

	_, err = f.uc.OnPurchaseStatusChanged(ctx, companyID, userID, p.ID, entity.PurchaseStatusPending)
	assert.Equal(t, domain.ErrInvalidStatusTransition, err)
}

// pending re-enviado sobre una compra pending devuelve el estado actual.
func TestStatusChange_PendingRepetido_NoOp(t *testing.T) {
	f := newFixture()
	p := f.createPending(t)

	resp, err := f.uc.OnPurchaseStatusChanged(context.Background(), companyID, userID, p.ID, entity.PurchaseStatusPending)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusPending, resp.Status)
}

func TestStatusChange_ValidacionesDeEntrada(t *testing.T) {
	f := newFixture()
	p := f.createPending(t)
	ctx := context.Background()

	_, err := f.uc.OnPurchaseStatusChanged(ctx, companyID, userID, p.ID, "enviado")
	assert.Equal(t, domain.ErrInvalidInput, err)

	_, err = f.uc.OnPurchaseStatusChanged(ctx, companyID, userID, "no-existe", entity.PurchaseStatusPaid)
	assert.Equal(t, domain.ErrNotFound, err)

	_, err = f.uc.OnPurchaseStatusChanged(ctx, "otra-empresa", userID, p.ID, entity.PurchaseStatusPaid)
	assert.Equal(t, domain.ErrForbidden, err)
}
