package stock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-pro/internal/application/stock"
	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria: emulan las primitivas atómicas del storage (suma atómica,
// compare-and-decrement) y el rollback transaccional vía snapshot/restore.
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func levelKey(companyID, productID, outletID string) string {
	return companyID + "|" + productID + "|" + outletID
}

type memStore struct {
	opMu      sync.Mutex // protege levels y movements (una operación = una sentencia)
	txMu      sync.Mutex // serializa transacciones completas
	levels    map[string]decimal.Decimal
	movements []*entity.StockMovement
}

func newMemStore() *memStore {
	return &memStore{levels: map[string]decimal.Decimal{}}
}

func (s *memStore) setLevel(companyID, productID, outletID string, qty decimal.Decimal) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.levels[levelKey(companyID, productID, outletID)] = qty
}

func (s *memStore) level(companyID, productID, outletID string) decimal.Decimal {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.levels[levelKey(companyID, productID, outletID)]
}

func (s *memStore) snapshot() (map[string]decimal.Decimal, int) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	cp := make(map[string]decimal.Decimal, len(s.levels))
	for k, v := range s.levels {
		cp[k] = v
	}
	return cp, len(s.movements)
}

func (s *memStore) restore(levels map[string]decimal.Decimal, movCount int) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.levels = levels
	s.movements = s.movements[:movCount]
}

type memStockRepo struct{ s *memStore }

var _ repository.StockLevelRepository = (*memStockRepo)(nil)

func (r *memStockRepo) Get(_ context.Context, companyID, productID, outletID string) (*entity.StockLevel, error) {
	return &entity.StockLevel{
		CompanyID: companyID,
		ProductID: productID,
		OutletID:  outletID,
		Quantity:  r.s.level(companyID, productID, outletID),
	}, nil
}

func (r *memStockRepo) AddQuantity(_ context.Context, companyID, productID, outletID string, qty decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	r.s.opMu.Lock()
	defer r.s.opMu.Unlock()
	k := levelKey(companyID, productID, outletID)
	before := r.s.levels[k]
	after := before.Add(qty)
	r.s.levels[k] = after
	return before, after, nil
}

func (r *memStockRepo) SubtractQuantity(_ context.Context, companyID, productID, outletID string, qty decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	r.s.opMu.Lock()
	defer r.s.opMu.Unlock()
	k := levelKey(companyID, productID, outletID)
	before := r.s.levels[k]
	if before.LessThan(qty) {
		return decimal.Zero, decimal.Zero, domain.ErrInsufficientStock
	}
	after := before.Sub(qty)
	r.s.levels[k] = after
	return before, after, nil
}

type memMovementRepo struct{ s *memStore }

var _ repository.StockMovementRepository = (*memMovementRepo)(nil)

func (r *memMovementRepo) Create(_ context.Context, mov *entity.StockMovement) error {
	r.s.opMu.Lock()
	defer r.s.opMu.Unlock()
	r.s.movements = append(r.s.movements, mov)
	return nil
}

func (r *memMovementRepo) ListByProductOutlet(_ context.Context, companyID, productID, outletID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	r.s.opMu.Lock()
	defer r.s.opMu.Unlock()
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.CompanyID != companyID || m.ProductID != productID || m.OutletID != outletID {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		out = append(out, m)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *memMovementRepo) ListByReference(_ context.Context, companyID string, ref entity.MovementReference) ([]*entity.StockMovement, error) {
	r.s.opMu.Lock()
	defer r.s.opMu.Unlock()
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.CompanyID == companyID && m.Reference == ref {
			out = append(out, m)
		}
	}
	return out, nil
}

// memTxRunner serializa transacciones y revierte levels+movements si fn falla.
type memTxRunner struct{ s *memStore }

var _ stock.TxRunner = (*memTxRunner)(nil)

func (t *memTxRunner) Run(ctx context.Context, fn func(repository.StockLevelRepository, repository.StockMovementRepository) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()
	levels, movCount := t.s.snapshot()
	if err := fn(&memStockRepo{s: t.s}, &memMovementRepo{s: t.s}); err != nil {
		t.s.restore(levels, movCount)
		return err
	}
	return nil
}

type memProductRepo struct {
	products map[string]*entity.Product
}

var _ repository.ProductRepository = (*memProductRepo)(nil)

func (r *memProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.products[p.ID] = p
	return nil
}
func (r *memProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return r.products[id], nil
}
func (r *memProductRepo) GetByCompanyAndSKU(_ context.Context, companyID, sku string) (*entity.Product, error) {
	for _, p := range r.products {
		if p.CompanyID == companyID && p.SKU == sku {
			return p, nil
		}
	}
	return nil, nil
}
func (r *memProductRepo) ListByCompany(_ context.Context, companyID string, _, _ int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.products {
		if p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	return out, nil
}
func (r *memProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.products[p.ID] = p
	return nil
}

type memOutletRepo struct {
	outlets map[string]*entity.Outlet
}

var _ repository.OutletRepository = (*memOutletRepo)(nil)

func (r *memOutletRepo) Create(_ context.Context, o *entity.Outlet) error {
	r.outlets[o.ID] = o
	return nil
}
func (r *memOutletRepo) GetByID(_ context.Context, id string) (*entity.Outlet, error) {
	return r.outlets[id], nil
}
func (r *memOutletRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.Outlet, error) {
	var out []*entity.Outlet
	for _, o := range r.outlets {
		if o.CompanyID == companyID {
			out = append(out, o)
		}
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	companyID = "co-1"
	productID = "prod-1"
	outletID  = "out-1"
	userID    = "user-1"
)

func newFixture() (*stock.LedgerService, *memStore) {
	store := newMemStore()
	products := &memProductRepo{products: map[string]*entity.Product{
		productID: {ID: productID, CompanyID: companyID, SKU: "SKU-1", Name: "Café 500g", BaseUnit: "und"},
	}}
	outlets := &memOutletRepo{outlets: map[string]*entity.Outlet{
		outletID: {ID: outletID, CompanyID: companyID, Name: "Sucursal Centro"},
	}}
	svc := stock.NewLedgerService(
		&memTxRunner{s: store},
		&memStockRepo{s: store},
		&memMovementRepo{s: store},
		products,
		outlets,
	)
	return svc, store
}

func manualAdjust(qty decimal.Decimal) stock.AdjustInput {
	return stock.AdjustInput{
		CompanyID: companyID,
		ProductID: productID,
		OutletID:  outletID,
		Quantity:  qty,
		Kind:      entity.MovementKindAdjustment,
		Reference: entity.ManualReference(),
		UserID:    userID,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestIncrease_MaterializaFilaYRegistraJournal(t *testing.T) {
	svc, store := newFixture()
	ctx := context.Background()

	after, err := svc.Increase(ctx, manualAdjust(dec("5")))
	require.NoError(t, err)
	assert.True(t, dec("5").Equal(after), "la fila debe materializarse en 0 y quedar en 5")

	require.Len(t, store.movements, 1)
	mov := store.movements[0]
	assert.Equal(t, entity.MovementKindAdjustment, mov.Kind)
	assert.True(t, dec("5").Equal(mov.Delta))
	assert.True(t, decimal.Zero.Equal(mov.QuantityBefore), "before debe venir de la misma sentencia (0)")
	assert.True(t, dec("5").Equal(mov.QuantityAfter))
	assert.Equal(t, entity.ReferenceTypeManual, mov.Reference.ReferenceType())
	assert.Equal(t, userID, mov.CreatedBy)
}

func TestDecrease_StockInsuficiente_NoDejaEfectos(t *testing.T) {
	svc, store := newFixture()
	ctx := context.Background()
	store.setLevel(companyID, productID, outletID, dec("5"))

	_, err := svc.Decrease(ctx, manualAdjust(dec("10")))
	assert.Equal(t, domain.ErrInsufficientStock, err)

	assert.True(t, dec("5").Equal(store.level(companyID, productID, outletID)),
		"la cantidad debe quedar intacta tras el fallo")
	assert.Empty(t, store.movements, "un decremento fallido no debe dejar asiento en el journal")
}

func TestDecrease_DejaLaCantidadEnCeroExacto(t *testing.T) {
	svc, store := newFixture()
	ctx := context.Background()
	store.setLevel(companyID, productID, outletID, dec("7"))

	after, err := svc.Decrease(ctx, manualAdjust(dec("7")))
	require.NoError(t, err)
	assert.True(t, decimal.Zero.Equal(after), "quantity == qty debe permitirse y dejar 0")
}

func TestAdjust_EntradasInvalidas(t *testing.T) {
	svc, _ := newFixture()
	ctx := context.Background()

	_, err := svc.Increase(ctx, manualAdjust(decimal.Zero))
	assert.Equal(t, domain.ErrInvalidQuantity, err, "cantidad 0 debe rechazarse")

	_, err = svc.Increase(ctx, manualAdjust(dec("-3")))
	assert.Equal(t, domain.ErrInvalidQuantity, err, "cantidad negativa debe rechazarse")

	in := manualAdjust(dec("1"))
	in.Kind = "otro"
	_, err = svc.Increase(ctx, in)
	assert.Equal(t, domain.ErrInvalidInput, err, "kind desconocido debe rechazarse")

	in = manualAdjust(dec("1"))
	in.Reference = entity.MovementReference{}
	_, err = svc.Increase(ctx, in)
	assert.Equal(t, domain.ErrInvalidInput, err, "referencia sin constructor debe rechazarse")
}

func TestAdjust_CatalogoYTenant(t *testing.T) {
	svc, _ := newFixture()
	ctx := context.Background()

	in := manualAdjust(dec("1"))
	in.ProductID = "prod-inexistente"
	_, err := svc.Increase(ctx, in)
	assert.Equal(t, domain.ErrNotFound, err)

	in = manualAdjust(dec("1"))
	in.CompanyID = "otra-empresa"
	_, err = svc.Increase(ctx, in)
	assert.Equal(t, domain.ErrForbidden, err, "producto de otra empresa debe rechazarse")
}

// Propiedad central: bajo descuentos concurrentes la cantidad nunca baja de 0,
// triunfan exactamente los que caben, y el journal reconcilia con el nivel.
func TestDecrease_ConcurrenciaNoSobrevende(t *testing.T) {
	svc, store := newFixture()
	ctx := context.Background()
	store.setLevel(companyID, productID, outletID, dec("100"))

	const workers = 60
	qty := dec("2") // 60 intentos de 2 sobre 100 -> exactamente 50 éxitos

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Decrease(ctx, manualAdjust(qty))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, insufficient int
	for err := range errs {
		switch err {
		case nil:
			ok++
		case domain.ErrInsufficientStock:
			insufficient++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 50, ok, "deben triunfar exactamente los descuentos que caben")
	assert.Equal(t, 10, insufficient)

	final := store.level(companyID, productID, outletID)
	assert.True(t, decimal.Zero.Equal(final), "el nivel final debe ser 0, fue %s", final)

	// Reconciliación: nivel inicial + Σ deltas == nivel final, y cada asiento
	// es internamente consistente (after = before + delta, nunca negativo).
	sum := decimal.Zero
	for _, m := range store.movements {
		assert.True(t, m.QuantityBefore.Add(m.Delta).Equal(m.QuantityAfter),
			"asiento inconsistente: before=%s delta=%s after=%s", m.QuantityBefore, m.Delta, m.QuantityAfter)
		assert.False(t, m.QuantityAfter.IsNegative(), "after nunca puede ser negativo")
		sum = sum.Add(m.Delta)
	}
	assert.True(t, dec("100").Add(sum).Equal(final), "el journal debe reconciliar con el nivel")
	assert.Len(t, store.movements, 50, "solo los éxitos dejan asiento")
}

func TestCurrentQuantity_FilaInexistenteEsCero(t *testing.T) {
	svc, _ := newFixture()
	qty, err := svc.CurrentQuantity(context.Background(), companyID, productID, outletID)
	require.NoError(t, err)
	assert.True(t, decimal.Zero.Equal(qty), "consultar un nivel nunca tocado debe dar 0")
}

func TestMovementHistory_OrdenYPaginacion(t *testing.T) {
	svc, _ := newFixture()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Increase(ctx, manualAdjust(dec("1")))
		require.NoError(t, err)
	}

	movs, err := svc.MovementHistory(ctx, companyID, productID, outletID, nil, nil, 3, 0)
	require.NoError(t, err)
	require.Len(t, movs, 3)
	// Orden de creación ascendente: el primero es el asiento 0 -> 1.
	assert.True(t, decimal.Zero.Equal(movs[0].QuantityBefore))
	assert.True(t, dec("1").Equal(movs[0].QuantityAfter))

	rest, err := svc.MovementHistory(ctx, companyID, productID, outletID, nil, nil, 10, 3)
	require.NoError(t, err)
	assert.Len(t, rest, 2)
}
