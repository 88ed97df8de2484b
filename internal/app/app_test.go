package app

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/bonosportal/internal/apierr"
	"github.com/seenimoa/bonosportal/internal/derived"
	"github.com/seenimoa/bonosportal/internal/ports"
	"github.com/seenimoa/bonosportal/pkg/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedNow() time.Time { return date(2024, 3, 15) }

func bond(id int64, nombre, moneda string, vn, tasa float64, plazo int, issue time.Time) models.Bond {
	return models.Bond{
		ID:           id,
		Nombre:       nombre,
		ValorNominal: vn,
		TasaCupon:    tasa,
		PlazoAnios:   plazo,
		FechaEmision: models.NewFlexDate(issue),
		Moneda:       &models.Moneda{Codigo: moneda},
	}
}

func sampleBonds() []models.Bond {
	return []models.Bond{
		bond(1, "Bono Verde", "PEN", 1000, 5, 5, date(2021, 6, 1)),
		bond(2, "Alfa Corporativo", "USD", 5000, 8, 3, date(2023, 1, 10)),
		bond(3, "bono municipal", "PEN", 2000, 6.5, 2, date(2020, 2, 1)),
	}
}

// fakeIssuerRepo records deletes and fails the ids in failOn.
type fakeIssuerRepo struct {
	mu      sync.Mutex
	bonds   []models.Bond
	failOn  map[int64]bool
	deleted []int64
	created []models.CreateBondRequest
}

func (f *fakeIssuerRepo) ListMine(context.Context) ([]models.Bond, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Bond(nil), f.bonds...), nil
}

func (f *fakeIssuerRepo) Create(_ context.Context, req models.CreateBondRequest) (*models.Bond, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	return &models.Bond{ID: 99, Nombre: req.Nombre}, nil
}

func (f *fakeIssuerRepo) GetMine(_ context.Context, id int64) (*models.Bond, error) {
	return nil, &apierr.Error{Class: apierr.NotFound, Status: 404}
}

func (f *fakeIssuerRepo) Update(_ context.Context, id int64, req models.CreateBondRequest) (*models.Bond, error) {
	return &models.Bond{ID: id, Nombre: req.Nombre}, nil
}

func (f *fakeIssuerRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[id] {
		return &apierr.Error{Class: apierr.Server, Status: 500}
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIssuerRepo) CashFlow(context.Context, int64) ([]models.CashFlowEntry, error) {
	return nil, nil
}

func newIssuer(repo *fakeIssuerRepo) *IssuerBonds {
	return NewIssuerBonds(repo, derived.New(time.Minute), zerolog.Nop(), Options{BatchLimit: 2, Now: fixedNow})
}

// ── Batch delete ──

func TestDeleteManyPartialFailure(t *testing.T) {
	repo := &fakeIssuerRepo{bonds: sampleBonds(), failOn: map[int64]bool{2: true}}
	svc := newIssuer(repo)
	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	deleted, err := svc.DeleteMany(context.Background(), []int64{1, 2, 3})
	require.Error(t, err)

	var batch *BatchError
	require.True(t, errors.As(err, &batch))
	assert.Equal(t, 3, batch.Total)
	require.Len(t, batch.Failed, 1)
	assert.Equal(t, int64(2), batch.Failed[0].ID)
	assert.ErrorIs(t, err, apierr.ErrServer)

	// No rollback: the other two stay deleted.
	assert.Equal(t, []int64{1, 3}, deleted)
	assert.ElementsMatch(t, []int64{1, 3}, repo.deleted)

	remaining := svc.Bonds()
	require.Len(t, remaining, 1)
	assert.Equal(t, int64(2), remaining[0].ID)
}

func TestDeleteManyAllSucceed(t *testing.T) {
	repo := &fakeIssuerRepo{bonds: sampleBonds()}
	svc := newIssuer(repo)
	deleted, err := svc.DeleteMany(context.Background(), []int64{3, 1})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, deleted)
}

// ── Validation ──

func TestCreateRejectsInvalidRequest(t *testing.T) {
	repo := &fakeIssuerRepo{}
	svc := newIssuer(repo)

	_, err := svc.Create(context.Background(), models.CreateBondRequest{Nombre: ""})
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrValidation)
	assert.Empty(t, repo.created, "invalid input never reaches the backend")

	valid := models.CreateBondRequest{
		Nombre:             "Bono Nuevo",
		ValorNominal:       1000,
		TasaCupon:          6,
		PlazoAnios:         5,
		FrecuenciaPagos:    2,
		Moneda:             "PEN",
		FechaEmision:       "2024-04-01",
		TasaDescuento:      7,
		MetodoAmortizacion: models.Frances,
	}
	b, err := svc.Create(context.Background(), valid)
	require.NoError(t, err)
	assert.Equal(t, int64(99), b.ID)
	assert.Len(t, svc.Bonds(), 1)
}

// ── View / filter ──

func TestViewDefaultOrderAndMetrics(t *testing.T) {
	svc := newIssuer(&fakeIssuerRepo{bonds: sampleBonds()})
	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	view := svc.View(DefaultFilter())
	require.Len(t, view, 3)
	assert.Equal(t, []int64{2, 1, 3}, []int64{view[0].ID, view[1].ID, view[2].ID})

	// Bono 3 matured on 2022-02-01.
	assert.Equal(t, derived.Matured, view[2].Status)
	assert.Equal(t, 0, view[2].Metrics.DaysToMaturity)
	assert.Equal(t, 100.0, view[2].Metrics.ProgressPercentage)
	assert.Equal(t, derived.Active, view[0].Status)
}

func TestFilterApply(t *testing.T) {
	bonds := sampleBonds()

	got := Filter{Search: "BONO"}.Apply(bonds)
	assert.Len(t, got, 2)

	got = Filter{Moneda: "PEN", TasaMin: models.Float(6)}.Apply(bonds)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].ID)

	got = Filter{PlazoMin: Int(3), PlazoMax: Int(4)}.Apply(bonds)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)

	got = Filter{SortBy: SortNombre, SortOrder: Asc}.Apply(bonds)
	assert.Equal(t, "Alfa Corporativo", got[0].Nombre)
	assert.Equal(t, "bono municipal", got[1].Nombre)

	got = Filter{SortBy: SortValorNominal, SortOrder: Desc}.Apply(bonds)
	assert.Equal(t, int64(2), got[0].ID)

	assert.Equal(t, "Bono Verde", bonds[0].Nombre, "input untouched")
}

// ── Stats ──

func TestComputeStats(t *testing.T) {
	st := ComputeStats(sampleBonds(), fixedNow())
	assert.Equal(t, 3, st.TotalBonos)
	assert.Equal(t, 8000.0, st.ValorTotal)
	assert.InDelta(t, 6.5, st.PromedioTasa, 1e-9)
	assert.Equal(t, 2, st.BonosActivos)
	require.NotNil(t, st.ProximoVencimiento)
	assert.Equal(t, date(2026, 1, 10), *st.ProximoVencimiento)
	// 1000*5%*5 + 5000*8%*3 + 2000*6.5%*2
	assert.InDelta(t, 250.0+1200.0+260.0, st.RentabilidadTotal, 1e-9)

	assert.Equal(t, Stats{}, ComputeStats(nil, fixedNow()))
}

func TestAvailableCurrencies(t *testing.T) {
	bonds := append(sampleBonds(), models.Bond{ID: 4})
	assert.Equal(t, []string{"PEN", "USD"}, AvailableCurrencies(bonds))
}

// ── Calculations ──

// fakeCalcRepo implements the calls the service makes; the embedded nil
// port panics on anything else.
type fakeCalcRepo struct {
	ports.CalculationRepository
	list    []models.CalculoInversion
	created []models.CreateCalculoRequest
}

func (f *fakeCalcRepo) List(context.Context) ([]models.CalculoInversion, error) {
	return f.list, nil
}

func (f *fakeCalcRepo) Create(_ context.Context, req models.CreateCalculoRequest) (*models.CalculoInversion, error) {
	f.created = append(f.created, req)
	return &models.CalculoInversion{ID: 50, BonoID: req.BonoID, TasaEsperada: &req.TasaEsperada}, nil
}

func (f *fakeCalcRepo) Get(_ context.Context, id int64) (*models.CalculoInversion, error) {
	for i := range f.list {
		if f.list[i].ID == id {
			return &f.list[i], nil
		}
	}
	return nil, &apierr.Error{Class: apierr.NotFound, Status: 404}
}

func (f *fakeCalcRepo) Delete(_ context.Context, id int64) error {
	if id == 2 {
		return &apierr.Error{Class: apierr.NotFound, Status: 404}
	}
	return nil
}

func sampleCalcs() []models.CalculoInversion {
	return []models.CalculoInversion{
		{ID: 1, BonoID: 10, BonoNombre: "Bono Verde", FechaCalculo: "2024-03-01T10:00:00", TasaEsperada: models.Float(7), TREA: models.Float(0.065)},
		{ID: 2, BonoID: 11, TipoAnalisis: models.AnalisisCalculoBackend, FechaCalculo: "2024-03-02"},
		{ID: 3, BonoID: 10, TipoAnalisis: models.AnalisisFlujoCaja},
	}
}

func newCalcs(repo *fakeCalcRepo) *Calculations {
	return NewCalculations(repo, zerolog.Nop(), Options{})
}

func TestHistoryDefaultsTipoAndFilters(t *testing.T) {
	svc := newCalcs(&fakeCalcRepo{list: sampleCalcs()})

	all, err := svc.History(context.Background(), HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, models.AnalisisTREA, all[0].Tipo)

	trea, err := svc.History(context.Background(), HistoryFilter{Tipo: models.AnalisisTREA})
	require.NoError(t, err)
	require.Len(t, trea, 1)
	assert.Equal(t, int64(1), trea[0].ID)

	byBond, err := svc.History(context.Background(), HistoryFilter{BonoID: 10})
	require.NoError(t, err)
	assert.Len(t, byBond, 2)
}

func TestCalculationCreateValidates(t *testing.T) {
	repo := &fakeCalcRepo{}
	svc := newCalcs(repo)
	_, err := svc.Create(context.Background(), models.CreateCalculoRequest{})
	assert.ErrorIs(t, err, apierr.ErrValidation)
	assert.Empty(t, repo.created)
}

func TestDuplicate(t *testing.T) {
	repo := &fakeCalcRepo{list: sampleCalcs()}
	svc := newCalcs(repo)

	dup, err := svc.Duplicate(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), dup.BonoID)
	require.Len(t, repo.created, 1)
	assert.Equal(t, models.CreateCalculoRequest{BonoID: 10, TasaEsperada: 7}, repo.created[0])

	_, err = svc.Duplicate(context.Background(), 42)
	assert.ErrorIs(t, err, apierr.ErrNotFound)
}

func TestCalculationDeleteMany(t *testing.T) {
	svc := newCalcs(&fakeCalcRepo{})
	deleted, err := svc.DeleteMany(context.Background(), []int64{1, 2, 3})
	assert.Equal(t, []int64{1, 3}, deleted)
	var batch *BatchError
	require.True(t, errors.As(err, &batch))
	assert.Equal(t, int64(2), batch.Failed[0].ID)
	assert.ErrorIs(t, err, apierr.ErrNotFound)
}

func TestWriteHistoryCSV(t *testing.T) {
	svc := newCalcs(&fakeCalcRepo{list: sampleCalcs()[:2]})
	entries, err := svc.History(context.Background(), HistoryFilter{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteHistoryCSV(&buf, entries))
	want := "ID,Tipo,Fecha,Bono,Tasa Esperada,TREA,Precio Máximo\n" +
		"1,TREA,2024-03-01,Bono Verde,7,0.065,\n" +
		"2,CALCULO_BACKEND,2024-03-02,,,,\n"
	assert.Equal(t, want, buf.String())
}

// ── Loading ──

func TestLoadingClearedOnBothPaths(t *testing.T) {
	var l Loading
	assert.False(t, l.Active())

	err := l.Track(func() error {
		assert.True(t, l.Active())
		return nil
	})
	require.NoError(t, err)
	assert.False(t, l.Active())

	boom := errors.New("boom")
	err = l.Track(func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, l.Active())
}
