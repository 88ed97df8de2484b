package app

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/bonosportal/internal/apierr"
	"github.com/seenimoa/bonosportal/pkg/models"
)

// fakeGeneralRepo records the arguments it receives.
type fakeGeneralRepo struct {
	calls   []string
	created []models.CreateGeneralBondRequest
}

func (f *fakeGeneralRepo) List(context.Context) ([]models.GeneralBond, error) {
	f.calls = append(f.calls, "list")
	return []models.GeneralBond{{ID: "1", Nombre: "Tesoro"}}, nil
}

func (f *fakeGeneralRepo) Create(_ context.Context, req models.CreateGeneralBondRequest) (*models.GeneralBond, error) {
	f.created = append(f.created, req)
	return &models.GeneralBond{ID: "9", Nombre: req.Nombre}, nil
}

func (f *fakeGeneralRepo) Get(_ context.Context, id string) (*models.GeneralBond, error) {
	f.calls = append(f.calls, "get "+id)
	return &models.GeneralBond{ID: models.FlexID(id)}, nil
}

func (f *fakeGeneralRepo) Update(_ context.Context, id string, req models.CreateGeneralBondRequest) (*models.GeneralBond, error) {
	f.calls = append(f.calls, "update "+id)
	return &models.GeneralBond{ID: models.FlexID(id), Nombre: req.Nombre}, nil
}

func (f *fakeGeneralRepo) Delete(_ context.Context, id string) error {
	f.calls = append(f.calls, "delete "+id)
	return nil
}

func (f *fakeGeneralRepo) Search(_ context.Context, nombre string) ([]models.GeneralBond, error) {
	f.calls = append(f.calls, "search "+nombre)
	return nil, nil
}

func (f *fakeGeneralRepo) ByCurrency(_ context.Context, moneda string) ([]models.GeneralBond, error) {
	f.calls = append(f.calls, "moneda "+moneda)
	return nil, nil
}

func validGeneralRequest() models.CreateGeneralBondRequest {
	return models.CreateBondRequest{
		Nombre:             "Bono Verde",
		ValorNominal:       1000,
		TasaCupon:          6.5,
		PlazoAnios:         5,
		FrecuenciaPagos:    2,
		Moneda:             " pen ",
		FechaEmision:       "2024-03-15",
		MetodoAmortizacion: models.Frances,
	}.GeneralRequest()
}

func TestGeneralBondsDelegates(t *testing.T) {
	repo := &fakeGeneralRepo{}
	svc := NewGeneralBonds(repo, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.List(ctx)
	require.NoError(t, err)
	_, err = svc.Get(ctx, " 7 ")
	require.NoError(t, err)
	_, err = svc.Search(ctx, "Tesoro")
	require.NoError(t, err)
	_, err = svc.ByCurrency(ctx, "usd")
	require.NoError(t, err)
	_, err = svc.Update(ctx, "7", validGeneralRequest())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "7"))

	assert.Equal(t, []string{"list", "get 7", "search Tesoro", "moneda USD", "update 7", "delete 7"}, repo.calls)
}

func TestGeneralBondsCreateValidates(t *testing.T) {
	repo := &fakeGeneralRepo{}
	svc := NewGeneralBonds(repo, zerolog.Nop())

	req := validGeneralRequest()
	assert.Equal(t, "PEN", req.Moneda)
	b, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.FlexID("9"), b.ID)

	bad := req
	bad.Nombre = ""
	bad.Moneda = ""
	_, err = svc.Create(context.Background(), bad)
	assert.ErrorIs(t, err, apierr.ErrValidation)
	assert.Len(t, repo.created, 1, "invalid requests are never sent")
}

func TestGeneralBondsRejectBlankInput(t *testing.T) {
	repo := &fakeGeneralRepo{}
	svc := NewGeneralBonds(repo, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Search(ctx, " ")
	assert.ErrorIs(t, err, apierr.ErrValidation)
	_, err = svc.ByCurrency(ctx, "")
	assert.ErrorIs(t, err, apierr.ErrValidation)
	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, apierr.ErrValidation)
	assert.ErrorIs(t, svc.Delete(ctx, "\t"), apierr.ErrValidation)
	assert.Empty(t, repo.calls)
}
