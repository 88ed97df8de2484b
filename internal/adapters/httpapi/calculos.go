package httpapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/seenimoa/bonosportal/pkg/models"
)

const calculosPath = "/api/v1/inversor/calculos"

// CalculationsAPI implements ports.CalculationRepository. Every response is
// flattened from the backend's nested or flat shape before it is returned.
type CalculationsAPI struct {
	c *Client
}

// NewCalculationsAPI creates the investor calculation adapter.
func NewCalculationsAPI(c *Client) *CalculationsAPI { return &CalculationsAPI{c: c} }

func (a *CalculationsAPI) List(ctx context.Context) ([]models.CalculoInversion, error) {
	var rows []calculoWire
	if err := a.c.get(ctx, calculosPath, nil, &rows); err != nil {
		return nil, err
	}
	out := make([]models.CalculoInversion, len(rows))
	for i := range rows {
		out[i] = *a.normalize(calculosPath, &rows[i])
	}
	return out, nil
}

func (a *CalculationsAPI) Create(ctx context.Context, req models.CreateCalculoRequest) (*models.CalculoInversion, error) {
	return a.postCalculo(ctx, calculosPath, req)
}

func (a *CalculationsAPI) Get(ctx context.Context, id int64) (*models.CalculoInversion, error) {
	path := bondPath(calculosPath, id)
	var w calculoWire
	if err := a.c.get(ctx, path, nil, &w); err != nil {
		return nil, err
	}
	return a.normalize(path, &w), nil
}

func (a *CalculationsAPI) Delete(ctx context.Context, id int64) error {
	return a.c.delete(ctx, bondPath(calculosPath, id))
}

// --- Enriched calculations ---

type enrichedRequest struct {
	BonoID       int64    `json:"bonoId"`
	PrecioCompra *float64 `json:"precioCompra,omitempty"`
	TasaEsperada *float64 `json:"tasaEsperada,omitempty"`
}

func (a *CalculationsAPI) TREAEnriched(ctx context.Context, bonoID int64, precioCompra float64) (*models.CalculoInversion, error) {
	return a.postCalculo(ctx, calculosPath+"/trea-enriquecido", enrichedRequest{BonoID: bonoID, PrecioCompra: &precioCompra})
}

func (a *CalculationsAPI) TCEAEnriched(ctx context.Context, bonoID int64) (*models.CalculoInversion, error) {
	return a.postCalculo(ctx, calculosPath+"/tcea-enriquecido", enrichedRequest{BonoID: bonoID})
}

func (a *CalculationsAPI) DurationEnriched(ctx context.Context, bonoID int64) (*models.CalculoInversion, error) {
	return a.postCalculo(ctx, calculosPath+"/duracion-enriquecida", enrichedRequest{BonoID: bonoID})
}

func (a *CalculationsAPI) ConvexityEnriched(ctx context.Context, bonoID int64) (*models.CalculoInversion, error) {
	return a.postCalculo(ctx, calculosPath+"/convexidad-enriquecida", enrichedRequest{BonoID: bonoID})
}

func (a *CalculationsAPI) MaxPriceEnriched(ctx context.Context, bonoID int64, tasaEsperada float64) (*models.CalculoInversion, error) {
	return a.postCalculo(ctx, calculosPath+"/precio-maximo-enriquecido", enrichedRequest{BonoID: bonoID, TasaEsperada: &tasaEsperada})
}

// FullAnalysis runs the complete analysis. precioCompra is sent only when
// set; the backend needs it for VAN.
func (a *CalculationsAPI) FullAnalysis(ctx context.Context, bonoID int64, tasaEsperada float64, precioCompra *float64) (*models.CalculoInversion, error) {
	return a.postCalculo(ctx, calculosPath+"/analisis-completo", enrichedRequest{
		BonoID:       bonoID,
		TasaEsperada: &tasaEsperada,
		PrecioCompra: precioCompra,
	})
}

func (a *CalculationsAPI) Standalone(ctx context.Context, req models.StandaloneCalculoRequest) (*models.CalculoInversion, error) {
	return a.postCalculo(ctx, calculosPath+"/calculo-enriquecido-independiente", req)
}

// InvestorCashFlow returns the backend payload unmodified.
func (a *CalculationsAPI) InvestorCashFlow(ctx context.Context, bonoID int64, precioCompra float64) (json.RawMessage, error) {
	var raw json.RawMessage
	body := struct {
		PrecioCompra float64 `json:"precioCompra"`
	}{precioCompra}
	path := fmt.Sprintf("%s/%d/flujo-inversionista", investorBondsPath, bonoID)
	if err := a.c.post(ctx, path, body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (a *CalculationsAPI) postCalculo(ctx context.Context, path string, body any) (*models.CalculoInversion, error) {
	var w calculoWire
	if err := a.c.post(ctx, path, body, &w); err != nil {
		return nil, err
	}
	return a.normalize(path, &w), nil
}

func (a *CalculationsAPI) normalize(path string, w *calculoWire) *models.CalculoInversion {
	shape := w.shape()
	level := zerolog.DebugLevel
	if shape == shapeMixed {
		// Both shapes at once means the backend changed under us.
		level = zerolog.WarnLevel
	}
	a.c.log.WithLevel(level).Str("path", path).Str("shape", shape).Int64("id", w.ID).Msg("calculation response")
	return w.calculo()
}
