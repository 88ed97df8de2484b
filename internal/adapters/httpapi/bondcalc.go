package httpapi

import (
	"context"
	"fmt"

	"github.com/seenimoa/bonosportal/pkg/models"
)

// BondCalculationsAPI implements ports.BondCalculationRepository over
// /api/bonos/{id}/calculos.
type BondCalculationsAPI struct {
	c *Client
}

// NewBondCalculationsAPI creates the per-bond calculation adapter.
func NewBondCalculationsAPI(c *Client) *BondCalculationsAPI { return &BondCalculationsAPI{c: c} }

func calcPath(id int64, name string) string {
	return fmt.Sprintf("/api/bonos/%d/calculos/%s", id, name)
}

func (a *BondCalculationsAPI) CashFlow(ctx context.Context, id int64, tasaDescuento *float64) ([]models.CashFlowEntry, error) {
	var rows []cashFlowWire
	if err := a.c.get(ctx, calcPath(id, "flujo-caja"), QueryPairs(Opt("tasaDescuento", tasaDescuento)), &rows); err != nil {
		return nil, err
	}
	return normalizeCashFlow(rows), nil
}

func (a *BondCalculationsAPI) Metrics(ctx context.Context, id int64, tasaMercado, cambioPuntos *float64) (*models.DuracionConvexidad, error) {
	pairs := QueryPairs(
		Opt("tasaMercado", tasaMercado),
		Opt("cambioPuntosPorcentuales", cambioPuntos),
	)
	var out models.DuracionConvexidad
	if err := a.c.get(ctx, calcPath(id, "metricas"), pairs, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *BondCalculationsAPI) Price(ctx context.Context, id int64, tasaMercado *float64) (*models.PrecioMercado, error) {
	var out models.PrecioMercado
	if err := a.c.get(ctx, calcPath(id, "precio"), QueryPairs(Opt("tasaMercado", tasaMercado)), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *BondCalculationsAPI) TCEA(ctx context.Context, id int64, costosEmision float64) (*models.Rendimiento, error) {
	var out models.Rendimiento
	if err := a.c.get(ctx, calcPath(id, "tcea"), QueryPairs(Req("costosEmision", costosEmision)), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *BondCalculationsAPI) TREA(ctx context.Context, id int64, precioCompra float64) (*models.Rendimiento, error) {
	var out models.Rendimiento
	if err := a.c.get(ctx, calcPath(id, "trea"), QueryPairs(Req("precioCompra", precioCompra)), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *BondCalculationsAPI) MarketPrice(ctx context.Context, id int64, tasaMercado *float64) (*models.PrecioMercado, error) {
	var out models.PrecioMercado
	if err := a.c.get(ctx, calcPath(id, "precio-mercado"), QueryPairs(Opt("tasaMercado", tasaMercado)), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
