package httpapi

import (
	"context"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/seenimoa/bonosportal/pkg/models"
)

const (
	catalogPath       = "/api/v1/inversor/bonos/catalogo"
	investorBondsPath = "/api/v1/inversor/bonos"
)

// InvestorBondsAPI implements ports.InvestorBondRepository. Catalog list
// responses are cached for a short TTL; cash flows and details are not.
type InvestorBondsAPI struct {
	c     *Client
	cache *cache.Cache
}

// NewInvestorBondsAPI creates the catalog adapter. A zero ttl disables the
// list cache.
func NewInvestorBondsAPI(c *Client, ttl time.Duration) *InvestorBondsAPI {
	a := &InvestorBondsAPI{c: c}
	if ttl > 0 {
		a.cache = cache.New(ttl, 2*ttl)
	}
	return a
}

// Invalidate drops all cached catalog lists.
func (a *InvestorBondsAPI) Invalidate() {
	if a.cache != nil {
		a.cache.Flush()
	}
}

func (a *InvestorBondsAPI) Catalog(ctx context.Context) ([]models.Bond, error) {
	return a.list(ctx, catalogPath, nil)
}

func (a *InvestorBondsAPI) CatalogDetail(ctx context.Context, id int64) (*models.Bond, error) {
	var b models.Bond
	if err := a.c.get(ctx, bondPath(catalogPath, id), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (a *InvestorBondsAPI) ByCurrency(ctx context.Context, moneda string) ([]models.Bond, error) {
	return a.list(ctx, catalogPath+"/moneda/"+url.PathEscape(moneda), nil)
}

// ByRate sends only the bounds that are set.
func (a *InvestorBondsAPI) ByRate(ctx context.Context, filter models.RateFilter) ([]models.Bond, error) {
	pairs := QueryPairs(
		Opt("tasaMinima", filter.TasaMinima),
		Opt("tasaMaxima", filter.TasaMaxima),
	)
	return a.list(ctx, catalogPath+"/tasa", pairs)
}

func (a *InvestorBondsAPI) CashFlow(ctx context.Context, id int64) ([]models.CashFlowEntry, error) {
	var rows []cashFlowWire
	if err := a.c.get(ctx, bondPath(investorBondsPath, id)+"/flujo", nil, &rows); err != nil {
		return nil, err
	}
	return normalizeCashFlow(rows), nil
}

func (a *InvestorBondsAPI) list(ctx context.Context, path string, pairs []Pair) ([]models.Bond, error) {
	key := path
	if q := Encode(pairs); q != "" {
		key += "?" + q
	}
	if a.cache != nil {
		if v, ok := a.cache.Get(key); ok {
			return append([]models.Bond(nil), v.([]models.Bond)...), nil
		}
	}

	var bonds []models.Bond
	if err := a.c.get(ctx, path, pairs, &bonds); err != nil {
		return nil, err
	}
	if a.cache != nil {
		a.cache.SetDefault(key, append([]models.Bond(nil), bonds...))
	}
	return bonds, nil
}
