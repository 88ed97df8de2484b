package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/seenimoa/bonosportal/internal/derived"
	"github.com/seenimoa/bonosportal/internal/ports"
	"github.com/seenimoa/bonosportal/pkg/models"
)

// Catalog is the investor's view of published bonds. Reads go straight to
// the port; Load keeps the full catalog for View.
type Catalog struct {
	ports.InvestorBondRepository
	calcs ports.BondCalculationRepository
	cache *derived.Cache
	log   zerolog.Logger
	opts  Options

	mu    sync.RWMutex
	bonds []models.Bond
}

// NewCatalog creates the catalog service.
func NewCatalog(repo ports.InvestorBondRepository, calcs ports.BondCalculationRepository, cache *derived.Cache, log zerolog.Logger, opts Options) *Catalog {
	return &Catalog{
		InvestorBondRepository: repo,
		calcs:                  calcs,
		cache:                  cache,
		log:                    log.With().Str("component", "catalog").Logger(),
		opts:                   opts,
	}
}

// Load fetches the whole catalog.
func (c *Catalog) Load(ctx context.Context) ([]models.Bond, error) {
	bonds, err := c.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.bonds = bonds
	c.mu.Unlock()
	return append([]models.Bond(nil), bonds...), nil
}

// View filters and sorts the loaded catalog and attaches derived metrics.
func (c *Catalog) View(f Filter) []BondView {
	c.mu.RLock()
	bonds := append([]models.Bond(nil), c.bonds...)
	c.mu.RUnlock()
	return buildView(bonds, f, c.cache, c.opts.now(), c.log)
}

// AvailableCurrencies lists the currencies of the loaded catalog.
func (c *Catalog) AvailableCurrencies() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return AvailableCurrencies(c.bonds)
}

// Calculations exposes the per-bond calculation port.
func (c *Catalog) Calculations() ports.BondCalculationRepository {
	return c.calcs
}
