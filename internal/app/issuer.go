// Package app holds the application services behind the CLI and gateway.
// Services call the repository ports, keep the last loaded list, and own
// the derived-metrics cache for the lists they show.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/bonosportal/internal/apierr"
	"github.com/seenimoa/bonosportal/internal/derived"
	"github.com/seenimoa/bonosportal/internal/ports"
	"github.com/seenimoa/bonosportal/pkg/models"
)

// Options are shared by the services.
type Options struct {
	BatchLimit int
	Now        func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// IssuerBonds manages the signed-in issuer's bonds.
type IssuerBonds struct {
	repo  ports.IssuerBondRepository
	cache *derived.Cache
	log   zerolog.Logger
	opts  Options

	mu    sync.RWMutex
	bonds []models.Bond
}

// NewIssuerBonds creates the issuer service.
func NewIssuerBonds(repo ports.IssuerBondRepository, cache *derived.Cache, log zerolog.Logger, opts Options) *IssuerBonds {
	return &IssuerBonds{
		repo:  repo,
		cache: cache,
		log:   log.With().Str("component", "issuer").Logger(),
		opts:  opts,
	}
}

// Load fetches the issuer's bonds and keeps them for View and Stats.
func (s *IssuerBonds) Load(ctx context.Context) ([]models.Bond, error) {
	bonds, err := s.repo.ListMine(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.bonds = bonds
	s.mu.Unlock()
	s.log.Debug().Int("count", len(bonds)).Msg("bonds loaded")
	return append([]models.Bond(nil), bonds...), nil
}

// Bonds returns the last loaded list.
func (s *IssuerBonds) Bonds() []models.Bond {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Bond(nil), s.bonds...)
}

// View filters and sorts the loaded bonds and attaches derived metrics.
func (s *IssuerBonds) View(f Filter) []BondView {
	return buildView(s.Bonds(), f, s.cache, s.opts.now(), s.log)
}

// Stats summarizes the loaded bonds.
func (s *IssuerBonds) Stats() Stats {
	return ComputeStats(s.Bonds(), s.opts.now())
}

// AvailableCurrencies lists the currencies of the loaded bonds.
func (s *IssuerBonds) AvailableCurrencies() []string {
	return AvailableCurrencies(s.Bonds())
}

func (s *IssuerBonds) Get(ctx context.Context, id int64) (*models.Bond, error) {
	return s.repo.GetMine(ctx, id)
}

// Create validates req before sending it.
func (s *IssuerBonds) Create(ctx context.Context, req models.CreateBondRequest) (*models.Bond, error) {
	if err := apierr.Validate(req.Validate()); err != nil {
		return nil, err
	}
	b, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.bonds = append(s.bonds, *b)
	s.mu.Unlock()
	s.log.Info().Int64("id", b.ID).Str("nombre", b.Nombre).Msg("bond created")
	return b, nil
}

// Update validates req before sending it.
func (s *IssuerBonds) Update(ctx context.Context, id int64, req models.CreateBondRequest) (*models.Bond, error) {
	if err := apierr.Validate(req.Validate()); err != nil {
		return nil, err
	}
	b, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	for i := range s.bonds {
		if s.bonds[i].ID == id {
			s.bonds[i] = *b
		}
	}
	s.mu.Unlock()
	return b, nil
}

func (s *IssuerBonds) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.forget(id)
	return nil
}

// DeleteMany deletes ids concurrently and waits for all of them. Deletions
// that succeeded stay applied even when others fail; the failures come
// back as one *BatchError.
func (s *IssuerBonds) DeleteMany(ctx context.Context, ids []int64) ([]int64, error) {
	deleted, err := runBatch(ctx, ids, s.opts.BatchLimit, s.repo.Delete)
	s.forget(deleted...)
	if err != nil {
		s.log.Warn().Err(err).Int("deleted", len(deleted)).Msg("batch delete partially failed")
	} else {
		s.log.Info().Int("deleted", len(deleted)).Msg("batch delete done")
	}
	return deleted, err
}

func (s *IssuerBonds) CashFlow(ctx context.Context, id int64) ([]models.CashFlowEntry, error) {
	return s.repo.CashFlow(ctx, id)
}

func (s *IssuerBonds) forget(ids ...int64) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.bonds[:0:0]
	for _, b := range s.bonds {
		if !drop[b.ID] {
			kept = append(kept, b)
		}
	}
	s.bonds = kept
}
