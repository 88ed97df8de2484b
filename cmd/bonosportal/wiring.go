package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/seenimoa/bonosportal/internal/adapters/httpapi"
	"github.com/seenimoa/bonosportal/internal/app"
	"github.com/seenimoa/bonosportal/internal/config"
	"github.com/seenimoa/bonosportal/internal/derived"
	"github.com/seenimoa/bonosportal/internal/guard"
	"github.com/seenimoa/bonosportal/internal/logging"
	"github.com/seenimoa/bonosportal/internal/pipeline"
	"github.com/seenimoa/bonosportal/internal/ports"
	"github.com/seenimoa/bonosportal/internal/session"
	"github.com/seenimoa/bonosportal/internal/storage"
	"github.com/seenimoa/bonosportal/pkg/models"
)

// wiring holds every component a command may use.
type wiring struct {
	log     zerolog.Logger
	kv      storage.KV
	session *session.Store

	investorAPI *httpapi.InvestorBondsAPI
	users       *httpapi.UsersAPI
	health      ports.HealthChecker

	issuer  *app.IssuerBonds
	catalog *app.Catalog
	calcs   *app.Calculations
	general *app.GeneralBonds
	loading app.Loading
}

func newWiring(cfg *config.Config) (*wiring, error) {
	log := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	kv, err := openStore(cfg.Session)
	if err != nil {
		return nil, err
	}

	pipe := pipeline.New(nil, log, pipeline.Options{
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		RateBurst: cfg.API.RateBurst,
	})
	client := httpapi.NewClient(cfg.API.BaseURL, pipe, log)

	store := session.New(httpapi.NewAuthAPI(client), kv, logging.Component(log, "session"))
	pipe.SetTokenSource(store)

	opts := app.Options{BatchLimit: cfg.API.BatchLimit}
	investorAPI := httpapi.NewInvestorBondsAPI(client, cfg.Cache.CatalogTTL)
	issuer := app.NewIssuerBonds(httpapi.NewIssuerBondsAPI(client), derived.New(cfg.Cache.DerivedWindow), log, opts)
	catalog := app.NewCatalog(investorAPI, httpapi.NewBondCalculationsAPI(client), derived.New(cfg.Cache.DerivedWindow), log, opts)

	return &wiring{
		log:         log,
		kv:          kv,
		session:     store,
		investorAPI: investorAPI,
		users:       httpapi.NewUsersAPI(client),
		health:      client,
		issuer:      issuer,
		catalog:     catalog,
		calcs:       app.NewCalculations(httpapi.NewCalculationsAPI(client), log, opts),
		general:     app.NewGeneralBonds(httpapi.NewGeneralBondsAPI(client), log),
	}, nil
}

func openStore(cfg config.SessionConfig) (storage.KV, error) {
	if cfg.Ephemeral {
		return storage.NewMemory(), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	kv, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return kv, nil
}

// Close releases the session store.
func (w *wiring) Close() error {
	return w.kv.Close()
}

// require checks the guard against the local session the way the portal
// guards its pages.
func (w *wiring) require(g guard.Guard) error {
	d := g.Check(w.session)
	if d.Allow {
		return nil
	}
	if !w.session.IsAuthenticated() {
		return errors.New("no hay sesión activa; ejecuta 'bonosportal login'")
	}
	return fmt.Errorf("la sesión actual no tiene el rol %s", g.Role)
}

// track runs fn with the loading flag raised.
func (w *wiring) track(ctx context.Context, what string, fn func(context.Context) error) error {
	w.log.Debug().Str("what", what).Msg("loading")
	return w.loading.Track(func() error { return fn(ctx) })
}

// backendHealth checks that the backend answers.
func (w *wiring) backendHealth(ctx context.Context) (*models.BackendHealth, error) {
	var h *models.BackendHealth
	err := w.track(ctx, "backend health", func(ctx context.Context) error {
		var err error
		h, err = w.health.Health(ctx)
		return err
	})
	return h, err
}
