package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/seenimoa/bonosportal/internal/apierr"
	"github.com/seenimoa/bonosportal/internal/ports"
	"github.com/seenimoa/bonosportal/pkg/models"
)

// GeneralBonds administers the general bond registry.
type GeneralBonds struct {
	repo ports.GeneralBondRepository
	log  zerolog.Logger
}

// NewGeneralBonds creates the general registry service.
func NewGeneralBonds(repo ports.GeneralBondRepository, log zerolog.Logger) *GeneralBonds {
	return &GeneralBonds{repo: repo, log: log.With().Str("component", "general").Logger()}
}

func (s *GeneralBonds) List(ctx context.Context) ([]models.GeneralBond, error) {
	return s.repo.List(ctx)
}

func (s *GeneralBonds) Get(ctx context.Context, id string) (*models.GeneralBond, error) {
	if err := requireText("id", id); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, strings.TrimSpace(id))
}

// Search matches by name. A blank name is rejected before any request.
func (s *GeneralBonds) Search(ctx context.Context, nombre string) ([]models.GeneralBond, error) {
	if err := requireText("nombre", nombre); err != nil {
		return nil, err
	}
	bonds, err := s.repo.Search(ctx, nombre)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Str("nombre", nombre).Int("count", len(bonds)).Msg("bonds searched")
	return bonds, nil
}

// ByCurrency lists the bonds in moneda, an ISO code in any case.
func (s *GeneralBonds) ByCurrency(ctx context.Context, moneda string) ([]models.GeneralBond, error) {
	if err := requireText("moneda", moneda); err != nil {
		return nil, err
	}
	return s.repo.ByCurrency(ctx, strings.ToUpper(strings.TrimSpace(moneda)))
}

// Create validates req before sending it.
func (s *GeneralBonds) Create(ctx context.Context, req models.CreateGeneralBondRequest) (*models.GeneralBond, error) {
	if err := apierr.Validate(req.Validate()); err != nil {
		return nil, err
	}
	b, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("id", string(b.ID)).Str("nombre", b.Nombre).Msg("general bond created")
	return b, nil
}

// Update validates req before sending it.
func (s *GeneralBonds) Update(ctx context.Context, id string, req models.CreateGeneralBondRequest) (*models.GeneralBond, error) {
	if err := requireText("id", id); err != nil {
		return nil, err
	}
	if err := apierr.Validate(req.Validate()); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, strings.TrimSpace(id), req)
}

func (s *GeneralBonds) Delete(ctx context.Context, id string) error {
	if err := requireText("id", id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, strings.TrimSpace(id)); err != nil {
		return err
	}
	s.log.Info().Str("id", id).Msg("general bond deleted")
	return nil
}

func requireText(field, v string) error {
	if strings.TrimSpace(v) != "" {
		return nil
	}
	return apierr.Validate([]models.FieldError{{Field: field, Message: "is required"}})
}
