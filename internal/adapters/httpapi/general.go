package httpapi

import (
	"context"
	"net/url"

	"github.com/seenimoa/bonosportal/pkg/models"
)

const generalBondsPath = "/api/bonos"

// GeneralBondsAPI implements ports.GeneralBondRepository.
type GeneralBondsAPI struct {
	c *Client
}

// NewGeneralBondsAPI creates the general bond adapter.
func NewGeneralBondsAPI(c *Client) *GeneralBondsAPI { return &GeneralBondsAPI{c: c} }

func (a *GeneralBondsAPI) List(ctx context.Context) ([]models.GeneralBond, error) {
	return a.list(ctx, generalBondsPath, nil)
}

func (a *GeneralBondsAPI) Create(ctx context.Context, req models.CreateGeneralBondRequest) (*models.GeneralBond, error) {
	var b models.GeneralBond
	if err := a.c.post(ctx, generalBondsPath, req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (a *GeneralBondsAPI) Get(ctx context.Context, id string) (*models.GeneralBond, error) {
	var b models.GeneralBond
	if err := a.c.get(ctx, generalBondPath(id), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (a *GeneralBondsAPI) Update(ctx context.Context, id string, req models.CreateGeneralBondRequest) (*models.GeneralBond, error) {
	var b models.GeneralBond
	if err := a.c.put(ctx, generalBondPath(id), req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (a *GeneralBondsAPI) Delete(ctx context.Context, id string) error {
	return a.c.delete(ctx, generalBondPath(id))
}

// Search sends nombre only when it is not blank.
func (a *GeneralBondsAPI) Search(ctx context.Context, nombre string) ([]models.GeneralBond, error) {
	return a.list(ctx, generalBondsPath+"/buscar", TextPairs("nombre", nombre))
}

func (a *GeneralBondsAPI) ByCurrency(ctx context.Context, moneda string) ([]models.GeneralBond, error) {
	return a.list(ctx, generalBondsPath+"/moneda/"+url.PathEscape(moneda), nil)
}

func (a *GeneralBondsAPI) list(ctx context.Context, path string, pairs []Pair) ([]models.GeneralBond, error) {
	var bonds []models.GeneralBond
	if err := a.c.get(ctx, path, pairs, &bonds); err != nil {
		return nil, err
	}
	return bonds, nil
}

func generalBondPath(id string) string {
	return generalBondsPath + "/" + url.PathEscape(id)
}
