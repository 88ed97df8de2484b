package httpapi

import (
	"context"
	"fmt"

	"github.com/seenimoa/bonosportal/pkg/models"
)

const issuerBondsPath = "/api/v1/emisor/bonos"

// IssuerBondsAPI implements ports.IssuerBondRepository.
type IssuerBondsAPI struct {
	c *Client
}

// NewIssuerBondsAPI creates the issuer bond adapter.
func NewIssuerBondsAPI(c *Client) *IssuerBondsAPI { return &IssuerBondsAPI{c: c} }

func (a *IssuerBondsAPI) ListMine(ctx context.Context) ([]models.Bond, error) {
	var bonds []models.Bond
	if err := a.c.get(ctx, issuerBondsPath, nil, &bonds); err != nil {
		return nil, err
	}
	return bonds, nil
}

func (a *IssuerBondsAPI) Create(ctx context.Context, req models.CreateBondRequest) (*models.Bond, error) {
	var b models.Bond
	if err := a.c.post(ctx, issuerBondsPath, req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (a *IssuerBondsAPI) GetMine(ctx context.Context, id int64) (*models.Bond, error) {
	var b models.Bond
	if err := a.c.get(ctx, bondPath(issuerBondsPath, id), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (a *IssuerBondsAPI) Update(ctx context.Context, id int64, req models.CreateBondRequest) (*models.Bond, error) {
	var b models.Bond
	if err := a.c.put(ctx, bondPath(issuerBondsPath, id), req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (a *IssuerBondsAPI) Delete(ctx context.Context, id int64) error {
	return a.c.delete(ctx, bondPath(issuerBondsPath, id))
}

func (a *IssuerBondsAPI) CashFlow(ctx context.Context, id int64) ([]models.CashFlowEntry, error) {
	var rows []cashFlowWire
	if err := a.c.get(ctx, bondPath(issuerBondsPath, id)+"/flujo", nil, &rows); err != nil {
		return nil, err
	}
	return normalizeCashFlow(rows), nil
}

func bondPath(base string, id int64) string {
	return fmt.Sprintf("%s/%d", base, id)
}
