package app

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seenimoa/bonosportal/pkg/models"
)

// Stats summarizes an issuer's bonds.
type Stats struct {
	TotalBonos         int        `json:"totalBonos"`
	ValorTotal         float64    `json:"valorTotal"`
	PromedioTasa       float64    `json:"promedioTasa"`
	ProximoVencimiento *time.Time `json:"proximoVencimiento"`
	BonosActivos       int        `json:"bonosActivos"`
	// RentabilidadTotal is the simple coupon income over each bond's
	// whole term: valorNominal * tasaCupon/100 * plazoAnios.
	RentabilidadTotal float64 `json:"rentabilidadTotal"`
}

var hundred = decimal.NewFromInt(100)

// ComputeStats summarizes bonds at now. Sums run in decimal so totals over
// many bonds don't drift.
func ComputeStats(bonds []models.Bond, now time.Time) Stats {
	if len(bonds) == 0 {
		return Stats{}
	}

	valor := decimal.Zero
	tasas := decimal.Zero
	renta := decimal.Zero
	var next *time.Time
	activos := 0
	for _, b := range bonds {
		vn := decimal.NewFromFloat(b.ValorNominal)
		tc := decimal.NewFromFloat(b.TasaCupon)
		valor = valor.Add(vn)
		tasas = tasas.Add(tc)
		renta = renta.Add(vn.Mul(tc).Div(hundred).Mul(decimal.NewFromInt(int64(b.PlazoAnios))))

		maturity, err := b.Maturity()
		if err != nil || !maturity.After(now) {
			continue
		}
		activos++
		if next == nil || maturity.Before(*next) {
			m := maturity
			next = &m
		}
	}

	return Stats{
		TotalBonos:         len(bonds),
		ValorTotal:         valor.InexactFloat64(),
		PromedioTasa:       tasas.Div(decimal.NewFromInt(int64(len(bonds)))).InexactFloat64(),
		ProximoVencimiento: next,
		BonosActivos:       activos,
		RentabilidadTotal:  renta.InexactFloat64(),
	}
}

// AvailableCurrencies returns the sorted, distinct currency codes in bonds.
func AvailableCurrencies(bonds []models.Bond) []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range bonds {
		code := b.CurrencyCode()
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
