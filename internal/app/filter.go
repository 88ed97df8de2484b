package app

import (
	"sort"
	"strings"
	"time"

	"github.com/seenimoa/bonosportal/pkg/models"
)

// SortField is a bond list ordering key.
type SortField string

const (
	SortNombre       SortField = "nombre"
	SortValorNominal SortField = "valorNominal"
	SortTasaCupon    SortField = "tasaCupon"
	SortFechaEmision SortField = "fechaEmision"
)

// Order is the sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Filter narrows and orders a bond list. Nil bounds and empty strings are
// ignored.
type Filter struct {
	Search    string
	Moneda    string
	PlazoMin  *int
	PlazoMax  *int
	TasaMin   *float64
	TasaMax   *float64
	SortBy    SortField
	SortOrder Order
}

// DefaultFilter lists everything, newest issue first.
func DefaultFilter() Filter {
	return Filter{SortBy: SortFechaEmision, SortOrder: Desc}
}

// Apply returns the bonds matching f, sorted. bonds is not modified.
func (f Filter) Apply(bonds []models.Bond) []models.Bond {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Bond, 0, len(bonds))
	for _, b := range bonds {
		if term != "" &&
			!strings.Contains(strings.ToLower(b.Nombre), term) &&
			!strings.Contains(strings.ToLower(b.Descripcion), term) {
			continue
		}
		if f.Moneda != "" && b.CurrencyCode() != f.Moneda {
			continue
		}
		if f.PlazoMin != nil && b.PlazoAnios < *f.PlazoMin {
			continue
		}
		if f.PlazoMax != nil && b.PlazoAnios > *f.PlazoMax {
			continue
		}
		if f.TasaMin != nil && b.TasaCupon < *f.TasaMin {
			continue
		}
		if f.TasaMax != nil && b.TasaCupon > *f.TasaMax {
			continue
		}
		out = append(out, b)
	}

	less := f.less()
	if less != nil {
		sort.SliceStable(out, func(i, j int) bool {
			if f.SortOrder == Asc {
				return less(out[i], out[j])
			}
			return less(out[j], out[i])
		})
	}
	return out
}

func (f Filter) less() func(a, b models.Bond) bool {
	switch f.SortBy {
	case SortNombre:
		return func(a, b models.Bond) bool { return strings.ToLower(a.Nombre) < strings.ToLower(b.Nombre) }
	case SortValorNominal:
		return func(a, b models.Bond) bool { return a.ValorNominal < b.ValorNominal }
	case SortTasaCupon:
		return func(a, b models.Bond) bool { return a.TasaCupon < b.TasaCupon }
	case SortFechaEmision:
		return func(a, b models.Bond) bool { return issueTime(a).Before(issueTime(b)) }
	}
	return nil
}

// issueTime is the issue date, or the zero time when it can't be parsed.
func issueTime(b models.Bond) time.Time {
	t, err := b.IssueDate()
	if err != nil {
		return time.Time{}
	}
	return t
}

// Int returns a pointer to v, for optional filter bounds.
func Int(v int) *int { return &v }
