package app

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/bonosportal/internal/derived"
	"github.com/seenimoa/bonosportal/pkg/models"
)

// BondView is a bond with its derived metrics, as shown in lists.
type BondView struct {
	models.Bond
	Metrics derived.Metrics `json:"metrics"`
	Status  derived.Status  `json:"status"`
}

// buildView filters bonds, refreshes the derived cache with exactly the
// filtered set, and attaches the cached metrics.
func buildView(bonds []models.Bond, f Filter, cache *derived.Cache, now time.Time, log zerolog.Logger) []BondView {
	filtered := f.Apply(bonds)
	if err := cache.Refresh(filtered, now); err != nil {
		log.Warn().Err(err).Msg("some bonds have unreadable dates")
	}
	out := make([]BondView, 0, len(filtered))
	for _, b := range filtered {
		v := BondView{Bond: b}
		if m, err := cache.Get(b, now); err == nil {
			v.Metrics = m
		}
		if st, err := derived.StatusOf(b, now); err == nil {
			v.Status = st
		}
		out = append(out, v)
	}
	return out
}
