package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/seenimoa/bonosportal/internal/apierr"
	"github.com/seenimoa/bonosportal/internal/app"
	"github.com/seenimoa/bonosportal/pkg/models"
)

func bodyError(err error) []models.FieldError {
	return []models.FieldError{{Field: "body", Message: "invalid JSON: " + err.Error()}}
}

// pathID reads the {id} URL parameter.
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierr.Validate([]models.FieldError{{Field: "id", Message: "must be a positive integer"}})
	}
	return id, nil
}

// filterFromQuery builds a list filter from query parameters. Missing
// parameters keep the default newest-first order.
func filterFromQuery(q url.Values) (app.Filter, error) {
	f := app.DefaultFilter()
	f.Search = q.Get("search")
	f.Moneda = q.Get("moneda")

	var errs []models.FieldError
	intParam := func(name string) *int {
		raw := q.Get(name)
		if raw == "" {
			return nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, models.FieldError{Field: name, Message: "must be an integer"})
			return nil
		}
		return &v
	}
	floatParam := func(name string) *float64 {
		raw := q.Get(name)
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, models.FieldError{Field: name, Message: "must be a number"})
			return nil
		}
		return &v
	}
	f.PlazoMin = intParam("plazoMin")
	f.PlazoMax = intParam("plazoMax")
	f.TasaMin = floatParam("tasaMin")
	f.TasaMax = floatParam("tasaMax")

	switch sortBy := app.SortField(q.Get("sortBy")); sortBy {
	case "":
	case app.SortNombre, app.SortValorNominal, app.SortTasaCupon, app.SortFechaEmision:
		f.SortBy = sortBy
	default:
		errs = append(errs, models.FieldError{Field: "sortBy", Message: "must be nombre, valorNominal, tasaCupon or fechaEmision"})
	}
	switch order := app.Order(q.Get("sortOrder")); order {
	case "":
	case app.Asc, app.Desc:
		f.SortOrder = order
	default:
		errs = append(errs, models.FieldError{Field: "sortOrder", Message: "must be asc or desc"})
	}

	return f, apierr.Validate(errs)
}
