package httpapi

import (
	"github.com/seenimoa/bonosportal/pkg/models"
)

// --- Cash flows ---

// cashFlowWire is a cash-flow row as the backend sends it. Depending on the
// endpoint the coupon arrives as "interes" or "cupon" and the total as
// "cuota" or "flujoTotal".
type cashFlowWire struct {
	Periodo       int             `json:"periodo"`
	Fecha         models.FlexDate `json:"fecha"`
	Interes       *float64        `json:"interes"`
	Cupon         *float64        `json:"cupon"`
	Cuota         *float64        `json:"cuota"`
	FlujoTotal    *float64        `json:"flujoTotal"`
	Amortizacion  *float64        `json:"amortizacion"`
	SaldoInsoluto *float64        `json:"saldoInsoluto"`
	ValorPresente *float64        `json:"valorPresente"`
}

func (w cashFlowWire) entry() models.CashFlowEntry {
	return models.CashFlowEntry{
		Periodo:       w.Periodo,
		Fecha:         w.Fecha,
		Cupon:         valueOr(first(w.Interes, w.Cupon), 0),
		Interes:       valueOr(first(w.Interes, w.Cupon), 0),
		FlujoTotal:    valueOr(first(w.Cuota, w.FlujoTotal), 0),
		Amortizacion:  valueOr(w.Amortizacion, 0),
		SaldoInsoluto: valueOr(w.SaldoInsoluto, 0),
		ValorPresente: valueOr(w.ValorPresente, 0),
	}
}

// normalizeCashFlow maps backend rows onto CashFlowEntry.
func normalizeCashFlow(rows []cashFlowWire) []models.CashFlowEntry {
	out := make([]models.CashFlowEntry, len(rows))
	for i, r := range rows {
		out[i] = r.entry()
	}
	return out
}

// --- Investor calculations ---

// metricsWire is the set of metrics the backend may send either flat on the
// calculation or nested under "resultados".
type metricsWire struct {
	TREA                 *float64 `json:"trea"`
	TREAPorcentaje       *float64 `json:"treaPorcentaje"`
	PrecioMaximo         *float64 `json:"precioMaximo"`
	ValorPresente        *float64 `json:"valorPresente"`
	TCEA                 *float64 `json:"tcea"`
	Duracion             *float64 `json:"duracion"`
	DuracionModificada   *float64 `json:"duracionModificada"`
	Convexidad           *float64 `json:"convexidad"`
	VAN                  *float64 `json:"van"`
	TIR                  *float64 `json:"tir"`
	ValorPresenteCupones *float64 `json:"valorPresenteCupones"`
	PrecioJusto          *float64 `json:"precioJusto"`
	Yield                *float64 `json:"yield"`
	SensibilidadPrecio   *float64 `json:"sensibilidadPrecio"`
	GananciaCapital      *float64 `json:"gananciaCapital"`
	IngresosCupones      *float64 `json:"ingresosCupones"`
	RendimientoTotal     *float64 `json:"rendimientoTotal"`
	RentabilidadTotal    *float64 `json:"rentabilidadTotal"`
	GananciaTotal        *float64 `json:"gananciaTotal"`
}

func (m *metricsWire) empty() bool {
	return m == nil || *m == metricsWire{}
}

type parametrosWire struct {
	ValorNominal   *float64 `json:"valorNominal"`
	Tasa           *float64 `json:"tasa"`
	Plazo          *float64 `json:"plazo"`
	FrecuenciaPago *float64 `json:"frecuenciaPago"`
	Moneda         string   `json:"moneda"`
}

type calculoWire struct {
	ID                   int64    `json:"id"`
	BonoID               int64    `json:"bonoId"`
	BonoNombre           string   `json:"bonoNombre"`
	InversorUsername     string   `json:"inversorUsername"`
	TasaEsperada         *float64 `json:"tasaEsperada"`
	FechaCalculo         string   `json:"fechaCalculo"`
	InformacionAdicional string   `json:"informacionAdicional"`
	TipoAnalisis         string   `json:"tipoAnalisis"`

	ValorNominal    *float64 `json:"valorNominal"`
	TasaCupon       *float64 `json:"tasaCupon"`
	PlazoAnios      *float64 `json:"plazoAnios"`
	FrecuenciaPagos *float64 `json:"frecuenciaPagos"`
	Moneda          string   `json:"moneda"`

	metricsWire

	Resultados       *metricsWire             `json:"resultados"`
	Parametros       *parametrosWire          `json:"parametros"`
	AnalisisCompleto *models.AnalisisCompleto `json:"analisisCompleto"`
}

// Response shapes reported by shape().
const (
	shapeNested = "nested"
	shapeFlat   = "flat"
	shapeMixed  = "mixed"
	shapeEmpty  = "empty"
)

func (w *calculoWire) shape() string {
	nested := !w.Resultados.empty() || w.Parametros != nil
	flat := !w.metricsWire.empty()
	switch {
	case nested && flat:
		return shapeMixed
	case nested:
		return shapeNested
	case flat:
		return shapeFlat
	}
	return shapeEmpty
}

// calculo flattens the wire shape. Each metric comes from "resultados" when
// present there and from the flat field otherwise; a metric absent from
// both stays nil.
func (w *calculoWire) calculo() *models.CalculoInversion {
	flat := &w.metricsWire
	nested := w.Resultados
	if nested == nil {
		nested = &metricsWire{}
	}
	pick := func(get func(*metricsWire) *float64) *float64 {
		return first(get(nested), get(flat))
	}
	params := w.Parametros
	if params == nil {
		params = &parametrosWire{}
	}
	moneda := params.Moneda
	if moneda == "" {
		moneda = w.Moneda
	}

	return &models.CalculoInversion{
		ID:                   w.ID,
		BonoID:               w.BonoID,
		BonoNombre:           w.BonoNombre,
		InversorUsername:     w.InversorUsername,
		TasaEsperada:         w.TasaEsperada,
		FechaCalculo:         w.FechaCalculo,
		InformacionAdicional: w.InformacionAdicional,
		TipoAnalisis:         w.TipoAnalisis,

		ValorNominal:    first(params.ValorNominal, w.ValorNominal),
		TasaCupon:       first(params.Tasa, w.TasaCupon),
		PlazoAnios:      first(params.Plazo, w.PlazoAnios),
		FrecuenciaPagos: first(params.FrecuenciaPago, w.FrecuenciaPagos),
		Moneda:          moneda,

		TREA:                 pick(func(m *metricsWire) *float64 { return m.TREA }),
		TREAPorcentaje:       pick(func(m *metricsWire) *float64 { return m.TREAPorcentaje }),
		PrecioMaximo:         pick(func(m *metricsWire) *float64 { return m.PrecioMaximo }),
		ValorPresente:        pick(func(m *metricsWire) *float64 { return m.ValorPresente }),
		TCEA:                 pick(func(m *metricsWire) *float64 { return m.TCEA }),
		Duracion:             pick(func(m *metricsWire) *float64 { return m.Duracion }),
		DuracionModificada:   pick(func(m *metricsWire) *float64 { return m.DuracionModificada }),
		Convexidad:           pick(func(m *metricsWire) *float64 { return m.Convexidad }),
		VAN:                  pick(func(m *metricsWire) *float64 { return m.VAN }),
		TIR:                  pick(func(m *metricsWire) *float64 { return m.TIR }),
		ValorPresenteCupones: pick(func(m *metricsWire) *float64 { return m.ValorPresenteCupones }),
		PrecioJusto:          pick(func(m *metricsWire) *float64 { return m.PrecioJusto }),
		Yield:                pick(func(m *metricsWire) *float64 { return m.Yield }),
		SensibilidadPrecio:   pick(func(m *metricsWire) *float64 { return m.SensibilidadPrecio }),
		GananciaCapital:      pick(func(m *metricsWire) *float64 { return m.GananciaCapital }),
		IngresosCupones:      pick(func(m *metricsWire) *float64 { return m.IngresosCupones }),
		RendimientoTotal:     pick(func(m *metricsWire) *float64 { return m.RendimientoTotal }),

		// The backend reports these under their capital/return names.
		RentabilidadTotal: first(nested.RendimientoTotal, flat.RentabilidadTotal, flat.RendimientoTotal),
		GananciaTotal:     first(nested.GananciaCapital, flat.GananciaTotal, flat.GananciaCapital),

		AnalisisCompleto: w.AnalisisCompleto,
	}
}

// first returns the first non-nil value.
func first(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
