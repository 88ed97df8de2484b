package models

// --- Cash flows ---

// CashFlowEntry is one period of a bond's cash-flow schedule.
type CashFlowEntry struct {
	Periodo       int      `json:"periodo"`
	Fecha         FlexDate `json:"fecha"`
	Cupon         float64  `json:"cupon"`
	Amortizacion  float64  `json:"amortizacion"`
	FlujoTotal    float64  `json:"flujoTotal"`
	SaldoInsoluto float64  `json:"saldoInsoluto"`
	ValorPresente float64  `json:"valorPresente"`
	Interes       float64  `json:"interes"`
}

// --- Per-bond calculations ---

// DuracionConvexidad is the duration/convexity result for a bond.
type DuracionConvexidad struct {
	Duracion           float64 `json:"duracion"`
	DuracionModificada float64 `json:"duracionModificada"`
	Convexidad         float64 `json:"convexidad"`
	CambioPrecio       float64 `json:"cambioPrecio"`
	TasaMercado        float64 `json:"tasaMercado"`
}

// Rendimiento is a TREA/TCEA result.
type Rendimiento struct {
	TasaRendimiento float64 `json:"tasaRendimiento"`
	Precio          float64 `json:"precio"`
}

// PrecioMercado is a market price result.
type PrecioMercado struct {
	Precio           float64 `json:"precio"`
	TasaMercado      float64 `json:"tasaMercado"`
	ValorNominal     float64 `json:"valorNominal"`
	PrecioPorcentaje float64 `json:"precioPorcentaje"`
}

// --- Investor calculations ---

// ResumenInversion summarizes an investment inside analisisCompleto.
type ResumenInversion struct {
	ValorInversion     *float64 `json:"valorInversion,omitempty"`
	ValorFinalEsperado *float64 `json:"valorFinalEsperado,omitempty"`
	GananciaTotal      *float64 `json:"gananciaTotal,omitempty"`
	RentabilidadTotal  *float64 `json:"rentabilidadTotal,omitempty"`
}

// IndicadoresRiesgo groups the risk indicators inside analisisCompleto.
type IndicadoresRiesgo struct {
	Duracion           *float64 `json:"duracion,omitempty"`
	DuracionModificada *float64 `json:"duracionModificada,omitempty"`
	Convexidad         *float64 `json:"convexidad,omitempty"`
	SensibilidadPrecio *float64 `json:"sensibilidadPrecio,omitempty"`
}

// MetricasAnalisis groups the headline metrics inside analisisCompleto.
type MetricasAnalisis struct {
	TREA         *float64 `json:"trea,omitempty"`
	TCEA         *float64 `json:"tcea,omitempty"`
	Yield        *float64 `json:"yield,omitempty"`
	PrecioMaximo *float64 `json:"precioMaximo,omitempty"`
}

// AnalisisCompleto is the nested summary block of a full analysis.
type AnalisisCompleto struct {
	ResumenInversion  *ResumenInversion  `json:"resumenInversion,omitempty"`
	IndicadoresRiesgo *IndicadoresRiesgo `json:"indicadoresRiesgo,omitempty"`
	Metricas          *MetricasAnalisis  `json:"metricas,omitempty"`
}

// CalculoInversion is an investor calculation. Every metric is either the
// value the backend sent or nil; the client never fills one in.
type CalculoInversion struct {
	ID                   int64    `json:"id,omitempty"`
	BonoID               int64    `json:"bonoId,omitempty"`
	BonoNombre           string   `json:"bonoNombre,omitempty"`
	InversorUsername     string   `json:"inversorUsername,omitempty"`
	TasaEsperada         *float64 `json:"tasaEsperada,omitempty"`
	FechaCalculo         string   `json:"fechaCalculo,omitempty"`
	InformacionAdicional string   `json:"informacionAdicional,omitempty"`
	TipoAnalisis         string   `json:"tipoAnalisis,omitempty"`

	// Request parameters echoed by the backend.
	ValorNominal    *float64 `json:"valorNominal,omitempty"`
	TasaCupon       *float64 `json:"tasaCupon,omitempty"`
	PlazoAnios      *float64 `json:"plazoAnios,omitempty"`
	FrecuenciaPagos *float64 `json:"frecuenciaPagos,omitempty"`
	Moneda          string   `json:"moneda,omitempty"`

	// Backend metrics.
	TREA                 *float64 `json:"trea,omitempty"`
	TREAPorcentaje       *float64 `json:"treaPorcentaje,omitempty"`
	PrecioMaximo         *float64 `json:"precioMaximo,omitempty"`
	ValorPresente        *float64 `json:"valorPresente,omitempty"`
	TCEA                 *float64 `json:"tcea,omitempty"`
	Duracion             *float64 `json:"duracion,omitempty"`
	DuracionModificada   *float64 `json:"duracionModificada,omitempty"`
	Convexidad           *float64 `json:"convexidad,omitempty"`
	VAN                  *float64 `json:"van,omitempty"`
	TIR                  *float64 `json:"tir,omitempty"`
	ValorPresenteCupones *float64 `json:"valorPresenteCupones,omitempty"`
	PrecioJusto          *float64 `json:"precioJusto,omitempty"`
	Yield                *float64 `json:"yield,omitempty"`
	SensibilidadPrecio   *float64 `json:"sensibilidadPrecio,omitempty"`
	GananciaCapital      *float64 `json:"gananciaCapital,omitempty"`
	IngresosCupones      *float64 `json:"ingresosCupones,omitempty"`
	RendimientoTotal     *float64 `json:"rendimientoTotal,omitempty"`
	RentabilidadTotal    *float64 `json:"rentabilidadTotal,omitempty"`
	GananciaTotal        *float64 `json:"gananciaTotal,omitempty"`

	AnalisisCompleto *AnalisisCompleto `json:"analisisCompleto,omitempty"`
}

// ValorFinalEsperado combines backend metrics into the expected final
// value of the investment. It prefers the backend's own summary, then
// valorInversion+gananciaTotal, then the total received: coupon income
// plus the echoed nominal value, where missing coupon income counts as
// zero. The second result is false when no combination is available.
func (c *CalculoInversion) ValorFinalEsperado() (float64, bool) {
	if c.AnalisisCompleto != nil && c.AnalisisCompleto.ResumenInversion != nil {
		r := c.AnalisisCompleto.ResumenInversion
		if r.ValorFinalEsperado != nil {
			return *r.ValorFinalEsperado, true
		}
		if r.ValorInversion != nil && r.GananciaTotal != nil {
			return *r.ValorInversion + *r.GananciaTotal, true
		}
	}
	if c.ValorNominal != nil {
		total := *c.ValorNominal
		if c.IngresosCupones != nil {
			total += *c.IngresosCupones
		}
		return total, true
	}
	return 0, false
}

// CreateCalculoRequest stores a new investor calculation.
type CreateCalculoRequest struct {
	BonoID       int64   `json:"bonoId"`
	TasaEsperada float64 `json:"tasaEsperada"`
}

// StandaloneCalculoRequest runs an enriched calculation without a stored bond.
type StandaloneCalculoRequest struct {
	PrecioCompra    float64 `json:"precioCompra"`
	ValorNominal    float64 `json:"valorNominal"`
	TasaCupon       float64 `json:"tasaCupon"`
	PlazoAnios      int     `json:"plazoAnios"`
	FrecuenciaPagos int     `json:"frecuenciaPagos"`
}

// Analysis types reported in tipoAnalisis.
const (
	AnalisisTREA           = "TREA"
	AnalisisFlujoCaja      = "FLUJO_CAJA"
	AnalisisCalculoBackend = "CALCULO_BACKEND"
)

// AnalisisHistorial is one entry of the investor's analysis history.
type AnalisisHistorial struct {
	ID         int64             `json:"id"`
	Tipo       string            `json:"tipo"`
	Fecha      string            `json:"fecha"`
	BonoID     int64             `json:"bonoId"`
	BonoNombre string            `json:"bonoNombre"`
	Calculo    *CalculoInversion `json:"calculo"`
}

// HistorialFromCalculo maps a stored calculation into a history entry.
// Entries without tipoAnalisis are TREA calculations.
func HistorialFromCalculo(c *CalculoInversion) AnalisisHistorial {
	tipo := c.TipoAnalisis
	if tipo == "" {
		tipo = AnalisisTREA
	}
	return AnalisisHistorial{
		ID:         c.ID,
		Tipo:       tipo,
		Fecha:      c.FechaCalculo,
		BonoID:     c.BonoID,
		BonoNombre: c.BonoNombre,
		Calculo:    c,
	}
}
