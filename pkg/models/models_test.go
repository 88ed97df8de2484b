package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Role Tests ──

func TestRoleSetDecodesMixedShapes(t *testing.T) {
	var id Identity
	raw := `{"id":7,"username":"alice","roles":["ROLE_INVERSOR",{"id":1,"name":" ROLE_EMISOR "},"ROLE_INVERSOR",{"id":9,"name":""}]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &id))

	assert.Equal(t, RoleSet{RoleInversor, RoleEmisor}, id.Roles)
	assert.True(t, id.HasRole("ROLE_EMISOR"))
	assert.False(t, id.HasRole("role_emisor"), "comparison is exact")
	assert.False(t, id.HasRole(""))
}

func TestRoleSetNullAndMarshal(t *testing.T) {
	var s RoleSet
	require.NoError(t, json.Unmarshal([]byte(`null`), &s))
	assert.Empty(t, s)

	out, err := json.Marshal(RoleSet(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(out))

	out, err = json.Marshal(RoleSetOf(RoleAdmin, RoleAdmin, " "))
	require.NoError(t, err)
	assert.JSONEq(t, `["ROLE_ADMIN"]`, string(out))
}

func TestRoleRefRejectsNumbers(t *testing.T) {
	var r RoleRef
	assert.Error(t, json.Unmarshal([]byte(`42`), &r))
}

func TestIdentityClone(t *testing.T) {
	orig := &Identity{ID: 1, Username: "bob", Roles: RoleSetOf(RoleEmisor)}
	c := orig.Clone()
	c.Roles[0] = "ROLE_OTHER"
	assert.Equal(t, RoleEmisor, orig.Roles[0])

	var nilID *Identity
	assert.Nil(t, nilID.Clone())
	assert.False(t, nilID.HasRole(RoleEmisor))
}

func TestUserResourceRoleSet(t *testing.T) {
	u := UserResource{Roles: []RoleResource{{ID: 1, Name: RoleEmisor}, {ID: 2, Name: RoleEmisor}}}
	assert.Equal(t, RoleSet{RoleEmisor}, u.RoleSet())
}

// ── FlexDate Tests ──

func TestFlexDateTuple(t *testing.T) {
	var d FlexDate
	require.NoError(t, json.Unmarshal([]byte(`[2024, 3, 15]`), &d))

	assert.True(t, d.IsCalendar())
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), d.Time)
	assert.Equal(t, "2024-03-15", d.String())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-15"`, string(out))
}

func TestFlexDateTupleWithTime(t *testing.T) {
	var d FlexDate
	require.NoError(t, json.Unmarshal([]byte(`[2023,12,31,10,30]`), &d))
	assert.Equal(t, "2023-12-31", d.String())
}

func TestFlexDateShortTuple(t *testing.T) {
	var d FlexDate
	assert.Error(t, json.Unmarshal([]byte(`[2024, 3]`), &d))
}

func TestFlexDateStringKeptVerbatim(t *testing.T) {
	var d FlexDate
	require.NoError(t, json.Unmarshal([]byte(`"15/03/2024"`), &d))

	assert.False(t, d.IsCalendar())
	assert.Equal(t, "15/03/2024", d.String())
	_, err := d.Parse()
	assert.Error(t, err)

	require.NoError(t, json.Unmarshal([]byte(`"2024-03-15T08:00:00"`), &d))
	parsed, err := d.Parse()
	require.NoError(t, err)
	assert.Equal(t, 2024, parsed.Year())
}

func TestFlexDateNull(t *testing.T) {
	d := FlexDate{Raw: "x"}
	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

// ── Bond Tests ──

func TestBondMaturity(t *testing.T) {
	b := Bond{FechaEmision: NewFlexDate(DateFromTuple(2024, 2, 29)), PlazoAnios: 5}
	m, err := b.Maturity()
	require.NoError(t, err)
	// Feb 29 + 5 years normalizes to Mar 1.
	assert.Equal(t, "2029-03-01", m.Format(DateLayout))

	_, err = Bond{FechaEmision: FlexDate{Raw: "sin fecha"}}.Maturity()
	assert.Error(t, err)
}

func TestBondCurrencyCode(t *testing.T) {
	assert.Equal(t, "", Bond{}.CurrencyCode())
	assert.Equal(t, "USD", Bond{Moneda: &Moneda{Codigo: "USD"}}.CurrencyCode())
}

func TestMetodoAmortizacionLabel(t *testing.T) {
	assert.Equal(t, "Alemán", Aleman.Label())
	assert.Equal(t, "N/A", MetodoAmortizacion("").Label())
	assert.Equal(t, "OTRO", MetodoAmortizacion("OTRO").Label())
	assert.False(t, MetodoAmortizacion("OTRO").Valid())
}

func TestCreateBondRequestValidate(t *testing.T) {
	good := CreateBondRequest{
		Nombre:             "Bono Verde",
		ValorNominal:       1000,
		TasaCupon:          6.5,
		PlazoAnios:         5,
		FrecuenciaPagos:    2,
		Moneda:             "PEN",
		FechaEmision:       "2024-03-15",
		MetodoAmortizacion: Frances,
	}
	assert.Empty(t, good.Validate())

	bad := good
	bad.Nombre = ""
	bad.ValorNominal = 0
	bad.FechaEmision = "15/03/2024"
	bad.MetodoAmortizacion = "OTRO"
	bad.PlazosGraciaTotal = -1

	fields := make([]string, 0)
	for _, fe := range bad.Validate() {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"nombre", "valorNominal", "plazosGracia", "metodoAmortizacion", "fechaEmision"}, fields)
}

// ── Calculo Tests ──

func TestValorFinalEsperadoPrecedence(t *testing.T) {
	tests := []struct {
		name string
		c    CalculoInversion
		want float64
		ok   bool
	}{
		{
			name: "backend summary wins",
			c: CalculoInversion{
				PrecioMaximo:    Float(900),
				GananciaCapital: Float(50),
				AnalisisCompleto: &AnalisisCompleto{ResumenInversion: &ResumenInversion{
					ValorFinalEsperado: Float(1234),
					ValorInversion:     Float(1000),
					GananciaTotal:      Float(100),
				}},
			},
			want: 1234,
			ok:   true,
		},
		{
			name: "inversion plus ganancia",
			c: CalculoInversion{
				PrecioMaximo:    Float(900),
				GananciaCapital: Float(50),
				AnalisisCompleto: &AnalisisCompleto{ResumenInversion: &ResumenInversion{
					ValorInversion: Float(1000),
					GananciaTotal:  Float(100),
				}},
			},
			want: 1100,
			ok:   true,
		},
		{
			name: "cupones plus valor nominal",
			c:    CalculoInversion{ValorNominal: Float(1000), IngresosCupones: Float(325), PrecioMaximo: Float(900), GananciaCapital: Float(50)},
			want: 1325,
			ok:   true,
		},
		{
			name: "missing cupones count as zero",
			c:    CalculoInversion{ValorNominal: Float(1000)},
			want: 1000,
			ok:   true,
		},
		{
			name: "explicit zero is a value",
			c:    CalculoInversion{ValorNominal: Float(0), IngresosCupones: Float(0)},
			want: 0,
			ok:   true,
		},
		{
			name: "nothing available",
			c:    CalculoInversion{PrecioMaximo: Float(900), GananciaCapital: Float(50), IngresosCupones: Float(325)},
			ok:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.c.ValorFinalEsperado()
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestHistorialFromCalculo(t *testing.T) {
	h := HistorialFromCalculo(&CalculoInversion{ID: 3, BonoID: 7, BonoNombre: "Tesoro", FechaCalculo: "2024-03-01T10:00:00"})
	assert.Equal(t, AnalisisTREA, h.Tipo)
	assert.Equal(t, int64(7), h.BonoID)
	assert.Equal(t, "2024-03-01T10:00:00", h.Fecha)

	h = HistorialFromCalculo(&CalculoInversion{TipoAnalisis: AnalisisFlujoCaja})
	assert.Equal(t, AnalisisFlujoCaja, h.Tipo)
}

func TestCalculoAbsentMetricsStayNil(t *testing.T) {
	var c CalculoInversion
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"trea":0,"tcea":null}`), &c))
	require.NotNil(t, c.TREA)
	assert.Equal(t, 0.0, *c.TREA)
	assert.Nil(t, c.TCEA)
	assert.Nil(t, c.Duracion)
}

// ── General Bond Tests ──

func TestFlexIDShapes(t *testing.T) {
	var b GeneralBond
	require.NoError(t, json.Unmarshal([]byte(`{"id":15,"estado":"VENCIDO","fechaVencimiento":"2030-01-01"}`), &b))
	assert.Equal(t, FlexID("15"), b.ID)
	assert.Equal(t, EstadoVencido, b.Estado)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"abc-1"}`), &b))
	assert.Equal(t, FlexID("abc-1"), b.ID)

	assert.Error(t, json.Unmarshal([]byte(`{"id":true}`), &b))
}

func TestCreateGeneralBondRequestValidate(t *testing.T) {
	req := CreateBondRequest{
		Nombre:             "Bono Verde",
		ValorNominal:       1000,
		PlazoAnios:         5,
		FrecuenciaPagos:    2,
		Moneda:             "usd",
		FechaEmision:       "2024-03-15",
		MetodoAmortizacion: Aleman,
		TasaDescuento:      3,
	}.GeneralRequest()
	assert.Equal(t, "USD", req.Moneda)
	assert.Empty(t, req.Validate())

	req.Moneda = ""
	req.PlazoAnios = 0
	fields := make([]string, 0)
	for _, fe := range req.Validate() {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"plazoAnios", "moneda"}, fields)
}
