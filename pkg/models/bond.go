package models

import (
	"time"
)

// --- Bonds ---

// MetodoAmortizacion is the amortization schedule of a bond.
type MetodoAmortizacion string

const (
	Americano MetodoAmortizacion = "AMERICANO"
	Aleman    MetodoAmortizacion = "ALEMAN"
	Frances   MetodoAmortizacion = "FRANCES"
)

// Valid reports whether m is one of the known methods.
func (m MetodoAmortizacion) Valid() bool {
	switch m {
	case Americano, Aleman, Frances:
		return true
	}
	return false
}

// Label returns the display name of the method.
func (m MetodoAmortizacion) Label() string {
	switch m {
	case Americano:
		return "Americano"
	case Aleman:
		return "Alemán"
	case Frances:
		return "Francés"
	case "":
		return "N/A"
	}
	return string(m)
}

// TipoPlazoGracia is the grace-period type.
type TipoPlazoGracia string

const (
	GraciaNinguno TipoPlazoGracia = "NINGUNO"
	GraciaTotal   TipoPlazoGracia = "TOTAL"
	GraciaParcial TipoPlazoGracia = "PARCIAL"
)

// PlazoGracia is the grace period of a bond.
type PlazoGracia struct {
	Tipo     TipoPlazoGracia `json:"tipo,omitempty"`
	Periodos int             `json:"periodos,omitempty"`
}

// Moneda describes the bond currency.
type Moneda struct {
	Codigo  string `json:"codigo,omitempty"`
	Nombre  string `json:"nombre,omitempty"`
	Simbolo string `json:"simbolo,omitempty"`
}

// TipoTasa distinguishes effective and nominal rates.
type TipoTasa string

const (
	TasaEfectiva TipoTasa = "EFECTIVA"
	TasaNominal  TipoTasa = "NOMINAL"
)

// TasaInteres is the rate definition attached to a bond.
type TasaInteres struct {
	Valor                    float64  `json:"valor,omitempty"`
	Tipo                     TipoTasa `json:"tipo,omitempty"`
	FrecuenciaCapitalizacion int      `json:"frecuenciaCapitalizacion,omitempty"`
}

// Bond is a bond as published by an issuer. Values are immutable once
// fetched; changes go through the issuer port.
type Bond struct {
	ID                 int64              `json:"id"`
	Nombre             string             `json:"nombre"`
	Descripcion        string             `json:"descripcion"`
	ValorNominal       float64            `json:"valorNominal"`
	TasaCupon          float64            `json:"tasaCupon"`
	PlazoAnios         int                `json:"plazoAnios"`
	FrecuenciaPagos    int                `json:"frecuenciaPagos"`
	FechaEmision       FlexDate           `json:"fechaEmision"`
	TasaDescuento      float64            `json:"tasaDescuento"`
	MetodoAmortizacion MetodoAmortizacion `json:"metodoAmortizacion"`
	PlazoGracia        *PlazoGracia       `json:"plazoGracia,omitempty"`
	Moneda             *Moneda            `json:"moneda,omitempty"`
	TasaInteres        *TasaInteres       `json:"tasaInteres,omitempty"`
	EmisorID           *int64             `json:"emisorId,omitempty"`
	EmisorNombre       string             `json:"emisorNombre,omitempty"`
}

// CurrencyCode returns the ISO code of the bond currency, or "".
func (b Bond) CurrencyCode() string {
	if b.Moneda == nil {
		return ""
	}
	return b.Moneda.Codigo
}

// IssueDate parses fechaEmision.
func (b Bond) IssueDate() (time.Time, error) {
	return b.FechaEmision.Parse()
}

// Maturity returns the maturity date, fechaEmision + plazoAnios years.
func (b Bond) Maturity() (time.Time, error) {
	issue, err := b.IssueDate()
	if err != nil {
		return time.Time{}, err
	}
	return MaturityDate(issue, b.PlazoAnios), nil
}

// MaturityDate is the single definition of a bond's maturity: the issue
// date shifted by whole years.
func MaturityDate(issue time.Time, plazoAnios int) time.Time {
	return issue.AddDate(plazoAnios, 0, 0)
}

// CreateBondRequest is the body for issuer create and update calls.
type CreateBondRequest struct {
	Nombre              string             `json:"nombre"`
	Descripcion         string             `json:"descripcion"`
	ValorNominal        float64            `json:"valorNominal"`
	TasaCupon           float64            `json:"tasaCupon"`
	PlazoAnios          int                `json:"plazoAnios"`
	FrecuenciaPagos     int                `json:"frecuenciaPagos"`
	Moneda              string             `json:"moneda"`
	FechaEmision        string             `json:"fechaEmision"`
	PlazosGraciaTotal   int                `json:"plazosGraciaTotal"`
	PlazosGraciaParcial int                `json:"plazosGraciaParcial"`
	TasaDescuento       float64            `json:"tasaDescuento"`
	MetodoAmortizacion  MetodoAmortizacion `json:"metodoAmortizacion"`
}

// FieldError is a single rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks the request before it is sent. The returned slice is
// empty when the request is acceptable.
func (r CreateBondRequest) Validate() []FieldError {
	var errs []FieldError
	add := func(field, msg string) {
		errs = append(errs, FieldError{Field: field, Message: msg})
	}
	if r.Nombre == "" {
		add("nombre", "is required")
	}
	if r.ValorNominal <= 0 {
		add("valorNominal", "must be positive")
	}
	if r.TasaCupon < 0 {
		add("tasaCupon", "must not be negative")
	}
	if r.PlazoAnios <= 0 {
		add("plazoAnios", "must be positive")
	}
	if r.FrecuenciaPagos <= 0 {
		add("frecuenciaPagos", "must be positive")
	}
	if r.TasaDescuento < 0 {
		add("tasaDescuento", "must not be negative")
	}
	if r.PlazosGraciaTotal < 0 || r.PlazosGraciaParcial < 0 {
		add("plazosGracia", "must not be negative")
	}
	if !r.MetodoAmortizacion.Valid() {
		add("metodoAmortizacion", "must be AMERICANO, ALEMAN or FRANCES")
	}
	if _, err := time.Parse(DateLayout, r.FechaEmision); err != nil {
		add("fechaEmision", "must be a YYYY-MM-DD date")
	}
	return errs
}

// RateFilter bounds the coupon rate in catalog queries. Nil bounds are
// omitted from the request.
type RateFilter struct {
	TasaMinima *float64
	TasaMaxima *float64
}

// Float returns a pointer to v, for optional numeric inputs.
func Float(v float64) *float64 { return &v }
