package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// --- General bond administration ---

// EstadoBono is the lifecycle state of a bond in the general registry.
type EstadoBono string

const (
	EstadoActivo     EstadoBono = "ACTIVO"
	EstadoVencido    EstadoBono = "VENCIDO"
	EstadoSuspendido EstadoBono = "SUSPENDIDO"
)

// FlexID is a resource id the backend sends either as a JSON number or as
// a string. It is kept as text.
type FlexID string

func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: want number or string, got %s", data)
	}
	*id = FlexID(n.String())
	return nil
}

// GeneralBond is a bond as listed by the general administration API,
// which reports the currency as a plain code and the issuer by name.
type GeneralBond struct {
	ID               FlexID     `json:"id"`
	Nombre           string     `json:"nombre"`
	Descripcion      string     `json:"descripcion"`
	ValorNominal     float64    `json:"valorNominal"`
	TasaCupon        float64    `json:"tasaCupon"`
	PlazoAnios       int        `json:"plazoAnios"`
	FrecuenciaPagos  int        `json:"frecuenciaPagos"`
	FechaEmision     FlexDate   `json:"fechaEmision"`
	Moneda           string     `json:"moneda"`
	Emisor           string     `json:"emisor"`
	Estado           EstadoBono `json:"estado"`
	FechaVencimiento FlexDate   `json:"fechaVencimiento"`
}

// CreateGeneralBondRequest is the body for general create and update calls.
type CreateGeneralBondRequest struct {
	Nombre             string             `json:"nombre"`
	Descripcion        string             `json:"descripcion"`
	ValorNominal       float64            `json:"valorNominal"`
	TasaCupon          float64            `json:"tasaCupon"`
	PlazoAnios         int                `json:"plazoAnios"`
	FrecuenciaPagos    int                `json:"frecuenciaPagos"`
	FechaEmision       string             `json:"fechaEmision"`
	Moneda             string             `json:"moneda"`
	MetodoAmortizacion MetodoAmortizacion `json:"metodoAmortizacion"`
}

// GeneralRequest keeps the fields the general API accepts.
func (r CreateBondRequest) GeneralRequest() CreateGeneralBondRequest {
	return CreateGeneralBondRequest{
		Nombre:             r.Nombre,
		Descripcion:        r.Descripcion,
		ValorNominal:       r.ValorNominal,
		TasaCupon:          r.TasaCupon,
		PlazoAnios:         r.PlazoAnios,
		FrecuenciaPagos:    r.FrecuenciaPagos,
		FechaEmision:       r.FechaEmision,
		Moneda:             strings.ToUpper(strings.TrimSpace(r.Moneda)),
		MetodoAmortizacion: r.MetodoAmortizacion,
	}
}

// Validate applies the issuer bond rules to the shared fields.
func (r CreateGeneralBondRequest) Validate() []FieldError {
	errs := CreateBondRequest{
		Nombre:             r.Nombre,
		ValorNominal:       r.ValorNominal,
		TasaCupon:          r.TasaCupon,
		PlazoAnios:         r.PlazoAnios,
		FrecuenciaPagos:    r.FrecuenciaPagos,
		FechaEmision:       r.FechaEmision,
		MetodoAmortizacion: r.MetodoAmortizacion,
	}.Validate()
	if r.Moneda == "" {
		errs = append(errs, FieldError{Field: "moneda", Message: "is required"})
	}
	return errs
}

// --- Backend health ---

// BackendHealth is the result of a connectivity check against the backend.
type BackendHealth struct {
	Status    string `json:"status"`
	Via       string `json:"via"`
	ElapsedMS int64  `json:"elapsedMs"`
}

// Health check routes.
const (
	HealthViaActuator = "actuator"
	HealthViaAPI      = "api"
)
