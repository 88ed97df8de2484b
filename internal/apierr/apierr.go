// Package apierr defines the error taxonomy shared by the request pipeline,
// the transport adapters and the application services.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/seenimoa/bonosportal/pkg/models"
)

// Class is the failure category of an error.
type Class string

const (
	Connectivity   Class = "connectivity"   // no response reached the server
	Authentication Class = "authentication" // bad credentials or expired token
	Authorization  Class = "authorization"  // valid identity, missing permission
	NotFound       Class = "not_found"
	Server         Class = "server" // 5xx
	Client         Class = "client" // other 4xx
	Validation     Class = "validation"
	DataShape      Class = "data_shape" // unexpected or malformed payload
)

// Classify maps an HTTP status to a Class. Status 0 means the request never
// got a response.
func Classify(status int) Class {
	switch {
	case status == 0:
		return Connectivity
	case status == http.StatusUnauthorized:
		return Authentication
	case status == http.StatusForbidden:
		return Authorization
	case status == http.StatusNotFound:
		return NotFound
	case status >= 500:
		return Server
	default:
		return Client
	}
}

// Error is a failed backend call. It keeps the original status and payload
// so callers see exactly what the backend returned.
type Error struct {
	Class   Class
	Status  int
	Method  string
	URL     string
	Payload []byte
	Message string // backend-supplied message, if any
	Err     error  // underlying transport error for Connectivity
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: ", e.Method, e.URL)
	if e.Status == 0 {
		b.WriteString("no response")
	} else {
		fmt.Fprintf(&b, "status %d", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on a bare class sentinel, e.g.
// errors.Is(err, apierr.ErrNotFound).
func (e *Error) Is(target error) bool {
	var c classError
	if errors.As(target, &c) {
		return e.Class == c.class
	}
	return false
}

type classError struct{ class Class }

func (c classError) Error() string { return string(c.class) }

// Sentinels for errors.Is checks.
var (
	ErrConnectivity   error = classError{Connectivity}
	ErrAuthentication error = classError{Authentication}
	ErrAuthorization  error = classError{Authorization}
	ErrNotFound       error = classError{NotFound}
	ErrServer         error = classError{Server}
	ErrValidation     error = classError{Validation}
	ErrDataShape      error = classError{DataShape}
)

// ValidationError rejects input before it is sent over the wire.
type ValidationError struct {
	Fields []models.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Validate returns a *ValidationError when fields is non-empty.
func Validate(fields []models.FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// DataShapeError reports a payload that could not be decoded.
type DataShapeError struct {
	What string
	Err  error
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("malformed %s: %v", e.What, e.Err)
}

func (e *DataShapeError) Unwrap() error { return e.Err }

func (e *DataShapeError) Is(target error) bool { return target == ErrDataShape }

// ClassOf returns the class of err, or "" when it isn't one of ours.
func ClassOf(err error) Class {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Class
	}
	switch {
	case errors.Is(err, ErrValidation):
		return Validation
	case errors.Is(err, ErrDataShape):
		return DataShape
	}
	return ""
}

var fallbackMessages = map[Class]string{
	Connectivity:   "No se pudo establecer conexión con el servidor",
	Authentication: "Sesión expirada o credenciales inválidas",
	Authorization:  "No tienes permisos para esta operación",
	NotFound:       "El recurso solicitado no existe",
	Server:         "Error interno del servidor",
	Client:         "La solicitud no pudo ser procesada",
	DataShape:      "Respuesta inesperada del servidor",
}

// UserMessage returns the message to show for err: the backend's own
// message when it sent one, otherwise a fixed fallback for the class.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Error()
	}
	if msg, ok := fallbackMessages[ClassOf(err)]; ok {
		return msg
	}
	return "Ocurrió un error inesperado"
}
