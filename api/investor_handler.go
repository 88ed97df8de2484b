package api

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/seenimoa/bonosportal/internal/app"
	"github.com/seenimoa/bonosportal/pkg/models"
)

// AnalysisRequest is the body for POST /inversor/catalogo/{id}/analisis.
type AnalysisRequest struct {
	TasaEsperada float64  `json:"tasaEsperada"`
	PrecioCompra *float64 `json:"precioCompra,omitempty"`
}

// AnalysisResponse is a full analysis with the combined final value.
type AnalysisResponse struct {
	Calculo            *models.CalculoInversion `json:"calculo"`
	ValorFinalEsperado *float64                 `json:"valorFinalEsperado,omitempty"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r.URL.Query())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if _, err := s.svc.Catalog.Load(r.Context()); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, BondListResponse{
		Bonos:   s.svc.Catalog.View(f),
		Monedas: s.svc.Catalog.AvailableCurrencies(),
	})
}

func (s *Server) handleCatalogBond(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	b, err := s.svc.Catalog.CatalogDetail(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, b)
}

func (s *Server) handleCatalogCashFlow(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	flow, err := s.svc.Catalog.CashFlow(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, flow)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	var req AnalysisRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if req.TasaEsperada <= 0 {
		writeError(w, http.StatusBadRequest, "tasaEsperada must be positive")
		return
	}
	calc, err := s.svc.Calculations.FullAnalysis(r.Context(), id, req.TasaEsperada, req.PrecioCompra)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	resp := AnalysisResponse{Calculo: calc}
	if v, ok := calc.ValorFinalEsperado(); ok {
		resp.ValorFinalEsperado = &v
	}
	writeData(w, http.StatusOK, resp)
}

// --- History ---

func historyFilter(r *http.Request) (app.HistoryFilter, error) {
	f := app.HistoryFilter{Tipo: r.URL.Query().Get("tipo")}
	if raw := r.URL.Query().Get("bonoId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, err
		}
		f.BonoID = id
	}
	return f, nil
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	f, err := historyFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bonoId must be an integer")
		return
	}
	entries, err := s.svc.Calculations.History(r.Context(), f)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, entries)
}

func (s *Server) handleExportHistory(w http.ResponseWriter, r *http.Request) {
	f, err := historyFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bonoId must be an integer")
		return
	}
	entries, err := s.svc.Calculations.History(r.Context(), f)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := app.WriteHistoryCSV(&buf, entries); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	name := "historial-analisis-" + time.Now().Format(models.DateLayout) + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleCreateCalculo(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCalculoRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	calc, err := s.svc.Calculations.Create(r.Context(), req)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, calc)
}

func (s *Server) handleDuplicateCalculo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	calc, err := s.svc.Calculations.Duplicate(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, calc)
}

func (s *Server) handleDeleteCalculos(w http.ResponseWriter, r *http.Request) {
	var req BatchDeleteRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids is required")
		return
	}
	deleted, err := s.svc.Calculations.DeleteMany(r.Context(), req.IDs)
	s.writeBatch(w, r, deleted, err)
}
