package api

import (
	"errors"
	"net/http"

	"github.com/seenimoa/bonosportal/internal/app"
	"github.com/seenimoa/bonosportal/pkg/models"
)

// BondListResponse is returned by the bond list endpoints.
type BondListResponse struct {
	Bonos   []app.BondView `json:"bonos"`
	Stats   *app.Stats     `json:"stats,omitempty"`
	Monedas []string       `json:"monedas"`
}

// BatchDeleteRequest is the body for DELETE /emisor/bonos.
type BatchDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

// BatchDeleteResponse lists the outcome of a batch delete.
type BatchDeleteResponse struct {
	Deleted []int64      `json:"deleted"`
	Failed  []FailedItem `json:"failed,omitempty"`
}

// FailedItem is one id a batch could not process.
type FailedItem struct {
	ID    int64  `json:"id"`
	Error string `json:"error"`
}

func (s *Server) handleIssuerBonds(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r.URL.Query())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if _, err := s.svc.Issuer.Load(r.Context()); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	stats := s.svc.Issuer.Stats()
	writeData(w, http.StatusOK, BondListResponse{
		Bonos:   s.svc.Issuer.View(f),
		Stats:   &stats,
		Monedas: s.svc.Issuer.AvailableCurrencies(),
	})
}

func (s *Server) handleIssuerBond(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	b, err := s.svc.Issuer.Get(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, b)
}

func (s *Server) handleCreateBond(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBondRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	b, err := s.svc.Issuer.Create(r.Context(), req)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, b)
}

func (s *Server) handleUpdateBond(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	var req models.CreateBondRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	b, err := s.svc.Issuer.Update(r.Context(), id, req)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBond(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if err := s.svc.Issuer.Delete(r.Context(), id); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, BatchDeleteResponse{Deleted: []int64{id}})
}

func (s *Server) handleDeleteBonds(w http.ResponseWriter, r *http.Request) {
	var req BatchDeleteRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids is required")
		return
	}
	deleted, err := s.svc.Issuer.DeleteMany(r.Context(), req.IDs)
	s.writeBatch(w, r, deleted, err)
}

// writeBatch answers 200 when every item succeeded and 207 with the
// per-item failures otherwise.
func (s *Server) writeBatch(w http.ResponseWriter, r *http.Request, done []int64, err error) {
	resp := BatchDeleteResponse{Deleted: done}
	if resp.Deleted == nil {
		resp.Deleted = []int64{}
	}
	if err == nil {
		writeData(w, http.StatusOK, resp)
		return
	}
	var batchErr *app.BatchError
	if !errors.As(err, &batchErr) {
		s.writeFailure(w, r, err)
		return
	}
	for _, f := range batchErr.Failed {
		resp.Failed = append(resp.Failed, FailedItem{ID: f.ID, Error: f.Err.Error()})
	}
	s.log.Warn().Int("failed", len(batchErr.Failed)).Int("total", batchErr.Total).Msg("batch partially failed")
	writeJSON(w, http.StatusMultiStatus, APIResponse{
		Success: false,
		Data:    resp,
		Error:   batchErr.Error(),
	})
}

func (s *Server) handleIssuerCashFlow(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	flow, err := s.svc.Issuer.CashFlow(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, flow)
}
