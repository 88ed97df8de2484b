package app

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/seenimoa/bonosportal/internal/apierr"
	"github.com/seenimoa/bonosportal/internal/ports"
	"github.com/seenimoa/bonosportal/pkg/models"
)

// Calculations is the investor calculation service. The port's methods are
// available directly; the service adds validation, history and batch
// deletion.
type Calculations struct {
	ports.CalculationRepository
	log  zerolog.Logger
	opts Options
}

// NewCalculations creates the calculation service.
func NewCalculations(repo ports.CalculationRepository, log zerolog.Logger, opts Options) *Calculations {
	return &Calculations{
		CalculationRepository: repo,
		log:                   log.With().Str("component", "calculations").Logger(),
		opts:                  opts,
	}
}

// Create validates req before storing it.
func (s *Calculations) Create(ctx context.Context, req models.CreateCalculoRequest) (*models.CalculoInversion, error) {
	var fields []models.FieldError
	if req.BonoID <= 0 {
		fields = append(fields, models.FieldError{Field: "bonoId", Message: "is required"})
	}
	if req.TasaEsperada <= 0 {
		fields = append(fields, models.FieldError{Field: "tasaEsperada", Message: "must be positive"})
	}
	if err := apierr.Validate(fields); err != nil {
		return nil, err
	}
	return s.CalculationRepository.Create(ctx, req)
}

// Duplicate stores a new calculation with the bond and expected rate of an
// existing one.
func (s *Calculations) Duplicate(ctx context.Context, id int64) (*models.CalculoInversion, error) {
	orig, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	req := models.CreateCalculoRequest{BonoID: orig.BonoID}
	if orig.TasaEsperada != nil {
		req.TasaEsperada = *orig.TasaEsperada
	}
	return s.Create(ctx, req)
}

// DeleteMany deletes ids concurrently; see IssuerBonds.DeleteMany.
func (s *Calculations) DeleteMany(ctx context.Context, ids []int64) ([]int64, error) {
	deleted, err := runBatch(ctx, ids, s.opts.BatchLimit, s.Delete)
	if err != nil {
		s.log.Warn().Err(err).Int("deleted", len(deleted)).Msg("batch delete partially failed")
	}
	return deleted, err
}

// --- History ---

// HistoryFilter selects history entries. Zero values match everything.
type HistoryFilter struct {
	Tipo   string
	BonoID int64
}

// History lists the stored calculations as history entries. The backend
// can't filter, so filtering happens here.
func (s *Calculations) History(ctx context.Context, f HistoryFilter) ([]models.AnalisisHistorial, error) {
	calcs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.AnalisisHistorial, 0, len(calcs))
	for i := range calcs {
		h := models.HistorialFromCalculo(&calcs[i])
		if f.Tipo != "" && h.Tipo != f.Tipo {
			continue
		}
		if f.BonoID != 0 && h.BonoID != f.BonoID {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

var historyHeader = []string{"ID", "Tipo", "Fecha", "Bono", "Tasa Esperada", "TREA", "Precio Máximo"}

// WriteHistoryCSV writes entries as CSV. Absent metrics are left empty.
func WriteHistoryCSV(w io.Writer, entries []models.AnalisisHistorial) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(historyHeader); err != nil {
		return err
	}
	for _, h := range entries {
		var tasa, trea, precio *float64
		if h.Calculo != nil {
			tasa, trea, precio = h.Calculo.TasaEsperada, h.Calculo.TREA, h.Calculo.PrecioMaximo
		}
		row := []string{
			strconv.FormatInt(h.ID, 10),
			h.Tipo,
			datePart(h.Fecha),
			h.BonoNombre,
			formatOptional(tasa),
			formatOptional(trea),
			formatOptional(precio),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write history csv: %w", err)
	}
	return nil
}

func datePart(s string) string {
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
