package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/bonosportal/internal/app"
	"github.com/seenimoa/bonosportal/internal/guard"
	"github.com/seenimoa/bonosportal/pkg/models"
)

// --- Calculos Command (investor calculations) ---

var calculosCmd = &cobra.Command{
	Use:   "calculos",
	Short: "Run and review investment calculations (ROLE_INVERSOR)",
}

var calculosHistoryCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"list"},
	Short:   "List your stored calculations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Investor()); err != nil {
			return err
		}
		entries, err := loadHistory(cmd)
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(entries)
		}
		fmt.Printf("  %-5s %-16s %-12s %-28s %10s %10s\n", "ID", "Tipo", "Fecha", "Bono", "Tasa esp.", "TREA")
		for _, h := range entries {
			var tasa, trea *float64
			if h.Calculo != nil {
				tasa, trea = h.Calculo.TasaEsperada, h.Calculo.TREA
			}
			fecha := h.Fecha
			if len(fecha) > 10 {
				fecha = fecha[:10]
			}
			fmt.Printf("  %-5d %-16s %-12s %-28s %10s %10s\n",
				h.ID, h.Tipo, fecha, truncate(h.BonoNombre, 28), opt(tasa), opt(trea))
		}
		fmt.Printf("  %d análisis\n", len(entries))
		return nil
	},
}

var calculosExportCmd = &cobra.Command{
	Use:   "export-csv",
	Short: "Export the calculation history as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Investor()); err != nil {
			return err
		}
		entries, err := loadHistory(cmd)
		if err != nil {
			return err
		}
		path, _ := cmd.Flags().GetString("output")
		var w io.Writer = os.Stdout
		if path != "" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			defer f.Close()
			w = f
		}
		if err := app.WriteHistoryCSV(w, entries); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		if path != "" {
			fmt.Fprintf(os.Stderr, "%d análisis exportados a %s\n", len(entries), path)
		}
		return nil
	},
}

var calculosShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a stored calculation",
	Args:  cobra.ExactArgs(1),
	RunE: investorCalc(func(ctx context.Context, cmd *cobra.Command, args []string) (*models.CalculoInversion, error) {
		id, err := parseID(args[0])
		if err != nil {
			return nil, err
		}
		return rt.calcs.Get(ctx, id)
	}),
}

var calculosCreateCmd = &cobra.Command{
	Use:   "create [bonoId]",
	Short: "Store a calculation at an expected rate",
	Args:  cobra.ExactArgs(1),
	RunE: investorCalc(func(ctx context.Context, cmd *cobra.Command, args []string) (*models.CalculoInversion, error) {
		bonoID, err := parseID(args[0])
		if err != nil {
			return nil, err
		}
		tasa, _ := cmd.Flags().GetFloat64("tasa")
		return rt.calcs.Create(ctx, models.CreateCalculoRequest{BonoID: bonoID, TasaEsperada: tasa})
	}),
}

var calculosDuplicateCmd = &cobra.Command{
	Use:   "duplicate [id]",
	Short: "Store a copy of a calculation",
	Args:  cobra.ExactArgs(1),
	RunE: investorCalc(func(ctx context.Context, cmd *cobra.Command, args []string) (*models.CalculoInversion, error) {
		id, err := parseID(args[0])
		if err != nil {
			return nil, err
		}
		return rt.calcs.Duplicate(ctx, id)
	}),
}

var calculosDeleteCmd = &cobra.Command{
	Use:   "delete [id...]",
	Short: "Delete one or more calculations",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Investor()); err != nil {
			return err
		}
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		deleted, err := rt.calcs.DeleteMany(cmd.Context(), ids)
		return reportBatch("cálculos", deleted, err)
	},
}

// --- Enriched calculations ---

var calculosTREACmd = &cobra.Command{
	Use:   "trea [bonoId]",
	Short: "TREA at a purchase price",
	Args:  cobra.ExactArgs(1),
	RunE: investorCalc(func(ctx context.Context, cmd *cobra.Command, args []string) (*models.CalculoInversion, error) {
		bonoID, err := parseID(args[0])
		if err != nil {
			return nil, err
		}
		precio, _ := cmd.Flags().GetFloat64("precio")
		return rt.calcs.TREAEnriched(ctx, bonoID, precio)
	}),
}

var calculosTCEACmd = &cobra.Command{
	Use:   "tcea [bonoId]",
	Short: "TCEA of a bond",
	Args:  cobra.ExactArgs(1),
	RunE: investorCalc(func(ctx context.Context, cmd *cobra.Command, args []string) (*models.CalculoInversion, error) {
		bonoID, err := parseID(args[0])
		if err != nil {
			return nil, err
		}
		return rt.calcs.TCEAEnriched(ctx, bonoID)
	}),
}

var calculosDuracionCmd = &cobra.Command{
	Use:   "duracion [bonoId]",
	Short: "Duration of a bond",
	Args:  cobra.ExactArgs(1),
	RunE: investorCalc(func(ctx context.Context, cmd *cobra.Command, args []string) (*models.CalculoInversion, error) {
		bonoID, err := parseID(args[0])
		if err != nil {
			return nil, err
		}
		return rt.calcs.DurationEnriched(ctx, bonoID)
	}),
}

var calculosConvexidadCmd = &cobra.Command{
	Use:   "convexidad [bonoId]",
	Short: "Convexity of a bond",
	Args:  cobra.ExactArgs(1),
	RunE: investorCalc(func(ctx context.Context, cmd *cobra.Command, args []string) (*models.CalculoInversion, error) {
		bonoID, err := parseID(args[0])
		if err != nil {
			return nil, err
		}
		return rt.calcs.ConvexityEnriched(ctx, bonoID)
	}),
}

var calculosPrecioMaximoCmd = &cobra.Command{
	Use:   "precio-maximo [bonoId]",
	Short: "Maximum price for an expected rate",
	Args:  cobra.ExactArgs(1),
	RunE: investorCalc(func(ctx context.Context, cmd *cobra.Command, args []string) (*models.CalculoInversion, error) {
		bonoID, err := parseID(args[0])
		if err != nil {
			return nil, err
		}
		tasa, _ := cmd.Flags().GetFloat64("tasa")
		return rt.calcs.MaxPriceEnriched(ctx, bonoID, tasa)
	}),
}

var calculosAnalisisCmd = &cobra.Command{
	Use:   "analisis [bonoId]",
	Short: "Full analysis at an expected rate",
	Args:  cobra.ExactArgs(1),
	RunE: investorCalc(func(ctx context.Context, cmd *cobra.Command, args []string) (*models.CalculoInversion, error) {
		bonoID, err := parseID(args[0])
		if err != nil {
			return nil, err
		}
		tasa, _ := cmd.Flags().GetFloat64("tasa")
		return rt.calcs.FullAnalysis(ctx, bonoID, tasa, optFloat(cmd, "precio"))
	}),
}

var calculosIndependienteCmd = &cobra.Command{
	Use:   "independiente",
	Short: "Analyze bond terms without a stored bond",
	RunE: investorCalc(func(ctx context.Context, cmd *cobra.Command, args []string) (*models.CalculoInversion, error) {
		f := cmd.Flags()
		var req models.StandaloneCalculoRequest
		req.PrecioCompra, _ = f.GetFloat64("precio")
		req.ValorNominal, _ = f.GetFloat64("valor-nominal")
		req.TasaCupon, _ = f.GetFloat64("tasa-cupon")
		req.PlazoAnios, _ = f.GetInt("plazo")
		req.FrecuenciaPagos, _ = f.GetInt("frecuencia")
		return rt.calcs.Standalone(ctx, req)
	}),
}

var calculosFlujoCmd = &cobra.Command{
	Use:   "flujo-inversionista [bonoId]",
	Short: "Investor cash flow at a purchase price, as returned by the backend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Investor()); err != nil {
			return err
		}
		bonoID, err := parseID(args[0])
		if err != nil {
			return err
		}
		precio, _ := cmd.Flags().GetFloat64("precio")
		raw, err := rt.calcs.InvestorCashFlow(cmd.Context(), bonoID, precio)
		if err != nil {
			return userError(err)
		}
		_, err = os.Stdout.Write(append(raw, '\n'))
		return err
	},
}

// investorCalc wraps a command that yields one calculation.
func investorCalc(fn func(context.Context, *cobra.Command, []string) (*models.CalculoInversion, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Investor()); err != nil {
			return err
		}
		var c *models.CalculoInversion
		if err := rt.track(cmd.Context(), cmd.Name(), func(ctx context.Context) error {
			var err error
			c, err = fn(ctx, cmd, args)
			return err
		}); err != nil {
			return userError(err)
		}
		if jsonOutput(cmd) {
			return printJSON(c)
		}
		printCalculo(c)
		return nil
	}
}

func loadHistory(cmd *cobra.Command) ([]models.AnalisisHistorial, error) {
	tipo, _ := cmd.Flags().GetString("tipo")
	bono, _ := cmd.Flags().GetInt64("bono")
	var entries []models.AnalisisHistorial
	err := rt.track(cmd.Context(), "history", func(ctx context.Context) error {
		var err error
		entries, err = rt.calcs.History(ctx, app.HistoryFilter{Tipo: tipo, BonoID: bono})
		return err
	})
	if err != nil {
		return nil, userError(err)
	}
	return entries, nil
}

func init() {
	for _, c := range []*cobra.Command{calculosHistoryCmd, calculosExportCmd} {
		c.Flags().String("tipo", "", "analysis type: TREA, FLUJO_CAJA or CALCULO_BACKEND")
		c.Flags().Int64("bono", 0, "only analyses of this bond")
	}
	calculosExportCmd.Flags().StringP("output", "o", "",
		fmt.Sprintf("output file (e.g. historial-analisis-%s.csv; default stdout)", time.Now().Format(models.DateLayout)))

	for _, c := range []*cobra.Command{calculosCreateCmd, calculosPrecioMaximoCmd, calculosAnalisisCmd} {
		c.Flags().Float64("tasa", 0, "expected rate, percent")
		_ = c.MarkFlagRequired("tasa")
	}
	for _, c := range []*cobra.Command{calculosTREACmd, calculosFlujoCmd} {
		c.Flags().Float64("precio", 0, "purchase price")
		_ = c.MarkFlagRequired("precio")
	}
	calculosAnalisisCmd.Flags().Float64("precio", 0, "purchase price")

	f := calculosIndependienteCmd.Flags()
	f.Float64("precio", 0, "purchase price")
	f.Float64("valor-nominal", 0, "face value")
	f.Float64("tasa-cupon", 0, "coupon rate, percent")
	f.Int("plazo", 0, "term in years")
	f.Int("frecuencia", 2, "payments per year")

	calculosCmd.AddCommand(calculosHistoryCmd, calculosExportCmd, calculosShowCmd, calculosCreateCmd,
		calculosDuplicateCmd, calculosDeleteCmd, calculosTREACmd, calculosTCEACmd, calculosDuracionCmd,
		calculosConvexidadCmd, calculosPrecioMaximoCmd, calculosAnalisisCmd, calculosIndependienteCmd,
		calculosFlujoCmd)
}
