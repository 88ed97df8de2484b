package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/seenimoa/bonosportal/internal/app"
	"github.com/seenimoa/bonosportal/internal/guard"
	"github.com/seenimoa/bonosportal/pkg/models"
	"github.com/seenimoa/bonosportal/pkg/utils"
)

// --- Bonos Command (issuer area) ---

var bonosCmd = &cobra.Command{
	Use:   "bonos",
	Short: "Manage the bonds you issue (ROLE_EMISOR)",
}

var bonosListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your bonds with derived metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Issuer()); err != nil {
			return err
		}
		f, err := filterFromFlags(cmd)
		if err != nil {
			return err
		}
		if err := rt.track(cmd.Context(), "bonds", func(ctx context.Context) error {
			_, err := rt.issuer.Load(ctx)
			return err
		}); err != nil {
			return userError(err)
		}
		views := rt.issuer.View(f)
		if jsonOutput(cmd) {
			return printJSON(views)
		}
		printBondViews(views)
		return nil
	},
}

var bonosStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize your bonds",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Issuer()); err != nil {
			return err
		}
		if err := rt.track(cmd.Context(), "bonds", func(ctx context.Context) error {
			_, err := rt.issuer.Load(ctx)
			return err
		}); err != nil {
			return userError(err)
		}
		st := rt.issuer.Stats()
		if jsonOutput(cmd) {
			return printJSON(st)
		}
		fmt.Println(rule)
		fmt.Println("  Resumen de bonos")
		fmt.Println(rule)
		fmt.Printf("  Total:               %d\n", st.TotalBonos)
		fmt.Printf("  Activos:             %d\n", st.BonosActivos)
		fmt.Printf("  Valor total:         %s\n", utils.FormatMoney(st.ValorTotal, ""))
		fmt.Printf("  Tasa promedio:       %s\n", utils.FormatPct(st.PromedioTasa))
		fmt.Printf("  Rentabilidad total:  %s\n", utils.FormatMoney(st.RentabilidadTotal, ""))
		if st.ProximoVencimiento != nil {
			fmt.Printf("  Próximo vencimiento: %s\n", st.ProximoVencimiento.Format(models.DateLayout))
		}
		fmt.Printf("  Monedas:             %v\n", rt.issuer.AvailableCurrencies())
		return nil
	},
}

var bonosShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one of your bonds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Issuer()); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		b, err := rt.issuer.Get(cmd.Context(), id)
		if err != nil {
			return userError(err)
		}
		if jsonOutput(cmd) {
			return printJSON(b)
		}
		printBond(b)
		return nil
	},
}

var bonosCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a new bond",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Issuer()); err != nil {
			return err
		}
		req := bondRequestFromFlags(cmd)
		b, err := rt.issuer.Create(cmd.Context(), req)
		if err != nil {
			return userError(err)
		}
		if jsonOutput(cmd) {
			return printJSON(b)
		}
		fmt.Printf("Bono #%d creado\n", b.ID)
		return nil
	},
}

var bonosUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Replace a bond's terms",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Issuer()); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		b, err := rt.issuer.Update(cmd.Context(), id, bondRequestFromFlags(cmd))
		if err != nil {
			return userError(err)
		}
		if jsonOutput(cmd) {
			return printJSON(b)
		}
		fmt.Printf("Bono #%d actualizado\n", b.ID)
		return nil
	},
}

var bonosDeleteCmd = &cobra.Command{
	Use:   "delete [id...]",
	Short: "Delete one or more bonds",
	Long: `Delete one or more bonds. Several ids are deleted concurrently;
deletions that succeed stay applied even when others fail.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Issuer()); err != nil {
			return err
		}
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		deleted, err := rt.issuer.DeleteMany(cmd.Context(), ids)
		return reportBatch("bonos", deleted, err)
	},
}

var bonosFlujoCmd = &cobra.Command{
	Use:   "flujo [id]",
	Short: "Show a bond's cash-flow schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Issuer()); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		flow, err := rt.issuer.CashFlow(cmd.Context(), id)
		if err != nil {
			return userError(err)
		}
		if jsonOutput(cmd) {
			return printJSON(flow)
		}
		printCashFlow(flow)
		return nil
	},
}

func init() {
	addFilterFlags(bonosListCmd)
	for _, c := range []*cobra.Command{bonosCreateCmd, bonosUpdateCmd} {
		addBondFlags(c)
	}
	bonosCmd.AddCommand(bonosListCmd, bonosStatsCmd, bonosShowCmd, bonosCreateCmd,
		bonosUpdateCmd, bonosDeleteCmd, bonosFlujoCmd)
}

// --- Flags ---

func addBondFlags(c *cobra.Command) {
	f := c.Flags()
	f.String("nombre", "", "bond name")
	f.String("descripcion", "", "description")
	f.Float64("valor-nominal", 0, "face value")
	f.Float64("tasa-cupon", 0, "coupon rate, percent")
	f.Int("plazo", 0, "term in years")
	f.Int("frecuencia", 2, "payments per year")
	f.String("moneda", "PEN", "currency code")
	f.String("fecha-emision", "", "issue date, YYYY-MM-DD")
	f.Int("gracia-total", 0, "total grace periods")
	f.Int("gracia-parcial", 0, "partial grace periods")
	f.Float64("tasa-descuento", 0, "discount rate, percent")
	f.String("metodo", string(models.Americano), "amortization: AMERICANO, ALEMAN or FRANCES")
}

func bondRequestFromFlags(c *cobra.Command) models.CreateBondRequest {
	f := c.Flags()
	var req models.CreateBondRequest
	req.Nombre, _ = f.GetString("nombre")
	req.Descripcion, _ = f.GetString("descripcion")
	req.ValorNominal, _ = f.GetFloat64("valor-nominal")
	req.TasaCupon, _ = f.GetFloat64("tasa-cupon")
	req.PlazoAnios, _ = f.GetInt("plazo")
	req.FrecuenciaPagos, _ = f.GetInt("frecuencia")
	req.Moneda, _ = f.GetString("moneda")
	req.FechaEmision, _ = f.GetString("fecha-emision")
	req.PlazosGraciaTotal, _ = f.GetInt("gracia-total")
	req.PlazosGraciaParcial, _ = f.GetInt("gracia-parcial")
	req.TasaDescuento, _ = f.GetFloat64("tasa-descuento")
	metodo, _ := f.GetString("metodo")
	req.MetodoAmortizacion = models.MetodoAmortizacion(metodo)
	return req
}

func addFilterFlags(c *cobra.Command) {
	f := c.Flags()
	f.String("search", "", "match name or description")
	f.String("moneda", "", "currency code")
	f.Int("plazo-min", 0, "minimum term in years")
	f.Int("plazo-max", 0, "maximum term in years")
	f.Float64("tasa-min", 0, "minimum coupon rate")
	f.Float64("tasa-max", 0, "maximum coupon rate")
	f.String("sort-by", string(app.SortFechaEmision), "nombre, valorNominal, tasaCupon or fechaEmision")
	f.String("order", string(app.Desc), "asc or desc")
}

func filterFromFlags(c *cobra.Command) (app.Filter, error) {
	f := c.Flags()
	filter := app.DefaultFilter()
	filter.Search, _ = f.GetString("search")
	filter.Moneda, _ = f.GetString("moneda")
	if f.Changed("plazo-min") {
		v, _ := f.GetInt("plazo-min")
		filter.PlazoMin = app.Int(v)
	}
	if f.Changed("plazo-max") {
		v, _ := f.GetInt("plazo-max")
		filter.PlazoMax = app.Int(v)
	}
	if f.Changed("tasa-min") {
		v, _ := f.GetFloat64("tasa-min")
		filter.TasaMin = models.Float(v)
	}
	if f.Changed("tasa-max") {
		v, _ := f.GetFloat64("tasa-max")
		filter.TasaMax = models.Float(v)
	}

	sortBy, _ := f.GetString("sort-by")
	switch s := app.SortField(sortBy); s {
	case app.SortNombre, app.SortValorNominal, app.SortTasaCupon, app.SortFechaEmision:
		filter.SortBy = s
	default:
		return filter, fmt.Errorf("unknown --sort-by %q", sortBy)
	}
	order, _ := f.GetString("order")
	switch o := app.Order(order); o {
	case app.Asc, app.Desc:
		filter.SortOrder = o
	default:
		return filter, fmt.Errorf("unknown --order %q", order)
	}
	return filter, nil
}

// --- Helpers ---

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := parseID(a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// reportBatch prints the outcome of a batch delete.
func reportBatch(what string, deleted []int64, err error) error {
	if len(deleted) > 0 {
		fmt.Printf("Eliminados (%s): %v\n", what, deleted)
	}
	if err == nil {
		return nil
	}
	var batchErr *app.BatchError
	if errors.As(err, &batchErr) {
		for _, f := range batchErr.Failed {
			fmt.Printf("  #%d: %s\n", f.ID, userError(f.Err))
		}
		return fmt.Errorf("%d de %d eliminaciones fallaron", len(batchErr.Failed), batchErr.Total)
	}
	return userError(err)
}
