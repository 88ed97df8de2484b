package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seenimoa/bonosportal/internal/guard"
	"github.com/seenimoa/bonosportal/pkg/models"
)

// --- Catalogo Command (investor area) ---

var catalogoCmd = &cobra.Command{
	Use:   "catalogo",
	Short: "Browse published bonds (ROLE_INVERSOR)",
}

var catalogoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the catalog with derived metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Investor()); err != nil {
			return err
		}
		f, err := filterFromFlags(cmd)
		if err != nil {
			return err
		}
		if err := rt.track(cmd.Context(), "catalog", func(ctx context.Context) error {
			_, err := rt.catalog.Load(ctx)
			return err
		}); err != nil {
			return userError(err)
		}
		views := rt.catalog.View(f)
		if jsonOutput(cmd) {
			return printJSON(views)
		}
		printBondViews(views)
		if cur := rt.catalog.AvailableCurrencies(); len(cur) > 0 {
			fmt.Printf("  Monedas: %s\n", strings.Join(cur, ", "))
		}
		return nil
	},
}

var catalogoShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a published bond",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Investor()); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		b, err := rt.catalog.CatalogDetail(cmd.Context(), id)
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

var catalogoMonedaCmd = &cobra.Command{
	Use:   "moneda [codigo]",
	Short: "List bonds in one currency",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Investor()); err != nil {
			return err
		}
		bonds, err := rt.catalog.ByCurrency(cmd.Context(), args[0])
		if err != nil {
			return userError(err)
		}
		if jsonOutput(cmd) {
			return printJSON(bonds)
		}
		printBonds(bonds)
		return nil
	},
}

var catalogoTasaCmd = &cobra.Command{
	Use:   "tasa",
	Short: "List bonds within a coupon-rate range",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Investor()); err != nil {
			return err
		}
		filter := models.RateFilter{
			TasaMinima: optFloat(cmd, "min"),
			TasaMaxima: optFloat(cmd, "max"),
		}
		bonds, err := rt.catalog.ByRate(cmd.Context(), filter)
		if err != nil {
			return userError(err)
		}
		if jsonOutput(cmd) {
			return printJSON(bonds)
		}
		printBonds(bonds)
		return nil
	},
}

var catalogoFlujoCmd = &cobra.Command{
	Use:   "flujo [id]",
	Short: "Show the investor cash flow of a bond",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Investor()); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		flow, err := rt.catalog.CashFlow(cmd.Context(), id)
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

// --- Per-bond calculations ---

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Per-bond calculations computed by the backend",
}

var calcFlujoCmd = &cobra.Command{
	Use:   "flujo [id]",
	Short: "Cash flow discounted at a given rate",
	Args:  cobra.ExactArgs(1),
	RunE: bondCalc(func(ctx context.Context, cmd *cobra.Command, id int64) (interface{}, error) {
		flow, err := rt.catalog.Calculations().CashFlow(ctx, id, optFloat(cmd, "tasa-descuento"))
		if err == nil && !jsonOutput(cmd) {
			printCashFlow(flow)
			return nil, nil
		}
		return flow, err
	}),
}

var calcMetricasCmd = &cobra.Command{
	Use:   "metricas [id]",
	Short: "Duration, modified duration and convexity",
	Args:  cobra.ExactArgs(1),
	RunE: bondCalc(func(ctx context.Context, cmd *cobra.Command, id int64) (interface{}, error) {
		return rt.catalog.Calculations().Metrics(ctx, id, optFloat(cmd, "tasa-mercado"), optFloat(cmd, "cambio-puntos"))
	}),
}

var calcPrecioCmd = &cobra.Command{
	Use:   "precio [id]",
	Short: "Bond price at a market rate",
	Args:  cobra.ExactArgs(1),
	RunE: bondCalc(func(ctx context.Context, cmd *cobra.Command, id int64) (interface{}, error) {
		return rt.catalog.Calculations().Price(ctx, id, optFloat(cmd, "tasa-mercado"))
	}),
}

var calcPrecioMercadoCmd = &cobra.Command{
	Use:   "precio-mercado [id]",
	Short: "Market price with percentage of face value",
	Args:  cobra.ExactArgs(1),
	RunE: bondCalc(func(ctx context.Context, cmd *cobra.Command, id int64) (interface{}, error) {
		return rt.catalog.Calculations().MarketPrice(ctx, id, optFloat(cmd, "tasa-mercado"))
	}),
}

var calcTCEACmd = &cobra.Command{
	Use:   "tcea [id]",
	Short: "Issuer effective annual cost rate",
	Args:  cobra.ExactArgs(1),
	RunE: bondCalc(func(ctx context.Context, cmd *cobra.Command, id int64) (interface{}, error) {
		costos, _ := cmd.Flags().GetFloat64("costos")
		return rt.catalog.Calculations().TCEA(ctx, id, costos)
	}),
}

var calcTREACmd = &cobra.Command{
	Use:   "trea [id]",
	Short: "Investor effective annual yield",
	Args:  cobra.ExactArgs(1),
	RunE: bondCalc(func(ctx context.Context, cmd *cobra.Command, id int64) (interface{}, error) {
		precio, _ := cmd.Flags().GetFloat64("precio")
		return rt.catalog.Calculations().TREA(ctx, id, precio)
	}),
}

// bondCalc wraps a per-bond calculation: any signed-in user may run it.
// A nil result means fn already printed its output.
func bondCalc(fn func(context.Context, *cobra.Command, int64) (interface{}, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Authenticated()); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		var out interface{}
		if err := rt.track(cmd.Context(), cmd.Name(), func(ctx context.Context) error {
			var err error
			out, err = fn(ctx, cmd, id)
			return err
		}); err != nil {
			return userError(err)
		}
		if out == nil {
			return nil
		}
		return printJSON(out)
	}
}

func optFloat(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return &v
}

func init() {
	addFilterFlags(catalogoListCmd)
	catalogoTasaCmd.Flags().Float64("min", 0, "minimum coupon rate")
	catalogoTasaCmd.Flags().Float64("max", 0, "maximum coupon rate")

	calcFlujoCmd.Flags().Float64("tasa-descuento", 0, "discount rate (default: the bond's own)")
	calcMetricasCmd.Flags().Float64("tasa-mercado", 0, "market rate")
	calcMetricasCmd.Flags().Float64("cambio-puntos", 0, "rate change in percentage points")
	calcPrecioCmd.Flags().Float64("tasa-mercado", 0, "market rate")
	calcPrecioMercadoCmd.Flags().Float64("tasa-mercado", 0, "market rate")
	calcTCEACmd.Flags().Float64("costos", 0, "issuance costs")
	calcTREACmd.Flags().Float64("precio", 0, "purchase price")
	_ = calcTREACmd.MarkFlagRequired("precio")

	calcCmd.AddCommand(calcFlujoCmd, calcMetricasCmd, calcPrecioCmd, calcPrecioMercadoCmd, calcTCEACmd, calcTREACmd)
	catalogoCmd.AddCommand(catalogoListCmd, catalogoShowCmd, catalogoMonedaCmd, catalogoTasaCmd, catalogoFlujoCmd, calcCmd)
}
