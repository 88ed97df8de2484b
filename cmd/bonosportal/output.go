package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/seenimoa/bonosportal/internal/apierr"
	"github.com/seenimoa/bonosportal/internal/app"
	"github.com/seenimoa/bonosportal/pkg/models"
	"github.com/seenimoa/bonosportal/pkg/utils"
)

const rule = "═══════════════════════════════════════"

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// userError turns a backend failure into the message shown to the user,
// keeping the original error for errors.Is/As.
func userError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", apierr.UserMessage(err), err)
}

func opt(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}

func printBondViews(views []app.BondView) {
	fmt.Printf("  %-5s %-28s %-6s %10s %7s %6s %8s %7s  %s\n",
		"ID", "Nombre", "Moneda", "Nominal", "Tasa%", "Plazo", "Días", "Avance", "Estado")
	for _, v := range views {
		fmt.Printf("  %-5d %-28s %-6s %10s %7.2f %6d %8d %6.1f%%  %s\n",
			v.ID, truncate(v.Nombre, 28), v.CurrencyCode(), utils.FormatCompact(v.ValorNominal), v.TasaCupon, v.PlazoAnios,
			v.Metrics.DaysToMaturity, v.Metrics.ProgressPercentage, v.Status.Label())
	}
	fmt.Printf("  %d bonos\n", len(views))
}

func printBond(b *models.Bond) {
	fmt.Println(rule)
	fmt.Printf("  %s (#%d)\n", b.Nombre, b.ID)
	fmt.Println(rule)
	if b.Descripcion != "" {
		fmt.Printf("  %s\n\n", b.Descripcion)
	}
	fmt.Printf("  Valor nominal:   %s\n", utils.FormatMoney(b.ValorNominal, b.CurrencyCode()))
	fmt.Printf("  Tasa cupón:      %s\n", utils.FormatPct(b.TasaCupon))
	fmt.Printf("  Plazo:           %d años, %d pagos/año\n", b.PlazoAnios, b.FrecuenciaPagos)
	fmt.Printf("  Emisión:         %s\n", b.FechaEmision)
	if m, err := b.Maturity(); err == nil {
		fmt.Printf("  Vencimiento:     %s\n", m.Format(models.DateLayout))
	}
	fmt.Printf("  Tasa descuento:  %s\n", utils.FormatPct(b.TasaDescuento))
	fmt.Printf("  Amortización:    %s\n", b.MetodoAmortizacion.Label())
	if b.PlazoGracia != nil && b.PlazoGracia.Tipo != "" {
		fmt.Printf("  Gracia:          %s (%d periodos)\n", b.PlazoGracia.Tipo, b.PlazoGracia.Periodos)
	}
	if b.EmisorNombre != "" {
		fmt.Printf("  Emisor:          %s\n", b.EmisorNombre)
	}
}

func printCashFlow(flow []models.CashFlowEntry) {
	fmt.Printf("  %-4s %-12s %12s %12s %12s %14s\n", "N", "Fecha", "Cupón", "Amort.", "Flujo", "Saldo")
	for _, e := range flow {
		fmt.Printf("  %-4d %-12s %12.2f %12.2f %12.2f %14.2f\n",
			e.Periodo, e.Fecha, e.Cupon, e.Amortizacion, e.FlujoTotal, e.SaldoInsoluto)
	}
}

func printCalculo(c *models.CalculoInversion) {
	fmt.Println(rule)
	title := "Cálculo"
	if c.ID != 0 {
		title = fmt.Sprintf("Cálculo #%d", c.ID)
	}
	if c.BonoNombre != "" {
		title += ": " + c.BonoNombre
	}
	fmt.Printf("  %s\n", title)
	fmt.Println(rule)
	rows := []struct {
		label string
		v     *float64
	}{
		{"Tasa esperada", c.TasaEsperada},
		{"TREA", c.TREA},
		{"TCEA", c.TCEA},
		{"Precio máximo", c.PrecioMaximo},
		{"Valor presente", c.ValorPresente},
		{"Duración", c.Duracion},
		{"Duración mod.", c.DuracionModificada},
		{"Convexidad", c.Convexidad},
		{"VAN", c.VAN},
		{"TIR", c.TIR},
		{"Precio justo", c.PrecioJusto},
		{"Yield", c.Yield},
		{"Ganancia capital", c.GananciaCapital},
		{"Ingresos cupones", c.IngresosCupones},
		{"Rentabilidad total", c.RentabilidadTotal},
		{"Ganancia total", c.GananciaTotal},
	}
	for _, r := range rows {
		fmt.Printf("  %-20s %s\n", r.label+":", opt(r.v))
	}
	if v, ok := c.ValorFinalEsperado(); ok {
		fmt.Printf("  %-20s %.2f\n", "Valor final esp.:", v)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func printBonds(bonds []models.Bond) {
	fmt.Printf("  %-5s %-28s %-6s %12s %7s %6s  %s\n",
		"ID", "Nombre", "Moneda", "Nominal", "Tasa%", "Plazo", "Emisión")
	for _, b := range bonds {
		fmt.Printf("  %-5d %-28s %-6s %12.2f %7.2f %6d  %s\n",
			b.ID, truncate(b.Nombre, 28), b.CurrencyCode(), b.ValorNominal, b.TasaCupon, b.PlazoAnios, b.FechaEmision)
	}
	fmt.Printf("  %d bonos\n", len(bonds))
}
