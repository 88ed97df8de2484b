package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seenimoa/bonosportal/internal/guard"
	"github.com/seenimoa/bonosportal/pkg/models"
	"github.com/seenimoa/bonosportal/pkg/utils"
)

// --- General bond registry ---

var generalCmd = &cobra.Command{
	Use:   "general",
	Short: "Administer the general bond registry",
}

// generalList runs a registry listing and prints it.
func generalList(cmd *cobra.Command, what string, fetch func(context.Context) ([]models.GeneralBond, error)) error {
	if err := rt.require(guard.Authenticated()); err != nil {
		return err
	}
	var bonds []models.GeneralBond
	if err := rt.track(cmd.Context(), what, func(ctx context.Context) error {
		var err error
		bonds, err = fetch(ctx)
		return err
	}); err != nil {
		return userError(err)
	}
	if jsonOutput(cmd) {
		return printJSON(bonds)
	}
	printGeneralBonds(bonds)
	return nil
}

var generalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every bond in the registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return generalList(cmd, "general bonds", rt.general.List)
	},
}

var generalBuscarCmd = &cobra.Command{
	Use:   "buscar [nombre]",
	Short: "Search bonds by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return generalList(cmd, "general search", func(ctx context.Context) ([]models.GeneralBond, error) {
			return rt.general.Search(ctx, args[0])
		})
	},
}

var generalMonedaCmd = &cobra.Command{
	Use:   "moneda [codigo]",
	Short: "List bonds in one currency",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return generalList(cmd, "general by currency", func(ctx context.Context) ([]models.GeneralBond, error) {
			return rt.general.ByCurrency(ctx, args[0])
		})
	},
}

var generalShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one registry bond",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Authenticated()); err != nil {
			return err
		}
		b, err := rt.general.Get(cmd.Context(), args[0])
		if err != nil {
			return userError(err)
		}
		if jsonOutput(cmd) {
			return printJSON(b)
		}
		printGeneralBond(b)
		return nil
	},
}

var generalCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a bond",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Authenticated()); err != nil {
			return err
		}
		b, err := rt.general.Create(cmd.Context(), bondRequestFromFlags(cmd).GeneralRequest())
		if err != nil {
			return userError(err)
		}
		if jsonOutput(cmd) {
			return printJSON(b)
		}
		fmt.Printf("Bono %s registrado\n", b.ID)
		return nil
	},
}

var generalUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Replace a registry bond",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Authenticated()); err != nil {
			return err
		}
		b, err := rt.general.Update(cmd.Context(), args[0], bondRequestFromFlags(cmd).GeneralRequest())
		if err != nil {
			return userError(err)
		}
		if jsonOutput(cmd) {
			return printJSON(b)
		}
		fmt.Printf("Bono %s actualizado\n", b.ID)
		return nil
	},
}

var generalDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Remove a bond from the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Authenticated()); err != nil {
			return err
		}
		if err := rt.general.Delete(cmd.Context(), args[0]); err != nil {
			return userError(err)
		}
		fmt.Printf("Bono %s eliminado\n", args[0])
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{generalCreateCmd, generalUpdateCmd} {
		addBondFlags(c)
	}
	generalCmd.AddCommand(generalListCmd, generalBuscarCmd, generalMonedaCmd, generalShowCmd,
		generalCreateCmd, generalUpdateCmd, generalDeleteCmd)
	bonosCmd.AddCommand(generalCmd)
}

func printGeneralBonds(bonds []models.GeneralBond) {
	fmt.Printf("  %-8s %-28s %-6s %14s %7s %6s  %-10s %s\n",
		"ID", "Nombre", "Moneda", "Nominal", "Tasa%", "Plazo", "Estado", "Emisor")
	for _, b := range bonds {
		fmt.Printf("  %-8s %-28s %-6s %14s %7.2f %6d  %-10s %s\n",
			truncate(string(b.ID), 8), truncate(b.Nombre, 28), b.Moneda,
			utils.FormatMoney(b.ValorNominal, b.Moneda), b.TasaCupon, b.PlazoAnios,
			b.Estado, b.Emisor)
	}
	fmt.Printf("  %d bonos\n", len(bonds))
}

func printGeneralBond(b *models.GeneralBond) {
	fmt.Println(rule)
	fmt.Printf("  %s (%s)\n", b.Nombre, b.ID)
	fmt.Println(rule)
	if b.Descripcion != "" {
		fmt.Printf("  %s\n\n", b.Descripcion)
	}
	fmt.Printf("  Valor nominal:  %s\n", utils.FormatMoney(b.ValorNominal, b.Moneda))
	fmt.Printf("  Tasa cupón:     %s\n", utils.FormatPct(b.TasaCupon))
	fmt.Printf("  Plazo:          %d años, %d pagos/año\n", b.PlazoAnios, b.FrecuenciaPagos)
	fmt.Printf("  Emisión:        %s\n", b.FechaEmision)
	fmt.Printf("  Vencimiento:    %s\n", b.FechaVencimiento)
	fmt.Printf("  Estado:         %s\n", b.Estado)
	if b.Emisor != "" {
		fmt.Printf("  Emisor:         %s\n", b.Emisor)
	}
	fmt.Println(rule)
}
