// bonosportal is a command-line client and local gateway for the bond
// valuation backend.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seenimoa/bonosportal/internal/config"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and wiring, set by PersistentPreRunE.
var (
	cfg *config.Config
	rt  *wiring
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bonosportal",
	Short: "Bond portal client for issuers and investors",
	Long: `bonosportal talks to the bond valuation backend.

Issuers publish and manage bonds; investors browse the catalog, run
calculations and keep an analysis history. The session is kept locally so
later commands stay signed in.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		if url, _ := cmd.Flags().GetString("base-url"); url != "" {
			cfg.API.BaseURL = url
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
		if eph, _ := cmd.Flags().GetBool("ephemeral"); eph {
			cfg.Session.Ephemeral = true
		}

		rt, err = newWiring(cfg)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if rt == nil {
			return nil
		}
		return rt.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("base-url", "", "backend base URL override")
	rootCmd.PersistentFlags().Bool("json", false, "print raw JSON instead of tables")
	rootCmd.PersistentFlags().Bool("ephemeral", false, "keep the session in memory for this run only")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(bonosCmd)
	rootCmd.AddCommand(catalogoCmd)
	rootCmd.AddCommand(calculosCmd)
	rootCmd.AddCommand(usuariosCmd)
	rootCmd.AddCommand(rolesCmd)
	rootCmd.AddCommand(perfilesCmd)
	rootCmd.AddCommand(serveCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bonosportal %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}
