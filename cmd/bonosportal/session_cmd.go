package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/bonosportal/internal/apierr"
	"github.com/seenimoa/bonosportal/internal/config"
	"github.com/seenimoa/bonosportal/internal/session"
	"github.com/seenimoa/bonosportal/pkg/models"
)

// --- Login Command ---

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Sign in and keep the session locally",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		var res session.SignInResult
		err = rt.track(cmd.Context(), "sign-in", func(ctx context.Context) error {
			var err error
			res, err = rt.session.SignIn(ctx, models.Credentials{Username: args[0], Password: password})
			return err
		})
		if err != nil {
			return userError(err)
		}
		if res.Warning != nil {
			fmt.Fprintf(os.Stderr, "aviso: sesión iniciada sin perfil (%s)\n", apierr.UserMessage(res.Warning.Err))
		}
		if jsonOutput(cmd) {
			return printJSON(res.Identity)
		}
		fmt.Printf("Sesión iniciada como %s", res.Identity.Username)
		if len(res.Identity.Roles) > 0 {
			fmt.Printf(" (%s)", strings.Join(res.Identity.Roles, ", "))
		}
		fmt.Println()
		return nil
	},
}

// --- Register Command ---

var registerCmd = &cobra.Command{
	Use:   "register [username]",
	Short: "Create an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		role, _ := cmd.Flags().GetString("role")
		roleName, err := roleFlag(role)
		if err != nil {
			return err
		}
		var id *models.Identity
		err = rt.track(cmd.Context(), "sign-up", func(ctx context.Context) error {
			var err error
			id, err = rt.session.SignUp(ctx, models.SignUpData{
				Username: args[0],
				Password: password,
				Roles:    []string{roleName},
			})
			return err
		})
		if err != nil {
			return userError(err)
		}
		if jsonOutput(cmd) {
			return printJSON(id)
		}
		fmt.Printf("Cuenta %s creada con rol %s\n", args[0], roleName)
		if id.Token == "" {
			fmt.Println("Inicia sesión con 'bonosportal login' para continuar.")
		}
		return nil
	},
}

func roleFlag(v string) (string, error) {
	switch strings.ToLower(v) {
	case "emisor", strings.ToLower(models.RoleEmisor):
		return models.RoleEmisor, nil
	case "inversor", strings.ToLower(models.RoleInversor):
		return models.RoleInversor, nil
	}
	return "", fmt.Errorf("unknown role %q (emisor or inversor)", v)
}

// --- Logout Command ---

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the local session",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt.session.Logout()
		rt.investorAPI.Invalidate()
		fmt.Println("Sesión cerrada")
		return nil
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"whoami"},
	Short:   "Show the session and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		id := rt.session.Current()
		var health *models.BackendHealth
		var healthErr error
		if check, _ := cmd.Flags().GetBool("check"); check {
			health, healthErr = rt.backendHealth(cmd.Context())
		}
		if jsonOutput(cmd) {
			return printJSON(statusReport{Session: id, Backend: health, BackendError: apierr.UserMessage(healthErr)})
		}

		fmt.Println(rule)
		fmt.Println("  bonosportal - Estado")
		fmt.Println(rule)
		fmt.Printf("  Versión:   %s (%s)\n", version, commit)
		fmt.Printf("  Backend:   %s\n", cfg.API.BaseURL)
		switch {
		case healthErr != nil:
			fmt.Printf("  Conexión:  sin conexión (%s)\n", apierr.UserMessage(healthErr))
		case health != nil:
			fmt.Printf("  Conexión:  %s vía %s (%d ms)\n", health.Status, health.Via, health.ElapsedMS)
		}
		fmt.Println()

		fmt.Println("  Sesión:")
		if !rt.session.IsAuthenticated() {
			fmt.Println("    sin sesión")
			fmt.Println(rule)
			return nil
		}
		if id != nil {
			fmt.Printf("    Usuario:  %s (#%d)\n", id.Username, id.ID)
			fmt.Printf("    Roles:    %s\n", strings.Join(id.Roles, ", "))
		}
		fmt.Printf("    Token:    %s\n", config.MaskToken(rt.session.Token()))
		switch exp, err := rt.session.Expiry(); {
		case err == nil:
			state := "vigente"
			if time.Now().After(exp) {
				state = "expirado"
			}
			fmt.Printf("    Expira:   %s (%s)\n", exp.Local().Format("2006-01-02 15:04"), state)
		case errors.Is(err, session.ErrNoExpiry):
			fmt.Println("    Expira:   sin fecha")
		}
		fmt.Println(rule)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().String("password", "", "password (default: $BONOSPORTAL_PASSWORD or prompt)")
	}
	registerCmd.Flags().String("role", "inversor", "account role: emisor or inversor")
	statusCmd.Flags().Bool("check", true, "check that the backend answers")
}

// statusReport is the JSON form of the status command.
type statusReport struct {
	Session      *models.Identity      `json:"session"`
	Backend      *models.BackendHealth `json:"backend,omitempty"`
	BackendError string                `json:"backendError,omitempty"`
}

// readPassword takes the password from the flag, the environment or stdin.
func readPassword(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("password"); p != "" {
		return p, nil
	}
	if p := os.Getenv(config.EnvPrefix + "_PASSWORD"); p != "" {
		return p, nil
	}
	fmt.Fprint(os.Stderr, "Contraseña: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password is required")
	}
	return line, nil
}
