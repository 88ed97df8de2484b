package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seenimoa/bonosportal/internal/guard"
	"github.com/seenimoa/bonosportal/pkg/models"
)

// --- User management ---

var usuariosCmd = &cobra.Command{
	Use:   "usuarios [id]",
	Short: "List users, or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Authenticated()); err != nil {
			return err
		}
		var users []models.UserResource
		if len(args) == 1 {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			u, err := rt.users.User(cmd.Context(), id)
			if err != nil {
				return userError(err)
			}
			users = append(users, *u)
		} else {
			var err error
			if users, err = rt.users.Users(cmd.Context()); err != nil {
				return userError(err)
			}
		}
		if jsonOutput(cmd) {
			return printJSON(users)
		}
		fmt.Printf("  %-5s %-20s %-28s %-8s %s\n", "ID", "Usuario", "Email", "Activo", "Roles")
		for _, u := range users {
			active := "no"
			if u.IsActive {
				active = "sí"
			}
			fmt.Printf("  %-5d %-20s %-28s %-8s %s\n",
				u.ID, truncate(u.Username, 20), truncate(u.Email, 28), active, strings.Join(u.RoleSet(), ", "))
		}
		return nil
	},
}

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List roles",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Authenticated()); err != nil {
			return err
		}
		roles, err := rt.users.Roles(cmd.Context())
		if err != nil {
			return userError(err)
		}
		if jsonOutput(cmd) {
			return printJSON(roles)
		}
		for _, r := range roles {
			fmt.Printf("  %-4d %-16s %s\n", r.ID, r.Name, r.Description)
			if len(r.Permissions) > 0 {
				fmt.Printf("       permisos: %s\n", strings.Join(r.Permissions, ", "))
			}
		}
		return nil
	},
}

// --- Profiles ---

var perfilesCmd = &cobra.Command{
	Use:   "perfiles",
	Short: "Manage user profiles",
}

var perfilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Authenticated()); err != nil {
			return err
		}
		profiles, err := rt.users.Profiles(cmd.Context())
		if err != nil {
			return userError(err)
		}
		if jsonOutput(cmd) {
			return printJSON(profiles)
		}
		for _, p := range profiles {
			printProfileLine(&p)
		}
		return nil
	},
}

var perfilesShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Authenticated()); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		p, err := rt.users.Profile(cmd.Context(), id)
		if err != nil {
			return userError(err)
		}
		if jsonOutput(cmd) {
			return printJSON(p)
		}
		printProfileLine(p)
		return nil
	},
}

var perfilesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Authenticated()); err != nil {
			return err
		}
		p, err := rt.users.CreateProfile(cmd.Context(), profileRequestFromFlags(cmd))
		if err != nil {
			return userError(err)
		}
		if jsonOutput(cmd) {
			return printJSON(p)
		}
		fmt.Printf("Perfil #%d creado\n", p.ID)
		return nil
	},
}

var perfilesAssignCmd = &cobra.Command{
	Use:   "assign [userId]",
	Short: "Create a profile for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.require(guard.Authenticated()); err != nil {
			return err
		}
		userID, err := parseID(args[0])
		if err != nil {
			return err
		}
		p, err := rt.users.AssignProfile(cmd.Context(), userID, profileRequestFromFlags(cmd))
		if err != nil {
			return userError(err)
		}
		if jsonOutput(cmd) {
			return printJSON(p)
		}
		fmt.Printf("Perfil #%d asignado al usuario #%d\n", p.ID, userID)
		return nil
	},
}

func printProfileLine(p *models.ProfileResource) {
	fmt.Printf("  #%-4d %s %s <%s> usuario #%d\n", p.ID, p.FirstName, p.LastName, p.Email, p.UserID)
}

func profileRequestFromFlags(cmd *cobra.Command) models.CreateProfileRequest {
	f := cmd.Flags()
	var req models.CreateProfileRequest
	req.FirstName, _ = f.GetString("nombre")
	req.LastName, _ = f.GetString("apellido")
	req.Email, _ = f.GetString("email")
	req.PhoneNumber, _ = f.GetString("telefono")
	req.BirthDate, _ = f.GetString("nacimiento")
	req.Address, _ = f.GetString("direccion")
	return req
}

func init() {
	for _, c := range []*cobra.Command{perfilesCreateCmd, perfilesAssignCmd} {
		f := c.Flags()
		f.String("nombre", "", "first name")
		f.String("apellido", "", "last name")
		f.String("email", "", "email")
		f.String("telefono", "", "phone number")
		f.String("nacimiento", "", "birth date, YYYY-MM-DD")
		f.String("direccion", "", "address")
		_ = c.MarkFlagRequired("email")
	}
	perfilesCmd.AddCommand(perfilesListCmd, perfilesShowCmd, perfilesCreateCmd, perfilesAssignCmd)
}
