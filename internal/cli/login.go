package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"repdesk/internal/api"
	"repdesk/internal/session"
)

func newLoginCmd(app *App) *cobra.Command {
	var phone, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			phone = strings.TrimSpace(phone)
			if phone == "" {
				return writeErr(cmd, fmt.Errorf("--phone is required"))
			}
			if password == "" {
				// Read the password from stdin so it stays out of shell history.
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				sc := bufio.NewScanner(cmd.InOrStdin())
				if sc.Scan() {
					password = strings.TrimSpace(sc.Text())
				}
			}
			if password == "" {
				return writeErr(cmd, fmt.Errorf("password is required"))
			}

			client := api.New(app.Cfg.APIBaseURL, "")
			res, err := client.Login(cmd.Context(), phone, password)
			if err != nil {
				return writeErr(cmd, err)
			}

			s := session.Session{Token: res.Token, Role: res.Role}
			if c := session.DecodeClaims(res.Token); c != nil {
				s.Name = c.Name
				if s.Role == "" {
					s.Role = c.Role
				}
			}
			if !session.RoleAllowed(s.Role) {
				return writeErr(cmd, fmt.Errorf("role %q is not permitted to use this client", s.Role))
			}
			if err := app.sessions().Save(s); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"role": s.Role, "name": s.Name},
			})
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&password, "password", "", "Password (omit to read from stdin)")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.sessions().Clear(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": "signed out"})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := currentSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out := map[string]any{"role": s.Role, "name": s.Name}
			if c := session.DecodeClaims(s.Token); c != nil && c.ExpiresAt != nil {
				out["expiresAt"] = c.ExpiresAt.Time
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
}
