package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"repdesk/internal/config"
	"repdesk/internal/session"
	"repdesk/internal/tui"
)

type App struct {
	Cfg        config.Config
	PrettyJSON bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "repdesk",
		Short:        "Representation request admin client (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  repdesk

  # Scriptable commands
  repdesk login --phone 09120000000
  repdesk requests list --status pending
  repdesk requests watch
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return tui.Run(app.Cfg)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		app.Cfg = config.Load()
		return nil
	}

	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newRequestsCmd(app))

	return cmd
}

func (app *App) sessions() session.Store {
	return session.Store{Dir: app.Cfg.StateDir}
}

// currentSession loads the stored credential and rejects sessions the client
// may not use (missing, expired, or an unrecognized role).
func currentSession(app *App) (session.Session, error) {
	s, err := app.sessions().Load()
	if err != nil {
		return session.Session{}, err
	}
	if !session.Allowed(s) {
		return session.Session{}, fmt.Errorf("not signed in; run `repdesk login`")
	}
	return s, nil
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if app.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
