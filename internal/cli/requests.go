package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"repdesk/internal/api"
	"repdesk/internal/model"
	"repdesk/internal/push"
	"repdesk/internal/session"
)

func newRequestsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Representation request commands (admin only)",
	}
	cmd.AddCommand(newRequestsListCmd(app))
	cmd.AddCommand(newRequestsConfirmCmd(app))
	cmd.AddCommand(newRequestsDeleteCmd(app))
	cmd.AddCommand(newRequestsWatchCmd(app))
	return cmd
}

// adminClient loads the session, enforces the admin-only restriction and
// returns a ready API client.
func adminClient(app *App) (*api.Client, error) {
	s, err := currentSession(app)
	if err != nil {
		return nil, err
	}
	if !session.Allowed(s, session.RoleAdmin) {
		return nil, fmt.Errorf("the requests commands are restricted to administrators")
	}
	return api.New(app.Cfg.APIBaseURL, s.Token), nil
}

// wireRow is the JSON row shape for scripted output: the record plus its
// derived status.
type wireRow struct {
	model.RequestForm
	Status string `json:"status"`
}

func wireRows(forms []model.RequestForm) []wireRow {
	out := make([]wireRow, len(forms))
	for i, f := range forms {
		out[i] = wireRow{RequestForm: f, Status: f.Status}
	}
	return out
}

func newRequestsListCmd(app *App) *cobra.Command {
	var (
		search string
		status string
		page   int
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List requests (filtered, newest first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := adminClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			forms, err := client.ListForms(cmd.Context())
			if err != nil {
				return writeErr(cmd, sessionHint(app, err))
			}

			filtered := model.Derive(forms, search, status)
			totalPages := model.TotalPages(len(filtered))
			if all {
				return writeOut(cmd, app, map[string]any{
					"data": wireRows(filtered),
					"meta": map[string]any{"total": len(filtered)},
				})
			}
			page = model.ClampPage(page, totalPages)
			return writeOut(cmd, app, map[string]any{
				"data": wireRows(model.PageSlice(filtered, page)),
				"meta": map[string]any{
					"page":       page,
					"totalPages": totalPages,
					"total":      len(filtered),
				},
			})
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Match against full name, phone, activity and author")
	cmd.Flags().StringVar(&status, "status", model.FilterAll, "Status filter (all|confirm|pending)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().BoolVar(&all, "all", false, "Print every match, unpaginated")
	return cmd
}

func newRequestsConfirmCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confirm <id>",
		Short: "Mark a request confirmed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := adminClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			form, err := client.ConfirmForm(cmd.Context(), model.FormID(args[0]))
			if err != nil {
				return writeErr(cmd, sessionHint(app, err))
			}
			return writeOut(cmd, app, map[string]any{
				"data": wireRow{RequestForm: form, Status: form.Status},
			})
		},
	}
	return cmd
}

func newRequestsDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := adminClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := client.DeleteForm(cmd.Context(), model.FormID(args[0])); err != nil {
				return writeErr(cmd, sessionHint(app, err))
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": args[0]}})
		},
	}
	return cmd
}

func newRequestsWatchCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream live request events as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := adminClient(app); err != nil {
				return writeErr(cmd, err)
			}

			sub := push.Subscribe(app.Cfg.PushURL, app.Cfg.PushRoom)
			defer sub.Close()

			ctx := cmd.Context()
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-sub.Events():
					if !ok {
						return nil
					}
					out := map[string]any{"event": string(ev.Kind)}
					if ev.Kind == model.EventDeleted {
						out["id"] = ev.ID
					} else {
						out["data"] = wireRow{RequestForm: ev.Form, Status: ev.Form.Status}
					}
					if err := writeOut(cmd, app, out); err != nil {
						return err
					}
				}
			}
		},
	}
	return cmd
}

// sessionHint clears the stored session on a 401 so the next invocation asks
// for a fresh sign-in.
func sessionHint(app *App, err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		_ = app.sessions().Clear()
		return fmt.Errorf("session expired, please run `repdesk login` again")
	}
	return err
}
