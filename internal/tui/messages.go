package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"repdesk/internal/api"
	"repdesk/internal/cache"
	"repdesk/internal/model"
	"repdesk/internal/push"
	"repdesk/internal/session"
)

// Async messages carry the list generation (seq) they were started for.
// The list view bumps its seq on every enter/leave, so results from a
// torn-down generation are dropped instead of mutating fresh state.

type loginDoneMsg struct {
	sess session.Session
	err  error
}

type cacheLoadedMsg struct {
	seq       int
	forms     []model.RequestForm
	fetchedAt time.Time
}

type formsLoadedMsg struct {
	seq   int
	forms []model.RequestForm
	err   error
}

type pushEventMsg struct {
	seq int
	ev  model.Event
	ok  bool // false once the subscriber channel is closed
}

type rowActionKind int

const (
	actionDelete rowActionKind = iota
	actionConfirm
)

type actionDoneMsg struct {
	seq  int
	kind rowActionKind
	id   model.FormID
	form model.RequestForm
	err  error
}

type submitDoneMsg struct {
	form   model.RequestForm
	isEdit bool
	err    error
}

const requestTimeout = 30 * time.Second

func loginCmd(client *api.Client, phone, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := client.Login(ctx, phone, password)
		if err != nil {
			return loginDoneMsg{err: err}
		}
		sess := session.Session{Token: res.Token, Role: res.Role}
		if cl := session.DecodeClaims(res.Token); cl != nil {
			sess.Name = cl.Name
			if sess.Role == "" {
				sess.Role = cl.Role
			}
		}
		return loginDoneMsg{sess: sess}
	}
}

func loadCacheCmd(c cache.Cache, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		forms, fetchedAt, err := c.Load(ctx)
		if err != nil {
			// A broken snapshot is not fatal; the network fetch replaces it.
			return cacheLoadedMsg{seq: seq}
		}
		return cacheLoadedMsg{seq: seq, forms: forms, fetchedAt: fetchedAt}
	}
}

func fetchFormsCmd(client *api.Client, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		forms, err := client.ListForms(ctx)
		return formsLoadedMsg{seq: seq, forms: forms, err: err}
	}
}

func saveCacheCmd(c cache.Cache, forms []model.RequestForm) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		// Best effort; a failed snapshot write never surfaces in the UI.
		_ = c.Save(ctx, forms)
		return nil
	}
}

func waitPushCmd(sub *push.Subscriber, seq int) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub.Events()
		return pushEventMsg{seq: seq, ev: ev, ok: ok}
	}
}

func deleteFormCmd(client *api.Client, id model.FormID, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := client.DeleteForm(ctx, id)
		return actionDoneMsg{seq: seq, kind: actionDelete, id: id, err: err}
	}
}

func confirmFormCmd(client *api.Client, id model.FormID, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		form, err := client.ConfirmForm(ctx, id)
		return actionDoneMsg{seq: seq, kind: actionConfirm, id: id, form: form, err: err}
	}
}

func submitDraftCmd(client *api.Client, d model.Draft) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		var (
			form model.RequestForm
			err  error
		)
		if d.IsEdit() {
			form, err = client.UpdateForm(ctx, d.ID, d)
		} else {
			form, err = client.CreateForm(ctx, d)
		}
		return submitDoneMsg{form: form, isEdit: d.IsEdit(), err: err}
	}
}
