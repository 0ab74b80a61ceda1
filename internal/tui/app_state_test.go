package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"repdesk/internal/api"
	"repdesk/internal/config"
	"repdesk/internal/model"
	"repdesk/internal/session"
)

func testModel(t *testing.T) appModel {
	t.Helper()
	cfg := config.Config{
		APIBaseURL: "http://localhost:0",
		PushURL:    "ws://localhost:0/ws",
		PushRoom:   "adminRoom",
		StateDir:   t.TempDir(),
	}
	m := newAppModel(cfg)
	m.width, m.height = 120, 40
	m.seenWindowSize = true
	m.sess = session.Session{Token: "tok", Role: session.RoleAdmin, Name: "Admin"}
	return m
}

func asApp(t *testing.T, tm tea.Model) appModel {
	t.Helper()
	m, ok := tm.(appModel)
	if !ok {
		t.Fatalf("unexpected model type %T", tm)
	}
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testForm(id string, confirmed bool) model.RequestForm {
	f := model.RequestForm{
		ID:          model.FormID(id),
		Gender:      model.GenderMale,
		FullName:    "Ali Reza",
		Phone:       "09120000000",
		Activity:    model.Activities[0],
		Province:    "tehran",
		City:        "تهران",
		IsConfirmed: confirmed,
		CreatedAt:   time.Now(),
	}
	f.Normalize()
	return f
}

func TestListQueuesPushEventsDuringLoad(t *testing.T) {
	m := testModel(t)
	m.view = viewList
	m.ls = listState{seq: 1, loading: true}

	// An event arriving mid-load must not touch the record set yet.
	ev := model.CreatedEvent(testForm("f1", false))
	m = asApp(t, mustModel(m.updateList(pushEventMsg{seq: 1, ev: ev, ok: true})))
	if len(m.ls.forms) != 0 {
		t.Fatalf("event applied during load: %d forms", len(m.ls.forms))
	}
	if len(m.ls.queued) != 1 {
		t.Fatalf("queued = %d, want 1", len(m.ls.queued))
	}

	// The load lands with the same record already present; replay must not
	// duplicate it.
	loaded := []model.RequestForm{testForm("f1", false), testForm("f2", true)}
	m = asApp(t, mustModel(m.updateList(formsLoadedMsg{seq: 1, forms: loaded})))
	if m.ls.loading {
		t.Fatal("still loading after formsLoadedMsg")
	}
	if len(m.ls.forms) != 2 {
		t.Fatalf("forms = %d, want 2", len(m.ls.forms))
	}
	if m.ls.queued != nil {
		t.Fatal("queue not drained")
	}
}

func TestListDropsStaleGenerationMessages(t *testing.T) {
	m := testModel(t)
	m.view = viewList
	m.ls = listState{seq: 3, forms: []model.RequestForm{testForm("f1", false)}}

	ev := model.DeletedEvent("f1")
	m = asApp(t, mustModel(m.updateList(pushEventMsg{seq: 2, ev: ev, ok: true})))
	if len(m.ls.forms) != 1 {
		t.Fatal("stale push event mutated state")
	}

	m = asApp(t, mustModel(m.updateList(formsLoadedMsg{seq: 2, forms: nil})))
	if len(m.ls.forms) != 1 {
		t.Fatal("stale load replaced state")
	}
}

func TestUnauthorizedLoadClearsSessionAndRedirects(t *testing.T) {
	m := testModel(t)
	st := session.Store{Dir: m.cfg.StateDir}
	if err := st.Save(m.sess); err != nil {
		t.Fatal(err)
	}
	m.view = viewList
	m.ls = listState{seq: 1, loading: true}

	m = asApp(t, mustModel(m.updateList(formsLoadedMsg{seq: 1, err: api.ErrUnauthorized})))

	if m.view != viewLogin {
		t.Fatalf("view = %v, want login", m.view)
	}
	if !m.sess.Empty() {
		t.Fatal("session not cleared in memory")
	}
	if _, err := os.Stat(filepath.Join(m.cfg.StateDir, "session.json")); !os.IsNotExist(err) {
		t.Fatal("session file not removed")
	}
	if m.login.errMsg == "" {
		t.Fatal("no notice shown on the login screen")
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	m := testModel(t)
	m.view = viewList
	m.ls = listState{seq: 1, forms: []model.RequestForm{testForm("f1", false)}}

	m = asApp(t, mustModel(m.updateList(keyRunes("d"))))
	if m.modal != modalConfirmDelete {
		t.Fatalf("modal = %v, want confirm-delete", m.modal)
	}
	if m.modalFocus != confirmCancel {
		t.Fatal("confirm modal must default to cancel")
	}

	// Enter on the default (cancel) must not issue the delete.
	tm, cmd := m.updateModal(tea.KeyMsg{Type: tea.KeyEnter})
	m = asApp(t, tm)
	if cmd != nil {
		t.Fatal("cancel produced a command")
	}
	if m.modal != modalNone {
		t.Fatal("modal not dismissed")
	}

	// Reopen, switch to delete, confirm.
	m = asApp(t, mustModel(m.updateList(keyRunes("d"))))
	m = asApp(t, mustModel(m.updateModal(tea.KeyMsg{Type: tea.KeyTab})))
	tm, cmd = m.updateModal(tea.KeyMsg{Type: tea.KeyEnter})
	m = asApp(t, tm)
	if cmd == nil {
		t.Fatal("confirmed delete produced no command")
	}
}

func TestRowActionResultsApplyLocally(t *testing.T) {
	m := testModel(t)
	m.view = viewList
	m.ls = listState{seq: 1, forms: []model.RequestForm{testForm("f1", false), testForm("f2", false)}}

	updated := testForm("f1", true)
	m = asApp(t, mustModel(m.updateList(actionDoneMsg{seq: 1, kind: actionConfirm, id: "f1", form: updated})))
	if got := findForm(t, m.ls.forms, "f1").Status; got != model.StatusConfirm {
		t.Fatalf("status = %q, want confirm", got)
	}

	m = asApp(t, mustModel(m.updateList(actionDoneMsg{seq: 1, kind: actionDelete, id: "f2"})))
	if len(m.ls.forms) != 1 {
		t.Fatalf("forms = %d after delete, want 1", len(m.ls.forms))
	}

	// The push echo of the same delete is a no-op.
	m = asApp(t, mustModel(m.updateList(pushEventMsg{seq: 1, ev: model.DeletedEvent("f2"), ok: true})))
	if len(m.ls.forms) != 1 {
		t.Fatal("echoed delete changed state again")
	}
}

func TestLoginRejectsUnknownRole(t *testing.T) {
	m := testModel(t)
	m.sess = session.Session{}
	m.view = viewLogin

	got := asApp(t, mustModel(m.updateLogin(loginDoneMsg{
		sess: session.Session{Token: "tok", Role: "user"},
	})))
	if got.view != viewLogin {
		t.Fatal("disallowed role allowed in")
	}
	if got.login.errMsg == "" {
		t.Fatal("no error shown for disallowed role")
	}
	if _, err := os.Stat(filepath.Join(m.cfg.StateDir, "session.json")); !os.IsNotExist(err) {
		t.Fatal("disallowed session persisted")
	}
}

func findForm(t *testing.T, forms []model.RequestForm, id model.FormID) model.RequestForm {
	t.Helper()
	for _, f := range forms {
		if f.ID == id {
			return f
		}
	}
	t.Fatalf("form %s not found", id)
	return model.RequestForm{}
}

func mustModel(tm tea.Model, _ tea.Cmd) tea.Model { return tm }
