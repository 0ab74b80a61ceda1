package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"repdesk/internal/api"
	"repdesk/internal/cache"
	"repdesk/internal/config"
	"repdesk/internal/model"
	"repdesk/internal/session"
)

type view int

const (
	viewLogin view = iota
	viewEditor
	viewList
)

type modalKind int

const (
	modalNone modalKind = iota
	// modalInfo shows a message with a single dismiss action.
	modalInfo
	// modalDetail shows one record in full, description rendered as markdown.
	modalDetail
	// modalConfirmDelete asks before a destructive row action.
	modalConfirmDelete
)

type appModel struct {
	cfg      config.Config
	sessions session.Store
	sess     session.Session
	store    cache.Cache

	width, height  int
	seenWindowSize bool

	view view

	login loginState
	ed    editorState
	ls    listState

	modal       modalKind
	modalTitle  string
	modalBody   string
	modalTarget model.FormID
	modalFocus  confirmChoice
	// afterModal, when non-nil, is the view to enter once the info modal is
	// dismissed.
	afterModal *view

	flash string // transient status line message
}

func newAppModel(cfg config.Config) appModel {
	sessions := session.Store{Dir: cfg.StateDir}
	sess, _ := sessions.Load()

	m := appModel{
		cfg:      cfg,
		sessions: sessions,
		sess:     sess,
		store:    cache.Cache{Dir: cfg.StateDir},
		view:     viewLogin,
		login:    newLoginState(),
		ed:       newEditorState(model.NewDraft()),
	}

	if session.Allowed(sess) {
		m.view = viewEditor
	} else if !sess.Empty() {
		// Stale or malformed credential; drop it rather than carrying it around.
		_ = sessions.Clear()
		m.sess = session.Session{}
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	if m.view == viewLogin {
		return textinput.Blink
	}
	return nil
}

// client returns an API client bound to the current session token.
func (m appModel) client() *api.Client {
	return api.New(m.cfg.APIBaseURL, m.sess.Token)
}

// dropSession clears the stored credential and returns to the login view.
// Used on logout and on any 401 from the backend.
func (m *appModel) dropSession(notice string) tea.Cmd {
	_ = m.sessions.Clear()
	m.sess = session.Session{}
	m.teardownList()
	m.modal = modalNone
	m.view = viewLogin
	m.login = newLoginState()
	m.login.errMsg = notice
	m.ed = newEditorState(model.NewDraft())
	return textinput.Blink
}

// isUnauthorized reports whether err means the credential is no longer valid.
func isUnauthorized(err error) bool {
	return errors.Is(err, api.ErrUnauthorized)
}
