package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"repdesk/internal/api"
	"repdesk/internal/model"
	"repdesk/internal/push"
)

type listState struct {
	// seq is the subscription generation. It is bumped on every enter and
	// teardown so async results from a previous generation are dropped.
	seq int

	loading bool
	banner  string

	forms []model.RequestForm
	// cachedAt is the snapshot timestamp while the rows on screen come from
	// the local cache rather than a live fetch.
	cachedAt time.Time
	queued   []model.Event // push events buffered until the initial load lands

	sub *push.Subscriber

	search        textinput.Model
	searchFocused bool
	filterStatus  string
	page          int
	cursor        int // row index within the current page
}

// statusFilters is the cycle order of the status filter key.
var statusFilters = []string{model.FilterAll, model.StatusConfirm, model.StatusPending}

func (m appModel) enterList() (tea.Model, tea.Cmd) {
	m.teardownList()

	search := textinput.New()
	search.Placeholder = "search name, phone, activity, author"
	search.Width = 36
	search.CharLimit = 120

	m.ls = listState{
		seq:          m.ls.seq + 1,
		loading:      true,
		search:       search,
		filterStatus: model.FilterAll,
		page:         1,
	}
	m.ls.sub = push.Subscribe(m.cfg.PushURL, m.cfg.PushRoom)
	m.view = viewList

	return m, tea.Batch(
		loadCacheCmd(m.store, m.ls.seq),
		fetchFormsCmd(m.client(), m.ls.seq),
		waitPushCmd(m.ls.sub, m.ls.seq),
	)
}

// teardownList closes the push subscription and advances the generation so
// in-flight results for the old one are ignored.
func (m *appModel) teardownList() {
	if m.ls.sub != nil {
		m.ls.sub.Close()
		m.ls.sub = nil
	}
	m.ls.seq++
	m.ls.loading = false
	m.ls.queued = nil
}

// derived returns the filtered view plus pagination bookkeeping.
func (ls listState) derived() (rows []model.RequestForm, page, totalPages int) {
	filtered := model.Derive(ls.forms, ls.search.Value(), ls.filterStatus)
	totalPages = model.TotalPages(len(filtered))
	page = model.ClampPage(ls.page, totalPages)
	return model.PageSlice(filtered, page), page, totalPages
}

func (ls listState) selected() (model.RequestForm, bool) {
	rows, _, _ := ls.derived()
	if ls.cursor < 0 || ls.cursor >= len(rows) {
		return model.RequestForm{}, false
	}
	return rows[ls.cursor], true
}

func (m appModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.listKey(msg)

	case cacheLoadedMsg:
		if msg.seq != m.ls.seq {
			return m, nil
		}
		// The snapshot seeds the screen while the fetch is in flight, and
		// serves as last-known-good when the fetch already failed. A fetch
		// that succeeded (even with zero records) always wins.
		if len(msg.forms) > 0 && len(m.ls.forms) == 0 && (m.ls.loading || m.ls.banner != "") {
			m.ls.forms = msg.forms
			m.ls.cachedAt = msg.fetchedAt
		}
		return m, nil

	case formsLoadedMsg:
		if msg.seq != m.ls.seq {
			return m, nil
		}
		if msg.err != nil {
			if isUnauthorized(msg.err) {
				return m, m.dropSession("session expired, please sign in again")
			}
			m.ls.loading = false
			m.ls.banner = loadErrorText(msg.err)
			return m, nil
		}
		m.ls.loading = false
		m.ls.banner = ""
		m.ls.cachedAt = time.Time{}
		// Replay anything that arrived over the push channel mid-load; the
		// merge is idempotent, so overlap with the fetched set is harmless.
		m.ls.forms = model.ApplyAll(msg.forms, m.ls.queued)
		m.ls.queued = nil
		return m, saveCacheCmd(m.store, m.ls.forms)

	case pushEventMsg:
		if msg.seq != m.ls.seq {
			return m, nil
		}
		if !msg.ok {
			// Channel closed; the subscription was torn down.
			return m, nil
		}
		if m.ls.loading {
			m.ls.queued = append(m.ls.queued, msg.ev)
		} else {
			m.ls.forms = model.Apply(m.ls.forms, msg.ev)
		}
		return m, waitPushCmd(m.ls.sub, m.ls.seq)

	case actionDoneMsg:
		if msg.seq != m.ls.seq {
			return m, nil
		}
		if msg.err != nil {
			if isUnauthorized(msg.err) {
				return m, m.dropSession("session expired, please sign in again")
			}
			m.ls.banner = loadErrorText(msg.err)
			return m, nil
		}
		// Apply locally right away; the push echo of the same mutation is
		// absorbed by the idempotent merge.
		switch msg.kind {
		case actionDelete:
			m.ls.forms = model.Apply(m.ls.forms, model.DeletedEvent(msg.id))
		case actionConfirm:
			m.ls.forms = model.Apply(m.ls.forms, model.UpdatedEvent(msg.form))
		}
		return m, saveCacheCmd(m.store, m.ls.forms)
	}

	if m.ls.searchFocused {
		var cmd tea.Cmd
		m.ls.search, cmd = m.ls.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) listKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.ls.searchFocused {
		switch key {
		case "enter", "esc":
			m.ls.searchFocused = false
			m.ls.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.ls.search, cmd = m.ls.search.Update(msg)
		m.ls.page = 1
		m.ls.cursor = 0
		return m, cmd
	}

	switch key {
	case "up", "k":
		if m.ls.cursor > 0 {
			m.ls.cursor--
		}
		return m, nil
	case "down", "j":
		rows, _, _ := m.ls.derived()
		if m.ls.cursor < len(rows)-1 {
			m.ls.cursor++
		}
		return m, nil

	case "left", "h", "pgup":
		_, page, _ := m.ls.derived()
		m.ls.page = page - 1
		m.ls.cursor = 0
		return m, nil
	case "right", "l", "pgdown":
		_, page, _ := m.ls.derived()
		m.ls.page = page + 1
		m.ls.cursor = 0
		return m, nil

	case "/":
		m.ls.searchFocused = true
		return m, m.ls.search.Focus()

	case "f":
		m.ls.filterStatus = cycleFilter(m.ls.filterStatus)
		m.ls.page = 1
		m.ls.cursor = 0
		return m, nil

	case "esc":
		if m.ls.banner != "" {
			m.ls.banner = ""
			return m, nil
		}
		if m.ls.search.Value() != "" {
			m.ls.search.SetValue("")
			m.ls.page = 1
			m.ls.cursor = 0
			return m, nil
		}
		return m, nil

	case "r":
		// Manual reload keeps the push subscription; only the fetch restarts.
		m.ls.loading = true
		m.ls.banner = ""
		return m, fetchFormsCmd(m.client(), m.ls.seq)

	case "v", "enter":
		if f, ok := m.ls.selected(); ok {
			m.modal = modalDetail
			m.modalTitle = "Request " + f.ID.String()
			m.modalBody = detailBody(f, modalBodyWidth(m.width))
		}
		return m, nil

	case "c":
		if f, ok := m.ls.selected(); ok && f.Status == model.StatusPending {
			return m, confirmFormCmd(m.client(), f.ID, m.ls.seq)
		}
		return m, nil

	case "d":
		if f, ok := m.ls.selected(); ok {
			m.modal = modalConfirmDelete
			m.modalTarget = f.ID
			m.modalTitle = "Delete request"
			m.modalBody = fmt.Sprintf("Delete the request from %s? This cannot be undone.", f.FullName)
			m.modalFocus = confirmCancel
		}
		return m, nil

	case "e":
		if f, ok := m.ls.selected(); ok {
			m.teardownList()
			m.ed = newEditorState(model.DraftFrom(f))
			m.view = viewEditor
			return m, m.ed.syncFocus()
		}
		return m, nil

	case "n":
		m.teardownList()
		m.ed = newEditorState(model.NewDraft())
		m.view = viewEditor
		return m, m.ed.syncFocus()
	}

	return m, nil
}

func cycleFilter(cur string) string {
	for i, f := range statusFilters {
		if f == cur {
			return statusFilters[(i+1)%len(statusFilters)]
		}
	}
	return model.FilterAll
}

func loadErrorText(err error) string {
	var srvErr *api.ServerError
	if errors.As(err, &srvErr) {
		return srvErr.Message
	}
	return err.Error()
}

func (m appModel) viewListScreen() string {
	rows, page, totalPages := m.ls.derived()

	var b strings.Builder

	// Search and filter bar.
	filterLabel := m.ls.filterStatus
	b.WriteString("Search: " + m.ls.search.View())
	b.WriteString("   Status: " + lipgloss.NewStyle().Bold(true).Render(filterLabel))
	b.WriteString("\n\n")

	if m.ls.banner != "" {
		banner := lipgloss.NewStyle().
			Foreground(colorError).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(colorError).
			PaddingLeft(1)
		b.WriteString(banner.Render(m.ls.banner+"  (esc to dismiss, r to retry)") + "\n\n")
	}

	if m.ls.loading && len(m.ls.forms) == 0 {
		b.WriteString(styleMuted().Render("loading requests...") + "\n")
	} else if len(rows) == 0 {
		b.WriteString(styleMuted().Render("no requests match") + "\n")
	} else {
		for i, f := range rows {
			b.WriteString(renderRequestRow(f, i == m.ls.cursor, m.width) + "\n")
		}
	}

	b.WriteString("\n" + styleMuted().Render(fmt.Sprintf("page %d/%d", page, totalPages)))
	if m.ls.loading && len(m.ls.forms) > 0 {
		b.WriteString("  " + styleMuted().Render("refreshing..."))
	}
	if !m.ls.cachedAt.IsZero() {
		b.WriteString("  " + styleMuted().Render(
			"cached snapshot from "+m.ls.cachedAt.Local().Format("15:04")))
	}

	help := "↑↓: select • ←→: page • /: search • f: filter • enter: view • c: confirm • e: edit • d: delete • n: new • r: reload • ctrl+c: quit"
	b.WriteString("\n" + styleMuted().Render(help))
	return b.String()
}

func renderRequestRow(f model.RequestForm, selected bool, width int) string {
	badge := lipgloss.NewStyle().Padding(0, 1).Foreground(colorAccentFg)
	switch f.Status {
	case model.StatusConfirm:
		badge = badge.Background(colorStatusConfirm)
	default:
		badge = badge.Background(colorStatusPending)
	}

	gifts := giftSummaryText(f)

	line := badge.Render(f.Status) + "  " +
		padOrCutANSI(f.FullName, 24) + " " +
		padOrCutANSI(model.ASCIIDigits(f.Phone), 14) + " " +
		padOrCutANSI(f.Activity, 20) + " " +
		styleMuted().Render(gifts)

	meta := styleMuted().Render(fmt.Sprintf("    %s • by %s",
		f.CreatedAt.Format("2006-01-02 15:04"), authorName(f)))

	row := line + "\n" + meta
	if selected {
		return lipgloss.NewStyle().
			Background(colorSelectedBg).Foreground(colorSelectedFg).
			Width(max(0, width-2)).
			Render(row)
	}
	return row
}

func giftSummaryText(f model.RequestForm) string {
	counts := model.GiftSummary(f)
	if len(counts) == 0 {
		return "gifts: none"
	}
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%s×%d", c.Label, c.Count)
	}
	return "gifts: " + strings.Join(parts, " ")
}

func authorName(f model.RequestForm) string {
	if f.CreatedBy.Name != "" {
		return f.CreatedBy.Name
	}
	return "unknown"
}

func padOrCutANSI(s string, w int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	cur := xansi.StringWidth(s)
	switch {
	case cur < w:
		return s + strings.Repeat(" ", w-cur)
	case cur > w:
		if w <= 1 {
			return "…"
		}
		return xansi.Cut(s, 0, w-1) + "…"
	default:
		return s
	}
}

// detailBody renders one record for the detail modal.
func detailBody(f model.RequestForm, width int) string {
	var b strings.Builder
	line := func(k, v string) {
		if strings.TrimSpace(v) == "" {
			return
		}
		b.WriteString(fmt.Sprintf("%-10s %s\n", k, v))
	}

	line("Status", f.Status)
	line("Name", f.FullName)
	line("Gender", f.Gender)
	line("Phone", model.ASCIIDigits(f.Phone))
	line("Activity", f.Activity)
	if f.Activity == model.ActivityExport {
		line("Country", f.Province)
	} else {
		line("Province", provinceLabel(f.Province))
		line("City", f.City)
	}
	line("Needs", strings.Join(f.Needs, "، "))
	line("Gifts", strings.TrimPrefix(giftSummaryText(f), "gifts: "))
	line("Image", f.Image)
	line("Created", f.CreatedAt.Format("2006-01-02 15:04:05"))
	line("Author", authorName(f))

	if strings.TrimSpace(f.Description) != "" {
		b.WriteString("\n" + renderMarkdown(f.Description, width))
	}
	return b.String()
}
