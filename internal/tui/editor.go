package tui

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"repdesk/internal/api"
	"repdesk/internal/model"
	"repdesk/internal/session"
)

// Editor field identifiers. The visible set depends on the chosen activity,
// so focus is an index into fields(), not into this enum.
type edField int

const (
	fGender edField = iota
	fFullName
	fPhone
	fActivity
	fDescription
	fCountry
	fProvince
	fCity
	fNeeds
	fGifts
	fImage
	fSubmit
)

type editorState struct {
	draft model.Draft

	fullName textinput.Model
	phone    textinput.Model
	city     textinput.Model
	country  textinput.Model
	image    textinput.Model
	desc     textarea.Model

	focus       int
	needsCursor int
	giftCursor  int

	errs   model.FieldErrors
	errMsg string
	busy   bool

	// loadedAt is when the record under edit was handed to the editor; shown
	// so the operator knows how fresh the prefill is.
	loadedAt time.Time
}

func newEditorState(d model.Draft) editorState {
	ti := func(placeholder string, width, limit int) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.Width = width
		in.CharLimit = limit
		return in
	}

	desc := textarea.New()
	desc.Placeholder = "description (markdown allowed)"
	desc.SetWidth(48)
	desc.SetHeight(4)
	desc.CharLimit = 2000

	e := editorState{
		draft:    d,
		fullName: ti("full name", 40, 120),
		phone:    ti("phone number", 24, 32),
		city:     ti("city", 32, 80),
		country:  ti("country", 32, 80),
		image:    ti("path to JPEG/PNG image (optional)", 48, 512),
		desc:     desc,
		loadedAt: time.Now(),
	}
	e.fullName.SetValue(d.FullName)
	e.phone.SetValue(d.Phone)
	e.desc.SetValue(d.Description)
	if d.IsExport() {
		e.country.SetValue(d.Province)
	} else {
		e.city.SetValue(d.City)
	}
	return e
}

// fields returns the visible field sequence for the current draft. Activity
// changes reshape it, so callers must re-clamp focus afterwards.
func (e editorState) fields() []edField {
	fs := []edField{fGender, fFullName}
	if !e.draft.IsVIP() {
		fs = append(fs, fPhone)
	}
	fs = append(fs, fActivity, fDescription)
	if !e.draft.IsVIP() {
		if e.draft.IsExport() {
			fs = append(fs, fCountry)
		} else if e.draft.Activity != "" {
			fs = append(fs, fProvince, fCity)
		}
	}
	fs = append(fs, fNeeds, fGifts)
	if e.draft.IsExport() {
		fs = append(fs, fImage)
	}
	return append(fs, fSubmit)
}

func (e editorState) current() edField {
	fs := e.fields()
	i := e.focus
	if i < 0 {
		i = 0
	}
	if i >= len(fs) {
		i = len(fs) - 1
	}
	return fs[i]
}

func (e *editorState) clampFocus() {
	if n := len(e.fields()); e.focus >= n {
		e.focus = n - 1
	}
	if e.focus < 0 {
		e.focus = 0
	}
}

// syncFocus gives keyboard focus to the input backing the current field.
func (e *editorState) syncFocus() tea.Cmd {
	e.fullName.Blur()
	e.phone.Blur()
	e.city.Blur()
	e.country.Blur()
	e.image.Blur()
	e.desc.Blur()

	switch e.current() {
	case fFullName:
		return e.fullName.Focus()
	case fPhone:
		return e.phone.Focus()
	case fCity:
		return e.city.Focus()
	case fCountry:
		return e.country.Focus()
	case fImage:
		return e.image.Focus()
	case fDescription:
		return e.desc.Focus()
	}
	return nil
}

// visibleGifts returns the gift rows shown for the current activity. The A+
// row only exists under VIP management.
func (e editorState) visibleGifts() []model.GiftDef {
	var out []model.GiftDef
	for _, def := range model.GiftDefs {
		if def.VIPOnly && !e.draft.IsVIP() {
			continue
		}
		out = append(out, def)
	}
	return out
}

// collect folds the text inputs back into the draft before validation or
// submission. Choice fields (gender, activity, province, needs, gifts) are
// kept in the draft as they change.
func (e editorState) collect() model.Draft {
	d := e.draft
	d.FullName = strings.TrimSpace(e.fullName.Value())
	d.Phone = strings.TrimSpace(e.phone.Value())
	d.Description = e.desc.Value()
	if d.IsExport() {
		d.Province = strings.TrimSpace(e.country.Value())
		d.City = ""
	} else {
		d.City = strings.TrimSpace(e.city.Value())
	}
	d.ImagePath = strings.TrimSpace(e.image.Value())
	return d
}

// statImage fills in size and MIME for a newly chosen image path.
func statImage(d *model.Draft) error {
	if d.ImagePath == "" {
		d.ImageSize = 0
		d.ImageMIME = ""
		return nil
	}
	info, err := os.Stat(d.ImagePath)
	if err != nil {
		return fmt.Errorf("image: %w", err)
	}
	d.ImageSize = info.Size()

	f, err := os.Open(d.ImagePath)
	if err != nil {
		return fmt.Errorf("image: %w", err)
	}
	defer f.Close()
	head := make([]byte, 512)
	n, _ := f.Read(head)
	d.ImageMIME = strings.Split(http.DetectContentType(head[:n]), ";")[0]
	return nil
}

func (m appModel) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.editorKey(msg)

	case submitDoneMsg:
		m.ed.busy = false
		if msg.err != nil {
			if isUnauthorized(msg.err) {
				return m, m.dropSession("session expired, please sign in again")
			}
			var srvErr *api.ServerError
			if errors.As(msg.err, &srvErr) {
				m.ed.errMsg = srvErr.Message
			} else {
				m.ed.errMsg = msg.err.Error()
			}
			return m, nil
		}
		if msg.isEdit {
			// Edits always come back unconfirmed; return to the list, which
			// reloads and picks the change up (plus the push echo).
			m.modal = modalInfo
			m.modalTitle = "Request updated"
			m.modalBody = "The request was saved and reset to pending review."
			after := viewList
			m.afterModal = &after
			return m, nil
		}
		m.modal = modalInfo
		m.modalTitle = "Request submitted"
		m.modalBody = "The request was registered successfully."
		m.ed = newEditorState(model.NewDraft())
		return m, nil
	}

	// Route everything else to the focused input.
	return m.editorInput(msg)
}

func (m appModel) editorInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.ed.current() {
	case fFullName:
		m.ed.fullName, cmd = m.ed.fullName.Update(msg)
	case fPhone:
		m.ed.phone, cmd = m.ed.phone.Update(msg)
	case fCity:
		m.ed.city, cmd = m.ed.city.Update(msg)
	case fCountry:
		m.ed.country, cmd = m.ed.country.Update(msg)
	case fImage:
		m.ed.image, cmd = m.ed.image.Update(msg)
	case fDescription:
		m.ed.desc, cmd = m.ed.desc.Update(msg)
	}
	return m, cmd
}

func (m appModel) editorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ed.busy {
		return m, nil
	}

	key := msg.String()
	cur := m.ed.current()

	switch key {
	case "tab", "down":
		if key == "down" && cur == fDescription {
			break // textarea handles vertical movement
		}
		m.ed.focus++
		m.ed.clampFocus()
		return m, m.ed.syncFocus()

	case "shift+tab", "up":
		if key == "up" && cur == fDescription {
			break
		}
		m.ed.focus--
		m.ed.clampFocus()
		return m, m.ed.syncFocus()

	case "ctrl+s":
		return m.submitEditor()

	case "ctrl+r":
		if !session.Allowed(m.sess, session.RoleAdmin) {
			m.flash = "the request list is restricted to administrators"
			return m, nil
		}
		return m.enterList()

	case "esc":
		if m.ed.draft.IsEdit() {
			// Cancel the edit and go back to the list.
			m.ed = newEditorState(model.NewDraft())
			return m.enterList()
		}
		return m, nil
	}

	switch cur {
	case fGender:
		switch key {
		case "left", "right", " ", "enter":
			m.ed.draft.Gender = cycleString(model.Genders, m.ed.draft.Gender, key != "left")
			return m, nil
		}

	case fActivity:
		switch key {
		case "left", "right", " ", "enter":
			next := cycleString(activityOptions(), m.ed.draft.Activity, key != "left")
			m.ed.draft.SetActivity(next)
			m.ed.clampFocus()
			return m, m.ed.syncFocus()
		}

	case fProvince:
		switch key {
		case "left", "right", " ", "enter":
			m.ed.draft.Province = cycleString(provinceOptions(), m.ed.draft.Province, key != "left")
			return m, nil
		}

	case fNeeds:
		switch key {
		case "left":
			if m.ed.needsCursor > 0 {
				m.ed.needsCursor--
			}
			return m, nil
		case "right":
			if m.ed.needsCursor < len(model.NeedOptions)-1 {
				m.ed.needsCursor++
			}
			return m, nil
		case " ", "enter":
			m.ed.draft.ToggleNeed(model.NeedOptions[m.ed.needsCursor])
			return m, nil
		}

	case fGifts:
		gifts := m.ed.visibleGifts()
		if m.ed.giftCursor >= len(gifts) {
			m.ed.giftCursor = len(gifts) - 1
		}
		def := gifts[m.ed.giftCursor]
		switch key {
		case "left":
			if m.ed.giftCursor > 0 {
				m.ed.giftCursor--
			}
			return m, nil
		case "right":
			if m.ed.giftCursor < len(gifts)-1 {
				m.ed.giftCursor++
			}
			return m, nil
		case "+":
			m.ed.draft.Gifts[def.Key] = bumpCount(m.ed.draft.Gifts[def.Key], +1)
			return m, nil
		case "-":
			m.ed.draft.Gifts[def.Key] = bumpCount(m.ed.draft.Gifts[def.Key], -1)
			return m, nil
		case "backspace":
			v := m.ed.draft.Gifts[def.Key]
			if len(v) > 0 {
				r := []rune(v)
				m.ed.draft.Gifts[def.Key] = string(r[:len(r)-1])
			}
			return m, nil
		default:
			if sanitized := model.SanitizeCount(key); sanitized != "" {
				m.ed.draft.Gifts[def.Key] = model.SanitizeCount(m.ed.draft.Gifts[def.Key] + sanitized)
			}
			return m, nil
		}

	case fSubmit:
		if key == "enter" || key == " " {
			return m.submitEditor()
		}
	}

	return m.editorInput(msg)
}

func (m appModel) submitEditor() (tea.Model, tea.Cmd) {
	d := m.ed.collect()

	if d.IsExport() && d.ImagePath != "" {
		if err := statImage(&d); err != nil {
			m.ed.errs = model.FieldErrors{"image": err.Error()}
			return m, nil
		}
	}

	m.ed.errs = d.Validate()
	if len(m.ed.errs) > 0 {
		m.ed.errMsg = ""
		return m, nil
	}

	if d.IsEdit() && !session.Allowed(m.sess, session.RoleAdmin) {
		m.modal = modalInfo
		m.modalTitle = "Not allowed"
		m.modalBody = "Only administrators can edit submitted requests."
		return m, nil
	}

	m.ed.draft = d
	m.ed.busy = true
	m.ed.errMsg = ""
	return m, submitDraftCmd(m.client(), d)
}

// cycleString advances value through options (with a leading blank slot for
// "not selected"), wrapping at both ends.
func cycleString(options []string, value string, forward bool) string {
	opts := append([]string{""}, options...)
	idx := 0
	for i, o := range opts {
		if o == value {
			idx = i
			break
		}
	}
	if forward {
		idx = (idx + 1) % len(opts)
	} else {
		idx = (idx - 1 + len(opts)) % len(opts)
	}
	return opts[idx]
}

func activityOptions() []string {
	return model.Activities
}

func provinceOptions() []string {
	out := make([]string, len(model.Provinces))
	for i, p := range model.Provinces {
		out[i] = p.Value
	}
	return out
}

func provinceLabel(value string) string {
	for _, p := range model.Provinces {
		if p.Value == value {
			return p.Label
		}
	}
	return value
}

func bumpCount(v string, delta int) string {
	n := 0
	if s := strings.TrimSpace(model.ASCIIDigits(v)); s != "" {
		fmt.Sscanf(s, "%d", &n)
	}
	n += delta
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", n)
}

func (m appModel) viewEditorScreen() string {
	label := lipgloss.NewStyle().Bold(true).Width(14)
	focusedLabel := label.Foreground(colorAccent)
	choice := lipgloss.NewStyle().Padding(0, 1).Background(colorControlBg)
	choiceOn := lipgloss.NewStyle().Padding(0, 1).
		Background(colorAccent).Foreground(colorAccentFg).Bold(true)

	fieldLabels := map[edField]string{
		fGender:      "Gender",
		fFullName:    "Full name",
		fPhone:       "Phone",
		fActivity:    "Activity",
		fDescription: "Description",
		fCountry:     "Country",
		fProvince:    "Province",
		fCity:        "City",
		fNeeds:       "Needs",
		fGifts:       "Gifts",
		fImage:       "Image",
		fSubmit:      "",
	}

	row := func(f edField, body string) string {
		l := label
		if m.ed.current() == f {
			l = focusedLabel
		}
		line := l.Render(fieldLabels[f]) + body
		if msg, ok := m.ed.errs[errKeyFor(f)]; ok {
			line += "\n" + strings.Repeat(" ", 14) + styleError().Render(msg)
		}
		return line
	}

	var b strings.Builder
	title := "New representation request"
	if m.ed.draft.IsEdit() {
		title = fmt.Sprintf("Edit request %s (loaded %s)",
			m.ed.draft.ID, m.ed.loadedAt.Format("15:04:05"))
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title) + "\n\n")

	for _, f := range m.ed.fields() {
		switch f {
		case fGender:
			var parts []string
			for _, g := range model.Genders {
				st := choice
				if m.ed.draft.Gender == g {
					st = choiceOn
				}
				parts = append(parts, st.Render(g))
			}
			b.WriteString(row(f, strings.Join(parts, " ")))
		case fFullName:
			b.WriteString(row(f, m.ed.fullName.View()))
		case fPhone:
			b.WriteString(row(f, m.ed.phone.View()))
		case fActivity:
			v := m.ed.draft.Activity
			if v == "" {
				v = styleMuted().Render("‹ not selected ›")
			} else {
				v = choiceOn.Render(v)
			}
			b.WriteString(row(f, v+" "+styleMuted().Render("←/→ to change")))
		case fDescription:
			b.WriteString(row(f, "\n"+m.ed.desc.View()))
		case fCountry:
			b.WriteString(row(f, m.ed.country.View()))
		case fProvince:
			v := m.ed.draft.Province
			if v == "" {
				v = styleMuted().Render("‹ not selected ›")
			} else {
				v = choiceOn.Render(provinceLabel(v))
			}
			b.WriteString(row(f, v+" "+styleMuted().Render("←/→ to change")))
		case fCity:
			b.WriteString(row(f, m.ed.city.View()))
		case fNeeds:
			b.WriteString(row(f, m.viewNeeds()))
		case fGifts:
			b.WriteString(row(f, m.viewGifts()))
		case fImage:
			b.WriteString(row(f, m.ed.image.View()))
		case fSubmit:
			st := choice
			if m.ed.current() == fSubmit {
				st = choiceOn
			}
			lbl := "Submit"
			if m.ed.busy {
				lbl = "Submitting..."
			}
			b.WriteString("\n" + strings.Repeat(" ", 14) + st.Render(lbl))
		}
		b.WriteString("\n")
	}

	if m.ed.errMsg != "" {
		b.WriteString("\n" + styleError().Render(m.ed.errMsg) + "\n")
	}

	help := "tab/↑↓: fields • ctrl+s: submit • ctrl+c: quit"
	if session.Allowed(m.sess, session.RoleAdmin) {
		help = "tab/↑↓: fields • ctrl+s: submit • ctrl+r: requests • ctrl+c: quit"
	}
	b.WriteString("\n" + styleMuted().Render(help))

	return b.String()
}

func (m appModel) viewNeeds() string {
	var parts []string
	selected := map[string]bool{}
	for _, n := range m.ed.draft.Needs {
		selected[n] = true
	}
	for i, opt := range model.NeedOptions {
		mark := "[ ]"
		if selected[opt] {
			mark = "[x]"
		}
		item := mark + " " + opt
		if m.ed.current() == fNeeds && i == m.ed.needsCursor {
			item = lipgloss.NewStyle().
				Background(colorSelectedBg).Foreground(colorSelectedFg).Render(item)
		}
		parts = append(parts, item)
	}
	pad := "\n" + strings.Repeat(" ", 14)
	return pad + strings.Join(parts, pad)
}

func (m appModel) viewGifts() string {
	gifts := m.ed.visibleGifts()
	var parts []string
	for i, def := range gifts {
		v := m.ed.draft.Gifts[def.Key]
		if v == "" {
			v = "0"
		}
		item := fmt.Sprintf("%-8s %s", def.Label, model.ASCIIDigits(v))
		if m.ed.current() == fGifts && i == m.ed.giftCursor {
			item = lipgloss.NewStyle().
				Background(colorSelectedBg).Foreground(colorSelectedFg).Render(item)
		}
		parts = append(parts, item)
	}
	pad := "\n" + strings.Repeat(" ", 14)
	return pad + strings.Join(parts, pad) +
		pad + styleMuted().Render("←/→: pick • +/-: adjust • digits: type a count")
}

// errKeyFor maps a visible field to its validation key.
func errKeyFor(f edField) string {
	switch f {
	case fGender:
		return "gender"
	case fFullName:
		return "fullName"
	case fPhone:
		return "phone"
	case fActivity:
		return "activity"
	case fCountry, fProvince:
		return "province"
	case fCity:
		return "city"
	case fImage:
		return "image"
	}
	return ""
}
