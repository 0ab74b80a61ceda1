package tui

import (
	"os"
	"path/filepath"
	"testing"

	"repdesk/internal/model"
)

func TestEditorFieldVisibilityFollowsActivity(t *testing.T) {
	e := newEditorState(model.NewDraft())

	has := func(fs []edField, want edField) bool {
		for _, f := range fs {
			if f == want {
				return true
			}
		}
		return false
	}

	// Default: no activity chosen yet, so no location fields.
	fs := e.fields()
	if !has(fs, fPhone) || has(fs, fProvince) || has(fs, fCity) || has(fs, fImage) {
		t.Fatalf("unexpected default fields: %v", fs)
	}

	e.draft.SetActivity(model.Activities[0])
	fs = e.fields()
	if !has(fs, fProvince) || !has(fs, fCity) || has(fs, fCountry) {
		t.Fatalf("unexpected fields for a plain activity: %v", fs)
	}

	e.draft.SetActivity(model.ActivityExport)
	fs = e.fields()
	if !has(fs, fCountry) || has(fs, fProvince) || has(fs, fCity) || !has(fs, fImage) {
		t.Fatalf("unexpected export fields: %v", fs)
	}

	e.draft.SetActivity(model.ActivityVIP)
	fs = e.fields()
	if has(fs, fPhone) || has(fs, fProvince) || has(fs, fCity) || has(fs, fImage) {
		t.Fatalf("unexpected VIP fields: %v", fs)
	}
}

func TestEditorGiftRowsHideAPlusOutsideVIP(t *testing.T) {
	e := newEditorState(model.NewDraft())
	for _, def := range e.visibleGifts() {
		if def.Key == "giftAPlus" {
			t.Fatal("A+ visible without VIP management")
		}
	}

	e.draft.SetActivity(model.ActivityVIP)
	found := false
	for _, def := range e.visibleGifts() {
		if def.Key == "giftAPlus" {
			found = true
		}
	}
	if !found {
		t.Fatal("A+ missing under VIP management")
	}
}

func TestSubmitVIPOnlyNeedsGenderAndName(t *testing.T) {
	m := testModel(t)
	m.view = viewEditor
	m.ed = newEditorState(model.NewDraft())
	m.ed.draft.SetActivity(model.ActivityVIP)
	m.ed.draft.Gender = model.GenderMale
	m.ed.fullName.SetValue("Ali Reza")

	tm, cmd := m.submitEditor()
	m = asApp(t, tm)
	if len(m.ed.errs) > 0 {
		t.Fatalf("validation errors under VIP waiver: %v", m.ed.errs)
	}
	if !m.ed.busy || cmd == nil {
		t.Fatal("submission did not start")
	}
}

func TestSubmitBlocksOversizedImage(t *testing.T) {
	m := testModel(t)
	m.view = viewEditor
	m.ed = newEditorState(model.NewDraft())
	m.ed.draft.SetActivity(model.ActivityExport)
	m.ed.draft.Gender = model.GenderFemale
	m.ed.fullName.SetValue("Sara")
	m.ed.phone.SetValue("۰۹۱۲۰۰۰۰۰۰۰")
	m.ed.country.SetValue("Turkey")

	big := filepath.Join(t.TempDir(), "big.jpg")
	f, err := os.Create(big)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Truncate(model.MaxImageBytes + 1); err != nil {
		t.Fatal(err)
	}
	f.Close()
	m.ed.image.SetValue(big)

	tm, cmd := m.submitEditor()
	m = asApp(t, tm)
	if cmd != nil || m.ed.busy {
		t.Fatal("oversized image still submitted")
	}
	if m.ed.errs["image"] == "" {
		t.Fatal("no image error reported")
	}
}

func TestSubmitValidationBlocksIncompleteDraft(t *testing.T) {
	m := testModel(t)
	m.view = viewEditor
	m.ed = newEditorState(model.NewDraft())
	m.ed.draft.Gender = model.GenderMale
	// Name, phone and activity are all missing.

	tm, cmd := m.submitEditor()
	m = asApp(t, tm)
	if cmd != nil || m.ed.busy {
		t.Fatal("incomplete draft submitted")
	}
	for _, key := range []string{"fullName", "phone", "activity"} {
		if m.ed.errs[key] == "" {
			t.Fatalf("missing error for %s: %v", key, m.ed.errs)
		}
	}
}

func TestCollectUsesCountryForExport(t *testing.T) {
	e := newEditorState(model.NewDraft())
	e.draft.SetActivity(model.ActivityExport)
	e.country.SetValue("  Iraq ")
	e.city.SetValue("should be ignored")

	d := e.collect()
	if d.Province != "Iraq" {
		t.Fatalf("province = %q, want country value", d.Province)
	}
	if d.City != "" {
		t.Fatalf("city = %q, want empty for export", d.City)
	}
}

func TestCycleStringWrapsThroughBlank(t *testing.T) {
	opts := []string{"a", "b"}
	if got := cycleString(opts, "", true); got != "a" {
		t.Fatalf("got %q", got)
	}
	if got := cycleString(opts, "b", true); got != "" {
		t.Fatalf("wrap got %q", got)
	}
	if got := cycleString(opts, "", false); got != "b" {
		t.Fatalf("backward wrap got %q", got)
	}
}

func TestBumpCount(t *testing.T) {
	if got := bumpCount("", +1); got != "1" {
		t.Fatalf("got %q", got)
	}
	if got := bumpCount("۲", +1); got != "3" {
		t.Fatalf("persian digit bump got %q", got)
	}
	if got := bumpCount("1", -1); got != "" {
		t.Fatalf("zero should clear, got %q", got)
	}
}
