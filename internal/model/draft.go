package model

import (
	"fmt"
	"strings"
)

// Image attachment constraints (export activity only).
const (
	MaxImageBytes = 10 * 1024 * 1024
)

var allowedImageMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Draft is the editable state of one request form. A non-empty ID means it
// edits an existing record.
type Draft struct {
	ID          FormID
	Gender      string
	FullName    string
	Phone       string
	Activity    string
	Description string
	// Province holds the province value, or the free-text country when the
	// activity is ActivityExport.
	Province string
	City     string
	Needs    []string
	Gifts    map[string]string

	// New image selection, if any. Only meaningful for ActivityExport.
	ImagePath string
	ImageSize int64
	ImageMIME string
	// ExistingImage is the server-side filename kept when no new file is chosen.
	ExistingImage string
}

// NewDraft returns an empty draft with all gift keys present.
func NewDraft() Draft {
	return Draft{Gifts: EmptyGifts()}
}

// DraftFrom pre-fills a draft from an existing record (the list view's edit
// action).
func DraftFrom(f RequestForm) Draft {
	d := Draft{
		ID:            f.ID,
		Gender:        f.Gender,
		FullName:      f.FullName,
		Phone:         f.Phone,
		Activity:      f.Activity,
		Description:   f.Description,
		Province:      f.Province,
		City:          f.City,
		Needs:         append([]string(nil), f.Needs...),
		Gifts:         EmptyGifts(),
		ExistingImage: f.Image,
	}
	for k, v := range f.Gifts {
		d.Gifts[k] = v
	}
	return d
}

// IsEdit reports whether the draft targets an existing record.
func (d Draft) IsEdit() bool { return strings.TrimSpace(string(d.ID)) != "" }

// IsVIP reports whether the VIP-management activity is selected, which waives
// the phone/activity/location requirements and unlocks the A+ gift.
func (d Draft) IsVIP() bool { return d.Activity == ActivityVIP }

// IsExport reports whether the export activity is selected (country replaces
// province, city suppressed, optional image allowed).
func (d Draft) IsExport() bool { return d.Activity == ActivityExport }

// SetActivity switches the activity and applies the dependent-field rules:
// leaving VIP clears the A+ gift, entering export clears the city, leaving
// export drops any image selection.
func (d *Draft) SetActivity(activity string) {
	d.Activity = activity
	if !d.IsVIP() {
		if d.Gifts == nil {
			d.Gifts = EmptyGifts()
		}
		d.Gifts["giftAPlus"] = ""
	}
	if d.IsExport() {
		d.City = ""
	} else {
		d.ImagePath = ""
		d.ImageSize = 0
		d.ImageMIME = ""
		d.ExistingImage = ""
	}
}

// ToggleNeed adds or removes one needs-catalog entry.
func (d *Draft) ToggleNeed(value string) {
	for i, n := range d.Needs {
		if n == value {
			d.Needs = append(d.Needs[:i], d.Needs[i+1:]...)
			return
		}
	}
	d.Needs = append(d.Needs, value)
}

// FieldErrors maps field name to a user-facing message. Submission is blocked
// while it is non-empty.
type FieldErrors map[string]string

// Validate checks the draft locally. Gender and fullName are always required;
// phone/activity/location only outside VIP management; the location mode
// (province+city vs country) follows the export flag; a newly chosen image is
// checked against size and MIME constraints.
func (d Draft) Validate() FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(d.Gender) == "" {
		errs["gender"] = "select a gender"
	}
	if strings.TrimSpace(d.FullName) == "" {
		errs["fullName"] = "full name is required"
	}

	if !d.IsVIP() {
		if strings.TrimSpace(d.Phone) == "" {
			errs["phone"] = "phone number is required"
		}
		if strings.TrimSpace(d.Activity) == "" {
			errs["activity"] = "select an activity"
		}

		if d.IsExport() {
			if strings.TrimSpace(d.Province) == "" {
				errs["province"] = "country is required"
			}
		} else if d.Activity != "" {
			if strings.TrimSpace(d.Province) == "" {
				errs["province"] = "select a province"
			}
			if strings.TrimSpace(d.City) == "" {
				errs["city"] = "city is required"
			}
		}
	}

	if d.IsExport() && d.ImagePath != "" {
		if d.ImageSize > MaxImageBytes {
			errs["image"] = fmt.Sprintf("image must be smaller than %dMB", MaxImageBytes/(1024*1024))
		}
		if !allowedImageMIMEs[d.ImageMIME] {
			errs["image"] = "only JPEG and PNG images are allowed"
		}
	}

	return errs
}

// WireGifts returns the gift map with digits normalized to ASCII, ready for
// serialization.
func (d Draft) WireGifts() map[string]string {
	out := make(map[string]string, len(d.Gifts))
	for k, v := range d.Gifts {
		out[k] = ASCIIDigits(v)
	}
	return out
}

// WirePhone returns the phone number with digits normalized to ASCII.
func (d Draft) WirePhone() string { return ASCIIDigits(d.Phone) }
