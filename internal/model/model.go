package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Derived status values. The backend only stores isConfirmed; status is a
// client-side projection and is recomputed on every mutation.
const (
	StatusConfirm = "confirm"
	StatusPending = "pending"
)

// FormID is a record id as assigned by the backend. The wire format is not
// stable across deployments (some send numbers, some strings), so accept both.
type FormID string

func (id *FormID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = FormID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = FormID(n.String())
	return nil
}

func (id FormID) String() string { return string(id) }

// Author identifies who submitted a request.
type Author struct {
	ID   FormID `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// RequestForm is one representation-request submission.
type RequestForm struct {
	ID          FormID            `json:"id"`
	Gender      string            `json:"gender"`
	FullName    string            `json:"fullName"`
	Phone       string            `json:"phone"`
	Activity    string            `json:"activity"`
	Description string            `json:"description"`
	Province    string            `json:"province"`
	City        string            `json:"city"`
	Needs       []string          `json:"needs"`
	Gifts       map[string]string `json:"gifts"`
	IsConfirmed bool              `json:"isConfirmed"`
	Image       string            `json:"image,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	CreatedBy   Author            `json:"createdBy"`

	// Status is derived from IsConfirmed; never trusted from the wire.
	Status string `json:"-"`
}

// StatusFor derives the display status from the stored confirmation flag.
func StatusFor(confirmed bool) string {
	if confirmed {
		return StatusConfirm
	}
	return StatusPending
}

// Normalize makes a record safe for local state: gifts defaulted to an empty
// map and status recomputed.
func (f *RequestForm) Normalize() {
	if f.Gifts == nil {
		f.Gifts = map[string]string{}
	}
	f.Status = StatusFor(f.IsConfirmed)
}

// Normalized returns a normalized copy.
func (f RequestForm) Normalized() RequestForm {
	f.Normalize()
	return f
}

var persianDigits = map[rune]rune{
	'۰': '0', '۱': '1', '۲': '2', '۳': '3', '۴': '4',
	'۵': '5', '۶': '6', '۷': '7', '۸': '8', '۹': '9',
}

// ASCIIDigits maps localized (Persian) digits to ASCII ones. Phone numbers and
// gift counts are normalized with this before they are sent to the backend.
func ASCIIDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if d, ok := persianDigits[r]; ok {
			return d
		}
		return r
	}, s)
}

// SanitizeCount strips everything but digit characters (ASCII or Persian)
// from a gift quantity. Negative values cannot be expressed.
func SanitizeCount(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		if _, ok := persianDigits[r]; ok {
			return r
		}
		return -1
	}, s)
}
