package model

import (
	"sort"
	"strconv"
	"strings"
)

// PageSize is the fixed page length of the request list.
const PageSize = 10

// Status filter values accepted by Derive.
const FilterAll = "all"

// Derive produces the filtered, sorted view of the record set. It is a pure
// function of its three inputs.
//
// filterStatus is exact-match unless "all". The search text matches
// case-insensitively against fullName, phone, activity and the author name,
// and is vacuously true when empty. Results are sorted by creation time,
// newest first.
func Derive(forms []RequestForm, search, filterStatus string) []RequestForm {
	q := strings.ToLower(strings.TrimSpace(search))

	out := make([]RequestForm, 0, len(forms))
	for _, f := range forms {
		if filterStatus != "" && filterStatus != FilterAll && f.Status != filterStatus {
			continue
		}
		if q != "" {
			hay := strings.ToLower(strings.Join([]string{
				f.FullName, f.Phone, f.Activity, f.CreatedBy.Name,
			}, " "))
			if !strings.Contains(hay, q) {
				continue
			}
		}
		out = append(out, f)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// TotalPages returns the page count for n filtered records (at least 1).
func TotalPages(n int) int {
	pages := (n + PageSize - 1) / PageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// ClampPage forces page into [1, totalPages].
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// PageSlice returns the records visible on the given (1-based) page.
func PageSlice(forms []RequestForm, page int) []RequestForm {
	page = ClampPage(page, TotalPages(len(forms)))
	lo := (page - 1) * PageSize
	hi := lo + PageSize
	if lo > len(forms) {
		return nil
	}
	if hi > len(forms) {
		hi = len(forms)
	}
	return forms[lo:hi]
}

// GiftCount is one positive gift tally for display.
type GiftCount struct {
	Key   string
	Label string
	Count int
}

// GiftSummary returns the labeled counts for every gift key with a positive
// value, in GiftDefs order. Zero/absent/unparsable values are omitted; an
// empty result means the row should render an explicit "none" indicator.
func GiftSummary(f RequestForm) []GiftCount {
	var out []GiftCount
	for _, def := range GiftDefs {
		raw := strings.TrimSpace(ASCIIDigits(f.Gifts[def.Key]))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			continue
		}
		out = append(out, GiftCount{Key: def.Key, Label: def.Label, Count: n})
	}
	return out
}
