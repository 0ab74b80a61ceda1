package model

// Push events delivered by the realtime channel. The same logical change may
// arrive more than once (push echo after an optimistic local apply, duplicate
// delivery after a reconnect), so Apply must be idempotent.

type EventKind string

const (
	EventCreated EventKind = "newForm"
	EventUpdated EventKind = "updateForm"
	EventDeleted EventKind = "deleteForm"
)

// Event is one create/update/delete notification keyed by record id.
type Event struct {
	Kind EventKind
	// Form carries the full record for created/updated events.
	Form RequestForm
	// ID is the target record id. For created/updated it mirrors Form.ID.
	ID FormID
}

func CreatedEvent(f RequestForm) Event { return Event{Kind: EventCreated, Form: f, ID: f.ID} }
func UpdatedEvent(f RequestForm) Event { return Event{Kind: EventUpdated, Form: f, ID: f.ID} }
func DeletedEvent(id FormID) Event     { return Event{Kind: EventDeleted, ID: id} }

// Apply merges one event into the record set and returns the resulting set.
// The input slice is not mutated.
//
//   - created: prepend unless the id is already present (no-op on duplicates)
//   - updated: replace the matching record, recomputing status; no-op if absent
//   - deleted: remove the matching record; no-op if absent
func Apply(forms []RequestForm, ev Event) []RequestForm {
	switch ev.Kind {
	case EventCreated:
		for i := range forms {
			if forms[i].ID == ev.ID {
				return forms
			}
		}
		out := make([]RequestForm, 0, len(forms)+1)
		out = append(out, ev.Form.Normalized())
		out = append(out, forms...)
		return out

	case EventUpdated:
		for i := range forms {
			if forms[i].ID == ev.ID {
				out := make([]RequestForm, len(forms))
				copy(out, forms)
				out[i] = ev.Form.Normalized()
				return out
			}
		}
		return forms

	case EventDeleted:
		out := forms[:0:0]
		for _, f := range forms {
			if f.ID != ev.ID {
				out = append(out, f)
			}
		}
		if len(out) == len(forms) {
			return forms
		}
		return out
	}
	return forms
}

// ApplyAll folds a batch of events (e.g. events queued while the initial
// fetch was in flight) into the record set, in delivery order.
func ApplyAll(forms []RequestForm, evs []Event) []RequestForm {
	for _, ev := range evs {
		forms = Apply(forms, ev)
	}
	return forms
}
