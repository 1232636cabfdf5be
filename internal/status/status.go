package status

import "strings"

// Status is the canonical label an entity's backend-supplied status string
// normalizes to. Raw status values arrive as free text (legacy clients, manual
// database edits), so every read path goes through a family Normalize first.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusPreparing Status = "Preparing"
	StatusReady     Status = "Ready"
	StatusClaimed   Status = "Claimed"
	StatusRejected  Status = "Rejected"
	StatusUnknown   Status = "Unknown"
)

// Family holds the synonym table and defaults for one entity family
// (orders, reservations, top-ups). Normalization is total: any input maps
// to exactly one canonical value, never an error.
type Family struct {
	name         string
	synonyms     map[string]Status
	emptyDefault Status
	missDefault  Status
	transitions  map[Status]map[Status]bool
}

func (f *Family) Name() string { return f.name }

// Normalize maps a raw status string to its canonical value. Matching is
// case-insensitive and ignores surrounding whitespace. Empty input maps to
// the family default; anything unrecognized falls through to the family's
// miss default (Unknown for orders/reservations).
func (f *Family) Normalize(raw string) Status {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return f.emptyDefault
	}
	if st, ok := f.synonyms[s]; ok {
		return st
	}
	return f.missDefault
}

// Known reports whether raw maps to a real canonical value (not a miss).
func (f *Family) Known(raw string) bool {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return false
	}
	_, ok := f.synonyms[s]
	return ok
}

// CountMatching returns how many raw status strings normalize to target.
// Badge counts use this so a row reads the same in the count as it does in
// the list it summarizes.
func (f *Family) CountMatching(raws []string, target Status) int {
	n := 0
	for _, raw := range raws {
		if f.Normalize(raw) == target {
			n++
		}
	}
	return n
}

// CanTransition reports whether the family allows moving from one canonical
// status to another.
func (f *Family) CanTransition(from, to Status) bool {
	m, ok := f.transitions[from]
	if !ok {
		return false
	}
	return m[to]
}

var reservationSynonyms = map[string]Status{
	"pending":   StatusPending,
	"new":       StatusPending,
	"approved":  StatusApproved,
	"approve":   StatusApproved,
	"accepted":  StatusApproved,
	"rejected":  StatusRejected,
	"reject":    StatusRejected,
	"declined":  StatusRejected,
	"cancelled": StatusRejected,
	"canceled":  StatusRejected,
	"claimed":   StatusClaimed,
	"pickedup":  StatusClaimed,
	"picked_up": StatusClaimed,
	"picked-up": StatusClaimed,
	"picked up": StatusClaimed,
}

func orderSynonyms() map[string]Status {
	m := make(map[string]Status, len(reservationSynonyms)+6)
	for k, v := range reservationSynonyms {
		m[k] = v
	}
	m["preparing"] = StatusPreparing
	m["inprogress"] = StatusPreparing
	m["in_progress"] = StatusPreparing
	m["ready"] = StatusReady
	m["forpickup"] = StatusReady
	m["for_pickup"] = StatusReady
	return m
}

// Reservations transition out of Pending only; a claimed reservation is
// terminal, as is a rejected one.
var Reservations = &Family{
	name:         "reservation",
	synonyms:     reservationSynonyms,
	emptyDefault: StatusPending,
	missDefault:  StatusUnknown,
	transitions: map[Status]map[Status]bool{
		StatusPending:  {StatusApproved: true, StatusRejected: true},
		StatusApproved: {StatusClaimed: true},
		StatusClaimed:  {},
		StatusRejected: {},
	},
}

// Orders move through the kitchen chain after approval.
var Orders = &Family{
	name:         "order",
	synonyms:     orderSynonyms(),
	emptyDefault: StatusPending,
	missDefault:  StatusUnknown,
	transitions: map[Status]map[Status]bool{
		StatusPending:   {StatusApproved: true, StatusRejected: true},
		StatusApproved:  {StatusPreparing: true, StatusRejected: true},
		StatusPreparing: {StatusReady: true},
		StatusReady:     {StatusClaimed: true},
		StatusClaimed:   {},
		StatusRejected:  {},
	},
}

// TopUps have no unknown state: verification either hasn't happened, passed,
// or failed. Unrecognized raw values are treated as still pending review.
var TopUps = &Family{
	name: "topup",
	synonyms: map[string]Status{
		"pending":  StatusPending,
		"new":      StatusPending,
		"approved": StatusApproved,
		"approve":  StatusApproved,
		"verified": StatusApproved,
		"rejected": StatusRejected,
		"reject":   StatusRejected,
		"declined": StatusRejected,
	},
	emptyDefault: StatusPending,
	missDefault:  StatusPending,
	transitions: map[Status]map[Status]bool{
		StatusPending:  {StatusApproved: true, StatusRejected: true},
		StatusApproved: {},
		StatusRejected: {},
	},
}
