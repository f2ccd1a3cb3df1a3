package quoting

import (
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a quote.
type Status string

const (
	StatusUnsent   Status = "unsent"
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusUnsent, StatusDraft, StatusSent, StatusApproved, StatusRejected, StatusExpired}

// ParseStatus validates a raw status value.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Statuses {
		if st == known {
			return st, nil
		}
	}
	return "", ErrUnknownStatus
}

// Quote is the capability shared by merchandise and picking quotes.
type Quote interface {
	GetStatus() Status
	GetValidUntil() time.Time
	GetTotal() decimal.Decimal
	GetClientID() uint
	GetUserID() uint
}

// EffectiveStatus layers the time-based expiry on top of the stored status.
// A quote still open (unsent, draft, sent) whose validity date lies before today's
// date is expired; closed statuses are returned unchanged.
func EffectiveStatus(q Quote, now time.Time) Status {
	st := q.GetStatus()
	switch st {
	case StatusUnsent, StatusDraft, StatusSent:
	default:
		return st
	}
	valid := q.GetValidUntil()
	if valid.IsZero() {
		return st
	}
	if dateOnly(valid).Before(dateOnly(now)) {
		return StatusExpired
	}
	return st
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CanEdit reports whether items, services or boxes may be changed in this status.
func CanEdit(st Status) bool {
	return st == StatusUnsent || st == StatusDraft
}

// CheckEditable returns ErrNotEditable unless the quote is editable right now.
func CheckEditable(q Quote, now time.Time) error {
	if !CanEdit(EffectiveStatus(q, now)) {
		return ErrNotEditable
	}
	return nil
}

// Actor is whoever asks for a transition.
type Actor struct {
	UserID   uint
	Elevated bool
}

type rule int

const (
	denied rule = iota
	owner
	elevated
	duplicateOnly
)

var transitions = map[Status]map[Status]rule{
	StatusUnsent: {
		StatusDraft:    owner,
		StatusSent:     owner,
		StatusApproved: elevated,
		StatusRejected: elevated,
		StatusExpired:  owner,
	},
	StatusDraft: {
		StatusUnsent:   owner,
		StatusSent:     owner,
		StatusApproved: elevated,
		StatusRejected: elevated,
		StatusExpired:  owner,
	},
	StatusSent: {
		StatusApproved: owner,
		StatusRejected: owner,
		StatusExpired:  owner,
	},
	StatusRejected: {
		StatusDraft: duplicateOnly,
		StatusSent:  owner,
	},
	StatusExpired: {
		StatusDraft: duplicateOnly,
	},
}

// CheckTransition validates a requested change from the current (effective) status.
func CheckTransition(from, to Status, actor Actor) error {
	switch transitions[from][to] {
	case owner:
		return nil
	case elevated:
		if actor.Elevated {
			return nil
		}
		return &TransitionError{From: from, To: to, Err: ErrElevatedRequired}
	case duplicateOnly:
		return &TransitionError{From: from, To: to, Err: ErrDuplicateOnly}
	default:
		return &TransitionError{From: from, To: to, Err: ErrTransitionNotAllowed}
	}
}

// AllowedTransitions lists the statuses reachable by actor from the given status.
func AllowedTransitions(from Status, actor Actor) []Status {
	var out []Status
	for _, to := range Statuses {
		if CheckTransition(from, to, actor) == nil {
			out = append(out, to)
		}
	}
	return out
}

// CopyStatus is the status given to a duplicate of a quote in the given status.
func CopyStatus(source Status) Status {
	if source == StatusUnsent {
		return StatusUnsent
	}
	return StatusDraft
}

// SendRequirements are the hard preconditions of moving a quote to sent.
type SendRequirements struct {
	ClientEmail     string
	RequireAssembly bool
	HasAssembly     bool
}

// Check returns the first unmet send precondition.
func (r SendRequirements) Check() error {
	if !UsableContact(r.ClientEmail) {
		return ErrClientContactMissing
	}
	if r.RequireAssembly && !r.HasAssembly {
		return ErrAssemblyMissing
	}
	return nil
}

// UsableContact reports whether email can receive a quote.
func UsableContact(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
