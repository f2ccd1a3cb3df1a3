package quoting

import (
	"errors"
	"fmt"
)

// Sentinel errors. Their messages are stable codes that handlers translate.
var (
	ErrNotEditable          = errors.New("quote_not_editable")
	ErrTransitionNotAllowed = errors.New("transition_not_allowed")
	ErrElevatedRequired     = errors.New("elevated_role_required")
	ErrDuplicateOnly        = errors.New("duplicate_only")
	ErrClientContactMissing = errors.New("client_contact_missing")
	ErrAssemblyMissing      = errors.New("assembly_service_missing")
	ErrUnknownStatus        = errors.New("unknown_status")
)

// TransitionError reports why a status change was refused.
type TransitionError struct {
	From Status
	To   Status
	Err  error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s -> %s: %v", e.From, e.To, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }

// IsPrecondition reports whether err is a refusal based on the quote's current state.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrNotEditable) ||
		errors.Is(err, ErrTransitionNotAllowed) ||
		errors.Is(err, ErrDuplicateOnly) ||
		errors.Is(err, ErrClientContactMissing) ||
		errors.Is(err, ErrAssemblyMissing)
}
