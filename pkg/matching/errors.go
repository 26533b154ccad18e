package matching

import "errors"

// The four failure kinds of a match request. All of them surface to the
// client as one uniform bad-request; the kind is recorded in the debug
// object only.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNoCandidates = errors.New("no road candidates")
	ErrInfeasible   = errors.New("no feasible candidate path")
	ErrFacade       = errors.New("road network query failed")
)

// Kind returns the diagnostic label for a matching failure, or "" for
// errors that did not originate here (e.g. context cancellation).
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNoCandidates):
		return "no_candidates"
	case errors.Is(err, ErrInfeasible):
		return "infeasible"
	case errors.Is(err, ErrFacade):
		return "facade_error"
	default:
		return ""
	}
}

// IsMatchingError reports whether err is one of the matching failure kinds.
func IsMatchingError(err error) bool {
	return Kind(err) != ""
}
