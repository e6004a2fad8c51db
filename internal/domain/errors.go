package domain

import "github.com/pkg/errors"

var (
	// ErrNotFound target watchlist or refresh config does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation input rejected before reaching any store.
	ErrValidation = errors.New("validation rejected")
	// ErrNoMatches import query resolved to zero assets.
	ErrNoMatches = errors.New("no matching assets")
	// ErrActionInFlight another mutating action is pending.
	ErrActionInFlight = errors.New("another action is in progress")
	// ErrBusyRefreshing a data refresh is running.
	ErrBusyRefreshing = errors.New("refresh in progress")
)

// ErrorKind wire classification of an error.
type ErrorKind string

const (
	KindNotFound       ErrorKind = "not_found"
	KindValidation     ErrorKind = "validation"
	KindNoMatches      ErrorKind = "no_matches"
	KindBusy           ErrorKind = "busy"
	KindServiceFailure ErrorKind = "service_failure"
)

// Classify maps an error onto its kind. Unknown errors are service failures.
func Classify(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNoMatches):
		return KindNoMatches
	case errors.Is(err, ErrActionInFlight), errors.Is(err, ErrBusyRefreshing):
		return KindBusy
	default:
		return KindServiceFailure
	}
}

// Sentinel returns the sentinel error of a kind, nil for service failures.
func (k ErrorKind) Sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindValidation:
		return ErrValidation
	case KindNoMatches:
		return ErrNoMatches
	case KindBusy:
		return ErrActionInFlight
	default:
		return nil
	}
}

// Validationf wraps ErrValidation with a message.
func Validationf(format string, args ...any) error {
	return errors.Wrapf(ErrValidation, format, args...)
}
