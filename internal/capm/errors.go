package capm

import (
	"errors"
	"fmt"
)

// MissingBetaMessage is returned to callers when no beta could be found.
const MissingBetaMessage = "No beta available for this ticker. Provide equityBeta explicitly or choose an example."

// ErrMissingBeta is returned when no equity beta was supplied and no
// source in the chain produced one.
var ErrMissingBeta = errors.New(MissingBetaMessage)

// ValidationError reports a request field the calculation cannot use.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e *ValidationError) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Field, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return e.Field + ": invalid"
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsClientError reports whether err stems from the request rather than
// from the service.
func IsClientError(err error) bool {
	var ve *ValidationError
	return errors.Is(err, ErrMissingBeta) || errors.As(err, &ve)
}
