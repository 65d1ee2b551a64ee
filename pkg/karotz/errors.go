package karotz

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration reports that a client could not be built.
	ErrConfiguration = errors.New("karotz: configuration error")
	// ErrInvalidHostname reports a hostname that failed validation.
	ErrInvalidHostname = fmt.Errorf("%w: invalid hostname", ErrConfiguration)
	// ErrNilArgument reports a missing mandatory constructor argument.
	ErrNilArgument = errors.New("karotz: nil argument")
	// ErrInvalidArgument reports a command argument rejected before any request was sent.
	ErrInvalidArgument = errors.New("karotz: invalid argument")
	// ErrUnsupportedOperation is returned when the device answers 400 Bad Request,
	// which usually means the command is newer than the installed firmware.
	ErrUnsupportedOperation = errors.New("karotz: unsupported operation")
	// ErrMalformedResponse reports a body that is not the JSON the command expects.
	ErrMalformedResponse = errors.New("karotz: malformed response")
)

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
