// Package fetcherr classifies failures of a fetch request so the transport
// layer can pick a status code and a user-facing message.
package fetcherr

import "errors"

var (
	// ErrClientInput means the submitted request was unusable.
	ErrClientInput = errors.New("invalid input")
	// ErrResolution means no downloadable entries could be derived from the URL.
	ErrResolution = errors.New("resolution failed")
	// ErrRetryable means the external utility hit a transient failure.
	ErrRetryable = errors.New("retryable download failure")
	// ErrFatal means the external utility failed for good.
	ErrFatal = errors.New("download failed")
	// ErrMissingArtifact means the utility succeeded but left no media file.
	ErrMissingArtifact = errors.New("missing artifact")
	// ErrNotFound means the job handle is unknown, consumed or expired.
	ErrNotFound = errors.New("not found")
)

// Error pairs a kind with the message shown to the caller.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.Error()
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

func New(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind error, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Message returns the user-facing text for err.
func Message(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// IsClient reports whether err is the caller's fault.
func IsClient(err error) bool {
	return errors.Is(err, ErrClientInput)
}
