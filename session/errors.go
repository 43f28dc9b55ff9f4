package session

import (
	"errors"
	"fmt"

	"github.com/badu/synergy/wire"
)

// Kind enumerates the SessionError taxonomy.
type Kind string

const (
	ErrTimeout      Kind = "Timeout"
	ErrBackpressure Kind = "Backpressure"
	ErrClosedKind   Kind = "Closed"
	ErrRemote       Kind = "RemoteError"
	// ErrRejected is returned by NewServerSession when the peer's HelloBack
	// name was rejected by the Validator (unknown, busy, or malformed).
	ErrRejected Kind = "Rejected"
)

// Error is the session-level error type: timeouts, backpressure, a remote
// error reply, or use of a session after it closed.
type Error struct {
	Kind Kind
	Code wire.ErrorCode // only set when Kind is ErrRemote or ErrRejected
}

func (e *Error) Error() string {
	if e.Kind == ErrRemote {
		return fmt.Sprintf("session: remote error %s", e.Code)
	}
	return fmt.Sprintf("session: %s", e.Kind)
}

func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

// ErrClosed is returned by Send/SetInput-style calls made after a Session
// has already shut down, the same sentinel-error idiom the teacher uses for
// core.ErrNoScreen/core.ErrNoCharset.
var ErrClosed = errors.New("session: closed")
