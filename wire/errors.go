package wire

import (
	"errors"
	"fmt"
)

// ErrNeedMore is returned by Decode when the buffer does not yet hold a
// complete frame. It is not a protocol error: the caller should read more
// bytes from the transport and retry.
var ErrNeedMore = errors.New("wire: need more data")

// ProtocolKind enumerates the codec-level error categories from the
// error taxonomy.
type ProtocolKind string

const (
	ErrFrameSize       ProtocolKind = "FrameSize"
	ErrEncoding        ProtocolKind = "Encoding"
	ErrVersion         ProtocolKind = "Version"
	ErrUnexpectedMsg   ProtocolKind = "UnexpectedMessage"
	ErrClipboardOverlap ProtocolKind = "ClipboardOverlap"
	ErrClipboardOrphan  ProtocolKind = "ClipboardOrphan"
	ErrClipboardTooLarge ProtocolKind = "ClipboardTooLarge"
)

// ProtocolError is the single error type the codec and session layers
// raise for malformed or out-of-order protocol traffic.
type ProtocolError struct {
	Kind   ProtocolKind
	Detail string
}

func (e *ProtocolError) Error() string {
	if e.Detail == "" {
		return "wire: protocol error: " + string(e.Kind)
	}
	return fmt.Sprintf("wire: protocol error: %s: %s", e.Kind, e.Detail)
}

// Is lets errors.Is(err, &ProtocolError{Kind: ErrVersion}) match by Kind
// alone, the way callers typically want to check without caring about
// Detail.
func (e *ProtocolError) Is(target error) bool {
	other, ok := target.(*ProtocolError)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

func newProtocolError(kind ProtocolKind, detail string) *ProtocolError {
	return &ProtocolError{Kind: kind, Detail: detail}
}
