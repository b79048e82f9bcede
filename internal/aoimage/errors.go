package aoimage

import (
	"errors"
	"fmt"
)

// Kind classifies engine failures so callers can branch on the cause
// without parsing messages.
type Kind int

const (
	// KindAlloc means sizing a pixel buffer failed (the byte count
	// overflows or exceeds the platform int).
	KindAlloc Kind = iota + 1
	// KindInvalid means bad input geometry, channel count or factor.
	KindInvalid
	// KindCodec means the JPEG codec rejected the data, or the data
	// failed the signature check before the codec was invoked.
	KindCodec
	// KindIO means a platform file operation failed.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindAlloc:
		return "alloc"
	case KindInvalid:
		return "invalid"
	case KindCodec:
		return "codec"
	case KindIO:
		return "io"
	}
	return "unknown"
}

// Error is the failure value returned by engine operations.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("aoimage: %s: %v", e.Msg, e.Err)
	}
	return "aoimage: " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is (or wraps) an engine error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

func errf(k Kind, format string, args ...any) error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

func wrap(k Kind, err error, msg string) error {
	return &Error{Kind: k, Msg: msg, Err: err}
}
