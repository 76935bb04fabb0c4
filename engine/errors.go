package engine

import "github.com/cockroachdb/errors"

// Error kinds from the matching core's contract: malformed input is
// rejected before an order ever reaches a book, and a cancel that can't
// find its target is a boolean outcome rather than a failure. ErrShutdown
// names the shutdown kind; nothing in the engine returns it, and a
// consumer that has been told to stop still drains work pushed to it.
var (
	ErrInputInvalid = errors.New("engine: invalid input")
	ErrNotFound     = errors.New("engine: not found")
	ErrShutdown     = errors.New("engine: consumer shut down")
)

// InputInvalidf builds an error that wraps ErrInputInvalid behind the
// formatted message, so callers can test it with errors.Is (the standard
// library's or cockroachdb's) without string matching.
func InputInvalidf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInputInvalid, format, args...)
}

// NotFoundf builds an error that wraps ErrNotFound the same way.
func NotFoundf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrNotFound, format, args...)
}

// invariantViolation signals a bug in the matching core itself — a
// negative leftover, an empty price node that wasn't erased, an order
// executed past its own quantity. It is never meant to be recovered by
// ingress; it panics with an assertion-tagged error so a top-level
// recover (if any) can still tell it apart from an ordinary panic.
func invariantViolation(format string, args ...interface{}) {
	panic(errors.AssertionFailedWithDepthf(1, format, args...))
}
