package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Root errors shared by every extension. Codes are part of the ABCI
// responses and must never be reused for a different meaning.
var (
	ErrUnauthorized = Register(2, "unauthorized")
	ErrNotFound     = Register(3, "not found")
	// ErrMsg marks a transaction instruction that fails validation.
	ErrMsg = Register(4, "invalid message")
	// ErrModel marks a stored record that fails validation.
	ErrModel     = Register(5, "invalid model")
	ErrDuplicate = Register(6, "duplicate")
	// ErrHuman is a programming mistake, never a user error.
	ErrHuman = Register(7, "coding error")
	ErrEmpty = Register(9, "value is empty")
	ErrState = Register(10, "invalid state")
	ErrType  = Register(11, "invalid type")

	// ErrInsufficientFunds is returned by the ledger when an account balance
	// cannot cover a debit.
	ErrInsufficientFunds = Register(12, "insufficient funds")
	ErrAmount            = Register(13, "invalid amount")
	ErrInput             = Register(14, "invalid input")
	ErrExpired           = Register(15, "expired")
	ErrOverflow          = Register(16, "an operation cannot be completed due to value overflow")

	// ErrAccountMismatch is returned when an account fails an identity,
	// asset or authority check.
	ErrAccountMismatch = Register(17, "account mismatch")
	ErrDatabase        = Register(18, "database")
	ErrIteratorDone    = Register(19, "iterator done")

	// Code 20 belongs to x/sigs.

	// ErrNetwork is returned when a remote node cannot be reached.
	ErrNetwork = Register(22, "network")
	// ErrTimeout is returned when an operation was cancelled before it
	// completed.
	ErrTimeout = Register(23, "timeout")

	// ErrPanic is only produced by Recover. Its log is redacted.
	ErrPanic = Register(111222, "panic")
)

// Code 1 is reserved for errors that carry no code.
var usedCodes = map[uint32]*Error{
	1: {code: 1, desc: internalABCILog},
}

// Register declares a root error. Extensions declare their own codes at
// package initialization. Registering a used code panics.
func Register(code uint32, description string) *Error {
	if prev, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error code %d already registered as %q", code, prev.desc))
	}
	e := &Error{code: code, desc: description}
	usedCodes[code] = e
	return e
}

// Error is a root error. Errors returned at runtime wrap one of them so
// that clients receive a stable code.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string    { return e.desc }
func (e Error) ABCICode() uint32 { return e.code }

// New is Wrap(e, description).
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

func (e *Error) Newf(format string, args ...interface{}) error {
	return Wrap(e, fmt.Sprintf(format, args...))
}

// Is reports whether err is kind, wraps kind, or groups an error that does.
// A nil kind matches only nil errors, typed nil pointers included.
func (kind *Error) Is(err error) bool {
	if kind == nil {
		return isNilErr(err)
	}
	for err != nil {
		if err == kind {
			return true
		}
		if u, ok := err.(unpacker); ok {
			for _, e := range u.Unpack() {
				if kind.Is(e) {
					return true
				}
			}
			return false
		}
		c, ok := err.(causer)
		if !ok {
			return false
		}
		err = c.Cause()
	}
	return false
}

// Is returns true if any of the given kinds matches err.
func Is(err error, kinds ...*Error) bool {
	for _, k := range kinds {
		if k.Is(err) {
			return true
		}
	}
	return false
}

// Wrap adds description in front of err and records a stack trace unless
// err already carries one. A nil err stays nil. Errors without an ABCI code
// are reported as internal errors.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &wrappedError{parent: err, msg: description}
}

func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string { return e.msg + ": " + e.parent.Error() }
func (e *wrappedError) Cause() error  { return e.parent }

// Unwrap lets the standard library errors package walk the chain.
func (e *wrappedError) Unwrap() error { return e.parent }

// Format prints the stack trace for %+v.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s: %+v", e.msg, e.parent)
		return
	}
	fmt.Fprint(s, e.Error())
}

// Recover turns a panic into an ErrPanic stored in *err. Use it with defer.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// WithType wraps err with the type name of obj.
func WithType(err error, obj interface{}) error {
	return Wrap(err, fmt.Sprintf("%T", obj))
}

type causer interface {
	Cause() error
}

// unpacker is implemented by errors that group many errors together.
type unpacker interface {
	Unpack() []error
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// stackTrace returns the first stack trace found along the cause chain.
func stackTrace(err error) errors.StackTrace {
	for err != nil {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}
		c, ok := err.(causer)
		if !ok {
			return nil
		}
		err = c.Cause()
	}
	return nil
}

// isNilErr also catches a nil pointer stored in the error interface.
func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	v := reflect.ValueOf(err)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
