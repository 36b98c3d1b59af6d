package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field attaches a field name and an optional description to err. It returns
// nil for a nil err.
//
// Field names follow Go naming, with dots for nested values and the element
// index for list members: Amount, Permit.Nonce, Instructions.1.
func Field(name string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{parent: err, field: name, desc: description}
}

// AppendField is Append(errs, Field(name, err, "")).
func AppendField(errs error, name string, err error) error {
	return Append(errs, Field(name, err, ""))
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (e *fieldError) Error() string {
	if e.desc != "" {
		return fmt.Sprintf("field %q: %s: %s", e.field, e.desc, e.parent)
	}
	return fmt.Sprintf("field %q: %s", e.field, e.parent)
}

func (e *fieldError) Cause() error  { return e.parent }
func (e *fieldError) Field() string { return e.field }

type fielder interface {
	Field() string
}

// FieldErrors collects the errors created by Field for the given name,
// looking through wrapped and appended errors.
func FieldErrors(err error, name string) []error {
	var found []error
	walkFields(err, func(e error, field string) {
		if field == name {
			found = append(found, e)
		}
	})
	return found
}

// walkFields calls fn for every field error reachable from err. The search
// does not descend below a field error.
func walkFields(err error, fn func(error, string)) {
	for !isNilErr(err) {
		if f, ok := err.(fielder); ok {
			fn(err, f.Field())
			return
		}
		if u, ok := err.(unpacker); ok {
			for _, e := range u.Unpack() {
				walkFields(e, fn)
			}
			return
		}
		c, ok := err.(causer)
		if !ok {
			return
		}
		err = c.Cause()
	}
}
