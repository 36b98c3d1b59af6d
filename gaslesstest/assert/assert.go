// Package assert holds the few assertions the gasless tests use without
// pulling in testify. Every helper stops the test on failure.
package assert

import (
	"reflect"
	"testing"

	"github.com/iov-one/gasless/errors"
)

// Tester is the part of testing.TB the helpers need.
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

// Nil fails unless value is nil, including typed nil pointers and slices.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if isNil(value) {
		return
	}
	// %+v prints the stack of errors created by the errors package.
	t.Fatalf("want nil, got %+v", value)
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

// Equal compares using reflect.DeepEqual.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("not equal\nwant %T %v\n got %T %v", want, want, got, got)
	}
}

// Panics fails unless fn panics.
func Panics(t Tester, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("want panic")
		}
	}()
	fn()
}

// FieldError requires err to carry exactly one error for the field name and
// that error to be of the want type. A nil want requires no error for the
// field.
func FieldError(t testing.TB, err error, name string, want *errors.Error) {
	t.Helper()
	errs := errors.FieldErrors(err, name)
	if want == nil {
		if len(errs) != 0 {
			t.Fatalf("want no %q error, got %d: %q", name, len(errs), errs)
		}
		return
	}
	switch len(errs) {
	case 0:
		t.Fatalf("no %q error found", name)
	case 1:
		if !want.Is(errs[0]) {
			t.Fatalf("want %q error %q, got %q", name, want, errs[0])
		}
	default:
		for i, e := range errs {
			t.Logf("\t%q error %d: %q", name, i+1, e)
		}
		t.Fatalf("want one %q error, got %d", name, len(errs))
	}
}

// IsErr fails unless got is want or want.Is(got) reports true.
func IsErr(t testing.TB, want, got error) {
	t.Helper()
	if want == got {
		return
	}
	if is, ok := want.(interface{ Is(error) bool }); ok && is.Is(got) {
		return
	}
	t.Fatalf("want %q, got %+v", want, got)
}
