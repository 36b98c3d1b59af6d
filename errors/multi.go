package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If no non-nil errors are given, nil is returned. A single error is returned
// unchanged.
func Append(errs ...error) error {
	var flat []error
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if m, ok := e.(*multiErr); ok {
			flat = append(flat, m.errs...)
			continue
		}
		flat = append(flat, e)
	}
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	}
	return &multiErr{errs: flat}
}

// multiErr groups errors collected during validation. The first error decides
// the ABCI code, which keeps the fail-fast semantics of single errors.
type multiErr struct {
	errs []error
}

var (
	_ coder    = (*multiErr)(nil)
	_ unpacker = (*multiErr)(nil)
)

func (m *multiErr) Error() string {
	points := make([]string, len(m.errs))
	for i, err := range m.errs {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n",
		len(m.errs), strings.Join(points, "\n\t"))
}

// Unpack returns all grouped errors.
func (m *multiErr) Unpack() []error {
	return m.errs
}

func (m *multiErr) ABCICode() uint32 {
	return abciCode(m.errs[0])
}
