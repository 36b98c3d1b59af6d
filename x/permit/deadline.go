package permit

import (
	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
)

// CheckDeadline fails when now is past the deadline. A permit is still
// valid at the deadline second.
func CheckDeadline(deadline int64, now gasless.UnixTime) error {
	if gasless.UnixTime(deadline) < now {
		return errors.Wrapf(ErrDeadlineExpired, "deadline %s, now %s", gasless.UnixTime(deadline), now)
	}
	return nil
}
