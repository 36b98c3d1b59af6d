package sigs

import (
	"github.com/iov-one/gasless/errors"
)

// x/sigs reserves 20 ~ 29.
var (
	ErrInvalidSequence = errors.Register(20, "invalid sequence number")
)
