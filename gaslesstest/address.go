package gaslesstest

import (
	"testing"

	"github.com/iov-one/gasless"
)

// ParseAddress takes an address in a human readable format and returns its
// binary representation. The test fails if the address cannot be decoded.
func ParseAddress(t testing.TB, encodedAddress string) gasless.Address {
	t.Helper()

	addr, err := gasless.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}
