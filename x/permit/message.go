package permit

import (
	"encoding/binary"
	"fmt"
)

const (
	// PermitTag is the domain tag every signed permit starts with.
	PermitTag = "GASLESS_PERMIT"

	// KeySize is the width of the owner key and of the protocol identifier.
	KeySize = 32

	// MessageSize is the length of every canonical message.
	MessageSize = len(PermitTag) + 2*KeySize + 4*8
)

// CanonicalMessage returns the bytes an owner signs to authorize a relayed
// transfer. All fields are fixed width. Owner and protocolID must be
// KeySize long.
func CanonicalMessage(owner, protocolID []byte, amount, fee uint64, deadline int64, nonce uint64) []byte {
	if len(owner) != KeySize || len(protocolID) != KeySize {
		panic(fmt.Sprintf("owner and protocol id must be %d bytes, got %d and %d", KeySize, len(owner), len(protocolID)))
	}
	msg := make([]byte, 0, MessageSize)
	msg = append(msg, PermitTag...)
	msg = append(msg, owner...)
	msg = append(msg, protocolID...)

	var num [8]byte
	binary.LittleEndian.PutUint64(num[:], amount)
	msg = append(msg, num[:]...)
	binary.LittleEndian.PutUint64(num[:], fee)
	msg = append(msg, num[:]...)
	binary.LittleEndian.PutUint64(num[:], uint64(deadline))
	msg = append(msg, num[:]...)
	binary.LittleEndian.PutUint64(num[:], nonce)
	msg = append(msg, num[:]...)
	return msg
}
