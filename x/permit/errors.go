package permit

import "github.com/iov-one/gasless/errors"

var (
	ErrDeadlineExpired          = errors.Register(200, "deadline expired")
	ErrInvalidOrReplayedNonce   = errors.Register(201, "invalid or replayed nonce")
	ErrProofMissingOrMisplaced  = errors.Register(202, "signature proof missing or misplaced")
	ErrSignaturePubkeyMismatch  = errors.Register(203, "signature pubkey mismatch")
	ErrSignatureMessageMismatch = errors.Register(204, "signature message mismatch")
	ErrOwnerPubkeyMismatch      = errors.Register(205, "owner pubkey mismatch")
	ErrBootstrap                = errors.Register(206, "escrow bootstrap")
)
