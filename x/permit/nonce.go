package permit

import "github.com/iov-one/gasless/errors"

// CheckNonce fails unless nonce is strictly greater than the last accepted
// one. It never modifies the record.
func CheckNonce(rec *EscrowRecord, nonce uint64) error {
	if nonce <= rec.LastNonce {
		return errors.Wrapf(ErrInvalidOrReplayedNonce, "nonce %d, last accepted %d", nonce, rec.LastNonce)
	}
	return nil
}

// CommitNonce records nonce as the last accepted one. Call it only after
// the transfers succeeded.
func CommitNonce(rec *EscrowRecord, nonce uint64) {
	rec.LastNonce = nonce
}
