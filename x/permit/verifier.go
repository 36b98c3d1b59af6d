package permit

import (
	"bytes"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/x/verify"
)

// ProofIndex is the instruction that must carry the signature proof.
const ProofIndex = 0

// ProofReader gives access to the signatures verified for the current
// transaction. verify.Reader implements it.
type ProofReader interface {
	ProofAt(ctx gasless.Context, index int) (*verify.Record, bool)
}

var _ ProofReader = verify.Reader{}

// AuthorizationRequest is the part of a relayed transfer covered by the
// owner signature, plus the key the relayer claims signed it.
type AuthorizationRequest struct {
	SignerKey []byte
	Amount    uint64
	Fee       uint64
	Deadline  int64
	Nonce     uint64
}

// Verifier matches a verification record against a request. It never
// checks signatures itself.
type Verifier struct {
	ProtocolID []byte
}

// Verify grants the request when proof is a verification at ProofIndex of
// the canonical message of req, made with the escrow owner key. ok is the
// second result of ProofReader.ProofAt.
func (v Verifier) Verify(proof *verify.Record, ok bool, req AuthorizationRequest, owner []byte) error {
	if !ok || proof == nil {
		return errors.Wrap(ErrProofMissingOrMisplaced, "no signature verified at the first instruction")
	}
	if proof.Index != ProofIndex {
		return errors.Wrapf(ErrProofMissingOrMisplaced, "proof at instruction %d", proof.Index)
	}
	if proof.Scheme != verify.SchemeEd25519 {
		return errors.Wrapf(ErrProofMissingOrMisplaced, "scheme %q", proof.Scheme)
	}
	if !bytes.Equal(proof.Pubkey, req.SignerKey) {
		return errors.Wrap(ErrSignaturePubkeyMismatch, "verified key is not the signer key")
	}
	if len(owner) != KeySize || len(v.ProtocolID) != KeySize {
		return errors.Wrap(errors.ErrState, "protocol id or owner key not set")
	}
	want := CanonicalMessage(owner, v.ProtocolID, req.Amount, req.Fee, req.Deadline, req.Nonce)
	if !bytes.Equal(proof.Message, want) {
		return errors.Wrap(ErrSignatureMessageMismatch, "verified message is not the permit")
	}
	if !bytes.Equal(proof.Pubkey, owner) {
		return errors.Wrap(ErrOwnerPubkeyMismatch, "permit not signed by the escrow owner")
	}
	return nil
}
