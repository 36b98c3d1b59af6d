package verify

import (
	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/crypto"
	"github.com/iov-one/gasless/errors"
)

const (
	// SchemeEd25519 is the only supported signature scheme.
	SchemeEd25519 = "ed25519"

	// MaxMessageSize limits the size of a signed message.
	MaxMessageSize = 1024

	pathVerifyMsg = "verify/signature"
)

// VerifyMsg requests a signature verification.
type VerifyMsg struct {
	Scheme    string `protobuf:"bytes,1,opt,name=scheme,proto3"`
	Pubkey    []byte `protobuf:"bytes,2,opt,name=pubkey,proto3"`
	Signature []byte `protobuf:"bytes,3,opt,name=signature,proto3"`
	Message   []byte `protobuf:"bytes,4,opt,name=message,proto3"`
}

var _ gasless.Msg = (*VerifyMsg)(nil)

func (VerifyMsg) Path() string {
	return pathVerifyMsg
}

func (m *VerifyMsg) Validate() error {
	var errs error
	if m.Scheme != SchemeEd25519 {
		errs = errors.AppendField(errs, "Scheme", errors.Wrapf(errors.ErrInput, "unsupported scheme %q", m.Scheme))
	}
	if len(m.Pubkey) != crypto.PublicKeySize {
		errs = errors.AppendField(errs, "Pubkey", errors.ErrInput)
	}
	if len(m.Signature) != crypto.SignatureSize {
		errs = errors.AppendField(errs, "Signature", errors.ErrInput)
	}
	switch n := len(m.Message); {
	case n == 0:
		errs = errors.AppendField(errs, "Message", errors.ErrEmpty)
	case n > MaxMessageSize:
		errs = errors.AppendField(errs, "Message", errors.ErrInput)
	}
	return errs
}

// NewEd25519Msg signs message with the given key and returns the
// instruction that proves it.
func NewEd25519Msg(signer crypto.Signer, message []byte) (*VerifyMsg, error) {
	sig, err := signer.Sign(message)
	if err != nil {
		return nil, err
	}
	return &VerifyMsg{
		Scheme:    SchemeEd25519,
		Pubkey:    signer.PublicKey().Ed25519,
		Signature: sig,
		Message:   message,
	}, nil
}
