package relayer

import (
	"encoding/json"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/crypto"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/x/permit"
)

// Permit is an owner signed payment authorization as posted to the relayer.
// Receiver is the address of the receiving owner, the relayer pays into its
// ledger account for the escrow asset.
type Permit struct {
	Escrow    gasless.Address  `json:"escrow"`
	Receiver  gasless.Address  `json:"receiver"`
	Amount    uint64           `json:"amount"`
	Fee       uint64           `json:"fee"`
	Deadline  int64            `json:"deadline"`
	Nonce     uint64           `json:"nonce"`
	SignerKey gasless.HexBytes `json:"signer_key"`
	Signature gasless.HexBytes `json:"signature"`
}

// Entry returns the journal entry of the permit.
func (p *Permit) Entry() Entry {
	return Entry{Escrow: p.Escrow, Nonce: p.Nonce}
}

func (p *Permit) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "escrow", p.Escrow.Validate())
	errs = errors.AppendField(errs, "receiver", p.Receiver.Validate())
	if p.Nonce == 0 {
		errs = errors.AppendField(errs, "nonce", errors.Wrap(errors.ErrInput, "must be positive"))
	}
	if len(p.SignerKey) != permit.KeySize {
		errs = errors.AppendField(errs, "signer_key", errors.ErrInput)
	}
	if len(p.Signature) != crypto.SignatureSize {
		errs = errors.AppendField(errs, "signature", errors.ErrInput)
	}
	return errs
}

// requiredFields lists the permit fields in the order they are reported
// when missing.
var requiredFields = []string{
	"escrow", "receiver", "amount", "fee", "deadline", "nonce", "signer_key", "signature",
}

// decodePermit parses a request body. A body missing fields is rejected
// with the names of all of them.
func decodePermit(raw []byte) (*Permit, []string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, nil, errors.Wrapf(errors.ErrInput, "invalid json: %s", err)
	}
	var missing []string
	for _, name := range requiredFields {
		if v, ok := fields[name]; !ok || string(v) == "null" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, missing, errors.Wrap(errors.ErrEmpty, "missing fields")
	}

	var p Permit
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, nil, errors.Wrapf(errors.ErrInput, "invalid permit: %s", err)
	}
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	return &p, nil, nil
}

// SignPermit returns the permit owner signs to let a relayer pay amount to
// receiver out of escrow, and fee to itself.
func SignPermit(owner crypto.Signer, protocolID []byte, escrow, receiver gasless.Address,
	amount, fee uint64, deadline int64, nonce uint64) (*Permit, error) {

	pub := owner.PublicKey().Ed25519
	sig, err := owner.Sign(permit.CanonicalMessage(pub, protocolID, amount, fee, deadline, nonce))
	if err != nil {
		return nil, errors.Wrap(err, "cannot sign permit")
	}
	p := &Permit{
		Escrow:    escrow,
		Receiver:  receiver,
		Amount:    amount,
		Fee:       fee,
		Deadline:  deadline,
		Nonce:     nonce,
		SignerKey: pub,
		Signature: sig,
	}
	return p, p.Validate()
}
