/*
Package relayer implements the HTTP service that submits owner signed
permits to the chain and pays their network fee.

A permit is posted as JSON to /relay. The relayer checks it locally,
claims it in its journal and then broadcasts a transaction made of the
signature proof followed by the relayed transfer, signed with the relayer
key. The fee of the permit is paid to the ledger account of the relayer.
*/
package relayer

import (
	"context"
	"sync"
	"time"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/client"
	gaslessd "github.com/iov-one/gasless/cmd/gaslessd/app"
	"github.com/iov-one/gasless/crypto"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/x/ledger"
	"github.com/iov-one/gasless/x/permit"
	"github.com/iov-one/gasless/x/sigs"
	"github.com/iov-one/gasless/x/verify"
	"go.uber.org/zap"
)

// Chain is the node access the relayer needs.
type Chain interface {
	GetEscrow(ctx context.Context, id gasless.Address) (*permit.EscrowRecord, error)
	ProtocolID(ctx context.Context) ([]byte, error)
	SignTx(ctx context.Context, tx sigs.SignedTx, signer crypto.Signer) (*sigs.StdSignature, error)
	BroadcastTxCommit(ctx context.Context, tx gasless.Tx) (*client.CommitResult, error)
}

var _ Chain = (*client.Client)(nil)

// Receipt describes a permit executed on chain.
type Receipt struct {
	TxHash client.TransactionID `json:"tx_hash"`
	Height int64                `json:"height"`
}

// Relayer submits permits to the chain.
type Relayer struct {
	chain   Chain
	signer  crypto.Signer
	journal Journal
	logger  *zap.SugaredLogger
	now     func() time.Time

	// submit serializes signing and broadcasting, every transaction of
	// the relayer must use the next sequence of its key.
	submit sync.Mutex

	protoMu  sync.Mutex
	protocol []byte
}

// NewRelayer returns a relayer signing with signer. now is the local clock
// used for deadline checks, time.Now when nil.
func NewRelayer(chain Chain, signer crypto.Signer, journal Journal, logger *zap.Logger, now func() time.Time) *Relayer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Relayer{
		chain:   chain,
		signer:  signer,
		journal: journal,
		logger:  logger.Sugar(),
		now:     now,
	}
}

// Address returns the address of the relayer key. Fees are paid to the
// ledger account of this address.
func (r *Relayer) Address() gasless.Address {
	return r.signer.PublicKey().Address()
}

func (r *Relayer) protocolID(ctx context.Context) ([]byte, error) {
	r.protoMu.Lock()
	defer r.protoMu.Unlock()
	if r.protocol != nil {
		return r.protocol, nil
	}
	id, err := r.chain.ProtocolID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "cannot load protocol id")
	}
	r.protocol = id
	return id, nil
}

// Relay submits p and waits until it is included in a block. A permit
// past its deadline is rejected without a transaction, as is a permit that
// was submitted before.
func (r *Relayer) Relay(ctx context.Context, p *Permit) (*Receipt, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := permit.CheckDeadline(p.Deadline, gasless.AsUnixTime(r.now())); err != nil {
		return nil, err
	}

	entry := p.Entry()
	if err := r.journal.Reserve(ctx, entry); err != nil {
		return nil, err
	}
	receipt, err := r.relay(ctx, p)
	if err != nil {
		if rerr := r.journal.Release(ctx, entry); rerr != nil {
			r.logger.Errorw("Cannot release journal entry", "entry", entry.Key(), "error", rerr)
		}
		return nil, err
	}
	return receipt, nil
}

func (r *Relayer) relay(ctx context.Context, p *Permit) (*Receipt, error) {
	rec, err := r.chain.GetEscrow(ctx, p.Escrow)
	if err != nil {
		return nil, errors.Wrap(err, "escrow")
	}
	protocol, err := r.protocolID(ctx)
	if err != nil {
		return nil, err
	}

	proof := &verify.VerifyMsg{
		Scheme:    verify.SchemeEd25519,
		Pubkey:    p.SignerKey,
		Signature: p.Signature,
		Message:   permit.CanonicalMessage(rec.Owner, protocol, p.Amount, p.Fee, p.Deadline, p.Nonce),
	}
	msg := &permit.RelayedTransferMsg{
		Escrow:         p.Escrow,
		Receiver:       ledger.AccountID(p.Receiver, rec.Ticker),
		RelayerAccount: ledger.AccountID(r.Address(), rec.Ticker),
		Amount:         p.Amount,
		Fee:            p.Fee,
		Deadline:       p.Deadline,
		SignerKey:      p.SignerKey,
		Nonce:          p.Nonce,
	}
	tx, err := gaslessd.RelayTx(proof, msg)
	if err != nil {
		return nil, err
	}

	r.submit.Lock()
	defer r.submit.Unlock()

	sig, err := r.chain.SignTx(ctx, tx, r.signer)
	if err != nil {
		return nil, errors.Wrap(err, "cannot sign transaction")
	}
	tx.Signatures = append(tx.Signatures, sig)

	res, err := r.chain.BroadcastTxCommit(ctx, tx)
	if err != nil {
		return nil, err
	}
	r.logger.Infow("Permit relayed",
		"escrow", p.Escrow,
		"nonce", p.Nonce,
		"amount", p.Amount,
		"fee", p.Fee,
		"tx", res.ID,
		"height", res.Height)
	return &Receipt{TxHash: res.ID, Height: res.Height}, nil
}

// Close releases the journal.
func (r *Relayer) Close() error {
	return r.journal.Close()
}
