package permit

import (
	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/crypto"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/gconf"
	"github.com/iov-one/gasless/x"
	"github.com/iov-one/gasless/x/ledger"
)

const (
	initializeCost = 100
	relayCost      = 300
)

// RegisterRoutes registers the permit handlers. auth authenticates the
// transaction signers, the main signer being the relayer. ctrl must accept
// Authenticate for debits.
func RegisterRoutes(r gasless.Registry, auth x.Authenticator, ctrl ledger.Controller, proofs ProofReader) {
	r.Handle(pathInitializeEscrowMsg, NewInitializeHandler(auth, ctrl))
	r.Handle(pathRelayedTransferMsg, NewRelayHandler(auth, ctrl, proofs))
}

// RegisterQuery exposes escrow records as "/escrows" and the
// configuration as "/gconf/permit".
func RegisterQuery(qr gasless.QueryRegister) {
	NewEscrowBucket().Register("escrows", qr)
	gconf.RegisterQuery(qr, extensionName)
}

// InitializeHandler creates escrow records.
type InitializeHandler struct {
	auth   x.Authenticator
	ledger ledger.Controller
	bucket EscrowBucket
}

var _ gasless.Handler = InitializeHandler{}

func NewInitializeHandler(auth x.Authenticator, ctrl ledger.Controller) InitializeHandler {
	return InitializeHandler{
		auth:   auth,
		ledger: ctrl,
		bucket: NewEscrowBucket(),
	}
}

func (h InitializeHandler) Check(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx) (*gasless.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &gasless.CheckResult{GasAllocated: initializeCost}, nil
}

func (h InitializeHandler) Deliver(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx) (*gasless.DeliverResult, error) {
	rec, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.bucket.Create(db, rec); err != nil {
		return nil, err
	}
	gasless.GetLogger(ctx).Info("escrow initialized", "escrow", rec.ID(), "ticker", rec.Ticker)
	return &gasless.DeliverResult{Data: rec.ID()}, nil
}

func (h InitializeHandler) validate(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx) (*EscrowRecord, error) {
	var msg InitializeEscrowMsg
	if err := gasless.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, crypto.NewPublicKey(msg.Owner).Address()) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "owner signature required")
	}

	rec := NewEscrowRecord(msg.Owner, msg.Ticker, msg.Custodial)
	switch ok, err := h.bucket.Has(db, rec.ID()); {
	case err != nil:
		return nil, errors.Wrap(err, "cannot read escrow")
	case ok:
		return nil, errors.Wrapf(ErrBootstrap, "escrow %s already exists", rec.ID())
	}

	acc, err := h.ledger.Balance(db, msg.Custodial)
	switch {
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrap(ErrBootstrap, "custodial account does not exist")
	case err != nil:
		return nil, err
	}
	if acc.Ticker != msg.Ticker {
		return nil, errors.Wrapf(ErrBootstrap, "custodial account holds %s", acc.Ticker)
	}
	if !acc.Owner.Equals(rec.Authority.Condition().Address()) {
		return nil, errors.Wrap(ErrBootstrap, "custodial account is not controlled by the escrow authority")
	}
	return rec, nil
}

// RelayHandler executes relayed transfers.
type RelayHandler struct {
	auth     x.Authenticator
	ledger   ledger.Controller
	proofs   ProofReader
	bucket   EscrowBucket
	executor Executor
}

var _ gasless.Handler = RelayHandler{}

func NewRelayHandler(auth x.Authenticator, ctrl ledger.Controller, proofs ProofReader) RelayHandler {
	return RelayHandler{
		auth:     auth,
		ledger:   ctrl,
		proofs:   proofs,
		bucket:   NewEscrowBucket(),
		executor: NewExecutor(ctrl),
	}
}

// relay is a validated relayed transfer.
type relay struct {
	msg     RelayedTransferMsg
	record  *EscrowRecord
	relayer gasless.Address
	now     gasless.UnixTime
}

func (h RelayHandler) Check(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx) (*gasless.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &gasless.CheckResult{GasAllocated: relayCost}, nil
}

func (h RelayHandler) Deliver(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx) (*gasless.DeliverResult, error) {
	r, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	receiver, err := h.ledger.Balance(db, r.msg.Receiver)
	if err != nil {
		return nil, err
	}

	payment := Payment{
		Receiver:       r.msg.Receiver,
		RelayerAccount: r.msg.RelayerAccount,
		Amount:         r.msg.Amount,
		Fee:            r.msg.Fee,
		Nonce:          r.msg.Nonce,
	}
	if err := h.executor.Execute(ctx, db, r.record, payment); err != nil {
		return nil, err
	}

	gasless.GetLogger(ctx).Info("relayed transfer",
		"escrow", r.record.ID(), "nonce", r.msg.Nonce, "amount", r.msg.Amount, "fee", r.msg.Fee)
	event := &PaymentCompleted{
		Owner:     r.record.Owner,
		Receiver:  receiver.Owner,
		Ticker:    r.record.Ticker,
		Amount:    r.msg.Amount,
		Fee:       r.msg.Fee,
		Relayer:   r.relayer,
		Nonce:     r.msg.Nonce,
		Timestamp: int64(r.now),
	}
	return &gasless.DeliverResult{
		Data:   r.record.ID(),
		Events: []gasless.Event{event},
	}, nil
}

// validate runs every check of a relayed transfer without writing. The
// block time is read once and returned for the event.
func (h RelayHandler) validate(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx) (*relay, error) {
	var r relay
	if err := gasless.LoadMsg(tx, &r.msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "relayer signature required")
	}
	r.relayer = signer.Address()

	blockNow, err := gasless.BlockTime(ctx)
	if err != nil {
		return nil, err
	}
	r.now = gasless.AsUnixTime(blockNow)

	conf, err := loadConfiguration(db)
	if err != nil {
		return nil, err
	}
	if r.record, err = h.bucket.Get(db, r.msg.Escrow); err != nil {
		return nil, err
	}

	if err := CheckDeadline(r.msg.Deadline, r.now); err != nil {
		return nil, err
	}
	if err := CheckNonce(r.record, r.msg.Nonce); err != nil {
		return nil, err
	}

	proof, ok := h.proofs.ProofAt(ctx, ProofIndex)
	verifier := Verifier{ProtocolID: conf.ProtocolID}
	if err := verifier.Verify(proof, ok, r.msg.Request(), r.record.Owner); err != nil {
		return nil, err
	}
	if err := h.checkAccounts(db, r.record, &r.msg); err != nil {
		return nil, err
	}
	return &r, nil
}

// checkAccounts ensures the custodial account is the one controlled by the
// escrow authority and that the receiver and relayer accounts hold the
// escrowed asset. Nothing else is required of the receiver.
func (h RelayHandler) checkAccounts(db gasless.ReadOnlyKVStore, rec *EscrowRecord, msg *RelayedTransferMsg) error {
	custodial, err := h.account(db, rec.Custodial, "custodial")
	if err != nil {
		return err
	}
	if !custodial.Owner.Equals(rec.Authority.Condition().Address()) || custodial.Ticker != rec.Ticker {
		return errors.Wrap(errors.ErrAccountMismatch, "custodial account is not controlled by the escrow authority")
	}

	if err := h.checkAsset(db, msg.Receiver, "receiver", rec.Ticker); err != nil {
		return err
	}
	if msg.Fee > 0 {
		if err := h.checkAsset(db, msg.RelayerAccount, "relayer", rec.Ticker); err != nil {
			return err
		}
	}
	return nil
}

func (h RelayHandler) checkAsset(db gasless.ReadOnlyKVStore, id gasless.Address, name, ticker string) error {
	acc, err := h.account(db, id, name)
	if err != nil {
		return err
	}
	if acc.Ticker != ticker {
		return errors.Wrapf(errors.ErrAccountMismatch, "%s account holds %s, not %s", name, acc.Ticker, ticker)
	}
	return nil
}

func (h RelayHandler) account(db gasless.ReadOnlyKVStore, id gasless.Address, name string) (*ledger.Account, error) {
	acc, err := h.ledger.Balance(db, id)
	switch {
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrapf(errors.ErrAccountMismatch, "%s account %s does not exist", name, id)
	case err != nil:
		return nil, err
	}
	return acc, nil
}
