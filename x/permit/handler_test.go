package permit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/crypto"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/gaslesstest"
	"github.com/iov-one/gasless/gaslesstest/assert"
	"github.com/iov-one/gasless/gconf"
	"github.com/iov-one/gasless/store"
	"github.com/iov-one/gasless/x"
	"github.com/iov-one/gasless/x/batch"
	"github.com/iov-one/gasless/x/ledger"
	"github.com/iov-one/gasless/x/verify"
	"github.com/stretchr/testify/require"
)

const ticker = "IOV"

type proofsKey struct{}

// ctxProofs reads the verification records a test placed in the context.
type ctxProofs struct{}

func (ctxProofs) ProofAt(ctx gasless.Context, index int) (*verify.Record, bool) {
	records, _ := ctx.Value(proofsKey{}).([]verify.Record)
	for _, r := range records {
		if r.Index == index {
			r := r
			return &r, true
		}
	}
	return nil, false
}

type fixture struct {
	db             gasless.CacheableKVStore
	auth           *gaslesstest.CtxAuth
	ledger         ledger.BaseController
	handler        RelayHandler
	owner          *crypto.PrivateKey
	protocol       []byte
	record         *EscrowRecord
	receiverOwner  gasless.Address
	receiver       gasless.Address
	relayer        gasless.Condition
	relayerAccount gasless.Address
	now            time.Time
}

// newFixture returns an escrow holding funds, a receiver and a relayer
// account, all empty but the custodial one.
func newFixture(t *testing.T, funds uint64) *fixture {
	t.Helper()

	f := &fixture{
		db:            store.MemStore(),
		auth:          &gaslesstest.CtxAuth{Key: "signers"},
		owner:         gaslesstest.NewKey(),
		protocol:      bytes.Repeat([]byte{0x42}, KeySize),
		receiverOwner: gaslesstest.NewCondition().Address(),
		relayer:       gaslesstest.NewCondition(),
		now:           time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.ledger = ledger.NewController(x.ChainAuth(f.auth, Authenticate{}))
	require.NoError(t, gconf.Save(f.db, extensionName, &Configuration{ProtocolID: f.protocol}))

	owner := f.owner.PublicKey().Ed25519
	authority := EscrowAuthority(owner, ticker).Address()
	require.NoError(t, f.ledger.Mint(f.db, authority, ticker, funds))
	f.record = NewEscrowRecord(owner, ticker, ledger.AccountID(authority, ticker))
	require.NoError(t, NewEscrowBucket().Create(f.db, f.record))

	acc, err := f.ledger.CreateAccount(f.db, f.receiverOwner, ticker)
	require.NoError(t, err)
	f.receiver = acc.ID()
	acc, err = f.ledger.CreateAccount(f.db, f.relayer.Address(), ticker)
	require.NoError(t, err)
	f.relayerAccount = acc.ID()

	f.handler = NewRelayHandler(f.auth, f.ledger, ctxProofs{})
	return f
}

func (f *fixture) deadline(d time.Duration) int64 {
	return f.now.Add(d).Unix()
}

// permit returns a relayed transfer claiming key as the signer, and the
// record of key having signed the matching permit.
func (f *fixture) permit(key *crypto.PrivateKey, amount, fee uint64, deadline int64, nonce uint64) (*RelayedTransferMsg, verify.Record) {
	msg := &RelayedTransferMsg{
		Escrow:         f.record.ID(),
		Receiver:       f.receiver,
		RelayerAccount: f.relayerAccount,
		Amount:         amount,
		Fee:            fee,
		Deadline:       deadline,
		SignerKey:      key.PublicKey().Ed25519,
		Nonce:          nonce,
	}
	proof := verify.Record{
		Index:   0,
		Scheme:  verify.SchemeEd25519,
		Pubkey:  key.PublicKey().Ed25519,
		Message: CanonicalMessage(f.record.Owner, f.protocol, amount, fee, deadline, nonce),
	}
	return msg, proof
}

func (f *fixture) ctx(proofs ...verify.Record) gasless.Context {
	ctx := gaslesstest.Context(5, f.now)
	ctx = context.WithValue(ctx, proofsKey{}, proofs)
	return f.auth.SetConditions(ctx, f.relayer)
}

func (f *fixture) deliver(msg gasless.Msg, proofs ...verify.Record) (*gasless.DeliverResult, error) {
	return f.handler.Deliver(f.ctx(proofs...), f.db, &gaslesstest.Tx{Msg: msg})
}

type balances struct {
	Custodial, Receiver, Relayer uint64
}

func (f *fixture) balances(t *testing.T) balances {
	t.Helper()
	get := func(id gasless.Address) uint64 {
		acc, err := f.ledger.Balance(f.db, id)
		require.NoError(t, err)
		return acc.Amount
	}
	return balances{
		Custodial: get(f.record.Custodial),
		Receiver:  get(f.receiver),
		Relayer:   get(f.relayerAccount),
	}
}

func (f *fixture) lastNonce(t *testing.T) uint64 {
	t.Helper()
	rec, err := NewEscrowBucket().Get(f.db, f.record.ID())
	require.NoError(t, err)
	return rec.LastNonce
}

func TestRelayScenarios(t *testing.T) {
	f := newFixture(t, 150)

	// A: a valid permit moves the amount and the fee.
	msg, proof := f.permit(f.owner, 100, 1, f.deadline(time.Minute), 1)
	res, err := f.deliver(msg, proof)
	require.NoError(t, err)
	assert.Equal(t, balances{Custodial: 49, Receiver: 100, Relayer: 1}, f.balances(t))
	assert.Equal(t, uint64(1), f.lastNonce(t))

	require.Len(t, res.Events, 1)
	assert.Equal(t, &PaymentCompleted{
		Owner:     f.owner.PublicKey().Ed25519,
		Receiver:  f.receiverOwner,
		Ticker:    ticker,
		Amount:    100,
		Fee:       1,
		Relayer:   f.relayer.Address(),
		Nonce:     1,
		Timestamp: f.now.Unix(),
	}, res.Events[0])
	assert.Equal(t, []byte(f.record.ID()), res.Data)

	// B: the same permit cannot be used twice.
	_, err = f.deliver(msg, proof)
	assert.IsErr(t, ErrInvalidOrReplayedNonce, err)
	assert.Equal(t, balances{Custodial: 49, Receiver: 100, Relayer: 1}, f.balances(t))

	// C: an expired permit is rejected.
	msg, proof = f.permit(f.owner, 10, 1, f.deadline(-time.Second), 2)
	_, err = f.deliver(msg, proof)
	assert.IsErr(t, ErrDeadlineExpired, err)
	assert.Equal(t, uint64(1), f.lastNonce(t))

	// D: not enough funds for amount and fee, the nonce stays usable.
	msg, proof = f.permit(f.owner, 49, 1, f.deadline(time.Minute), 2)
	_, err = f.deliver(msg, proof)
	assert.IsErr(t, errors.ErrInsufficientFunds, err)
	assert.Equal(t, uint64(1), f.lastNonce(t))
	assert.Equal(t, balances{Custodial: 49, Receiver: 100, Relayer: 1}, f.balances(t))

	// After a top up the very same permit goes through.
	require.NoError(t, f.ledger.Mint(f.db, EscrowAuthority(f.record.Owner, ticker).Address(), ticker, 1))
	_, err = f.deliver(msg, proof)
	require.NoError(t, err)
	assert.Equal(t, balances{Custodial: 0, Receiver: 149, Relayer: 2}, f.balances(t))
	assert.Equal(t, uint64(2), f.lastNonce(t))
}

func TestRelayNonceIsMonotonic(t *testing.T) {
	f := newFixture(t, 100)

	for _, nonce := range []uint64{3, 4, 10} {
		msg, proof := f.permit(f.owner, 1, 0, f.deadline(time.Minute), nonce)
		_, err := f.deliver(msg, proof)
		require.NoError(t, err)
		assert.Equal(t, nonce, f.lastNonce(t))
	}
	for _, nonce := range []uint64{1, 9, 10} {
		msg, proof := f.permit(f.owner, 1, 0, f.deadline(time.Minute), nonce)
		_, err := f.deliver(msg, proof)
		assert.IsErr(t, ErrInvalidOrReplayedNonce, err)
	}
	assert.Equal(t, uint64(10), f.lastNonce(t))
	assert.Equal(t, uint64(97), f.balances(t).Custodial)
}

func TestRelayDeadlineIsInclusive(t *testing.T) {
	f := newFixture(t, 100)
	msg, proof := f.permit(f.owner, 1, 0, f.deadline(0), 1)
	_, err := f.deliver(msg, proof)
	require.NoError(t, err)
}

func TestRelayExpiredEvenWhenSignatureIsWrong(t *testing.T) {
	f := newFixture(t, 100)
	msg, _ := f.permit(f.owner, 1, 0, f.deadline(-time.Hour), 1)
	_, err := f.deliver(msg)
	assert.IsErr(t, ErrDeadlineExpired, err)

	// An expired permit reports the deadline even when its nonce could
	// never be accepted.
	msg, _ = f.permit(f.owner, 1, 0, f.deadline(-time.Hour), 0)
	_, err = f.deliver(msg)
	assert.IsErr(t, ErrDeadlineExpired, err)

	msg, proof := f.permit(f.owner, 1, 0, f.deadline(time.Minute), 0)
	_, err = f.deliver(msg, proof)
	assert.IsErr(t, ErrInvalidOrReplayedNonce, err)
	assert.Equal(t, uint64(0), f.lastNonce(t))
}

func TestRelayRejectsTamperedPermit(t *testing.T) {
	cases := map[string]func(f *fixture, msg *RelayedTransferMsg, proof *verify.Record){
		"amount": func(f *fixture, msg *RelayedTransferMsg, proof *verify.Record) {
			msg.Amount++
		},
		"fee": func(f *fixture, msg *RelayedTransferMsg, proof *verify.Record) {
			msg.Fee++
		},
		"deadline": func(f *fixture, msg *RelayedTransferMsg, proof *verify.Record) {
			msg.Deadline++
		},
		"nonce": func(f *fixture, msg *RelayedTransferMsg, proof *verify.Record) {
			msg.Nonce++
		},
		"owner": func(f *fixture, msg *RelayedTransferMsg, proof *verify.Record) {
			other := gaslesstest.NewKey().PublicKey().Ed25519
			proof.Message = CanonicalMessage(other, f.protocol, msg.Amount, msg.Fee, msg.Deadline, msg.Nonce)
		},
		"protocol": func(f *fixture, msg *RelayedTransferMsg, proof *verify.Record) {
			proof.Message = CanonicalMessage(f.record.Owner, bytes.Repeat([]byte{1}, KeySize), msg.Amount, msg.Fee, msg.Deadline, msg.Nonce)
		},
	}
	for name, tamper := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, 100)
			msg, proof := f.permit(f.owner, 10, 1, f.deadline(time.Minute), 1)
			tamper(f, msg, &proof)

			_, err := f.deliver(msg, proof)
			assert.IsErr(t, ErrSignatureMessageMismatch, err)
			assert.Equal(t, balances{Custodial: 100}, f.balances(t))
			assert.Equal(t, uint64(0), f.lastNonce(t))
		})
	}
}

func TestRelayRejectsKeySubstitution(t *testing.T) {
	f := newFixture(t, 100)

	// A valid signature of the exact permit made by someone else.
	stranger := gaslesstest.NewKey()
	msg, proof := f.permit(stranger, 10, 1, f.deadline(time.Minute), 1)
	_, err := f.deliver(msg, proof)
	assert.IsErr(t, ErrOwnerPubkeyMismatch, err)

	// The owner signed, but the request claims another signer.
	msg, proof = f.permit(f.owner, 10, 1, f.deadline(time.Minute), 1)
	msg.SignerKey = stranger.PublicKey().Ed25519
	_, err = f.deliver(msg, proof)
	assert.IsErr(t, ErrSignaturePubkeyMismatch, err)

	assert.Equal(t, balances{Custodial: 100}, f.balances(t))
}

func TestRelayRequiresProofAtFirstInstruction(t *testing.T) {
	f := newFixture(t, 100)
	msg, proof := f.permit(f.owner, 10, 1, f.deadline(time.Minute), 1)

	_, err := f.deliver(msg)
	assert.IsErr(t, ErrProofMissingOrMisplaced, err)

	proof.Index = 1
	_, err = f.deliver(msg, proof)
	assert.IsErr(t, ErrProofMissingOrMisplaced, err)

	proof.Index = 0
	proof.Scheme = "secp256k1"
	_, err = f.deliver(msg, proof)
	assert.IsErr(t, ErrProofMissingOrMisplaced, err)

	assert.Equal(t, uint64(0), f.lastNonce(t))
}

func TestRelayAccountChecks(t *testing.T) {
	cases := map[string]struct {
		prepare func(t *testing.T, f *fixture, msg *RelayedTransferMsg)
		wantErr *errors.Error
	}{
		"receiver of another asset": {
			prepare: func(t *testing.T, f *fixture, msg *RelayedTransferMsg) {
				acc, err := f.ledger.CreateAccount(f.db, f.receiverOwner, "ETH")
				require.NoError(t, err)
				msg.Receiver = acc.ID()
			},
			wantErr: errors.ErrAccountMismatch,
		},
		"receiver does not exist": {
			prepare: func(t *testing.T, f *fixture, msg *RelayedTransferMsg) {
				msg.Receiver = ledger.AccountID(gaslesstest.NewCondition().Address(), ticker)
			},
			wantErr: errors.ErrAccountMismatch,
		},
		"relayer account of another asset": {
			prepare: func(t *testing.T, f *fixture, msg *RelayedTransferMsg) {
				acc, err := f.ledger.CreateAccount(f.db, f.relayer.Address(), "ETH")
				require.NoError(t, err)
				msg.RelayerAccount = acc.ID()
			},
			wantErr: errors.ErrAccountMismatch,
		},
		"any receiver of the asset is accepted": {
			prepare: func(t *testing.T, f *fixture, msg *RelayedTransferMsg) {
				// The relayer pays itself the amount too.
				msg.Receiver = f.relayerAccount
			},
		},
		"no relayer signature": {
			prepare: func(t *testing.T, f *fixture, msg *RelayedTransferMsg) {
				f.relayer = nil
			},
			wantErr: errors.ErrUnauthorized,
		},
		"unknown escrow": {
			prepare: func(t *testing.T, f *fixture, msg *RelayedTransferMsg) {
				msg.Escrow = EscrowID(f.record.Owner, "ETH")
			},
			wantErr: errors.ErrNotFound,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, 100)
			msg, proof := f.permit(f.owner, 10, 1, f.deadline(time.Minute), 1)
			tc.prepare(t, f, msg)

			ctx := gaslesstest.Context(5, f.now)
			ctx = context.WithValue(ctx, proofsKey{}, []verify.Record{proof})
			if f.relayer != nil {
				ctx = f.auth.SetConditions(ctx, f.relayer)
			}
			tx := &gaslesstest.Tx{Msg: msg}

			_, err := f.handler.Check(ctx, f.db, tx)
			assert.IsErr(t, tc.wantErr, err)
			_, err = f.handler.Deliver(ctx, f.db, tx)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr != nil {
				assert.Equal(t, uint64(0), f.lastNonce(t))
			} else {
				assert.Equal(t, uint64(1), f.lastNonce(t))
			}
		})
	}
}

func TestRelayZeroFeeNeedsNoRelayerAccount(t *testing.T) {
	f := newFixture(t, 100)
	msg, proof := f.permit(f.owner, 0, 0, f.deadline(time.Minute), 1)
	msg.RelayerAccount = nil

	_, err := f.deliver(msg, proof)
	require.NoError(t, err)
	assert.Equal(t, balances{Custodial: 100}, f.balances(t))
	assert.Equal(t, uint64(1), f.lastNonce(t))
}

func TestRelayCheckDoesNotWrite(t *testing.T) {
	f := newFixture(t, 100)
	msg, proof := f.permit(f.owner, 10, 1, f.deadline(time.Minute), 1)

	res, err := f.handler.Check(f.ctx(proof), f.db, &gaslesstest.Tx{Msg: msg})
	require.NoError(t, err)
	assert.Equal(t, int64(relayCost), res.GasAllocated)
	assert.Equal(t, balances{Custodial: 100}, f.balances(t))
	assert.Equal(t, uint64(0), f.lastNonce(t))
}

func TestRelayRequiresConfiguration(t *testing.T) {
	f := newFixture(t, 100)
	require.NoError(t, f.db.Delete([]byte("_c:permit")))

	msg, proof := f.permit(f.owner, 10, 1, f.deadline(time.Minute), 1)
	_, err := f.deliver(msg, proof)
	assert.IsErr(t, errors.ErrState, err)
}

func TestExecutorIsAllOrNothing(t *testing.T) {
	f := newFixture(t, 100)

	// The second transfer fails after the first one was applied.
	eth, err := f.ledger.CreateAccount(f.db, f.relayer.Address(), "ETH")
	require.NoError(t, err)
	rec := *f.record
	err = NewExecutor(f.ledger).Execute(f.ctx(), f.db, &rec, Payment{
		Receiver:       f.receiver,
		RelayerAccount: eth.ID(),
		Amount:         60,
		Fee:            1,
		Nonce:          7,
	})
	assert.IsErr(t, errors.ErrAccountMismatch, err)
	assert.Equal(t, balances{Custodial: 100}, f.balances(t))
	assert.Equal(t, uint64(0), f.lastNonce(t))
	assert.Equal(t, uint64(0), rec.LastNonce)

	err = NewExecutor(f.ledger).Execute(f.ctx(), f.db, &rec, Payment{
		Receiver:       f.receiver,
		RelayerAccount: f.relayerAccount,
		Amount:         60,
		Fee:            41,
		Nonce:          7,
	})
	assert.IsErr(t, errors.ErrInsufficientFunds, err)
	assert.Equal(t, balances{Custodial: 100}, f.balances(t))

	err = NewExecutor(f.ledger).Execute(f.ctx(), f.db, &rec, Payment{
		Receiver:       f.receiver,
		RelayerAccount: f.relayerAccount,
		Amount:         60,
		Fee:            40,
		Nonce:          7,
	})
	require.NoError(t, err)
	assert.Equal(t, balances{Custodial: 0, Receiver: 60, Relayer: 40}, f.balances(t))
	assert.Equal(t, uint64(7), f.lastNonce(t))
	assert.Equal(t, uint64(7), rec.LastNonce)
}

type plainStore struct {
	gasless.KVStore
}

func TestExecutorNeedsCacheableStore(t *testing.T) {
	f := newFixture(t, 100)
	rec := *f.record
	err := NewExecutor(f.ledger).Execute(f.ctx(), plainStore{f.db}, &rec, Payment{Receiver: f.receiver, Amount: 1, Nonce: 1})
	assert.IsErr(t, errors.ErrHuman, err)
}

func TestEscrowAuthorityIsOnlyGrantedByTheExecutor(t *testing.T) {
	f := newFixture(t, 100)

	// Not even the owner can move custodial funds directly.
	ownerCond := f.owner.PublicKey().Condition()
	ctx := f.auth.SetConditions(gaslesstest.Context(5, f.now), ownerCond, f.relayer)
	err := f.ledger.Transfer(ctx, f.db, f.record.Custodial, f.receiver, 1)
	assert.IsErr(t, errors.ErrUnauthorized, err)

	assert.Nil(t, Authenticate{}.GetConditions(ctx))
	granted := withEscrowAuthority(ctx, f.record.Authority.Condition())
	assert.Equal(t, []gasless.Condition{EscrowAuthority(f.record.Owner, ticker)}, Authenticate{}.GetConditions(granted))
	require.True(t, Authenticate{}.HasAddress(granted, EscrowAuthority(f.record.Owner, ticker).Address()))
}

func TestInitializeEscrow(t *testing.T) {
	owner := gaslesstest.NewKey()
	ownerKey := owner.PublicKey().Ed25519
	authority := EscrowAuthority(ownerKey, ticker).Address()

	cases := map[string]struct {
		// custodial returns the account passed in the message.
		custodial func(t *testing.T, ctrl ledger.BaseController, db gasless.KVStore) gasless.Address
		signer    gasless.Condition
		exists    bool
		wantErr   *errors.Error
	}{
		"created": {
			custodial: func(t *testing.T, ctrl ledger.BaseController, db gasless.KVStore) gasless.Address {
				acc, err := ctrl.CreateAccount(db, authority, ticker)
				require.NoError(t, err)
				return acc.ID()
			},
			signer: owner.PublicKey().Condition(),
		},
		"not signed by the owner": {
			custodial: func(t *testing.T, ctrl ledger.BaseController, db gasless.KVStore) gasless.Address {
				acc, err := ctrl.CreateAccount(db, authority, ticker)
				require.NoError(t, err)
				return acc.ID()
			},
			signer:  gaslesstest.NewCondition(),
			wantErr: errors.ErrUnauthorized,
		},
		"already exists": {
			custodial: func(t *testing.T, ctrl ledger.BaseController, db gasless.KVStore) gasless.Address {
				acc, err := ctrl.CreateAccount(db, authority, ticker)
				require.NoError(t, err)
				return acc.ID()
			},
			signer:  owner.PublicKey().Condition(),
			exists:  true,
			wantErr: ErrBootstrap,
		},
		"custodial account does not exist": {
			custodial: func(t *testing.T, ctrl ledger.BaseController, db gasless.KVStore) gasless.Address {
				return ledger.AccountID(authority, ticker)
			},
			signer:  owner.PublicKey().Condition(),
			wantErr: ErrBootstrap,
		},
		"custodial account of another asset": {
			custodial: func(t *testing.T, ctrl ledger.BaseController, db gasless.KVStore) gasless.Address {
				acc, err := ctrl.CreateAccount(db, authority, "ETH")
				require.NoError(t, err)
				return acc.ID()
			},
			signer:  owner.PublicKey().Condition(),
			wantErr: ErrBootstrap,
		},
		"custodial account controlled by the owner": {
			custodial: func(t *testing.T, ctrl ledger.BaseController, db gasless.KVStore) gasless.Address {
				acc, err := ctrl.CreateAccount(db, owner.PublicKey().Address(), ticker)
				require.NoError(t, err)
				return acc.ID()
			},
			signer:  owner.PublicKey().Condition(),
			wantErr: ErrBootstrap,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			db := store.MemStore()
			auth := &gaslesstest.Auth{Signer: tc.signer}
			ctrl := ledger.NewController(auth)
			custodial := tc.custodial(t, ctrl, db)
			if tc.exists {
				require.NoError(t, NewEscrowBucket().Create(db, NewEscrowRecord(ownerKey, ticker, custodial)))
			}

			h := NewInitializeHandler(auth, ctrl)
			tx := &gaslesstest.Tx{Msg: &InitializeEscrowMsg{Owner: ownerKey, Ticker: ticker, Custodial: custodial}}
			ctx := gaslesstest.Context(1, time.Now())

			_, err := h.Check(ctx, db, tx)
			assert.IsErr(t, tc.wantErr, err)
			res, err := h.Deliver(ctx, db, tx)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr != nil {
				return
			}

			assert.Equal(t, []byte(EscrowID(ownerKey, ticker)), res.Data)
			rec, err := NewEscrowBucket().Get(db, EscrowID(ownerKey, ticker))
			require.NoError(t, err)
			assert.Equal(t, NewEscrowRecord(ownerKey, ticker, custodial), rec)

			_, err = h.Deliver(ctx, db, tx)
			assert.IsErr(t, ErrBootstrap, err)
		})
	}
}

func TestInitializer(t *testing.T) {
	var opts gasless.Options
	require.NoError(t, json.Unmarshal([]byte(`{"gconf": {"permit": {"protocol_id": "`+
		"0101010101010101010101010101010101010101010101010101010101010101"+`"}}}`), &opts))
	db := store.MemStore()
	require.NoError(t, Initializer{}.FromGenesis(opts, db))

	conf, err := loadConfiguration(db)
	require.NoError(t, err)
	assert.Equal(t, gasless.HexBytes(bytes.Repeat([]byte{1}, KeySize)), conf.ProtocolID)

	require.NoError(t, json.Unmarshal([]byte(`{"gconf": {"permit": {"protocol_id": "0101"}}}`), &opts))
	err = Initializer{}.FromGenesis(opts, store.MemStore())
	assert.IsErr(t, errors.ErrInput, err)

	err = Initializer{}.FromGenesis(gasless.Options{}, store.MemStore())
	assert.IsErr(t, errors.ErrNotFound, err)
}

// router dispatches messages by path.
type router map[string]gasless.Handler

func (r router) Handle(path string, h gasless.Handler) { r[path] = h }

func (r router) handler(tx gasless.Tx) (gasless.Handler, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	h, ok := r[msg.Path()]
	if !ok {
		return nil, errors.Wrap(errors.ErrNotFound, msg.Path())
	}
	return h, nil
}

func (r router) Check(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx) (*gasless.CheckResult, error) {
	h, err := r.handler(tx)
	if err != nil {
		return nil, err
	}
	return h.Check(ctx, db, tx)
}

func (r router) Deliver(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx) (*gasless.DeliverResult, error) {
	h, err := r.handler(tx)
	if err != nil {
		return nil, err
	}
	return h.Deliver(ctx, db, tx)
}

// instructions is a batch of messages.
type instructions []gasless.Msg

var _ batch.Msg = instructions(nil)

func (instructions) Path() string                      { return "test/batch" }
func (instructions) Validate() error                   { return nil }
func (instructions) Marshal() ([]byte, error)          { return nil, nil }
func (instructions) Unmarshal([]byte) error            { return nil }
func (i instructions) MsgList() ([]gasless.Msg, error) { return i, nil }

func TestRelayWithVerifiedSignature(t *testing.T) {
	f := newFixture(t, 100)

	r := router{}
	RegisterRoutes(r, f.auth, f.ledger, verify.Reader{})
	verify.RegisterRoutes(r)
	h := gaslesstest.Decorate(gaslesstest.Decorate(r, batch.NewDecorator()), verify.NewDecorator())

	msg, _ := f.permit(f.owner, 30, 2, f.deadline(time.Minute), 1)
	proof, err := verify.NewEd25519Msg(f.owner, CanonicalMessage(f.record.Owner, f.protocol, 30, 2, msg.Deadline, 1))
	require.NoError(t, err)

	ctx := f.auth.SetConditions(gaslesstest.Context(5, f.now), f.relayer)

	// The proof must come first.
	_, err = h.Deliver(ctx, f.db, &gaslesstest.Tx{Msg: instructions{msg, proof}})
	assert.IsErr(t, ErrProofMissingOrMisplaced, err)

	res, err := h.Deliver(ctx, f.db, &gaslesstest.Tx{Msg: instructions{proof, msg}})
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	assert.Equal(t, balances{Custodial: 68, Receiver: 30, Relayer: 2}, f.balances(t))

	_, err = h.Deliver(ctx, f.db, &gaslesstest.Tx{Msg: instructions{proof, msg}})
	assert.IsErr(t, ErrInvalidOrReplayedNonce, err)

	// A forged signature never reaches the handler.
	forged := *proof
	forged.Signature = make([]byte, crypto.SignatureSize)
	msg.Nonce = 2
	_, err = h.Deliver(ctx, f.db, &gaslesstest.Tx{Msg: instructions{&forged, msg}})
	assert.IsErr(t, errors.ErrUnauthorized, err)
	assert.Equal(t, uint64(1), f.lastNonce(t))
}
