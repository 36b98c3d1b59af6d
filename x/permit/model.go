package permit

import (
	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/orm"
	"github.com/iov-one/gasless/x/ledger"
)

const (
	// BucketName is where escrow records are stored.
	BucketName = "escrows"

	extensionName = "permit"
	authorityType = "escrow"
	stateType     = "state"
)

func escrowSeed(owner []byte, ticker string) []byte {
	return append(append([]byte{}, owner...), ticker...)
}

// EscrowID returns the key of the escrow record of owner for the given
// asset.
func EscrowID(owner []byte, ticker string) gasless.Address {
	return gasless.NewCondition(extensionName, stateType, escrowSeed(owner, ticker)).Address()
}

// EscrowAuthority returns the derived authority allowed to debit the
// custodial account of owner for the given asset.
func EscrowAuthority(owner []byte, ticker string) gasless.Condition {
	return NewAuthorityDescriptor(owner, ticker).Condition()
}

// CustodialAccountID returns the ledger account an escrow of owner for the
// given asset must use.
func CustodialAccountID(owner []byte, ticker string) gasless.Address {
	return ledger.AccountID(EscrowAuthority(owner, ticker).Address(), ticker)
}

// AuthorityDescriptor holds the derivation parameters of the condition that
// controls a custodial account.
type AuthorityDescriptor struct {
	Extension string `protobuf:"bytes,1,opt,name=extension,proto3"`
	Type      string `protobuf:"bytes,2,opt,name=type,proto3"`
	Data      []byte `protobuf:"bytes,3,opt,name=data,proto3"`
}

// NewAuthorityDescriptor returns the descriptor of the escrow authority of
// owner for the given asset.
func NewAuthorityDescriptor(owner []byte, ticker string) AuthorityDescriptor {
	return AuthorityDescriptor{
		Extension: extensionName,
		Type:      authorityType,
		Data:      escrowSeed(owner, ticker),
	}
}

// Condition returns the derived condition.
func (a AuthorityDescriptor) Condition() gasless.Condition {
	return gasless.NewCondition(a.Extension, a.Type, a.Data)
}

// EscrowRecord is the state of one escrow. There is exactly one record per
// owner and asset. Records are never deleted.
type EscrowRecord struct {
	// Owner is the ed25519 public key that signs permits.
	Owner     []byte              `protobuf:"bytes,1,opt,name=owner,proto3"`
	Ticker    string              `protobuf:"bytes,2,opt,name=ticker,proto3"`
	Custodial gasless.Address     `protobuf:"bytes,3,opt,name=custodial,proto3"`
	Authority AuthorityDescriptor `protobuf:"bytes,4,opt,name=authority,proto3"`
	LastNonce uint64              `protobuf:"varint,5,opt,name=last_nonce,json=lastNonce,proto3"`
}

var _ orm.Model = (*EscrowRecord)(nil)

// NewEscrowRecord returns a record with the derived authority of owner and
// ticker and no accepted nonce.
func NewEscrowRecord(owner []byte, ticker string, custodial gasless.Address) *EscrowRecord {
	return &EscrowRecord{
		Owner:     owner,
		Ticker:    ticker,
		Custodial: custodial,
		Authority: NewAuthorityDescriptor(owner, ticker),
	}
}

// ID returns the key this record is stored under.
func (r *EscrowRecord) ID() gasless.Address {
	return EscrowID(r.Owner, r.Ticker)
}

func (r *EscrowRecord) Validate() error {
	var errs error
	if len(r.Owner) != KeySize {
		errs = errors.AppendField(errs, "Owner", errors.ErrInput)
	}
	if !ledger.IsTicker(r.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.ErrInput)
	}
	errs = errors.AppendField(errs, "Custodial", r.Custodial.Validate())
	if !r.Authority.Condition().Equals(EscrowAuthority(r.Owner, r.Ticker)) {
		errs = errors.AppendField(errs, "Authority", errors.Wrap(errors.ErrState, "not derived from owner and ticker"))
	}
	return errs
}

// EscrowBucket stores escrow records by EscrowID.
type EscrowBucket struct {
	orm.Bucket
}

// NewEscrowBucket returns the escrows bucket.
func NewEscrowBucket() EscrowBucket {
	return EscrowBucket{
		Bucket: orm.NewBucket(BucketName),
	}
}

// Get loads the record stored under id.
func (b EscrowBucket) Get(db gasless.ReadOnlyKVStore, id gasless.Address) (*EscrowRecord, error) {
	var rec EscrowRecord
	if err := b.One(db, id, &rec); err != nil {
		return nil, errors.Wrapf(err, "escrow %s", id)
	}
	return &rec, nil
}

// Create stores a new record. It fails with ErrBootstrap if a record
// already exists for the same owner and asset.
func (b EscrowBucket) Create(db gasless.KVStore, rec *EscrowRecord) error {
	switch ok, err := b.Has(db, rec.ID()); {
	case err != nil:
		return errors.Wrap(err, "cannot read escrow")
	case ok:
		return errors.Wrapf(ErrBootstrap, "escrow %s already exists", rec.ID())
	}
	return b.Save(db, rec)
}

// Save stores the record under its ID.
func (b EscrowBucket) Save(db gasless.KVStore, rec *EscrowRecord) error {
	return b.Put(db, rec.ID(), rec)
}
