package ledger

import (
	"regexp"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/orm"
)

// BucketName is where accounts are stored.
const BucketName = "accounts"

// IsTicker checks the asset symbol format.
var IsTicker = regexp.MustCompile(`^[A-Z]{3,4}$`).MatchString

// Account holds the balance of one asset for one owner.
type Account struct {
	Owner  gasless.Address `protobuf:"bytes,1,opt,name=owner,proto3"`
	Ticker string          `protobuf:"bytes,2,opt,name=ticker,proto3"`
	Amount uint64          `protobuf:"varint,3,opt,name=amount,proto3"`
}

var _ orm.Model = (*Account)(nil)

// AccountID returns the key of the account of owner for the given asset.
func AccountID(owner gasless.Address, ticker string) gasless.Address {
	data := append(append([]byte{}, owner...), ticker...)
	return gasless.NewCondition("ledger", "account", data).Address()
}

// ID returns the key this account is stored under.
func (a *Account) ID() gasless.Address {
	return AccountID(a.Owner, a.Ticker)
}

func (a *Account) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", a.Owner.Validate())
	if !IsTicker(a.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.Wrapf(errors.ErrInput, "invalid ticker %q", a.Ticker))
	}
	return errs
}

// Bucket stores accounts by AccountID.
type Bucket struct {
	orm.Bucket
}

// NewBucket returns the accounts bucket.
func NewBucket() Bucket {
	return Bucket{
		Bucket: orm.NewBucket(BucketName),
	}
}

// Get loads the account stored under id.
func (b Bucket) Get(db gasless.ReadOnlyKVStore, id gasless.Address) (*Account, error) {
	var acc Account
	if err := b.One(db, id, &acc); err != nil {
		return nil, errors.Wrapf(err, "account %s", id)
	}
	return &acc, nil
}

// Save stores the account under its ID.
func (b Bucket) Save(db gasless.KVStore, acc *Account) error {
	return b.Put(db, acc.ID(), acc)
}
