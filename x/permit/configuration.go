package permit

import (
	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/gconf"
)

// Configuration of the permit extension.
type Configuration struct {
	// ProtocolID identifies this deployment inside every signed permit, so
	// that a permit cannot be replayed on another chain.
	ProtocolID gasless.HexBytes `protobuf:"bytes,1,opt,name=protocol_id,json=protocolId,proto3" json:"protocol_id"`
}

var _ gconf.Configuration = (*Configuration)(nil)

func (c *Configuration) Validate() error {
	if len(c.ProtocolID) != KeySize {
		return errors.Field("ProtocolID", errors.ErrInput, "must be %d bytes", KeySize)
	}
	return nil
}

func loadConfiguration(db gasless.ReadOnlyKVStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, extensionName, &conf); err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, errors.Wrap(errors.ErrState, "permit extension is not configured")
		}
		return nil, errors.Wrap(err, "cannot load configuration")
	}
	return &conf, nil
}

// Initializer stores the configuration given in genesis. A chain without
// a protocol id cannot start.
type Initializer struct{}

var _ gasless.Initializer = Initializer{}

func (Initializer) FromGenesis(opts gasless.Options, db gasless.KVStore) error {
	return gconf.InitConfig(db, opts, extensionName, &Configuration{})
}
