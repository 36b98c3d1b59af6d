package gaslessd

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/app"
	"github.com/iov-one/gasless/crypto"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/notify"
	"github.com/iov-one/gasless/x/ledger"
	"github.com/iov-one/gasless/x/permit"
	"github.com/tendermint/tendermint/libs/log"
	"go.uber.org/zap"
)

// DefaultTicker is the asset of the rich account created by GenInitOptions.
const DefaultTicker = "IOV"

const initialBalance = 123456789

// GenInitOptions will produce some basic options for one rich
// account, to use for dev mode.
//
// You can set the ticker (args[0]), the owner address of the account
// (args[1]) and the hex protocol id (args[2]). A missing owner is generated
// and its key printed to out. A missing protocol id is random.
func GenInitOptions(args []string, out io.Writer) (json.RawMessage, error) {
	ticker := DefaultTicker
	if len(args) > 0 {
		ticker = args[0]
		if !ledger.IsTicker(ticker) {
			return nil, errors.Wrapf(errors.ErrInput, "invalid ticker %s", ticker)
		}
	}

	var addr gasless.Address
	if len(args) > 1 && args[1] != "" {
		a, err := gasless.ParseAddress(args[1])
		if err != nil {
			return nil, err
		}
		addr = a
	} else {
		// if no address provided, auto-generate one
		// and print out the key
		a, keys, err := GenerateCoinKey()
		if err != nil {
			return nil, err
		}
		addr = a
		fmt.Fprintln(out, keys)
	}

	protocolID := make(gasless.HexBytes, permit.KeySize)
	if len(args) > 2 {
		id, err := gasless.ParseHex(args[2])
		if err != nil {
			return nil, err
		}
		protocolID = id
	} else if _, err := rand.Read(protocolID); err != nil {
		return nil, errors.Wrap(err, "cannot generate protocol id")
	}
	conf := permit.Configuration{ProtocolID: protocolID}
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	opts := map[string]interface{}{
		"ledger": []ledger.GenesisAccount{
			{Owner: addr, Ticker: ticker, Amount: initialBalance},
		},
		"gconf": map[string]interface{}{
			"permit": conf,
		},
	}
	return json.MarshalIndent(opts, "", "  ")
}

// Initializers returns the genesis initializers of all extensions.
func Initializers() gasless.Initializer {
	return app.ChainInitializers(
		ledger.Initializer{},
		permit.Initializer{},
	)
}

// GenerateApp is used to create the application of the start command. The
// returned closer releases the database.
func GenerateApp(home string, logger log.Logger, storeLogger *zap.Logger, sink notify.Sink, debug bool) (*app.BaseApp, io.Closer, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if home != "" {
		dbPath = filepath.Join(home, "gasless.db")
	}

	kv, err := CommitKVStore(dbPath, storeLogger)
	if err != nil {
		return nil, nil, err
	}
	application, err := Application(Name, Stack(), TxDecoder, kv, sink, debug)
	if err != nil {
		_ = kv.Close()
		return nil, nil, err
	}
	application.WithInit(Initializers())

	// set the logger and return
	application.WithLogger(logger)
	return application, kv, nil
}

type output struct {
	Address gasless.Address   `json:"address"`
	Pubkey  *crypto.PublicKey `json:"pub_key"`
	Seed    gasless.HexBytes  `json:"seed"`
}

// GenerateCoinKey returns the address of a new public key,
// along with a json representation of the keys. The seed is the key file
// format of crypto.LoadKey.
func GenerateCoinKey() (gasless.Address, string, error) {
	privKey := crypto.GenPrivKeyEd25519()
	pubKey := privKey.PublicKey()
	addr := pubKey.Address()

	out := output{Address: addr, Pubkey: pubKey, Seed: privKey.Seed()}
	keys, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", err
	}
	return addr, string(keys), nil
}
