package gaslessd

import (
	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/crypto"
	"github.com/iov-one/gasless/x/ledger"
	"github.com/iov-one/gasless/x/permit"
	"github.com/iov-one/gasless/x/verify"
)

// OpenEscrowTx returns the transaction that creates the escrow of owner for
// ticker and moves deposit from the ledger account of the owner into it. It
// must be signed by owner.
func OpenEscrowTx(owner []byte, ticker string, deposit uint64) (*Tx, error) {
	custodial := permit.CustodialAccountID(owner, ticker)
	msgs := []gasless.Msg{
		&ledger.CreateAccountMsg{
			Owner:  permit.EscrowAuthority(owner, ticker).Address(),
			Ticker: ticker,
		},
		&permit.InitializeEscrowMsg{
			Owner:     owner,
			Ticker:    ticker,
			Custodial: custodial,
		},
	}
	if deposit > 0 {
		msgs = append(msgs, &ledger.SendMsg{
			From:   ledger.AccountID(crypto.NewPublicKey(owner).Address(), ticker),
			To:     custodial,
			Amount: deposit,
		})
	}
	return NewTx(msgs...)
}

// RelayTx returns the transaction a relayer signs to execute a permit. The
// proof of the owner signature always comes first.
func RelayTx(proof *verify.VerifyMsg, msg *permit.RelayedTransferMsg) (*Tx, error) {
	return NewTx(proof, msg)
}
