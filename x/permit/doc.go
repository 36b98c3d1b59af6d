/*
Package permit implements relayed transfers out of escrowed custodial
accounts.

An owner keeps funds of one asset in a custodial ledger account that only a
derived authority can debit. The authority is a condition computed from the
owner key and the asset ticker, and only this extension places it in the
context. To spend, the owner signs a permit offline:

	"GASLESS_PERMIT" || owner(32) || protocol_id(32) ||
		amount(8, LE) || fee(8, LE) || deadline(8, LE) || nonce(8, LE)

A relayer submits a transaction whose first instruction verifies that
signature (x/verify) followed by a RelayedTransferMsg. The relayer signs and
pays for the transaction and is reimbursed with the fee.

A transfer is accepted only when the deadline has not passed, the nonce is
strictly greater than the last accepted one and the verified message and key
match the request and the escrow owner exactly. The amount and the fee are
moved atomically, the nonce is committed and a PaymentCompleted event is
returned.
*/
package permit
