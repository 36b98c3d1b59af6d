/*
Package verify implements the signature verification facility.

A VerifyMsg is an instruction that asks the application to verify an
ed25519 signature over an arbitrary message. All VerifyMsg instructions of
a transaction are verified by the Decorator before any instruction is
executed. A single invalid signature fails the whole transaction.

Successful verifications are recorded in the context together with the
position of their instruction. Other extensions read them through Reader to
learn what was signed, by whom, and where in the transaction the proof was
placed. Those extensions never compute signature math themselves.
*/
package verify
