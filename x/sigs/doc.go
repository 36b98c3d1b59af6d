/*
Package sigs provides basic authentication
middleware to verify the signatures on the transaction,
and maintain nonces for replay protection.

The relayer signs every transaction it submits, which makes it the main
signer of the transaction. Escrow owners never sign transactions, their
authorization travels as a verified instruction (see x/verify).
*/
package sigs
