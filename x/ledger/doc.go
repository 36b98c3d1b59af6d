/*
Package ledger implements fungible accounts of a single asset each.

An account is identified by the owner address and the asset ticker. Only
the owner of an account can debit it. The owner may be a signature or a
derived authority granted by another extension, which is how escrowed funds
are moved by x/permit.
*/
package ledger
