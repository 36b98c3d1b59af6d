/*
Package batch implements ordered instructions.

A transaction holds a list of messages (instructions) that the application
processes one after another. The transaction fails if any of the
instructions fail to be processed. Signatures and other extensions that do
not rely on messages are only applied once per transaction.

Each instruction is dispatched with its position in the transaction
available through InstructionIndex. Handlers use it to find data produced
for other instructions of the same transaction, for example a signature
verification proof that must precede a transfer.
*/
package batch
