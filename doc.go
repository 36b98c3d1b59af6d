/*
Package gasless defines the common interfaces that tie the subpackages
together: stores, transactions, handlers, decorators and the context helpers
used to pass block information down the stack.

We pass context through context.Context between app, middleware, and
handlers. There should exist two functions for every XYZ of type T that we
want to support in Context:

	WithXYZ(Context, T) Context
	GetXYZ(Context) (val T, ok bool)

WithXYZ may panic if the value was previously set to avoid lower-level
modules overwriting the value (eg. height, header).

Extensions live under x/. The relayed transfer protocol itself is x/permit;
x/ledger, x/verify and x/sigs provide the accounts, the signature
verification facility and the transaction signatures it relies on.
*/
package gasless
