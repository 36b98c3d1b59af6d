/*
Package errors implements the error taxonomy shared by all gasless extensions.

Reuse the root errors declared here whenever possible and register custom
package errors only when a caller has to distinguish them. A relayer reacts
differently to a replayed nonce than to an empty custodial balance, so the
permit extension registers its own codes.

Use Register(code, description) to declare a root error. Code stands for the
ABCI error code returned to the client.

Wrap an error at the point of creation with ErrXyz.New("...") or
errors.Wrap(err, "...") so that a stacktrace is attached. Only the innermost
wrap records the stacktrace.

	%s is just the error message
	%+v is the full stack trace
*/
package errors
