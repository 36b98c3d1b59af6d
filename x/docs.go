/*
Package x contains the extensions of the gasless application.

Extensions implement common functionality (Handler, Decorator,
etc.) and are combined together in the app package to construct
the application. This package holds what all of them share: the
Authenticator abstraction used to decide who authorized a message.
*/
package x
