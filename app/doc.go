/*
Package app contains the building blocks of an ABCI application: decorator
chains, the message router, the query router, the commit store and the
StoreApp/BaseApp pair implementing abci.Application.

A concrete application wires extensions into a Router and a QueryRouter,
wraps the router with ChainDecorators and hands everything to NewBaseApp.
*/
package app
