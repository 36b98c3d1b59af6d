/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension keeps a single configuration object stored under the "_c:"
prefixed name of the extension. Configuration is loaded from the genesis file
with InitConfig and read back by the handlers with Load.

Not being able to get a configuration value is a critical condition for the
extension: requests that depend on it fail until the chain is configured.
*/
package gconf
