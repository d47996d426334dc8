// Package builtin registers the config checkers shipped with the gateway.
package builtin

import (
	"gatewaycfg/internal/exchange"
	"gatewaycfg/internal/exchange/okex"
)

// Registry returns a registry holding every built-in exchange type.
func Registry() *exchange.Registry {
	r := exchange.NewRegistry()
	r.Register(okex.Type, okex.NewConfigChecker)
	return r
}
