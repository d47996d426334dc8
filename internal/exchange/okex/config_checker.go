package okex

import (
	"github.com/shopspring/decimal"

	"gatewaycfg/internal/exchange"
)

// Type is the exchange type handled by this package.
const Type = "okex"

// GlobalAPIMaxRequestsPerSecond is the maximum number of API requests per second.
const GlobalAPIMaxRequestsPerSecond = 3

const emulatedWsPeriod = 30

// Defaults returns the default OKEx settings.
func Defaults() exchange.ExchangeConfig {
	return exchange.ExchangeConfig{
		Enabled:     true,
		Type:        Type,
		Name:        "OKEx",
		RequirePair: false,
		Key:         "",
		Secret:      "",
		FeesPercent: decimal.RequireFromString("0.2"),
		Verbose:     false,
		EmulatedWs: exchange.EmulatedWsConfig{
			WsTickers:    exchange.EmulatedFeature{Enabled: true, Period: emulatedWsPeriod},
			WsOrderBooks: exchange.EmulatedFeature{Enabled: true, Period: emulatedWsPeriod},
			WsTrades:     exchange.EmulatedFeature{Enabled: true, Period: emulatedWsPeriod},
		},
		Throttle: exchange.ThrottleConfig{
			Global: exchange.GlobalThrottle{MaxRequestsPerSecond: GlobalAPIMaxRequestsPerSecond},
		},
	}
}

// NewConfigChecker returns the checker for an OKEx connector named exchangeID.
func NewConfigChecker(exchangeID string) *exchange.Checker {
	return exchange.NewChecker(exchangeID, Defaults())
}
