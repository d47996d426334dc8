package exchange

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// ExchangeConfig is the settings record of a single exchange connector.
type ExchangeConfig struct {
	Enabled     bool             `yaml:"enabled" json:"enabled"`
	Type        string           `yaml:"type" json:"type"`
	Name        string           `yaml:"name" json:"name"`
	RequirePair bool             `yaml:"requirePair" json:"requirePair"`
	Key         string           `yaml:"key" json:"key"`
	Secret      string           `yaml:"secret" json:"secret"`
	FeesPercent decimal.Decimal  `yaml:"feesPercent" json:"feesPercent"`
	Verbose     bool             `yaml:"verbose" json:"verbose"`
	EmulatedWs  EmulatedWsConfig `yaml:"emulatedWs" json:"emulatedWs"`
	Throttle    ThrottleConfig   `yaml:"throttle" json:"throttle"`
}

// EmulatedWsConfig groups the streaming features which are served by polling
// REST endpoints instead of a real websocket.
type EmulatedWsConfig struct {
	WsTickers    EmulatedFeature `yaml:"wsTickers" json:"wsTickers"`
	WsOrderBooks EmulatedFeature `yaml:"wsOrderBooks" json:"wsOrderBooks"`
	WsTrades     EmulatedFeature `yaml:"wsTrades" json:"wsTrades"`
}

// EmulatedFeature toggles one emulated stream. Period is in seconds.
type EmulatedFeature struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	Period  int  `yaml:"period" json:"period"`
}

// Interval returns the polling period as a duration.
func (f EmulatedFeature) Interval() time.Duration {
	return time.Duration(f.Period) * time.Second
}

// ThrottleConfig holds the rate-limit ceilings applied to outbound API requests.
type ThrottleConfig struct {
	Global GlobalThrottle `yaml:"global" json:"global"`
}

// GlobalThrottle is the ceiling shared by every request of one exchange.
type GlobalThrottle struct {
	MaxRequestsPerSecond int `yaml:"maxRequestsPerSecond" json:"maxRequestsPerSecond"`
}

// NewLimiter builds a token bucket allowing MaxRequestsPerSecond requests per
// second with an equal burst. A non positive ceiling yields a limiter which
// never allows a request.
func (t ThrottleConfig) NewLimiter() *rate.Limiter {
	rps := t.Global.MaxRequestsPerSecond
	if rps <= 0 {
		return rate.NewLimiter(0, 0)
	}
	return rate.NewLimiter(rate.Limit(rps), rps)
}

// HasCredentials reports whether both API key and secret are set.
func (c ExchangeConfig) HasCredentials() bool {
	return c.Key != "" && c.Secret != ""
}

// Features returns the emulated streams keyed by their configuration name.
func (c ExchangeConfig) Features() map[string]EmulatedFeature {
	return map[string]EmulatedFeature{
		"wsTickers":    c.EmulatedWs.WsTickers,
		"wsOrderBooks": c.EmulatedWs.WsOrderBooks,
		"wsTrades":     c.EmulatedWs.WsTrades,
	}
}
