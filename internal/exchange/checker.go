package exchange

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"gatewaycfg/logger"
)

var (
	// ErrInvalidConfig is returned when merged settings break a rule.
	ErrInvalidConfig = errors.New("invalid exchange config")
	// ErrUnknownExchange is returned when no checker is registered for a type.
	ErrUnknownExchange = errors.New("unknown exchange type")
)

var maxFeesPercent = decimal.NewFromInt(100)

// ValidationError lists every rule an exchange section violated.
type ValidationError struct {
	ExchangeID string
	err        error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: exchanges.%s: %v", ErrInvalidConfig, e.ExchangeID, e.err)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

// Violations returns each rule violation on its own.
func (e *ValidationError) Violations() []error {
	return multierr.Errors(e.err)
}

// Checker merges user overrides onto an exchange's default record and checks
// the result. Exchange packages build one from their defaults.
type Checker struct {
	exchangeID string
	defaults   ExchangeConfig
}

// NewChecker stores exchangeID verbatim alongside a copy of defaults.
func NewChecker(exchangeID string, defaults ExchangeConfig) *Checker {
	return &Checker{
		exchangeID: exchangeID,
		defaults:   defaults,
	}
}

// ExchangeID returns the identifier the checker was built with, unchanged.
func (c *Checker) ExchangeID() string {
	return c.exchangeID
}

// Defaults returns a copy of the default record.
func (c *Checker) Defaults() ExchangeConfig {
	return c.defaults
}

// CheckBytes is Check for a raw YAML document.
func (c *Checker) CheckBytes(data []byte) (ExchangeConfig, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return c.Check(nil)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return ExchangeConfig{}, errors.Wrapf(err, "exchanges.%s: parse overrides", c.exchangeID)
	}
	return c.Check(&node)
}

// Check decodes overrides on top of the defaults and validates the result.
// Keys missing from overrides keep their default value, unknown keys are
// rejected. A nil or empty node yields the defaults.
func (c *Checker) Check(overrides *yaml.Node) (ExchangeConfig, error) {
	log := logger.GetLogger().WithComponent("exchange_checker").WithFields(logger.Fields{
		"exchange": c.exchangeID,
		"type":     c.defaults.Type,
	})

	cfg := c.defaults
	if err := c.merge(&cfg, overrides); err != nil {
		log.WithError(err).Warn("failed to merge exchange overrides")
		return ExchangeConfig{}, err
	}
	if strings.EqualFold(cfg.Type, c.defaults.Type) {
		cfg.Type = c.defaults.Type
	}

	if !cfg.Enabled {
		log.Debug("exchange disabled, skipping validation")
		return cfg, nil
	}

	if err := c.validate(cfg); err != nil {
		log.WithError(err).Warn("exchange config rejected")
		return ExchangeConfig{}, err
	}

	log.WithFields(logger.Fields{
		"credentials": cfg.HasCredentials(),
		"fees":        cfg.FeesPercent.String(),
		"max_rps":     cfg.Throttle.Global.MaxRequestsPerSecond,
	}).Debug("exchange config checked")
	return cfg, nil
}

func (c *Checker) merge(cfg *ExchangeConfig, overrides *yaml.Node) error {
	node := overrides
	if node != nil && node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil
		}
		node = node.Content[0]
	}
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node == nil || node.Kind == 0 || node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return errors.Wrapf(ErrInvalidConfig, "exchanges.%s must be a mapping", c.exchangeID)
	}

	// Anchors may live outside this section, expand aliases before encoding.
	data, err := yaml.Marshal(expandAliases(node))
	if err != nil {
		return errors.Wrapf(err, "exchanges.%s: encode overrides", c.exchangeID)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return errors.Wrapf(ErrInvalidConfig, "exchanges.%s: %v", c.exchangeID, err)
	}
	return nil
}

// expandAliases returns a copy of n with every alias replaced by a copy of
// the node it points to. Merge keys keep working on the inlined mappings.
func expandAliases(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	out := *n
	out.Anchor = ""
	out.Alias = nil
	if len(n.Content) > 0 {
		out.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			out.Content[i] = expandAliases(child)
		}
	}
	return &out
}

func (c *Checker) validate(cfg ExchangeConfig) error {
	prefix := "exchanges." + c.exchangeID
	var errs error

	if cfg.Type != c.defaults.Type {
		errs = multierr.Append(errs, fmt.Errorf("%s.type must be %q, got %q", prefix, c.defaults.Type, cfg.Type))
	}
	if strings.TrimSpace(cfg.Name) == "" {
		errs = multierr.Append(errs, fmt.Errorf("%s.name is required", prefix))
	}
	if cfg.FeesPercent.IsNegative() || cfg.FeesPercent.GreaterThanOrEqual(maxFeesPercent) {
		errs = multierr.Append(errs, fmt.Errorf("%s.feesPercent must be >= 0 and < 100, got %s", prefix, cfg.FeesPercent))
	}
	if (cfg.Key == "") != (cfg.Secret == "") {
		errs = multierr.Append(errs, fmt.Errorf("%s.key and %s.secret must be set together", prefix, prefix))
	}
	features := cfg.Features()
	names := make([]string, 0, len(features))
	for name := range features {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if f := features[name]; f.Enabled && f.Period < 1 {
			errs = multierr.Append(errs, fmt.Errorf("%s.emulatedWs.%s.period must be >= 1, got %d", prefix, name, f.Period))
		}
	}
	if cfg.Throttle.Global.MaxRequestsPerSecond < 1 {
		errs = multierr.Append(errs, fmt.Errorf("%s.throttle.global.maxRequestsPerSecond must be >= 1, got %d", prefix, cfg.Throttle.Global.MaxRequestsPerSecond))
	}

	if errs != nil {
		return &ValidationError{ExchangeID: c.exchangeID, err: errs}
	}
	return nil
}
