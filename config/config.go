package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"gatewaycfg/internal/exchange"
)

type Config struct {
	Gateway   GatewayConfig        `yaml:"gateway"`
	Logging   LoggingConfig        `yaml:"logging"`
	Exchanges map[string]yaml.Node `yaml:"exchanges"`
}

type GatewayConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

func LoadConfig(path string) (*Config, error) {
	path = ResolveConfigPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override exchange credentials from environment variables if available
	for id, node := range config.Exchanges {
		if v := os.Getenv(credentialEnvVar(id, "API_KEY")); v != "" {
			setScalar(&node, "key", strings.TrimSpace(v))
		}
		if v := os.Getenv(credentialEnvVar(id, "API_SECRET")); v != "" {
			setScalar(&node, "secret", strings.TrimSpace(v))
		}
		config.Exchanges[id] = node
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Gateway.Name == "" {
		return fmt.Errorf("gateway.name is required")
	}

	if cfg.Gateway.Version == "" {
		return fmt.Errorf("gateway.version is required")
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got '%s'", cfg.Logging.Format)
	}

	if cfg.Logging.MaxAge < 0 {
		return fmt.Errorf("logging.max_age must not be negative")
	}

	for id := range cfg.Exchanges {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("exchanges must not contain an empty identifier")
		}
	}

	return nil
}

// ExchangeType returns the type declared by an exchange section, falling back
// to the identifier itself. Aliases and merge keys are followed.
func (c *Config) ExchangeType(id string) string {
	node, ok := c.Exchanges[id]
	if !ok {
		return id
	}
	var head struct {
		Type string `yaml:"type"`
	}
	if err := node.Decode(&head); err != nil {
		return id
	}
	if t := strings.TrimSpace(head.Type); t != "" {
		return t
	}
	return id
}

// ExchangeIDs lists the configured exchange identifiers in order.
func (c *Config) ExchangeIDs() []string {
	ids := make([]string, 0, len(c.Exchanges))
	for id := range c.Exchanges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CheckExchanges runs every exchange section through the checker registered
// for its type and returns the normalised records keyed by identifier. Errors
// of all exchanges are combined.
func CheckExchanges(cfg *Config, registry *exchange.Registry) (map[string]exchange.ExchangeConfig, error) {
	out := make(map[string]exchange.ExchangeConfig, len(cfg.Exchanges))
	var errs error
	for _, id := range cfg.ExchangeIDs() {
		checker, err := registry.New(cfg.ExchangeType(id), id)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		node := cfg.Exchanges[id]
		checked, err := checker.Check(&node)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out[id] = checked
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

// credentialEnvVar builds e.g. OKEX_MAIN_API_KEY from "okex-main".
func credentialEnvVar(id, suffix string) string {
	name := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(id))
	return name + "_" + suffix
}

// setScalar sets key to a string value, turning an empty section into a
// mapping. Anchored nodes shared with other sections are left untouched.
func setScalar(node *yaml.Node, key, value string) {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		*node = *node.Alias
		node.Anchor = ""
	}
	if node.Kind != yaml.MappingNode {
		if node.Kind != 0 && node.Tag != "!!null" {
			// left to the checker to reject
			return
		}
		*node = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}
	node.Content = append([]*yaml.Node(nil), node.Content...)
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			node.Content[i+1] = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
			return
		}
	}
	node.Content = append(node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
	)
}
