package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"gatewaycfg/config"
	"gatewaycfg/internal/exchange"
	"gatewaycfg/internal/exchange/builtin"
	"gatewaycfg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		log.WithError(err).Error("gatewaycfg failed")
		os.Exit(1)
	}
}

func newApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:      "gatewaycfg",
		Usage:     "check exchange connector configuration",
		Writer:    out,
		ErrWriter: errOut,
		Commands: []*cli.Command{
			{
				Name:  "check",
				Usage: "validate a configuration file and print the normalised exchanges",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Value:   config.DefaultConfigPath,
						Usage:   "path to configuration file",
					},
					formatFlag(),
				},
				Action: func(c *cli.Context) error {
					return runCheck(c.App.Writer, c.App.ErrWriter, c.String("config"), c.String("format"))
				},
			},
			{
				Name:      "defaults",
				Usage:     "print the default settings of an exchange type",
				ArgsUsage: "<type>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "exchange identifier, defaults to the type"},
					formatFlag(),
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("expected exactly one exchange type, got %d", c.NArg())
					}
					return runDefaults(c.App.Writer, c.Args().First(), c.String("id"), c.String("format"))
				},
			},
			{
				Name:  "types",
				Usage: "list the supported exchange types",
				Action: func(c *cli.Context) error {
					for _, t := range builtin.Registry().Types() {
						fmt.Fprintln(c.App.Writer, t)
					}
					return nil
				},
			},
		},
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "format",
		Value: "yaml",
		Usage: "output format, yaml or json",
	}
}

func runCheck(out, errOut io.Writer, path, format string) error {
	log := logger.GetLogger()

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		return fmt.Errorf("failed to configure logger: %w", err)
	}
	// stdout carries the rendered exchanges
	switch cfg.Logging.Output {
	case "stdout", "":
		log.SetOutput(errOut)
	}

	log.WithEnv("APP_ENV").WithFields(logger.Fields{
		"service":     cfg.Gateway.Name,
		"version":     cfg.Gateway.Version,
		"environment": config.AppEnvironment(),
	}).Info("checking exchange configuration")

	exchanges, err := config.CheckExchanges(cfg, builtin.Registry())
	if err != nil {
		return err
	}

	for _, id := range cfg.ExchangeIDs() {
		ex := exchanges[id]
		limiter := ex.Throttle.NewLimiter()
		entry := log.WithComponent("check").WithFields(logger.Fields{
			"exchange": id,
			"type":     ex.Type,
			"enabled":  ex.Enabled,
			"max_rps":  float64(limiter.Limit()),
			"burst":    limiter.Burst(),
		})
		if ex.Enabled && !ex.HasCredentials() && config.IsProductionLike(config.AppEnvironment()) {
			entry.Warn("exchange has no API credentials, only public endpoints will be available")
			continue
		}
		entry.Info("exchange config ok")

		if !log.Reporting() {
			continue
		}
		features := ex.Features()
		names := make([]string, 0, len(features))
		for name := range features {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			f := features[name]
			entry.WithFields(logger.Fields{
				"feature":  name,
				"emulated": f.Enabled,
				"interval": f.Interval().String(),
			}).Info("emulated stream")
		}
	}

	return render(out, format, exchanges)
}

func runDefaults(out io.Writer, exchangeType, id, format string) error {
	if id == "" {
		id = exchangeType
	}
	checker, err := builtin.Registry().New(exchangeType, id)
	if err != nil {
		return err
	}
	return render(out, format, map[string]exchange.ExchangeConfig{checker.ExchangeID(): checker.Defaults()})
}

func render(out io.Writer, format string, v interface{}) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "yaml", "":
		data, err = yaml.Marshal(v)
	case "json":
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("unsupported output format '%s'", format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = out.Write(data)
	return err
}
