// Package config loads the configuration of the application.
//
// The values are read in order from the defaults, an optional YAML file and
// the environment variables, each one overriding the previous.
package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"go.dedis.ch/raffle/contracts/lottery"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

// Config is the configuration of the application.
type Config struct {
	// DB is the path to the database file of the ledger.
	DB string `yaml:"db" env:"RAFFLE_DB"`

	// MinStake is the minimum value to enter the lottery. It is bound to the
	// instance when it is deployed.
	MinStake uint64 `yaml:"min_stake" env:"RAFFLE_MIN_STAKE"`

	// LogLevel is the level of the global logger. When empty, the level set
	// by the LLVL environment variable is kept.
	LogLevel string `yaml:"log_level" env:"RAFFLE_LOG_LEVEL"`

	// HTTPAddr is the address the proxy listens on.
	HTTPAddr string `yaml:"http_addr" env:"RAFFLE_HTTP_ADDR"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		DB:       "raffle.db",
		MinStake: lottery.DefaultMinStake,
		HTTPAddr: "127.0.0.1:8080",
	}
}

// Load returns the configuration read from the file, if the path is not empty,
// and from the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, xerrors.Errorf("failed to read file: %v", err)
		}

		err = yaml.UnmarshalStrict(data, &cfg)
		if err != nil {
			return cfg, xerrors.Errorf("failed to parse file: %v", err)
		}
	}

	err := env.Parse(&cfg)
	if err != nil {
		return cfg, xerrors.Errorf("failed to parse env: %v", err)
	}

	err = cfg.Validate()
	if err != nil {
		return cfg, xerrors.Errorf("invalid config: %v", err)
	}

	return cfg, nil
}

// Validate returns an error if the configuration cannot be used.
func (c Config) Validate() error {
	if c.DB == "" {
		return xerrors.New("database path is empty")
	}

	if c.MinStake == 0 {
		return xerrors.New("min stake must be positive")
	}

	return nil
}
