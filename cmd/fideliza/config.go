package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/fideliza/internal/logger"
	"github.com/nkiryanov/fideliza/internal/service/redemption"
)

const (
	defaultListenAddr    = "localhost:8000"
	defaultLoggingLevel  = logger.LevelInfo
	defaultEnvironment   = logger.EnvProd
	defaultRedeemRetries = redemption.DefaultRetries
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the fideliza service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret key
	// Bearer tokens are HS256 signed, so this key is used to verify them
	SecretKey string

	// Environment
	Environment string

	// How many times redemption is retried on concurrent conflict
	RedeemRetries int
}

func NewConfig() *Config {
	return &Config{
		LogLevel:      defaultLoggingLevel,
		ListenAddr:    defaultListenAddr,
		Environment:   defaultEnvironment,
		RedeemRetries: defaultRedeemRetries,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setInt := func(o *int) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			n, err := strconv.Atoi(value)
			if err != nil {
				return err
			}
			*o = n
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":    setString(&c.ListenAddr),
		"DATABASE_URI":   setString(&c.DatabaseDSN),
		"SECRET_KEY":     setString(&c.SecretKey),
		"LOG_LEVEL":      setString(&c.LogLevel),
		"ENVIRONMENT":    setString(&c.Environment),
		"REDEEM_RETRIES": setInt(&c.RedeemRetries),
	}

	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	return nil
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("fideliza", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.IntVarP(&c.RedeemRetries, "redeem-retries", "r", c.RedeemRetries, "Redemption retries on concurrent conflict")

	return fs.Parse(args)
}
