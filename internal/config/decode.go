package config

import (
	"time"

	"github.com/spf13/pflag"
)

// DecodeConfig holds configuration for the decode command.
type DecodeConfig struct {
	RPCURL       string
	TxHash       string
	In           string
	ABIFiles     []string
	Out          string
	Errors       string
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// LoadDecode merges config file, environment variables, and flags into DecodeConfig.
func LoadDecode(cfgFile string, flags *pflag.FlagSet) (DecodeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"out":           "./data/decoded",
		"errors":        "./data/decode_errors.jsonl",
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"debug":         false,
		"log-level":     "info",
	})
	if err != nil {
		return DecodeConfig{}, err
	}

	cfg := DecodeConfig{
		RPCURL:       v.GetString("rpc"),
		TxHash:       v.GetString("tx"),
		In:           v.GetString("in"),
		ABIFiles:     getStringSlice(v, "abi"),
		Out:          v.GetString("out"),
		Errors:       v.GetString("errors"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     logLevel(v),
	}

	return cfg, nil
}
