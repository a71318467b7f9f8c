package config

import (
	"github.com/spf13/pflag"
)

// BuildConfig holds configuration for the build command.
type BuildConfig struct {
	In              string
	Out             string
	Catalogs        []string
	FlowsOut        string
	PGDSN           string
	Concurrency     int
	KeepZeroAddress bool
	LogLevel        string
}

// LoadBuild merges config file, environment variables, and flags into BuildConfig.
func LoadBuild(cfgFile string, flags *pflag.FlagSet) (BuildConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"out":               "./data/graphs",
		"concurrency":       4,
		"keep-zero-address": false,
		"debug":             false,
		"log-level":         "info",
	})
	if err != nil {
		return BuildConfig{}, err
	}

	cfg := BuildConfig{
		In:              v.GetString("in"),
		Out:             v.GetString("out"),
		Catalogs:        getStringSlice(v, "catalog"),
		FlowsOut:        v.GetString("flows-out"),
		PGDSN:           v.GetString("pg-dsn"),
		Concurrency:     v.GetInt("concurrency"),
		KeepZeroAddress: v.GetBool("keep-zero-address"),
		LogLevel:        logLevel(v),
	}

	return cfg, nil
}
